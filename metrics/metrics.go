// Package metrics exposes the Prometheus counters served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Redemption outcomes used as label values.
const (
	OutcomeDelivered = "delivered"
	OutcomeNotFound  = "not_found"
	OutcomeFloodWait = "flood_wait"
	OutcomeFailed    = "failed"
)

var (
	// UploadsTotal counts successfully stored uploads.
	UploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filelinkbot_uploads_total",
		Help: "Number of uploads that produced a share link.",
	})

	// RedemptionsTotal counts /start token redemptions by outcome.
	RedemptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filelinkbot_redemptions_total",
		Help: "Number of link redemptions by outcome.",
	}, []string{"outcome"})

	// StoreErrorsTotal counts storage operations that failed after
	// retries.
	StoreErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filelinkbot_store_errors_total",
		Help: "Number of storage failures surfaced to users.",
	})
)
