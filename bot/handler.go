package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/Mraprguild8133/filelinkbot/config"
	"github.com/Mraprguild8133/filelinkbot/metrics"
	"github.com/Mraprguild8133/filelinkbot/store"
	"github.com/Mraprguild8133/filelinkbot/token"
)

// defaultName is used when an upload carries no filename.
const defaultName = "Unnamed File"

var (
	// ErrTooLarge rejects uploads over the configured size limit.
	ErrTooLarge = errors.New("bot: file exceeds the size limit")

	// ErrLinkNotFound means a redeemed token was never issued or has
	// been evicted.
	ErrLinkNotFound = errors.New("bot: link is invalid or expired")
)

// FloodWaitError is returned by Redeem when Telegram asks the bot to
// back off. Seconds is surfaced to the requesting user.
type FloodWaitError struct {
	Seconds int
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("bot: flood wait, retry after %ds", e.Seconds)
}

// DeliveryError wraps a non-flood send failure so callers can tell it
// apart from storage errors.
type DeliveryError struct {
	cause error
}

func (e *DeliveryError) Error() string { return "bot: deliver file: " + e.cause.Error() }
func (e *DeliveryError) Unwrap() error { return e.cause }

// Upload is the normalized shape of an inbound file message: exactly
// the inputs the handler needs, nothing borrowed from the framework.
type Upload struct {
	FileRef    string
	Name       string
	Size       int64
	UploaderID int64
}

// ShareLink is the successful result of handling an upload.
type ShareLink struct {
	Token string
	URL   string
	Name  string
	Text  string
}

// DeliverFunc sends the stored document back to the requesting chat.
// It may fail with a telebot flood error, which Redeem classifies.
type DeliverFunc func(rec *store.FileRecord, caption string) error

// Handler implements the bot's behavior independent of the transport.
// The telebot glue in bot.go reduces every update to calls on it.
type Handler struct {
	cfg      *config.Config
	store    store.Store
	log      *zap.Logger
	channels *Channels

	username  string
	startedAt time.Time
}

func NewHandler(cfg *config.Config, st store.Store, log *zap.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     st,
		log:       log,
		channels:  NewChannels(),
		startedAt: time.Now().UTC(),
	}
}

// HandleUpload validates the upload, persists a FileRecord under a
// fresh token and returns the share payload. Nothing is written when
// validation fails.
func (h *Handler) HandleUpload(ctx context.Context, up Upload) (*ShareLink, error) {
	if up.Size > h.cfg.MaxFileSize {
		return nil, ErrTooLarge
	}
	name := up.Name
	if name == "" {
		name = defaultName
	}

	tok, err := token.New()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	rec := &store.FileRecord{
		Token:      tok,
		FileRef:    up.FileRef,
		Name:       name,
		Size:       up.Size,
		UploaderID: up.UploaderID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.store.Put(ctx, rec); err != nil {
		metrics.StoreErrorsTotal.Inc()
		return nil, fmt.Errorf("store record: %w", err)
	}
	metrics.UploadsTotal.Inc()

	h.log.Info("stored upload",
		zap.String("token", tok),
		zap.String("name", name),
		zap.Int64("size", up.Size),
		zap.Int64("uploader", up.UploaderID))

	return &ShareLink{
		Token: tok,
		URL:   DeepLink(h.username, tok),
		Name:  name,
		Text:  fmt.Sprintf(msgShareReady, name, FormatSize(up.Size)),
	}, nil
}

// Redeem looks up the token and redelivers the file via deliver. The
// record is only touched after a successful delivery; flood waits and
// other send failures leave it unchanged.
func (h *Handler) Redeem(ctx context.Context, tok string, deliver DeliverFunc) error {
	rec, err := h.store.Get(ctx, tok)
	if errors.Is(err, store.ErrNotFound) {
		metrics.RedemptionsTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return ErrLinkNotFound
	}
	if err != nil {
		metrics.StoreErrorsTotal.Inc()
		return fmt.Errorf("load record: %w", err)
	}

	caption := fmt.Sprintf(msgFileCaption, rec.Name, FormatSize(rec.Size))
	if err := deliver(rec, caption); err != nil {
		if secs, ok := retryAfter(err); ok {
			metrics.RedemptionsTotal.WithLabelValues(metrics.OutcomeFloodWait).Inc()
			return &FloodWaitError{Seconds: secs}
		}
		metrics.RedemptionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return &DeliveryError{cause: err}
	}
	metrics.RedemptionsTotal.WithLabelValues(metrics.OutcomeDelivered).Inc()

	if err := h.store.Touch(ctx, tok); err != nil {
		h.log.Warn("access counter update failed", zap.String("token", tok), zap.Error(err))
	}
	return nil
}

// StatsText renders the /stats reply.
func (h *Handler) StatsText(ctx context.Context) (string, error) {
	stats, err := h.store.Stats(ctx)
	if err != nil {
		return "", fmt.Errorf("load stats: %w", err)
	}
	return fmt.Sprintf(
		"📊 *Bot Statistics*\n\n"+
			"• *Files stored:* %d\n"+
			"• *Total users:* %d\n"+
			"• *Bot username:* @%s\n"+
			"• *Force sub channels:* %d",
		stats.Files, stats.Users, h.username, h.channels.Len()), nil
}

// DebugText renders the admin-only /debug reply with internal counters
// and configuration. Raw errors never appear here.
func (h *Handler) DebugText(ctx context.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔧 *Debug Info*\n\n")
	fmt.Fprintf(&b, "• *Uptime:* %s\n", time.Since(h.startedAt).Round(time.Second))
	fmt.Fprintf(&b, "• *Backend:* %s\n", h.cfg.StorageBackend)
	fmt.Fprintf(&b, "• *Max file size:* %s\n", FormatSize(h.cfg.MaxFileSize))
	if h.cfg.LinkTTL > 0 {
		fmt.Fprintf(&b, "• *Link TTL:* %s (not enforced)\n", h.cfg.LinkTTL)
	} else {
		fmt.Fprintf(&b, "• *Link TTL:* never expires\n")
	}
	fmt.Fprintf(&b, "• *Admins:* %d\n", len(h.cfg.AdminIDs))
	if stats, err := h.store.Stats(ctx); err == nil {
		fmt.Fprintf(&b, "• *Records:* %d files, %d users\n", stats.Files, stats.Users)
	}
	return b.String()
}

// retryAfter extracts the wait duration from a Telegram flood error.
func retryAfter(err error) (int, bool) {
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return flood.RetryAfter, true
	}
	return 0, false
}
