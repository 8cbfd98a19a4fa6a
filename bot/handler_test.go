package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/Mraprguild8133/filelinkbot/config"
	"github.com/Mraprguild8133/filelinkbot/store"
)

func newTestHandler(t *testing.T) (*Handler, *store.Memory) {
	t.Helper()
	mem := store.NewMemory(0)
	cfg := &config.Config{
		MaxFileSize:    config.DefaultMaxFileSize,
		StorageBackend: "memory",
	}
	h := NewHandler(cfg, mem, zap.NewNop())
	h.username = "filesharer_bot"
	return h, mem
}

func TestHandleUpload(t *testing.T) {
	h, mem := newTestHandler(t)
	ctx := context.Background()

	link, err := h.HandleUpload(ctx, Upload{
		FileRef:    "BQACAgQAAxkBAAIB",
		Name:       "report.pdf",
		Size:       2048,
		UploaderID: 42,
	})
	if err != nil {
		t.Fatalf("HandleUpload: %v", err)
	}

	if len(link.Token) != 22 {
		t.Errorf("token length = %d, want 22", len(link.Token))
	}
	if want := "https://t.me/filesharer_bot?start=" + link.Token; link.URL != want {
		t.Errorf("URL = %q, want %q", link.URL, want)
	}
	for _, frag := range []string{"report.pdf", "2.00 KB"} {
		if !strings.Contains(link.Text, frag) {
			t.Errorf("share text missing %q:\n%s", frag, link.Text)
		}
	}

	rec, err := mem.Get(ctx, link.Token)
	if err != nil {
		t.Fatalf("Get stored record: %v", err)
	}
	if rec.FileRef != "BQACAgQAAxkBAAIB" || rec.Name != "report.pdf" || rec.Size != 2048 || rec.UploaderID != 42 {
		t.Errorf("stored record = %+v", rec)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestHandleUploadDefaultsName(t *testing.T) {
	h, _ := newTestHandler(t)
	link, err := h.HandleUpload(context.Background(), Upload{FileRef: "ref", Size: 10, UploaderID: 1})
	if err != nil {
		t.Fatalf("HandleUpload: %v", err)
	}
	if !strings.Contains(link.Text, defaultName) {
		t.Errorf("share text missing placeholder name:\n%s", link.Text)
	}
}

func TestHandleUploadTooLarge(t *testing.T) {
	h, mem := newTestHandler(t)
	ctx := context.Background()

	_, err := h.HandleUpload(ctx, Upload{
		FileRef:    "ref",
		Name:       "huge.iso",
		Size:       4*1024*1024*1024 + 1,
		UploaderID: 42,
	})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("HandleUpload = %v, want ErrTooLarge", err)
	}

	stats, err := mem.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Files != 0 {
		t.Errorf("Files = %d, want 0 (oversize upload must not mutate the store)", stats.Files)
	}
}

// brokenStore fails every write.
type brokenStore struct {
	*store.Memory
}

func (b *brokenStore) Put(context.Context, *store.FileRecord) error {
	return errors.New("disk full")
}

func TestHandleUploadStoreFailure(t *testing.T) {
	cfg := &config.Config{MaxFileSize: config.DefaultMaxFileSize}
	h := NewHandler(cfg, &brokenStore{Memory: store.NewMemory(0)}, zap.NewNop())
	h.username = "filesharer_bot"

	_, err := h.HandleUpload(context.Background(), Upload{FileRef: "ref", Name: "a.txt", Size: 1, UploaderID: 1})
	if err == nil || errors.Is(err, ErrTooLarge) {
		t.Fatalf("HandleUpload = %v, want storage error", err)
	}
}

func TestRedeemNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	err := h.Redeem(context.Background(), "neverissuedtoken000000", func(*store.FileRecord, string) error {
		t.Fatal("deliver called for absent token")
		return nil
	})
	if !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("Redeem = %v, want ErrLinkNotFound", err)
	}
}

func TestRedeemDelivers(t *testing.T) {
	h, mem := newTestHandler(t)
	ctx := context.Background()

	link, err := h.HandleUpload(ctx, Upload{FileRef: "file-ref-1", Name: "report.pdf", Size: 2048, UploaderID: 42})
	if err != nil {
		t.Fatalf("HandleUpload: %v", err)
	}

	var gotRef, gotCaption string
	err = h.Redeem(ctx, link.Token, func(rec *store.FileRecord, caption string) error {
		gotRef = rec.FileRef
		gotCaption = caption
		return nil
	})
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if gotRef != "file-ref-1" {
		t.Errorf("delivered ref = %q, want file-ref-1", gotRef)
	}
	for _, frag := range []string{"report.pdf", "2.00 KB"} {
		if !strings.Contains(gotCaption, frag) {
			t.Errorf("caption missing %q:\n%s", frag, gotCaption)
		}
	}

	rec, err := mem.Get(ctx, link.Token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.AccessCount != 1 {
		t.Errorf("AccessCount = %d, want 1", rec.AccessCount)
	}
}

func TestRedeemFloodWait(t *testing.T) {
	h, mem := newTestHandler(t)
	ctx := context.Background()

	link, err := h.HandleUpload(ctx, Upload{FileRef: "ref", Name: "a.txt", Size: 10, UploaderID: 1})
	if err != nil {
		t.Fatalf("HandleUpload: %v", err)
	}

	err = h.Redeem(ctx, link.Token, func(*store.FileRecord, string) error {
		return tele.FloodError{RetryAfter: 30}
	})
	var flood *FloodWaitError
	if !errors.As(err, &flood) {
		t.Fatalf("Redeem = %v, want FloodWaitError", err)
	}
	if flood.Seconds != 30 {
		t.Errorf("Seconds = %d, want 30", flood.Seconds)
	}

	rec, err := mem.Get(ctx, link.Token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.AccessCount != 0 {
		t.Errorf("AccessCount = %d, want 0 (flood wait must not mutate the record)", rec.AccessCount)
	}
}

func TestRedeemDeliveryFailure(t *testing.T) {
	h, mem := newTestHandler(t)
	ctx := context.Background()

	link, err := h.HandleUpload(ctx, Upload{FileRef: "ref", Name: "a.txt", Size: 10, UploaderID: 1})
	if err != nil {
		t.Fatalf("HandleUpload: %v", err)
	}

	err = h.Redeem(ctx, link.Token, func(*store.FileRecord, string) error {
		return errors.New("chat not found")
	})
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("Redeem = %v, want DeliveryError", err)
	}

	rec, _ := mem.Get(ctx, link.Token)
	if rec.AccessCount != 0 {
		t.Errorf("AccessCount = %d, want 0 (failed delivery must not mutate the record)", rec.AccessCount)
	}
}

// TestUploadRedeemEndToEnd walks the whole happy path: a 2,048-byte
// report.pdf from uploader 42 becomes a 22-character token embedded in
// a ?start= deep link, and redeeming that token redelivers the
// document captioned with name and formatted size.
func TestUploadRedeemEndToEnd(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	link, err := h.HandleUpload(ctx, Upload{
		FileRef:    "AgADBAADq6cxG",
		Name:       "report.pdf",
		Size:       2048,
		UploaderID: 42,
	})
	if err != nil {
		t.Fatalf("HandleUpload: %v", err)
	}
	if len(link.Token) != 22 {
		t.Fatalf("token length = %d, want 22", len(link.Token))
	}
	if !strings.Contains(link.URL, "?start="+link.Token) {
		t.Fatalf("URL %q does not embed the token as start parameter", link.URL)
	}

	var delivered *store.FileRecord
	var caption string
	if err := h.Redeem(ctx, link.Token, func(rec *store.FileRecord, c string) error {
		delivered = rec
		caption = c
		return nil
	}); err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if delivered.FileRef != "AgADBAADq6cxG" {
		t.Errorf("delivered ref = %q", delivered.FileRef)
	}
	if !strings.Contains(caption, "report.pdf") || !strings.Contains(caption, "2.00 KB") {
		t.Errorf("caption = %q, want report.pdf and 2.00 KB", caption)
	}
}

func TestStatsText(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := h.HandleUpload(ctx, Upload{FileRef: "r", Name: fmt.Sprintf("f%d", i), Size: 1, UploaderID: 1}); err != nil {
			t.Fatalf("HandleUpload: %v", err)
		}
	}
	text, err := h.StatsText(ctx)
	if err != nil {
		t.Fatalf("StatsText: %v", err)
	}
	for _, frag := range []string{"3", "@filesharer_bot"} {
		if !strings.Contains(text, frag) {
			t.Errorf("stats text missing %q:\n%s", frag, text)
		}
	}
}

func TestDebugTextHidesNothingSensitive(t *testing.T) {
	h, _ := newTestHandler(t)
	text := h.DebugText(context.Background())
	for _, frag := range []string{"memory", "4.00 GB", "never expires"} {
		if !strings.Contains(text, frag) {
			t.Errorf("debug text missing %q:\n%s", frag, text)
		}
	}
}
