// Package bot wires the file-share behavior to the Telegram Bot API
// via telebot. All business logic lives in Handler; this file only
// reduces telebot updates to normalized Handler calls.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"

	"github.com/Mraprguild8133/filelinkbot/config"
	"github.com/Mraprguild8133/filelinkbot/store"
)

// Callback button identities, matched by their Unique value.
var (
	btnCopy      = tele.Btn{Unique: "copylink"}
	btnCheckJoin = tele.Btn{Unique: "checkjoin"}
)

// Bot runs the Telegram side of the service.
type Bot struct {
	tb  *tele.Bot
	h   *Handler
	cfg *config.Config
	log *zap.Logger
}

// New connects to the Bot API and registers all handlers.
func New(cfg *config.Config, st store.Store, log *zap.Logger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			// Last-resort boundary: handler errors are logged, never
			// allowed to kill the process.
			log.Error("handler failed", zap.Error(err))
		},
	}
	tb, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("connect to bot api: %w", err)
	}

	h := NewHandler(cfg, st, log)
	h.username = tb.Me.Username

	b := &Bot{tb: tb, h: h, cfg: cfg, log: log}
	b.routes()

	if err := tb.SetCommands([]tele.Command{
		{Text: "start", Description: "Start the bot"},
		{Text: "help", Description: "How to use the bot"},
		{Text: "stats", Description: "Bot statistics"},
	}); err != nil {
		log.Warn("set commands failed", zap.Error(err))
	}

	return b, nil
}

func (b *Bot) routes() {
	b.tb.Use(middleware.Recover())

	b.tb.Handle("/start", b.onStart)
	b.tb.Handle("/help", b.onHelp)
	b.tb.Handle("/stats", b.onStats)
	b.tb.Handle(tele.OnDocument, b.onDocument)
	b.tb.Handle(&btnCopy, b.onCopyLink)
	b.tb.Handle(&btnCheckJoin, b.onCheckJoin)

	admin := b.tb.Group()
	admin.Use(middleware.Whitelist(b.cfg.AdminIDs...))
	admin.Handle("/addfsub", b.onAddChannel)
	admin.Handle("/delfsub", b.onDelChannel)
	admin.Handle("/debug", b.onDebug)
}

// Start begins long polling. It blocks until Stop is called.
func (b *Bot) Start() { b.tb.Start() }

// Stop terminates long polling.
func (b *Bot) Stop() { b.tb.Stop() }

// Username returns the bot's own username, e.g. for log output.
func (b *Bot) Username() string { return b.h.username }

func (b *Bot) onStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if err := b.h.store.SeenUser(ctx, sender.ID); err != nil {
		b.log.Warn("record user failed", zap.Int64("user", sender.ID), zap.Error(err))
	}
	if ch := b.h.channels.Missing(b.tb, sender.ID); ch != nil {
		return c.Send(msgJoinRequired, joinMarkup(ch), tele.ModeMarkdown)
	}

	payload := strings.TrimSpace(c.Message().Payload)
	if payload == "" {
		return c.Send(msgWelcome, tele.ModeMarkdown)
	}

	err := b.h.Redeem(ctx, payload, func(rec *store.FileRecord, caption string) error {
		doc := &tele.Document{
			File:     tele.File{FileID: rec.FileRef},
			FileName: rec.Name,
			Caption:  caption,
		}
		return c.Send(doc, tele.ModeMarkdown)
	})

	var flood *FloodWaitError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrLinkNotFound):
		return c.Send(msgInvalidLink, tele.ModeMarkdown)
	case errors.As(err, &flood):
		return c.Send(fmt.Sprintf(msgFloodWait, flood.Seconds), tele.ModeMarkdown)
	default:
		b.log.Error("redeem failed", zap.String("token", payload), zap.Error(err))
		return c.Send(msgSendFailed)
	}
}

func (b *Bot) onDocument(c tele.Context) error {
	ctx := context.Background()
	doc := c.Message().Document
	if doc == nil {
		return c.Send(msgNotDocument)
	}
	sender := c.Sender()
	if err := b.h.store.SeenUser(ctx, sender.ID); err != nil {
		b.log.Warn("record user failed", zap.Int64("user", sender.ID), zap.Error(err))
	}
	if ch := b.h.channels.Missing(b.tb, sender.ID); ch != nil {
		return c.Send(msgJoinRequired, joinMarkup(ch), tele.ModeMarkdown)
	}

	link, err := b.h.HandleUpload(ctx, Upload{
		FileRef:    doc.FileID,
		Name:       doc.FileName,
		Size:       doc.FileSize,
		UploaderID: sender.ID,
	})
	switch {
	case errors.Is(err, ErrTooLarge):
		return c.Send(fmt.Sprintf(msgTooLarge, FormatSize(b.cfg.MaxFileSize)))
	case err != nil:
		b.log.Error("upload failed", zap.Int64("uploader", sender.ID), zap.Error(err))
		return c.Send(msgStoreFailed)
	}

	return c.Send(link.Text, &tele.SendOptions{
		ParseMode:             tele.ModeMarkdown,
		DisableWebPagePreview: true,
		ReplyMarkup:           shareMarkup(link),
	})
}

func (b *Bot) onHelp(c tele.Context) error {
	return c.Send(msgHelp, tele.ModeMarkdown)
}

func (b *Bot) onStats(c tele.Context) error {
	text, err := b.h.StatsText(context.Background())
	if err != nil {
		b.log.Error("stats failed", zap.Error(err))
		return c.Send(msgStoreFailed)
	}
	return c.Send(text, tele.ModeMarkdown)
}

func (b *Bot) onCopyLink(c tele.Context) error {
	link := DeepLink(b.h.username, c.Data())
	if err := c.Respond(&tele.CallbackResponse{Text: "📋 Link copied!"}); err != nil {
		return err
	}
	return c.Send(fmt.Sprintf(msgCopyLink, link), &tele.SendOptions{
		ParseMode:             tele.ModeMarkdown,
		DisableWebPagePreview: true,
	})
}

func (b *Bot) onCheckJoin(c tele.Context) error {
	if ch := b.h.channels.Missing(b.tb, c.Sender().ID); ch != nil {
		return c.Respond(&tele.CallbackResponse{
			Text:      "❌ Please join the channel first.",
			ShowAlert: true,
		})
	}
	if err := c.Respond(&tele.CallbackResponse{
		Text:      "✅ Thanks for joining! You can now use the bot.",
		ShowAlert: true,
	}); err != nil {
		return err
	}
	// Remove the join prompt, the gate is open now.
	return c.Delete()
}

func (b *Bot) onAddChannel(c tele.Context) error {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Message().Payload), 10, 64)
	if err != nil {
		return c.Send("Usage: /addfsub <channel_id>")
	}
	chat, err := b.tb.ChatByID(id)
	if err != nil {
		b.log.Warn("channel lookup failed", zap.Int64("channel", id), zap.Error(err))
		return c.Send(fmt.Sprintf("❌ Cannot access chat %d. Is the bot a member?", id))
	}
	b.h.channels.Add(Channel{ID: id, Title: chat.Title, JoinURL: joinURL(chat)})
	return c.Send("✅ Added channel: " + chat.Title)
}

func (b *Bot) onDelChannel(c tele.Context) error {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Message().Payload), 10, 64)
	if err != nil {
		return c.Send("Usage: /delfsub <channel_id>")
	}
	if !b.h.channels.Remove(id) {
		return c.Send("❌ Channel not found in force sub list")
	}
	return c.Send("✅ Removed channel from force sub")
}

func (b *Bot) onDebug(c tele.Context) error {
	return c.Send(b.h.DebugText(context.Background()), tele.ModeMarkdown)
}

// shareMarkup builds the three-button keyboard attached to a fresh
// share link.
func shareMarkup(link *ShareLink) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.URL("🚀 Get File Now", link.URL)),
		markup.Row(markup.Data("📋 Copy Link", btnCopy.Unique, link.Token)),
		markup.Row(markup.URL("📤 Share to Friends", shareURL(link.URL, link.Name))),
	)
	return markup
}

// joinMarkup builds the join prompt keyboard for a missing channel.
func joinMarkup(ch *Channel) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.URL("Join "+ch.Title, ch.JoinURL)),
		markup.Row(markup.Data("✅ I've Joined", btnCheckJoin.Unique)),
	)
	return markup
}

// joinURL derives a join link for a chat: public channels by username,
// private ones via the t.me/c form.
func joinURL(chat *tele.Chat) string {
	if chat.Username != "" {
		return "https://t.me/" + chat.Username
	}
	id := strconv.FormatInt(chat.ID, 10)
	return "https://t.me/c/" + strings.TrimPrefix(id, "-100")
}
