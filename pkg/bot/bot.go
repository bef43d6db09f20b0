package bot

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"anonbot/config"
	"anonbot/pkg/logger"
	"anonbot/pkg/models"
	"anonbot/service"
	"anonbot/storage"
)

type Bot struct {
	tg        *tele.Bot
	cfg       config.Config
	stg       storage.IStorage
	svc       service.IServiceManager
	broadcast *service.Broadcaster
	sessions  *SessionStore
	log       logger.ILogger
}

func New(cfg config.Config, stg storage.IStorage, log logger.ILogger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: cfg.PollTimeout},
	}

	tg, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("bot init: %w", err)
	}

	b := &Bot{
		tg:       tg,
		cfg:      cfg,
		stg:      stg,
		sessions: NewSessionStore(),
		log:      log,
	}

	b.svc = service.New(stg, b, cfg.LogChannelID, log)
	b.broadcast = service.NewBroadcaster(stg, b, cfg.BroadcastBatchSize, cfg.BroadcastDelay, log)

	b.registerHandlers()
	return b, nil
}

func (b *Bot) registerHandlers() {
	b.tg.Handle("/start", b.handleStart)
	b.tg.Handle("/help", b.handleHelp)
	b.tg.Handle("/info", b.handleInfo)
	b.tg.Handle("/admin", b.handleAdmin)
	b.tg.Handle("/find_chat", b.handleFindChat)
	b.tg.Handle("/end_chat", b.handleEndChat)

	b.tg.Handle(tele.OnText, b.handleIncoming)
	b.tg.Handle(tele.OnPhoto, b.handleIncoming)
	b.tg.Handle(tele.OnVideo, b.handleIncoming)
	b.tg.Handle(tele.OnVoice, b.handleIncoming)
	b.tg.Handle(tele.OnDocument, b.handleIncoming)

	b.tg.Handle(tele.OnCallback, b.handleCallback)
}

func (b *Bot) Start() {
	b.log.Info("bot started", logger.String("username", b.tg.Me.Username))
	b.tg.Start()
}

func (b *Bot) Stop() {
	b.tg.Stop()
}

// link builds the shareable deep link carrying a user's token.
func (b *Bot) link(token string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", b.tg.Me.Username, token)
}

// Deliver implements service.Messenger. The header is sent as a separate
// line above text, or as the caption prefix for media. A non-empty
// replyToken attaches a deep-link button back to the sender.
func (b *Bot) Deliver(chatID int64, content models.Content, header, replyToken string) (int64, error) {
	to := &tele.User{ID: chatID}

	var opts []interface{}
	if replyToken != "" {
		markup := &tele.ReplyMarkup{}
		btn := markup.URL(messages["reply_button"], b.link(replyToken))
		markup.Inline(markup.Row(btn))
		opts = append(opts, markup)
	}

	var what interface{}
	switch content.Kind {
	case models.KindText:
		what = header + "\n\n" + content.Text
	case models.KindPhoto:
		what = &tele.Photo{File: tele.File{FileID: content.FileID}, Caption: caption(header, content.Text)}
	case models.KindVideo:
		what = &tele.Video{File: tele.File{FileID: content.FileID}, Caption: caption(header, content.Text)}
	case models.KindVoice:
		what = &tele.Voice{File: tele.File{FileID: content.FileID}, Caption: caption(header, content.Text)}
	case models.KindDocument:
		what = &tele.Document{File: tele.File{FileID: content.FileID}, Caption: caption(header, content.Text)}
	default:
		return 0, service.ErrUnsupportedContent
	}

	msg, err := b.tg.Send(to, what, opts...)
	if err != nil {
		return 0, err
	}
	return int64(msg.ID), nil
}

// Copy implements service.Copier for broadcast delivery.
func (b *Bot) Copy(toChatID, fromChatID int64, messageID int) error {
	stored := tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    fromChatID,
	}
	_, err := b.tg.Copy(&tele.User{ID: toChatID}, stored)
	return err
}

func caption(header, text string) string {
	if text == "" {
		return header
	}
	return header + "\n\n" + text
}

// extractContent maps an incoming telegram message onto the relay
// content model. Returns ok=false for kinds the relay does not carry.
func extractContent(m *tele.Message) (models.Content, bool) {
	switch {
	case m.Photo != nil:
		return models.Content{Kind: models.KindPhoto, Text: m.Caption, FileID: m.Photo.FileID}, true
	case m.Video != nil:
		return models.Content{Kind: models.KindVideo, Text: m.Caption, FileID: m.Video.FileID}, true
	case m.Voice != nil:
		return models.Content{Kind: models.KindVoice, Text: m.Caption, FileID: m.Voice.FileID}, true
	case m.Document != nil:
		return models.Content{Kind: models.KindDocument, Text: m.Caption, FileID: m.Document.FileID}, true
	case m.Text != "":
		return models.Content{Kind: models.KindText, Text: m.Text}, true
	}
	return models.Content{}, false
}

func callbackData(c tele.Context) string {
	return strings.TrimPrefix(c.Callback().Data, "\f")
}
