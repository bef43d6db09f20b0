package service

import (
	"context"
	"time"

	"anonbot/pkg/logger"
	"anonbot/pkg/models"
	"anonbot/storage"
)

type RelayService interface {
	// Relay delivers content from senderID to recipientID without exposing
	// either identity. The sender's link token is attached as a reply button.
	// Returns *MutedError when the sender is currently muted.
	Relay(ctx context.Context, senderID, recipientID int64, content models.Content) error

	// RelayReply routes content from a replier back to whoever originally
	// sent the message (chatID, messageID). Returns ErrNoThread when the
	// correlation is lost.
	RelayReply(ctx context.Context, replierID, chatID, messageID int64, content models.Content) error

	// RelayChat delivers content to a live-chat partner. No reply button is
	// attached; the pairing itself is the return channel.
	RelayChat(ctx context.Context, senderID, partnerID int64, content models.Content) error

	// MessageCount reports how many messages the pair exchanged, both
	// directions combined.
	MessageCount(ctx context.Context, user1ID, user2ID int64) (int, error)

	// LastActivity returns when the user last sent a relayed message,
	// nil if never.
	LastActivity(ctx context.Context, userID int64) (*time.Time, error)
}

type relayService struct {
	users      storage.IUserStorage
	links      storage.IRelayStorage
	msgLog     storage.IMessageLogStorage
	moderation ModerationService
	msgr       Messenger
	logChannel int64
	now        func() time.Time
	log        logger.ILogger
}

func NewRelayService(stg storage.IStorage, moderation ModerationService, msgr Messenger, logChannelID int64, now func() time.Time, log logger.ILogger) RelayService {
	return &relayService{
		users:      stg.User(),
		links:      stg.Relay(),
		msgLog:     stg.MessageLog(),
		moderation: moderation,
		msgr:       msgr,
		logChannel: logChannelID,
		now:        now,
		log:        log,
	}
}

func (s *relayService) Relay(ctx context.Context, senderID, recipientID int64, content models.Content) error {
	if !validKind(content.Kind) {
		return ErrUnsupportedContent
	}

	muted, until, err := s.moderation.IsMuted(ctx, senderID)
	if err != nil {
		return err
	}
	if muted {
		return &MutedError{Until: *until}
	}

	sender, err := s.users.Get(ctx, senderID)
	if err != nil {
		return err
	}
	replyToken := ""
	if sender != nil {
		replyToken = sender.LinkToken
	}

	messageID, err := s.msgr.Deliver(recipientID, content, headerAnonymous, replyToken)
	if err != nil {
		return err
	}

	// Correlation first: a reply may arrive before the log settles.
	if err := s.links.SaveLink(ctx, &models.MessageLink{
		ChatID:    recipientID,
		MessageID: messageID,
		SenderID:  senderID,
	}); err != nil {
		s.log.Error("relay: message link not saved", logger.Error(err))
	}

	s.record(ctx, senderID, recipientID, content)
	return nil
}

func (s *relayService) RelayReply(ctx context.Context, replierID, chatID, messageID int64, content models.Content) error {
	if !validKind(content.Kind) {
		return ErrUnsupportedContent
	}

	originalSender, err := s.links.ResolveSender(ctx, chatID, messageID)
	if err != nil {
		return err
	}
	if originalSender == 0 {
		return ErrNoThread
	}

	muted, until, err := s.moderation.IsMuted(ctx, replierID)
	if err != nil {
		return err
	}
	if muted {
		return &MutedError{Until: *until}
	}

	replier, err := s.users.Get(ctx, replierID)
	if err != nil {
		return err
	}
	replyToken := ""
	if replier != nil {
		replyToken = replier.LinkToken
	}

	deliveredID, err := s.msgr.Deliver(originalSender, content, headerReply, replyToken)
	if err != nil {
		return err
	}

	if err := s.links.SaveLink(ctx, &models.MessageLink{
		ChatID:    originalSender,
		MessageID: deliveredID,
		SenderID:  replierID,
	}); err != nil {
		s.log.Error("relay: reply link not saved", logger.Error(err))
	}

	s.record(ctx, replierID, originalSender, content)
	return nil
}

func (s *relayService) RelayChat(ctx context.Context, senderID, partnerID int64, content models.Content) error {
	if !validKind(content.Kind) {
		return ErrUnsupportedContent
	}

	muted, until, err := s.moderation.IsMuted(ctx, senderID)
	if err != nil {
		return err
	}
	if muted {
		return &MutedError{Until: *until}
	}

	if _, err := s.msgr.Deliver(partnerID, content, headerChat, ""); err != nil {
		return err
	}

	s.record(ctx, senderID, partnerID, content)
	return nil
}

func (s *relayService) MessageCount(ctx context.Context, user1ID, user2ID int64) (int, error) {
	return s.msgLog.CountBetween(ctx, user1ID, user2ID)
}

func (s *relayService) LastActivity(ctx context.Context, userID int64) (*time.Time, error) {
	return s.msgLog.LastSentAt(ctx, userID)
}

// record appends the audit row and forwards media to the log channel.
// Both are fire-and-forget with respect to delivery.
func (s *relayService) record(ctx context.Context, sourceID, destID int64, content models.Content) {
	if err := s.msgLog.Append(ctx, &models.MessageLogEntry{
		SourceUserID:  sourceID,
		DestinationID: destID,
		MessageType:   content.Kind,
		SentAt:        s.now(),
	}); err != nil {
		s.log.Error("relay: message log append failed", logger.Error(err))
	}

	if content.IsMedia() && s.logChannel != 0 {
		caption := auditCaption(sourceID, destID)
		if _, err := s.msgr.Deliver(s.logChannel, content, caption, ""); err != nil {
			s.log.Error("relay: audit channel copy failed", logger.Error(err))
		}
	}
}

const (
	headerAnonymous = "📨 Sizga yangi anonim xabar bor!"
	headerReply     = "↩️ Anonim xabaringizga javob keldi!"
	headerChat      = "💬 Anonim xabar:"
)

func auditCaption(sourceID, destID int64) string {
	return "📥 Yuboruvchi: " + formatID(sourceID) + "\n👤 Qabul qiluvchi: " + formatID(destID)
}

func validKind(kind models.ContentKind) bool {
	switch kind {
	case models.KindText, models.KindPhoto, models.KindVideo, models.KindVoice, models.KindDocument:
		return true
	}
	return false
}
