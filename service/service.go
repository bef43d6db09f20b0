package service

import (
	"time"

	"anonbot/pkg/logger"
	"anonbot/pkg/models"
	"anonbot/storage"
)

// Messenger delivers outbound content to a Telegram chat. The bot adapter
// implements it; tests substitute a fake.
type Messenger interface {
	// Deliver sends the content to chatID and returns the ID of the message
	// created in that chat. Header is prepended to text or used as a media
	// caption; replyToken, when set, attaches a "reply" deep-link button.
	Deliver(chatID int64, content models.Content, header, replyToken string) (int64, error)
}

// Copier re-sends an existing message to another chat without a forward
// header. Used by broadcast.
type Copier interface {
	Copy(toChatID, fromChatID int64, messageID int) error
}

type IServiceManager interface {
	User() UserService
	Moderation() ModerationService
	Relay() RelayService
	Chat() ChatService
}

type service struct {
	userService       UserService
	moderationService ModerationService
	relayService      RelayService
	chatService       ChatService
}

func New(stg storage.IStorage, msgr Messenger, logChannelID int64, log logger.ILogger) IServiceManager {
	now := time.Now
	moderation := NewModerationService(stg, now, log)
	return &service{
		userService:       NewUserService(stg, now, log),
		moderationService: moderation,
		relayService:      NewRelayService(stg, moderation, msgr, logChannelID, now, log),
		chatService:       NewChatService(stg, log),
	}
}

func (s *service) User() UserService             { return s.userService }
func (s *service) Moderation() ModerationService { return s.moderationService }
func (s *service) Relay() RelayService           { return s.relayService }
func (s *service) Chat() ChatService             { return s.chatService }
