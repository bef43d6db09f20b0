package service

import (
	"context"

	"anonbot/pkg/logger"
	"anonbot/pkg/models"
	"anonbot/storage"
)

// FindResult reports the outcome of a live-chat search.
type FindResult string

const (
	FindMatched FindResult = "matched"
	FindQueued  FindResult = "queued"
	FindInQueue FindResult = "already_in_queue"
	FindInChat  FindResult = "already_in_chat"
)

// LeaveResult reports what /end_chat actually tore down.
type LeaveResult string

const (
	LeftChat  LeaveResult = "left_chat"
	LeftQueue LeaveResult = "left_queue"
	LeftNone  LeaveResult = "not_in_chat"
)

type ChatService interface {
	Find(ctx context.Context, userID int64) (FindResult, int64, error)
	// Leave ends the active chat or removes the user from the queue.
	// Returns the partner ID when a chat was ended, 0 otherwise.
	Leave(ctx context.Context, userID int64) (LeaveResult, int64, error)
	PartnerOf(ctx context.Context, userID int64) (int64, error)
	Active(ctx context.Context) ([]*models.ChatConnection, error)
	EndByID(ctx context.Context, chatID, adminID int64) (*models.ChatConnection, error)
	EndFor(ctx context.Context, userID, adminID int64) (int64, error)
}

type chatService struct {
	chats  storage.IChatStorage
	audits storage.IAdminLogStorage
	log    logger.ILogger
}

func NewChatService(stg storage.IStorage, log logger.ILogger) ChatService {
	return &chatService{
		chats:  stg.Chat(),
		audits: stg.AdminLog(),
		log:    log,
	}
}

func (s *chatService) Find(ctx context.Context, userID int64) (FindResult, int64, error) {
	partner, err := s.chats.PartnerOf(ctx, userID)
	if err != nil {
		return "", 0, err
	}
	if partner != 0 {
		return FindInChat, partner, nil
	}

	added, err := s.chats.Enqueue(ctx, userID)
	if err != nil {
		return "", 0, err
	}
	if !added {
		return FindInQueue, 0, nil
	}

	partner, err = s.chats.MatchPartner(ctx, userID)
	if err != nil {
		return "", 0, err
	}
	if partner == 0 {
		return FindQueued, 0, nil
	}
	return FindMatched, partner, nil
}

func (s *chatService) Leave(ctx context.Context, userID int64) (LeaveResult, int64, error) {
	partner, err := s.chats.End(ctx, userID)
	if err != nil {
		return "", 0, err
	}
	if partner != 0 {
		return LeftChat, partner, nil
	}

	inQueue, err := s.chats.InQueue(ctx, userID)
	if err != nil {
		return "", 0, err
	}
	if inQueue {
		if err := s.chats.Dequeue(ctx, userID); err != nil {
			return "", 0, err
		}
		return LeftQueue, 0, nil
	}
	return LeftNone, 0, nil
}

func (s *chatService) PartnerOf(ctx context.Context, userID int64) (int64, error) {
	return s.chats.PartnerOf(ctx, userID)
}

func (s *chatService) Active(ctx context.Context) ([]*models.ChatConnection, error) {
	return s.chats.Active(ctx)
}

func (s *chatService) EndByID(ctx context.Context, chatID, adminID int64) (*models.ChatConnection, error) {
	conn, err := s.chats.EndByID(ctx, chatID)
	if err != nil || conn == nil {
		return nil, err
	}
	_ = s.audits.Log(ctx, adminID, "end_chat",
		"chat_id="+formatID(chatID)+" users="+formatID(conn.User1ID)+","+formatID(conn.User2ID))
	return conn, nil
}

func (s *chatService) EndFor(ctx context.Context, userID, adminID int64) (int64, error) {
	partner, err := s.chats.End(ctx, userID)
	if err != nil || partner == 0 {
		return 0, err
	}
	_ = s.audits.Log(ctx, adminID, "end_chat",
		"users="+formatID(userID)+","+formatID(partner))
	return partner, nil
}
