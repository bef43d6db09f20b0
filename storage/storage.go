package storage

import (
	"context"
	"time"

	"anonbot/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type IStorage interface {
	User() IUserStorage
	Mute() IMuteStorage
	MessageLog() IMessageLogStorage
	Relay() IRelayStorage
	Chat() IChatStorage
	AdminLog() IAdminLogStorage
	Close()
	GetPool() *pgxpool.Pool
}

type IUserStorage interface {
	// GetOrCreate registers the user on first contact, issuing a unique link
	// token. The bool reports whether the user was created by this call.
	GetOrCreate(ctx context.Context, userID int64, username, name string) (*models.User, bool, error)
	Get(ctx context.Context, userID int64) (*models.User, error)
	GetByToken(ctx context.Context, token string) (*models.User, error)
	ListRecent(ctx context.Context, page, pageSize int) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	Stats(ctx context.Context, todayStart, monthStart time.Time) (*models.UserStats, error)
	SetAdmin(ctx context.Context, userID int64, isAdmin bool) error
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	AdminIDs(ctx context.Context) ([]int64, error)
	AllIDs(ctx context.Context) ([]int64, error)
	UpdateInfo(ctx context.Context, userID int64, username, name string) error
}

type IMuteStorage interface {
	Mute(ctx context.Context, userID int64, until time.Time, reason string, createdBy int64) error
	Unmute(ctx context.Context, userID int64, now time.Time) (bool, error)
	// IsMuted reports whether the latest record's muted_until is in the future,
	// returning the expiry when it is.
	IsMuted(ctx context.Context, userID int64, now time.Time) (bool, *time.Time, error)
	ActiveMutes(ctx context.Context, now time.Time) ([]*models.ActiveMute, error)
	ActiveCount(ctx context.Context, now time.Time) (int, error)
}

type IMessageLogStorage interface {
	Append(ctx context.Context, entry *models.MessageLogEntry) error
	CountBetween(ctx context.Context, user1ID, user2ID int64) (int, error)
	LastSentAt(ctx context.Context, userID int64) (*time.Time, error)
}

type IRelayStorage interface {
	SaveLink(ctx context.Context, link *models.MessageLink) error
	// ResolveSender maps a relayed message in chatID back to its original
	// sender. Returns (0, nil) when no correlation exists.
	ResolveSender(ctx context.Context, chatID, messageID int64) (int64, error)
}

type IChatStorage interface {
	Enqueue(ctx context.Context, userID int64) (bool, error)
	Dequeue(ctx context.Context, userID int64) error
	QueueCount(ctx context.Context) (int, error)
	InQueue(ctx context.Context, userID int64) (bool, error)
	// MatchPartner picks a random queued user other than userID, removes both
	// from the queue and creates a connection. Returns (0, nil) when the queue
	// has nobody else, or when userID's own queue row is already gone because
	// a concurrent matcher claimed it.
	MatchPartner(ctx context.Context, userID int64) (int64, error)
	PartnerOf(ctx context.Context, userID int64) (int64, error)
	End(ctx context.Context, userID int64) (int64, error)
	EndByID(ctx context.Context, chatID int64) (*models.ChatConnection, error)
	Active(ctx context.Context) ([]*models.ChatConnection, error)
	ActiveCount(ctx context.Context) (int, error)
}

type IAdminLogStorage interface {
	Log(ctx context.Context, adminID int64, action, details string) error
}
