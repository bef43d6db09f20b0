package service

import (
	"context"
	"time"

	"anonbot/pkg/logger"
	"anonbot/pkg/models"
	"anonbot/storage"
)

type UserService interface {
	Register(ctx context.Context, userID int64, username, name string) (*models.User, bool, error)
	Get(ctx context.Context, userID int64) (*models.User, error)
	// FindByToken resolves a link token to its owner. Returns
	// ErrRecipientNotFound when the token matches nobody.
	FindByToken(ctx context.Context, token string) (*models.User, error)
	ListRecent(ctx context.Context, page, pageSize int) ([]*models.User, int, error)
	Stats(ctx context.Context) (*models.UserStats, error)
	SetAdmin(ctx context.Context, userID int64, isAdmin bool) error
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	AdminIDs(ctx context.Context) ([]int64, error)
}

type userService struct {
	stg storage.IUserStorage
	now func() time.Time
	log logger.ILogger
}

func NewUserService(stg storage.IStorage, now func() time.Time, log logger.ILogger) UserService {
	return &userService{
		stg: stg.User(),
		now: now,
		log: log,
	}
}

func (s *userService) Register(ctx context.Context, userID int64, username, name string) (*models.User, bool, error) {
	return s.stg.GetOrCreate(ctx, userID, username, name)
}

func (s *userService) Get(ctx context.Context, userID int64) (*models.User, error) {
	return s.stg.Get(ctx, userID)
}

func (s *userService) FindByToken(ctx context.Context, token string) (*models.User, error) {
	u, err := s.stg.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrRecipientNotFound
	}
	return u, nil
}

// ListRecent returns one page of users ordered by creation time descending,
// plus the total page count.
func (s *userService) ListRecent(ctx context.Context, page, pageSize int) ([]*models.User, int, error) {
	users, err := s.stg.ListRecent(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.stg.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	pages := (total + pageSize - 1) / pageSize
	return users, pages, nil
}

func (s *userService) Stats(ctx context.Context) (*models.UserStats, error) {
	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return s.stg.Stats(ctx, todayStart, monthStart)
}

func (s *userService) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	return s.stg.SetAdmin(ctx, userID, isAdmin)
}

func (s *userService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return s.stg.IsAdmin(ctx, userID)
}

func (s *userService) AdminIDs(ctx context.Context) ([]int64, error) {
	return s.stg.AdminIDs(ctx)
}
