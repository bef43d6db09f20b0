package service

import (
	"context"
	"strconv"
	"time"

	"anonbot/pkg/logger"
	"anonbot/pkg/models"
	"anonbot/storage"
)

type ModerationService interface {
	// Mute silences a user for the given duration. Muting an already-muted
	// user replaces the effective mute with the new one.
	Mute(ctx context.Context, userID int64, duration time.Duration, reason string, adminID int64) (time.Time, error)
	Unmute(ctx context.Context, userID, adminID int64) (bool, error)
	IsMuted(ctx context.Context, userID int64) (bool, *time.Time, error)
	ActiveMutes(ctx context.Context) ([]*models.ActiveMute, error)
	ActiveCount(ctx context.Context) (int, error)
}

type moderationService struct {
	mutes  storage.IMuteStorage
	audits storage.IAdminLogStorage
	now    func() time.Time
	log    logger.ILogger
}

func NewModerationService(stg storage.IStorage, now func() time.Time, log logger.ILogger) ModerationService {
	return &moderationService{
		mutes:  stg.Mute(),
		audits: stg.AdminLog(),
		now:    now,
		log:    log,
	}
}

func (s *moderationService) Mute(ctx context.Context, userID int64, duration time.Duration, reason string, adminID int64) (time.Time, error) {
	until := s.now().Add(duration)
	if err := s.mutes.Mute(ctx, userID, until, reason, adminID); err != nil {
		return time.Time{}, err
	}
	// Audit failures stay out of the admin's way.
	_ = s.audits.Log(ctx, adminID, "mute_user", muteDetails(userID, until, reason))
	return until, nil
}

func (s *moderationService) Unmute(ctx context.Context, userID, adminID int64) (bool, error) {
	ok, err := s.mutes.Unmute(ctx, userID, s.now())
	if err != nil {
		return false, err
	}
	if ok {
		_ = s.audits.Log(ctx, adminID, "unmute_user", muteDetails(userID, time.Time{}, ""))
	}
	return ok, nil
}

func (s *moderationService) IsMuted(ctx context.Context, userID int64) (bool, *time.Time, error) {
	return s.mutes.IsMuted(ctx, userID, s.now())
}

func (s *moderationService) ActiveMutes(ctx context.Context) ([]*models.ActiveMute, error) {
	return s.mutes.ActiveMutes(ctx, s.now())
}

func (s *moderationService) ActiveCount(ctx context.Context) (int, error) {
	return s.mutes.ActiveCount(ctx, s.now())
}

func muteDetails(userID int64, until time.Time, reason string) string {
	if until.IsZero() {
		return "user_id=" + formatID(userID)
	}
	d := "user_id=" + formatID(userID) + " until=" + until.Format(time.RFC3339)
	if reason != "" {
		d += " reason=" + reason
	}
	return d
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
