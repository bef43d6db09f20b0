package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"anonbot/pkg/logger"
	"anonbot/pkg/models"
	"anonbot/storage"
)

type muteRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewMuteRepo(db *pgxpool.Pool, log logger.ILogger) storage.IMuteStorage {
	return &muteRepo{db: db, log: log}
}

func (r *muteRepo) Mute(ctx context.Context, userID int64, until time.Time, reason string, createdBy int64) error {
	query := `
		INSERT INTO muted_users (user_id, muted_until, reason, created_by)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, userID, until, reason, createdBy)
	if err != nil {
		r.log.Error("failed to mute user", logger.Int64("user_id", userID), logger.Error(err))
	}
	return err
}

func (r *muteRepo) Unmute(ctx context.Context, userID int64, now time.Time) (bool, error) {
	// Expire active records instead of deleting them: the ledger is the audit trail.
	tag, err := r.db.Exec(ctx,
		"UPDATE muted_users SET muted_until = $2 WHERE user_id = $1 AND muted_until > $2",
		userID, now)
	if err != nil {
		r.log.Error("failed to unmute user", logger.Int64("user_id", userID), logger.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *muteRepo) IsMuted(ctx context.Context, userID int64, now time.Time) (bool, *time.Time, error) {
	var until time.Time
	query := `SELECT muted_until FROM muted_users WHERE user_id = $1 ORDER BY muted_until DESC LIMIT 1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&until)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil, nil
		}
		r.log.Error("failed to check mute", logger.Int64("user_id", userID), logger.Error(err))
		return false, nil, err
	}
	if until.After(now) {
		return true, &until, nil
	}
	return false, nil, nil
}

func (r *muteRepo) ActiveMutes(ctx context.Context, now time.Time) ([]*models.ActiveMute, error) {
	query := `
		SELECT DISTINCT ON (mu.user_id)
			mu.user_id, u.username, u.name, mu.muted_until, mu.reason
		FROM muted_users mu
		LEFT JOIN users u ON mu.user_id = u.user_id
		WHERE mu.muted_until > $1
		ORDER BY mu.user_id, mu.muted_until DESC
	`
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mutes []*models.ActiveMute
	for rows.Next() {
		var m models.ActiveMute
		err := rows.Scan(&m.UserID, &m.Username, &m.Name, &m.MutedUntil, &m.Reason)
		if err != nil {
			return nil, err
		}
		mutes = append(mutes, &m)
	}
	return mutes, rows.Err()
}

func (r *muteRepo) ActiveCount(ctx context.Context, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT count(DISTINCT user_id) FROM muted_users WHERE muted_until > $1", now).Scan(&count)
	return count, err
}
