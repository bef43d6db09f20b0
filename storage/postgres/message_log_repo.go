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

type messageLogRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewMessageLogRepo(db *pgxpool.Pool, log logger.ILogger) storage.IMessageLogStorage {
	return &messageLogRepo{db: db, log: log}
}

func (r *messageLogRepo) Append(ctx context.Context, entry *models.MessageLogEntry) error {
	query := `
		INSERT INTO message_log (source_user_id, destination_user_id, message_type, sent_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query,
		entry.SourceUserID, entry.DestinationID, string(entry.MessageType), entry.SentAt)
	if err != nil {
		r.log.Error("failed to append message log", logger.Error(err))
	}
	return err
}

func (r *messageLogRepo) CountBetween(ctx context.Context, user1ID, user2ID int64) (int, error) {
	var count int
	query := `
		SELECT count(*) FROM message_log
		WHERE (source_user_id = $1 AND destination_user_id = $2)
		   OR (source_user_id = $2 AND destination_user_id = $1)
	`
	err := r.db.QueryRow(ctx, query, user1ID, user2ID).Scan(&count)
	return count, err
}

func (r *messageLogRepo) LastSentAt(ctx context.Context, userID int64) (*time.Time, error) {
	var sentAt time.Time
	query := `SELECT sent_at FROM message_log WHERE source_user_id = $1 ORDER BY sent_at DESC LIMIT 1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&sentAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &sentAt, nil
}
