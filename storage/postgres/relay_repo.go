package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"anonbot/pkg/logger"
	"anonbot/pkg/models"
	"anonbot/storage"
)

// relayRepo persists the relayed-message-id -> original-sender correlation,
// so replies can be attributed after a process restart.
type relayRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewRelayRepo(db *pgxpool.Pool, log logger.ILogger) storage.IRelayStorage {
	return &relayRepo{db: db, log: log}
}

func (r *relayRepo) SaveLink(ctx context.Context, link *models.MessageLink) error {
	query := `
		INSERT INTO message_links (chat_id, message_id, sender_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id, message_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, link.ChatID, link.MessageID, link.SenderID)
	if err != nil {
		r.log.Error("failed to save message link", logger.Error(err))
	}
	return err
}

func (r *relayRepo) ResolveSender(ctx context.Context, chatID, messageID int64) (int64, error) {
	var senderID int64
	query := `SELECT sender_id FROM message_links WHERE chat_id = $1 AND message_id = $2`
	err := r.db.QueryRow(ctx, query, chatID, messageID).Scan(&senderID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		r.log.Error("failed to resolve sender", logger.Error(err))
		return 0, err
	}
	return senderID, nil
}
