package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"anonbot/pkg/logger"
	"anonbot/pkg/models"
	"anonbot/storage"
)

type chatRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewChatRepo(db *pgxpool.Pool, log logger.ILogger) storage.IChatStorage {
	return &chatRepo{db: db, log: log}
}

func (r *chatRepo) Enqueue(ctx context.Context, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		"INSERT INTO chat_queue (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING", userID)
	if err != nil {
		r.log.Error("failed to enqueue user", logger.Int64("user_id", userID), logger.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *chatRepo) Dequeue(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM chat_queue WHERE user_id = $1", userID)
	return err
}

func (r *chatRepo) QueueCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM chat_queue").Scan(&count)
	return count, err
}

func (r *chatRepo) InQueue(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM chat_queue WHERE user_id = $1)", userID).Scan(&exists)
	return exists, err
}

func (r *chatRepo) MatchPartner(ctx context.Context, userID int64) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	// Lock our own queue row before touching anyone else's, so two users
	// matching each other cannot take the rows in opposite order and
	// deadlock on the deletes.
	var self int64
	err = tx.QueryRow(ctx,
		"SELECT user_id FROM chat_queue WHERE user_id = $1 FOR UPDATE", userID).Scan(&self)
	if err != nil {
		if err == pgx.ErrNoRows {
			// A concurrent matcher already claimed us; their transaction
			// owns the pairing.
			return 0, nil
		}
		return 0, err
	}

	var partnerID int64
	err = tx.QueryRow(ctx, `
		SELECT user_id FROM chat_queue
		WHERE user_id <> $1
		ORDER BY RANDOM()
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, userID).Scan(&partnerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}

	if _, err = tx.Exec(ctx,
		"DELETE FROM chat_queue WHERE user_id IN ($1, $2)", userID, partnerID); err != nil {
		return 0, err
	}
	if _, err = tx.Exec(ctx,
		"INSERT INTO chat_connections (user1_id, user2_id) VALUES ($1, $2)", userID, partnerID); err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return partnerID, nil
}

func (r *chatRepo) PartnerOf(ctx context.Context, userID int64) (int64, error) {
	var partnerID int64
	query := `
		SELECT CASE WHEN user1_id = $1 THEN user2_id ELSE user1_id END
		FROM chat_connections
		WHERE user1_id = $1 OR user2_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&partnerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return partnerID, nil
}

func (r *chatRepo) End(ctx context.Context, userID int64) (int64, error) {
	partnerID, err := r.PartnerOf(ctx, userID)
	if err != nil || partnerID == 0 {
		return 0, err
	}
	_, err = r.db.Exec(ctx, `
		DELETE FROM chat_connections
		WHERE (user1_id = $1 AND user2_id = $2) OR (user1_id = $2 AND user2_id = $1)
	`, userID, partnerID)
	if err != nil {
		return 0, err
	}
	return partnerID, nil
}

func (r *chatRepo) EndByID(ctx context.Context, chatID int64) (*models.ChatConnection, error) {
	var conn models.ChatConnection
	query := `DELETE FROM chat_connections WHERE id = $1 RETURNING id, user1_id, user2_id, created_at`
	err := r.db.QueryRow(ctx, query, chatID).Scan(
		&conn.ID, &conn.User1ID, &conn.User2ID, &conn.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to end chat", logger.Int64("chat_id", chatID), logger.Error(err))
		return nil, err
	}
	return &conn, nil
}

func (r *chatRepo) Active(ctx context.Context) ([]*models.ChatConnection, error) {
	query := `
		SELECT cc.id, cc.user1_id, cc.user2_id,
		       COALESCE(u1.name, ''), COALESCE(u2.name, ''), cc.created_at
		FROM chat_connections cc
		LEFT JOIN users u1 ON cc.user1_id = u1.user_id
		LEFT JOIN users u2 ON cc.user2_id = u2.user_id
		ORDER BY cc.created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*models.ChatConnection
	for rows.Next() {
		var c models.ChatConnection
		err := rows.Scan(&c.ID, &c.User1ID, &c.User2ID, &c.User1Name, &c.User2Name, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		chats = append(chats, &c)
	}
	return chats, rows.Err()
}

func (r *chatRepo) ActiveCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM chat_connections").Scan(&count)
	return count, err
}
