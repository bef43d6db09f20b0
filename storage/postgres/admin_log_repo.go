package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"anonbot/pkg/logger"
	"anonbot/storage"
)

type adminLogRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewAdminLogRepo(db *pgxpool.Pool, log logger.ILogger) storage.IAdminLogStorage {
	return &adminLogRepo{db: db, log: log}
}

func (r *adminLogRepo) Log(ctx context.Context, adminID int64, action, details string) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO admin_logs (admin_id, action, details) VALUES ($1, $2, $3)",
		adminID, action, details)
	if err != nil {
		r.log.Error("failed to log admin action", logger.Error(err))
	}
	return err
}
