package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"anonbot/pkg/logger"
	"anonbot/pkg/models"
	"anonbot/pkg/token"
	"anonbot/storage"
)

const userColumns = "user_id, username, name, link_token, is_admin, created_at"

// How many times to retry token generation on a unique-constraint collision.
const tokenRetries = 5

type userRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewUserRepo(db *pgxpool.Pool, log logger.ILogger) storage.IUserStorage {
	return &userRepo{db: db, log: log}
}

func (r *userRepo) GetOrCreate(ctx context.Context, userID int64, username, name string) (*models.User, bool, error) {
	user, err := r.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if user != nil {
		if user.Username != username || user.Name != name {
			if err := r.UpdateInfo(ctx, userID, username, name); err != nil {
				return nil, false, err
			}
			user.Username = username
			user.Name = name
		}
		return user, false, nil
	}

	query := `
		INSERT INTO users (user_id, username, name, link_token)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username, name = EXCLUDED.name
		RETURNING ` + userColumns

	for attempt := 0; attempt < tokenRetries; attempt++ {
		tok, err := token.New(token.Length)
		if err != nil {
			return nil, false, err
		}

		var u models.User
		err = r.db.QueryRow(ctx, query, userID, username, name, tok).Scan(
			&u.UserID, &u.Username, &u.Name, &u.LinkToken, &u.IsAdmin, &u.CreatedAt,
		)
		if err == nil {
			return &u, true, nil
		}
		if isUniqueViolation(err) {
			// link_token collision, roll a new one
			continue
		}
		r.log.Error("failed to create user", logger.Error(err))
		return nil, false, err
	}
	return nil, false, fmt.Errorf("could not issue a unique link token after %d attempts", tokenRetries)
}

func (r *userRepo) Get(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&u.UserID, &u.Username, &u.Name, &u.LinkToken, &u.IsAdmin, &u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get user", logger.Error(err))
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByToken(ctx context.Context, tok string) (*models.User, error) {
	var u models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE link_token = $1`
	err := r.db.QueryRow(ctx, query, tok).Scan(
		&u.UserID, &u.Username, &u.Name, &u.LinkToken, &u.IsAdmin, &u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get user by token", logger.Error(err))
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) ListRecent(ctx context.Context, page, pageSize int) ([]*models.User, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		err := rows.Scan(&u.UserID, &u.Username, &u.Name, &u.LinkToken, &u.IsAdmin, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM users").Scan(&count)
	return count, err
}

func (r *userRepo) Stats(ctx context.Context, todayStart, monthStart time.Time) (*models.UserStats, error) {
	var stats models.UserStats
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE created_at >= $1),
			count(*) FILTER (WHERE created_at >= $2)
		FROM users`
	err := r.db.QueryRow(ctx, query, monthStart, todayStart).Scan(
		&stats.Total, &stats.CreatedMonth, &stats.CreatedToday,
	)
	if err != nil {
		r.log.Error("failed to get user stats", logger.Error(err))
		return nil, err
	}
	return &stats, nil
}

func (r *userRepo) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET is_admin=$1 WHERE user_id=$2", isAdmin, userID)
	return err
}

func (r *userRepo) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var isAdmin bool
	err := r.db.QueryRow(ctx, "SELECT is_admin FROM users WHERE user_id=$1", userID).Scan(&isAdmin)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return isAdmin, nil
}

func (r *userRepo) AdminIDs(ctx context.Context) ([]int64, error) {
	return r.ids(ctx, "SELECT user_id FROM users WHERE is_admin = TRUE")
}

func (r *userRepo) AllIDs(ctx context.Context) ([]int64, error) {
	return r.ids(ctx, "SELECT user_id FROM users ORDER BY created_at")
}

func (r *userRepo) ids(ctx context.Context, query string) ([]int64, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *userRepo) UpdateInfo(ctx context.Context, userID int64, username, name string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE users SET username=$1, name=$2 WHERE user_id=$3 AND (username <> $1 OR name <> $2)",
		username, name, userID)
	return err
}

func isUniqueViolation(err error) bool {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code == "23505"
	}
	return false
}
