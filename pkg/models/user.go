package models

import "time"

type User struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	LinkToken string    `json:"link_token"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStats holds aggregate registration counts for the admin panel.
type UserStats struct {
	Total        int `json:"total"`
	CreatedMonth int `json:"created_this_month"`
	CreatedToday int `json:"created_today"`
}
