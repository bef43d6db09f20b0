package models

import "time"

// MuteRecord is one entry of the mute ledger. Records are append-only:
// a later mute or an unmute supersedes the previous record, the old rows
// stay around as an audit trail.
type MuteRecord struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	MutedUntil time.Time `json:"muted_until"`
	Reason     string    `json:"reason"`
	CreatedBy  int64     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActiveMute is a currently effective mute joined with user info,
// shown in the admin banned list.
type ActiveMute struct {
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	MutedUntil time.Time `json:"muted_until"`
	Reason     string    `json:"reason"`
}
