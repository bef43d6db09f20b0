package models

import "time"

// ChatConnection is an active live-chat pairing between two users.
type ChatConnection struct {
	ID        int64     `json:"id"`
	User1ID   int64     `json:"user1_id"`
	User2ID   int64     `json:"user2_id"`
	User1Name string    `json:"user1_name"`
	User2Name string    `json:"user2_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Partner returns the other side of the connection.
func (c ChatConnection) Partner(userID int64) int64 {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}
