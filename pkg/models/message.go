package models

import "time"

type ContentKind string

const (
	KindText     ContentKind = "text"
	KindPhoto    ContentKind = "photo"
	KindVideo    ContentKind = "video"
	KindVoice    ContentKind = "voice"
	KindDocument ContentKind = "document"
)

// Content is the tagged variant relayed between users. Media kinds carry
// the Telegram file ID instead of a body.
type Content struct {
	Kind   ContentKind `json:"kind"`
	Text   string      `json:"text,omitempty"`
	FileID string      `json:"file_id,omitempty"`
}

func (c Content) IsMedia() bool {
	return c.Kind != KindText
}

// MessageLogEntry is an append-only audit row written for every relayed message.
type MessageLogEntry struct {
	ID            int64       `json:"id"`
	SourceUserID  int64       `json:"source_user_id"`
	DestinationID int64       `json:"destination_user_id"`
	MessageType   ContentKind `json:"message_type"`
	SentAt        time.Time   `json:"sent_at"`
}

// MessageLink maps a relayed message in the recipient's chat back to the
// original sender, so a reply can be routed without exposing identities.
type MessageLink struct {
	ChatID    int64     `json:"chat_id"`
	MessageID int64     `json:"message_id"`
	SenderID  int64     `json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`
}
