package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRecipientNotFound means a link token did not resolve to any user.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrUnsupportedContent means the inbound message carried a content kind
	// the relay does not handle.
	ErrUnsupportedContent = errors.New("unsupported content kind")

	// ErrNoThread means a reply could not be attributed to an original sender.
	ErrNoThread = errors.New("original thread is gone")
)

// MutedError rejects a relay attempt from a muted sender.
type MutedError struct {
	Until time.Time
}

func (e *MutedError) Error() string {
	return fmt.Sprintf("sender is muted until %s", e.Until.Format(time.RFC3339))
}
