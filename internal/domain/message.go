package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single chat message. Messages are immutable once created and
// only ever appended to a channel's log.
type Message struct {
	ID        uuid.UUID
	ChannelID uuid.UUID
	Body      string
	// Author is a snapshot of the sending session at send time. It is a
	// denormalized copy for quick rendering; the session registry remains
	// the authoritative record of identity.
	Author    Session
	CreatedBy uuid.UUID
	CreatedAt time.Time
}

// NewMessage mints a message with a fresh id from the author's current
// session snapshot.
func NewMessage(channelID uuid.UUID, author Session, body string, createdAt time.Time) Message {
	return Message{
		ID:        uuid.New(),
		ChannelID: channelID,
		Body:      body,
		Author:    author,
		CreatedBy: author.ID,
		CreatedAt: createdAt,
	}
}
