package domain

import (
	"sort"

	"github.com/google/uuid"
)

// Channel is a named message stream with an append-only, time-ordered log.
// Channels are never destroyed during the process lifetime.
type Channel struct {
	ID       uuid.UUID
	Name     string
	OwnerID  uuid.UUID
	Messages []Message
}

// NewChannel creates a channel. A nil id requests a randomly assigned one;
// a non-nil id pins the channel to a well-known identifier (used for the
// default channel seeded at startup).
func NewChannel(id uuid.UUID, name string, ownerID uuid.UUID) *Channel {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Channel{
		ID:      id,
		Name:    name,
		OwnerID: ownerID,
	}
}

// Append adds a message to the log and restores the ordering invariant:
// messages are sorted ascending by creation time, ties broken by insertion
// order. Re-sorting on every append is acceptable at the current scale.
func (c *Channel) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
	sort.SliceStable(c.Messages, func(i, j int) bool {
		return c.Messages[i].CreatedAt.Before(c.Messages[j].CreatedAt)
	})
}

// Paginate returns a copy of up to limit messages starting at offset, in log
// order. The window is clamped to the log bounds, so out-of-range requests
// yield an empty slice rather than an error. The page-size cap is the
// store's concern, not the channel's.
func (c *Channel) Paginate(offset, limit int) []Message {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(c.Messages) {
		return []Message{}
	}
	end := offset + limit
	if end > len(c.Messages) {
		end = len(c.Messages)
	}
	out := make([]Message, end-offset)
	copy(out, c.Messages[offset:end])
	return out
}

// Recent returns a copy of up to max of the newest messages, newest first.
// A channel with fewer messages than the cap returns whatever it has; an
// empty channel returns an empty slice.
func (c *Channel) Recent(max int) []Message {
	if max < 0 {
		max = 0
	}
	n := len(c.Messages)
	if n > max {
		n = max
	}
	out := make([]Message, 0, n)
	for i := len(c.Messages) - 1; i >= len(c.Messages)-n; i-- {
		out = append(out, c.Messages[i])
	}
	return out
}

// ChannelSummary is the shareable identity of a channel, without its
// message log.
type ChannelSummary struct {
	ID   uuid.UUID
	Name string
}

// Summary returns the channel's identity for embedding in outbound events.
func (c *Channel) Summary() ChannelSummary {
	return ChannelSummary{ID: c.ID, Name: c.Name}
}

// FindMessage looks up a message in the log by id.
func (c *Channel) FindMessage(id uuid.UUID) (Message, bool) {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg, true
		}
	}
	return Message{}, false
}
