// Package protocol defines the wire-level events exchanged between clients
// and the hub, and the packets that carry them through the hub internally.
//
// Both directions use a tagged JSON envelope: {"type": ..., "payload": ...}.
// Inbound frames carry a join or message event; outbound frames carry one of
// the hub's output variants. "user-message" and "message" share a payload
// shape but keep distinct tags so a client can tell its own echoed send
// apart from someone else's broadcast.
package protocol

import (
	"time"

	"github.com/google/uuid"
)

// ErrorCode identifies a business-rule violation reported to a client.
type ErrorCode string

const (
	// ErrInvalidSession is returned for a message event from a session id
	// that is not in the registry.
	ErrInvalidSession ErrorCode = "invalid-session"
	// ErrInvalidMessageRequest is returned for an empty or over-length body.
	ErrInvalidMessageRequest ErrorCode = "invalid-message-request"
	// ErrChannelFull is reserved for multi-channel capacity enforcement.
	ErrChannelFull ErrorCode = "channel-full"
	// ErrNameTaken is reserved for display-name uniqueness enforcement.
	ErrNameTaken ErrorCode = "name-taken"
)

// Input is an inbound client event.
type Input interface{ isInput() }

// JoinInput announces a client under a display name.
type JoinInput struct {
	UserName string `json:"userName"`
}

// MessageInput submits a chat message body.
type MessageInput struct {
	Body string `json:"body"`
}

func (JoinInput) isInput()    {}
func (MessageInput) isInput() {}

// Output is an outbound hub event.
type Output interface{ isOutput() }

// UserModel is the wire rendering of a session.
type UserModel struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ChannelModel is the wire rendering of a channel summary.
type ChannelModel struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// MessageModel is the wire rendering of a stored message.
type MessageModel struct {
	ID        uuid.UUID `json:"id"`
	Body      string    `json:"body"`
	CreatedBy uuid.UUID `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserJoinedOutput announces a join, both to the joiner (confirmation) and
// to everyone else (announcement). The payloads are identical.
type UserJoinedOutput struct {
	Channels []ChannelModel `json:"channels"`
	User     UserModel      `json:"user"`
}

// UserDisconnectOutput announces that a session left.
type UserDisconnectOutput struct {
	UserID uuid.UUID `json:"userId"`
}

// UserMessageOutput echoes a stored message back to its sender.
type UserMessageOutput struct {
	Message MessageModel `json:"message"`
	Channel ChannelModel `json:"channel"`
}

// MessageOutput broadcasts a stored message to every session other than the
// sender. Same shape as UserMessageOutput, distinct wire tag.
type MessageOutput UserMessageOutput

// ErrorOutput reports a business-rule violation to the offending session.
type ErrorOutput struct {
	Code ErrorCode `json:"code"`
}

// KeepAliveTickOutput is the advisory liveness tick. It carries no payload
// and does not evict idle sessions.
type KeepAliveTickOutput struct{}

func (UserJoinedOutput) isOutput()     {}
func (UserDisconnectOutput) isOutput() {}
func (UserMessageOutput) isOutput()    {}
func (MessageOutput) isOutput()        {}
func (ErrorOutput) isOutput()          {}
func (KeepAliveTickOutput) isOutput()  {}
