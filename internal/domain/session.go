package domain

import "github.com/google/uuid"

// Session is one connected participant. The id is minted by the transport
// layer when the connection is accepted and lives for exactly the lifetime
// of that connection; it is never reused.
type Session struct {
	ID   uuid.UUID
	Name string
}

// NewSession creates an immutable session record.
func NewSession(id uuid.UUID, name string) Session {
	return Session{ID: id, Name: name}
}
