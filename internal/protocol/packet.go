package protocol

import "github.com/google/uuid"

// RequestPacket is one inbound event on the hub's serialized queue. The
// transport layer stamps every decoded frame with the connection's session
// id. ChannelID currently mirrors SessionID: it is a placeholder for a real
// channel selector, not a routing key.
type RequestPacket struct {
	SessionID uuid.UUID
	ChannelID uuid.UUID
	Input     Input
}

// NewRequestPacket builds a request packet for a connection's session.
func NewRequestPacket(sessionID uuid.UUID, input Input) RequestPacket {
	return RequestPacket{
		SessionID: sessionID,
		ChannelID: sessionID,
		Input:     input,
	}
}

// ResponsePacket is one addressed envelope on the broadcast topic. Every
// subscriber sees every packet and keeps only those whose RecipientID
// matches its own session id. OriginID names the session whose event caused
// the envelope.
type ResponsePacket struct {
	RecipientID uuid.UUID
	OriginID    uuid.UUID
	Output      Output
}

// NewResponsePacket builds an envelope addressed to a single session.
func NewResponsePacket(recipientID, originID uuid.UUID, output Output) ResponsePacket {
	return ResponsePacket{
		RecipientID: recipientID,
		OriginID:    originID,
		Output:      output,
	}
}
