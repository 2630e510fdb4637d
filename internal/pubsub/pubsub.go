package pubsub

import "context"

// Message is an addressed payload carried on a broadcast topic. Every
// subscriber of the topic receives every message; Recipient and Origin let
// the consumer filter for envelopes meant for it.
type Message struct {
	// Topic identifies the broadcast stream the message belongs to.
	Topic string
	// Recipient is the session id the message is addressed to.
	Recipient string
	// Origin is the session id whose event produced the message.
	Origin string
	// Payload is the encoded wire frame.
	Payload []byte
}

// Handler processes one received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher sends messages to the broadcast topic.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber receives messages from the broadcast topic.
type Subscriber interface {
	// Subscribe starts delivering the topic's messages to the handler until
	// the context is canceled. It returns once the subscription is active.
	// Messages arrive in publish order; the publisher waits for each
	// delivery to be handled, so handlers must return promptly and never
	// block on a slow consumer.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}

// Bus is a combined publisher and subscriber backed by one transport.
type Bus interface {
	Publisher
	Subscriber
}
