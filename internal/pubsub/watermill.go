package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Metadata keys used to carry addressing fields through watermill.
const (
	metaKeyRecipient = "recipient_id"
	metaKeyOrigin    = "origin_id"
)

// WatermillBus implements Bus on top of watermill's in-memory GoChannel.
//
// The channel is configured non-persistent: a message published while a
// subscriber does not yet exist is simply gone. That is the hub's deliberate
// at-most-once, no-backlog delivery policy, so late subscribers miss prior
// envelopes rather than replaying them.
type WatermillBus struct {
	pub    message.Publisher
	sub    message.Subscriber
	logger watermill.LoggerAdapter
}

// NewWatermillBus builds an in-memory bus whose per-subscriber output buffer
// holds at most capacity messages.
func NewWatermillBus(capacity int) *WatermillBus {
	logger := watermill.NewStdLogger(false, false)
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: int64(capacity),
			Persistent:          false,
			// Without the ack barrier GoChannel hands each published message
			// to its own delivery goroutine, and back-to-back publishes race
			// for the subscriber. Blocking until ack keeps per-subscriber
			// delivery in publish order; handlers must ack promptly and never
			// wait on a slow consumer.
			BlockPublishUntilSubscriberAck: true,
		},
		logger,
	)

	return &WatermillBus{
		pub:    goChannel,
		sub:    goChannel,
		logger: logger,
	}
}

func toWatermillMessage(msg Message) *message.Message {
	wmMsg := message.NewMessage(watermill.NewUUID(), msg.Payload)
	wmMsg.Metadata.Set(metaKeyRecipient, msg.Recipient)
	wmMsg.Metadata.Set(metaKeyOrigin, msg.Origin)
	return wmMsg
}

func fromWatermillMessage(topic string, wmMsg *message.Message) Message {
	return Message{
		Topic:     topic,
		Recipient: wmMsg.Metadata.Get(metaKeyRecipient),
		Origin:    wmMsg.Metadata.Get(metaKeyOrigin),
		Payload:   wmMsg.Payload,
	}
}

// Publish implements Publisher.
func (wb *WatermillBus) Publish(ctx context.Context, msg Message) error {
	return wb.pub.Publish(msg.Topic, toWatermillMessage(msg))
}

// Subscribe implements Subscriber. The handler runs on a dedicated goroutine
// until the context is canceled or the topic closes.
func (wb *WatermillBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := wb.sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for wmMsg := range messages {
			msg := fromWatermillMessage(topic, wmMsg)
			if err := handler(ctx, msg); err != nil {
				slog.Error("Failed to handle broadcast message",
					"topic", topic, "msg_id", wmMsg.UUID, "error", err)
				wmMsg.Nack()
				continue
			}
			wmMsg.Ack()
		}
		slog.Debug("Subscription message loop ended", "topic", topic)
	}()

	return nil
}

// Close shuts the bus down, ending all subscriptions.
func (wb *WatermillBus) Close() error {
	return wb.sub.Close()
}
