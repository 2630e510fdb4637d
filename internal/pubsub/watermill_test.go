package pubsub

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillBus_DeliversAddressedMessages(t *testing.T) {
	bus := NewWatermillBus(16)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu       sync.Mutex
		received []Message
	)
	err := bus.Subscribe(ctx, "test.topic", func(_ context.Context, msg Message) error {
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	sent := Message{
		Topic:     "test.topic",
		Recipient: "recipient-1",
		Origin:    "origin-1",
		Payload:   []byte(`{"type":"keep-alive-tick"}`),
	}
	require.NoError(t, bus.Publish(ctx, sent))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	got := received[0]
	mu.Unlock()
	assert.Equal(t, "test.topic", got.Topic)
	assert.Equal(t, "recipient-1", got.Recipient)
	assert.Equal(t, "origin-1", got.Origin)
	assert.Equal(t, sent.Payload, got.Payload)
}

func TestWatermillBus_DeliversInPublishOrder(t *testing.T) {
	bus := NewWatermillBus(16)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const total = 200
	received := make(chan string, total)
	err := bus.Subscribe(ctx, "test.topic", func(_ context.Context, msg Message) error {
		received <- string(msg.Payload)
		return nil
	})
	require.NoError(t, err)

	for i := 0; i < total; i++ {
		require.NoError(t, bus.Publish(ctx, Message{
			Topic:   "test.topic",
			Payload: []byte(fmt.Sprintf("m-%03d", i)),
		}))
	}

	for i := 0; i < total; i++ {
		select {
		case got := <-received:
			require.Equal(t, fmt.Sprintf("m-%03d", i), got,
				"delivery order must match publish order")
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

// The bus is non-persistent: publishing without a subscriber drops the
// message instead of queuing it for whoever subscribes next.
func TestWatermillBus_NoReplayForLateSubscribers(t *testing.T) {
	bus := NewWatermillBus(16)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Publish(ctx, Message{
		Topic:   "test.topic",
		Payload: []byte("gone"),
	}))

	delivered := make(chan Message, 1)
	err := bus.Subscribe(ctx, "test.topic", func(_ context.Context, msg Message) error {
		delivered <- msg
		return nil
	})
	require.NoError(t, err)

	select {
	case msg := <-delivered:
		t.Fatalf("late subscriber must not see prior messages, got %q", msg.Payload)
	case <-time.After(150 * time.Millisecond):
	}
}
