package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doc82/bruce-messenger-fun/internal/config"
	"github.com/doc82/bruce-messenger-fun/internal/hub"
	"github.com/doc82/bruce-messenger-fun/internal/protocol"
	"github.com/doc82/bruce-messenger-fun/internal/pubsub"
	"github.com/doc82/bruce-messenger-fun/internal/server"
)

func setupServer(t *testing.T, heartbeat time.Duration) (*httptest.Server, *hub.Hub) {
	t.Helper()

	cfg := &config.Config{
		Addr:              ":0",
		HeartbeatInterval: heartbeat,
		BroadcastCapacity: 16,
		InboundQueueSize:  64,
		MaxMessageBody:    256,
		MaxPageSize:       100,
	}

	bus := pubsub.NewWatermillBus(cfg.BroadcastCapacity)
	h, err := hub.New(hub.Config{
		HeartbeatInterval: cfg.HeartbeatInterval,
		BroadcastCapacity: cfg.BroadcastCapacity,
		InboundQueueSize:  cfg.InboundQueueSize,
		MaxMessageBody:    cfg.MaxMessageBody,
		MaxPageSize:       cfg.MaxPageSize,
	}, bus)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	ts := httptest.NewServer(server.New(cfg, h).E)
	t.Cleanup(func() {
		ts.Close()
		cancel()
		bus.Close()
	})
	return ts, h
}

func dialSocket(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/socket"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "failed to connect to %s", wsURL)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendInput(t *testing.T, conn *websocket.Conn, in protocol.Input) {
	t.Helper()
	data, err := protocol.EncodeInput(in)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func readOutput(t *testing.T, conn *websocket.Conn) protocol.Output {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err, "failed to read frame")
	out, err := protocol.DecodeOutput(data)
	require.NoError(t, err)
	return out
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := setupServer(t, time.Hour)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// End-to-end: two participants join, chat, misbehave, and leave, all over
// real WebSocket connections.
func TestChatScenario(t *testing.T) {
	ts, h := setupServer(t, time.Hour)

	// Alice joins and gets her confirmation with the default channel.
	alice := dialSocket(t, ts)
	sendInput(t, alice, protocol.JoinInput{UserName: "alice"})

	out := readOutput(t, alice)
	aliceJoined, ok := out.(protocol.UserJoinedOutput)
	require.True(t, ok, "expected UserJoinedOutput, got %T", out)
	assert.Equal(t, "alice", aliceJoined.User.Name)
	require.Len(t, aliceJoined.Channels, 1)
	assert.Equal(t, hub.DefaultChannelID, aliceJoined.Channels[0].ID)
	assert.Equal(t, "holonet", aliceJoined.Channels[0].Name)
	aliceID := aliceJoined.User.ID

	// Bob joins: he gets his confirmation, alice gets the announcement.
	bob := dialSocket(t, ts)
	sendInput(t, bob, protocol.JoinInput{UserName: "bob"})

	out = readOutput(t, bob)
	bobJoined, ok := out.(protocol.UserJoinedOutput)
	require.True(t, ok, "expected UserJoinedOutput, got %T", out)
	assert.Equal(t, "bob", bobJoined.User.Name)
	bobID := bobJoined.User.ID

	out = readOutput(t, alice)
	announce, ok := out.(protocol.UserJoinedOutput)
	require.True(t, ok, "expected UserJoinedOutput announcement, got %T", out)
	assert.Equal(t, bobID, announce.User.ID)
	assert.Equal(t, "bob", announce.User.Name)

	// Alice sends a message: she gets the echo, bob gets the broadcast,
	// both carrying the same message id and body.
	sendInput(t, alice, protocol.MessageInput{Body: "hi"})

	out = readOutput(t, alice)
	echo, ok := out.(protocol.UserMessageOutput)
	require.True(t, ok, "expected UserMessageOutput, got %T", out)
	assert.Equal(t, "hi", echo.Message.Body)
	assert.Equal(t, aliceID, echo.Message.CreatedBy)

	out = readOutput(t, bob)
	broadcast, ok := out.(protocol.MessageOutput)
	require.True(t, ok, "expected MessageOutput, got %T", out)
	assert.Equal(t, echo.Message.ID, broadcast.Message.ID)
	assert.Equal(t, "hi", broadcast.Message.Body)

	// An empty body fails for alice alone and leaves the channel untouched.
	sendInput(t, alice, protocol.MessageInput{Body: ""})

	out = readOutput(t, alice)
	errOut, ok := out.(protocol.ErrorOutput)
	require.True(t, ok, "expected ErrorOutput, got %T", out)
	assert.Equal(t, protocol.ErrInvalidMessageRequest, errOut.Code)

	count, err := h.Channels().MessageCount(hub.DefaultChannelID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Alice disconnects: bob's very next frame is her departure, so he never
	// saw anything from the rejected message.
	require.NoError(t, alice.Close())

	out = readOutput(t, bob)
	gone, ok := out.(protocol.UserDisconnectOutput)
	require.True(t, ok, "expected UserDisconnectOutput, got %T", out)
	assert.Equal(t, aliceID, gone.UserID)

	require.Eventually(t, func() bool {
		_, registered := h.Sessions().Get(aliceID)
		return !registered && h.Sessions().Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNonTextFrameEndsConnection(t *testing.T) {
	ts, h := setupServer(t, time.Hour)

	conn := dialSocket(t, ts)
	sendInput(t, conn, protocol.JoinInput{UserName: "alice"})
	readOutput(t, conn)
	require.Equal(t, 1, h.Sessions().Len())

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x01}))

	require.Eventually(t, func() bool {
		return h.Sessions().Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUndecodableFrameEndsConnection(t *testing.T) {
	ts, h := setupServer(t, time.Hour)

	conn := dialSocket(t, ts)
	sendInput(t, conn, protocol.JoinInput{UserName: "alice"})
	readOutput(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	require.Eventually(t, func() bool {
		return h.Sessions().Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestKeepAliveTickReachesClient(t *testing.T) {
	ts, _ := setupServer(t, 25*time.Millisecond)

	conn := dialSocket(t, ts)
	sendInput(t, conn, protocol.JoinInput{UserName: "alice"})
	readOutput(t, conn)

	out := readOutput(t, conn)
	assert.IsType(t, protocol.KeepAliveTickOutput{}, out)
}

// A session id from a dead connection must never be resurrected by the
// transport: every new connection gets a fresh id.
func TestEachConnectionGetsFreshSession(t *testing.T) {
	ts, h := setupServer(t, time.Hour)

	first := dialSocket(t, ts)
	sendInput(t, first, protocol.JoinInput{UserName: "alice"})
	firstJoined := readOutput(t, first).(protocol.UserJoinedOutput)

	second := dialSocket(t, ts)
	sendInput(t, second, protocol.JoinInput{UserName: "alice"})

	// The second connection sees its own confirmation first.
	secondJoined := readOutput(t, second).(protocol.UserJoinedOutput)
	assert.NotEqual(t, firstJoined.User.ID, secondJoined.User.ID)
	assert.NotEqual(t, uuid.Nil, secondJoined.User.ID)
	assert.Equal(t, 2, h.Sessions().Len())
}
