package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"convohub/internal/domain/entity"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestClient(userID string) *Client {
	return &Client{
		userID: userID,
		log:    testLogger(),
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

type wireEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readEvent(t *testing.T, c *Client) wireEvent {
	t.Helper()
	select {
	case data := <-c.send:
		var ev wireEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatalf("no event queued for user %s", c.userID)
		return wireEvent{}
	}
}

func readPresence(t *testing.T, c *Client) []string {
	t.Helper()
	ev := readEvent(t, c)
	require.Equal(t, EventOnlineUsers, ev.Type)
	var ids []string
	require.NoError(t, json.Unmarshal(ev.Payload, &ids))
	return ids
}

func isClosed(c *Client) bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func TestRegistry_Register_BroadcastsPresenceToAll(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(testLogger())

	alice := newTestClient("alice")
	reg.Register(alice)
	req.Equal([]string{"alice"}, readPresence(t, alice))

	bob := newTestClient("bob")
	reg.Register(bob)

	// Both connections see the updated set.
	req.Equal([]string{"alice", "bob"}, readPresence(t, alice))
	req.Equal([]string{"alice", "bob"}, readPresence(t, bob))
	req.Equal([]string{"alice", "bob"}, reg.OnlineUserIDs())
}

func TestRegistry_Register_ReconnectReplacesEntry(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(testLogger())

	first := newTestClient("alice")
	second := newTestClient("alice")
	reg.Register(first)
	reg.Register(second)

	// Exactly one live entry, no duplicate in the presence set.
	req.Equal([]string{"alice"}, reg.OnlineUserIDs())
	req.Same(second, reg.Lookup("alice"))
	req.True(isClosed(first), "replaced connection must be closed")
	req.False(isClosed(second))
}

func TestRegistry_Deregister_StaleConnectionIsNoOp(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(testLogger())

	first := newTestClient("alice")
	second := newTestClient("alice")
	reg.Register(first)
	reg.Register(second)

	// The old connection's disconnect arrives after the reconnect.
	reg.Deregister(first)

	req.Equal([]string{"alice"}, reg.OnlineUserIDs())
	req.Same(second, reg.Lookup("alice"))
}

func TestRegistry_Deregister_UnknownClientIsNoOp(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(testLogger())

	bob := newTestClient("bob")
	reg.Register(bob)
	drainEvents(bob)

	reg.Deregister(newTestClient("ghost"))

	req.Equal([]string{"bob"}, reg.OnlineUserIDs())
	// No-op must not broadcast either.
	req.Empty(bob.send)
}

func TestRegistry_Deregister_BroadcastsSetWithoutLeaver(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(testLogger())

	alice := newTestClient("alice")
	bob := newTestClient("bob")
	reg.Register(alice)
	reg.Register(bob)
	drainEvents(alice)
	drainEvents(bob)

	reg.Deregister(alice)

	req.Equal([]string{"bob"}, readPresence(t, bob))
	req.Nil(reg.Lookup("alice"))
}

func drainEvents(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func TestGateway_Deliver_PushesToRecipientOnly(t *testing.T) {
	req := require.New(t)
	g := &Gateway{registry: NewRegistry(testLogger()), log: testLogger()}

	alice := newTestClient("alice")
	bob := newTestClient("bob")
	g.registry.Register(alice)
	g.registry.Register(bob)
	drainEvents(alice)
	drainEvents(bob)

	msg := &entity.Message{ID: "m1", SenderID: "alice", RecipientID: "bob", Text: "hi"}
	g.Deliver(msg)

	ev := readEvent(t, bob)
	req.Equal(EventNewMessage, ev.Type)
	var got entity.Message
	req.NoError(json.Unmarshal(ev.Payload, &got))
	req.Equal("m1", got.ID)
	req.Equal("alice", got.SenderID)
	req.Equal("hi", got.Text)
	req.Empty(got.ImageURL)

	// Sender gets nothing.
	req.Empty(alice.send)
}

func TestGateway_Deliver_OfflineRecipientIsSilent(t *testing.T) {
	req := require.New(t)
	g := &Gateway{registry: NewRegistry(testLogger()), log: testLogger()}

	alice := newTestClient("alice")
	g.registry.Register(alice)
	drainEvents(alice)

	g.Deliver(&entity.Message{ID: "m1", SenderID: "alice", RecipientID: "carol", Text: "hi"})

	// No push anywhere.
	req.Empty(alice.send)
}

func TestClient_TrySend_DropsWhenClosed(t *testing.T) {
	req := require.New(t)
	c := newTestClient("alice")
	c.Close()
	c.Close() // idempotent

	req.False(c.trySend([]byte("{}")))
	req.Empty(c.send)
}
