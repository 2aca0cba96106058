package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer. The channel is push-only, so
	// inbound frames are small control traffic at most.
	maxMessageSize = 512

	sendBufferSize = 64
)

// Client binds a websocket connection to the user identity it was
// authenticated as. It is created after a successful handshake and destroyed
// on disconnect; never persisted.
type Client struct {
	userID string
	conn   *websocket.Conn
	log    *logrus.Logger

	// Buffered channel of outbound event frames.
	send chan []byte
	// Closed exactly once when the client is shut down. The send channel is
	// never closed, so a concurrent trySend can never panic.
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, userID string, log *logrus.Logger) *Client {
	return &Client{
		userID: userID,
		conn:   conn,
		log:    log,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Close signals the write pump to stop. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// trySend queues a frame for the write pump without ever blocking. Delivery
// is best-effort: a full buffer or an already-closed client drops the frame.
func (c *Client) trySend(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		if c.log != nil {
			c.log.WithField("user_id", c.userID).Warn("send buffer full, dropping event")
		}
		return false
	}
}

// readPump consumes inbound frames until the connection drops. Clients submit
// messages over the REST surface, so inbound payloads are discarded; the read
// loop exists to detect disconnects and keep pong deadlines fresh.
//
// Runs in a per-connection goroutine; it is the only reader.
func (c *Client) readPump(reg *Registry) {
	defer func() {
		reg.Deregister(c)
		c.Close()
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				if c.log != nil {
					c.log.WithError(err).WithField("user_id", c.userID).Debug("websocket read failed")
				}
			}
			return
		}
	}
}

// writePump pushes queued frames and pings to the connection.
//
// Runs in a per-connection goroutine; it is the only writer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
