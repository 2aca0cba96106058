package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"convohub/internal/domain/entity"
	"convohub/pkg/response"
)

// Gateway is the delivery channel: it completes the websocket handshake for
// already-authenticated requests, keeps the presence registry current, and
// relays persisted messages to online recipients.
type Gateway struct {
	registry *Registry
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewGateway(log *logrus.Logger, allowedOrigins []string) *Gateway {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Gateway{
		registry: NewRegistry(log),
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// OnlineUserIDs returns the current presence set.
func (g *Gateway) OnlineUserIDs() []string { return g.registry.OnlineUserIDs() }

// ServeWS handles GET /ws. It runs behind the same auth middleware as the
// REST surface, so the session proof has already been verified by the time
// the upgrade starts; a request without a verified identity is refused and
// never registered.
func (g *Gateway) ServeWS(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		c.Abort()
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		g.log.WithError(err).WithField("user_id", userID).Warn("websocket upgrade failed")
		return
	}

	client := newClient(conn, userID, g.log)
	g.registry.Register(client)

	go client.writePump()
	go client.readPump(g.registry)
}

// Deliver pushes a persisted message to the recipient's live connection, if
// any. Fire-and-forget: an offline recipient or a full send buffer leaves
// the message in the store for the next history fetch.
func (g *Gateway) Deliver(m *entity.Message) {
	client := g.registry.Lookup(m.RecipientID)
	if client == nil {
		g.log.WithFields(logrus.Fields{"message_id": m.ID, "recipient_id": m.RecipientID}).Debug("recipient offline, skipping push")
		return
	}
	data, err := marshalEvent(messageEvent(m))
	if err != nil {
		g.log.WithError(err).WithField("message_id", m.ID).Error("marshal message event failed")
		return
	}
	if client.trySend(data) {
		g.log.WithFields(logrus.Fields{"message_id": m.ID, "recipient_id": m.RecipientID}).Debug("message pushed")
	}
}
