package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"convohub/internal/interface/middleware"
	"convohub/pkg/helpers"
)

// newHandshakeServer wires the gateway behind the real auth middleware, the
// same way cmd/main.go mounts GET /ws.
func newHandshakeServer(t *testing.T) (*httptest.Server, *Gateway, *miniredis.Miniredis, *helpers.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, time.Hour)
	g := NewGateway(testLogger(), nil)

	r := gin.New()
	r.GET("/ws", middleware.Auth(rdb, jwt), g.ServeWS)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, g, mr, jwt
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHandshake_RefusedWithoutSession(t *testing.T) {
	srv, g, _, jwt := newHandshakeServer(t)

	// No cookie at all.
	conn, res, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Nil(t, conn)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	// A well-formed token whose session was never created (or already
	// destroyed by logout) is refused the same way.
	token, _, err := jwt.GenerateAccessToken("alice", "sid-1")
	require.NoError(t, err)
	header := http.Header{"Cookie": {"access_token=" + token}}
	conn, res, err = websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Nil(t, conn)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	require.Empty(t, g.OnlineUserIDs())
}

func TestHandshake_RegistersAuthenticatedUser(t *testing.T) {
	srv, g, mr, jwt := newHandshakeServer(t)

	// The session hash carries no user_id field: identity must come from the
	// verified token claims, the hash only proves the login is still live.
	mr.HSet("user:session:alice", "sid", "sid-1", "full_name", "Alice Carter")
	token, _, err := jwt.GenerateAccessToken("alice", "sid-1")
	require.NoError(t, err)

	header := http.Header{"Cookie": {"access_token=" + token}}
	conn, res, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, res.StatusCode)
	defer conn.Close()

	// The first frame is the presence snapshot sent on registration.
	var ev wireEvent
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, EventOnlineUsers, ev.Type)
	require.JSONEq(t, `["alice"]`, string(ev.Payload))

	require.Equal(t, []string{"alice"}, g.OnlineUserIDs())
}

func TestHandshake_StaleSessionIDRefused(t *testing.T) {
	srv, g, mr, jwt := newHandshakeServer(t)

	// Token minted for a session id the store no longer holds, e.g. after a
	// login on another device rotated the sid.
	mr.HSet("user:session:alice", "sid", "sid-2", "full_name", "Alice Carter")
	token, _, err := jwt.GenerateAccessToken("alice", "sid-1")
	require.NoError(t, err)

	header := http.Header{"Cookie": {"access_token=" + token}}
	conn, res, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Nil(t, conn)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.Empty(t, g.OnlineUserIDs())
}
