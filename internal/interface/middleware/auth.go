package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"convohub/pkg/helpers"
	"convohub/pkg/response"
)

// Auth validates the access token cookie and ensures an active session exists
// in Redis. It sets userID, userName, and userEmail in the Gin context on
// success. The websocket handshake runs behind this same middleware, so the
// delivery channel accepts exactly the proof the request layer accepts.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.Abort()
			return
		}

		// Retrieve session from Redis as a hash
		key := "user:session:" + claims.UserID
		data, err := rdb.HGetAll(c.Request.Context(), key).Result()
		if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
			c.Abort()
			return
		}

		// The verified token claims are the identity source; the session hash
		// only proves the login is still live.
		c.Set("userID", claims.UserID)
		c.Set("userName", data["full_name"])
		c.Set("userEmail", data["email"])
		c.Next()
	}
}
