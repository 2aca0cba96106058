package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"convohub/internal/container"
	handlers "convohub/internal/interface/http"
	"convohub/internal/interface/middleware"
	"convohub/pkg/helpers"
)

// MessageModule wires the contact list and 1:1 conversation endpoints.
// Everything here requires an authenticated session.

type MessageModule struct {
	Messages *handlers.MessageHandler
	Users    *handlers.UserHandler
	JWT      *helpers.JWTManager
}

func NewMessageModule(mh *handlers.MessageHandler, uh *handlers.UserHandler, jwt *helpers.JWTManager) *MessageModule {
	return &MessageModule{Messages: mh, Users: uh, JWT: jwt}
}

func (m *MessageModule) Register(rg *gin.RouterGroup) {
	grp := rg.Group("/messages")
	grp.Use(middleware.Auth(container.GetRedis(), m.JWT))
	grp.Use(middleware.RateLimit(container.GetRedis(), 240, time.Minute, middleware.KeyByUserID(), nil))
	{
		grp.GET("/users", m.Messages.GetContacts)
		grp.GET("/users/search", m.Users.Search)
		grp.GET("/:id", m.Messages.GetMessages)
		grp.POST("/send/:id", m.Messages.SendMessage)
	}
}
