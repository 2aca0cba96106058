package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"convohub/internal/container"
	handlers "convohub/internal/interface/http"
	"convohub/internal/interface/middleware"
	"convohub/pkg/helpers"
)

// BotModule exposes the assistant endpoint. Tighter rate limit than the
// rest of the API since each request fans out to the upstream model.

type BotModule struct {
	Handler *handlers.BotHandler
	JWT     *helpers.JWTManager
}

func NewBotModule(h *handlers.BotHandler, jwt *helpers.JWTManager) *BotModule {
	return &BotModule{Handler: h, JWT: jwt}
}

func (m *BotModule) Register(rg *gin.RouterGroup) {
	grp := rg.Group("/bot")
	grp.Use(middleware.Auth(container.GetRedis(), m.JWT))
	grp.Use(middleware.RateLimit(container.GetRedis(), 20, time.Minute, middleware.KeyByUserID(), nil))
	{
		grp.POST("/message", m.Handler.SendMessage)
	}
}
