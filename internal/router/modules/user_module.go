package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"convohub/internal/container"
	handlers "convohub/internal/interface/http"
	"convohub/internal/interface/middleware"
	"convohub/pkg/helpers"
)

// UserModule wires the auth/profile HTTP handlers and JWT middleware.
// Public: POST /api/auth/signup, /api/auth/login, /api/auth/refresh
// Protected: POST /api/auth/logout, GET /api/auth/check, PUT /api/auth/update-profile

type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	// Public, rate-limited per IP
	signupLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIP(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/auth/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/auth/logout", m.Handler.Logout)
		auth.GET("/auth/check", m.Handler.Check)
		auth.PUT("/auth/update-profile", m.Handler.UpdateProfile)
	}
}
