package router

import (
	chatapp "convohub/internal/application"
	"convohub/internal/container"
	pginfra "convohub/internal/infrastructure/postgres"
	handlers "convohub/internal/interface/http"
	"convohub/internal/router/modules"
)

type moduleDeps struct {
	Users    *handlers.UserHandler
	Messages *handlers.MessageHandler
	Bot      *handlers.BotHandler
}

func buildDeps() moduleDeps {
	cfg := container.GetConfig()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	msgRepo := pginfra.NewMessageRepository(container.GetPGPool())

	userSvc := chatapp.NewUserService(
		userRepo,
		container.GetJWT(),
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetRedis(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESUsersIndex,
		container.GetRabbitPub(),
	)

	chatSvc := chatapp.NewChatService(
		userRepo,
		msgRepo,
		container.GetGateway(),
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetLogger(),
	)

	return moduleDeps{
		Users: handlers.NewUserHandler(
			userSvc,
			container.GetJWT(),
			container.GetLogger(),
			cfg.CookieDomain,
			cfg.CookieSecure,
		),
		Messages: handlers.NewMessageHandler(chatSvc, container.GetGateway(), container.GetLogger()),
		Bot:      handlers.NewBotHandler(container.GetBot(), container.GetLogger()),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildDeps()
	jwt := container.GetJWT()

	r.Add(modules.NewUserModule(deps.Users, jwt))
	r.Add(modules.NewMessageModule(deps.Messages, deps.Users, jwt))
	r.Add(modules.NewBotModule(deps.Bot, jwt))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
