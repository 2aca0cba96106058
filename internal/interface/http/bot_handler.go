package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"convohub/internal/bot"
	"convohub/pkg/response"
	"convohub/pkg/validation"
)

type BotHandler struct {
	Bot    *bot.Client
	Logger *logrus.Logger
}

func NewBotHandler(b *bot.Client, logger *logrus.Logger) *BotHandler {
	return &BotHandler{Bot: b, Logger: logger}
}

type botMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SendMessage POST /api/bot/message handles a single prompt/reply exchange with the
// scripted assistant. Bot chats are not persisted; the assistant is not a
// user and has no presence.
func (h *BotHandler) SendMessage(c *gin.Context) {
	if !h.Bot.Enabled() {
		response.Error[any](c, http.StatusServiceUnavailable, "bot is not configured", nil)
		return
	}

	var req botMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	reply, err := h.Bot.Complete(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, bot.ErrNoReply) {
			response.Error[any](c, http.StatusBadGateway, "no response from bot", nil)
			return
		}
		h.Logger.WithError(err).Warn("bot completion failed")
		response.Error[any](c, http.StatusBadGateway, "failed to get response from bot", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"name": h.Bot.Name, "reply": reply}, "bot reply", nil)
}
