package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	chatapp "convohub/internal/application"
	"convohub/pkg/response"
	"convohub/pkg/validation"
)

// PresenceSource reports which users currently hold a live connection.
type PresenceSource interface {
	OnlineUserIDs() []string
}

type MessageHandler struct {
	Svc      *chatapp.ChatService
	Presence PresenceSource
	Logger   *logrus.Logger
}

func NewMessageHandler(svc *chatapp.ChatService, presence PresenceSource, logger *logrus.Logger) *MessageHandler {
	return &MessageHandler{Svc: svc, Presence: presence, Logger: logger}
}

type sendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"` // base64 data URL
}

// GetContacts GET /api/messages/users returns every user except the
// requester, with the current online set in meta so the sidebar can render
// presence before the first websocket broadcast arrives.
func (h *MessageHandler) GetContacts(c *gin.Context) {
	uid := c.GetString("userID")
	users, err := h.Svc.ListContacts(uid)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("list contacts failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to load contacts", nil)
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, userJSON(u))
	}
	meta := map[string]any{"count": len(out)}
	if h.Presence != nil {
		meta["online_user_ids"] = h.Presence.OnlineUserIDs()
	}
	response.Success(c, http.StatusOK, out, "contacts", meta)
}

// GetMessages GET /api/messages/:id returns the full history with the peer, oldest
// first. The pair is unordered, so either party sees the same sequence.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	uid := c.GetString("userID")
	peerID := c.Param("id")

	msgs, err := h.Svc.ListMessages(uid, peerID)
	if err != nil {
		if errors.Is(err, chatapp.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).WithFields(logrus.Fields{"user_id": uid, "peer_id": peerID}).Error("list messages failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to load messages", nil)
		return
	}
	response.Success(c, http.StatusOK, msgs, "messages", map[string]any{"count": len(msgs)})
}

// SendMessage POST /api/messages/send/:id persists first, then attempts the
// live push. The caller gets the stored record whether or not the recipient
// was online to receive the push.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	uid := c.GetString("userID")
	recipientID := c.Param("id")

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	msg, err := h.Svc.SendMessage(c.Request.Context(), uid, recipientID, chatapp.SendMessageInput{
		Text:      req.Text,
		ImageData: req.Image,
	})
	if err != nil {
		switch {
		case errors.Is(err, chatapp.ErrEmptyMessage):
			response.Error[any](c, http.StatusBadRequest, "message needs text or an image", nil)
		case errors.Is(err, chatapp.ErrInvalidImage):
			response.Error[any](c, http.StatusBadRequest, "invalid image payload", nil)
		case errors.Is(err, chatapp.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "recipient not found", nil)
		default:
			h.Logger.WithError(err).WithFields(logrus.Fields{"user_id": uid, "recipient_id": recipientID}).Error("send message failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to send message", nil)
		}
		return
	}
	response.Success(c, http.StatusCreated, msg, "message sent", nil)
}
