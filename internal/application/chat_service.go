package application

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"convohub/internal/domain/entity"
	repo "convohub/internal/domain/repository"
	"convohub/pkg/helpers"
)

var (
	ErrEmptyMessage = errors.New("message needs text or an image")
	ErrInvalidImage = errors.New("invalid image payload")
)

// MessageDeliverer pushes a persisted message to the recipient's live
// connection. Implementations are best-effort and never return an error:
// persistence is the durability guarantee, delivery is not.
type MessageDeliverer interface {
	Deliver(m *entity.Message)
}

// ChatService is the conversation surface: contacts, history, and send.
type ChatService struct {
	Users     repo.UserRepository
	Messages  repo.MessageRepository
	Deliverer MessageDeliverer
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewChatService(users repo.UserRepository, messages repo.MessageRepository, deliverer MessageDeliverer, gcs *storage.Client, gcsBucket string, logger *logrus.Logger) *ChatService {
	return &ChatService{
		Users:     users,
		Messages:  messages,
		Deliverer: deliverer,
		GCS:       gcs,
		GCSBucket: gcsBucket,
		Logger:    logger,
	}
}

// ListContacts returns every user except the requester.
func (s *ChatService) ListContacts(userID string) ([]*entity.User, error) {
	return s.Users.ListOthers(userID)
}

// ListMessages returns the conversation between the requester and peer,
// oldest first. The pair is unordered: (A,B) and (B,A) yield the same
// sequence. An unknown peer is ErrUserNotFound; a directory failure is
// returned as-is; an empty conversation is not an error.
func (s *ChatService) ListMessages(userID, peerID string) ([]*entity.Message, error) {
	if _, err := s.Users.GetByID(peerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.Messages.ListBetween(userID, peerID)
}

// SendMessageInput carries the optional payload fields of a send. ImageData
// is a base64 data URL as submitted by the client.
type SendMessageInput struct {
	Text      string
	ImageData string
}

// SendMessage validates, persists, then attempts live delivery, in that
// order. A message must never be delivered without being stored; it may be
// stored without being delivered when the recipient is offline. The persisted
// record is returned regardless of delivery outcome.
func (s *ChatService) SendMessage(ctx context.Context, senderID, recipientID string, in SendMessageInput) (*entity.Message, error) {
	if in.Text == "" && in.ImageData == "" {
		return nil, ErrEmptyMessage
	}

	if _, err := s.Users.GetByID(recipientID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var imageURL string
	if in.ImageData != "" {
		url, err := s.uploadMessageImage(ctx, senderID, in.ImageData)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	msg := &entity.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        in.Text,
		ImageURL:    imageURL,
	}
	if err := s.Messages.Create(msg); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"sender_id": senderID, "recipient_id": recipientID}).Error("persist message failed")
		}
		return nil, err
	}

	// Best-effort push; the store is already the source of truth.
	if s.Deliverer != nil {
		s.Deliverer.Deliver(msg)
	}
	return msg, nil
}

// uploadMessageImage decodes a base64 data URL and stores it in the blob
// store, returning a stable public URL.
func (s *ChatService) uploadMessageImage(ctx context.Context, senderID, dataURL string) (string, error) {
	contentType, data, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	objectPath := path.Join("messages", senderID, uuid.NewString()+extForContentType(contentType))
	return helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, bytes.NewReader(data))
}

// decodeDataURL parses "data:image/png;base64,...." payloads. A bare base64
// string is accepted and treated as image/png.
func decodeDataURL(s string) (string, []byte, error) {
	contentType := "image/png"
	payload := s
	if strings.HasPrefix(s, "data:") {
		meta, rest, ok := strings.Cut(s[len("data:"):], ",")
		if !ok {
			return "", nil, ErrInvalidImage
		}
		contentType = strings.TrimSuffix(meta, ";base64")
		payload = rest
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, ErrInvalidImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return contentType, data, nil
}

func extForContentType(contentType string) string {
	if _, sub, ok := strings.Cut(contentType, "/"); ok && sub != "" {
		return "." + sub
	}
	return ""
}
