package repository

import "convohub/internal/domain/entity"

// MessageRepository defines the interface for the durable message store.
// The store is append-only; there are no update or delete operations.
type MessageRepository interface {
	Create(m *entity.Message) error
	// ListBetween returns every message exchanged between the two users,
	// regardless of direction, ordered by creation time ascending.
	ListBetween(userA, userB string) ([]*entity.Message, error)
}
