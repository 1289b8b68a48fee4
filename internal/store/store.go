package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Room represents a named chat channel. Rooms are seeded at startup and
// immutable afterwards.
type Room struct {
	ID   int64
	Name string
}

// Message represents a persisted chat message. Messages are append-only;
// the store assigns ID and CreatedAt at persist time.
type Message struct {
	ID         int64
	RoomID     int64
	SenderID   int64
	SenderName string
	Body       string
	CreatedAt  time.Time
}

// PushToken represents a device push destination. Token values are unique
// across all users.
type PushToken struct {
	ID        int64
	UserID    int64
	Token     string
	CreatedAt time.Time
}

// UserStore handles account persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// RoomStore is the room directory. Lookups are the first stage of every
// message submission; a miss aborts before anything is persisted.
type RoomStore interface {
	// GetRoomByID retrieves a room by ID. Returns ErrNotFound for unknown rooms.
	GetRoomByID(ctx context.Context, id int64) (*Room, error)

	// ListRooms lists every room ordered by ID.
	ListRooms(ctx context.Context) ([]*Room, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message, assigning its ID and timestamp.
	// The caller is expected to have validated the room already.
	// Timestamps within one room never decrease across successive saves.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListMessagesByRoom retrieves all messages of a room in ascending
	// timestamp order, ties broken by insertion order. Returns an empty
	// slice for a room with no messages.
	ListMessagesByRoom(ctx context.Context, roomID int64) ([]*Message, error)
}

// TokenStore is the push token registry.
type TokenStore interface {
	// SaveToken registers a device token for a user. Re-registering an
	// existing token value is a no-op, not an error.
	SaveToken(ctx context.Context, userID int64, token string) error

	// AllTokens returns a snapshot of every registered token, in
	// registration order, regardless of owning user.
	AllTokens(ctx context.Context) ([]string, error)

	// AllTokensExcept returns the same snapshot minus tokens owned by the
	// given user.
	AllTokensExcept(ctx context.Context, userID int64) ([]string, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore
	TokenStore

	// Close closes the underlying database connection.
	Close() error
}
