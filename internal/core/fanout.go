package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pushchat/pushchat-server/internal/notify"
	"github.com/pushchat/pushchat-server/internal/store"
)

// SendRequest is one message submission.
type SendRequest struct {
	RoomID     int64
	SenderID   int64
	SenderName string
	Body       string
}

// SendResult is the aggregate of a completed fan-out: the persisted message
// and one delivery outcome per destination token, in dispatch order.
type SendResult struct {
	Message  *store.Message
	Outcomes []notify.Outcome
}

// Coordinator runs the message fan-out pipeline: validate the room, persist
// the message, snapshot the token registry, dispatch one notification per
// token and aggregate the outcomes.
//
// Persistence is the point of no return. A message that reached storage is
// never rolled back, however many deliveries fail afterwards.
type Coordinator struct {
	rooms      store.RoomStore
	messages   store.MessageStore
	tokens     store.TokenStore
	dispatcher *notify.Dispatcher

	// notifySender keeps the sender's own devices in the destination set.
	// The reference system notifies everyone, sender included.
	notifySender bool

	log *zerolog.Logger
}

// NewCoordinator wires the fan-out pipeline over shared store handles.
// In production all three are the same pooled store.
func NewCoordinator(rooms store.RoomStore, messages store.MessageStore, tokens store.TokenStore, dispatcher *notify.Dispatcher, notifySender bool, logger *zerolog.Logger) *Coordinator {
	return &Coordinator{
		rooms:        rooms,
		messages:     messages,
		tokens:       tokens,
		dispatcher:   dispatcher,
		notifySender: notifySender,
		log:          logger,
	}
}

// SendAndNotify runs the four pipeline stages. It returns ErrInvalidRoom if
// the room does not exist (nothing persisted, nothing dispatched) and a
// storage error if persistence fails (nothing dispatched). Delivery
// failures do not fail the operation; they are reported per token in the
// result.
func (c *Coordinator) SendAndNotify(ctx context.Context, req SendRequest) (*SendResult, error) {
	room, err := c.rooms.GetRoomByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("room %d: %w", req.RoomID, ErrInvalidRoom)
		}
		return nil, fmt.Errorf("lookup room: %w", err)
	}

	msg := &store.Message{
		RoomID:     room.ID,
		SenderID:   req.SenderID,
		SenderName: req.SenderName,
		Body:       req.Body,
	}
	if err := c.messages.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	tokens, err := c.destinations(ctx, req.SenderID)
	if err != nil {
		// The message is already durable; report it with zero deliveries
		// rather than pretending the whole submission failed.
		c.log.Error().Err(err).Int64("room_id", room.ID).Msg("failed to enumerate push tokens")
		return &SendResult{Message: msg, Outcomes: []notify.Outcome{}}, nil
	}

	n := notify.Notification{
		Title: fmt.Sprintf("%s: %s", room.Name, req.SenderName),
		Body:  req.Body,
	}
	outcomes := c.dispatcher.Dispatch(ctx, n, tokens)

	delivered := 0
	for _, o := range outcomes {
		if o.OK() {
			delivered++
		}
	}
	c.log.Info().
		Int64("room_id", room.ID).
		Int64("message_id", msg.ID).
		Int("tokens", len(tokens)).
		Int("delivered", delivered).
		Msg("message fan-out complete")

	return &SendResult{Message: msg, Outcomes: outcomes}, nil
}

func (c *Coordinator) destinations(ctx context.Context, senderID int64) ([]string, error) {
	if c.notifySender {
		return c.tokens.AllTokens(ctx)
	}
	return c.tokens.AllTokensExcept(ctx, senderID)
}

// RoomMessages validates the room and returns its messages in chronological
// order. Returns ErrInvalidRoom for an unknown room, and the room so callers
// can name it.
func (c *Coordinator) RoomMessages(ctx context.Context, roomID int64) (*store.Room, []*store.Message, error) {
	room, err := c.rooms.GetRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("room %d: %w", roomID, ErrInvalidRoom)
		}
		return nil, nil, fmt.Errorf("lookup room: %w", err)
	}

	messages, err := c.messages.ListMessagesByRoom(ctx, roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("list messages: %w", err)
	}

	return room, messages, nil
}

// Rooms lists the room directory.
func (c *Coordinator) Rooms(ctx context.Context) ([]*store.Room, error) {
	return c.rooms.ListRooms(ctx)
}

// RegisterToken stores a device push token. Duplicate registrations are
// no-ops.
func (c *Coordinator) RegisterToken(ctx context.Context, userID int64, token string) error {
	if err := c.tokens.SaveToken(ctx, userID, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}
