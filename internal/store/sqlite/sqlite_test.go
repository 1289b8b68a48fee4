package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/pushchat/pushchat-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestSchemaSeedsDefaultRooms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rooms, err := s.ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}

	expected := []string{"General", "Technology", "Random"}
	if len(rooms) != len(expected) {
		t.Fatalf("expected %d rooms, got %d", len(expected), len(rooms))
	}
	for i, name := range expected {
		if rooms[i].ID != int64(i+1) || rooms[i].Name != name {
			t.Errorf("room %d: expected {%d %s}, got {%d %s}", i, i+1, name, rooms[i].ID, rooms[i].Name)
		}
	}
}

func TestGetRoomByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	room, err := s.GetRoomByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetRoomByID failed: %v", err)
	}
	if room.Name != "General" {
		t.Errorf("expected room name 'General', got %q", room.Name)
	}

	_, err = s.GetRoomByID(ctx, 99)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing room, got %v", err)
	}
}

func TestSaveMessageAssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msg := &store.Message{RoomID: 1, SenderID: 1, SenderName: "alice", Body: "hi"}
	if err := s.SaveMessage(ctx, msg); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	if msg.ID == 0 {
		t.Error("expected assigned message ID")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected assigned timestamp")
	}
}

func TestListMessagesByRoomOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bodies := []string{"first", "second", "third"}
	for _, body := range bodies {
		msg := &store.Message{RoomID: 1, SenderID: 1, SenderName: "alice", Body: body}
		if err := s.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage(%q) failed: %v", body, err)
		}
	}

	// A message in another room must not leak into the listing.
	other := &store.Message{RoomID: 2, SenderID: 2, SenderName: "bob", Body: "elsewhere"}
	if err := s.SaveMessage(ctx, other); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	messages, err := s.ListMessagesByRoom(ctx, 1)
	if err != nil {
		t.Fatalf("ListMessagesByRoom failed: %v", err)
	}
	if len(messages) != len(bodies) {
		t.Fatalf("expected %d messages, got %d", len(bodies), len(messages))
	}

	for i, body := range bodies {
		if messages[i].Body != body {
			t.Errorf("position %d: expected %q, got %q", i, body, messages[i].Body)
		}
		if i > 0 && messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			t.Errorf("position %d: timestamp went backwards", i)
		}
	}
}

func TestListMessagesByRoomEmpty(t *testing.T) {
	s := newTestStore(t)

	messages, err := s.ListMessagesByRoom(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListMessagesByRoom failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected empty slice, got %d messages", len(messages))
	}
}

func TestConcurrentSaveMessageSameRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := &store.Message{RoomID: 1, SenderID: 1, SenderName: "alice", Body: fmt.Sprintf("msg-%d", i)}
			if err := s.SaveMessage(ctx, msg); err != nil {
				t.Errorf("SaveMessage failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	messages, err := s.ListMessagesByRoom(ctx, 1)
	if err != nil {
		t.Fatalf("ListMessagesByRoom failed: %v", err)
	}
	if len(messages) != n {
		t.Fatalf("expected %d messages, got %d", n, len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			t.Errorf("position %d: timestamp went backwards", i)
		}
	}
}

func TestSaveTokenIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToken(ctx, 1, "device-token"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}
	// Duplicate from a different user must also be a silent no-op.
	if err := s.SaveToken(ctx, 2, "device-token"); err != nil {
		t.Fatalf("duplicate SaveToken failed: %v", err)
	}

	tokens, err := s.AllTokens(ctx)
	if err != nil {
		t.Fatalf("AllTokens failed: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("expected exactly one token row, got %d", len(tokens))
	}
	if tokens[0] != "device-token" {
		t.Errorf("expected 'device-token', got %q", tokens[0])
	}
}

func TestAllTokensRegistrationOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, token := range []string{"t1", "t2", "t3"} {
		if err := s.SaveToken(ctx, int64(i+1), token); err != nil {
			t.Fatalf("SaveToken(%q) failed: %v", token, err)
		}
	}

	tokens, err := s.AllTokens(ctx)
	if err != nil {
		t.Fatalf("AllTokens failed: %v", err)
	}
	expected := []string{"t1", "t2", "t3"}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, token := range expected {
		if tokens[i] != token {
			t.Errorf("position %d: expected %q, got %q", i, token, tokens[i])
		}
	}
}

func TestAllTokensExcept(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToken(ctx, 1, "mine"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}
	if err := s.SaveToken(ctx, 2, "theirs"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}

	tokens, err := s.AllTokensExcept(ctx, 1)
	if err != nil {
		t.Fatalf("AllTokensExcept failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != "theirs" {
		t.Errorf("expected [theirs], got %v", tokens)
	}
}

func TestCreateUserAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected assigned user ID")
	}

	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if byName.ID != user.ID {
		t.Errorf("expected user ID %d, got %d", user.ID, byName.ID)
	}

	_, err = s.GetUserByUsername(ctx, "nobody")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Duplicate usernames must surface as an error, not a silent overwrite.
	if _, err := s.CreateUser(ctx, "alice", "other-hash"); err == nil {
		t.Error("expected error for duplicate username")
	}
}
