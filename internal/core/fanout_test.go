package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pushchat/pushchat-server/internal/log"
	"github.com/pushchat/pushchat-server/internal/notify"
	"github.com/pushchat/pushchat-server/internal/store"
)

type fakeRooms map[int64]string

func (f fakeRooms) GetRoomByID(_ context.Context, id int64) (*store.Room, error) {
	name, ok := f[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.Room{ID: id, Name: name}, nil
}

func (f fakeRooms) ListRooms(_ context.Context) ([]*store.Room, error) {
	var rooms []*store.Room
	for id, name := range f {
		rooms = append(rooms, &store.Room{ID: id, Name: name})
	}
	return rooms, nil
}

type fakeMessages struct {
	saved    []*store.Message
	saveErr  error
	nextID   int64
	lastTime time.Time
}

func (f *fakeMessages) SaveMessage(_ context.Context, msg *store.Message) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.nextID++
	msg.ID = f.nextID
	msg.CreatedAt = time.Now().UTC()
	if msg.CreatedAt.Before(f.lastTime) {
		msg.CreatedAt = f.lastTime
	}
	f.lastTime = msg.CreatedAt
	f.saved = append(f.saved, msg)
	return nil
}

func (f *fakeMessages) ListMessagesByRoom(_ context.Context, roomID int64) ([]*store.Message, error) {
	out := make([]*store.Message, 0)
	for _, msg := range f.saved {
		if msg.RoomID == roomID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type tokenRow struct {
	userID int64
	token  string
}

type fakeTokens struct {
	rows    []tokenRow
	listErr error
}

func (f *fakeTokens) SaveToken(_ context.Context, userID int64, token string) error {
	for _, row := range f.rows {
		if row.token == token {
			return nil
		}
	}
	f.rows = append(f.rows, tokenRow{userID: userID, token: token})
	return nil
}

func (f *fakeTokens) AllTokens(_ context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	tokens := make([]string, 0, len(f.rows))
	for _, row := range f.rows {
		tokens = append(tokens, row.token)
	}
	return tokens, nil
}

func (f *fakeTokens) AllTokensExcept(_ context.Context, userID int64) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	tokens := make([]string, 0, len(f.rows))
	for _, row := range f.rows {
		if row.userID != userID {
			tokens = append(tokens, row.token)
		}
	}
	return tokens, nil
}

func okSender() notify.Sender {
	return notify.SenderFunc(func(_ context.Context, _ string, _ notify.Notification) (string, error) {
		return "ok", nil
	})
}

func newTestCoordinator(rooms fakeRooms, messages *fakeMessages, tokens *fakeTokens, sender notify.Sender, notifySender bool) *Coordinator {
	d := notify.NewDispatcher(sender, time.Second, log.Nop())
	return NewCoordinator(rooms, messages, tokens, d, notifySender, log.Nop())
}

func TestSendAndNotifyHappyPath(t *testing.T) {
	req := require.New(t)

	rooms := fakeRooms{1: "General"}
	messages := &fakeMessages{}
	tokens := &fakeTokens{rows: []tokenRow{{1, "t1"}, {2, "t2"}}}

	var captured atomic.Value
	sender := notify.SenderFunc(func(_ context.Context, _ string, n notify.Notification) (string, error) {
		captured.Store(n)
		return "ok", nil
	})

	c := newTestCoordinator(rooms, messages, tokens, sender, true)

	result, err := c.SendAndNotify(context.Background(), SendRequest{
		RoomID: 1, SenderID: 1, SenderName: "alice", Body: "hi",
	})
	req.NoError(err)
	req.NotNil(result.Message)
	req.NotZero(result.Message.ID)

	req.Len(result.Outcomes, 2)
	req.Equal("t1", result.Outcomes[0].Token)
	req.Equal("ok", result.Outcomes[0].Receipt)
	req.Equal("t2", result.Outcomes[1].Token)
	req.Equal("ok", result.Outcomes[1].Receipt)

	n := captured.Load().(notify.Notification)
	req.Equal("General: alice", n.Title)
	req.Equal("hi", n.Body)

	_, listed, err := c.RoomMessages(context.Background(), 1)
	req.NoError(err)
	req.Len(listed, 1)
	req.Equal("hi", listed[0].Body)
	req.Equal("alice", listed[0].SenderName)
}

func TestSendAndNotifyInvalidRoom(t *testing.T) {
	req := require.New(t)

	rooms := fakeRooms{1: "General"}
	messages := &fakeMessages{}
	tokens := &fakeTokens{rows: []tokenRow{{1, "t1"}}}

	sender := notify.SenderFunc(func(_ context.Context, _ string, _ notify.Notification) (string, error) {
		t.Error("no notification may be dispatched for an invalid room")
		return "", nil
	})

	c := newTestCoordinator(rooms, messages, tokens, sender, true)

	_, err := c.SendAndNotify(context.Background(), SendRequest{
		RoomID: 99, SenderID: 1, SenderName: "alice", Body: "hi",
	})
	req.ErrorIs(err, ErrInvalidRoom)
	req.Empty(messages.saved, "nothing may be persisted for an invalid room")

	// Room 1 history is untouched.
	_, listed, err := c.RoomMessages(context.Background(), 1)
	req.NoError(err)
	req.Empty(listed)
}

func TestSendAndNotifyPersistenceFailure(t *testing.T) {
	req := require.New(t)

	rooms := fakeRooms{1: "General"}
	messages := &fakeMessages{saveErr: errors.New("disk gone")}
	tokens := &fakeTokens{rows: []tokenRow{{1, "t1"}}}

	sender := notify.SenderFunc(func(_ context.Context, _ string, _ notify.Notification) (string, error) {
		t.Error("no notification may be dispatched when persistence fails")
		return "", nil
	})

	c := newTestCoordinator(rooms, messages, tokens, sender, true)

	_, err := c.SendAndNotify(context.Background(), SendRequest{
		RoomID: 1, SenderID: 1, SenderName: "alice", Body: "hi",
	})
	req.Error(err)
	req.NotErrorIs(err, ErrInvalidRoom)
}

func TestSendAndNotifyAllDeliveriesFail(t *testing.T) {
	req := require.New(t)

	rooms := fakeRooms{1: "General"}
	messages := &fakeMessages{}
	tokens := &fakeTokens{rows: []tokenRow{{1, "t1"}, {2, "t2"}, {3, "t3"}}}

	sender := notify.SenderFunc(func(_ context.Context, _ string, _ notify.Notification) (string, error) {
		return "", errors.New("provider down")
	})

	c := newTestCoordinator(rooms, messages, tokens, sender, true)

	result, err := c.SendAndNotify(context.Background(), SendRequest{
		RoomID: 1, SenderID: 1, SenderName: "alice", Body: "hi",
	})
	req.NoError(err, "delivery failures never fail the submission")
	req.Len(result.Outcomes, 3)
	for _, o := range result.Outcomes {
		req.False(o.OK())
	}

	// The message survived regardless.
	_, listed, err := c.RoomMessages(context.Background(), 1)
	req.NoError(err)
	req.Len(listed, 1)
}

func TestSendAndNotifyNoTokens(t *testing.T) {
	req := require.New(t)

	c := newTestCoordinator(fakeRooms{1: "General"}, &fakeMessages{}, &fakeTokens{}, okSender(), true)

	result, err := c.SendAndNotify(context.Background(), SendRequest{
		RoomID: 1, SenderID: 1, SenderName: "alice", Body: "hi",
	})
	req.NoError(err)
	req.NotNil(result.Message)
	req.Empty(result.Outcomes)
}

func TestSendAndNotifySenderExclusionPolicy(t *testing.T) {
	req := require.New(t)

	rooms := fakeRooms{1: "General"}
	tokens := &fakeTokens{rows: []tokenRow{{1, "mine"}, {2, "theirs"}}}

	c := newTestCoordinator(rooms, &fakeMessages{}, tokens, okSender(), false)

	result, err := c.SendAndNotify(context.Background(), SendRequest{
		RoomID: 1, SenderID: 1, SenderName: "alice", Body: "hi",
	})
	req.NoError(err)
	req.Len(result.Outcomes, 1)
	req.Equal("theirs", result.Outcomes[0].Token)
}

func TestSendAndNotifyTokenEnumerationFailure(t *testing.T) {
	req := require.New(t)

	rooms := fakeRooms{1: "General"}
	messages := &fakeMessages{}
	tokens := &fakeTokens{listErr: errors.New("registry unavailable")}

	c := newTestCoordinator(rooms, messages, tokens, okSender(), true)

	result, err := c.SendAndNotify(context.Background(), SendRequest{
		RoomID: 1, SenderID: 1, SenderName: "alice", Body: "hi",
	})
	req.NoError(err, "persisted message is reported even when enumeration fails")
	req.Len(messages.saved, 1)
	req.Empty(result.Outcomes)
}

func TestRoomMessagesInvalidRoom(t *testing.T) {
	req := require.New(t)

	c := newTestCoordinator(fakeRooms{1: "General"}, &fakeMessages{}, &fakeTokens{}, okSender(), true)

	_, _, err := c.RoomMessages(context.Background(), 42)
	req.ErrorIs(err, ErrInvalidRoom)
}

func TestRegisterTokenIdempotent(t *testing.T) {
	req := require.New(t)

	tokens := &fakeTokens{}
	c := newTestCoordinator(fakeRooms{}, &fakeMessages{}, tokens, okSender(), true)

	req.NoError(c.RegisterToken(context.Background(), 1, "t1"))
	req.NoError(c.RegisterToken(context.Background(), 1, "t1"))

	all, err := tokens.AllTokens(context.Background())
	req.NoError(err)
	req.Equal([]string{"t1"}, all)
}
