package core

import "errors"

// ErrInvalidRoom is returned when a message targets a room that does not
// exist. Nothing is persisted and no notifications are sent.
var ErrInvalidRoom = errors.New("invalid room")
