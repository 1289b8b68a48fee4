package notify

import "context"

// Notification is one logical push notification, delivered independently to
// every destination token of a fan-out.
type Notification struct {
	Title string
	Body  string
}

// Outcome records the result of one delivery attempt. Exactly one of
// Receipt or Err is set.
type Outcome struct {
	Token   string
	Receipt string // provider delivery receipt on success
	Err     error  // failure description otherwise
}

// OK reports whether the delivery succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Sender performs a single delivery attempt to one destination token.
// Implementations must honor ctx cancellation; the dispatcher bounds every
// call with a timeout.
type Sender interface {
	Send(ctx context.Context, token string, n Notification) (receipt string, err error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, token string, n Notification) (string, error)

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, token string, n Notification) (string, error) {
	return f(ctx, token, n)
}
