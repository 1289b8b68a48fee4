package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DevSender logs would-be deliveries instead of contacting a provider.
// Used when no Firebase credentials are configured.
type DevSender struct {
	log *zerolog.Logger
}

// NewDevSender creates a log-only sender.
func NewDevSender(logger *zerolog.Logger) *DevSender {
	return &DevSender{log: logger}
}

// Send logs the notification and returns a synthetic receipt.
func (s *DevSender) Send(_ context.Context, token string, n Notification) (string, error) {
	receipt := "dev-" + uuid.NewString()
	s.log.Info().
		Str("token", token).
		Str("title", n.Title).
		Str("body", n.Body).
		Str("receipt", receipt).
		Msg("push delivery skipped (dev sender)")
	return receipt, nil
}

var _ Sender = (*DevSender)(nil)
