package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMSender delivers notifications through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender builds a sender from service account credentials, given
// either as a raw JSON blob or as a path to a credentials file.
func NewFCMSender(ctx context.Context, credentials string) (*FCMSender, error) {
	opt, err := credentialOption(credentials)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}

	return &FCMSender{client: client}, nil
}

func credentialOption(credentials string) (option.ClientOption, error) {
	trimmed := strings.TrimSpace(credentials)
	if trimmed == "" {
		return nil, errors.New("empty firebase credentials")
	}
	if strings.HasPrefix(trimmed, "{") {
		return option.WithCredentialsJSON([]byte(trimmed)), nil
	}
	if _, err := os.Stat(trimmed); err != nil {
		return nil, fmt.Errorf("credentials file: %w", err)
	}
	return option.WithCredentialsFile(trimmed), nil
}

// Send delivers one notification to one device token and returns the
// FCM message ID as the receipt.
func (s *FCMSender) Send(ctx context.Context, token string, n Notification) (string, error) {
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Token: token,
	}

	receipt, err := s.client.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("fcm send: %w", err)
	}

	return receipt, nil
}

var _ Sender = (*FCMSender)(nil)
