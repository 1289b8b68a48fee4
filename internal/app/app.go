package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pushchat/pushchat-server/internal/auth"
	"github.com/pushchat/pushchat-server/internal/config"
	"github.com/pushchat/pushchat-server/internal/core"
	"github.com/pushchat/pushchat-server/internal/notify"
	"github.com/pushchat/pushchat-server/internal/store"
	"github.com/pushchat/pushchat-server/internal/store/sqlite"
	transporthttp "github.com/pushchat/pushchat-server/internal/transport/http"
)

// App wires together storage, fan-out and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg config.Config, logger *zerolog.Logger) (*App, error) {
	// Initialize database store
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	sender, err := newSender(ctx, cfg, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	dispatcher := notify.NewDispatcher(sender, cfg.PushSendTimeout, logger)
	coordinator := core.NewCoordinator(st, st, st, dispatcher, cfg.NotifySender, logger)

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      24 * time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	server := transporthttp.NewServer(authService, coordinator, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		log:             logger,
	}, nil
}

// newSender picks the push delivery backend: FCM when credentials are
// configured, log-only otherwise.
func newSender(ctx context.Context, cfg config.Config, logger *zerolog.Logger) (notify.Sender, error) {
	if cfg.FirebaseCredentials == "" {
		logger.Warn().Msg("no firebase credentials configured, using dev push sender")
		return notify.NewDevSender(logger), nil
	}

	sender, err := notify.NewFCMSender(ctx, cfg.FirebaseCredentials)
	if err != nil {
		return nil, fmt.Errorf("init fcm sender: %w", err)
	}

	logger.Info().Msg("fcm push sender initialized")
	return sender, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
