package http

import (
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/pushchat/pushchat-server/internal/auth"
	"github.com/pushchat/pushchat-server/internal/config"
	"github.com/pushchat/pushchat-server/internal/core"
	"github.com/pushchat/pushchat-server/internal/log"
	"github.com/pushchat/pushchat-server/internal/notify"
	"github.com/pushchat/pushchat-server/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with the schema applied
// and the default rooms seeded.
func createTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return st
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, st *sqlite.SQLiteStore) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return auth.NewService(st, jwtConfig)
}

// createTestServer wires a full server over the given store and push sender.
func createTestServer(t *testing.T, st *sqlite.SQLiteStore, sender notify.Sender) *stdhttp.Server {
	t.Helper()

	logger := log.Nop()
	dispatcher := notify.NewDispatcher(sender, time.Second, logger)
	coordinator := core.NewCoordinator(st, st, st, dispatcher, true, logger)
	authService := createTestAuthService(t, st)

	cfg := config.Default()
	cfg.Addr = ":0"

	return NewServer(authService, coordinator, cfg, logger)
}
