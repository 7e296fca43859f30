package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mediapro/studio/internal/auth"
	"github.com/mediapro/studio/internal/model"
	"github.com/mediapro/studio/internal/store"
)

// fakeClock is a manually advanced Clock, so expiry behaviour can be tested
// without sleeping.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// testEnv wires every service over one in-memory store, the way server.go
// wires them over SQLite.
type testEnv struct {
	kv        *store.Memory
	docs      *store.Documents
	clock     *fakeClock
	passwords *auth.PasswordService

	directory *DirectoryService
	sessions  *SessionService
	resets    *ResetService
	features  *FeatureService
	stats     *StatsService
	share     *ShareService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	kv := store.NewMemory()
	docs := store.NewDocuments(kv)
	clock := newFakeClock()
	// Minimum bcrypt cost keeps the suite fast.
	passwords := auth.NewPasswordServiceForTest(4)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	directory := NewDirectoryService(docs, passwords, clock, logger)

	return &testEnv{
		kv:        kv,
		docs:      docs,
		clock:     clock,
		passwords: passwords,
		directory: directory,
		sessions:  NewSessionService(docs, directory, logger),
		resets:    NewResetService(docs, passwords, clock, logger),
		features:  NewFeatureService(docs, clock, logger),
		stats:     NewStatsService(docs, clock, logger),
		share:     NewShareService(docs, clock, logger),
	}
}

func testSeed() InitialAdmin {
	return InitialAdmin{
		Name:     "Administrator",
		Email:    "admin@mediapro.local",
		Password: "admin-secret",
	}
}

// bootstrap seeds the initial administrator and returns their record.
func (e *testEnv) bootstrap(t *testing.T) *model.User {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, e.directory.Bootstrap(ctx, testSeed()))

	admin, err := e.directory.FindByEmail(ctx, testSeed().Email)
	require.NoError(t, err)
	return admin
}
