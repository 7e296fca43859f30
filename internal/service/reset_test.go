package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediapro/studio/internal/apperror"
	"github.com/mediapro/studio/internal/model"
)

func TestResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.bootstrap(t)

	bob, err := env.directory.Create(ctx, admin, "Bob", "bob@example.com", "old-password", model.RoleUser)
	require.NoError(t, err)

	token, err := env.resets.Issue(ctx, bob.Email)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ok, err := env.resets.Validate(ctx, bob.Email, token)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, env.resets.Consume(ctx, bob.Email, token, "new-password"))

	// The old password no longer works; the new one does.
	_, err = env.sessions.Login(ctx, bob.Email, "old-password")
	assert.True(t, errors.Is(err, apperror.ErrInvalidCredentials), "got %v", err)

	_, err = env.sessions.Login(ctx, bob.Email, "new-password")
	require.NoError(t, err)

	// Consuming deletes the token — the same pair is dead.
	ok, err = env.resets.Validate(ctx, bob.Email, token)
	require.NoError(t, err)
	assert.False(t, ok)

	err = env.resets.Consume(ctx, bob.Email, token, "another-password")
	assert.True(t, errors.Is(err, apperror.ErrResetInvalid), "got %v", err)
}

func TestValidateWrongToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.bootstrap(t)

	_, err := env.resets.Issue(ctx, admin.Email)
	require.NoError(t, err)

	ok, err := env.resets.Validate(ctx, admin.Email, "not-the-token")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.resets.Validate(ctx, "other@example.com", "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidatePurgesExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.bootstrap(t)

	token, err := env.resets.Issue(ctx, admin.Email)
	require.NoError(t, err)

	env.clock.Advance(ResetTokenTTL + time.Minute)

	ok, err := env.resets.Validate(ctx, admin.Email, token)
	require.NoError(t, err)
	assert.False(t, ok)

	// The expired entry was removed from the persisted map, not just skipped.
	env.docs.Lock()
	tokens, err := env.docs.ResetTokens(ctx)
	env.docs.Unlock()
	require.NoError(t, err)
	_, exists := tokens[admin.Email]
	assert.False(t, exists)
}

func TestIssueReplacesPriorToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.bootstrap(t)

	first, err := env.resets.Issue(ctx, admin.Email)
	require.NoError(t, err)
	second, err := env.resets.Issue(ctx, admin.Email)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	ok, err := env.resets.Validate(ctx, admin.Email, first)
	require.NoError(t, err)
	assert.False(t, ok, "issuing a new token invalidates the old one")

	ok, err = env.resets.Validate(ctx, admin.Email, second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConsumeUnknownAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.bootstrap(t)

	// A token can be issued for an email with no account behind it; consuming
	// it fails with a distinct error.
	token, err := env.resets.Issue(ctx, "ghost@example.com")
	require.NoError(t, err)

	err = env.resets.Consume(ctx, "ghost@example.com", token, "new-password")
	assert.True(t, errors.Is(err, apperror.ErrUnknownAccount), "got %v", err)
}

func TestConsumeExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.bootstrap(t)

	token, err := env.resets.Issue(ctx, admin.Email)
	require.NoError(t, err)

	env.clock.Advance(ResetTokenTTL + time.Second)

	err = env.resets.Consume(ctx, admin.Email, token, "new-password")
	assert.True(t, errors.Is(err, apperror.ErrResetInvalid), "got %v", err)

	// The password was not touched.
	_, err = env.sessions.Login(ctx, admin.Email, testSeed().Password)
	require.NoError(t, err)
}
