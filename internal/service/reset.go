package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/mediapro/studio/internal/apperror"
	"github.com/mediapro/studio/internal/auth"
	"github.com/mediapro/studio/internal/model"
	"github.com/mediapro/studio/internal/store"
)

// ResetTokenTTL is how long an issued password-reset token stays valid.
const ResetTokenTTL = 24 * time.Hour

// ResetService owns the password-reset token lifecycle: issuance,
// validation, and consumption. Entries are keyed by email; at most one live
// entry exists per email, and issuing a new one silently replaces it.
type ResetService struct {
	docs      *store.Documents
	passwords *auth.PasswordService
	clock     Clock
	logger    *slog.Logger
}

// NewResetService creates a ResetService.
func NewResetService(docs *store.Documents, passwords *auth.PasswordService, clock Clock, logger *slog.Logger) *ResetService {
	return &ResetService{
		docs:      docs,
		passwords: passwords,
		clock:     clock,
		logger:    logger,
	}
}

// Issue generates a fresh reset token for the email, valid for ResetTokenTTL
// from now, overwriting any prior entry.
//
// Issue does not require the email to belong to a known account — whether to
// reveal account existence is the caller's decision, made before asking for
// a token.
func (s *ResetService) Issue(ctx context.Context, email string) (string, error) {
	token, err := auth.NewResetToken()
	if err != nil {
		return "", fmt.Errorf("service/reset: issuing token: %w", err)
	}

	s.docs.Lock()
	defer s.docs.Unlock()

	tokens, err := s.docs.ResetTokens(ctx)
	if err != nil {
		return "", fmt.Errorf("service/reset: issuing token: %w", err)
	}

	now := s.clock.Now()
	tokens[email] = model.ResetToken{
		Token:     token,
		Expiry:    now.Add(ResetTokenTTL),
		CreatedAt: now,
	}

	if err := s.docs.SaveResetTokens(ctx, tokens); err != nil {
		return "", fmt.Errorf("service/reset: issuing token: %w", err)
	}

	s.logger.Info("password reset token issued", slog.String("email", email))
	return token, nil
}

// Validate reports whether the (email, token) pair is live and correct.
// An entry past its expiry is treated as absent and purged — the purge is
// persisted immediately.
func (s *ResetService) Validate(ctx context.Context, email, token string) (bool, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	return s.validate(ctx, email, token)
}

// validate is the lock-free core of Validate, shared with Consume.
func (s *ResetService) validate(ctx context.Context, email, token string) (bool, error) {
	tokens, err := s.docs.ResetTokens(ctx)
	if err != nil {
		return false, fmt.Errorf("service/reset: validating token: %w", err)
	}

	entry, ok := tokens[email]
	if !ok {
		return false, nil
	}

	if entry.ExpiredAt(s.clock.Now()) {
		delete(tokens, email)
		if err := s.docs.SaveResetTokens(ctx, tokens); err != nil {
			return false, fmt.Errorf("service/reset: purging expired token: %w", err)
		}
		return false, nil
	}

	// Constant-time comparison; a reset token is a credential.
	return subtle.ConstantTimeCompare([]byte(entry.Token), []byte(token)) == 1, nil
}

// Consume validates the pair and, if it holds, sets the account's password
// to newPassword (hashed), deletes the token entry, and persists both the
// token map and the directory.
//
// Fails with ErrResetInvalid when the pair doesn't validate, and with
// ErrUnknownAccount when the token was fine but no account carries the
// email — two distinct conditions the caller can report separately.
//
// Password length and confirmation checks are the caller's job, performed
// before invoking Consume.
func (s *ResetService) Consume(ctx context.Context, email, token, newPassword string) error {
	s.docs.Lock()
	defer s.docs.Unlock()

	ok, err := s.validate(ctx, email, token)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ResetInvalid()
	}

	users, _, err := s.docs.Users(ctx)
	if err != nil {
		return fmt.Errorf("service/reset: consuming token: %w", err)
	}

	i := indexByEmail(users, email)
	if i < 0 {
		return apperror.UnknownAccount(email)
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("service/reset: consuming token: %w", err)
	}
	users[i].PasswordHash = hash

	tokens, err := s.docs.ResetTokens(ctx)
	if err != nil {
		return fmt.Errorf("service/reset: consuming token: %w", err)
	}
	delete(tokens, email)

	if err := s.docs.SaveResetTokens(ctx, tokens); err != nil {
		return fmt.Errorf("service/reset: consuming token: %w", err)
	}
	if err := s.docs.SaveUsers(ctx, users); err != nil {
		return fmt.Errorf("service/reset: consuming token: %w", err)
	}

	s.logger.Info("password reset completed",
		slog.Int64("userID", users[i].ID),
		slog.String("email", email),
	)

	return nil
}
