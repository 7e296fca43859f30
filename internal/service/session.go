package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mediapro/studio/internal/apperror"
	"github.com/mediapro/studio/internal/model"
	"github.com/mediapro/studio/internal/store"
)

// SessionService tracks the single authenticated identity.
//
// Exactly one session is modeled: it is set on a successful login, cleared
// on logout, and persisted under its own store key so a restart rehydrates
// it. It holds a copy of the user record, not ownership — the directory
// invalidates it when the referenced record is deleted.
type SessionService struct {
	docs      *store.Documents
	directory *DirectoryService
	logger    *slog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(docs *store.Documents, directory *DirectoryService, logger *slog.Logger) *SessionService {
	return &SessionService{
		docs:      docs,
		directory: directory,
		logger:    logger,
	}
}

// Login authenticates the credentials and establishes the session.
//
// Fails with ErrInvalidCredentials when no record matches, and with
// ErrAccountInactive when the credentials are correct but the account has
// been deactivated. On success the session is persisted and the record
// returned.
func (s *SessionService) Login(ctx context.Context, email, password string) (*model.User, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	user, err := s.directory.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, apperror.AccountInactive(user.Email)
	}

	if err := s.docs.SaveCurrentUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/session: login: %w", err)
	}

	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Logout clears the active session and persists the cleared state.
// A no-op when nobody is logged in.
func (s *SessionService) Logout(ctx context.Context) error {
	s.docs.Lock()
	defer s.docs.Unlock()

	current, err := s.docs.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("service/session: logout: %w", err)
	}
	if current == nil {
		return nil
	}

	if err := s.docs.ClearCurrentUser(ctx); err != nil {
		return fmt.Errorf("service/session: logout: %w", err)
	}

	s.logger.Info("user logged out", slog.Int64("userID", current.ID))
	return nil
}

// Current returns the active session's user record, or nil when logged out.
func (s *SessionService) Current(ctx context.Context) (*model.User, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	current, err := s.docs.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/session: %w", err)
	}
	return current, nil
}
