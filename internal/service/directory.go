// Package service — the business logic behind the admin panel and the
// feature gates.
//
// Every service in this package shares one *store.Documents. Its mutex is
// the single serialization point for the whole core: a public service method
// takes the lock, performs its reads, mutations, and saves, and releases it.
// No operation partially mutates state on failure — validation happens before
// the first save, and the lock keeps multi-key sequences from interleaving.
//
// Services never call each other's exported methods while holding the lock;
// anything shared across services is an unexported lock-free helper.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mediapro/studio/internal/apperror"
	"github.com/mediapro/studio/internal/auth"
	"github.com/mediapro/studio/internal/model"
	"github.com/mediapro/studio/internal/store"
)

// schemaVersion is the current persisted-state version. Version 0 (unstamped)
// predates the administrator identity migration.
const schemaVersion = 1

// InitialAdmin is the externally supplied identity seeded into an empty
// directory. It comes from configuration — the core never hardcodes a
// credential.
type InitialAdmin struct {
	Name     string
	Email    string
	Password string

	// LegacyEmail, when set, names an administrator account left behind by
	// an older deployment. The version-0→1 migration rewrites that account
	// to the identity above, once.
	LegacyEmail string
}

// DirectoryService owns the user directory: creation, lookup, status
// toggling, deletion, and the bootstrap/migration rule.
type DirectoryService struct {
	docs      *store.Documents
	passwords *auth.PasswordService
	clock     Clock
	logger    *slog.Logger
}

// NewDirectoryService creates a DirectoryService with all required
// dependencies. Call this in server.go when wiring the dependency graph.
func NewDirectoryService(docs *store.Documents, passwords *auth.PasswordService, clock Clock, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{
		docs:      docs,
		passwords: passwords,
		clock:     clock,
		logger:    logger,
	}
}

// Bootstrap prepares the directory on startup. It is idempotent.
//
// Empty store: seeds exactly one administrator from the configured identity
// and stamps the schema version.
//
// Existing store at version 0: runs the one-time migration — rewrite the
// legacy administrator (if configured and present) to the configured
// identity, ensure the configured administrator exists at all, then stamp
// version 1. Legacy deployments re-ran this rewrite on every load; the
// stored version marker makes it a single, logged migration step.
func (s *DirectoryService) Bootstrap(ctx context.Context, seed InitialAdmin) error {
	if seed.Email == "" || seed.Password == "" {
		return fmt.Errorf("service/directory: initial admin email and password must be configured")
	}

	s.docs.Lock()
	defer s.docs.Unlock()

	users, found, err := s.docs.Users(ctx)
	if err != nil {
		return fmt.Errorf("service/directory: bootstrap: %w", err)
	}

	if !found {
		hash, err := s.passwords.Hash(seed.Password)
		if err != nil {
			return fmt.Errorf("service/directory: bootstrap: %w", err)
		}

		admin := model.User{
			ID:           1,
			Name:         seed.Name,
			Email:        seed.Email,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
			Status:       model.StatusActive,
			Joined:       s.clock.Now(),
		}
		if err := s.docs.SaveUsers(ctx, []model.User{admin}); err != nil {
			return fmt.Errorf("service/directory: bootstrap: %w", err)
		}
		if err := s.docs.SaveSchemaVersion(ctx, schemaVersion); err != nil {
			return fmt.Errorf("service/directory: bootstrap: %w", err)
		}

		s.logger.Info("seeded initial administrator",
			slog.String("email", seed.Email),
		)
		return nil
	}

	version, err := s.docs.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("service/directory: bootstrap: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	changed := false

	// v0→v1: rewrite the legacy administrator identity in place.
	if seed.LegacyEmail != "" {
		if i := indexByEmail(users, seed.LegacyEmail); i >= 0 {
			hash, err := s.passwords.Hash(seed.Password)
			if err != nil {
				return fmt.Errorf("service/directory: bootstrap: %w", err)
			}
			users[i].Name = seed.Name
			users[i].Email = seed.Email
			users[i].PasswordHash = hash
			changed = true

			s.logger.Info("migrated legacy administrator account",
				slog.String("from", seed.LegacyEmail),
				slog.String("to", seed.Email),
				slog.Int64("userID", users[i].ID),
			)
		}
	}

	// Ensure the configured administrator exists at all.
	if indexByEmail(users, seed.Email) < 0 {
		hash, err := s.passwords.Hash(seed.Password)
		if err != nil {
			return fmt.Errorf("service/directory: bootstrap: %w", err)
		}
		users = append(users, model.User{
			ID:           nextID(users),
			Name:         seed.Name,
			Email:        seed.Email,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
			Status:       model.StatusActive,
			Joined:       s.clock.Now(),
		})
		changed = true

		s.logger.Info("added missing administrator account",
			slog.String("email", seed.Email),
		)
	}

	if changed {
		if err := s.docs.SaveUsers(ctx, users); err != nil {
			return fmt.Errorf("service/directory: bootstrap: %w", err)
		}
	}
	if err := s.docs.SaveSchemaVersion(ctx, schemaVersion); err != nil {
		return fmt.Errorf("service/directory: bootstrap: %w", err)
	}

	return nil
}

// List returns every user record.
func (s *DirectoryService) List(ctx context.Context) ([]model.User, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	users, _, err := s.docs.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/directory: listing users: %w", err)
	}
	return users, nil
}

// GetByID returns the user with the given identifier.
func (s *DirectoryService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	users, _, err := s.docs.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/directory: fetching user %d: %w", id, err)
	}
	if i := indexByID(users, id); i >= 0 {
		u := users[i]
		return &u, nil
	}
	return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
}

// FindByEmail returns the user with the given email (exact, case-sensitive
// match — emails are stored as entered).
func (s *DirectoryService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	users, _, err := s.docs.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/directory: finding user by email: %w", err)
	}
	if i := indexByEmail(users, email); i >= 0 {
		u := users[i]
		return &u, nil
	}
	return nil, apperror.NotFound("user", email)
}

// RoleByID returns just the role of a user. Implements auth.RoleResolver
// for the admin-gating middleware.
func (s *DirectoryService) RoleByID(ctx context.Context, id int64) (model.Role, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// Create adds a new user record and returns it.
//
// The identifier is one greater than the current maximum (1 when the
// directory is empty), status starts active, and the joined timestamp is the
// creation instant. Duplicate emails are rejected. The creation is recorded
// in the activity feed, attributed to the acting admin.
func (s *DirectoryService) Create(ctx context.Context, actor *model.User, name, email, password string, role model.Role) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name must not be empty")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email must not be empty")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password must not be empty")
	}
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, apperror.ValidationFailed("role", fmt.Sprintf("unknown role %q", role))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/directory: creating user: %w", err)
	}

	s.docs.Lock()
	defer s.docs.Unlock()

	users, _, err := s.docs.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/directory: creating user: %w", err)
	}

	if indexByEmail(users, email) >= 0 {
		return nil, apperror.Conflict("user", email)
	}

	user := model.User{
		ID:           nextID(users),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       model.StatusActive,
		Joined:       s.clock.Now(),
	}
	users = append(users, user)

	if err := s.docs.SaveUsers(ctx, users); err != nil {
		return nil, fmt.Errorf("service/directory: creating user: %w", err)
	}
	if actor != nil {
		if err := appendActivity(ctx, s.docs, s.clock.Now(), actor.DisplayName(), "created user: "+user.Email); err != nil {
			return nil, fmt.Errorf("service/directory: creating user: %w", err)
		}
	}

	s.logger.Info("user created",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
		slog.String("role", string(user.Role)),
	)

	return &user, nil
}

// Rename changes a user's display name. A name that is empty after trimming
// makes the call a no-op — nothing is written.
func (s *DirectoryService) Rename(ctx context.Context, actor *model.User, id int64, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil
	}

	s.docs.Lock()
	defer s.docs.Unlock()

	users, _, err := s.docs.Users(ctx)
	if err != nil {
		return fmt.Errorf("service/directory: renaming user %d: %w", id, err)
	}

	i := indexByID(users, id)
	if i < 0 {
		return apperror.NotFound("user", strconv.FormatInt(id, 10))
	}

	users[i].Name = newName
	if err := s.docs.SaveUsers(ctx, users); err != nil {
		return fmt.Errorf("service/directory: renaming user %d: %w", id, err)
	}
	if actor != nil {
		if err := appendActivity(ctx, s.docs, s.clock.Now(), actor.DisplayName(), "updated user: "+users[i].Email); err != nil {
			return fmt.Errorf("service/directory: renaming user %d: %w", id, err)
		}
	}

	return nil
}

// ToggleStatus flips a user between active and inactive. The acting account
// cannot change its own status.
func (s *DirectoryService) ToggleStatus(ctx context.Context, actor *model.User, id int64) (*model.User, error) {
	if actor != nil && actor.ID == id {
		return nil, apperror.SelfModification("change the status of")
	}

	s.docs.Lock()
	defer s.docs.Unlock()

	users, _, err := s.docs.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/directory: toggling user %d: %w", id, err)
	}

	i := indexByID(users, id)
	if i < 0 {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}

	users[i].Status = users[i].Status.Toggle()
	if err := s.docs.SaveUsers(ctx, users); err != nil {
		return nil, fmt.Errorf("service/directory: toggling user %d: %w", id, err)
	}

	action := "deactivated user: " + users[i].Email
	if users[i].Status == model.StatusActive {
		action = "activated user: " + users[i].Email
	}
	if actor != nil {
		if err := appendActivity(ctx, s.docs, s.clock.Now(), actor.DisplayName(), action); err != nil {
			return nil, fmt.Errorf("service/directory: toggling user %d: %w", id, err)
		}
	}

	u := users[i]
	return &u, nil
}

// Delete removes a user record. The acting account cannot delete itself.
// Deleting an unknown ID returns not-found without writing anything.
//
// If the deleted record is the persisted session identity, the session is
// logged out — a session must never reference a record that no longer
// exists.
func (s *DirectoryService) Delete(ctx context.Context, actor *model.User, id int64) error {
	if actor != nil && actor.ID == id {
		return apperror.SelfModification("delete")
	}

	s.docs.Lock()
	defer s.docs.Unlock()

	users, _, err := s.docs.Users(ctx)
	if err != nil {
		return fmt.Errorf("service/directory: deleting user %d: %w", id, err)
	}

	i := indexByID(users, id)
	if i < 0 {
		return apperror.NotFound("user", strconv.FormatInt(id, 10))
	}

	deleted := users[i]
	users = append(users[:i], users[i+1:]...)

	if err := s.docs.SaveUsers(ctx, users); err != nil {
		return fmt.Errorf("service/directory: deleting user %d: %w", id, err)
	}

	current, err := s.docs.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("service/directory: deleting user %d: %w", id, err)
	}
	if current != nil && current.ID == id {
		if err := s.docs.ClearCurrentUser(ctx); err != nil {
			return fmt.Errorf("service/directory: deleting user %d: %w", id, err)
		}
	}

	if actor != nil {
		if err := appendActivity(ctx, s.docs, s.clock.Now(), actor.DisplayName(), "deleted user: "+deleted.Email); err != nil {
			return fmt.Errorf("service/directory: deleting user %d: %w", id, err)
		}
	}

	s.logger.Info("user deleted",
		slog.Int64("userID", id),
		slog.String("email", deleted.Email),
	)

	return nil
}

// authenticate finds a user by exact email match and verifies the password
// against the stored hash. It does not check account status — that is the
// session's concern. Lock-free: the session service calls it while holding
// the Documents lock.
func (s *DirectoryService) authenticate(ctx context.Context, email, password string) (*model.User, error) {
	users, _, err := s.docs.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/directory: authenticating: %w", err)
	}

	i := indexByEmail(users, email)
	if i < 0 {
		return nil, apperror.InvalidCredentials()
	}
	if err := s.passwords.Verify(users[i].PasswordHash, password); err != nil {
		return nil, apperror.InvalidCredentials()
	}

	u := users[i]
	return &u, nil
}

// nextID assigns identifiers as one greater than the current maximum,
// starting from 1. IDs of deleted users can be reused if they held the
// maximum.
func nextID(users []model.User) int64 {
	var max int64
	for _, u := range users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

func indexByID(users []model.User, id int64) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func indexByEmail(users []model.User, email string) int {
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}
