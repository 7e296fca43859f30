package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/mediapro/studio/internal/apperror"
	"github.com/mediapro/studio/internal/model"
	"github.com/mediapro/studio/internal/store"
)

// FeatureService owns the feature toggles, the numeric limits, and the three
// site-level system settings. Feature UIs consult IsEnabled as a gate before
// doing any work.
type FeatureService struct {
	docs     *store.Documents
	validate *validator.Validate
	clock    Clock
	logger   *slog.Logger

	// onChange, when set, is invoked after a flag flip has been persisted so
	// the presentation layer can enable or disable the matching section.
	// It runs outside the store lock — it may call back into services.
	onChange func(model.Feature, bool)
}

// NewFeatureService creates a FeatureService.
//
// The validator instance enforces the Settings struct tags: every numeric
// limit must be strictly positive. Legacy data may contain zero or negative
// values; new saves reject them.
func NewFeatureService(docs *store.Documents, clock Clock, logger *slog.Logger) *FeatureService {
	return &FeatureService{
		docs:     docs,
		validate: validator.New(),
		clock:    clock,
		logger:   logger,
	}
}

// SetOnChange registers the flag-change callback. Call during wiring, before
// the service is shared — the field is not guarded.
func (s *FeatureService) SetOnChange(fn func(model.Feature, bool)) {
	s.onChange = fn
}

// Flags returns the current flag set.
func (s *FeatureService) Flags(ctx context.Context) (model.FeatureFlags, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	flags, err := s.docs.Features(ctx)
	if err != nil {
		return model.FeatureFlags{}, fmt.Errorf("service/features: %w", err)
	}
	return flags, nil
}

// IsEnabled reports whether the named feature is switched on. Pure read.
func (s *FeatureService) IsEnabled(ctx context.Context, f model.Feature) (bool, error) {
	flags, err := s.Flags(ctx)
	if err != nil {
		return false, err
	}
	return flags.Enabled(f), nil
}

// SetEnabled switches a feature on or off, persists the flag set, records
// the change in the activity feed, and notifies the change callback.
func (s *FeatureService) SetEnabled(ctx context.Context, actor *model.User, f model.Feature, enabled bool) error {
	if err := s.setEnabled(ctx, actor, f, enabled); err != nil {
		return err
	}
	if s.onChange != nil {
		s.onChange(f, enabled)
	}
	return nil
}

// setEnabled does the locked portion of SetEnabled; the callback fires after
// the lock is released.
func (s *FeatureService) setEnabled(ctx context.Context, actor *model.User, f model.Feature, enabled bool) error {
	s.docs.Lock()
	defer s.docs.Unlock()

	flags, err := s.docs.Features(ctx)
	if err != nil {
		return fmt.Errorf("service/features: toggling %s: %w", f, err)
	}

	flags.Set(f, enabled)
	if err := s.docs.SaveFeatures(ctx, flags); err != nil {
		return fmt.Errorf("service/features: toggling %s: %w", f, err)
	}

	if actor != nil {
		action := "disabled " + f.Label()
		if enabled {
			action = "enabled " + f.Label()
		}
		if err := appendActivity(ctx, s.docs, s.clock.Now(), actor.DisplayName(), action); err != nil {
			return fmt.Errorf("service/features: toggling %s: %w", f, err)
		}
	}

	s.logger.Info("feature toggled",
		slog.String("feature", string(f)),
		slog.Bool("enabled", enabled),
	)

	return nil
}

// Settings returns the current numeric limits.
func (s *FeatureService) Settings(ctx context.Context) (model.Settings, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	settings, err := s.docs.Settings(ctx)
	if err != nil {
		return model.Settings{}, fmt.Errorf("service/features: %w", err)
	}
	return settings, nil
}

// SetSettings validates and persists new numeric limits. Non-positive values
// are rejected before anything is written.
func (s *FeatureService) SetSettings(ctx context.Context, actor *model.User, settings model.Settings) error {
	if err := s.validate.Struct(settings); err != nil {
		return apperror.ValidationFailed("settings", "all limits must be positive numbers")
	}

	s.docs.Lock()
	defer s.docs.Unlock()

	if err := s.docs.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("service/features: saving settings: %w", err)
	}

	if actor != nil {
		if err := appendActivity(ctx, s.docs, s.clock.Now(), actor.DisplayName(), "updated feature settings"); err != nil {
			return fmt.Errorf("service/features: saving settings: %w", err)
		}
	}

	return nil
}

// System returns the site-level settings (site name, maintenance mode,
// email notifications).
func (s *FeatureService) System(ctx context.Context) (model.SystemSettings, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	sys, err := s.docs.System(ctx)
	if err != nil {
		return model.SystemSettings{}, fmt.Errorf("service/features: %w", err)
	}
	return sys, nil
}

// SetSystem persists the site-level settings.
func (s *FeatureService) SetSystem(ctx context.Context, actor *model.User, sys model.SystemSettings) error {
	s.docs.Lock()
	defer s.docs.Unlock()

	if err := s.docs.SaveSystem(ctx, sys); err != nil {
		return fmt.Errorf("service/features: saving system settings: %w", err)
	}

	if actor != nil {
		if err := appendActivity(ctx, s.docs, s.clock.Now(), actor.DisplayName(), "updated system settings"); err != nil {
			return fmt.Errorf("service/features: saving system settings: %w", err)
		}
	}

	return nil
}
