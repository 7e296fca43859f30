package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediapro/studio/internal/apperror"
	"github.com/mediapro/studio/internal/model"
	"github.com/mediapro/studio/internal/store"
)

func TestFlagsDefaultAllEnabled(t *testing.T) {
	env := newTestEnv(t)

	flags, err := env.features.Flags(context.Background())
	require.NoError(t, err)

	for _, f := range model.Features() {
		assert.True(t, flags.Enabled(f), "feature %s should start enabled", f)
	}
}

func TestSetEnabledPersistsAndRecordsActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.bootstrap(t)

	require.NoError(t, env.features.SetEnabled(ctx, admin, model.FeatureShare, false))

	enabled, err := env.features.IsEnabled(ctx, model.FeatureShare)
	require.NoError(t, err)
	assert.False(t, enabled)

	// Other flags are untouched.
	enabled, err = env.features.IsEnabled(ctx, model.FeatureEnhance)
	require.NoError(t, err)
	assert.True(t, enabled)

	entries, err := env.stats.RecentActivity(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "disabled link generation", entries[0].Action)

	require.NoError(t, env.features.SetEnabled(ctx, admin, model.FeatureShare, true))
	entries, err = env.stats.RecentActivity(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "enabled link generation", entries[0].Action)
}

func TestSetEnabledFiresCallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.bootstrap(t)

	var gotFeature model.Feature
	var gotEnabled bool
	env.features.SetOnChange(func(f model.Feature, enabled bool) {
		gotFeature, gotEnabled = f, enabled
		// The callback runs outside the store lock, so calling back into a
		// service must not deadlock.
		_, err := env.features.Flags(ctx)
		assert.NoError(t, err)
	})

	require.NoError(t, env.features.SetEnabled(ctx, admin, model.FeaturePDF, false))
	assert.Equal(t, model.FeaturePDF, gotFeature)
	assert.False(t, gotEnabled)
}

func TestSettingsDefaults(t *testing.T) {
	env := newTestEnv(t)

	settings, err := env.features.Settings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, store.DefaultMaxFileSizeMB, settings.MaxFileSizeMB)
	assert.Equal(t, store.DefaultMaxEnhancements, settings.MaxEnhancements)
	assert.Equal(t, store.DefaultLinkExpiryDays, settings.LinkExpiryDays)
}

func TestSetSettingsRejectsNonPositiveValues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.bootstrap(t)

	tests := []struct {
		name     string
		settings model.Settings
	}{
		{"zero file size", model.Settings{MaxFileSizeMB: 0, MaxEnhancements: 100, LinkExpiryDays: 7}},
		{"negative enhancements", model.Settings{MaxFileSizeMB: 50, MaxEnhancements: -1, LinkExpiryDays: 7}},
		{"zero expiry", model.Settings{MaxFileSizeMB: 50, MaxEnhancements: 100, LinkExpiryDays: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.features.SetSettings(ctx, admin, tt.settings)
			assert.True(t, errors.Is(err, apperror.ErrValidation), "got %v", err)
		})
	}

	// Nothing was written by the rejected saves.
	settings, err := env.features.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.DefaultSettings(), settings)
}

func TestSetSettingsPersistsAndRecordsActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.bootstrap(t)

	want := model.Settings{MaxFileSizeMB: 25, MaxEnhancements: 10, LinkExpiryDays: 30}
	require.NoError(t, env.features.SetSettings(ctx, admin, want))

	got, err := env.features.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := env.stats.RecentActivity(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "updated feature settings", entries[0].Action)
}

func TestSystemDefaults(t *testing.T) {
	env := newTestEnv(t)

	sys, err := env.features.System(context.Background())
	require.NoError(t, err)

	assert.Equal(t, store.DefaultSiteName, sys.SiteName)
	assert.False(t, sys.Maintenance)
	assert.True(t, sys.EmailNotifications, "email notifications default on")
}

func TestSetSystemRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.bootstrap(t)

	want := model.SystemSettings{SiteName: "Studio X", Maintenance: true, EmailNotifications: false}
	require.NoError(t, env.features.SetSystem(ctx, admin, want))

	got, err := env.features.System(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := env.stats.RecentActivity(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "updated system settings", entries[0].Action)
}
