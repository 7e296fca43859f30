package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/mediapro/studio/internal/model"
)

// Default values applied when a document has never been saved. They match
// what a fresh installation of the site shipped with.
const (
	DefaultSiteName        = "MediaPro Studio"
	DefaultMaxFileSizeMB   = 50
	DefaultMaxEnhancements = 100
	DefaultLinkExpiryDays  = 7
)

// DefaultFeatures returns the flag set for a fresh installation:
// everything enabled.
func DefaultFeatures() model.FeatureFlags {
	return model.FeatureFlags{Enhance: true, Compress: true, Share: true, PDF: true}
}

// DefaultSettings returns the numeric limits for a fresh installation.
func DefaultSettings() model.Settings {
	return model.Settings{
		MaxFileSizeMB:   DefaultMaxFileSizeMB,
		MaxEnhancements: DefaultMaxEnhancements,
		LinkExpiryDays:  DefaultLinkExpiryDays,
	}
}

// Documents is the typed load/save layer over the raw KV, and the single
// serialization point for all mutations.
//
// SERIALIZATION:
// The embedded mutex guards every mutate-and-persist sequence. A service
// method that reads a document, changes it, and saves it must hold the lock
// for the whole sequence, so two concurrent requests can never interleave
// their read-modify-write cycles and clobber each other. Read-only callers
// lock too — the underlying KV has no transactional guarantees, and a read
// racing a multi-key save could otherwise observe half of it.
//
// Documents itself never locks; locking is the caller's responsibility so a
// single lock can span several load/save calls.
type Documents struct {
	sync.Mutex

	kv KV
}

// NewDocuments wraps a KV backend.
func NewDocuments(kv KV) *Documents {
	return &Documents{kv: kv}
}

// loadJSON unmarshals the document at key into out.
// Returns false (and leaves out untouched) when the key is absent.
func (d *Documents) loadJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, ok, err := d.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("store: loading %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("store: decoding %s: %w", key, err)
	}
	return true, nil
}

// saveJSON marshals v and fully overwrites the document at key.
func (d *Documents) saveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encoding %s: %w", key, err)
	}
	if err := d.kv.Put(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("store: saving %s: %w", key, err)
	}
	return nil
}

// Users loads the user directory. The boolean distinguishes "never saved"
// from "saved but empty" — bootstrap needs to know the difference.
func (d *Documents) Users(ctx context.Context) ([]model.User, bool, error) {
	var users []model.User
	ok, err := d.loadJSON(ctx, KeyUsers, &users)
	return users, ok, err
}

func (d *Documents) SaveUsers(ctx context.Context, users []model.User) error {
	if users == nil {
		users = []model.User{} // persist [] rather than null
	}
	return d.saveJSON(ctx, KeyUsers, users)
}

func (d *Documents) Stats(ctx context.Context) (model.UsageStats, error) {
	var stats model.UsageStats
	_, err := d.loadJSON(ctx, KeyStats, &stats)
	return stats, err
}

func (d *Documents) SaveStats(ctx context.Context, stats model.UsageStats) error {
	return d.saveJSON(ctx, KeyStats, stats)
}

func (d *Documents) Features(ctx context.Context) (model.FeatureFlags, error) {
	flags := DefaultFeatures()
	_, err := d.loadJSON(ctx, KeyFeatures, &flags)
	return flags, err
}

func (d *Documents) SaveFeatures(ctx context.Context, flags model.FeatureFlags) error {
	return d.saveJSON(ctx, KeyFeatures, flags)
}

func (d *Documents) Settings(ctx context.Context) (model.Settings, error) {
	settings := DefaultSettings()
	_, err := d.loadJSON(ctx, KeySettings, &settings)
	return settings, err
}

func (d *Documents) SaveSettings(ctx context.Context, settings model.Settings) error {
	return d.saveJSON(ctx, KeySettings, settings)
}

// CurrentUser loads the persisted session identity, or nil when logged out.
func (d *Documents) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	ok, err := d.loadJSON(ctx, KeyCurrentUser, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

func (d *Documents) SaveCurrentUser(ctx context.Context, user *model.User) error {
	return d.saveJSON(ctx, KeyCurrentUser, user)
}

// ClearCurrentUser removes the persisted session identity entirely — logout
// deletes the key rather than writing a null document.
func (d *Documents) ClearCurrentUser(ctx context.Context) error {
	if err := d.kv.Delete(ctx, KeyCurrentUser); err != nil {
		return fmt.Errorf("store: clearing %s: %w", KeyCurrentUser, err)
	}
	return nil
}

func (d *Documents) ResetTokens(ctx context.Context) (map[string]model.ResetToken, error) {
	tokens := make(map[string]model.ResetToken)
	_, err := d.loadJSON(ctx, KeyResetTokens, &tokens)
	return tokens, err
}

func (d *Documents) SaveResetTokens(ctx context.Context, tokens map[string]model.ResetToken) error {
	return d.saveJSON(ctx, KeyResetTokens, tokens)
}

func (d *Documents) Activities(ctx context.Context) ([]model.ActivityEntry, error) {
	var entries []model.ActivityEntry
	_, err := d.loadJSON(ctx, KeyActivities, &entries)
	return entries, err
}

func (d *Documents) SaveActivities(ctx context.Context, entries []model.ActivityEntry) error {
	if entries == nil {
		entries = []model.ActivityEntry{}
	}
	return d.saveJSON(ctx, KeyActivities, entries)
}

func (d *Documents) ShareLinks(ctx context.Context) (map[string]model.ShareLink, error) {
	links := make(map[string]model.ShareLink)
	_, err := d.loadJSON(ctx, KeyShareLinks, &links)
	return links, err
}

func (d *Documents) SaveShareLinks(ctx context.Context, links map[string]model.ShareLink) error {
	return d.saveJSON(ctx, KeyShareLinks, links)
}

// System loads the three scalar site-level settings. Each lives under its own
// key as a bare string, not JSON — that is how they were always stored.
func (d *Documents) System(ctx context.Context) (model.SystemSettings, error) {
	sys := model.SystemSettings{
		SiteName:           DefaultSiteName,
		EmailNotifications: true, // default on; only an explicit "false" disables
	}

	if name, ok, err := d.kv.Get(ctx, KeySiteName); err != nil {
		return sys, fmt.Errorf("store: loading %s: %w", KeySiteName, err)
	} else if ok && name != "" {
		sys.SiteName = name
	}

	if v, ok, err := d.kv.Get(ctx, KeyMaintenance); err != nil {
		return sys, fmt.Errorf("store: loading %s: %w", KeyMaintenance, err)
	} else if ok {
		sys.Maintenance = v == "true"
	}

	if v, ok, err := d.kv.Get(ctx, KeyEmailNotifications); err != nil {
		return sys, fmt.Errorf("store: loading %s: %w", KeyEmailNotifications, err)
	} else if ok {
		sys.EmailNotifications = v != "false"
	}

	return sys, nil
}

func (d *Documents) SaveSystem(ctx context.Context, sys model.SystemSettings) error {
	if err := d.kv.Put(ctx, KeySiteName, sys.SiteName); err != nil {
		return fmt.Errorf("store: saving %s: %w", KeySiteName, err)
	}
	if err := d.kv.Put(ctx, KeyMaintenance, strconv.FormatBool(sys.Maintenance)); err != nil {
		return fmt.Errorf("store: saving %s: %w", KeyMaintenance, err)
	}
	if err := d.kv.Put(ctx, KeyEmailNotifications, strconv.FormatBool(sys.EmailNotifications)); err != nil {
		return fmt.Errorf("store: saving %s: %w", KeyEmailNotifications, err)
	}
	return nil
}

// SchemaVersion reports the stored migration marker; 0 when never stamped.
func (d *Documents) SchemaVersion(ctx context.Context) (int, error) {
	raw, ok, err := d.kv.Get(ctx, KeySchemaVersion)
	if err != nil {
		return 0, fmt.Errorf("store: loading %s: %w", KeySchemaVersion, err)
	}
	if !ok {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("store: decoding %s: %w", KeySchemaVersion, err)
	}
	return v, nil
}

func (d *Documents) SaveSchemaVersion(ctx context.Context, v int) error {
	if err := d.kv.Put(ctx, KeySchemaVersion, strconv.Itoa(v)); err != nil {
		return fmt.Errorf("store: saving %s: %w", KeySchemaVersion, err)
	}
	return nil
}
