// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
//
// The JSON tags on every struct mirror the persisted document layout: each
// store key holds one full JSON document (a user list, a stats record, a
// token map), and these structs are the canonical shape of those documents.
package model

import "time"

// Role is a user's permission level. There are exactly two.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Status is an account's activation state. Inactive accounts keep their
// record but cannot log in.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// User represents a registered account in the user directory.
//
// WHY ID int64?
// Identifiers are numeric and monotonically assigned: the next ID is always
// one greater than the current maximum (1 for an empty directory). int64
// matches what encoding/json round-trips cleanly for integral values.
//
// WHY PasswordHash UNDER THE "password" KEY?
// The persisted document historically stored the plaintext password under
// "password". We keep the key so existing documents keep their shape, but the
// value is always a bcrypt hash — plaintext never touches the store.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	Joined       time.Time `json:"joined"` // creation instant, immutable
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// DisplayName is the name shown in activity entries: the user's name, or
// their email when the name is empty.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Feature names a gated product capability.
type Feature string

const (
	FeatureEnhance  Feature = "enhance"
	FeatureCompress Feature = "compress"
	FeatureShare    Feature = "share"
	FeaturePDF      Feature = "pdf"
)

// Features lists every known feature, in display order.
func Features() []Feature {
	return []Feature{FeatureEnhance, FeatureCompress, FeatureShare, FeaturePDF}
}

// ParseFeature maps a raw string (e.g. a URL parameter) to a known Feature.
func ParseFeature(s string) (Feature, bool) {
	switch f := Feature(s); f {
	case FeatureEnhance, FeatureCompress, FeatureShare, FeaturePDF:
		return f, true
	}
	return "", false
}

// Label returns the human-readable name used in activity entries,
// e.g. "enabled photo enhancement".
func (f Feature) Label() string {
	switch f {
	case FeatureEnhance:
		return "photo enhancement"
	case FeatureCompress:
		return "photo compression"
	case FeatureShare:
		return "link generation"
	case FeaturePDF:
		return "PDF editor"
	}
	return string(f)
}

// FeatureFlags maps each feature to its enabled state. New installations
// start with everything enabled (see Defaults in the store package).
type FeatureFlags struct {
	Enhance  bool `json:"enhance"`
	Compress bool `json:"compress"`
	Share    bool `json:"share"`
	PDF      bool `json:"pdf"`
}

// Enabled reports whether the named feature is switched on.
// Unknown features are reported as disabled.
func (ff FeatureFlags) Enabled(f Feature) bool {
	switch f {
	case FeatureEnhance:
		return ff.Enhance
	case FeatureCompress:
		return ff.Compress
	case FeatureShare:
		return ff.Share
	case FeaturePDF:
		return ff.PDF
	}
	return false
}

// Set switches the named feature on or off.
func (ff *FeatureFlags) Set(f Feature, enabled bool) {
	switch f {
	case FeatureEnhance:
		ff.Enhance = enabled
	case FeatureCompress:
		ff.Compress = enabled
	case FeatureShare:
		ff.Share = enabled
	case FeaturePDF:
		ff.PDF = enabled
	}
}

// Settings are the numeric limits read by the feature UIs.
//
// The validate tags are enforced by go-playground/validator when an admin
// saves new values: every limit must be strictly positive.
type Settings struct {
	MaxFileSizeMB   int `json:"maxFileSize"     validate:"gt=0"`
	MaxEnhancements int `json:"maxEnhancements" validate:"gt=0"`
	LinkExpiryDays  int `json:"linkExpiry"      validate:"gt=0"`
}

// UsageStats holds the per-feature usage counters shown on the dashboard.
//
// TotalUsers is derived — it is recomputed from the directory size whenever
// stats are read or usage is recorded, never incremented independently.
// StorageMB is carried for display but nothing updates it yet.
type UsageStats struct {
	TotalUsers   int64 `json:"totalUsers"`
	Enhancements int64 `json:"enhancements"`
	Compressions int64 `json:"compressions"`
	Links        int64 `json:"links"`
	PDFs         int64 `json:"pdfs"`
	StorageMB    int64 `json:"storage"`
}

// Count returns the counter value for the given feature.
func (s UsageStats) Count(f Feature) int64 {
	switch f {
	case FeatureEnhance:
		return s.Enhancements
	case FeatureCompress:
		return s.Compressions
	case FeatureShare:
		return s.Links
	case FeaturePDF:
		return s.PDFs
	}
	return 0
}

// Record increments the counter for the given feature.
func (s *UsageStats) Record(f Feature) {
	switch f {
	case FeatureEnhance:
		s.Enhancements++
	case FeatureCompress:
		s.Compressions++
	case FeatureShare:
		s.Links++
	case FeaturePDF:
		s.PDFs++
	}
}

// ActivityEntry is one line of the recent-activity feed: who did what, when.
// The feed is display-only — it is not a security-authoritative audit log.
type ActivityEntry struct {
	User      string    `json:"user"` // actor name, or email when the name is empty
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// ResetToken is a short-lived credential proving authorized intent to change
// a specific account's password. Entries are keyed by email in the store; at
// most one live entry exists per email.
type ResetToken struct {
	Token     string    `json:"token"`
	Expiry    time.Time `json:"expiry"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExpiredAt reports whether the token is past its expiry at the given instant.
func (t ResetToken) ExpiredAt(now time.Time) bool {
	return now.After(t.Expiry)
}

// ShareLink is a minted shareable link. Links expire after the configured
// number of days (Settings.LinkExpiryDays) and are purged on resolve.
type ShareLink struct {
	Slug      string    `json:"slug"`
	Name      string    `json:"name"` // original file name, display only
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SystemSettings are the three unstructured site-level values. They persist
// as independent scalar keys, not as one JSON document.
type SystemSettings struct {
	SiteName           string `json:"siteName"`
	Maintenance        bool   `json:"maintenance"`
	EmailNotifications bool   `json:"emailNotifications"`
}
