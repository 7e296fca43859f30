// Package store is the persistence layer: a synchronous key-value store of
// string keys to string values, plus a typed document layer on top of it.
//
// Every durable piece of state lives under one of a fixed set of keys, each
// holding a full JSON document (or a bare scalar for the three site-level
// settings). A write always replaces the whole document — there are no
// partial updates and no schema versioning inside the documents themselves.
//
// No other package touches the raw KV directly; everything goes through the
// typed load/save methods on Documents.
package store

import "context"

// Store keys. The mediapro_ prefix is the namespace the documents have
// always been persisted under and is kept for compatibility.
const (
	KeyUsers              = "mediapro_users"
	KeyStats              = "mediapro_stats"
	KeyFeatures           = "mediapro_features"
	KeySettings           = "mediapro_settings"
	KeyCurrentUser        = "mediapro_current_user"
	KeyResetTokens        = "mediapro_reset_tokens"
	KeyActivities         = "mediapro_activities"
	KeyShareLinks         = "mediapro_share_links"
	KeySiteName           = "mediapro_site_name"
	KeyMaintenance        = "mediapro_maintenance"
	KeyEmailNotifications = "mediapro_email_notifications"
	KeySchemaVersion      = "mediapro_schema_version"
)

// KV is the minimal contract a storage backend must satisfy.
//
// WHY AN INTERFACE?
// The production backend is SQLite (store/sqlite); tests use the in-memory
// backend in this package. Consumers never care which one they got.
//
// Get returns (value, true, nil) when the key exists and ("", false, nil)
// when it doesn't — absence is not an error. Put fully overwrites any
// existing value.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
