package service

import (
	"context"
	"time"

	"github.com/mediapro/studio/internal/model"
	"github.com/mediapro/studio/internal/store"
)

// maxActivityEntries bounds the recent-activity feed. Appends beyond the
// bound drop the oldest entries.
const maxActivityEntries = 50

// appendActivity appends one entry to the feed and persists it, trimming to
// the most recent maxActivityEntries. The entries are stored oldest-first;
// reads reverse them.
//
// Callers must already hold the Documents lock — several services emit
// activity in the middle of their own locked mutate-and-persist sequences.
func appendActivity(ctx context.Context, docs *store.Documents, now time.Time, actor, action string) error {
	entries, err := docs.Activities(ctx)
	if err != nil {
		return err
	}

	entries = append(entries, model.ActivityEntry{
		User:      actor,
		Action:    action,
		Timestamp: now,
	})
	if len(entries) > maxActivityEntries {
		entries = entries[len(entries)-maxActivityEntries:]
	}

	return docs.SaveActivities(ctx, entries)
}
