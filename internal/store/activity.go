package store

import (
	"context"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/localstore"
)

// ActivityLimit is the number of activity entries kept.
func (r *Repository) ActivityLimit() int {
	return r.activityLimit
}

// ActivityLog returns the newest entries first. A limit of zero returns all.
func (r *Repository) ActivityLog(ctx context.Context, limit int) []domain.ActivityEntry {
	entries := load[domain.ActivityEntry](ctx, r.local, localstore.ActivityLog)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// SaveActivityLog replaces the log, keeping only the newest retained entries.
func (r *Repository) SaveActivityLog(ctx context.Context, entries []domain.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(entries) > r.activityLimit {
		entries = entries[:r.activityLimit]
	}
	return r.save(ctx, localstore.ActivityLog, entries)
}

func (r *Repository) LogActivity(ctx context.Context, action string, details map[string]any) domain.ActivityEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logActivity(ctx, action, details)
}

// logActivity prepends an entry and evicts the oldest beyond the limit.
// Callers hold r.mu. A failed write is logged and does not fail the caller.
func (r *Repository) logActivity(ctx context.Context, action string, details map[string]any) domain.ActivityEntry {
	entries := load[domain.ActivityEntry](ctx, r.local, localstore.ActivityLog)

	now := r.timestamp()
	id := now.UnixMilli()
	if len(entries) > 0 && entries[0].ID >= id {
		id = entries[0].ID + 1
	}

	userID := "system"
	if actor, ok := ActorFromContext(ctx); ok && actor.Username != "" {
		userID = actor.Username
	}

	entry := domain.ActivityEntry{
		ID:        id,
		Action:    action,
		Details:   details,
		Timestamp: now,
		UserID:    userID,
	}

	entries = append([]domain.ActivityEntry{entry}, entries...)
	if len(entries) > r.activityLimit {
		entries = entries[:r.activityLimit]
	}
	if err := r.save(ctx, localstore.ActivityLog, entries); err != nil {
		r.log.WithError(err).WithField("action", action).Warn("activity entry not recorded")
	}
	return entry
}
