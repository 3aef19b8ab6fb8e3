package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/localstore"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote"
)

type DrainResult struct {
	Attempted    int `json:"attempted"`
	Succeeded    int `json:"succeeded"`
	Retrying     int `json:"retrying"`
	NotDue       int `json:"notDue"`
	DeadLettered int `json:"deadLettered"`
}

func newEntry(collection string, action domain.SyncAction, docID string, value any, merge bool) (domain.QueueEntry, error) {
	entry := domain.QueueEntry{
		Collection: collection,
		Action:     action,
		DocID:      docID,
		Merge:      merge,
	}
	if action != domain.SyncDelete {
		data, err := toData(value)
		if err != nil {
			return domain.QueueEntry{}, err
		}
		entry.Data = data
	}
	return entry, nil
}

// write performs one remote document write. When the remote is reachable but
// the write fails, exactly one queue entry is recorded for it.
func (c *Coordinator) write(ctx context.Context, collection string, action domain.SyncAction, docID string, value any, merge bool) {
	if !c.remote.Available(ctx) {
		return
	}
	entry, err := newEntry(collection, action, docID, value, merge)
	if err != nil {
		c.log.WithError(err).WithField("collection", collection).Error("remote write skipped")
		return
	}
	if err := c.apply(ctx, entry); err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"collection": collection,
			"action":     action,
			"doc":        docID,
		}).Warn("remote write failed, queued for retry")
		c.enqueue(ctx, entry, err)
	}
}

func (c *Coordinator) apply(ctx context.Context, e domain.QueueEntry) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	switch {
	case e.Action == domain.SyncDelete:
		err := c.remote.Delete(ctx, e.Collection, e.DocID)
		if errors.Is(err, remote.ErrNotFound) {
			return nil
		}
		return err
	case e.DocID == "":
		_, err := c.remote.Add(ctx, e.Collection, e.Data)
		return err
	default:
		return c.remote.Set(ctx, e.Collection, e.DocID, e.Data, e.Merge)
	}
}

func (c *Coordinator) enqueue(ctx context.Context, entry domain.QueueEntry, cause error) {
	now := c.now().UTC()
	entry.ID = uuid.NewString()
	entry.EnqueuedAt = now
	entry.NextAttemptAt = now
	if cause != nil {
		entry.LastError = cause.Error()
	}

	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	queue := append(c.loadQueue(ctx, localstore.SyncQueue), entry)
	if !c.local.Set(ctx, localstore.SyncQueue, queue) {
		c.log.WithField("collection", entry.Collection).Error("sync queue entry lost: local write failed")
	}
}

// Queue returns the pending entries, oldest first.
func (c *Coordinator) Queue(ctx context.Context) []domain.QueueEntry {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return c.loadQueue(ctx, localstore.SyncQueue)
}

// FailedEntries returns entries that exhausted their retries.
func (c *Coordinator) FailedEntries(ctx context.Context) []domain.QueueEntry {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return c.loadQueue(ctx, localstore.SyncFailed)
}

// RetryFailed moves every dead-lettered entry back onto the queue with a
// fresh attempt budget and returns how many were moved.
func (c *Coordinator) RetryFailed(ctx context.Context) (int, error) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()

	failed := c.loadQueue(ctx, localstore.SyncFailed)
	if len(failed) == 0 {
		return 0, nil
	}
	now := c.now().UTC()
	for i := range failed {
		failed[i].Attempts = 0
		failed[i].NextAttemptAt = now
	}
	if !c.local.Set(ctx, localstore.SyncQueue, append(c.loadQueue(ctx, localstore.SyncQueue), failed...)) {
		return 0, errors.New("requeue failed entries: local write failed")
	}
	if !c.local.Set(ctx, localstore.SyncFailed, []domain.QueueEntry{}) {
		return 0, errors.New("clear failed entries: local write failed")
	}
	return len(failed), nil
}

// Drain retries the entries that are due. The queue lock is released while
// remote calls run, so writes queued meanwhile are kept.
func (c *Coordinator) Drain(ctx context.Context) DrainResult {
	v, _, _ := c.flight.Do("drain", func() (any, error) {
		return c.drain(ctx), nil
	})
	return v.(DrainResult)
}

func (c *Coordinator) drain(ctx context.Context) DrainResult {
	var res DrainResult
	if !c.remote.Available(ctx) {
		return res
	}

	c.queueMu.Lock()
	snapshot := c.loadQueue(ctx, localstore.SyncQueue)
	c.queueMu.Unlock()
	if len(snapshot) == 0 {
		return res
	}

	now := c.now().UTC()
	done := make(map[string]bool, len(snapshot))
	updated := make(map[string]domain.QueueEntry, len(snapshot))
	var dead []domain.QueueEntry

	for _, entry := range snapshot {
		if ctx.Err() != nil {
			break
		}
		if entry.NextAttemptAt.After(now) {
			res.NotDue++
			continue
		}
		res.Attempted++
		err := c.apply(ctx, entry)
		if err == nil {
			res.Succeeded++
			done[entry.ID] = true
			continue
		}

		entry.Attempts++
		entry.LastError = err.Error()
		if entry.Attempts >= c.maxAttempts {
			res.DeadLettered++
			done[entry.ID] = true
			dead = append(dead, entry)
			c.log.WithError(err).WithFields(logrus.Fields{
				"collection": entry.Collection,
				"doc":        entry.DocID,
				"attempts":   entry.Attempts,
			}).Error("sync entry moved to failed list")
			continue
		}
		res.Retrying++
		entry.NextAttemptAt = now.Add(c.backoff(entry.Attempts))
		updated[entry.ID] = entry
	}

	c.queueMu.Lock()
	defer c.queueMu.Unlock()

	current := c.loadQueue(ctx, localstore.SyncQueue)
	next := make([]domain.QueueEntry, 0, len(current))
	for _, entry := range current {
		if done[entry.ID] {
			continue
		}
		if u, ok := updated[entry.ID]; ok {
			entry = u
		}
		next = append(next, entry)
	}
	if !c.local.Set(ctx, localstore.SyncQueue, next) {
		c.log.Error("sync queue not saved after drain")
	}
	if len(dead) > 0 {
		if !c.local.Set(ctx, localstore.SyncFailed, append(c.loadQueue(ctx, localstore.SyncFailed), dead...)) {
			c.log.Error("failed sync entries not saved")
		}
	}
	return res
}

// backoff is base * 2^(attempts-1).
func (c *Coordinator) backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	if attempts > 20 {
		attempts = 20
	}
	return c.backoffBase << (attempts - 1)
}

// loadQueue reads a queue key. Callers hold queueMu.
func (c *Coordinator) loadQueue(ctx context.Context, key localstore.Key) []domain.QueueEntry {
	var entries []domain.QueueEntry
	if !c.local.Get(ctx, key, &entries) || entries == nil {
		return []domain.QueueEntry{}
	}
	return entries
}
