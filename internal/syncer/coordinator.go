// Package syncer keeps the local store and the optional remote document
// database in step. Every write lands locally first; the remote copy is
// updated afterwards and failed remote writes are queued for retry.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/localstore"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/logger"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/store"
)

const (
	DefaultMaxAttempts   = 5
	DefaultBackoffBase   = 30 * time.Second
	DefaultRemoteTimeout = 10 * time.Second
)

type Option func(*Coordinator)

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithRetryPolicy sets how many failed drain attempts an entry gets before it
// is dead-lettered, and the base delay doubled after each failure.
func WithRetryPolicy(maxAttempts int, base time.Duration) Option {
	return func(c *Coordinator) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if base > 0 {
			c.backoffBase = base
		}
	}
}

// WithRemoteTimeout bounds every single remote call. Zero disables it.
func WithRemoteTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

type Coordinator struct {
	repo   *store.Repository
	local  *localstore.Store
	remote remote.Store

	now         func() time.Time
	maxAttempts int
	backoffBase time.Duration
	timeout     time.Duration
	log         *logrus.Entry

	// fullSync keeps SyncFromRemote and SyncToRemote from interleaving.
	fullSync sync.Mutex
	// queueMu guards the syncQueue and syncFailed keys.
	queueMu sync.Mutex

	pullMu    sync.Mutex
	pullLocks map[string]*sync.Mutex

	flight singleflight.Group
}

// New builds a coordinator. A nil remote behaves as permanently unavailable.
func New(repo *store.Repository, local *localstore.Store, rs remote.Store, opts ...Option) *Coordinator {
	if rs == nil {
		rs = remote.Unavailable{}
	}
	c := &Coordinator{
		repo:        repo,
		local:       local,
		remote:      rs,
		now:         time.Now,
		maxAttempts: DefaultMaxAttempts,
		backoffBase: DefaultBackoffBase,
		timeout:     DefaultRemoteTimeout,
		log:         logger.Get("syncer"),
		pullLocks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Repository exposes the local repository for reads.
func (c *Coordinator) Repository() *store.Repository {
	return c.repo
}

func (c *Coordinator) RemoteAvailable(ctx context.Context) bool {
	return c.remote.Available(ctx)
}

func (c *Coordinator) Status(ctx context.Context) domain.SyncStatus {
	c.queueMu.Lock()
	queued := len(c.loadQueue(ctx, localstore.SyncQueue))
	failed := len(c.loadQueue(ctx, localstore.SyncFailed))
	c.queueMu.Unlock()

	status := domain.SyncStatus{
		RemoteAvailable: c.remote.Available(ctx),
		Queued:          queued,
		Failed:          failed,
	}
	if at, ok := c.LastSync(ctx); ok {
		status.LastSync = &at
	}
	return status
}

func (c *Coordinator) LastSync(ctx context.Context) (time.Time, bool) {
	var at time.Time
	if !c.local.Get(ctx, localstore.LastSync, &at) || at.IsZero() {
		return time.Time{}, false
	}
	return at, true
}

func (c *Coordinator) recordSync(ctx context.Context) time.Time {
	at := c.now().UTC()
	if !c.local.Set(ctx, localstore.LastSync, at) {
		c.log.Warn("last sync time not recorded")
	}
	return at
}

// Run drains the queue every interval until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.log.WithField("interval", interval.String()).Info("sync queue worker started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info("sync queue worker stopped")
			return
		case <-ticker.C:
			res := c.Drain(ctx)
			if res.Attempted > 0 {
				c.log.WithFields(logrus.Fields{
					"attempted":     res.Attempted,
					"succeeded":     res.Succeeded,
					"dead_lettered": res.DeadLettered,
				}).Info("sync queue drained")
			}
		}
	}
}

func (c *Coordinator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// collectionLock returns the mutex held while a collection is pulled.
func (c *Coordinator) collectionLock(collection string) *sync.Mutex {
	c.pullMu.Lock()
	defer c.pullMu.Unlock()
	mu, ok := c.pullLocks[collection]
	if !ok {
		mu = &sync.Mutex{}
		c.pullLocks[collection] = mu
	}
	return mu
}
