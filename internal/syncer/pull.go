package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote"
)

// SyncReport summarises a full sync in either direction.
type SyncReport struct {
	Skipped     bool              `json:"skipped,omitempty"`
	Collections map[string]int    `json:"collections"`
	Errors      map[string]string `json:"errors,omitempty"`
	Drain       *DrainResult      `json:"drain,omitempty"`
	At          time.Time         `json:"at,omitzero"`
}

func newReport() SyncReport {
	return SyncReport{Collections: map[string]int{}, Errors: map[string]string{}}
}

var pullCollections = []string{remote.Products, remote.Orders, remote.Users, remote.Appointments}

// Refresh pulls one collection and overwrites the local copy when the remote
// has any documents. It reports whether local data changed.
func (c *Coordinator) Refresh(ctx context.Context, collection string) bool {
	if !c.remote.Available(ctx) {
		return false
	}
	v, _, _ := c.flight.Do("refresh:"+collection, func() (any, error) {
		n, err := c.pull(ctx, collection)
		if err != nil {
			c.log.WithError(err).WithField("collection", collection).Warn("refresh failed, keeping local data")
		}
		return n > 0, nil
	})
	return v.(bool)
}

// SyncFromRemote pulls products, orders, users and appointments in parallel,
// records the sync time and then drains the queue. Empty or failing remote
// collections leave local data untouched.
func (c *Coordinator) SyncFromRemote(ctx context.Context) SyncReport {
	v, _, _ := c.flight.Do("sync:from", func() (any, error) {
		return c.syncFromRemote(ctx), nil
	})
	return v.(SyncReport)
}

func (c *Coordinator) syncFromRemote(ctx context.Context) SyncReport {
	report := newReport()
	if !c.remote.Available(ctx) {
		report.Skipped = true
		return report
	}

	c.fullSync.Lock()
	var mu sync.Mutex
	var g errgroup.Group
	for _, collection := range pullCollections {
		g.Go(func() error {
			n, err := c.pull(ctx, collection)
			mu.Lock()
			defer mu.Unlock()
			report.Collections[collection] = n
			if err != nil {
				report.Errors[collection] = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()
	report.At = c.recordSync(ctx)
	c.fullSync.Unlock()

	drained := c.Drain(ctx)
	report.Drain = &drained

	c.log.WithFields(logrus.Fields{
		"collections": report.Collections,
		"errors":      len(report.Errors),
	}).Info("synced from remote")
	return report
}

// pull copies one remote collection into the local store under that
// collection's lock and returns how many records were written.
func (c *Coordinator) pull(ctx context.Context, collection string) (int, error) {
	mu := c.collectionLock(collection)
	mu.Lock()
	defer mu.Unlock()

	rctx, cancel := c.withTimeout(ctx)
	docs, err := c.remote.GetAll(rctx, collection)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("pull %s: %w", collection, err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	switch collection {
	case remote.Products:
		return save(ctx, docs, true, c.repo.SaveProducts)
	case remote.Orders:
		return save(ctx, docs, true, c.repo.SaveOrders)
	case remote.Customers:
		return save(ctx, docs, true, c.repo.SaveCustomers)
	case remote.Appointments:
		return save(ctx, docs, true, c.repo.SaveAppointments)
	case remote.Users:
		return save(ctx, docs, false, c.repo.SaveUsers)
	}
	return 0, fmt.Errorf("pull %s: collection is not synced", collection)
}

func save[T any](ctx context.Context, docs []remote.Document, keyAsID bool, persist func(context.Context, []T) error) (int, error) {
	items, err := fromDocs[T](docs, keyAsID)
	if err != nil {
		return 0, err
	}
	if err := persist(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// RefreshActivity replaces the local activity log with the newest remote
// entries when the remote has any.
func (c *Coordinator) RefreshActivity(ctx context.Context, limit int) bool {
	if !c.remote.Available(ctx) {
		return false
	}
	rctx, cancel := c.withTimeout(ctx)
	docs, err := c.remote.Latest(rctx, remote.ActivityLog, "id", limit)
	cancel()
	if err != nil {
		c.log.WithError(err).Warn("activity refresh failed")
		return false
	}
	if len(docs) == 0 {
		return false
	}
	entries, err := fromDocs[domain.ActivityEntry](docs, false)
	if err != nil {
		c.log.WithError(err).Warn("activity refresh failed")
		return false
	}
	if err := c.repo.SaveActivityLog(ctx, entries); err != nil {
		c.log.WithError(err).Warn("activity refresh failed")
		return false
	}
	return true
}

// UserProfile returns the remote profile for email, falling back to the local
// user list when the remote is unavailable or has no document.
func (c *Coordinator) UserProfile(ctx context.Context, email string) (domain.LocalUser, bool) {
	if c.remote.Available(ctx) {
		rctx, cancel := c.withTimeout(ctx)
		doc, ok, err := c.remote.Get(rctx, remote.Users, remote.UserDocID(email))
		cancel()
		switch {
		case err != nil:
			c.log.WithError(err).Warn("user profile lookup failed, using local copy")
		case ok:
			user, err := fromData[domain.LocalUser](doc.ID, doc.Data, false)
			if err == nil {
				return user, true
			}
			c.log.WithError(err).Warn("user profile undecodable, using local copy")
		}
	}
	user, err := c.repo.UserByEmail(ctx, email)
	if err != nil {
		return domain.LocalUser{}, false
	}
	return user, true
}

type itemsDoc[T any] struct {
	Items []T `json:"items"`
}

// RefreshCart replaces a signed-in user's local cart with the remote copy.
func (c *Coordinator) RefreshCart(ctx context.Context, userID string) bool {
	doc, ok := c.itemsDocument(ctx, remote.Cart, userID)
	if !ok {
		return false
	}
	items, err := fromData[itemsDoc[domain.CartLine]](doc.ID, doc.Data, false)
	if err != nil || items.Items == nil {
		return false
	}
	return c.repo.SaveCart(ctx, userID, items.Items) == nil
}

// RefreshWishlist replaces a signed-in user's local wishlist with the remote copy.
func (c *Coordinator) RefreshWishlist(ctx context.Context, userID string) bool {
	doc, ok := c.itemsDocument(ctx, remote.Wishlist, userID)
	if !ok {
		return false
	}
	items, err := fromData[itemsDoc[domain.DocID]](doc.ID, doc.Data, false)
	if err != nil || items.Items == nil {
		return false
	}
	return c.repo.SaveWishlist(ctx, userID, items.Items) == nil
}

func (c *Coordinator) itemsDocument(ctx context.Context, collection, userID string) (remote.Document, bool) {
	if userID == "" || !c.remote.Available(ctx) {
		return remote.Document{}, false
	}
	rctx, cancel := c.withTimeout(ctx)
	defer cancel()
	doc, ok, err := c.remote.Get(rctx, collection, userID)
	if err != nil {
		c.log.WithError(err).WithField("collection", collection).Warn("remote read failed")
		return remote.Document{}, false
	}
	return doc, ok
}
