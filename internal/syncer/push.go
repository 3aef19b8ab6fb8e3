package syncer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote"
)

// SyncToRemote pushes products, orders and appointments with batched writes
// keyed by id, then merges each local user into its users document.
func (c *Coordinator) SyncToRemote(ctx context.Context) SyncReport {
	v, _, _ := c.flight.Do("sync:to", func() (any, error) {
		return c.syncToRemote(ctx), nil
	})
	return v.(SyncReport)
}

func (c *Coordinator) syncToRemote(ctx context.Context) SyncReport {
	report := newReport()
	if !c.remote.Available(ctx) {
		report.Skipped = true
		return report
	}

	c.fullSync.Lock()
	defer c.fullSync.Unlock()

	repo := c.repo
	c.pushBatch(ctx, &report, remote.Products, docsOf(repo.Products(ctx), func(p domain.Product) string { return p.ID.String() }))
	c.pushBatch(ctx, &report, remote.Orders, docsOf(repo.Orders(ctx), func(o domain.Order) string { return o.ID }))
	c.pushBatch(ctx, &report, remote.Appointments, docsOf(repo.Appointments(ctx), func(a domain.Appointment) string { return a.ID.String() }))

	pushed := 0
	for _, user := range repo.Users(ctx) {
		if user.Email == "" {
			continue
		}
		data, err := toData(user)
		if err == nil {
			rctx, cancel := c.withTimeout(ctx)
			err = c.remote.Set(rctx, remote.Users, remote.UserDocID(user.Email), data, true)
			cancel()
		}
		if err != nil {
			report.Errors[remote.Users] = err.Error()
			continue
		}
		pushed++
	}
	report.Collections[remote.Users] = pushed

	report.At = c.recordSync(ctx)
	c.log.WithFields(logrus.Fields{
		"collections": report.Collections,
		"errors":      len(report.Errors),
	}).Info("synced to remote")
	return report
}

type batch struct {
	docs    []remote.Document
	skipped int
	err     error
}

func docsOf[T any](items []T, key func(T) string) batch {
	var b batch
	for _, item := range items {
		id := key(item)
		if id == "" {
			b.skipped++
			continue
		}
		data, err := toData(item)
		if err != nil {
			b.err = err
			return b
		}
		b.docs = append(b.docs, remote.Document{ID: id, Data: data})
	}
	return b
}

func (c *Coordinator) pushBatch(ctx context.Context, report *SyncReport, collection string, b batch) {
	if b.skipped > 0 {
		c.log.WithFields(logrus.Fields{"collection": collection, "count": b.skipped}).Warn("records without id not pushed")
	}
	if b.err != nil {
		report.Errors[collection] = b.err.Error()
		return
	}
	if len(b.docs) == 0 {
		report.Collections[collection] = 0
		return
	}

	rctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.remote.BatchSet(rctx, collection, b.docs); err != nil {
		report.Errors[collection] = fmt.Errorf("push %s: %w", collection, err).Error()
		return
	}
	report.Collections[collection] = len(b.docs)
}
