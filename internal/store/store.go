// Package store is the entity repository: CRUD and derived operations for
// every collection, always against the local store.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/localstore"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/logger"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidEntity     = errors.New("invalid entity")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStorage           = errors.New("local storage write failed")
)

const (
	DefaultActivityLimit     = 50
	DefaultVIPSpendThreshold = 50000
	DefaultVIPOrderThreshold = 10
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Option func(*Repository)

func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithActivityLimit sets how many activity entries are retained.
func WithActivityLimit(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.activityLimit = n
		}
	}
}

// WithVIPThresholds sets the spend and order count that promote a customer.
// A zero order threshold disables promotion by order count.
func WithVIPThresholds(spend int64, orders int) Option {
	return func(r *Repository) {
		if spend > 0 {
			r.vipSpend = spend
		}
		r.vipOrders = orders
	}
}

// Repository serializes every read-modify-write cycle within the process.
// Separate processes sharing one backend can still race on id assignment.
type Repository struct {
	mu            sync.Mutex
	local         *localstore.Store
	validate      *validator.Validate
	now           func() time.Time
	activityLimit int
	vipSpend      int64
	vipOrders     int
	log           *logrus.Entry
}

func New(local *localstore.Store, opts ...Option) *Repository {
	r := &Repository{
		local:         local,
		validate:      validator.New(),
		now:           time.Now,
		activityLimit: DefaultActivityLimit,
		vipSpend:      DefaultVIPSpendThreshold,
		vipOrders:     DefaultVIPOrderThreshold,
		log:           logger.Get("store"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init seeds every collection whose key is absent. Present keys, even empty
// lists, are left alone.
func (r *Repository) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seeds := []struct {
		key   localstore.Key
		value any
	}{
		{localstore.Products, DefaultProducts()},
		{localstore.Orders, DefaultOrders()},
		{localstore.Customers, DefaultCustomers()},
		{localstore.Appointments, DefaultAppointments()},
		{localstore.ActivityLog, []domain.ActivityEntry{}},
		{localstore.Cart(""), []domain.CartLine{}},
		{localstore.Wishlist(""), []domain.DocID{}},
	}
	for _, seed := range seeds {
		if r.local.Has(ctx, seed.key) {
			continue
		}
		if err := r.save(ctx, seed.key, seed.value); err != nil {
			return err
		}
		r.log.WithField("key", seed.key.String()).Info("seeded default data")
	}
	return nil
}

// Reset restores the default catalogue and clears the activity log and the
// global cart and wishlist.
func (r *Repository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	writes := []struct {
		key   localstore.Key
		value any
	}{
		{localstore.Products, DefaultProducts()},
		{localstore.Orders, DefaultOrders()},
		{localstore.Customers, DefaultCustomers()},
		{localstore.Appointments, DefaultAppointments()},
		{localstore.ActivityLog, []domain.ActivityEntry{}},
		{localstore.Cart(""), []domain.CartLine{}},
		{localstore.Wishlist(""), []domain.DocID{}},
	}
	for _, w := range writes {
		if err := r.save(ctx, w.key, w.value); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) save(ctx context.Context, key localstore.Key, value any) error {
	if !r.local.Set(ctx, key, value) {
		return fmt.Errorf("save %s: %w", key, ErrStorage)
	}
	return nil
}

func (r *Repository) check(v any) error {
	if err := r.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}
	return nil
}

func (r *Repository) today() string {
	return r.now().Format("2006-01-02")
}

func (r *Repository) timestamp() time.Time {
	return r.now().UTC()
}

func load[T any](ctx context.Context, local *localstore.Store, key localstore.Key) []T {
	var items []T
	if !local.Get(ctx, key, &items) || items == nil {
		return []T{}
	}
	return items
}

// nextID is one more than the largest numeric id; non-numeric ids are ignored.
func nextID[T any](items []T, id func(T) domain.DocID) domain.DocID {
	var highest int64
	for _, item := range items {
		if n, ok := id(item).Int(); ok && n > highest {
			highest = n
		}
	}
	return domain.IntID(highest + 1)
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}
