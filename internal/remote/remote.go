// Package remote wraps the optional cloud document database that mirrors the
// local store.
package remote

import (
	"context"
	"errors"
	"strings"
)

const (
	Products     = "products"
	Orders       = "orders"
	Customers    = "customers"
	Appointments = "appointments"
	Users        = "users"
	Cart         = "cart"
	Wishlist     = "wishlist"
	ActivityLog  = "activityLog"
	Settings     = "settings"
)

var (
	ErrUnavailable = errors.New("remote store unavailable")
	ErrNotFound    = errors.New("remote document not found")
)

type Document struct {
	ID   string
	Data map[string]any
}

type Store interface {
	// Available is checked before every remote call.
	Available(ctx context.Context) bool
	GetAll(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection string, id string) (Document, bool, error)
	Set(ctx context.Context, collection string, id string, data map[string]any, merge bool) error
	Update(ctx context.Context, collection string, id string, data map[string]any) error
	Delete(ctx context.Context, collection string, id string) error
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	BatchSet(ctx context.Context, collection string, docs []Document) error
	// Latest returns up to limit documents ordered by field, newest first.
	Latest(ctx context.Context, collection string, field string, limit int) ([]Document, error)
}

// UserDocID derives the users document key from an email address.
func UserDocID(email string) string {
	return strings.NewReplacer(".", "_", "@", "_at_").Replace(strings.TrimSpace(email))
}

// Unavailable is the remote used when no document database is configured.
type Unavailable struct{}

func (Unavailable) Available(context.Context) bool { return false }

func (Unavailable) GetAll(context.Context, string) ([]Document, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Get(context.Context, string, string) (Document, bool, error) {
	return Document{}, false, ErrUnavailable
}

func (Unavailable) Set(context.Context, string, string, map[string]any, bool) error {
	return ErrUnavailable
}

func (Unavailable) Update(context.Context, string, string, map[string]any) error {
	return ErrUnavailable
}

func (Unavailable) Delete(context.Context, string, string) error {
	return ErrUnavailable
}

func (Unavailable) Add(context.Context, string, map[string]any) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) BatchSet(context.Context, string, []Document) error {
	return ErrUnavailable
}

func (Unavailable) Latest(context.Context, string, string, int) ([]Document, error) {
	return nil, ErrUnavailable
}
