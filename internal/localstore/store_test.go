package localstore

import (
	"context"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend(0), "")

	var missing []item
	assert.False(t, s.Get(ctx, Products, &missing))
	assert.False(t, s.Has(ctx, Products))

	require.True(t, s.Set(ctx, Products, []item{{ID: 1, Name: "Neon Vision"}}))
	var got []item
	require.True(t, s.Get(ctx, Products, &got))
	assert.Equal(t, []item{{ID: 1, Name: "Neon Vision"}}, got)

	require.True(t, s.Remove(ctx, Products))
	assert.False(t, s.Has(ctx, Products))
	assert.True(t, s.Remove(ctx, Products))
}

func TestEmptyListCountsAsPresent(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend(0), "")

	require.True(t, s.Set(ctx, Orders, []item{}))
	assert.True(t, s.Has(ctx, Orders))
}

func TestMalformedValueIsTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend(0)
	s := New(backend, "shop")
	require.NoError(t, backend.Write(ctx, "shop_products", []byte("{not json")))

	var got []item
	assert.False(t, s.Get(ctx, Products, &got))
	assert.Nil(t, got)
}

func TestQuotaExhaustionReturnsFalse(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend(32), "")

	assert.True(t, s.Set(ctx, Cart(""), []item{{ID: 1}}))
	big := make([]item, 20)
	assert.False(t, s.Set(ctx, Products, big))
	assert.False(t, s.Has(ctx, Products))

	var cart []item
	require.True(t, s.Get(ctx, Cart(""), &cart))
	assert.Len(t, cart, 1)
}

func TestNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend(0)
	admin := New(backend, "admin")
	site := New(backend, "site")

	require.True(t, admin.Set(ctx, Products, []item{{ID: 9}}))
	assert.False(t, site.Has(ctx, Products))
	assert.Contains(t, backend.Snapshot(), "admin_products")
}

func TestScopedKeys(t *testing.T) {
	assert.Equal(t, "cart", Cart("").String())
	assert.Equal(t, "cart_u-1", Cart("u-1").String())
	assert.Equal(t, "wishlist", Wishlist("  ").String())
	assert.Equal(t, "wishlist_abc", Wishlist("abc").String())
}

func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	backend, err := NewFileBackend(fsys, "/data")
	require.NoError(t, err)
	s := New(backend, "")

	require.True(t, s.Set(ctx, Wishlist("u/1"), []int{3, 5}))
	var got []int
	require.True(t, s.Get(ctx, Wishlist("u/1"), &got))
	assert.Equal(t, []int{3, 5}, got)

	exists, err := afero.Exists(fsys, "/data/noonOpticals_wishlist_u_1.json")
	require.NoError(t, err)
	assert.True(t, exists)

	require.True(t, s.Remove(ctx, Wishlist("u/1")))
	assert.False(t, s.Has(ctx, Wishlist("u/1")))
	assert.True(t, s.Remove(ctx, Wishlist("u/1")))
}
