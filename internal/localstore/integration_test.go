package localstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBackendIntegration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	backend := NewRedisBackend(addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	t.Cleanup(func() { _ = backend.Close() })
	require.NoError(t, backend.Ping(ctx))

	s := New(backend, "itest")
	t.Cleanup(func() { s.Remove(context.Background(), LastSync) })
	exerciseBackend(t, ctx, s)
}

func TestPostgresBackendIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	backend, err := NewPostgresBackend(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	s := New(backend, "itest")
	t.Cleanup(func() { s.Remove(context.Background(), LastSync) })
	exerciseBackend(t, ctx, s)
}

func exerciseBackend(t *testing.T, ctx context.Context, s *Store) {
	t.Helper()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.True(t, s.Set(ctx, LastSync, now))
	var got time.Time
	require.True(t, s.Get(ctx, LastSync, &got))
	assert.True(t, now.Equal(got))

	later := now.Add(time.Hour)
	require.True(t, s.Set(ctx, LastSync, later))
	require.True(t, s.Get(ctx, LastSync, &got))
	assert.True(t, later.Equal(got))

	require.True(t, s.Remove(ctx, LastSync))
	assert.False(t, s.Has(ctx, LastSync))
}
