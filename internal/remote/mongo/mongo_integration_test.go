package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote"
)

func TestMongoIntegration(t *testing.T) {
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	s, err := New(ctx, uri, fmt.Sprintf("noon_itest_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close()
	})

	require.NoError(t, s.BatchSet(ctx, remote.Products, []remote.Document{
		{ID: "1", Data: map[string]any{"id": 1, "name": "Neon Vision", "tags": []string{"UV400"}}},
		{ID: "2", Data: map[string]any{"id": 2, "name": "Crystal Clear"}},
	}))

	docs, err := s.GetAll(ctx, remote.Products)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "1", docs[0].ID)
	assert.Equal(t, []any{"UV400"}, docs[0].Data["tags"])

	require.NoError(t, s.Set(ctx, remote.Users, "a_at_b_com", map[string]any{"email": "a@b.com"}, false))
	require.NoError(t, s.Set(ctx, remote.Users, "a_at_b_com", map[string]any{"phone": "9"}, true))
	user, ok, err := s.Get(ctx, remote.Users, "a_at_b_com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", user.Data["email"])
	assert.Equal(t, "9", user.Data["phone"])

	assert.ErrorIs(t, s.Update(ctx, remote.Users, "nobody", map[string]any{"x": 1}), remote.ErrNotFound)

	for _, ms := range []int64{10, 30, 20} {
		_, err := s.Add(ctx, remote.ActivityLog, map[string]any{"id": ms})
		require.NoError(t, err)
	}
	latest, err := s.Latest(ctx, remote.ActivityLog, "id", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.EqualValues(t, 30, latest[0].Data["id"])

	require.NoError(t, s.Delete(ctx, remote.Products, "1"))
	_, ok, err = s.Get(ctx, remote.Products, "1")
	require.NoError(t, err)
	assert.False(t, ok)
}
