package firestore

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

// Runs against the Firestore emulator, e.g.
// FIRESTORE_EMULATOR_HOST=localhost:8081 TEST_FIRESTORE_PROJECT=demo-noon go test ./...
func TestFirestoreIntegration(t *testing.T) {
	project := os.Getenv("TEST_FIRESTORE_PROJECT")
	if project == "" || os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("TEST_FIRESTORE_PROJECT and FIRESTORE_EMULATOR_HOST are not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := New(ctx, project, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Ping(ctx))
	require.True(t, s.Available(ctx))

	coll := fmt.Sprintf("itest_%d", time.Now().UnixNano())
	docs := make([]remote.Document, 0, 520)
	for i := 1; i <= 520; i++ {
		docs = append(docs, remote.Document{ID: fmt.Sprint(i), Data: map[string]any{"id": i}})
	}
	require.NoError(t, s.BatchSet(ctx, coll, docs))

	all, err := s.GetAll(ctx, coll)
	require.NoError(t, err)
	assert.Len(t, all, 520)

	require.NoError(t, s.Set(ctx, coll, "1", map[string]any{"name": "x"}, true))
	doc, ok, err := s.Get(ctx, coll, "1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "x", doc.Data["name"])
	assert.EqualValues(t, 1, doc.Data["id"])

	latest, err := s.Latest(ctx, coll, "id", 3)
	require.NoError(t, err)
	require.Len(t, latest, 3)
	assert.Equal(t, "520", latest[0].ID)

	assert.ErrorIs(t, s.Update(ctx, coll, "missing", map[string]any{"a": 1}), remote.ErrNotFound)
	require.NoError(t, s.Delete(ctx, coll, "1"))
	_, ok, err = s.Get(ctx, coll, "1")
	require.NoError(t, err)
	assert.False(t, ok)
}
