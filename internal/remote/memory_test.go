package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetMergeAndUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, Users, "a_at_b_com", map[string]any{"email": "a@b.com", "phone": "1"}, false))
	require.NoError(t, m.Set(ctx, Users, "a_at_b_com", map[string]any{"displayName": "A"}, true))

	doc, ok, err := m.Get(ctx, Users, "a_at_b_com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"email": "a@b.com", "phone": "1", "displayName": "A"}, doc.Data)

	require.NoError(t, m.Set(ctx, Users, "a_at_b_com", map[string]any{"email": "a@b.com"}, false))
	doc, _, _ = m.Get(ctx, Users, "a_at_b_com")
	assert.Equal(t, map[string]any{"email": "a@b.com"}, doc.Data)

	err = m.Update(ctx, Users, "missing", map[string]any{"x": 1})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryNormalizesNumbers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.BatchSet(ctx, Products, []Document{
		{ID: "1", Data: map[string]any{"id": 1, "stock": 4}},
		{ID: "2", Data: map[string]any{"id": 2, "stock": 0}},
	}))

	docs, err := m.GetAll(ctx, Products)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "1", docs[0].ID)
	assert.Equal(t, float64(4), docs[0].Data["stock"])
}

func TestMemoryUnavailable(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.SetAvailable(false)

	assert.False(t, m.Available(ctx))
	_, err := m.GetAll(ctx, Orders)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, m.Set(ctx, Orders, "x", nil, false), ErrUnavailable)

	m.SetAvailable(true)
	assert.NoError(t, m.Set(ctx, Orders, "x", nil, false))
}

func TestMemoryLatest(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, id := range []int{100, 300, 200} {
		_, err := m.Add(ctx, ActivityLog, map[string]any{"id": id})
		require.NoError(t, err)
	}

	docs, err := m.Latest(ctx, ActivityLog, "id", 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, float64(300), docs[0].Data["id"])
	assert.Equal(t, float64(200), docs[1].Data["id"])
}

func TestUserDocID(t *testing.T) {
	assert.Equal(t, "rahul_at_email_com", UserDocID("rahul@email.com"))
	assert.Equal(t, "first_last_at_mail_co_in", UserDocID(" first.last@mail.co.in "))
}

func TestUnavailableAlwaysFails(t *testing.T) {
	ctx := context.Background()
	var s Store = Unavailable{}
	assert.False(t, s.Available(ctx))
	_, err := s.Add(ctx, ActivityLog, map[string]any{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, s.BatchSet(ctx, Products, nil), ErrUnavailable)
}
