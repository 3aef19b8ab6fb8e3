package remote

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process document database. It backs development runs and
// tests; availability can be toggled to simulate going offline.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	available   bool
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]map[string]any),
		available:   true,
	}
}

func (m *Memory) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
}

func (m *Memory) Available(context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available
}

func (m *Memory) GetAll(_ context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.available {
		return nil, ErrUnavailable
	}

	docs := make([]Document, 0, len(m.collections[collection]))
	for _, id := range slices.Sorted(maps.Keys(m.collections[collection])) {
		docs = append(docs, Document{ID: id, Data: clone(m.collections[collection][id])})
	}
	return docs, nil
}

func (m *Memory) Get(_ context.Context, collection string, id string) (Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.available {
		return Document{}, false, ErrUnavailable
	}

	data, ok := m.collections[collection][id]
	if !ok {
		return Document{}, false, nil
	}
	return Document{ID: id, Data: clone(data)}, true, nil
}

func (m *Memory) Set(_ context.Context, collection string, id string, data map[string]any, merge bool) error {
	normalized, err := normalize(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return ErrUnavailable
	}

	docs := m.collection(collection)
	if existing, ok := docs[id]; ok && merge {
		maps.Copy(existing, normalized)
		return nil
	}
	docs[id] = normalized
	return nil
}

func (m *Memory) Update(_ context.Context, collection string, id string, data map[string]any) error {
	normalized, err := normalize(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return ErrUnavailable
	}

	existing, ok := m.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	maps.Copy(existing, normalized)
	return nil
}

func (m *Memory) Delete(_ context.Context, collection string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return ErrUnavailable
	}
	delete(m.collections[collection], id)
	return nil
}

func (m *Memory) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := m.Set(ctx, collection, id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) BatchSet(_ context.Context, collection string, docs []Document) error {
	prepared := make(map[string]map[string]any, len(docs))
	for _, doc := range docs {
		normalized, err := normalize(doc.Data)
		if err != nil {
			return err
		}
		prepared[doc.ID] = normalized
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return ErrUnavailable
	}
	maps.Copy(m.collection(collection), prepared)
	return nil
}

func (m *Memory) Latest(_ context.Context, collection string, field string, limit int) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.available {
		return nil, ErrUnavailable
	}

	docs := make([]Document, 0, len(m.collections[collection]))
	for id, data := range m.collections[collection] {
		docs = append(docs, Document{ID: id, Data: clone(data)})
	}
	slices.SortFunc(docs, func(a, b Document) int {
		return compareField(b.Data[field], a.Data[field])
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (m *Memory) collection(name string) map[string]map[string]any {
	docs, ok := m.collections[name]
	if !ok {
		docs = make(map[string]map[string]any)
		m.collections[name] = docs
	}
	return docs
}

// normalize round-trips through JSON so stored documents look like what a
// real document database hands back (numbers as float64, nested maps).
func normalize(data map[string]any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

func clone(data map[string]any) map[string]any {
	out, err := normalize(data)
	if err != nil {
		return maps.Clone(data)
	}
	return out
}

func compareField(a, b any) int {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
