package syncer

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote"
)

// toData converts an entity into a remote document body using its JSON form.
func toData(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// fromDocs decodes remote documents. With keyAsID, documents lacking an "id"
// field take the document key, which DocID keeps as a string unless numeric.
func fromDocs[T any](docs []remote.Document, keyAsID bool) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		item, err := fromData[T](doc.ID, doc.Data, keyAsID)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func fromData[T any](key string, data map[string]any, keyAsID bool) (T, error) {
	var item T
	if keyAsID {
		if _, ok := data["id"]; !ok {
			data = maps.Clone(data)
			if data == nil {
				data = map[string]any{}
			}
			data["id"] = key
		}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return item, fmt.Errorf("decode document %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, fmt.Errorf("decode document %s: %w", key, err)
	}
	return item, nil
}
