// Package firestore implements the remote store on Cloud Firestore through
// the Firebase Admin SDK.
package firestore

import (
	"context"
	"fmt"
	"sync/atomic"

	gcfirestore "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote"
)

// maxBatchWrites is the Firestore limit on operations per batch commit.
const maxBatchWrites = 500

var _ remote.Store = (*Store)(nil)

type Store struct {
	client *gcfirestore.Client
	closed atomic.Bool
}

// New connects to the project. credentialsPath may be empty when application
// default credentials are available (or FIRESTORE_EMULATOR_HOST is set).
func New(ctx context.Context, projectID string, credentialsPath string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

// Ping reads a settings document to prove the credentials work.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Collection(remote.Settings).Doc("ping").Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return err
	}
	return nil
}

func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.client.Close()
}

func (s *Store) Available(context.Context) bool {
	return s.client != nil && !s.closed.Load()
}

func (s *Store) GetAll(ctx context.Context, collection string) ([]remote.Document, error) {
	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return toDocuments(snaps), nil
}

func (s *Store) Get(ctx context.Context, collection string, id string) (remote.Document, bool, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return remote.Document{}, false, nil
	}
	if err != nil {
		return remote.Document{}, false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return remote.Document{ID: snap.Ref.ID, Data: snap.Data()}, true, nil
}

func (s *Store) Set(ctx context.Context, collection string, id string, data map[string]any, merge bool) error {
	ref := s.client.Collection(collection).Doc(id)
	var err error
	if merge {
		_, err = ref.Set(ctx, data, gcfirestore.MergeAll)
	} else {
		_, err = ref.Set(ctx, data)
	}
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection string, id string, data map[string]any) error {
	updates := make([]gcfirestore.Update, 0, len(data))
	for field, value := range data {
		updates = append(updates, gcfirestore.Update{Path: field, Value: value})
	}
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("update %s/%s: %w", collection, id, remote.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection string, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("add %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *Store) BatchSet(ctx context.Context, collection string, docs []remote.Document) error {
	coll := s.client.Collection(collection)
	for start := 0; start < len(docs); start += maxBatchWrites {
		end := min(start+maxBatchWrites, len(docs))
		batch := s.client.Batch()
		for _, doc := range docs[start:end] {
			batch.Set(coll.Doc(doc.ID), doc.Data)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("batch %s [%d:%d]: %w", collection, start, end, err)
		}
	}
	return nil
}

func (s *Store) Latest(ctx context.Context, collection string, field string, limit int) ([]remote.Document, error) {
	query := s.client.Collection(collection).OrderBy(field, gcfirestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return toDocuments(snaps), nil
}

func toDocuments(snaps []*gcfirestore.DocumentSnapshot) []remote.Document {
	docs := make([]remote.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, remote.Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs
}
