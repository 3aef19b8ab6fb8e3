// Package localstore is the primary data store: JSON values under namespaced
// keys on top of a pluggable byte backend.
package localstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/logger"
)

const DefaultNamespace = "noonOpticals"

type Store struct {
	backend   Backend
	namespace string
	log       *logrus.Entry
}

func New(backend Backend, namespace string) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Store{
		backend:   backend,
		namespace: namespace,
		log:       logger.Get("localstore"),
	}
}

func (s *Store) name(key Key) string {
	return s.namespace + "_" + key.name
}

// Get decodes the value stored under key into dst. It reports false when the
// key is absent, unreadable or holds malformed JSON.
func (s *Store) Get(ctx context.Context, key Key, dst any) bool {
	raw, err := s.backend.Read(ctx, s.name(key))
	if errors.Is(err, ErrNotExist) {
		return false
	}
	if err != nil {
		s.log.WithError(err).WithField("key", key.name).Warn("local read failed")
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.WithError(err).WithField("key", key.name).Warn("malformed local value ignored")
		return false
	}
	return true
}

// Has reports whether anything is stored under key, even an empty list.
func (s *Store) Has(ctx context.Context, key Key) bool {
	_, err := s.backend.Read(ctx, s.name(key))
	return err == nil
}

func (s *Store) Set(ctx context.Context, key Key, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.WithError(err).WithField("key", key.name).Error("encode local value")
		return false
	}
	if err := s.backend.Write(ctx, s.name(key), raw); err != nil {
		s.log.WithError(err).WithField("key", key.name).Error("local write failed")
		return false
	}
	return true
}

func (s *Store) Remove(ctx context.Context, key Key) bool {
	if err := s.backend.Delete(ctx, s.name(key)); err != nil && !errors.Is(err, ErrNotExist) {
		s.log.WithError(err).WithField("key", key.name).Error("local delete failed")
		return false
	}
	return true
}
