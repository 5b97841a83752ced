// Package inmemstore keeps secrets in process memory (tests and STORE=memory).
package inmemstore

import (
	"context"
	"sync"

	"github.com/potencialize/dashboard/core/auth"
)

type Store struct {
	mutex sync.RWMutex
	table map[string]string
}

var _ auth.SecretStore = (*Store)(nil)

func New() *Store {
	return &Store{table: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if val, ok := s.table[key]; ok {
		return val, nil
	}
	return "", auth.ErrSecretNotFound
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.table[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.table[key]; !ok {
		return auth.ErrSecretNotFound
	}
	delete(s.table, key)
	return nil
}

func (s *Store) Close() error { return nil }
