package helpers

import (
	"context"
	"errors"
	"sync"
)

// ErrStoreDown is the default failure of FailingStore
var ErrStoreDown = errors.New("store is down")

// FailingStore is an in-memory key-value store whose reads and writes can be made to fail
type FailingStore struct {
	mu       sync.Mutex
	data     map[string]string
	failGet  bool
	failSet  bool
	failKeys map[string]bool
	SetCalls int
}

func NewFailingStore() *FailingStore {
	return &FailingStore{data: make(map[string]string), failKeys: make(map[string]bool)}
}

// FailReads makes every Get fail
func (s *FailingStore) FailReads(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet = fail
}

// FailWrites makes every Set fail
func (s *FailingStore) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSet = fail
}

// FailKey makes reads and writes of one key fail
func (s *FailingStore) FailKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failKeys[key] = true
}

func (s *FailingStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failGet || s.failKeys[key] {
		return "", false, ErrStoreDown
	}
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *FailingStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SetCalls++
	if s.failSet || s.failKeys[key] {
		return ErrStoreDown
	}
	s.data[key] = value
	return nil
}

// Put seeds a slot directly, bypassing failure injection
func (s *FailingStore) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Value returns a slot directly, bypassing failure injection
func (s *FailingStore) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	return value, ok
}
