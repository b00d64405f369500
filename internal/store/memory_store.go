package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	pkgerrors "dispetcher/backend/pkg/errors"
)

type memEntry struct {
	payload []byte
	version int
}

// MemoryStore is a map-backed Backend. Values are JSON round-tripped so
// callers never share memory with the store.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]memEntry

	// txMu serializes Atomic units.
	txMu sync.Mutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]memEntry)}
}

func (s *MemoryStore) Load(_ context.Context, key string, dst any) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	s.mu.Lock()
	e, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.payload, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, v any) error {
	if key == "" {
		return ErrEmptyKey
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.mu.Lock()
	s.put(key, payload)
	s.mu.Unlock()
	return nil
}

// put requires s.mu.
func (s *MemoryStore) put(key string, payload []byte) {
	e := s.data[key]
	s.data[key] = memEntry{payload: payload, version: e.version + 1}
}

// Atomic buffers every Save made by fn and applies them together only when
// fn returns nil. A key read by fn and rewritten by a plain Save before the
// commit fails the whole unit with ErrOptimisticLock.
func (s *MemoryStore) Atomic(ctx context.Context, fn func(Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memTx{parent: s, writes: make(map[string][]byte), seen: make(map[string]int)}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range tx.writes {
		if v, ok := tx.seen[key]; ok && s.data[key].version != v {
			return pkgerrors.ErrOptimisticLock
		}
	}
	for key, payload := range tx.writes {
		s.put(key, payload)
	}
	return nil
}

// memTx overlays pending writes on the parent store.
type memTx struct {
	parent *MemoryStore
	writes map[string][]byte
	// seen is the committed revision of each key at its first read
	seen map[string]int
}

func (t *memTx) Load(ctx context.Context, key string, dst any) (bool, error) {
	if payload, ok := t.writes[key]; ok {
		if err := json.Unmarshal(payload, dst); err != nil {
			return false, fmt.Errorf("decode %s: %w", key, err)
		}
		return true, nil
	}
	if key == "" {
		return false, ErrEmptyKey
	}

	t.parent.mu.Lock()
	e, ok := t.parent.data[key]
	t.parent.mu.Unlock()
	if _, read := t.seen[key]; !read {
		t.seen[key] = e.version
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.payload, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (t *memTx) Save(_ context.Context, key string, v any) error {
	if key == "" {
		return ErrEmptyKey
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	t.writes[key] = payload
	return nil
}
