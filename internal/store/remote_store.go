package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// BlobClient is the subset of pkg/redis.Client the remote store needs.
type BlobClient interface {
	GetBlob(ctx context.Context, key string) ([]byte, bool, error)
	SetBlob(ctx context.Context, key string, val []byte, ttl time.Duration) error
	DelBlob(ctx context.Context, keys ...string) error
}

const remotePrefix = "collection:"

// RemoteStore mirrors collections into Redis with a TTL.
type RemoteStore struct {
	client BlobClient
	ttl    time.Duration
}

// NewRemoteStore creates a RemoteStore; ttl 0 keeps keys forever.
func NewRemoteStore(client BlobClient, ttl time.Duration) *RemoteStore {
	return &RemoteStore{client: client, ttl: ttl}
}

func (s *RemoteStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	raw, found, err := s.client.GetBlob(ctx, remotePrefix+key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode remote %s: %w", key, err)
	}
	return true, nil
}

func (s *RemoteStore) Save(ctx context.Context, key string, v any) error {
	if key == "" {
		return ErrEmptyKey
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.client.SetBlob(ctx, remotePrefix+key, raw, s.ttl)
}

// Invalidate drops the mirrored copies of keys.
func (s *RemoteStore) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = remotePrefix + k
	}
	return s.client.DelBlob(ctx, prefixed...)
}
