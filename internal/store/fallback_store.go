package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FallbackStore reads through a remote mirror and falls back to the local
// backend whenever the remote misses or fails. Remote failures are logged,
// never returned. Local failures are always returned.
type FallbackStore struct {
	local   Backend
	remote  *RemoteStore // may be nil
	timeout time.Duration
	logger  *zap.Logger
}

// NewFallbackStore creates a FallbackStore. remote may be nil.
func NewFallbackStore(local Backend, remote *RemoteStore, timeout time.Duration, logger *zap.Logger) *FallbackStore {
	return &FallbackStore{local: local, remote: remote, timeout: timeout, logger: logger}
}

func (s *FallbackStore) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *FallbackStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	if s.remote != nil {
		rctx, cancel := s.remoteCtx(ctx)
		found, err := s.remote.Load(rctx, key, dst)
		cancel()
		switch {
		case err != nil:
			s.logger.Warn("remote load failed, using local copy", zap.String("key", key), zap.Error(err))
		case found:
			return true, nil
		}
	}

	found, err := s.local.Load(ctx, key, dst)
	if err != nil || !found {
		return found, err
	}

	if s.remote != nil {
		rctx, cancel := s.remoteCtx(ctx)
		if err := s.remote.Save(rctx, key, dst); err != nil {
			s.logger.Debug("remote repopulate failed", zap.String("key", key), zap.Error(err))
		}
		cancel()
	}
	return true, nil
}

func (s *FallbackStore) Save(ctx context.Context, key string, v any) error {
	if err := s.local.Save(ctx, key, v); err != nil {
		return err
	}
	if s.remote != nil {
		rctx, cancel := s.remoteCtx(ctx)
		if err := s.remote.Save(rctx, key, v); err != nil {
			s.logger.Warn("remote mirror failed", zap.String("key", key), zap.Error(err))
		}
		cancel()
	}
	return nil
}

// Atomic runs fn against the local backend only. Keys written by fn are
// dropped from the mirror once the unit commits.
func (s *FallbackStore) Atomic(ctx context.Context, fn func(Store) error) error {
	var touched []string
	err := s.local.Atomic(ctx, func(tx Store) error {
		return fn(&trackingStore{Store: tx, touched: &touched})
	})
	if err != nil {
		return err
	}

	if s.remote != nil && len(touched) > 0 {
		rctx, cancel := s.remoteCtx(ctx)
		if err := s.remote.Invalidate(rctx, touched...); err != nil {
			s.logger.Warn("remote invalidate failed", zap.Strings("keys", touched), zap.Error(err))
		}
		cancel()
	}
	return nil
}

type trackingStore struct {
	Store
	touched *[]string
}

func (t *trackingStore) Save(ctx context.Context, key string, v any) error {
	if err := t.Store.Save(ctx, key, v); err != nil {
		return err
	}
	for _, k := range *t.touched {
		if k == key {
			return nil
		}
	}
	*t.touched = append(*t.touched, key)
	return nil
}
