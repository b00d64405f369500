package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

// ── fake blob client ──

type fakeBlobs struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	delErr  error
	gets    int
	deleted []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{data: make(map[string][]byte)}
}

func (f *fakeBlobs) GetBlob(_ context.Context, key string) ([]byte, bool, error) {
	f.gets++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	b, ok := f.data[key]
	return b, ok, nil
}

func (f *fakeBlobs) SetBlob(_ context.Context, key string, val []byte, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = val
	return nil
}

func (f *fakeBlobs) DelBlob(_ context.Context, keys ...string) error {
	if f.delErr != nil {
		return f.delErr
	}
	for _, k := range keys {
		delete(f.data, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}

// failingBackend fails every local operation.
type failingBackend struct{ err error }

func (b failingBackend) Load(context.Context, string, any) (bool, error) { return false, b.err }
func (b failingBackend) Save(context.Context, string, any) error         { return b.err }
func (b failingBackend) Atomic(context.Context, func(Store) error) error {
	return b.err
}

func newFallback(local Backend, blobs *fakeBlobs) *FallbackStore {
	return NewFallbackStore(local, NewRemoteStore(blobs, time.Minute), 50*time.Millisecond, zap.NewNop())
}

func TestFallbackStore_RemoteHit(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.data["collection:orders"] = []byte(`[{"id":"remote"}]`)
	local := NewMemoryStore()
	_ = local.Save(context.Background(), KeyOrders, []item{{ID: "local"}})

	s := newFallback(local, blobs)
	var got []item
	found, err := s.Load(context.Background(), KeyOrders, &got)
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if got[0].ID != "remote" {
		t.Errorf("expected remote copy, got %s", got[0].ID)
	}
}

func TestFallbackStore_RemoteErrorFallsBackSilently(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.getErr = errors.New("connection refused")
	local := NewMemoryStore()
	_ = local.Save(context.Background(), KeyOrders, []item{{ID: "local"}})

	s := newFallback(local, blobs)
	var got []item
	found, err := s.Load(context.Background(), KeyOrders, &got)
	if err != nil {
		t.Fatalf("remote failure must not surface, got %v", err)
	}
	if !found || got[0].ID != "local" {
		t.Errorf("expected local copy, got found=%v %+v", found, got)
	}
}

func TestFallbackStore_MissRepopulatesRemote(t *testing.T) {
	blobs := newFakeBlobs()
	local := NewMemoryStore()
	_ = local.Save(context.Background(), KeyEmployees, []item{{ID: "w1"}})

	s := newFallback(local, blobs)
	var got []item
	if _, err := s.Load(context.Background(), KeyEmployees, &got); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := blobs.data["collection:employees"]; !ok {
		t.Error("remote must be repopulated after a local read")
	}
}

func TestFallbackStore_NilRemote(t *testing.T) {
	local := NewMemoryStore()
	s := NewFallbackStore(local, nil, 0, zap.NewNop())
	ctx := context.Background()

	if err := s.Save(ctx, "k", []int{1}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	var got []int
	found, err := s.Load(ctx, "k", &got)
	if err != nil || !found || got[0] != 1 {
		t.Errorf("unexpected load: found=%v err=%v got=%v", found, err, got)
	}
}

func TestFallbackStore_SaveSurfacesLocalError(t *testing.T) {
	boom := errors.New("disk full")
	s := newFallback(failingBackend{err: boom}, newFakeBlobs())

	if err := s.Save(context.Background(), "k", 1); !errors.Is(err, boom) {
		t.Errorf("local error must surface, got %v", err)
	}
}

func TestFallbackStore_SaveSwallowsRemoteError(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.setErr = errors.New("timeout")
	s := newFallback(NewMemoryStore(), blobs)

	if err := s.Save(context.Background(), "k", []int{1}); err != nil {
		t.Errorf("remote error must be swallowed, got %v", err)
	}
}

func TestFallbackStore_AtomicInvalidatesTouchedKeys(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.data["collection:orders"] = []byte(`[]`)
	blobs.data["collection:employees"] = []byte(`[]`)
	blobs.data["collection:logs"] = []byte(`[]`)
	s := newFallback(NewMemoryStore(), blobs)
	ctx := context.Background()

	err := s.Atomic(ctx, func(tx Store) error {
		_ = tx.Save(ctx, KeyOrders, []item{{ID: "o"}})
		_ = tx.Save(ctx, KeyOrders, []item{{ID: "o2"}})
		return tx.Save(ctx, KeyEmployees, []item{{ID: "e"}})
	})
	if err != nil {
		t.Fatalf("Atomic failed: %v", err)
	}

	if len(blobs.deleted) != 2 {
		t.Errorf("expected 2 invalidated keys, got %v", blobs.deleted)
	}
	if _, ok := blobs.data["collection:logs"]; !ok {
		t.Error("untouched key must stay mirrored")
	}

	var got []item
	_, _ = s.Load(ctx, KeyOrders, &got)
	if len(got) != 1 || got[0].ID != "o2" {
		t.Errorf("expected committed orders after invalidation, got %+v", got)
	}
}

func TestFallbackStore_AtomicRollbackKeepsMirror(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.data["collection:orders"] = []byte(`[{"id":"old"}]`)
	s := newFallback(NewMemoryStore(), blobs)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx Store) error {
		_ = tx.Save(ctx, KeyOrders, []item{{ID: "new"}})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(blobs.deleted) != 0 {
		t.Errorf("rolled back unit must not invalidate, got %v", blobs.deleted)
	}
}
