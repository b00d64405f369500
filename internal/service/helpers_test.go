package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"dispetcher/backend/config"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
	"dispetcher/backend/internal/store"
	"dispetcher/backend/pkg/notify"
)

// ── fixtures ──

func testBusinessConfig() *config.BusinessConfig {
	return &config.BusinessConfig{
		DefaultWorkerRate: 400,
		DefaultClientRate: 520,
		MinClientRate:     450,
		ConflictWindow:    4 * time.Hour,
		PlannedStart:      "08:00",
		PlannedEnd:        "17:00",
		Timezone:          "Europe/Moscow",
		LogLimit:          500,
		PollingInterval:   5 * time.Second,
	}
}

func newTestRepo() *repository.Repository {
	return repository.NewRepository(store.NewMemoryStore(), 0)
}

// fakeClock is advanced by hand.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, n notify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return f.err
}

func (f *fakeNotifier) Close() error { return nil }

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// ── seeding ──

func seedOrder(t *testing.T, repo *repository.Repository, o model.Order) {
	t.Helper()
	if err := repo.Order.Create(context.Background(), &o); err != nil {
		t.Fatalf("seed order %s: %v", o.ID, err)
	}
}

func seedEmployee(t *testing.T, repo *repository.Repository, e model.Employee) {
	t.Helper()
	if _, err := repo.Employee.Create(context.Background(), &e); err != nil {
		t.Fatalf("seed employee %s: %v", e.ID, err)
	}
}

func mustOrder(t *testing.T, repo *repository.Repository, id string) *model.Order {
	t.Helper()
	o, err := repo.Order.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load order %s: %v", id, err)
	}
	return o
}

func mustEmployee(t *testing.T, repo *repository.Repository, id string) *model.Employee {
	t.Helper()
	e, err := repo.Employee.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load employee %s: %v", id, err)
	}
	return e
}

// assertSkipped checks a no-op result carries the expected cause.
func assertSkipped(t *testing.T, res Result, cause error) {
	t.Helper()
	if res.Applied {
		t.Fatalf("expected skipped result, got applied")
	}
	if !errors.Is(res.Reason, ErrPreconditionNotMet) {
		t.Errorf("reason must wrap ErrPreconditionNotMet, got %v", res.Reason)
	}
	if !errors.Is(res.Reason, cause) {
		t.Errorf("reason must wrap %v, got %v", cause, res.Reason)
	}
}

func nopLogger() *zap.Logger { return zap.NewNop() }

func f64(v float64) *float64 { return &v }
