package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/store"
)

func newTestRepo() (*Repository, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewRepository(st, 3), st
}

func strPtr(s string) *string { return &s }

func TestOrderRepo_CreatePrependsAndNormalizes(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	_ = repo.Order.Create(ctx, &model.Order{ID: "o1", Datetime: "2026-03-01T08:00:00.000Z"})
	_ = repo.Order.Create(ctx, &model.Order{ID: "o2", CreatedAt: strPtr("2026-03-02T08:00:00.000Z")})

	orders, err := repo.Order.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "o2" {
		t.Fatalf("expected newest first, got %+v", orders)
	}
	if orders[0].Datetime != "2026-03-02T08:00:00.000Z" {
		t.Errorf("datetime must default to created_at, got %q", orders[0].Datetime)
	}
	if orders[0].AssignmentsDetail == nil || orders[0].AssignedEmployeeIDs == nil {
		t.Error("null collections must be defaulted")
	}
}

func TestOrderRepo_RoundTripFieldForField(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	start := "2026-03-01T08:00:00.000Z"
	lat := 55.75
	in := []model.Order{
		{
			ID: "b", ClientName: "Лента", Address: "Мира 1", Datetime: "2026-03-01T08:00:00.000Z",
			RequiredWorkers: 2, Status: model.OrderStatusActive,
			AssignedEmployeeIDs: []string{"w1"},
			OrderServices:       []model.ServiceItem{{ID: "s1", Name: "Грузчики", Quantity: 1, PriceWorker: 400, PriceClient: 520}},
			AssignmentsDetail: map[string]*model.Assignment{
				"w1": {StartTime: "08:00", EndTime: "17:00", Hours: 2.5, Payout: 1000, ActualStart: &start, IsConfirmed: true},
			},
			PaymentStatus: model.PaymentStatusUnpaid, PaymentType: model.PaymentTypeCash, Lat: &lat,
			ClaimedBy: strPtr("d1"),
		},
		{
			ID: "a", ClientName: "Ашан", Datetime: "2026-02-01T08:00:00.000Z", Status: model.OrderStatusCompleted,
			AssignedEmployeeIDs: []string{}, OrderServices: []model.ServiceItem{},
			AssignmentsDetail: map[string]*model.Assignment{}, PaymentStatus: model.PaymentStatusPaid,
		},
	}
	if err := repo.Order.SaveAll(ctx, in); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	out, err := repo.Order.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestOrderRepo_UpdateNotFound(t *testing.T) {
	repo, _ := newTestRepo()

	_, err := repo.Order.Update(context.Background(), "missing", func(*model.Order) error { return nil })
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestOrderRepo_UpdateFnErrorWritesNothing(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()
	_ = repo.Order.Create(ctx, &model.Order{ID: "o1", ClientName: "before"})

	boom := errors.New("boom")
	_, err := repo.Order.Update(ctx, "o1", func(o *model.Order) error {
		o.ClientName = "after"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	o, _ := repo.Order.GetByID(ctx, "o1")
	if o.ClientName != "before" {
		t.Errorf("failed update must not persist, got %q", o.ClientName)
	}
}

func TestEmployeeRepo_CreateSkipsDuplicateID(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	created, _ := repo.Employee.Create(ctx, &model.Employee{ID: "w1", FullName: "A"})
	if !created {
		t.Fatal("first create must succeed")
	}
	created, _ = repo.Employee.Create(ctx, &model.Employee{ID: "w1", FullName: "B"})
	if created {
		t.Error("duplicate ID must be skipped")
	}

	emp, _ := repo.Employee.GetByID(ctx, "w1")
	if emp.FullName != "A" {
		t.Errorf("original must be kept, got %s", emp.FullName)
	}
}

func TestDispatcherRepo_SeedUntilWritten(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	disps, err := repo.Dispatcher.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	ids := make([]string, 0, len(disps))
	for _, d := range disps {
		ids = append(ids, d.ID)
	}
	if !reflect.DeepEqual(ids, []string{"d1", "d3", "d4", "d2"}) {
		t.Errorf("unexpected seed order %v", ids)
	}

	if _, err := repo.Dispatcher.Update(ctx, "d2", func(d *model.Dispatcher) error {
		d.Status = model.DispatcherStatusBreak
		return nil
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	d, _ := repo.Dispatcher.GetByID(ctx, "d2")
	if d.Status != model.DispatcherStatusBreak {
		t.Errorf("update on seeded list must persist, got %s", d.Status)
	}
	all, _ := repo.Dispatcher.List(ctx)
	if len(all) != 4 {
		t.Errorf("seed must be written whole, got %d", len(all))
	}
}

func TestCustomerRepo_DedupeByName(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	_, _ = repo.Customer.Create(ctx, &model.Customer{ID: "c1", Name: "Лента"})
	created, _ := repo.Customer.Create(ctx, &model.Customer{ID: "c2", Name: "Лента"})
	if created {
		t.Error("same name must not be stored twice")
	}
	list, _ := repo.Customer.List(ctx)
	if len(list) != 1 {
		t.Errorf("expected 1 customer, got %d", len(list))
	}
}

func TestLogRepo_PrependsAndCaps(t *testing.T) {
	repo, _ := newTestRepo() // cap 3
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_ = repo.Log.Add(ctx, &model.LogEntry{ID: fmt.Sprintf("l%d", i)})
	}

	logs, _ := repo.Log.List(ctx)
	if len(logs) != 3 {
		t.Fatalf("expected cap 3, got %d", len(logs))
	}
	if logs[0].ID != "l5" || logs[2].ID != "l3" {
		t.Errorf("expected newest first [l5 l4 l3], got %v", logs)
	}
}

func TestChatRepo_MarkRead(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	_ = repo.Chat.Append(ctx, &model.ChatMessage{ID: "m1", SenderID: "w1", RecipientID: "d1"})
	_ = repo.Chat.Append(ctx, &model.ChatMessage{ID: "m2", SenderID: "d1", RecipientID: "w1"})
	_ = repo.Chat.Append(ctx, &model.ChatMessage{ID: "m3", SenderID: "w1", RecipientID: "d1"})

	n, err := repo.Chat.MarkRead(ctx, "w1", "d1")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 marked, got n=%d err=%v", n, err)
	}
	msgs, _ := repo.Chat.List(ctx)
	if msgs[1].IsRead {
		t.Error("reverse direction must stay unread")
	}
}

func TestRepository_AtomicRollsBackAllCollections(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()
	_ = repo.Order.Create(ctx, &model.Order{ID: "o1"})
	_, _ = repo.Employee.Create(ctx, &model.Employee{ID: "w1"})

	boom := errors.New("boom")
	err := repo.Atomic(ctx, func(tx *Repository) error {
		if _, err := tx.Order.Update(ctx, "o1", func(o *model.Order) error {
			o.Status = model.OrderStatusCompleted
			return nil
		}); err != nil {
			return err
		}
		if _, err := tx.Employee.Update(ctx, "w1", func(e *model.Employee) error {
			e.BalanceOwed = 100
			return nil
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	o, _ := repo.Order.GetByID(ctx, "o1")
	e, _ := repo.Employee.GetByID(ctx, "w1")
	if o.Status == model.OrderStatusCompleted || e.BalanceOwed != 0 {
		t.Errorf("both writes must roll back: status=%s owed=%v", o.Status, e.BalanceOwed)
	}
}

func TestOfflineLocationRepo_AppendAndClear(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	_ = repo.OfflineLocation.Append(ctx, &model.OfflineLocation{WorkerID: "w1", Lat: 1, Lng: 2, Timestamp: "t1"})
	_ = repo.OfflineLocation.Append(ctx, &model.OfflineLocation{WorkerID: "w1", Lat: 3, Lng: 4, Timestamp: "t2"})
	locs, _ := repo.OfflineLocation.List(ctx)
	if len(locs) != 2 || locs[1].Lat != 3 {
		t.Fatalf("unexpected buffer %+v", locs)
	}

	_ = repo.OfflineLocation.Clear(ctx)
	locs, _ = repo.OfflineLocation.List(ctx)
	if len(locs) != 0 {
		t.Errorf("buffer must be empty after Clear, got %d", len(locs))
	}
}

// countingBackend counts the store units opened against it.
type countingBackend struct {
	*store.MemoryStore
	units int
}

func (b *countingBackend) Atomic(ctx context.Context, fn func(store.Store) error) error {
	b.units++
	return b.MemoryStore.Atomic(ctx, fn)
}

func TestRepository_StandaloneWritesRunAsUnits(t *testing.T) {
	backend := &countingBackend{MemoryStore: store.NewMemoryStore()}
	repo := NewRepository(backend, 3)
	ctx := context.Background()

	_ = repo.Order.Create(ctx, &model.Order{ID: "o1"})
	_, _ = repo.Order.Update(ctx, "o1", func(o *model.Order) error { o.Address = "ул. Мира 1"; return nil })
	_ = repo.Log.Add(ctx, &model.LogEntry{ID: "l1"})
	_, _ = repo.Chat.MarkRead(ctx, "w1", "d1")
	if backend.units != 4 {
		t.Fatalf("expected one unit per write, got %d", backend.units)
	}

	_, _ = repo.Order.List(ctx)
	if backend.units != 4 {
		t.Errorf("reads must not open units, got %d", backend.units)
	}

	err := repo.Atomic(ctx, func(tx *Repository) error {
		if _, err := tx.Order.Update(ctx, "o1", func(o *model.Order) error { o.Address = "пр. Ленина 5"; return nil }); err != nil {
			return err
		}
		return tx.Log.Add(ctx, &model.LogEntry{ID: "l2"})
	})
	if err != nil {
		t.Fatal(err)
	}
	if backend.units != 5 {
		t.Errorf("writes inside Atomic must share its unit, got %d units", backend.units)
	}
}
