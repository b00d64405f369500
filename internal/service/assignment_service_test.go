package service

import (
	"context"
	"errors"
	"testing"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
)

func newAssignmentFixture(t *testing.T) (AssignmentService, *repository.Repository, *fakeNotifier) {
	t.Helper()
	repo := newTestRepo()
	n := &fakeNotifier{}
	svc := NewAssignmentService(testBusinessConfig(), repo, n, nopLogger(), newFakeClock().Now)
	return svc, repo, n
}

// Datetimes are UTC; the business timezone is Moscow (UTC+3).
func testOrder(id, datetime string, workers ...string) model.Order {
	o := model.Order{
		ID:                  id,
		ClientName:          "Лента",
		Address:             "ул. Мира 1",
		Datetime:            datetime,
		RequiredWorkers:     2,
		Status:              model.OrderStatusActive,
		AssignedEmployeeIDs: workers,
		AssignmentsDetail:   map[string]*model.Assignment{},
		PaymentStatus:       model.PaymentStatusUnpaid,
	}
	for _, w := range workers {
		o.AssignmentsDetail[w] = &model.Assignment{StartTime: "08:00", EndTime: "17:00"}
	}
	return o
}

// ── ClaimOrder ──

func TestClaimOrder_Overwrites(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)
	ctx := context.Background()
	seedOrder(t, repo, testOrder("o1", "2026-03-10T06:00:00.000Z"))

	for _, d := range []string{"d1", "d2"} {
		res, err := svc.ClaimOrder(ctx, "o1", d)
		if err != nil || !res.Applied {
			t.Fatalf("ClaimOrder(%s) = %+v, %v", d, res, err)
		}
	}
	if got := mustOrder(t, repo, "o1").ClaimedBy; got == nil || *got != "d2" {
		t.Errorf("claimed_by = %v, want d2", got)
	}
}

func TestClaimOrder_MissingOrder(t *testing.T) {
	svc, _, _ := newAssignmentFixture(t)

	res, err := svc.ClaimOrder(context.Background(), "nope", "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSkipped(t, res, ErrOrderNotFound)
}

// ── ClaimOrderWorker ──

func TestClaimOrderWorker_AddsUnconfirmedDetail(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)
	seedOrder(t, repo, testOrder("o1", "2026-03-10T06:00:00.000Z"))

	res, err := svc.ClaimOrderWorker(context.Background(), "o1", "w1")
	if err != nil || !res.Applied {
		t.Fatalf("ClaimOrderWorker = %+v, %v", res, err)
	}

	o := mustOrder(t, repo, "o1")
	if !o.HasWorker("w1") {
		t.Fatal("worker not appended")
	}
	d := o.AssignmentsDetail["w1"]
	if d == nil || d.StartTime != "08:00" || d.EndTime != "17:00" || d.Hours != 0 || d.Payout != 0 || d.IsConfirmed {
		t.Errorf("unexpected detail %+v", d)
	}
	if o.ConfirmedWorkersCount != 0 {
		t.Errorf("confirmed count = %d, want 0", o.ConfirmedWorkersCount)
	}
}

func TestClaimOrderWorker_AlreadyAssigned(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)
	seedOrder(t, repo, testOrder("o1", "2026-03-10T06:00:00.000Z", "w1"))

	res, err := svc.ClaimOrderWorker(context.Background(), "o1", "w1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSkipped(t, res, ErrAlreadyAssigned)
	if n := len(mustOrder(t, repo, "o1").AssignedEmployeeIDs); n != 1 {
		t.Errorf("assigned ids = %d, want 1", n)
	}
}

func TestClaimOrderWorker_ConflictWithinWindow(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)
	// 09:00 and 11:00 Moscow time
	seedOrder(t, repo, testOrder("busy", "2026-03-10T06:00:00.000Z", "w1"))
	seedOrder(t, repo, testOrder("o2", "2026-03-10T08:00:00.000Z"))

	_, err := svc.ClaimOrderWorker(context.Background(), "o2", "w1")
	if !errors.Is(err, ErrConflictTime) {
		t.Fatalf("expected ErrConflictTime, got %v", err)
	}
	var ce *ConflictError
	if !errors.As(err, &ce) || ce.ConflictingOrderID != "busy" || ce.Kind() != KindConflictTime {
		t.Errorf("unexpected conflict error %#v", err)
	}
	if o := mustOrder(t, repo, "o2"); o.HasWorker("w1") || len(o.AssignmentsDetail) != 0 {
		t.Error("conflicting claim must not mutate the order")
	}
}

func TestClaimOrderWorker_NoConflict(t *testing.T) {
	tests := []struct {
		name   string
		busyAt string
		nextAt string
	}{
		{"gap wider than window", "2026-03-10T06:00:00.000Z", "2026-03-10T11:00:00.000Z"},
		{"different dates", "2026-03-10T06:00:00.000Z", "2026-03-11T07:00:00.000Z"},
		// 22:30 and 01:00 local: same UTC date, different local days
		{"local midnight between", "2026-03-10T19:30:00.000Z", "2026-03-10T22:00:00.000Z"},
		{"unparseable datetime", "garbage", "2026-03-10T06:30:00.000Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newAssignmentFixture(t)
			seedOrder(t, repo, testOrder("busy", tt.busyAt, "w1"))
			seedOrder(t, repo, testOrder("o2", tt.nextAt))

			res, err := svc.ClaimOrderWorker(context.Background(), "o2", "w1")
			if err != nil || !res.Applied {
				t.Fatalf("ClaimOrderWorker = %+v, %v", res, err)
			}
		})
	}
}

func TestClaimOrderWorker_ConflictZonelessDatetimes(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)
	// the order form stores local wall time without a zone
	seedOrder(t, repo, testOrder("busy", "2026-03-10T10:00:00", "w1"))
	seedOrder(t, repo, testOrder("o2", "2026-03-10T11:00"))

	_, err := svc.ClaimOrderWorker(context.Background(), "o2", "w1")
	var ce *ConflictError
	if !errors.As(err, &ce) || ce.ConflictingOrderID != "busy" {
		t.Fatalf("expected conflict with busy, got %v", err)
	}
}

func TestClaimOrderWorker_ZonelessMixedWithUTC(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)
	// 23:30 Moscow stored as local wall time, 00:30 next day stored in UTC
	seedOrder(t, repo, testOrder("busy", "2026-03-10T23:30:00", "w1"))
	seedOrder(t, repo, testOrder("o2", "2026-03-10T21:30:00.000Z"))

	res, err := svc.ClaimOrderWorker(context.Background(), "o2", "w1")
	if err != nil || !res.Applied {
		t.Fatalf("orders on different local days must not conflict, got %+v, %v", res, err)
	}
}

func TestClaimOrderWorker_ExactWindowIsNotConflict(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)
	seedOrder(t, repo, testOrder("busy", "2026-03-10T06:00:00.000Z", "w1"))
	seedOrder(t, repo, testOrder("o2", "2026-03-10T10:00:00.000Z"))

	if _, err := svc.ClaimOrderWorker(context.Background(), "o2", "w1"); err != nil {
		t.Fatalf("a gap equal to the window must be allowed, got %v", err)
	}
}

// ── AssignWorkerToOrder ──

func TestAssignWorkerToOrder_Notifies(t *testing.T) {
	svc, repo, n := newAssignmentFixture(t)
	seedOrder(t, repo, testOrder("o1", "2026-03-10T06:00:00.000Z"))

	res, err := svc.AssignWorkerToOrder(context.Background(), "o1", "w1")
	if err != nil || !res.Applied {
		t.Fatalf("AssignWorkerToOrder = %+v, %v", res, err)
	}
	if n.count() != 1 {
		t.Fatalf("notifications = %d, want 1", n.count())
	}
	if got := n.sent[0]; got.WorkerID != "w1" || got.OrderID != "o1" || got.Title != "New assignment" {
		t.Errorf("unexpected notification %+v", got)
	}
}

func TestAssignWorkerToOrder_SwallowsConflict(t *testing.T) {
	svc, repo, n := newAssignmentFixture(t)
	seedOrder(t, repo, testOrder("busy", "2026-03-10T06:00:00.000Z", "w1"))
	seedOrder(t, repo, testOrder("o2", "2026-03-10T07:00:00.000Z"))

	res, err := svc.AssignWorkerToOrder(context.Background(), "o2", "w1")
	if err != nil {
		t.Fatalf("conflict must not surface, got %v", err)
	}
	assertSkipped(t, res, ErrConflictTime)
	if n.count() != 1 {
		t.Errorf("worker is still notified, got %d notifications", n.count())
	}
	if mustOrder(t, repo, "o2").HasWorker("w1") {
		t.Error("conflicting worker must not be attached")
	}
}

func TestAssignWorkerToOrder_MissingOrder(t *testing.T) {
	svc, _, n := newAssignmentFixture(t)

	res, err := svc.AssignWorkerToOrder(context.Background(), "nope", "w1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSkipped(t, res, ErrOrderNotFound)
	if n.count() != 0 {
		t.Error("no notification for a missing order")
	}
}

func TestAssignWorkerToOrder_NotifierFailureIgnored(t *testing.T) {
	svc, repo, n := newAssignmentFixture(t)
	n.err = errors.New("broker down")
	seedOrder(t, repo, testOrder("o1", "2026-03-10T06:00:00.000Z"))

	res, err := svc.AssignWorkerToOrder(context.Background(), "o1", "w1")
	if err != nil || !res.Applied {
		t.Fatalf("AssignWorkerToOrder = %+v, %v", res, err)
	}
}

// ── Confirm / Reject ──

func TestConfirmAssignment_RecountsAndLogs(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)
	ctx := context.Background()
	seedEmployee(t, repo, model.Employee{ID: "w1", FullName: "Иван"})
	seedOrder(t, repo, testOrder("o1", "2026-03-10T06:00:00.000Z", "w1", "w2"))

	res, err := svc.ConfirmAssignment(ctx, "o1", "w1")
	if err != nil || !res.Applied {
		t.Fatalf("ConfirmAssignment = %+v, %v", res, err)
	}
	// confirming twice must not double count
	if _, err := svc.ConfirmAssignment(ctx, "o1", "w1"); err != nil {
		t.Fatal(err)
	}

	o := mustOrder(t, repo, "o1")
	if !o.AssignmentsDetail["w1"].IsConfirmed || o.ConfirmedWorkersCount != 1 {
		t.Errorf("confirmed=%v count=%d", o.AssignmentsDetail["w1"].IsConfirmed, o.ConfirmedWorkersCount)
	}

	logs, _ := repo.Log.List(ctx)
	if len(logs) == 0 {
		t.Fatal("expected a log entry")
	}
	if logs[0].AppContext != model.ContextWorker || logs[0].EntityName != "Иван" || logs[0].OrderID == nil || *logs[0].OrderID != "o1" {
		t.Errorf("unexpected log entry %+v", logs[0])
	}
}

func TestConfirmAssignment_NoDetail(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)
	seedOrder(t, repo, testOrder("o1", "2026-03-10T06:00:00.000Z"))

	res, err := svc.ConfirmAssignment(context.Background(), "o1", "w1")
	if err != nil {
		t.Fatal(err)
	}
	assertSkipped(t, res, ErrAssignmentNotFound)
}

func TestRejectAssignment_RemovesDetail(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)
	ctx := context.Background()
	o := testOrder("o1", "2026-03-10T06:00:00.000Z", "w1", "w2")
	o.AssignmentsDetail["w1"].IsConfirmed = true
	o.AssignmentsDetail["w1"].Hours = 3
	o.AssignmentsDetail["w2"].IsConfirmed = true
	o.ConfirmedWorkersCount = 2
	seedOrder(t, repo, o)

	res, err := svc.RejectAssignment(ctx, "o1", "w1")
	if err != nil || !res.Applied {
		t.Fatalf("RejectAssignment = %+v, %v", res, err)
	}

	got := mustOrder(t, repo, "o1")
	if got.HasWorker("w1") {
		t.Error("worker must be removed from assigned ids")
	}
	if _, ok := got.AssignmentsDetail["w1"]; ok {
		t.Error("detail key must be deleted")
	}
	if got.ConfirmedWorkersCount != 1 {
		t.Errorf("confirmed count = %d, want 1", got.ConfirmedWorkersCount)
	}

	logs, _ := repo.Log.List(ctx)
	if len(logs) != 1 || logs[0].EntityName != "Worker" {
		t.Errorf("expected one log entry with fallback name, got %+v", logs)
	}
}

func TestRejectAssignment_Unknown(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)
	seedOrder(t, repo, testOrder("o1", "2026-03-10T06:00:00.000Z"))

	res, err := svc.RejectAssignment(context.Background(), "o1", "w9")
	if err != nil {
		t.Fatal(err)
	}
	assertSkipped(t, res, ErrAssignmentNotFound)
}

// ── UpdateAssignmentDetail ──

func TestUpdateAssignmentDetail_MergesPatch(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)
	seedOrder(t, repo, testOrder("o1", "2026-03-10T06:00:00.000Z", "w1"))

	start := "09:30"
	confirmed := true
	res, err := svc.UpdateAssignmentDetail(context.Background(), "o1", "w1", &dto.AssignmentPatch{
		StartTime:   &start,
		Hours:       f64(4),
		IsConfirmed: &confirmed,
	})
	if err != nil || !res.Applied {
		t.Fatalf("UpdateAssignmentDetail = %+v, %v", res, err)
	}

	o := mustOrder(t, repo, "o1")
	d := o.AssignmentsDetail["w1"]
	if d.StartTime != "09:30" || d.EndTime != "17:00" || d.Hours != 4 || !d.IsConfirmed {
		t.Errorf("unexpected detail %+v", d)
	}
	if o.ConfirmedWorkersCount != 1 {
		t.Errorf("confirmed count = %d, want 1", o.ConfirmedWorkersCount)
	}
}

func TestUpdateAssignmentDetail_CreatesMissingDetail(t *testing.T) {
	svc, repo, _ := newAssignmentFixture(t)
	seedOrder(t, repo, testOrder("o1", "2026-03-10T06:00:00.000Z"))

	if _, err := svc.UpdateAssignmentDetail(context.Background(), "o1", "w5", &dto.AssignmentPatch{Payout: f64(100)}); err != nil {
		t.Fatal(err)
	}
	if d := mustOrder(t, repo, "o1").AssignmentsDetail["w5"]; d == nil || d.Payout != 100 {
		t.Errorf("expected created detail, got %+v", d)
	}
}
