package service

import (
	"context"
	"errors"
	"testing"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
)

func debtOrder(id, client, datetime string, cost, paid float64) model.Order {
	o := testOrder(id, datetime)
	o.ClientName = client
	o.Status = model.OrderStatusCompleted
	o.TotalClientCost = cost
	o.PaidAmount = paid
	return o
}

func newFinanceFixture(t *testing.T, orders ...model.Order) (FinanceService, *repository.Repository) {
	t.Helper()
	repo := newTestRepo()
	for _, o := range orders {
		seedOrder(t, repo, o)
	}
	return NewFinanceService(testBusinessConfig(), repo, nopLogger()), repo
}

// ── DistributeClientPayment ──

func TestDistributeClientPayment_FIFO(t *testing.T) {
	// seeded newest first so the store order differs from the payment order
	svc, repo := newFinanceFixture(t,
		debtOrder("a", "ACME", "2026-03-01T08:00:00.000Z", 100, 0),
		debtOrder("b", "ACME", "2026-03-02T08:00:00.000Z", 200, 0),
		debtOrder("c", "ACME", "2026-03-03T08:00:00.000Z", 50, 0),
	)

	res, err := svc.DistributeClientPayment(context.Background(), "ACME", 250)
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied != 250 || res.Leftover != 0 || len(res.Allocations) != 2 {
		t.Errorf("settlement = %+v", res)
	}

	tests := []struct {
		id     string
		paid   float64
		status string
	}{
		{"a", 100, model.PaymentStatusPaid},
		{"b", 150, model.PaymentStatusUnpaid},
		{"c", 0, model.PaymentStatusUnpaid},
	}
	for _, tt := range tests {
		o := mustOrder(t, repo, tt.id)
		if o.PaidAmount != tt.paid || o.PaymentStatus != tt.status {
			t.Errorf("order %s: paid=%v status=%s, want %v %s", tt.id, o.PaidAmount, o.PaymentStatus, tt.paid, tt.status)
		}
	}
}

func TestDistributeClientPayment_PartialDebtAndLeftover(t *testing.T) {
	svc, repo := newFinanceFixture(t,
		debtOrder("a", "ACME", "2026-03-01T08:00:00.000Z", 100, 60),
		debtOrder("b", "ACME", "2026-03-02T08:00:00.000Z", 200, 0),
	)

	res, err := svc.DistributeClientPayment(context.Background(), "ACME", 300)
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied != 240 || res.Leftover != 60 {
		t.Errorf("applied=%v leftover=%v, want 240 60", res.Applied, res.Leftover)
	}
	if o := mustOrder(t, repo, "a"); o.PaidAmount != 100 || o.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("order a = %+v", o)
	}
	if o := mustOrder(t, repo, "b"); o.PaidAmount != 200 || o.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("order b = %+v", o)
	}
}

func TestDistributeClientPayment_OnlyCompletedUnpaidOfClient(t *testing.T) {
	active := debtOrder("active", "ACME", "2026-03-01T08:00:00.000Z", 100, 0)
	active.Status = model.OrderStatusActive
	paid := debtOrder("paid", "ACME", "2026-03-01T09:00:00.000Z", 100, 100)
	paid.PaymentStatus = model.PaymentStatusPaid
	svc, repo := newFinanceFixture(t,
		active,
		paid,
		debtOrder("other", "Globex", "2026-03-01T07:00:00.000Z", 100, 0),
		debtOrder("mine", "ACME", "2026-03-05T08:00:00.000Z", 100, 0),
	)

	res, err := svc.DistributeClientPayment(context.Background(), "ACME", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Allocations) != 1 || res.Allocations[0].OrderID != "mine" {
		t.Fatalf("allocations = %+v", res.Allocations)
	}
	for _, id := range []string{"active", "other"} {
		if o := mustOrder(t, repo, id); o.PaidAmount != 0 {
			t.Errorf("order %s must be untouched, paid=%v", id, o.PaidAmount)
		}
	}
}

func TestDistributeClientPayment_InvalidAmount(t *testing.T) {
	svc, _ := newFinanceFixture(t)
	for _, amount := range []float64{0, -10} {
		if _, err := svc.DistributeClientPayment(context.Background(), "ACME", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

// ── SaveOrderFinance ──

func financeOrder() model.Order {
	o := testOrder("o1", "2026-03-10T06:00:00.000Z", "w1", "w2")
	o.OrderServices = []model.ServiceItem{{ID: "s1", PriceWorker: 400, PriceClient: 520}}
	o.AssignmentsDetail["w1"].Hours = 2
	o.AssignmentsDetail["w1"].Payout = 800
	o.AssignmentsDetail["w2"].Hours = 1
	o.AssignmentsDetail["w2"].Payout = 400
	return o
}

func TestSaveOrderFinance_DerivesTotals(t *testing.T) {
	svc, _ := newFinanceFixture(t, financeOrder())

	o, err := svc.SaveOrderFinance(context.Background(), "o1", &dto.OrderFinanceRequest{
		Workers:    map[string]dto.WorkerFinanceEdit{"w1": {Hours: f64(3)}},
		PaidAmount: f64(2080),
	})
	if err != nil {
		t.Fatal(err)
	}
	if p := o.AssignmentsDetail["w1"].Payout; p != 1200 {
		t.Errorf("w1 payout = %v, want 1200", p)
	}
	// (3 + 1) * 520
	if o.TotalClientCost != 2080 || o.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("total=%v status=%s", o.TotalClientCost, o.PaymentStatus)
	}
}

func TestSaveOrderFinance_RateEdits(t *testing.T) {
	svc, repo := newFinanceFixture(t, financeOrder())

	_, err := svc.SaveOrderFinance(context.Background(), "o1", &dto.OrderFinanceRequest{
		WorkerRate: f64(500),
		ClientRate: f64(600),
		Workers:    map[string]dto.WorkerFinanceEdit{"w2": {Payout: f64(450)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	o := mustOrder(t, repo, "o1")
	if o.OrderServices[0].PriceWorker != 500 || o.OrderServices[0].PriceClient != 600 {
		t.Errorf("services = %+v", o.OrderServices)
	}
	if p := o.AssignmentsDetail["w1"].Payout; p != 1000 {
		t.Errorf("w1 payout rederived = %v, want 1000", p)
	}
	if p := o.AssignmentsDetail["w2"].Payout; p != 450 {
		t.Errorf("explicit payout = %v, want 450", p)
	}
	if o.TotalClientCost != 1800 || o.PaymentStatus != model.PaymentStatusUnpaid {
		t.Errorf("total=%v status=%s", o.TotalClientCost, o.PaymentStatus)
	}
}

func TestSaveOrderFinance_Errors(t *testing.T) {
	svc, repo := newFinanceFixture(t, financeOrder())
	ctx := context.Background()

	if _, err := svc.SaveOrderFinance(ctx, "nope", &dto.OrderFinanceRequest{}); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := svc.SaveOrderFinance(ctx, "o1", &dto.OrderFinanceRequest{
		Workers: map[string]dto.WorkerFinanceEdit{"w9": {Hours: f64(1)}},
	}); !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("expected ErrAssignmentNotFound, got %v", err)
	}
	if _, err := svc.SaveOrderFinance(ctx, "o1", &dto.OrderFinanceRequest{PaidAmount: f64(-1)}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if o := mustOrder(t, repo, "o1"); o.TotalClientCost != 0 {
		t.Error("failed saves must not write")
	}
}

func TestSaveOrderFinance_ZeroTotalStaysUnpaid(t *testing.T) {
	svc, _ := newFinanceFixture(t, testOrder("o1", "2026-03-10T06:00:00.000Z"))

	o, err := svc.SaveOrderFinance(context.Background(), "o1", &dto.OrderFinanceRequest{PaidAmount: f64(0)})
	if err != nil {
		t.Fatal(err)
	}
	if o.PaymentStatus != model.PaymentStatusUnpaid {
		t.Errorf("status = %s, want unpaid", o.PaymentStatus)
	}
}

// ── Debtors / WorkerFinance ──

func TestDebtors_GroupedAndSorted(t *testing.T) {
	svc, _ := newFinanceFixture(t,
		debtOrder("a1", "A", "2026-03-01T08:00:00.000Z", 100, 0),
		debtOrder("b1", "B", "2026-03-01T08:00:00.000Z", 100, 0),
		debtOrder("b2", "B", "2026-03-02T08:00:00.000Z", 250, 50),
		debtOrder("c1", "C", "2026-03-01T08:00:00.000Z", 100, 99.5),
		debtOrder("d1", "D", "2026-03-01T08:00:00.000Z", 100, 150),
	)

	got, err := svc.Debtors(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("debtors = %+v", got)
	}
	if got[0].Client != "B" || got[0].TotalDebt != 300 || len(got[0].Orders) != 2 {
		t.Errorf("first debtor = %+v", got[0])
	}
	if got[1].Client != "A" || got[1].TotalDebt != 100 {
		t.Errorf("second debtor = %+v", got[1])
	}
}

func TestWorkerFinance(t *testing.T) {
	svc, repo := newFinanceFixture(t)
	seedEmployee(t, repo, model.Employee{ID: "w1", BalanceToday: 100, BalanceMonth: 900, BalanceOwed: 1500})

	got, err := svc.WorkerFinance(context.Background(), "w1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Today != 100 || got.Month != 900 || got.Total != 1500 {
		t.Errorf("worker finance = %+v", got)
	}
	if _, err := svc.WorkerFinance(context.Background(), "nope"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}
}
