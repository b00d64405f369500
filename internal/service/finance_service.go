package service

import (
	"context"
	"errors"
	"math"
	"sort"

	"go.uber.org/zap"

	"dispetcher/backend/config"
	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
)

// ── finance errors ──

var (
	ErrInvalidAmount = errors.New("amount must be positive")
)

// FinanceService client settlement and payroll balances
type FinanceService interface {
	// DistributeClientPayment pays the client's completed unpaid orders oldest
	// first. Whatever exceeds the outstanding debt is reported as leftover and
	// not credited anywhere.
	DistributeClientPayment(ctx context.Context, clientName string, amount float64) (*dto.SettlementResponse, error)
	SaveOrderFinance(ctx context.Context, orderID string, req *dto.OrderFinanceRequest) (*model.Order, error)
	Debtors(ctx context.Context) ([]dto.DebtorResponse, error)
	WorkerFinance(ctx context.Context, workerID string) (*dto.WorkerFinanceResponse, error)
}

type financeService struct {
	cfg    *config.BusinessConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewFinanceService creates a FinanceService.
func NewFinanceService(cfg *config.BusinessConfig, repo *repository.Repository, logger *zap.Logger) FinanceService {
	return &financeService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── DistributeClientPayment ──────────────────────

func (s *financeService) DistributeClientPayment(ctx context.Context, clientName string, amount float64) (*dto.SettlementResponse, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}

	result := &dto.SettlementResponse{
		ClientName:  clientName,
		Amount:      amount,
		Allocations: []dto.PaymentAllocation{},
	}

	err := s.repo.Atomic(ctx, func(tx *repository.Repository) error {
		orders, err := tx.Order.List(ctx)
		if err != nil {
			return err
		}

		unpaid := make([]*model.Order, 0)
		for i := range orders {
			o := &orders[i]
			if o.ClientName == clientName && o.Status == model.OrderStatusCompleted && o.PaymentStatus == model.PaymentStatusUnpaid {
				unpaid = append(unpaid, o)
			}
		}
		sort.SliceStable(unpaid, func(i, j int) bool {
			return unpaid[i].Datetime < unpaid[j].Datetime
		})

		remaining := amount
		for _, o := range unpaid {
			if remaining <= 0 {
				break
			}
			debt := math.Max(0, o.TotalClientCost-o.PaidAmount)
			pay := math.Min(debt, remaining)
			o.PaidAmount += pay
			remaining -= pay
			if o.PaidAmount >= o.TotalClientCost {
				o.PaymentStatus = model.PaymentStatusPaid
			}
			result.Allocations = append(result.Allocations, dto.PaymentAllocation{
				OrderID:         o.ID,
				Datetime:        o.Datetime,
				Applied:         pay,
				PaidAmount:      o.PaidAmount,
				TotalClientCost: o.TotalClientCost,
				PaymentStatus:   o.PaymentStatus,
			})
		}

		result.Applied = amount - remaining
		result.Leftover = remaining
		return tx.Order.SaveAll(ctx, orders)
	})
	if err != nil {
		s.logger.Error("failed to distribute payment", zap.String("client", clientName), zap.Error(err))
		return nil, err
	}

	if result.Leftover > 0 {
		s.logger.Info("payment exceeds client debt",
			zap.String("client", clientName),
			zap.Float64("amount", amount),
			zap.Float64("leftover", result.Leftover),
		)
	}
	return result, nil
}

// ────────────────────── SaveOrderFinance ──────────────────────

// SaveOrderFinance applies the dispatcher's finance edits and derives
// total_client_cost and payment_status from them. Edits apply in this order:
// service rates, per-worker rows, paid amount.
func (s *financeService) SaveOrderFinance(ctx context.Context, orderID string, req *dto.OrderFinanceRequest) (*model.Order, error) {
	if err := validateFinanceRequest(req); err != nil {
		return nil, err
	}

	order, err := s.repo.Order.Update(ctx, orderID, func(o *model.Order) error {
		if req.WorkerRate != nil && len(o.OrderServices) > 0 {
			rate := *req.WorkerRate
			o.OrderServices[0].PriceWorker = rate
			for _, id := range o.AssignedEmployeeIDs {
				if d := o.AssignmentsDetail[id]; d != nil {
					d.Payout = d.Hours * rate
				}
			}
		}
		if req.ClientRate != nil && len(o.OrderServices) > 0 {
			o.OrderServices[0].PriceClient = *req.ClientRate
		}

		for workerID, edit := range req.Workers {
			d := o.AssignmentsDetail[workerID]
			if d == nil || !o.HasWorker(workerID) {
				return ErrAssignmentNotFound
			}
			if edit.Hours != nil {
				d.Hours = *edit.Hours
				d.Payout = d.Hours * o.WorkerRate(s.cfg.DefaultWorkerRate)
			}
			if edit.Rate != nil {
				d.Payout = d.Hours * *edit.Rate
			}
			if edit.Payout != nil {
				d.Payout = *edit.Payout
			}
		}

		if req.PaidAmount != nil {
			o.PaidAmount = *req.PaidAmount
		}

		clientRate := o.ClientRate(s.cfg.DefaultClientRate)
		total := 0.0
		for _, id := range o.AssignedEmployeeIDs {
			if d := o.AssignmentsDetail[id]; d != nil {
				total += d.Hours * clientRate
			}
		}
		o.TotalClientCost = total
		if o.PaidAmount >= total && total > 0 {
			o.PaymentStatus = model.PaymentStatusPaid
		} else {
			o.PaymentStatus = model.PaymentStatusUnpaid
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrOrderNotFound
		case errors.Is(err, ErrAssignmentNotFound):
			return nil, err
		}
		s.logger.Error("failed to save order finance", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}
	return order, nil
}

func validateFinanceRequest(req *dto.OrderFinanceRequest) error {
	nonNegative := func(p *float64) bool { return p == nil || (*p >= 0 && !math.IsNaN(*p)) }
	if !nonNegative(req.WorkerRate) || !nonNegative(req.ClientRate) || !nonNegative(req.PaidAmount) {
		return ErrInvalidAmount
	}
	for _, e := range req.Workers {
		if !nonNegative(e.Hours) || !nonNegative(e.Rate) || !nonNegative(e.Payout) {
			return ErrInvalidAmount
		}
	}
	return nil
}

// ────────────────────── Debtors ──────────────────────

func (s *financeService) Debtors(ctx context.Context) ([]dto.DebtorResponse, error) {
	orders, err := s.repo.Order.List(ctx)
	if err != nil {
		s.logger.Error("failed to list orders", zap.Error(err))
		return nil, err
	}

	byClient := make(map[string]*dto.DebtorResponse)
	var names []string
	for _, o := range orders {
		if o.Status != model.OrderStatusCompleted || o.PaymentStatus == model.PaymentStatusPaid {
			continue
		}
		debt := math.Max(0, o.TotalClientCost-o.PaidAmount)
		if debt <= 1 {
			continue
		}
		d, ok := byClient[o.ClientName]
		if !ok {
			d = &dto.DebtorResponse{Client: o.ClientName, Orders: []model.Order{}}
			byClient[o.ClientName] = d
			names = append(names, o.ClientName)
		}
		d.TotalDebt += debt
		d.Orders = append(d.Orders, o)
	}

	result := make([]dto.DebtorResponse, 0, len(names))
	for _, n := range names {
		result = append(result, *byClient[n])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalDebt > result[j].TotalDebt
	})
	return result, nil
}

// ────────────────────── WorkerFinance ──────────────────────

func (s *financeService) WorkerFinance(ctx context.Context, workerID string) (*dto.WorkerFinanceResponse, error) {
	emp, err := s.repo.Employee.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("failed to load employee", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}
	return &dto.WorkerFinanceResponse{
		Today: emp.BalanceToday,
		Month: emp.BalanceMonth,
		Total: emp.BalanceOwed,
	}, nil
}
