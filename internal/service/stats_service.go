package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"dispetcher/backend/config"
	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
)

// ── stats errors ──

var (
	ErrInvalidDateRange = errors.New("date range must be YYYY-MM-DD with from <= to")
)

// StatsService read-only dashboard figures. Everything is recomputed from
// the collections on every call.
type StatsService interface {
	SystemStats(ctx context.Context) (*dto.SystemStatsResponse, error)
	PeriodFinance(ctx context.Context, r *dto.DateRange) (*dto.PeriodFinanceResponse, error)
	AdminStats(ctx context.Context, r *dto.DateRange) (*dto.AdminStatsResponse, error)
	PayrollReport(ctx context.Context, req *dto.PayrollRequest) (*dto.PayrollReportResponse, error)
}

type statsService struct {
	cfg    *config.BusinessConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStatsService creates a StatsService.
func NewStatsService(cfg *config.BusinessConfig, repo *repository.Repository, logger *zap.Logger) StatsService {
	return &statsService{cfg: cfg, repo: repo, logger: logger}
}

func validateRange(r *dto.DateRange) error {
	if r == nil || !isDate(r.From) || !isDate(r.To) || r.From > r.To {
		return ErrInvalidDateRange
	}
	return nil
}

// ────────────────────── SystemStats ──────────────────────

func (s *statsService) SystemStats(ctx context.Context) (*dto.SystemStatsResponse, error) {
	emps, err := s.repo.Employee.List(ctx)
	if err != nil {
		return nil, s.fail("employees", err)
	}
	disps, err := s.repo.Dispatcher.List(ctx)
	if err != nil {
		return nil, s.fail("dispatchers", err)
	}
	orders, err := s.repo.Order.List(ctx)
	if err != nil {
		return nil, s.fail("orders", err)
	}

	out := &dto.SystemStatsResponse{}
	for _, e := range emps {
		if e.IsAtSite {
			out.WorkersAtSiteCount++
		} else if e.IsOnline {
			out.OnlineFreeWorkers++
		}
	}
	for _, d := range disps {
		if d.Status == model.DispatcherStatusActive {
			out.OnlineDispatchers++
		}
	}
	for _, o := range orders {
		if o.Status != model.OrderStatusCompleted || o.PaymentStatus == model.PaymentStatusPaid {
			continue
		}
		out.TotalClientDebt += o.TotalClientCost - o.PaidAmount
	}
	return out, nil
}

// ────────────────────── PeriodFinance ──────────────────────

func (s *statsService) PeriodFinance(ctx context.Context, r *dto.DateRange) (*dto.PeriodFinanceResponse, error) {
	if err := validateRange(r); err != nil {
		return nil, err
	}
	orders, err := s.repo.Order.List(ctx)
	if err != nil {
		return nil, s.fail("orders", err)
	}

	out := &dto.PeriodFinanceResponse{}
	for _, o := range orders {
		if !inRange(o.Datetime, r.From, r.To) {
			continue
		}
		out.Count++
		if o.Status != model.OrderStatusCompleted && o.Status != model.OrderStatusActive {
			continue
		}
		clientRate := o.ClientRate(s.cfg.DefaultClientRate)
		for _, id := range o.AssignedEmployeeIDs {
			d := o.AssignmentsDetail[id]
			if d == nil {
				continue
			}
			out.Income += d.Hours * clientRate
			out.Expense += d.Payout
			out.Hours += d.Hours
		}
	}
	out.Profit = out.Income - out.Expense
	return out, nil
}

// ────────────────────── AdminStats ──────────────────────

func (s *statsService) AdminStats(ctx context.Context, r *dto.DateRange) (*dto.AdminStatsResponse, error) {
	if err := validateRange(r); err != nil {
		return nil, err
	}
	orders, err := s.repo.Order.List(ctx)
	if err != nil {
		return nil, s.fail("orders", err)
	}
	disps, err := s.repo.Dispatcher.List(ctx)
	if err != nil {
		return nil, s.fail("dispatchers", err)
	}
	emps, err := s.repo.Employee.List(ctx)
	if err != nil {
		return nil, s.fail("employees", err)
	}

	var period []model.Order
	for _, o := range orders {
		if inRange(o.Datetime, r.From, r.To) {
			period = append(period, o)
		}
	}

	out := &dto.AdminStatsResponse{
		Dispatchers: make([]dto.DispatcherStat, 0, len(disps)),
		Employees:   make([]dto.EmployeeStat, 0, len(emps)),
		Clients:     []dto.ClientStat{},
	}

	// ── dispatchers: margin on claimed orders ──
	for _, d := range disps {
		revenue := 0.0
		for _, o := range period {
			if o.ClaimedBy == nil || *o.ClaimedBy != d.ID {
				continue
			}
			margin := o.ClientRate(s.cfg.DefaultClientRate) - o.WorkerRate(s.cfg.DefaultWorkerRate)
			for _, a := range o.AssignmentsDetail {
				if a != nil {
					revenue += a.Hours * margin
				}
			}
		}
		stat := dto.DispatcherStat{ID: d.ID, Name: d.Name, PeriodRevenue: roundHalfUp(revenue)}
		out.Dispatchers = append(out.Dispatchers, stat)
		out.TotalRevenue += stat.PeriodRevenue
	}

	// ── employees: payouts ──
	for _, e := range emps {
		earnings := 0.0
		for _, o := range period {
			if a := o.AssignmentsDetail[e.ID]; a != nil {
				earnings += a.Payout
			}
		}
		out.Employees = append(out.Employees, dto.EmployeeStat{ID: e.ID, FullName: e.FullName, PeriodEarnings: roundHalfUp(earnings)})
	}

	// ── clients: invoiced in period, active orders overall ──
	seen := make(map[string]bool)
	for _, o := range orders {
		if seen[o.ClientName] {
			continue
		}
		seen[o.ClientName] = true

		invoiced := 0.0
		for _, p := range period {
			if p.ClientName != o.ClientName {
				continue
			}
			rate := p.ClientRate(s.cfg.DefaultClientRate)
			for _, a := range p.AssignmentsDetail {
				if a != nil {
					invoiced += a.Hours * rate
				}
			}
		}
		active := 0
		for _, a := range orders {
			if a.ClientName == o.ClientName && a.Status == model.OrderStatusActive {
				active++
			}
		}
		out.Clients = append(out.Clients, dto.ClientStat{Name: o.ClientName, PeriodInvoiced: roundHalfUp(invoiced), ActiveCount: active})
	}

	return out, nil
}

// ────────────────────── PayrollReport ──────────────────────

func (s *statsService) PayrollReport(ctx context.Context, req *dto.PayrollRequest) (*dto.PayrollReportResponse, error) {
	if err := validateRange(&req.DateRange); err != nil {
		return nil, err
	}
	orders, err := s.repo.Order.List(ctx)
	if err != nil {
		return nil, s.fail("orders", err)
	}
	emps, err := s.repo.Employee.List(ctx)
	if err != nil {
		return nil, s.fail("employees", err)
	}

	selected := emps
	if len(req.EmployeeIDs) > 0 {
		byID := make(map[string]model.Employee, len(emps))
		for _, e := range emps {
			byID[e.ID] = e
		}
		selected = make([]model.Employee, 0, len(req.EmployeeIDs))
		for _, id := range req.EmployeeIDs {
			if e, ok := byID[id]; ok {
				selected = append(selected, e)
			}
		}
	}

	out := &dto.PayrollReportResponse{From: req.From, To: req.To, Employees: make([]dto.EmployeePayroll, 0, len(selected))}
	for _, e := range selected {
		p := dto.EmployeePayroll{EmployeeID: e.ID, FullName: e.FullName, Shifts: []dto.PayrollShift{}}
		for _, o := range orders {
			if !inRange(o.Datetime, req.From, req.To) || !o.HasWorker(e.ID) {
				continue
			}
			a := o.AssignmentsDetail[e.ID]
			if a == nil {
				continue
			}
			p.Shifts = append(p.Shifts, dto.PayrollShift{
				OrderID: o.ID,
				Date:    o.Datetime,
				Client:  o.ClientName,
				Hours:   a.Hours,
				Start:   a.StartTime,
				End:     a.EndTime,
				Payout:  a.Payout,
			})
			p.TotalPayout += a.Payout
		}
		out.Employees = append(out.Employees, p)
	}
	return out, nil
}

func (s *statsService) fail(collection string, err error) error {
	s.logger.Error("failed to load collection", zap.String("collection", collection), zap.Error(err))
	return err
}
