package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dispetcher/backend/config"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
)

// ── shift errors ──

var (
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrShiftNotStarted      = errors.New("shift was not started")
	ErrShiftAlreadyFinished = errors.New("shift already finished")
)

// ShiftOutcome result of finishing a shift
type ShiftOutcome struct {
	Result
	Hours              float64
	Payout             float64
	CalculatedDuration string
}

// ShiftService start/finish of a worker's shift on an order
type ShiftService interface {
	StartWork(ctx context.Context, workerID, orderID string) (Result, error)
	// FinishWork credits hours and payout once per started shift.
	FinishWork(ctx context.Context, workerID, orderID string) (*ShiftOutcome, error)
}

type shiftService struct {
	cfg    *config.BusinessConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    Clock
}

// NewShiftService creates a ShiftService.
func NewShiftService(cfg *config.BusinessConfig, repo *repository.Repository, logger *zap.Logger, now Clock) ShiftService {
	return &shiftService{cfg: cfg, repo: repo, logger: logger, now: now}
}

// ────────────────────── StartWork ──────────────────────

func (s *shiftService) StartWork(ctx context.Context, workerID, orderID string) (Result, error) {
	var res Result
	err := s.repo.Atomic(ctx, func(tx *repository.Repository) error {
		order, err := tx.Order.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				res = skipped(ErrOrderNotFound)
				return nil
			}
			return err
		}
		if order.AssignmentsDetail[workerID] == nil {
			res = skipped(ErrAssignmentNotFound)
			return nil
		}
		if _, err := tx.Employee.GetByID(ctx, workerID); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				res = skipped(ErrEmployeeNotFound)
				return nil
			}
			return err
		}

		startedAt := model.FormatTime(s.now())
		if _, err := tx.Order.Update(ctx, orderID, func(o *model.Order) error {
			o.AssignmentsDetail[workerID].ActualStart = &startedAt
			return nil
		}); err != nil {
			return err
		}
		if _, err := tx.Employee.Update(ctx, workerID, func(e *model.Employee) error {
			e.IsAtSite = true
			return nil
		}); err != nil {
			return err
		}

		res = applied()
		return nil
	})
	if err != nil {
		s.logger.Error("failed to start shift", zap.String("order_id", orderID), zap.String("worker_id", workerID), zap.Error(err))
		return Result{}, err
	}
	return res, nil
}

// ────────────────────── FinishWork ──────────────────────

func (s *shiftService) FinishWork(ctx context.Context, workerID, orderID string) (*ShiftOutcome, error) {
	out := &ShiftOutcome{}
	err := s.repo.Atomic(ctx, func(tx *repository.Repository) error {
		order, err := tx.Order.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				out.Result = skipped(ErrOrderNotFound)
				return nil
			}
			return err
		}

		detail := order.AssignmentsDetail[workerID]
		if detail == nil || detail.ActualStart == nil {
			out.Result = skipped(ErrShiftNotStarted)
			return nil
		}
		start, err := model.ParseTime(*detail.ActualStart, time.UTC)
		if err != nil {
			out.Result = skipped(ErrShiftNotStarted)
			return nil
		}
		// a finish stamped at or after the current start belongs to this shift
		if detail.ActualEnd != nil {
			if end, err := model.ParseTime(*detail.ActualEnd, time.UTC); err == nil && !end.Before(start) {
				out.Result = skipped(ErrShiftAlreadyFinished)
				return nil
			}
		}

		end := s.now()
		elapsed := end.Sub(start)
		hours := roundTo1(float64(elapsed.Milliseconds()) / 3600000)
		payout := hours * order.WorkerRate(s.cfg.DefaultWorkerRate)
		endedAt := model.FormatTime(end)
		duration := formatDuration(elapsed)

		if _, err := tx.Order.Update(ctx, orderID, func(o *model.Order) error {
			d := o.AssignmentsDetail[workerID]
			d.ActualEnd = &endedAt
			d.Hours = hours
			d.Payout = payout
			d.CalculatedDuration = &duration
			d.IsConfirmed = true
			o.RecountConfirmed()
			return nil
		}); err != nil {
			return err
		}

		_, err = tx.Employee.Update(ctx, workerID, func(e *model.Employee) error {
			e.IsAtSite = false
			e.TotalHours += hours
			e.BalanceOwed += payout
			e.BalanceToday += payout
			e.BalanceMonth += payout
			return nil
		})
		if err != nil {
			if !errors.Is(err, repository.ErrRecordNotFound) {
				return err
			}
			s.logger.Warn("shift finished for unknown employee", zap.String("worker_id", workerID), zap.String("order_id", orderID))
		}

		out.Result = applied()
		out.Hours = hours
		out.Payout = payout
		out.CalculatedDuration = duration
		return nil
	})
	if err != nil {
		s.logger.Error("failed to finish shift", zap.String("order_id", orderID), zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}
	return out, nil
}

// formatDuration renders d as e.g. "2h30m".
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Minute)
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}
