package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dispetcher/backend/config"
	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
	"dispetcher/backend/pkg/notify"
)

// ── assignment errors ──

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrAssignmentNotFound = errors.New("worker is not assigned to this order")
	ErrAlreadyAssigned    = errors.New("worker is already assigned to this order")
	ErrConflictTime       = errors.New("worker has another order within the conflict window")
)

// KindConflictTime is the error kind reported for scheduling conflicts.
const KindConflictTime = "CONFLICT_TIME"

// ConflictError names the order that blocks an assignment.
type ConflictError struct {
	OrderID            string
	ConflictingOrderID string
	WorkerID           string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: worker %s on order %s conflicts with order %s",
		KindConflictTime, e.WorkerID, e.OrderID, e.ConflictingOrderID)
}

func (e *ConflictError) Unwrap() error { return ErrConflictTime }

// Kind is always CONFLICT_TIME.
func (e *ConflictError) Kind() string { return KindConflictTime }

// AssignmentService order claiming and worker assignment
type AssignmentService interface {
	// ClaimOrder sets the owning dispatcher, overwriting any previous claimant.
	ClaimOrder(ctx context.Context, orderID, dispatcherID string) (Result, error)
	// ClaimOrderWorker attaches an unconfirmed worker. A time conflict is
	// returned as *ConflictError and nothing is written.
	ClaimOrderWorker(ctx context.Context, orderID, workerID string) (Result, error)
	// AssignWorkerToOrder is the dispatcher variant: conflicts are ignored and
	// the worker is notified. It never returns a conflict.
	AssignWorkerToOrder(ctx context.Context, orderID, workerID string) (Result, error)
	ConfirmAssignment(ctx context.Context, orderID, workerID string) (Result, error)
	RejectAssignment(ctx context.Context, orderID, workerID string) (Result, error)
	UpdateAssignmentDetail(ctx context.Context, orderID, workerID string, patch *dto.AssignmentPatch) (Result, error)
}

type assignmentService struct {
	cfg      *config.BusinessConfig
	loc      *time.Location
	repo     *repository.Repository
	notifier notify.Notifier
	logger   *zap.Logger
	now      Clock
}

// NewAssignmentService creates an AssignmentService.
func NewAssignmentService(
	cfg *config.BusinessConfig,
	repo *repository.Repository,
	notifier notify.Notifier,
	logger *zap.Logger,
	now Clock,
) AssignmentService {
	loc, err := cfg.Location()
	if err != nil {
		logger.Warn("falling back to local timezone", zap.Error(err))
		loc = time.Local
	}
	return &assignmentService{cfg: cfg, loc: loc, repo: repo, notifier: notifier, logger: logger, now: now}
}

// ────────────────────── ClaimOrder ──────────────────────

func (s *assignmentService) ClaimOrder(ctx context.Context, orderID, dispatcherID string) (Result, error) {
	_, err := s.repo.Order.Update(ctx, orderID, func(o *model.Order) error {
		o.ClaimedBy = strPtr(dispatcherID)
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return skipped(ErrOrderNotFound), nil
		}
		s.logger.Error("failed to claim order", zap.String("order_id", orderID), zap.Error(err))
		return Result{}, err
	}
	return applied(), nil
}

// ────────────────────── ClaimOrderWorker ──────────────────────

func (s *assignmentService) ClaimOrderWorker(ctx context.Context, orderID, workerID string) (Result, error) {
	var res Result
	err := s.repo.Atomic(ctx, func(tx *repository.Repository) error {
		orders, err := tx.Order.List(ctx)
		if err != nil {
			return err
		}

		target := findOrder(orders, orderID)
		if target == nil {
			res = skipped(ErrOrderNotFound)
			return nil
		}
		if target.HasWorker(workerID) {
			res = skipped(ErrAlreadyAssigned)
			return nil
		}

		if other := findConflict(orders, target, workerID, s.cfg.ConflictWindow, s.loc); other != nil {
			return &ConflictError{OrderID: orderID, ConflictingOrderID: other.ID, WorkerID: workerID}
		}

		target.AssignedEmployeeIDs = append(target.AssignedEmployeeIDs, workerID)
		target.AssignmentsDetail[workerID] = &model.Assignment{
			StartTime: s.cfg.PlannedStart,
			EndTime:   s.cfg.PlannedEnd,
		}
		// confirmed_workers_count waits for ConfirmAssignment

		res = applied()
		return tx.Order.SaveAll(ctx, orders)
	})
	if err != nil {
		if errors.Is(err, ErrConflictTime) {
			return Result{}, err
		}
		s.logger.Error("failed to claim worker", zap.String("order_id", orderID), zap.String("worker_id", workerID), zap.Error(err))
		return Result{}, err
	}
	return res, nil
}

// findConflict returns another order holding workerID on the same local
// calendar day as target with start times strictly less than window apart.
// Orders whose datetime does not parse never conflict.
func findConflict(orders []model.Order, target *model.Order, workerID string, window time.Duration, loc *time.Location) *model.Order {
	targetAt, err := model.ParseTime(target.Datetime, loc)
	if err != nil {
		return nil
	}
	targetAt = targetAt.In(loc)
	ty, tm, td := targetAt.Date()

	for i := range orders {
		o := &orders[i]
		if o.ID == target.ID || !o.HasWorker(workerID) {
			continue
		}
		at, err := model.ParseTime(o.Datetime, loc)
		if err != nil {
			continue
		}
		at = at.In(loc)
		if y, m, d := at.Date(); y != ty || m != tm || d != td {
			continue
		}
		diff := at.Sub(targetAt)
		if diff < 0 {
			diff = -diff
		}
		if diff < window {
			return o
		}
	}
	return nil
}

func findOrder(orders []model.Order, id string) *model.Order {
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i]
		}
	}
	return nil
}

// ────────────────────── AssignWorkerToOrder ──────────────────────

func (s *assignmentService) AssignWorkerToOrder(ctx context.Context, orderID, workerID string) (Result, error) {
	res, err := s.ClaimOrderWorker(ctx, orderID, workerID)
	if err != nil {
		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			return Result{}, err
		}
		s.logger.Info("dispatcher assignment overrides time conflict",
			zap.String("order_id", orderID),
			zap.String("worker_id", workerID),
			zap.String("conflicting_order_id", conflict.ConflictingOrderID),
		)
		res = skipped(err)
	}

	order, err := s.repo.Order.GetByID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			s.logger.Warn("assignment notification skipped", zap.String("order_id", orderID), zap.Error(err))
		}
		return res, nil
	}

	n := notify.Notification{
		ID:        newID(),
		WorkerID:  workerID,
		OrderID:   orderID,
		Kind:      notify.KindAssignment,
		Title:     "New assignment",
		Body:      fmt.Sprintf("You have been assigned to %s. Confirmation required.", order.Address),
		URL:       "/",
		CreatedAt: model.FormatTime(s.now()),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("failed to send assignment notification", zap.String("worker_id", workerID), zap.Error(err))
	}
	return res, nil
}

// ────────────────────── ConfirmAssignment ──────────────────────

func (s *assignmentService) ConfirmAssignment(ctx context.Context, orderID, workerID string) (Result, error) {
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

		if _, err := tx.Order.Update(ctx, orderID, func(o *model.Order) error {
			o.AssignmentsDetail[workerID].IsConfirmed = true
			o.RecountConfirmed()
			return nil
		}); err != nil {
			return err
		}

		res = applied()
		_, err = appendLog(ctx, tx, s.now, workerID, workerName(ctx, tx, workerID),
			fmt.Sprintf("confirmed participation at %s", order.Address), model.ContextWorker, strPtr(orderID))
		return err
	})
	if err != nil {
		s.logger.Error("failed to confirm assignment", zap.String("order_id", orderID), zap.String("worker_id", workerID), zap.Error(err))
		return Result{}, err
	}
	return res, nil
}

// ────────────────────── RejectAssignment ──────────────────────

// RejectAssignment drops the worker and the whole detail, including any
// hours already recorded on it.
func (s *assignmentService) RejectAssignment(ctx context.Context, orderID, workerID string) (Result, error) {
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
		if _, ok := order.AssignmentsDetail[workerID]; !ok && !order.HasWorker(workerID) {
			res = skipped(ErrAssignmentNotFound)
			return nil
		}

		if _, err := tx.Order.Update(ctx, orderID, func(o *model.Order) error {
			ids := o.AssignedEmployeeIDs[:0]
			for _, id := range o.AssignedEmployeeIDs {
				if id != workerID {
					ids = append(ids, id)
				}
			}
			o.AssignedEmployeeIDs = ids
			delete(o.AssignmentsDetail, workerID)
			o.RecountConfirmed()
			return nil
		}); err != nil {
			return err
		}

		res = applied()
		_, err = appendLog(ctx, tx, s.now, workerID, workerName(ctx, tx, workerID),
			fmt.Sprintf("REJECTED assignment at %s", order.Address), model.ContextWorker, strPtr(orderID))
		return err
	})
	if err != nil {
		s.logger.Error("failed to reject assignment", zap.String("order_id", orderID), zap.String("worker_id", workerID), zap.Error(err))
		return Result{}, err
	}
	return res, nil
}

// ────────────────────── UpdateAssignmentDetail ──────────────────────

// UpdateAssignmentDetail merges patch into the worker's detail, creating the
// detail when it does not exist yet.
func (s *assignmentService) UpdateAssignmentDetail(ctx context.Context, orderID, workerID string, patch *dto.AssignmentPatch) (Result, error) {
	_, err := s.repo.Order.Update(ctx, orderID, func(o *model.Order) error {
		d := o.AssignmentsDetail[workerID]
		if d == nil {
			d = &model.Assignment{}
			o.AssignmentsDetail[workerID] = d
		}
		applyPatch(d, patch)
		o.RecountConfirmed()
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return skipped(ErrOrderNotFound), nil
		}
		s.logger.Error("failed to update assignment", zap.String("order_id", orderID), zap.String("worker_id", workerID), zap.Error(err))
		return Result{}, err
	}
	return applied(), nil
}

func applyPatch(d *model.Assignment, p *dto.AssignmentPatch) {
	if p == nil {
		return
	}
	if p.StartTime != nil {
		d.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		d.EndTime = *p.EndTime
	}
	if p.Hours != nil {
		d.Hours = *p.Hours
	}
	if p.Payout != nil {
		d.Payout = *p.Payout
	}
	if p.ActualStart != nil {
		d.ActualStart = p.ActualStart
	}
	if p.ActualEnd != nil {
		d.ActualEnd = p.ActualEnd
	}
	if p.CalculatedDuration != nil {
		d.CalculatedDuration = p.CalculatedDuration
	}
	if p.ArrivalTime != nil {
		d.ArrivalTime = p.ArrivalTime
	}
	if p.IsConfirmed != nil {
		d.IsConfirmed = *p.IsConfirmed
	}
}
