package service

import (
	"context"

	"go.uber.org/zap"

	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
)

// ActivityService activity log
type ActivityService interface {
	Add(ctx context.Context, entityID, entityName, action, appContext string, orderID *string) (*model.LogEntry, error)
	List(ctx context.Context) ([]model.LogEntry, error)
}

type activityService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    Clock
}

// NewActivityService creates an ActivityService.
func NewActivityService(repo *repository.Repository, logger *zap.Logger, now Clock) ActivityService {
	return &activityService{repo: repo, logger: logger, now: now}
}

func (s *activityService) Add(ctx context.Context, entityID, entityName, action, appContext string, orderID *string) (*model.LogEntry, error) {
	entry, err := appendLog(ctx, s.repo, s.now, entityID, entityName, action, appContext, orderID)
	if err != nil {
		s.logger.Error("failed to write activity log", zap.Error(err))
		return nil, err
	}
	return entry, nil
}

func (s *activityService) List(ctx context.Context) ([]model.LogEntry, error) {
	logs, err := s.repo.Log.List(ctx)
	if err != nil {
		s.logger.Error("failed to list activity log", zap.Error(err))
		return nil, err
	}
	return logs, nil
}

// appendLog writes one entry through repo, which may be bound to an Atomic unit.
func appendLog(ctx context.Context, repo *repository.Repository, now Clock, entityID, entityName, action, appContext string, orderID *string) (*model.LogEntry, error) {
	entry := &model.LogEntry{
		ID:         newID(),
		OrderID:    orderID,
		EntityID:   entityID,
		EntityName: entityName,
		Action:     action,
		Timestamp:  model.FormatTime(now()),
		AppContext: appContext,
	}
	if err := repo.Log.Add(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// workerName resolves a display name for log entries.
func workerName(ctx context.Context, repo *repository.Repository, workerID string) string {
	if emp, err := repo.Employee.GetByID(ctx, workerID); err == nil && emp.FullName != "" {
		return emp.FullName
	}
	return "Worker"
}
