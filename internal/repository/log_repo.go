package repository

import (
	"context"

	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/store"
)

// LogRepository activity log access
type LogRepository interface {
	List(ctx context.Context) ([]model.LogEntry, error)
	// Add prepends entry and trims the log to its cap.
	Add(ctx context.Context, entry *model.LogEntry) error
}

type logRepo struct {
	c     collection[model.LogEntry]
	limit int
}

// NewLogRepo creates a LogRepository capped at limit entries.
func NewLogRepo(st store.Store, tx store.Transactor, limit int) LogRepository {
	return &logRepo{
		c: collection[model.LogEntry]{
			st:   st,
			tx:   tx,
			key:  store.KeyLogs,
			idOf: func(e *model.LogEntry) string { return e.ID },
		},
		limit: limit,
	}
}

func (r *logRepo) List(ctx context.Context) ([]model.LogEntry, error) {
	logs, _, err := r.c.all(ctx)
	return logs, err
}

func (r *logRepo) Add(ctx context.Context, entry *model.LogEntry) error {
	return r.c.write(ctx, func(c collection[model.LogEntry]) error {
		logs, _, err := c.all(ctx)
		if err != nil {
			return err
		}
		logs = append([]model.LogEntry{*entry}, logs...)
		if len(logs) > r.limit {
			logs = logs[:r.limit]
		}
		return c.save(ctx, logs)
	})
}
