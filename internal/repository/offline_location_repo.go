package repository

import (
	"context"

	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/store"
)

// OfflineLocationRepository buffered GPS fixes
type OfflineLocationRepository interface {
	List(ctx context.Context) ([]model.OfflineLocation, error)
	Append(ctx context.Context, loc *model.OfflineLocation) error
	Clear(ctx context.Context) error
}

type offlineLocationRepo struct {
	c collection[model.OfflineLocation]
}

// NewOfflineLocationRepo creates an OfflineLocationRepository.
func NewOfflineLocationRepo(st store.Store, tx store.Transactor) OfflineLocationRepository {
	return &offlineLocationRepo{c: collection[model.OfflineLocation]{
		st:   st,
		tx:   tx,
		key:  store.KeyOfflineLocations,
		idOf: func(l *model.OfflineLocation) string { return l.WorkerID + "@" + l.Timestamp },
	}}
}

func (r *offlineLocationRepo) List(ctx context.Context) ([]model.OfflineLocation, error) {
	locs, _, err := r.c.all(ctx)
	return locs, err
}

func (r *offlineLocationRepo) Append(ctx context.Context, loc *model.OfflineLocation) error {
	return r.c.write(ctx, func(c collection[model.OfflineLocation]) error {
		locs, _, err := c.all(ctx)
		if err != nil {
			return err
		}
		return c.save(ctx, append(locs, *loc))
	})
}

func (r *offlineLocationRepo) Clear(ctx context.Context) error {
	return r.c.replace(ctx, nil)
}
