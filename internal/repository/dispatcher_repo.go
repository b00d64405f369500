package repository

import (
	"context"

	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/store"
)

// DispatcherRepository dispatcher collection access; an unwritten
// collection reads as the seed list
type DispatcherRepository interface {
	List(ctx context.Context) ([]model.Dispatcher, error)
	GetByID(ctx context.Context, id string) (*model.Dispatcher, error)
	FindByPhone(ctx context.Context, phone string) (*model.Dispatcher, error)
	Update(ctx context.Context, id string, fn func(*model.Dispatcher) error) (*model.Dispatcher, error)
	SaveAll(ctx context.Context, dispatchers []model.Dispatcher) error
}

type dispatcherRepo struct {
	c collection[model.Dispatcher]
}

// NewDispatcherRepo creates a DispatcherRepository.
func NewDispatcherRepo(st store.Store, tx store.Transactor) DispatcherRepository {
	return &dispatcherRepo{c: collection[model.Dispatcher]{
		st:   st,
		tx:   tx,
		key:  store.KeyDispatchers,
		idOf: func(d *model.Dispatcher) string { return d.ID },
	}}
}

func (r *dispatcherRepo) List(ctx context.Context) ([]model.Dispatcher, error) {
	return loadDispatchers(ctx, r.c)
}

func loadDispatchers(ctx context.Context, c collection[model.Dispatcher]) ([]model.Dispatcher, error) {
	disps, found, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return model.SeedDispatchers(), nil
	}
	return disps, nil
}

func (r *dispatcherRepo) GetByID(ctx context.Context, id string) (*model.Dispatcher, error) {
	disps, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	i := r.c.index(disps, id)
	if i < 0 {
		return nil, ErrRecordNotFound
	}
	return &disps[i], nil
}

func (r *dispatcherRepo) FindByPhone(ctx context.Context, phone string) (*model.Dispatcher, error) {
	disps, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range disps {
		if disps[i].Phone == phone {
			return &disps[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

// Update needs the seed applied first, so it cannot reuse collection.update.
func (r *dispatcherRepo) Update(ctx context.Context, id string, fn func(*model.Dispatcher) error) (*model.Dispatcher, error) {
	var out model.Dispatcher
	err := r.c.write(ctx, func(c collection[model.Dispatcher]) error {
		disps, err := loadDispatchers(ctx, c)
		if err != nil {
			return err
		}
		i := c.index(disps, id)
		if i < 0 {
			return ErrRecordNotFound
		}
		if err := fn(&disps[i]); err != nil {
			return err
		}
		out = disps[i]
		return c.save(ctx, disps)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *dispatcherRepo) SaveAll(ctx context.Context, dispatchers []model.Dispatcher) error {
	return r.c.replace(ctx, dispatchers)
}
