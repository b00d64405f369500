package repository

import (
	"context"

	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/store"
)

// OrderRepository order collection access
type OrderRepository interface {
	// List returns orders in stored order with null fields defaulted.
	List(ctx context.Context) ([]model.Order, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	// Create stores the order at the head of the collection.
	Create(ctx context.Context, order *model.Order) error
	Update(ctx context.Context, id string, fn func(*model.Order) error) (*model.Order, error)
	// SaveAll replaces the whole collection.
	SaveAll(ctx context.Context, orders []model.Order) error
}

type orderRepo struct {
	c collection[model.Order]
}

// NewOrderRepo creates an OrderRepository.
func NewOrderRepo(st store.Store, tx store.Transactor) OrderRepository {
	return &orderRepo{c: collection[model.Order]{
		st:   st,
		tx:   tx,
		key:  store.KeyOrders,
		idOf: func(o *model.Order) string { return o.ID },
	}}
}

func (r *orderRepo) load(ctx context.Context) ([]model.Order, error) {
	return loadOrders(ctx, r.c)
}

func loadOrders(ctx context.Context, c collection[model.Order]) ([]model.Order, error) {
	orders, _, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Normalize()
	}
	return orders, nil
}

func (r *orderRepo) List(ctx context.Context) ([]model.Order, error) {
	return r.load(ctx)
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	i := r.c.index(orders, id)
	if i < 0 {
		return nil, ErrRecordNotFound
	}
	return &orders[i], nil
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	order.Normalize()
	return r.c.write(ctx, func(c collection[model.Order]) error {
		orders, err := loadOrders(ctx, c)
		if err != nil {
			return err
		}
		return c.save(ctx, append([]model.Order{*order}, orders...))
	})
}

func (r *orderRepo) Update(ctx context.Context, id string, fn func(*model.Order) error) (*model.Order, error) {
	return r.c.update(ctx, id, func(o *model.Order) error {
		o.Normalize()
		return fn(o)
	})
}

func (r *orderRepo) SaveAll(ctx context.Context, orders []model.Order) error {
	return r.c.replace(ctx, orders)
}
