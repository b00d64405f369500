package repository

import (
	"context"

	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/store"
)

// CustomerRepository customer collection access
type CustomerRepository interface {
	List(ctx context.Context) ([]model.Customer, error)
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	// Create appends c unless a customer with the same name exists; created reports which.
	Create(ctx context.Context, c *model.Customer) (created bool, err error)
	Update(ctx context.Context, id string, fn func(*model.Customer) error) (*model.Customer, error)
}

type customerRepo struct {
	c collection[model.Customer]
}

// NewCustomerRepo creates a CustomerRepository.
func NewCustomerRepo(st store.Store, tx store.Transactor) CustomerRepository {
	return &customerRepo{c: collection[model.Customer]{
		st:   st,
		tx:   tx,
		key:  store.KeyCustomers,
		idOf: func(c *model.Customer) string { return c.ID },
	}}
}

func (r *customerRepo) List(ctx context.Context) ([]model.Customer, error) {
	list, _, err := r.c.all(ctx)
	return list, err
}

func (r *customerRepo) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	return r.c.get(ctx, id)
}

func (r *customerRepo) Create(ctx context.Context, cust *model.Customer) (bool, error) {
	created := false
	err := r.c.write(ctx, func(c collection[model.Customer]) error {
		list, _, err := c.all(ctx)
		if err != nil {
			return err
		}
		for i := range list {
			if list[i].Name == cust.Name {
				return nil
			}
		}
		created = true
		return c.save(ctx, append(list, *cust))
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *customerRepo) Update(ctx context.Context, id string, fn func(*model.Customer) error) (*model.Customer, error) {
	return r.c.update(ctx, id, fn)
}
