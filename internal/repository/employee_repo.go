package repository

import (
	"context"

	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/store"
)

// EmployeeRepository employee collection access
type EmployeeRepository interface {
	List(ctx context.Context) ([]model.Employee, error)
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	FindByPhone(ctx context.Context, phone string) (*model.Employee, error)
	// Create appends emp unless its ID is taken; created reports which.
	Create(ctx context.Context, emp *model.Employee) (created bool, err error)
	Update(ctx context.Context, id string, fn func(*model.Employee) error) (*model.Employee, error)
}

type employeeRepo struct {
	c collection[model.Employee]
}

// NewEmployeeRepo creates an EmployeeRepository.
func NewEmployeeRepo(st store.Store, tx store.Transactor) EmployeeRepository {
	return &employeeRepo{c: collection[model.Employee]{
		st:   st,
		tx:   tx,
		key:  store.KeyEmployees,
		idOf: func(e *model.Employee) string { return e.ID },
	}}
}

func (r *employeeRepo) List(ctx context.Context) ([]model.Employee, error) {
	emps, _, err := r.c.all(ctx)
	return emps, err
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	return r.c.get(ctx, id)
}

func (r *employeeRepo) FindByPhone(ctx context.Context, phone string) (*model.Employee, error) {
	emps, _, err := r.c.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range emps {
		if emps[i].Phone == phone {
			return &emps[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

func (r *employeeRepo) Create(ctx context.Context, emp *model.Employee) (bool, error) {
	created := false
	err := r.c.write(ctx, func(c collection[model.Employee]) error {
		emps, _, err := c.all(ctx)
		if err != nil {
			return err
		}
		if c.index(emps, emp.ID) >= 0 {
			return nil
		}
		created = true
		return c.save(ctx, append(emps, *emp))
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *employeeRepo) Update(ctx context.Context, id string, fn func(*model.Employee) error) (*model.Employee, error) {
	return r.c.update(ctx, id, fn)
}
