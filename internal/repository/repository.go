package repository

import (
	"context"
	"errors"

	"dispetcher/backend/internal/store"
)

// ErrRecordNotFound no entity with the requested ID in its collection
var ErrRecordNotFound = errors.New("record not found")

// DefaultLogLimit caps the activity log.
const DefaultLogLimit = 500

// Repository aggregates the collection repositories.
type Repository struct {
	Order           OrderRepository
	Employee        EmployeeRepository
	Dispatcher      DispatcherRepository
	Customer        CustomerRepository
	Log             LogRepository
	Chat            ChatRepository
	OfflineLocation OfflineLocationRepository

	tx       store.Transactor
	logLimit int
}

// NewRepository builds the repositories over backend. logLimit <= 0 uses DefaultLogLimit.
func NewRepository(backend store.Backend, logLimit int) *Repository {
	return newRepository(backend, backend, logLimit)
}

func newRepository(st store.Store, tx store.Transactor, logLimit int) *Repository {
	if logLimit <= 0 {
		logLimit = DefaultLogLimit
	}
	return &Repository{
		Order:           NewOrderRepo(st, tx),
		Employee:        NewEmployeeRepo(st, tx),
		Dispatcher:      NewDispatcherRepo(st, tx),
		Customer:        NewCustomerRepo(st, tx),
		Log:             NewLogRepo(st, tx, logLimit),
		Chat:            NewChatRepo(st, tx),
		OfflineLocation: NewOfflineLocationRepo(st, tx),
		tx:              tx,
		logLimit:        logLimit,
	}
}

// Atomic runs fn with repositories bound to one store unit: every write made
// through tx commits together or not at all. Nested calls run inline.
// Writes made outside Atomic each run as a unit of their own.
func (r *Repository) Atomic(ctx context.Context, fn func(tx *Repository) error) error {
	if r.tx == nil {
		return fn(r)
	}
	return r.tx.Atomic(ctx, func(s store.Store) error {
		return fn(newRepository(s, nil, r.logLimit))
	})
}
