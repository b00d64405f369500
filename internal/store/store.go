// Package store persists keyed JSON collections.
//
// Every collection is a JSON array written whole on each save. Backends differ
// in durability only; all of them honour the same Load/Save contract.
package store

import (
	"context"
	"errors"
)

// Collection keys
const (
	KeyEmployees        = "employees"
	KeyOrders           = "orders"
	KeyDispatchers      = "dispatchers"
	KeyCustomers        = "customers"
	KeyLogs             = "logs"
	KeyChats            = "chats"
	KeyOfflineLocations = "offline_locations"
)

// ErrEmptyKey is returned when a collection key is blank.
var ErrEmptyKey = errors.New("store: empty collection key")

// Store reads and writes whole collections.
type Store interface {
	// Load decodes the collection under key into dst. found is false when the
	// key was never written; dst is left untouched in that case.
	Load(ctx context.Context, key string, dst any) (found bool, err error)
	// Save replaces the collection under key with v.
	Save(ctx context.Context, key string, v any) error
}

// Transactor runs a multi-collection read-modify-write as one unit.
// Either every Save made through the Store passed to fn commits, or none does.
// A unit whose collections changed underneath it fails with
// pkg/errors.ErrOptimisticLock.
type Transactor interface {
	Atomic(ctx context.Context, fn func(Store) error) error
}

// Backend is a Store that also supports atomic units.
type Backend interface {
	Store
	Transactor
}
