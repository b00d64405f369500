package errors

import "errors"

// ErrOptimisticLock the record was changed by another writer since it was read
var ErrOptimisticLock = errors.New("record was modified by another operation, reload and retry")
