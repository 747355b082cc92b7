package ledger

import "fmt"

// ValidationError reports malformed or out-of-policy input. It is returned
// before any write is attempted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports a referenced id that is absent or not owned by the
// caller. It is returned before any write is attempted.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// ConflictError blocks deleting an entity that existing transactions still
// reference. Count is the number of blocking transactions.
type ConflictError struct {
	Entity string
	Count  int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot delete %s with %d associated transactions", e.Entity, e.Count)
}

// StorageError wraps a failure inside the atomic unit. The store rolls the
// whole unit back, so no partial effect persists.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "storage error: " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }
