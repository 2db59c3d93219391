package food

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("food record not found")
	// ErrStore is the umbrella for faults reported by the document store.
	ErrStore = errors.New("store error")
	// ErrQuery indicates a malformed or unsupported query.
	ErrQuery = errors.New("invalid query")
	// ErrConflict indicates a record with the same id already exists.
	ErrConflict = fmt.Errorf("%w: record already exists", ErrStore)
	// ErrMissingPartitionKey is returned for writes without a food group.
	ErrMissingPartitionKey = fmt.Errorf("%w: foodGroup is required", ErrStore)
)

// StoreError carries the store operation and status code of a failure.
type StoreError struct {
	Op     string
	Status int
	Err    error
}

func (e *StoreError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports ErrStore for every StoreError and maps well-known statuses onto
// the package sentinels.
func (e *StoreError) Is(target error) bool {
	switch target {
	case ErrStore:
		return true
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrQuery:
		return e.Status == http.StatusBadRequest
	}
	return false
}

// NewStoreError wraps err for op with the store's status code.
func NewStoreError(op string, status int, err error) error {
	return &StoreError{Op: op, Status: status, Err: err}
}
