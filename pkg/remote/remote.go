// Package remote talks to the journal server that owns the operations.
package remote

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/tradelog/pkg/operation"
)

// ErrNotFound is returned when the requested operation does not exist on the
// server.
var ErrNotFound = errors.New("remote: operation not found")

// TransportError wraps network failures and unexpected server responses.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote: %s: http %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("remote: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Service is the journal server contract the client depends on.
type Service interface {
	// List returns every operation grouped by expiration.
	List(ctx context.Context) (map[operation.GroupKey][]operation.Operation, error)
	// Create persists a draft with its images and returns the stored
	// operation. Rejected input is reported as *operation.ValidationError.
	Create(ctx context.Context, draft operation.Draft, images []operation.Blob) (operation.Operation, error)
	// Delete removes an operation. ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}
