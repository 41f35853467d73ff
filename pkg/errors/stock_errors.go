package custom_error

import "fmt"

// Typed failures of the stock mutation and approval workflows. Callers branch
// on the concrete type: VersionConflict and InsufficientStock are recoverable
// (refetch-and-retry or correct the delta), NotFound and AlreadyProcessed are
// terminal for the invocation.

type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found or archived", e.Resource, e.ID)
}

type VersionConflictError struct {
	ItemID          int
	ExpectedVersion int
	CurrentVersion  int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf(
		"version conflict on item %d: expected %d, current %d",
		e.ItemID, e.ExpectedVersion, e.CurrentVersion,
	)
}

type InsufficientStockError struct {
	ItemID    int
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for item %d: %d available, %d requested",
		e.ItemID, e.Available, e.Requested,
	)
}

type AlreadyProcessedError struct {
	Resource string
	ID       int
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("%s %d has already been processed", e.Resource, e.ID)
}

func NewNotFound(resource string, id int) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func NewAlreadyProcessed(resource string, id int) *AlreadyProcessedError {
	return &AlreadyProcessedError{Resource: resource, ID: id}
}
