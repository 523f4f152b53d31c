package inventory

import "errors"

var (
	// ErrCancelled is returned when the user declines a confirmation or
	// abandons a prompt. Nothing is sent to the gateway.
	ErrCancelled = errors.New("cancelled")
	// ErrNoCrops is returned by AddSampleOrder when there is no crop to order.
	ErrNoCrops = errors.New("add a crop before creating sample orders")
	// ErrNotFound is returned when an id is not in the mirror.
	ErrNotFound = errors.New("not found")
	// ErrInit wraps a failure to load either collection at startup.
	ErrInit = errors.New("failed to load data; refresh to try again")

	ErrUnknownAction = errors.New("unknown action")
)
