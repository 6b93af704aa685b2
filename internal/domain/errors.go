package domain

import "errors"

// Error kinds shared by every engine. Callers classify failures with errors.Is;
// messages are attached by wrapping, e.g. fmt.Errorf("%w: event is full", ErrConflict).
var (
	// ErrNotFound is returned when a referenced event, team, invitation, participant or notification does not exist.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest is returned when a request is structurally invalid for the current state.
	ErrBadRequest = errors.New("bad request")
	// ErrConflict is returned when a capacity, uniqueness or registration-window constraint fails,
	// including a uniqueness violation surfaced at write time after a lost race.
	ErrConflict = errors.New("conflict")
	// ErrForbidden is returned by the transport layer when the caller may not perform the operation.
	ErrForbidden = errors.New("forbidden")
)
