package service

import "errors"

// Business-rule failures. All of these mean the caller's input or the
// current state rejected the operation; none are transient, none are
// retried. The HTTP layer maps each to a status code.
var (
	// ErrValidation covers malformed requests: unknown payment method,
	// account billing without a member, empty or non-positive lines.
	ErrValidation = errors.New("validation error")

	// ErrNotFound covers unknown items, orders, tabs and members.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when an order references an inactive
	// catalog item.
	ErrUnavailable = errors.New("unavailable")

	// ErrStateConflict is returned for illegal order status transitions.
	ErrStateConflict = errors.New("state conflict")

	// ErrAlreadySettled is returned when a settlement payload is
	// requested for a tab with no outstanding balance.
	ErrAlreadySettled = errors.New("already settled")
)
