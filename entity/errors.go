package entity

import "errors"

var (
	ErrVenueNotFound    = errors.New("venue not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrCategoryNotFound = errors.New("ticket category not found")
	ErrTicketNotFound   = errors.New("ticket not found")
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidQuantity       = errors.New("seat quantity must be greater than zero")
	ErrInsufficientCapacity  = errors.New("insufficient available capacity")
	ErrReservationExpired    = errors.New("reservation has expired")
	ErrPaymentDeclined       = errors.New("payment declined")
	ErrNoCategoriesDefined   = errors.New("event has no ticket categories")
	ErrEventPublished        = errors.New("event is already published")
	ErrVenueCapacityExceeded = errors.New("ticket capacity exceeds venue capacity")
	ErrVenueDateConflict     = errors.New("venue already has an event on this date")
)

// ErrInternal hides unexpected faults from callers; the cause is logged at
// the service boundary.
var ErrInternal = errors.New("internal error")
