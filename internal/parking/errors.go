package parking

import "errors"

var (
	// ErrInput means the vehicle registration or selection could not be read.
	ErrInput = errors.New("input error")
	// ErrInvalidArgument is returned for fare requests that cannot be priced.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPersistence wraps any repository failure surfaced by the service.
	ErrPersistence = errors.New("persistence failure")
	// ErrNoActiveTicket is returned when a vehicle exits without having entered.
	ErrNoActiveTicket = errors.New("no active ticket")

	// Repository sentinels.
	ErrNoSpotAvailable = errors.New("no spot available")
	ErrSpotNotFound    = errors.New("spot not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrDuplicateTicket = errors.New("vehicle already has an active ticket")
)
