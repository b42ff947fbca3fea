package parking

import "context"

// RegistrationReader supplies the registration of the vehicle being handled,
// typically typed at a console or taken from a request body.
type RegistrationReader interface {
	ReadVehicleRegistration(ctx context.Context) (string, error)
}

// Registration is a RegistrationReader for a value already known.
type Registration string

func (r Registration) ReadVehicleRegistration(context.Context) (string, error) {
	return string(r), nil
}

// SpotRepository persists the fixed pool of spots.
type SpotRepository interface {
	// NextAvailable returns the lowest free spot number of category, or
	// ErrNoSpotAvailable.
	NextAvailable(ctx context.Context, category VehicleCategory) (int, error)
	UpdateSpot(ctx context.Context, spot ParkingSpot) error
	ListSpots(ctx context.Context) ([]ParkingSpot, error)
}

// TicketRepository persists tickets. Implementations must not hand out
// pointers to their internal state.
type TicketRepository interface {
	// SaveTicket stores a new ticket and sets its ID.
	SaveTicket(ctx context.Context, ticket *Ticket) error
	// ActiveTicket returns the open ticket of registration, or ErrTicketNotFound.
	ActiveTicket(ctx context.Context, registration string) (*Ticket, error)
	UpdateTicket(ctx context.Context, ticket *Ticket) error
	CountCompletedVisits(ctx context.Context, registration string) (int, error)
	// LastTicket returns the most recent ticket of registration, or ErrTicketNotFound.
	LastTicket(ctx context.Context, registration string) (*Ticket, error)
}
