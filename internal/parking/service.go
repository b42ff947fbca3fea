package parking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"parking-system/internal/logging"
)

type EntryStatus int

const (
	EntryParked EntryStatus = iota + 1
	EntryAlreadyParked
	EntryNoSpotAvailable
)

func (s EntryStatus) String() string {
	switch s {
	case EntryParked:
		return "parked"
	case EntryAlreadyParked:
		return "already_parked"
	case EntryNoSpotAvailable:
		return "no_spot_available"
	}
	return fmt.Sprintf("EntryStatus(%d)", int(s))
}

type EntryResult struct {
	Status EntryStatus
	// Ticket is the new ticket, or the existing one for EntryAlreadyParked.
	Ticket *Ticket
}

type ExitResult struct {
	Ticket      *Ticket
	Discounted  bool
	PriorVisits int
}

// Operator is what the shell and the HTTP server drive.
type Operator interface {
	ProcessIncomingVehicle(ctx context.Context, reader RegistrationReader, category VehicleCategory) (EntryResult, error)
	ProcessExitingVehicle(ctx context.Context, reader RegistrationReader) (ExitResult, error)
	Spots(ctx context.Context) ([]ParkingSpot, error)
	LastTicket(ctx context.Context, registration string) (*Ticket, error)
}

// ParkingService runs the entry and exit workflows on top of the repositories.
type ParkingService struct {
	spots     SpotRepository
	tickets   TicketRepository
	allocator *SpotAllocator
	fares     *FareCalculator
	locker    Locker
	now       func() time.Time
}

type Option func(*ParkingService)

func WithClock(now func() time.Time) Option {
	return func(s *ParkingService) {
		s.now = now
	}
}

func WithLocker(l Locker) Option {
	return func(s *ParkingService) {
		s.locker = l
	}
}

func NewParkingService(spots SpotRepository, tickets TicketRepository, fares *FareCalculator, opts ...Option) *ParkingService {
	s := &ParkingService{
		spots:     spots,
		tickets:   tickets,
		allocator: NewSpotAllocator(spots),
		fares:     fares,
		locker:    NewKeyedMutex(),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessIncomingVehicle parks the vehicle read from reader on a free spot of
// category. A vehicle that is already parked, or a facility with no free spot,
// is reported through the result status with no error and nothing written.
func (s *ParkingService) ProcessIncomingVehicle(ctx context.Context, reader RegistrationReader, category VehicleCategory) (EntryResult, error) {
	registration, err := readRegistration(ctx, reader)
	if err != nil {
		return EntryResult{}, err
	}

	unlock, err := s.locker.Lock(ctx, vehicleLockKey(registration))
	if err != nil {
		return EntryResult{}, fmt.Errorf("lock vehicle %s: %w", registration, err)
	}
	defer unlock()

	active, err := s.tickets.ActiveTicket(ctx, registration)
	switch {
	case err == nil:
		logging.Warn(ctx, "vehicle is already parked",
			"registration", registration,
			"spot", active.Spot.Number,
		)
		return EntryResult{Status: EntryAlreadyParked, Ticket: active}, nil
	case !errors.Is(err, ErrTicketNotFound):
		return EntryResult{}, fmt.Errorf("%w: active ticket for %s: %w", ErrPersistence, registration, err)
	}

	unlockSpots, err := s.locker.Lock(ctx, spotsLockKey(category))
	if err != nil {
		return EntryResult{}, fmt.Errorf("lock %s spots: %w", category, err)
	}
	defer unlockSpots()

	spot, ok, err := s.allocator.FindAvailableSpot(ctx, category)
	if err != nil {
		return EntryResult{}, err
	}
	if !ok {
		logging.Warn(ctx, "no parking spot available",
			"registration", registration,
			"category", category.String(),
		)
		return EntryResult{Status: EntryNoSpotAvailable}, nil
	}

	spot.Occupy()
	ticket := NewTicket(spot, registration, s.now())

	if err := s.spots.UpdateSpot(ctx, spot); err != nil {
		return EntryResult{}, fmt.Errorf("%w: occupy spot %d: %w", ErrPersistence, spot.Number, err)
	}

	if err := s.tickets.SaveTicket(ctx, ticket); err != nil {
		spot.Release()
		if rbErr := s.spots.UpdateSpot(ctx, spot); rbErr != nil {
			logging.Error(ctx, "failed to release spot after ticket save failure",
				"spot", spot.Number,
				"error", rbErr,
			)
		}
		return EntryResult{}, fmt.Errorf("%w: save ticket for %s: %w", ErrPersistence, registration, err)
	}

	logging.Info(ctx, "vehicle parked",
		"registration", registration,
		"spot", spot.Number,
		"category", category.String(),
		"ticket_id", ticket.ID,
	)

	return EntryResult{Status: EntryParked, Ticket: ticket}, nil
}

// ProcessExitingVehicle closes the active ticket of the vehicle read from
// reader, prices it and frees its spot. Vehicles with at least one earlier
// completed visit get the loyalty discount.
func (s *ParkingService) ProcessExitingVehicle(ctx context.Context, reader RegistrationReader) (ExitResult, error) {
	registration, err := readRegistration(ctx, reader)
	if err != nil {
		return ExitResult{}, err
	}

	unlock, err := s.locker.Lock(ctx, vehicleLockKey(registration))
	if err != nil {
		return ExitResult{}, fmt.Errorf("lock vehicle %s: %w", registration, err)
	}
	defer unlock()

	active, err := s.tickets.ActiveTicket(ctx, registration)
	if errors.Is(err, ErrTicketNotFound) {
		return ExitResult{}, fmt.Errorf("%w for vehicle %s", ErrNoActiveTicket, registration)
	}
	if err != nil {
		return ExitResult{}, fmt.Errorf("%w: active ticket for %s: %w", ErrPersistence, registration, err)
	}

	priorVisits, err := s.tickets.CountCompletedVisits(ctx, registration)
	if err != nil {
		return ExitResult{}, fmt.Errorf("%w: count visits of %s: %w", ErrPersistence, registration, err)
	}

	closed := *active
	closed.Close(s.now())

	price, err := s.fares.CalculateFare(&closed)
	if err != nil {
		return ExitResult{}, fmt.Errorf("price ticket %d: %w", closed.ID, err)
	}

	discounted := priorVisits >= 1
	if discounted {
		price = s.fares.ApplyLoyaltyDiscount(price)
	}
	closed.SetPrice(price)

	if err := s.tickets.UpdateTicket(ctx, &closed); err != nil {
		return ExitResult{}, fmt.Errorf("%w: close ticket %d: %w", ErrPersistence, closed.ID, err)
	}

	closed.Spot.Release()
	if err := s.spots.UpdateSpot(ctx, closed.Spot); err != nil {
		if rbErr := s.tickets.UpdateTicket(ctx, active); rbErr != nil {
			logging.Error(ctx, "failed to reopen ticket after spot release failure",
				"ticket_id", active.ID,
				"error", rbErr,
			)
		}
		return ExitResult{}, fmt.Errorf("%w: release spot %d: %w", ErrPersistence, closed.Spot.Number, err)
	}

	logging.Info(ctx, "vehicle exited",
		"registration", registration,
		"spot", closed.Spot.Number,
		"price", closed.Price.StringFixed(PriceScale),
		"discounted", discounted,
	)

	return ExitResult{
		Ticket:      &closed,
		Discounted:  discounted,
		PriorVisits: priorVisits,
	}, nil
}

func (s *ParkingService) Spots(ctx context.Context) ([]ParkingSpot, error) {
	spots, err := s.spots.ListSpots(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list spots: %w", ErrPersistence, err)
	}
	return spots, nil
}

// LastTicket returns the most recent ticket of registration, active or not.
func (s *ParkingService) LastTicket(ctx context.Context, registration string) (*Ticket, error) {
	ticket, err := s.tickets.LastTicket(ctx, registration)
	if errors.Is(err, ErrTicketNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: last ticket for %s: %w", ErrPersistence, registration, err)
	}
	return ticket, nil
}

func readRegistration(ctx context.Context, reader RegistrationReader) (string, error) {
	if reader == nil {
		return "", fmt.Errorf("%w: no registration reader", ErrInput)
	}

	registration, err := reader.ReadVehicleRegistration(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: read vehicle registration: %w", ErrInput, err)
	}

	registration = strings.TrimSpace(registration)
	if registration == "" {
		return "", fmt.Errorf("%w: invalid input provided", ErrInput)
	}
	return registration, nil
}
