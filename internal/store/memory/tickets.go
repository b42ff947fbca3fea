package memory

import (
	"context"
	"fmt"
	"sync"

	"parking-system/internal/parking"
)

// TicketStore keeps tickets in insertion order. Tickets are copied on the way
// in and out so callers never share state with the store.
type TicketStore struct {
	mu      sync.RWMutex
	nextID  int64
	tickets []parking.Ticket
}

func NewTicketStore() *TicketStore {
	return &TicketStore{nextID: 1}
}

func (s *TicketStore) SaveTicket(_ context.Context, ticket *parking.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket.IsActive() {
		if _, ok := s.activeIndex(ticket.Registration); ok {
			return fmt.Errorf("%w: %s", parking.ErrDuplicateTicket, ticket.Registration)
		}
	}

	ticket.ID = s.nextID
	s.nextID++
	s.tickets = append(s.tickets, *ticket)
	return nil
}

func (s *TicketStore) ActiveTicket(_ context.Context, registration string) (*parking.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.activeIndex(registration)
	if !ok {
		return nil, parking.ErrTicketNotFound
	}
	ticket := s.tickets[i]
	return &ticket, nil
}

func (s *TicketStore) UpdateTicket(_ context.Context, ticket *parking.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tickets {
		if s.tickets[i].ID == ticket.ID {
			s.tickets[i] = *ticket
			return nil
		}
	}
	return fmt.Errorf("%w: id %d", parking.ErrTicketNotFound, ticket.ID)
}

func (s *TicketStore) CountCompletedVisits(_ context.Context, registration string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.tickets {
		if t.Registration == registration && !t.IsActive() {
			count++
		}
	}
	return count, nil
}

func (s *TicketStore) LastTicket(_ context.Context, registration string) (*parking.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.tickets) - 1; i >= 0; i-- {
		if s.tickets[i].Registration == registration {
			ticket := s.tickets[i]
			return &ticket, nil
		}
	}
	return nil, parking.ErrTicketNotFound
}

func (s *TicketStore) activeIndex(registration string) (int, bool) {
	for i := range s.tickets {
		if s.tickets[i].Registration == registration && s.tickets[i].IsActive() {
			return i, true
		}
	}
	return 0, false
}
