package parking

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockSpotRepository struct {
	mock.Mock
}

func (m *mockSpotRepository) NextAvailable(ctx context.Context, category VehicleCategory) (int, error) {
	args := m.Called(ctx, category)
	return args.Int(0), args.Error(1)
}

func (m *mockSpotRepository) UpdateSpot(ctx context.Context, spot ParkingSpot) error {
	return m.Called(ctx, spot).Error(0)
}

func (m *mockSpotRepository) ListSpots(ctx context.Context) ([]ParkingSpot, error) {
	args := m.Called(ctx)
	spots, _ := args.Get(0).([]ParkingSpot)
	return spots, args.Error(1)
}

type mockTicketRepository struct {
	mock.Mock
}

func (m *mockTicketRepository) SaveTicket(ctx context.Context, ticket *Ticket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *mockTicketRepository) ActiveTicket(ctx context.Context, registration string) (*Ticket, error) {
	args := m.Called(ctx, registration)
	ticket, _ := args.Get(0).(*Ticket)
	return ticket, args.Error(1)
}

func (m *mockTicketRepository) UpdateTicket(ctx context.Context, ticket *Ticket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *mockTicketRepository) CountCompletedVisits(ctx context.Context, registration string) (int, error) {
	args := m.Called(ctx, registration)
	return args.Int(0), args.Error(1)
}

func (m *mockTicketRepository) LastTicket(ctx context.Context, registration string) (*Ticket, error) {
	args := m.Called(ctx, registration)
	ticket, _ := args.Get(0).(*Ticket)
	return ticket, args.Error(1)
}

type failingReader struct {
	err error
}

func (r failingReader) ReadVehicleRegistration(context.Context) (string, error) {
	return "", r.err
}
