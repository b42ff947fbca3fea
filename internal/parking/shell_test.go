package parking

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v4"
)

type fakeOperator struct {
	entries      []string
	entryResult  EntryResult
	entryErr     error
	exitResult   ExitResult
	exitErr      error
	spots        []ParkingSpot
	lastTicket   *Ticket
	lastErr      error
	lastCategory VehicleCategory
}

func (f *fakeOperator) ProcessIncomingVehicle(ctx context.Context, reader RegistrationReader, category VehicleCategory) (EntryResult, error) {
	reg, err := reader.ReadVehicleRegistration(ctx)
	if err != nil {
		return EntryResult{}, err
	}
	f.entries = append(f.entries, reg)
	f.lastCategory = category
	return f.entryResult, f.entryErr
}

func (f *fakeOperator) ProcessExitingVehicle(ctx context.Context, reader RegistrationReader) (ExitResult, error) {
	reg, err := reader.ReadVehicleRegistration(ctx)
	if err != nil {
		return ExitResult{}, err
	}
	f.entries = append(f.entries, reg)
	return f.exitResult, f.exitErr
}

func (f *fakeOperator) Spots(context.Context) ([]ParkingSpot, error) {
	return f.spots, nil
}

func (f *fakeOperator) LastTicket(context.Context, string) (*Ticket, error) {
	return f.lastTicket, f.lastErr
}

func runShell(t *testing.T, op Operator, input string) string {
	t.Helper()

	telemetry := newTestTelemetry(t)
	var out bytes.Buffer
	NewShell(op, telemetry.provider, strings.NewReader(input), &out).Run(context.Background())
	return out.String()
}

func TestShellWelcomeAndQuit(t *testing.T) {
	out := runShell(t, &fakeOperator{}, "quit\nstatus\n")

	assert.Contains(t, out, "Welcome to Parking System!")
	assert.Contains(t, out, "Exiting from the system!")
	assert.NotContains(t, out, "Spot No.")
}

func TestShellEnterWithInlineRegistration(t *testing.T) {
	spot := NewParkingSpot(3, CategoryBike)
	spot.Occupy()
	op := &fakeOperator{entryResult: EntryResult{
		Status: EntryParked,
		Ticket: NewTicket(spot, "AB-1", time.Now()),
	}}

	out := runShell(t, op, "enter bike AB-1\nquit\n")

	assert.Equal(t, []string{"AB-1"}, op.entries)
	assert.Equal(t, CategoryBike, op.lastCategory)
	assert.Contains(t, out, "Generated Ticket and saved in DB")
	assert.Contains(t, out, "Please park your vehicle in spot number: 3")
}

func TestShellEnterPromptsForRegistration(t *testing.T) {
	op := &fakeOperator{entryResult: EntryResult{Status: EntryNoSpotAvailable}}

	out := runShell(t, op, "enter 1\nXYZ-9\nquit\n")

	assert.Equal(t, []string{"XYZ-9"}, op.entries)
	assert.Equal(t, CategoryCar, op.lastCategory)
	assert.Contains(t, out, "Please type the vehicle registration number and press enter key")
	assert.Contains(t, out, "Parking slots might be full")
}

func TestShellEnterAlreadyParked(t *testing.T) {
	spot := NewParkingSpot(2, CategoryCar)
	op := &fakeOperator{entryResult: EntryResult{
		Status: EntryAlreadyParked,
		Ticket: NewTicket(spot, "AB-1", time.Now()),
	}}

	out := runShell(t, op, "enter car AB-1\n")

	assert.Contains(t, out, "Vehicle AB-1 is already parked in spot number: 2")
}

func TestShellEnterInvalidCategory(t *testing.T) {
	op := &fakeOperator{}

	out := runShell(t, op, "enter truck AB-1\n")

	assert.Empty(t, op.entries)
	assert.Contains(t, out, "Incorrect input provided")
}

func TestShellExit(t *testing.T) {
	ticket := NewTicket(NewParkingSpot(1, CategoryCar), "AB-1", time.Now().Add(-time.Hour))
	ticket.Close(time.Now())
	ticket.SetPrice(decimal.RequireFromString("1.42"))
	op := &fakeOperator{exitResult: ExitResult{Ticket: ticket, Discounted: true, PriorVisits: 1}}

	out := runShell(t, op, "exit AB-1\n")

	assert.Contains(t, out, "Happy to see you again!")
	assert.Contains(t, out, "Please pay the parking fare: 1.42")
}

func TestShellExitFailure(t *testing.T) {
	op := &fakeOperator{exitErr: ErrNoActiveTicket}

	out := runShell(t, op, "exit AB-1\n")

	assert.Contains(t, out, "Unable to process exiting vehicle: no active ticket")
}

func TestShellExitWithoutInput(t *testing.T) {
	op := &fakeOperator{}

	out := runShell(t, op, "exit\n")

	assert.Empty(t, op.entries)
	assert.Contains(t, out, "Unable to process exiting vehicle: no input")
}

func TestShellStatus(t *testing.T) {
	op := &fakeOperator{spots: NewSpotPool(1, 1)}

	out := runShell(t, op, "status\n")

	assert.Contains(t, out, "Spot No.\tType\tAvailable")
	assert.Contains(t, out, "1\t\tCAR\ttrue")
	assert.Contains(t, out, "2\t\tBIKE\ttrue")
}

func TestShellTicket(t *testing.T) {
	ticket := NewTicket(NewParkingSpot(1, CategoryCar), "AB-1", time.Now())
	ticket.ID = 12
	ticket.OutTime = null.Time{}

	out := runShell(t, &fakeOperator{lastTicket: ticket}, "ticket AB-1\n")
	assert.Contains(t, out, "Ticket 12\tAB-1\tspot 1 (CAR)")
	assert.Contains(t, out, "out -")

	out = runShell(t, &fakeOperator{lastErr: ErrTicketNotFound}, "ticket AB-1\n")
	assert.Contains(t, out, "Not found")
}

func TestShellUnknownCommand(t *testing.T) {
	out := runShell(t, &fakeOperator{}, "park AB-1\n")

	assert.Contains(t, out, "Unknown command: park")
}
