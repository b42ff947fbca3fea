package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const shellTimeFormat = "2006-01-02 15:04:05"

var errNoInput = errors.New("no input")

// Shell is the interactive console of the facility.
type Shell struct {
	operator  Operator
	scanner   *bufio.Scanner
	out       io.Writer
	telemetry *TelemetryProvider
}

func NewShell(operator Operator, telemetry *TelemetryProvider, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		operator:  operator,
		scanner:   bufio.NewScanner(in),
		out:       out,
		telemetry: telemetry,
	}
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")
	s.println("Welcome to Parking System!")
	s.printHelp()

	for ctx.Err() == nil {
		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "shutdown" {
			s.println("Exiting from the system!")
			break
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.parse_command")
	defer span.End()

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "enter":
		s.handleEnter(ctx, parts)
	case "exit":
		s.handleExit(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "ticket":
		s.handleTicket(ctx, parts)
	case "help":
		s.printHelp()
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) handleEnter(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.enter_command")
	defer span.End()

	if len(parts) < 2 || len(parts) > 3 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: enter <CAR|BIKE|1|2> [registration]")
		return
	}

	category, err := ParseCategory(parts[1])
	if err != nil {
		span.RecordError(err)
		s.println("Incorrect input provided")
		return
	}

	result, err := s.operator.ProcessIncomingVehicle(ctx, s.registrationReader(parts, 2), category)
	if err != nil {
		span.AddEvent("entry_failed")
		s.printf("Unable to process incoming vehicle: %s\n", err)
		return
	}

	switch result.Status {
	case EntryParked:
		ticket := result.Ticket
		span.AddEvent("entry_successful", trace.WithAttributes(
			attribute.Int("spot_number", ticket.Spot.Number),
		))
		s.println("Generated Ticket and saved in DB")
		s.printf("Please park your vehicle in spot number: %d\n", ticket.Spot.Number)
		s.printf("Recorded in-time for vehicle number: %s is: %s\n",
			ticket.Registration, ticket.InTime.Local().Format(shellTimeFormat))
	case EntryAlreadyParked:
		span.AddEvent("already_parked")
		s.printf("Vehicle %s is already parked in spot number: %d\n",
			result.Ticket.Registration, result.Ticket.Spot.Number)
	case EntryNoSpotAvailable:
		span.AddEvent("no_spot_available")
		s.println("Error fetching next available parking slot. Parking slots might be full")
	}
}

func (s *Shell) handleExit(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.exit_command")
	defer span.End()

	if len(parts) > 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: exit [registration]")
		return
	}

	result, err := s.operator.ProcessExitingVehicle(ctx, s.registrationReader(parts, 1))
	if err != nil {
		span.AddEvent("exit_failed")
		s.printf("Unable to process exiting vehicle: %s\n", err)
		return
	}

	ticket := result.Ticket
	span.AddEvent("exit_successful", trace.WithAttributes(
		attribute.String("fare", ticket.Price.StringFixed(PriceScale)),
	))

	if result.Discounted {
		s.println("Happy to see you again! As a recurring user of our parking lot, you'll benefit from a 5% discount.")
	}
	s.printf("Please pay the parking fare: %s\n", ticket.Price.StringFixed(PriceScale))
	s.printf("Recorded out-time for vehicle number: %s is: %s\n",
		ticket.Registration, ticket.OutTime.Time.Local().Format(shellTimeFormat))
}

func (s *Shell) handleStatus(ctx context.Context) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.status_command")
	defer span.End()

	spots, err := s.operator.Spots(ctx)
	if err != nil {
		span.RecordError(err)
		s.printf("Error: %s\n", err)
		return
	}

	span.SetAttributes(attribute.Int("spots_count", len(spots)))

	s.println("Spot No.\tType\tAvailable")
	for _, spot := range spots {
		s.printf("%d\t\t%s\t%t\n", spot.Number, spot.Category, spot.Available)
	}
}

func (s *Shell) handleTicket(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.ticket_command")
	defer span.End()

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: ticket <registration>")
		return
	}

	ticket, err := s.operator.LastTicket(ctx, parts[1])
	if errors.Is(err, ErrTicketNotFound) {
		span.AddEvent("ticket_not_found")
		s.println("Not found")
		return
	}
	if err != nil {
		span.RecordError(err)
		s.printf("Error: %s\n", err)
		return
	}

	out := "-"
	if ticket.OutTime.Valid {
		out = ticket.OutTime.Time.Local().Format(shellTimeFormat)
	}
	s.printf("Ticket %d\t%s\tspot %d (%s)\tin %s\tout %s\tprice %s\n",
		ticket.ID, ticket.Registration, ticket.Spot.Number, ticket.Spot.Category,
		ticket.InTime.Local().Format(shellTimeFormat), out, ticket.Price.StringFixed(PriceScale))
}

// registrationReader uses parts[idx] when the registration was typed with
// the command, and prompts for it otherwise.
func (s *Shell) registrationReader(parts []string, idx int) RegistrationReader {
	if len(parts) > idx {
		return Registration(parts[idx])
	}
	return promptReader{shell: s}
}

type promptReader struct {
	shell *Shell
}

func (p promptReader) ReadVehicleRegistration(ctx context.Context) (string, error) {
	p.shell.println("Please type the vehicle registration number and press enter key")
	if !p.shell.scanner.Scan() {
		if err := p.shell.scanner.Err(); err != nil {
			return "", err
		}
		return "", errNoInput
	}
	return strings.TrimSpace(p.shell.scanner.Text()), nil
}

func (s *Shell) printHelp() {
	s.println("Commands:")
	s.println("  enter <CAR|BIKE|1|2> [registration]  New vehicle entering")
	s.println("  exit [registration]                  Vehicle exiting")
	s.println("  status                               List parking spots")
	s.println("  ticket <registration>                Show the last ticket of a vehicle")
	s.println("  quit                                 Shutdown system")
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Shell) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}
