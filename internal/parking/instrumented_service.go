package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentedParkingService struct {
	*ParkingService
	telemetry *TelemetryProvider

	// Metrics
	entryOperations   metric.Int64Counter
	exitOperations    metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	fareAmount        metric.Float64Histogram
	operationDuration metric.Float64Histogram
}

func NewInstrumentedParkingService(service *ParkingService, telemetry *TelemetryProvider) (*InstrumentedParkingService, error) {
	meter := telemetry.Meter()

	entryOperations, err := meter.Int64Counter("parking_entry_operations_total",
		metric.WithDescription("Total number of vehicle entry operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	exitOperations, err := meter.Int64Counter("parking_exit_operations_total",
		metric.WithDescription("Total number of vehicle exit operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_occupancy",
		metric.WithDescription("Number of spots taken since start-up"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	fareAmount, err := meter.Float64Histogram("parking_fare_amount",
		metric.WithDescription("Fares charged on exit"),
		metric.WithUnit("{currency}"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedParkingService{
		ParkingService:    service,
		telemetry:         telemetry,
		entryOperations:   entryOperations,
		exitOperations:    exitOperations,
		occupancyGauge:    occupancyGauge,
		fareAmount:        fareAmount,
		operationDuration: operationDuration,
	}, nil
}

func (ips *InstrumentedParkingService) ProcessIncomingVehicle(ctx context.Context, reader RegistrationReader, category VehicleCategory) (EntryResult, error) {
	ctx, span := ips.telemetry.Tracer().Start(ctx, "parking.process_incoming_vehicle",
		trace.WithAttributes(
			attribute.String("vehicle.category", category.String()),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_available_spot")

	result, err := ips.ParkingService.ProcessIncomingVehicle(ctx, reader, category)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "entry"),
		attribute.String("vehicle_category", category.String()),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", errorStatus(err)))
	} else {
		labels = append(labels, attribute.String("status", result.Status.String()))
		if result.Ticket != nil {
			span.SetAttributes(
				attribute.String("vehicle.registration_number", result.Ticket.Registration),
				attribute.Int("spot_number", result.Ticket.Spot.Number),
			)
		}
		if result.Status == EntryParked {
			span.AddEvent("spot_allocated", trace.WithAttributes(
				attribute.Int("spot_number", result.Ticket.Spot.Number),
				attribute.Int64("ticket_id", result.Ticket.ID),
			))
			ips.occupancyGauge.Add(ctx, 1, metric.WithAttributes(
				attribute.String("vehicle_category", category.String()),
			))
		} else {
			span.AddEvent(result.Status.String())
		}
	}

	ips.entryOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ips.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return result, err
}

func (ips *InstrumentedParkingService) ProcessExitingVehicle(ctx context.Context, reader RegistrationReader) (ExitResult, error) {
	ctx, span := ips.telemetry.Tracer().Start(ctx, "parking.process_exiting_vehicle")
	defer span.End()

	start := time.Now()

	span.AddEvent("closing_ticket")

	result, err := ips.ParkingService.ProcessExitingVehicle(ctx, reader)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "exit"),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", errorStatus(err)))
	} else {
		ticket := result.Ticket
		category := ticket.Spot.Category.String()
		price := ticket.Price.InexactFloat64()

		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("vehicle_category", category),
			attribute.Bool("discounted", result.Discounted),
		)
		span.SetAttributes(
			attribute.String("vehicle.registration_number", ticket.Registration),
			attribute.Int("spot_number", ticket.Spot.Number),
			attribute.Int64("ticket_id", ticket.ID),
			attribute.String("fare", ticket.Price.StringFixed(PriceScale)),
			attribute.Int("prior_visits", result.PriorVisits),
		)
		span.AddEvent("spot_released")

		ips.occupancyGauge.Add(ctx, -1, metric.WithAttributes(
			attribute.String("vehicle_category", category),
		))
		ips.fareAmount.Record(ctx, price, metric.WithAttributes(
			attribute.String("vehicle_category", category),
			attribute.Bool("discounted", result.Discounted),
		))
	}

	ips.exitOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ips.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return result, err
}

func (ips *InstrumentedParkingService) Spots(ctx context.Context) ([]ParkingSpot, error) {
	ctx, span := ips.telemetry.Tracer().Start(ctx, "parking.spots")
	defer span.End()

	start := time.Now()

	spots, err := ips.ParkingService.Spots(ctx)

	labels := []attribute.KeyValue{
		attribute.String("operation", "spots"),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", errorStatus(err)))
	} else {
		available := 0
		for _, spot := range spots {
			if spot.Available {
				available++
			}
		}
		span.SetAttributes(
			attribute.Int("total_spots", len(spots)),
			attribute.Int("available_spots", available),
		)
		labels = append(labels, attribute.String("status", "success"))
	}

	ips.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return spots, err
}

func (ips *InstrumentedParkingService) LastTicket(ctx context.Context, registration string) (*Ticket, error) {
	ctx, span := ips.telemetry.Tracer().Start(ctx, "parking.last_ticket",
		trace.WithAttributes(
			attribute.String("vehicle.registration_number", registration),
		))
	defer span.End()

	start := time.Now()

	ticket, err := ips.ParkingService.LastTicket(ctx, registration)

	labels := []attribute.KeyValue{
		attribute.String("operation", "last_ticket"),
	}

	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			span.AddEvent("ticket_not_found")
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		labels = append(labels, attribute.String("status", errorStatus(err)))
	} else {
		span.AddEvent("ticket_found", trace.WithAttributes(
			attribute.Int64("ticket_id", ticket.ID),
		))
		labels = append(labels, attribute.String("status", "found"))
	}

	ips.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return ticket, err
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, ErrInput):
		return "input_error"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrNoActiveTicket), errors.Is(err, ErrTicketNotFound):
		return "not_found"
	case errors.Is(err, ErrPersistence):
		return "persistence_failure"
	}
	return "failed"
}
