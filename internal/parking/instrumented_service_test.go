package parking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type testTelemetry struct {
	provider *TelemetryProvider
	reader   *sdkmetric.ManualReader
	spans    *tracetest.SpanRecorder
}

func newTestTelemetry(t *testing.T) testTelemetry {
	t.Helper()

	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	provider := NewTelemetryProviderFromSDK("parking-system-test",
		sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)),
		sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		nil,
	)
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	return testTelemetry{provider: provider, reader: reader, spans: spans}
}

func (tt testTelemetry) metric(t *testing.T, name string) metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, tt.reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %s not recorded", name)
	return metricdata.Metrics{}
}

func (tt testTelemetry) spanNames() []string {
	var names []string
	for _, s := range tt.spans.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestInstrumentedParkingServiceEntryAndExit(t *testing.T) {
	telemetry := newTestTelemetry(t)
	spots := &mockSpotRepository{}
	tickets := &mockTicketRepository{}

	tickets.On("ActiveTicket", mock.Anything, "ABCDEF").Return(nil, ErrTicketNotFound).Once()
	spots.On("NextAvailable", mock.Anything, CategoryCar).Return(1, nil)
	spots.On("UpdateSpot", mock.Anything, mock.Anything).Return(nil)
	tickets.On("SaveTicket", mock.Anything, mock.Anything).Return(nil)

	service, err := NewInstrumentedParkingService(newTestService(spots, tickets), telemetry.provider)
	require.NoError(t, err)

	entry, err := service.ProcessIncomingVehicle(context.Background(), Registration("ABCDEF"), CategoryCar)
	require.NoError(t, err)
	require.Equal(t, EntryParked, entry.Status)

	open := entry.Ticket
	open.InTime = serviceNow.Add(-2 * time.Hour)
	tickets.On("ActiveTicket", mock.Anything, "ABCDEF").Return(open, nil).Once()
	tickets.On("CountCompletedVisits", mock.Anything, "ABCDEF").Return(0, nil)
	tickets.On("UpdateTicket", mock.Anything, mock.Anything).Return(nil)

	exit, err := service.ProcessExitingVehicle(context.Background(), Registration("ABCDEF"))
	require.NoError(t, err)
	assert.Equal(t, "3.00", exit.Ticket.Price.StringFixed(PriceScale))

	assert.Equal(t, int64(1), sumValue(t, telemetry.metric(t, "parking_entry_operations_total")))
	assert.Equal(t, int64(1), sumValue(t, telemetry.metric(t, "parking_exit_operations_total")))
	assert.Equal(t, int64(0), sumValue(t, telemetry.metric(t, "parking_occupancy")))

	fares, ok := telemetry.metric(t, "parking_fare_amount").Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, fares.DataPoints, 1)
	assert.InDelta(t, 3.0, fares.DataPoints[0].Sum, 0.0001)

	assert.Contains(t, telemetry.spanNames(), "parking.process_incoming_vehicle")
	assert.Contains(t, telemetry.spanNames(), "parking.process_exiting_vehicle")
}

func TestInstrumentedParkingServiceRecordsFailures(t *testing.T) {
	telemetry := newTestTelemetry(t)
	spots := &mockSpotRepository{}
	tickets := &mockTicketRepository{}

	tickets.On("ActiveTicket", mock.Anything, "ABCDEF").Return(nil, ErrTicketNotFound)

	service, err := NewInstrumentedParkingService(newTestService(spots, tickets), telemetry.provider)
	require.NoError(t, err)

	_, err = service.ProcessExitingVehicle(context.Background(), Registration("ABCDEF"))
	require.ErrorIs(t, err, ErrNoActiveTicket)

	_, err = service.ProcessIncomingVehicle(context.Background(), failingReader{err: errBoom}, CategoryCar)
	require.ErrorIs(t, err, ErrInput)

	exits, ok := telemetry.metric(t, "parking_exit_operations_total").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, exits.DataPoints, 1)
	status, _ := exits.DataPoints[0].Attributes.Value("status")
	assert.Equal(t, "not_found", status.AsString())

	entries, ok := telemetry.metric(t, "parking_entry_operations_total").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, entries.DataPoints, 1)
	status, _ = entries.DataPoints[0].Attributes.Value("status")
	assert.Equal(t, "input_error", status.AsString())

	for _, span := range telemetry.spans.Ended() {
		if span.Name() == "parking.process_exiting_vehicle" {
			assert.NotEmpty(t, span.Events())
			assert.Equal(t, "Error", span.Status().Code.String())
		}
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrInput, "input_error"},
		{ErrInvalidArgument, "invalid_argument"},
		{ErrNoActiveTicket, "not_found"},
		{ErrTicketNotFound, "not_found"},
		{ErrPersistence, "persistence_failure"},
		{errBoom, "failed"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, errorStatus(tt.err), tt.err.Error())
	}
}
