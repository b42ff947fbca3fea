package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"gopkg.in/guregu/null.v4"

	"parking-system/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type EntryRequest struct {
	Registration string `json:"registration"`
	Category     string `json:"category"`
}

type ExitRequest struct {
	Registration string `json:"registration"`
}

type TicketResponse struct {
	ID           int64     `json:"id"`
	Registration string    `json:"registration"`
	SpotNumber   int       `json:"spot_number"`
	Category     string    `json:"category"`
	Price        string    `json:"price"`
	InTime       time.Time `json:"in_time"`
	OutTime      null.Time `json:"out_time"`
	Active       bool      `json:"active"`
}

type ExitResponse struct {
	Ticket      TicketResponse `json:"ticket"`
	Price       string         `json:"price"`
	Discounted  bool           `json:"discounted"`
	PriorVisits int            `json:"prior_visits"`
}

type SpotStatus struct {
	Number    int    `json:"number"`
	Category  string `json:"category"`
	Available bool   `json:"available"`
}

type SpotsResponse struct {
	Total     int          `json:"total"`
	Occupied  int          `json:"occupied"`
	Available int          `json:"available"`
	Spots     []SpotStatus `json:"spots"`
}

func newTicketResponse(t *parking.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		Registration: t.Registration,
		SpotNumber:   t.Spot.Number,
		Category:     t.Spot.Category.String(),
		Price:        t.Price.StringFixed(parking.PriceScale),
		InTime:       t.InTime,
		OutTime:      t.OutTime,
		Active:       t.IsActive(),
	}
}

func newSpotsResponse(spots []parking.ParkingSpot) SpotsResponse {
	resp := SpotsResponse{
		Total: len(spots),
		Spots: make([]SpotStatus, 0, len(spots)),
	}
	for _, spot := range spots {
		if spot.Available {
			resp.Available++
		} else {
			resp.Occupied++
		}
		resp.Spots = append(resp.Spots, SpotStatus{
			Number:    spot.Number,
			Category:  spot.Category.String(),
			Available: spot.Available,
		})
	}
	return resp
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteStatus(ctx, w, http.StatusOK, message, data)
}

func WriteStatus(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
