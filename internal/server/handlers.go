package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"parking-system/internal/logging"
	"parking-system/internal/parking"
)

type Handler struct {
	operator    parking.Operator
	serviceName string
}

func NewHandler(operator parking.Operator, serviceName string) *Handler {
	return &Handler{operator: operator, serviceName: serviceName}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) EnterVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Registration) == "" || req.Category == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration and category are required")
		return
	}

	category, err := parking.ParseCategory(req.Category)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.operator.ProcessIncomingVehicle(ctx, parking.Registration(req.Registration), category)
	if err != nil {
		h.writeOperationError(w, r, err)
		return
	}

	switch result.Status {
	case parking.EntryParked:
		WriteStatus(ctx, w, http.StatusCreated, "Vehicle parked successfully", newTicketResponse(result.Ticket))
	case parking.EntryAlreadyParked:
		WriteJSON(w, http.StatusConflict, Response{
			Success: false,
			Error:   "Vehicle is already parked",
			Data:    newTicketResponse(result.Ticket),
			Meta:    extractMeta(ctx),
		})
	case parking.EntryNoSpotAvailable:
		WriteError(ctx, w, http.StatusServiceUnavailable, "No parking spot available")
	default:
		WriteError(ctx, w, http.StatusInternalServerError, "Unexpected entry status "+result.Status.String())
	}
}

func (h *Handler) ExitVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Registration) == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration is required")
		return
	}

	result, err := h.operator.ProcessExitingVehicle(ctx, parking.Registration(req.Registration))
	if err != nil {
		h.writeOperationError(w, r, err)
		return
	}

	message := "Vehicle exited successfully"
	if result.Discounted {
		message = "Vehicle exited successfully with loyalty discount"
	}

	WriteSuccess(ctx, w, message, ExitResponse{
		Ticket:      newTicketResponse(result.Ticket),
		Price:       result.Ticket.Price.StringFixed(parking.PriceScale),
		Discounted:  result.Discounted,
		PriorVisits: result.PriorVisits,
	})
}

func (h *Handler) ListSpots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	spots, err := h.operator.Spots(ctx)
	if err != nil {
		h.writeOperationError(w, r, err)
		return
	}

	WriteSuccess(ctx, w, "Spots retrieved successfully", newSpotsResponse(spots))
}

func (h *Handler) LastTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	registration := chi.URLParam(r, "registration")
	if registration == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration number is required")
		return
	}

	ticket, err := h.operator.LastTicket(ctx, registration)
	if err != nil {
		h.writeOperationError(w, r, err)
		return
	}

	WriteSuccess(ctx, w, "Ticket found", newTicketResponse(ticket))
}

func (h *Handler) writeOperationError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := statusForError(err)

	if status >= http.StatusInternalServerError {
		logging.Error(ctx, "request failed", "path", r.URL.Path, "error", err)
		WriteError(ctx, w, status, "Internal server error")
		return
	}

	WriteError(ctx, w, status, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, parking.ErrInput), errors.Is(err, parking.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, parking.ErrNoActiveTicket), errors.Is(err, parking.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrDuplicateTicket):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
