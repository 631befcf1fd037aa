package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/http/response"
)

// CreateBooking is the public booking endpoint. An optional Idempotency-Key
// header makes retries safe.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	booking, err := h.bookingService.CreateBooking(r.Context(), &req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, domain.BookingCreateRes{
		ID:          booking.ID,
		ManageToken: booking.ManageToken,
		Status:      string(booking.Status),
		StartsAt:    booking.StartsAt,
	})
}

// GetBookingWithToken lets a guest look up their own booking using the manage
// token from the confirmation email.
func (h *Handlers) GetBookingWithToken(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	token := r.URL.Query().Get("manage_token")
	if token == "" {
		response.BadRequest(w, "manage_token is required")
		return
	}

	booking, err := h.bookingService.GetBookingWithToken(r.Context(), id, token)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if booking == nil {
		response.NotFound(w, "Booking not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, booking)
}

// CancelBookingWithToken cancels a booking using the guest manage token.
func (h *Handlers) CancelBookingWithToken(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	token := r.URL.Query().Get("manage_token")
	if token == "" {
		response.BadRequest(w, "manage_token is required")
		return
	}

	canceled, err := h.bookingService.CancelBookingWithToken(r.Context(), id, token)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if !canceled {
		response.NotFound(w, "Booking not found or not cancelable")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
}

// GetBooking is the admin lookup by ID.
func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	booking, err := h.bookingService.GetBooking(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if booking == nil {
		response.NotFound(w, "Booking not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, booking)
}

// ListBookings lists bookings, optionally filtered by ?status=.
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var (
		bookings []domain.Booking
		err      error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := domain.ParseBookingStatus(raw)
		if !ok {
			response.BadRequest(w, "Invalid status filter")
			return
		}
		bookings, err = h.bookingService.ListBookingsByStatus(r.Context(), status, limit, offset)
	} else {
		bookings, err = h.bookingService.ListBookings(r.Context(), limit, offset)
	}
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"bookings": bookings,
		"limit":    limit,
		"offset":   offset,
	})
}

// UpdateBooking applies an admin partial update, rescheduling included.
func (h *Handlers) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	var patch domain.BookingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	booking, err := h.bookingService.UpdateBooking(r.Context(), id, patch)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if booking == nil {
		response.NotFound(w, "Booking not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, booking)
}

// CancelBooking is the admin cancellation, no manage token needed.
func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	canceled, err := h.bookingService.CancelBooking(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if !canceled {
		response.NotFound(w, "Booking not found or not cancelable")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
}

// CompleteBooking marks a booking completed and triggers loyalty accrual.
func (h *Handlers) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	booking, err := h.bookingService.CompleteBooking(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, booking)
}
