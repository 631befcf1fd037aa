package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/http/response"
)

// GetAvailability returns the free slots for a service on a day.
// Query: ?date=2026-09-01&service_id=3
func (h *Handlers) GetAvailability(w http.ResponseWriter, r *http.Request) {
	day, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("date"), time.Local)
	if err != nil {
		response.BadRequest(w, "date must be YYYY-MM-DD")
		return
	}

	serviceID, err := strconv.ParseInt(r.URL.Query().Get("service_id"), 10, 64)
	if err != nil || serviceID <= 0 {
		response.BadRequest(w, "Invalid service_id")
		return
	}

	slots, err := h.availability.AvailableSlots(r.Context(), day, serviceID)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"date":       day.Format("2006-01-02"),
		"service_id": serviceID,
		"slots":      slots,
	})
}

// GetWeekSchedule returns the clinic's opening hours, one entry per open day.
func (h *Handlers) GetWeekSchedule(w http.ResponseWriter, r *http.Request) {
	week, err := h.availability.WeekSchedule(r.Context())
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, week)
}

// SetDaySchedule upserts the opening hours for one weekday.
func (h *Handlers) SetDaySchedule(w http.ResponseWriter, r *http.Request) {
	var hours domain.DayHours
	if err := json.NewDecoder(r.Body).Decode(&hours); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if hours.Weekday < time.Sunday || hours.Weekday > time.Saturday {
		response.BadRequest(w, "weekday must be 0 through 6")
		return
	}

	saved, err := h.availability.SetDaySchedule(r.Context(), &hours)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, saved)
}
