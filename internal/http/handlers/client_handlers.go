package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/http/response"
)

// CreateClient registers a new client. The welcome bonus is credited as part
// of registration.
func (h *Handlers) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req domain.ClientCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	client, err := h.clientService.CreateClient(r.Context(), &req)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, client)
}

// GetClient returns the client plus their loyalty standing.
func (h *Handlers) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid client ID")
		return
	}

	profile, err := h.clientService.GetClientProfile(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, profile)
}

// UpdateClient applies a partial update.
func (h *Handlers) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid client ID")
		return
	}

	var patch domain.ClientPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	client, err := h.clientService.UpdateClient(r.Context(), id, patch)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, client)
}

// ListClients supports an optional ?search= filter on name and email.
func (h *Handlers) ListClients(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	search := r.URL.Query().Get("search")

	clients, err := h.clientService.ListClients(r.Context(), search, limit, offset)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"clients": clients,
		"limit":   limit,
		"offset":  offset,
	})
}
