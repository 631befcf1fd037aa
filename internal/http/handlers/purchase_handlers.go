package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/http/response"
)

// CreatePurchase opens a pending purchase and a payment intent for it.
func (h *Handlers) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req domain.PurchaseCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	res, err := h.purchaseService.CreatePurchase(r.Context(), &req)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, res)
}

// CompletePurchase settles a pending purchase: stock decrements and loyalty
// points accrue exactly once.
func (h *Handlers) CompletePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid purchase ID")
		return
	}

	purchase, err := h.purchaseService.CompletePurchase(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, purchase)
}

// ListClientPurchases lists one client's purchase history.
func (h *Handlers) ListClientPurchases(w http.ResponseWriter, r *http.Request) {
	clientID, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid client ID")
		return
	}
	limit, offset := parsePagination(r)

	purchases, err := h.purchaseService.ListClientPurchases(r.Context(), clientID, limit, offset)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"purchases": purchases,
		"limit":     limit,
		"offset":    offset,
	})
}
