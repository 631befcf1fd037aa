package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/http/response"
)

type pointsReq struct {
	Points        int    `json:"points"`
	Reason        string `json:"reason"`
	ReferenceID   *int64 `json:"reference_id,omitempty"`
	ReferenceType string `json:"reference_type,omitempty"`
}

func (p *pointsReq) referenceType() (domain.ReferenceType, bool) {
	if p.ReferenceType == "" {
		return domain.ReferenceManual, true
	}
	return domain.ParseReferenceType(p.ReferenceType)
}

// ListLoyaltyTiers returns the static tier table.
func (h *Handlers) ListLoyaltyTiers(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.loyaltyService.Tiers())
}

// GetClientLoyalty returns ledger-derived stats plus the current tier.
func (h *Handlers) GetClientLoyalty(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid client ID")
		return
	}

	stats, err := h.loyaltyService.GetClientStats(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"stats": stats,
		"tier":  domain.TierForBalance(stats.CurrentBalance),
		"value": h.loyaltyService.PointsValue(stats.CurrentBalance),
	})
}

// AwardPoints handles manual point grants from the dashboard.
func (h *Handlers) AwardPoints(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid client ID")
		return
	}

	var req pointsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	refType, ok := req.referenceType()
	if !ok {
		response.BadRequest(w, "Invalid reference_type")
		return
	}

	entry, err := h.loyaltyService.AwardPoints(r.Context(), id, req.Points, req.Reason, req.ReferenceID, refType)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, entry)
}

// RedeemPoints spends points against the client balance.
func (h *Handlers) RedeemPoints(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid client ID")
		return
	}

	var req pointsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	refType, ok := req.referenceType()
	if !ok {
		response.BadRequest(w, "Invalid reference_type")
		return
	}

	entry, err := h.loyaltyService.RedeemPoints(r.Context(), id, req.Points, req.Reason, req.ReferenceID, refType)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, entry)
}

// CanRedeemPoints answers whether a redemption would succeed right now.
func (h *Handlers) CanRedeemPoints(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid client ID")
		return
	}

	points, err := strconv.Atoi(r.URL.Query().Get("points"))
	if err != nil {
		response.BadRequest(w, "Invalid points parameter")
		return
	}

	can, err := h.loyaltyService.CanRedeemPoints(r.Context(), id, points)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"can_redeem": can,
		"points":     points,
		"value":      h.loyaltyService.PointsValue(points),
	})
}

// AwardBirthdayBonus credits the fixed birthday bonus.
func (h *Handlers) AwardBirthdayBonus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid client ID")
		return
	}

	entry, err := h.loyaltyService.AwardBirthdayBonus(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, entry)
}

type referralReq struct {
	ReferrerID int64 `json:"referrer_id"`
	ReferredID int64 `json:"referred_id"`
}

// AwardReferralBonus credits both sides of a referral.
func (h *Handlers) AwardReferralBonus(w http.ResponseWriter, r *http.Request) {
	var req referralReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if err := h.loyaltyService.AwardReferralBonus(r.Context(), req.ReferrerID, req.ReferredID); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]string{"status": "awarded"})
}
