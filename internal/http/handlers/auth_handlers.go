package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/http/response"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/platform/auth"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/logger"
)

// Login authenticates a staff member and issues an access token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		response.BadRequest(w, "Email and password are required")
		return
	}

	user, err := h.staffRepo.FindByEmail(r.Context(), req.Email)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to look up staff user", "error", err)
		response.InternalError(w, "Login failed")
		return
	}

	// Same response for unknown email and wrong password.
	if user == nil {
		response.Unauthorized(w, "Invalid credentials")
		return
	}
	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		response.Unauthorized(w, "Invalid credentials")
		return
	}

	token, err := auth.NewAccessToken(user.ID, user.Email, user.Role, h.config.Auth.JWTSecret, h.config.Auth.AccessTokenTTL)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to sign access token", "error", err)
		response.InternalError(w, "Login failed")
		return
	}

	response.WriteJSON(w, http.StatusOK, domain.LoginRes{
		AccessToken: token,
		Role:        user.Role,
		Name:        user.Name,
	})
}
