package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/http/response"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/service"
)

// mockLoyaltyService stubs the loyalty engine with overridable functions.
type mockLoyaltyService struct {
	awardFn  func(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, error)
	redeemFn func(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, error)
	statsFn  func(ctx context.Context, clientID int64) (*domain.LoyaltyStats, error)
}

func (m *mockLoyaltyService) AwardPoints(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, error) {
	return m.awardFn(ctx, clientID, points, reason, refID, refType)
}

func (m *mockLoyaltyService) RedeemPoints(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, error) {
	return m.redeemFn(ctx, clientID, points, reason, refID, refType)
}

func (m *mockLoyaltyService) AwardWelcomeBonus(ctx context.Context, clientID int64) (*domain.LoyaltyTransaction, error) {
	return m.awardFn(ctx, clientID, 100, "Bonus de bienvenida", nil, domain.ReferenceBonus)
}

func (m *mockLoyaltyService) AwardBirthdayBonus(ctx context.Context, clientID int64) (*domain.LoyaltyTransaction, error) {
	return m.awardFn(ctx, clientID, 200, "Bonus de cumpleaños", nil, domain.ReferenceBonus)
}

func (m *mockLoyaltyService) AwardReferralBonus(ctx context.Context, referrerID, referredID int64) error {
	if referrerID == referredID {
		return domain.ErrInvalidArgument
	}
	return nil
}

func (m *mockLoyaltyService) CalculatePointsForPurchase(amount float64) (int, error) {
	return int(amount), nil
}

func (m *mockLoyaltyService) PointsValue(points int) float64 {
	return float64(points) / 100
}

func (m *mockLoyaltyService) CanRedeemPoints(ctx context.Context, clientID int64, points int) (bool, error) {
	return points <= 500, nil
}

func (m *mockLoyaltyService) GetClientStats(ctx context.Context, clientID int64) (*domain.LoyaltyStats, error) {
	return m.statsFn(ctx, clientID)
}

func (m *mockLoyaltyService) ClientTier(ctx context.Context, clientID int64) (domain.LoyaltyTier, int, error) {
	return domain.TierForBalance(0), 0, nil
}

func (m *mockLoyaltyService) Tiers() []domain.LoyaltyTier {
	return domain.Tiers()
}

var _ service.LoyaltyService = (*mockLoyaltyService)(nil)

func newLoyaltyRouter(mock *mockLoyaltyService) http.Handler {
	h := &Handlers{loyaltyService: mock}

	r := chi.NewRouter()
	r.Get("/loyalty/tiers", h.ListLoyaltyTiers)
	r.Get("/clients/{id}/loyalty", h.GetClientLoyalty)
	r.Post("/clients/{id}/loyalty/award", h.AwardPoints)
	r.Post("/clients/{id}/loyalty/redeem", h.RedeemPoints)
	r.Get("/clients/{id}/loyalty/can-redeem", h.CanRedeemPoints)
	return r
}

func TestListLoyaltyTiers(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/loyalty/tiers", nil)
	newLoyaltyRouter(&mockLoyaltyService{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var tiers []domain.LoyaltyTier
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tiers))
	require.Len(t, tiers, 4)
	assert.Equal(t, "Bronze", tiers[0].Name)
	assert.Equal(t, 10000, tiers[3].MinPoints)
}

func TestAwardPointsHandler(t *testing.T) {
	mock := &mockLoyaltyService{
		awardFn: func(_ context.Context, clientID int64, points int, reason string, _ *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, error) {
			assert.Equal(t, int64(7), clientID)
			assert.Equal(t, 150, points)
			assert.Equal(t, domain.ReferenceManual, refType)
			return &domain.LoyaltyTransaction{ID: 1, ClientID: clientID, Kind: domain.TransactionEarned, Points: points, Reason: reason}, nil
		},
	}

	body := `{"points":150,"reason":"Promoción de verano"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clients/7/loyalty/award", strings.NewReader(body))
	newLoyaltyRouter(mock).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var entry domain.LoyaltyTransaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, domain.TransactionEarned, entry.Kind)
	assert.Equal(t, 150, entry.Points)
}

func TestAwardPointsHandlerRejectsBadInput(t *testing.T) {
	router := newLoyaltyRouter(&mockLoyaltyService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clients/abc/loyalty/award", strings.NewReader(`{"points":10}`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/clients/7/loyalty/award", strings.NewReader(`{not json`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/clients/7/loyalty/award", strings.NewReader(`{"points":10,"reference_type":"cashback"}`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedeemPointsHandlerInsufficientBalance(t *testing.T) {
	mock := &mockLoyaltyService{
		redeemFn: func(_ context.Context, _ int64, points int, _ string, _ *int64, _ domain.ReferenceType) (*domain.LoyaltyTransaction, error) {
			return nil, &domain.InsufficientBalanceError{Requested: points, Available: 120}
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clients/7/loyalty/redeem", strings.NewReader(`{"points":2000,"reason":"Descuento"}`))
	newLoyaltyRouter(mock).ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var errRes response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errRes))
	assert.Equal(t, response.CodeInsufficientBalance, errRes.Code)
	assert.Contains(t, errRes.Error, "2000")
	assert.Contains(t, errRes.Error, "120")
}

func TestRedeemPointsHandlerUnknownClient(t *testing.T) {
	mock := &mockLoyaltyService{
		redeemFn: func(_ context.Context, _ int64, _ int, _ string, _ *int64, _ domain.ReferenceType) (*domain.LoyaltyTransaction, error) {
			return nil, domain.ErrNotFound
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clients/999/loyalty/redeem", strings.NewReader(`{"points":50}`))
	newLoyaltyRouter(mock).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetClientLoyalty(t *testing.T) {
	mock := &mockLoyaltyService{
		statsFn: func(_ context.Context, clientID int64) (*domain.LoyaltyStats, error) {
			return &domain.LoyaltyStats{
				TotalPointsEarned:   6000,
				TotalPointsRedeemed: 800,
				CurrentBalance:      5200,
				TransactionCount:    9,
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/clients/7/loyalty", nil)
	newLoyaltyRouter(mock).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Stats domain.LoyaltyStats `json:"stats"`
		Tier  domain.LoyaltyTier  `json:"tier"`
		Value float64             `json:"value"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 5200, payload.Stats.CurrentBalance)
	assert.Equal(t, "Gold", payload.Tier.Name)
	assert.Equal(t, 52.0, payload.Value)
}

func TestCanRedeemPointsHandler(t *testing.T) {
	router := newLoyaltyRouter(&mockLoyaltyService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/clients/7/loyalty/can-redeem?points=300", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		CanRedeem bool    `json:"can_redeem"`
		Points    int     `json:"points"`
		Value     float64 `json:"value"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.True(t, payload.CanRedeem)
	assert.Equal(t, 3.0, payload.Value)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/clients/7/loyalty/can-redeem?points=half", nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
