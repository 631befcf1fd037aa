package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/config"
)

// memLoyaltyStore mirrors the postgres store semantics: balance and ledger
// move together under one lock, and a redeem past the balance is rejected
// without side effects.
type memLoyaltyStore struct {
	mu       sync.Mutex
	nextID   int64
	balances map[int64]int
	ledger   []domain.LoyaltyTransaction
}

func newMemLoyaltyStore(balances map[int64]int) *memLoyaltyStore {
	if balances == nil {
		balances = map[int64]int{}
	}
	return &memLoyaltyStore{balances: balances}
}

func (m *memLoyaltyStore) append(clientID int64, kind domain.TransactionKind, points int, reason string, refID *int64, refType domain.ReferenceType) *domain.LoyaltyTransaction {
	m.nextID++
	entry := domain.LoyaltyTransaction{
		ID:            m.nextID,
		ClientID:      clientID,
		Kind:          kind,
		Points:        points,
		Reason:        reason,
		ReferenceID:   refID,
		ReferenceType: refType,
		CreatedAt:     time.Now(),
	}
	m.ledger = append(m.ledger, entry)
	return &entry
}

func (m *memLoyaltyStore) Award(_ context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance, ok := m.balances[clientID]
	if !ok {
		return nil, 0, domain.ErrNotFound
	}
	balance += points
	m.balances[clientID] = balance
	return m.append(clientID, domain.TransactionEarned, points, reason, refID, refType), balance, nil
}

func (m *memLoyaltyStore) Redeem(_ context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance, ok := m.balances[clientID]
	if !ok {
		return nil, 0, domain.ErrNotFound
	}
	if balance < points {
		return nil, 0, &domain.InsufficientBalanceError{Requested: points, Available: balance}
	}
	balance -= points
	m.balances[clientID] = balance
	return m.append(clientID, domain.TransactionRedeemed, points, reason, refID, refType), balance, nil
}

func (m *memLoyaltyStore) Balance(_ context.Context, clientID int64) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.balances[clientID]
	return balance, ok, nil
}

func (m *memLoyaltyStore) Stats(_ context.Context, clientID int64) (*domain.LoyaltyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.balances[clientID]; !ok {
		return nil, domain.ErrNotFound
	}

	stats := &domain.LoyaltyStats{CurrentBalance: m.balances[clientID]}
	for i := range m.ledger {
		entry := m.ledger[i]
		if entry.ClientID != clientID {
			continue
		}
		stats.TransactionCount++
		if entry.Kind == domain.TransactionEarned {
			stats.TotalPointsEarned += entry.Points
		} else {
			stats.TotalPointsRedeemed += entry.Points
		}
		stats.LastTransaction = &entry
	}
	return stats, nil
}

var _ LoyaltyStore = (*memLoyaltyStore)(nil)

func newTestLoyaltyService(store LoyaltyStore) LoyaltyService {
	return NewLoyaltyService(store, nil, config.LoyaltyPolicy{
		PointsPerCurrencyUnit: 1,
		RedemptionRate:        100,
		WelcomeBonus:          100,
		BirthdayBonus:         200,
		ReferralBonus:         500,
	})
}

func TestAwardPointsValidation(t *testing.T) {
	svc := newTestLoyaltyService(newMemLoyaltyStore(map[int64]int{1: 0}))
	ctx := context.Background()

	_, err := svc.AwardPoints(ctx, 1, 0, "x", nil, domain.ReferenceManual)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.AwardPoints(ctx, 1, -50, "x", nil, domain.ReferenceManual)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.AwardPoints(ctx, 0, 10, "x", nil, domain.ReferenceManual)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.AwardPoints(ctx, 99, 10, "x", nil, domain.ReferenceManual)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedeemRejectsOverdraft(t *testing.T) {
	store := newMemLoyaltyStore(map[int64]int{1: 950})
	svc := newTestLoyaltyService(store)
	ctx := context.Background()

	_, err := svc.RedeemPoints(ctx, 1, 2000, "Descuento", nil, domain.ReferenceManual)
	require.Error(t, err)

	var insufficient *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2000, insufficient.Requested)
	assert.Equal(t, 950, insufficient.Available)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// Balance untouched, nothing written to the ledger.
	balance, _, _ := store.Balance(ctx, 1)
	assert.Equal(t, 950, balance)
	stats, err := svc.GetClientStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TransactionCount)
}

func TestEarnThenRedeemLifecycle(t *testing.T) {
	store := newMemLoyaltyStore(map[int64]int{1: 0})
	svc := newTestLoyaltyService(store)
	ctx := context.Background()

	_, err := svc.AwardWelcomeBonus(ctx, 1)
	require.NoError(t, err)

	points, err := svc.CalculatePointsForPurchase(850.75)
	require.NoError(t, err)
	assert.Equal(t, 850, points)

	_, err = svc.AwardPoints(ctx, 1, points, "Compra de producto", nil, domain.ReferencePurchase)
	require.NoError(t, err)

	stats, err := svc.GetClientStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 950, stats.CurrentBalance)
	assert.Equal(t, 950, stats.TotalPointsEarned)

	entry, err := svc.RedeemPoints(ctx, 1, 950, "Canje completo", nil, domain.ReferenceManual)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionRedeemed, entry.Kind)
	assert.Equal(t, 950, entry.Points)

	stats, err = svc.GetClientStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CurrentBalance)
	assert.Equal(t, 950, stats.TotalPointsRedeemed)
	assert.Equal(t, 3, stats.TransactionCount)
}

func TestReferralBonusSplitsBetweenParties(t *testing.T) {
	store := newMemLoyaltyStore(map[int64]int{10: 0, 20: 0})
	svc := newTestLoyaltyService(store)
	ctx := context.Background()

	require.NoError(t, svc.AwardReferralBonus(ctx, 10, 20))

	referrer, _, _ := store.Balance(ctx, 10)
	referred, _, _ := store.Balance(ctx, 20)
	assert.Equal(t, 500, referrer)
	assert.Equal(t, 250, referred)
}

func TestReferralBonusRejectsSelfReferral(t *testing.T) {
	svc := newTestLoyaltyService(newMemLoyaltyStore(map[int64]int{10: 0}))

	err := svc.AwardReferralBonus(context.Background(), 10, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCalculatePointsForPurchase(t *testing.T) {
	svc := newTestLoyaltyService(newMemLoyaltyStore(nil))

	cases := []struct {
		amount float64
		want   int
	}{
		{0, 0},
		{0.99, 0},
		{1, 1},
		{99.99, 99},
		{100, 100},
		{1234.56, 1234},
	}
	for _, tc := range cases {
		got, err := svc.CalculatePointsForPurchase(tc.amount)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "amount %.2f", tc.amount)
	}

	_, err := svc.CalculatePointsForPurchase(-1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestPointsValue(t *testing.T) {
	svc := newTestLoyaltyService(newMemLoyaltyStore(nil))

	assert.Equal(t, 1.0, svc.PointsValue(100))
	assert.Equal(t, 2.5, svc.PointsValue(250))
	assert.Equal(t, 0.0, svc.PointsValue(0))
}

func TestCanRedeemPoints(t *testing.T) {
	svc := newTestLoyaltyService(newMemLoyaltyStore(map[int64]int{1: 300}))
	ctx := context.Background()

	can, err := svc.CanRedeemPoints(ctx, 1, 300)
	require.NoError(t, err)
	assert.True(t, can)

	can, err = svc.CanRedeemPoints(ctx, 1, 301)
	require.NoError(t, err)
	assert.False(t, can)

	can, err = svc.CanRedeemPoints(ctx, 99, 10)
	require.NoError(t, err)
	assert.False(t, can)

	_, err = svc.CanRedeemPoints(ctx, 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestClientTier(t *testing.T) {
	svc := newTestLoyaltyService(newMemLoyaltyStore(map[int64]int{1: 5000}))

	tier, balance, err := svc.ClientTier(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Gold", tier.Name)
	assert.Equal(t, 5000, balance)

	_, _, err = svc.ClientTier(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Concurrent redemptions must never drive the balance negative: with a
// starting balance of 1000 and 20 goroutines each trying to redeem 150,
// exactly 6 can succeed.
func TestConcurrentRedemptionsNeverOverdraw(t *testing.T) {
	store := newMemLoyaltyStore(map[int64]int{1: 1000})
	svc := newTestLoyaltyService(store)
	ctx := context.Background()

	const (
		workers = 20
		chunk   = 150
	)

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RedeemPoints(ctx, 1, chunk, "Canje concurrente", nil, domain.ReferenceManual)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		}
	}

	assert.Equal(t, 1000/chunk, succeeded)
	balance, _, _ := store.Balance(ctx, 1)
	assert.Equal(t, 1000-succeeded*chunk, balance)
	assert.GreaterOrEqual(t, balance, 0)
}
