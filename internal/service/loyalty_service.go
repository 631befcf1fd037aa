package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/config"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/events"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/logger"
)

// LoyaltyStore is the persistence surface the loyalty engine needs. The
// postgres implementation keeps balance and ledger consistent in one
// transaction; tests supply an in-memory version.
type LoyaltyStore interface {
	Award(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, int, error)
	Redeem(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, int, error)
	Balance(ctx context.Context, clientID int64) (int, bool, error)
	Stats(ctx context.Context, clientID int64) (*domain.LoyaltyStats, error)
}

type LoyaltyService interface {
	AwardPoints(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, error)
	RedeemPoints(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, error)
	AwardWelcomeBonus(ctx context.Context, clientID int64) (*domain.LoyaltyTransaction, error)
	AwardBirthdayBonus(ctx context.Context, clientID int64) (*domain.LoyaltyTransaction, error)
	AwardReferralBonus(ctx context.Context, referrerID, referredID int64) error
	CalculatePointsForPurchase(amount float64) (int, error)
	PointsValue(points int) float64
	CanRedeemPoints(ctx context.Context, clientID int64, points int) (bool, error)
	GetClientStats(ctx context.Context, clientID int64) (*domain.LoyaltyStats, error)
	ClientTier(ctx context.Context, clientID int64) (domain.LoyaltyTier, int, error)
	Tiers() []domain.LoyaltyTier
}

type loyaltyService struct {
	store    LoyaltyStore
	eventBus events.Publisher
	policy   config.LoyaltyPolicy
}

func NewLoyaltyService(store LoyaltyStore, eventBus events.Publisher, policy config.LoyaltyPolicy) LoyaltyService {
	return &loyaltyService{
		store:    store,
		eventBus: eventBus,
		policy:   policy,
	}
}

func (s *loyaltyService) AwardPoints(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, error) {
	if clientID <= 0 {
		return nil, fmt.Errorf("%w: client id must be positive", domain.ErrInvalidArgument)
	}
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be a positive integer", domain.ErrInvalidArgument)
	}

	entry, balance, err := s.store.Award(ctx, clientID, points, reason, refID, refType)
	if err != nil {
		return nil, err
	}

	s.publishPointsEvent(ctx, events.LoyaltyPointsAwarded, clientID, points, reason, refType, balance)
	return entry, nil
}

func (s *loyaltyService) RedeemPoints(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, error) {
	if clientID <= 0 {
		return nil, fmt.Errorf("%w: client id must be positive", domain.ErrInvalidArgument)
	}
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be a positive integer", domain.ErrInvalidArgument)
	}

	entry, balance, err := s.store.Redeem(ctx, clientID, points, reason, refID, refType)
	if err != nil {
		return nil, err
	}

	s.publishPointsEvent(ctx, events.LoyaltyPointsRedeemed, clientID, points, reason, refType, balance)
	return entry, nil
}

func (s *loyaltyService) AwardWelcomeBonus(ctx context.Context, clientID int64) (*domain.LoyaltyTransaction, error) {
	return s.AwardPoints(ctx, clientID, s.policy.WelcomeBonus, "Bonus de bienvenida", nil, domain.ReferenceBonus)
}

func (s *loyaltyService) AwardBirthdayBonus(ctx context.Context, clientID int64) (*domain.LoyaltyTransaction, error) {
	return s.AwardPoints(ctx, clientID, s.policy.BirthdayBonus, "Bonus de cumpleaños", nil, domain.ReferenceBonus)
}

// AwardReferralBonus gives the referrer the full bonus and the referred party
// half of it, floored. Two independent ledger entries, each referencing the
// other party.
func (s *loyaltyService) AwardReferralBonus(ctx context.Context, referrerID, referredID int64) error {
	if referrerID <= 0 || referredID <= 0 {
		return fmt.Errorf("%w: client ids must be positive", domain.ErrInvalidArgument)
	}
	if referrerID == referredID {
		return fmt.Errorf("%w: a client cannot refer themselves", domain.ErrInvalidArgument)
	}

	if _, err := s.AwardPoints(ctx, referrerID, s.policy.ReferralBonus,
		"Bonus por referido", &referredID, domain.ReferenceBonus); err != nil {
		return fmt.Errorf("award referrer bonus: %w", err)
	}
	if _, err := s.AwardPoints(ctx, referredID, s.policy.ReferralBonus/2,
		"Bonus de bienvenida por referencia", &referrerID, domain.ReferenceBonus); err != nil {
		return fmt.Errorf("award referred bonus: %w", err)
	}
	return nil
}

// CalculatePointsForPurchase converts a currency amount into earnable points,
// flooring the result. Pure function.
func (s *loyaltyService) CalculatePointsForPurchase(amount float64) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: amount must be non-negative", domain.ErrInvalidArgument)
	}
	return int(math.Floor(amount * s.policy.PointsPerCurrencyUnit)), nil
}

// PointsValue returns the currency value of a point amount. Pure function.
func (s *loyaltyService) PointsValue(points int) float64 {
	return float64(points) / float64(s.policy.RedemptionRate)
}

func (s *loyaltyService) CanRedeemPoints(ctx context.Context, clientID int64, points int) (bool, error) {
	if points <= 0 {
		return false, fmt.Errorf("%w: points must be a positive integer", domain.ErrInvalidArgument)
	}

	balance, exists, err := s.store.Balance(ctx, clientID)
	if err != nil {
		return false, err
	}
	return exists && balance >= points, nil
}

func (s *loyaltyService) GetClientStats(ctx context.Context, clientID int64) (*domain.LoyaltyStats, error) {
	return s.store.Stats(ctx, clientID)
}

func (s *loyaltyService) ClientTier(ctx context.Context, clientID int64) (domain.LoyaltyTier, int, error) {
	balance, exists, err := s.store.Balance(ctx, clientID)
	if err != nil {
		return domain.LoyaltyTier{}, 0, err
	}
	if !exists {
		return domain.LoyaltyTier{}, 0, domain.ErrNotFound
	}
	return domain.TierForBalance(balance), balance, nil
}

func (s *loyaltyService) Tiers() []domain.LoyaltyTier {
	return domain.Tiers()
}

func (s *loyaltyService) publishPointsEvent(ctx context.Context, subject string, clientID int64, points int, reason string, refType domain.ReferenceType, balance int) {
	if s.eventBus == nil {
		return
	}

	event := events.LoyaltyPointsEvent{
		ClientID:      clientID,
		Points:        points,
		Reason:        reason,
		ReferenceType: string(refType),
		Balance:       balance,
		Tier:          domain.TierForBalance(balance).Name,
		OccurredAt:    time.Now(),
	}

	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish loyalty event", "error", err, "subject", subject, "client_id", clientID)
	}
}
