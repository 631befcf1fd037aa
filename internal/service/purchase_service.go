package service

import (
	"context"
	"fmt"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/platform/payments"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/repo/postgres"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/events"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/logger"
)

type PurchaseService interface {
	CreatePurchase(ctx context.Context, req *domain.PurchaseCreateReq) (*domain.PurchaseCreateRes, error)
	CompletePurchase(ctx context.Context, id int64) (*domain.Purchase, error)
	ListClientPurchases(ctx context.Context, clientID int64, limit, offset int) ([]domain.Purchase, error)
}

type purchaseService struct {
	purchaseRepo postgres.PurchaseRepo
	productRepo  postgres.ProductRepo
	clientRepo   postgres.ClientRepo
	loyalty      LoyaltyService
	payments     *payments.StripeClient
	eventBus     events.Publisher
}

func NewPurchaseService(
	purchaseRepo postgres.PurchaseRepo,
	productRepo postgres.ProductRepo,
	clientRepo postgres.ClientRepo,
	loyalty LoyaltyService,
	stripeClient *payments.StripeClient,
	eventBus events.Publisher,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		clientRepo:   clientRepo,
		loyalty:      loyalty,
		payments:     stripeClient,
		eventBus:     eventBus,
	}
}

func (s *purchaseService) CreatePurchase(ctx context.Context, req *domain.PurchaseCreateReq) (*domain.PurchaseCreateRes, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidArgument)
	}

	client, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: unknown client", domain.ErrNotFound)
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, fmt.Errorf("%w: unknown product", domain.ErrNotFound)
	}
	if product.Stock < req.Quantity {
		return nil, fmt.Errorf("%w: not enough stock", domain.ErrConflict)
	}

	amount := product.Price * float64(req.Quantity)

	intentID, clientSecret, err := s.payments.CreatePaymentIntent(ctx, amount, map[string]string{
		"client_id":  fmt.Sprintf("%d", req.ClientID),
		"product_id": fmt.Sprintf("%d", req.ProductID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	purchase, err := s.purchaseRepo.Create(ctx, req.ClientID, req.ProductID, req.Quantity, amount, intentID)
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.PurchaseCreated, purchase); err != nil {
		logger.ErrorContext(ctx, "Failed to publish purchase created event", "error", err, "purchase_id", purchase.ID)
	}

	return &domain.PurchaseCreateRes{
		ID:           purchase.ID,
		Amount:       purchase.Amount,
		Status:       string(purchase.Status),
		ClientSecret: clientSecret,
	}, nil
}

// CompletePurchase settles a pending purchase: stock comes off, loyalty points
// go on. MarkPaid is conditional, so a purchase settles at most once.
func (s *purchaseService) CompletePurchase(ctx context.Context, id int64) (*domain.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase: %w", err)
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}

	paid, err := s.purchaseRepo.MarkPaid(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to settle purchase: %w", err)
	}
	if !paid {
		return nil, fmt.Errorf("%w: purchase is already %s", domain.ErrConflict, purchase.Status)
	}

	if ok, err := s.productRepo.DecrementStock(ctx, purchase.ProductID, purchase.Quantity); err != nil {
		logger.ErrorContext(ctx, "Failed to decrement stock", "error", err, "purchase_id", id)
	} else if !ok {
		logger.WarnContext(ctx, "Stock went negative between reservation and settlement", "purchase_id", id)
	}

	points, err := s.loyalty.CalculatePointsForPurchase(purchase.Amount)
	if err == nil && points > 0 {
		if _, err := s.loyalty.AwardPoints(ctx, purchase.ClientID, points,
			"Compra de producto", &purchase.ID, domain.ReferencePurchase); err != nil {
			logger.ErrorContext(ctx, "Failed to award purchase points", "error", err, "purchase_id", id)
			points = 0
		}
	}

	event := events.PurchaseCompletedEvent{
		PurchaseID:    purchase.ID,
		ClientID:      purchase.ClientID,
		Amount:        purchase.Amount,
		PointsAwarded: points,
		CompletedAt:   time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.PurchaseCompleted, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish purchase completed event", "error", err, "purchase_id", id)
	}

	return s.purchaseRepo.GetByID(ctx, id)
}

func (s *purchaseService) ListClientPurchases(ctx context.Context, clientID int64, limit, offset int) ([]domain.Purchase, error) {
	return s.purchaseRepo.ListByClient(ctx, clientID, limit, offset)
}
