package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/repo/postgres"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/logger"
)

// ClientProfile bundles a client with their loyalty standing for the
// dashboard detail view.
type ClientProfile struct {
	Client *domain.Client       `json:"client"`
	Stats  *domain.LoyaltyStats `json:"loyalty"`
	Tier   domain.LoyaltyTier   `json:"tier"`
}

type ClientService interface {
	CreateClient(ctx context.Context, req *domain.ClientCreateReq) (*domain.Client, error)
	GetClientProfile(ctx context.Context, id int64) (*ClientProfile, error)
	UpdateClient(ctx context.Context, id int64, patch domain.ClientPatch) (*domain.Client, error)
	ListClients(ctx context.Context, search string, limit, offset int) ([]domain.Client, error)
}

type clientService struct {
	clientRepo postgres.ClientRepo
	loyalty    LoyaltyService
}

func NewClientService(clientRepo postgres.ClientRepo, loyalty LoyaltyService) ClientService {
	return &clientService{clientRepo: clientRepo, loyalty: loyalty}
}

// CreateClient registers the client and credits the welcome bonus. A failed
// bonus award does not fail the registration.
func (s *clientService) CreateClient(ctx context.Context, req *domain.ClientCreateReq) (*domain.Client, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidArgument)
	}
	if !strings.Contains(req.Email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrInvalidArgument)
	}

	if existing, err := s.clientRepo.FindByEmail(ctx, req.Email); err != nil {
		return nil, fmt.Errorf("failed to check existing client: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: a client with that email already exists", domain.ErrConflict)
	}

	client, err := s.clientRepo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if _, err := s.loyalty.AwardWelcomeBonus(ctx, client.ID); err != nil {
		logger.ErrorContext(ctx, "Failed to award welcome bonus", "error", err, "client_id", client.ID)
	} else if fresh, err := s.clientRepo.FindByID(ctx, client.ID); err == nil && fresh != nil {
		client = fresh
	}

	return client, nil
}

func (s *clientService) GetClientProfile(ctx context.Context, id int64) (*ClientProfile, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	stats, err := s.loyalty.GetClientStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load loyalty stats: %w", err)
	}

	return &ClientProfile{
		Client: client,
		Stats:  stats,
		Tier:   domain.TierForBalance(stats.CurrentBalance),
	}, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id int64, patch domain.ClientPatch) (*domain.Client, error) {
	client, err := s.clientRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	return client, nil
}

func (s *clientService) ListClients(ctx context.Context, search string, limit, offset int) ([]domain.Client, error) {
	return s.clientRepo.List(ctx, search, limit, offset)
}
