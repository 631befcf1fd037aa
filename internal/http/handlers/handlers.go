package handlers

import (
	"net/http"
	"strconv"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/repo/postgres"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/service"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/config"
	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	loyaltyService  service.LoyaltyService
	bookingService  service.BookingService
	clientService   service.ClientService
	purchaseService service.PurchaseService
	availability    service.AvailabilityService
	serviceRepo     postgres.ServiceRepo
	productRepo     postgres.ProductRepo
	categoryRepo    postgres.CategoryRepo
	staffRepo       postgres.StaffRepo
	config          *config.Config
}

func New(
	loyaltyService service.LoyaltyService,
	bookingService service.BookingService,
	clientService service.ClientService,
	purchaseService service.PurchaseService,
	availability service.AvailabilityService,
	serviceRepo postgres.ServiceRepo,
	productRepo postgres.ProductRepo,
	categoryRepo postgres.CategoryRepo,
	staffRepo postgres.StaffRepo,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		loyaltyService:  loyaltyService,
		bookingService:  bookingService,
		clientService:   clientService,
		purchaseService: purchaseService,
		availability:    availability,
		serviceRepo:     serviceRepo,
		productRepo:     productRepo,
		categoryRepo:    categoryRepo,
		staffRepo:       staffRepo,
		config:          cfg,
	}
}

// Helper to parse pagination parameters
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}

// Helper to parse an int64 URL parameter
func parseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}
