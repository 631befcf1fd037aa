package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/cache"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/http/handlers"
	appmw "github.com/FelipeVegaEsparza/laksmi-sub003/internal/http/middleware"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/notify"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/platform/mailer"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/platform/payments"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/repo/postgres"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/service"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/config"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/database"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/events"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/logger"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb, err := cache.NewClient(cfg.Redis)
	if err != nil {
		logger.Error("Failed to configure redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Repositories
	clientRepo := postgres.NewClientRepo(pool)
	loyaltyRepo := postgres.NewLoyaltyRepo(pool)
	bookingRepo := postgres.NewBookingRepo(pool)
	idempotencyRepo := postgres.NewIdempotencyRepo(pool)
	serviceRepo := postgres.NewServiceRepo(pool)
	productRepo := postgres.NewProductRepo(pool)
	categoryRepo := postgres.NewCategoryRepo(pool)
	purchaseRepo := postgres.NewPurchaseRepo(pool)
	staffRepo := postgres.NewStaffRepo(pool)
	scheduleRepo := postgres.NewScheduleRepo(pool)

	availCache := cache.NewAvailabilityCache(rdb, cfg.Booking.AvailabilityTTL)
	stripeClient := payments.NewStripeClient(cfg.Stripe)

	// Services
	loyaltyService := service.NewLoyaltyService(loyaltyRepo, eventBus, cfg.Loyalty)
	clientService := service.NewClientService(clientRepo, loyaltyService)
	bookingService := service.NewBookingService(bookingRepo, idempotencyRepo, serviceRepo, loyaltyService, eventBus, availCache, cfg.Booking)
	purchaseService := service.NewPurchaseService(purchaseRepo, productRepo, clientRepo, loyaltyService, stripeClient, eventBus)
	availabilityService := service.NewAvailabilityService(scheduleRepo, bookingRepo, serviceRepo, availCache, cfg.Booking.SlotGranularity)

	consumer := notify.NewConsumer(eventBus, buildMailer(cfg))
	if err := consumer.Start(); err != nil {
		logger.Error("Failed to start notification consumer", "error", err)
		os.Exit(1)
	}

	h := handlers.New(
		loyaltyService, bookingService, clientService, purchaseService, availabilityService,
		serviceRepo, productRepo, categoryRepo, staffRepo, cfg,
	)

	router := buildRouter(h, rdb, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting API server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if removed, err := idempotencyRepo.CleanupExpired(gctx); err != nil {
					logger.Error("Idempotency cleanup failed", "error", err)
				} else if removed > 0 {
					logger.Info("Removed expired idempotency records", "count", removed)
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

// buildMailer picks the outbound email transport: dev logging, MailerSend if
// an API key is configured, plain SMTP otherwise.
func buildMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.DevMode:
		return mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.SMTPFromName, cfg.Email.SMTPFrom)
	default:
		return mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS)
	}
}

func buildRouter(h *handlers.Handlers, rdb *redis.Client, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.ServiceName("laksmi-api"))
	r.Use(middleware.Logging)
	r.Use(middleware.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	bookingLimiter := appmw.NewRateLimiter(rdb, appmw.RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
		KeyFunc:  appmw.IPRateLimitKeyFunc,
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public surface
		r.Post("/auth/login", h.Login)

		r.Get("/services", h.ListServices)
		r.Get("/services/{id}", h.GetService)
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/categories", h.ListCategories)

		r.Get("/availability", h.GetAvailability)
		r.Get("/schedule", h.GetWeekSchedule)
		r.Get("/loyalty/tiers", h.ListLoyaltyTiers)

		r.Group(func(r chi.Router) {
			r.Use(bookingLimiter.Middleware())
			r.Post("/bookings", h.CreateBooking)
		})
		r.Get("/bookings/{id}", h.GetBookingWithToken)
		r.Delete("/bookings/{id}", h.CancelBookingWithToken)

		// Staff surface
		r.Route("/admin", func(r chi.Router) {
			r.Use(appmw.RequireJWT(cfg.Auth.JWTSecret, "staff"))

			r.Get("/bookings", h.ListBookings)
			r.Get("/bookings/{id}", h.GetBooking)
			r.Patch("/bookings/{id}", h.UpdateBooking)
			r.Delete("/bookings/{id}", h.CancelBooking)
			r.Post("/bookings/{id}/complete", h.CompleteBooking)

			r.Post("/clients", h.CreateClient)
			r.Get("/clients", h.ListClients)
			r.Get("/clients/{id}", h.GetClient)
			r.Patch("/clients/{id}", h.UpdateClient)

			r.Get("/clients/{id}/loyalty", h.GetClientLoyalty)
			r.Post("/clients/{id}/loyalty/award", h.AwardPoints)
			r.Post("/clients/{id}/loyalty/redeem", h.RedeemPoints)
			r.Get("/clients/{id}/loyalty/can-redeem", h.CanRedeemPoints)
			r.Post("/clients/{id}/loyalty/birthday", h.AwardBirthdayBonus)
			r.Post("/loyalty/referrals", h.AwardReferralBonus)

			r.Post("/purchases", h.CreatePurchase)
			r.Post("/purchases/{id}/complete", h.CompletePurchase)
			r.Get("/clients/{id}/purchases", h.ListClientPurchases)

			r.Post("/services", h.CreateService)
			r.Patch("/services/{id}", h.UpdateService)
			r.Delete("/services/{id}", h.DeleteService)
			r.Post("/products", h.CreateProduct)
			r.Patch("/products/{id}", h.UpdateProduct)
			r.Post("/categories", h.CreateCategory)
			r.Patch("/categories/{id}", h.RenameCategory)
			r.Delete("/categories/{id}", h.DeleteCategory)

			r.Put("/schedule", h.SetDaySchedule)
		})
	})

	return r
}
