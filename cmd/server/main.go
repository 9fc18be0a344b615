package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/imaginify/backend/docs"
	"github.com/imaginify/backend/internal/config"
	"github.com/imaginify/backend/internal/database"
	"github.com/imaginify/backend/internal/handlers"
	"github.com/imaginify/backend/internal/metrics"
	mW "github.com/imaginify/backend/internal/middleware"
	"github.com/imaginify/backend/internal/services"
	"github.com/imaginify/backend/internal/webhook"
)

// @title Imaginify Backend API
// @version 1.0
// @description Account mirroring, credit ledger and gallery API for the Imaginify image transformation app
// @host localhost:5000
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	config.Init(".env")
	cfg := config.Load()

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	// The store connects on first use; a down database only fails the
	// requests that need it.
	store := database.NewHandle(database.GetConfig())
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("[DATABASE] Failed to close connection: %v", err)
		}
	}()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := store.Acquire(ctx); err != nil {
			log.Printf("[DATABASE] Initial connection failed, will retry on demand: %v", err)
		}
	}()

	redisClient := database.InitRedis(context.Background())
	if redisClient != nil {
		defer redisClient.Close()
	}

	collectors := metrics.New()

	ledgerService := services.NewLedgerService(store, services.NewRedisCreditPublisher(redisClient), collectors, cfg.Ledger)
	imageService := services.NewImageService(store, ledgerService)
	checkoutService := services.NewCheckoutService(config.Secret("stripe.secret_key"), cfg.Stripe, cfg.FrontendURL)

	deduper := webhook.NewDeduper(redisClient, cfg.Webhook.DedupeTTL)
	clerkGateway := webhook.NewGateway(webhook.ProviderClerk,
		webhook.NewSvixVerifier(config.Secret("clerk.webhook_secret"), cfg.Webhook.Tolerance),
		webhook.DecodeClerk, webhook.ClerkHandlers(ledgerService)).
		WithDeduper(deduper).
		WithMetrics(collectors)
	stripeGateway := webhook.NewGateway(webhook.ProviderStripe,
		webhook.NewStripeVerifier(config.Secret("stripe.webhook_secret"), webhook.DefaultStripeTolerance),
		webhook.DecodeStripe, webhook.StripeHandlers(ledgerService)).
		WithDeduper(deduper).
		WithMetrics(collectors)

	clerkHandler := handlers.NewWebhookHandler(clerkGateway)
	stripeHandler := handlers.NewWebhookHandler(stripeGateway)
	userHandler := handlers.NewUserHandler(ledgerService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	imageHandler := handlers.NewImageHandler(imageService)
	rateLimiter := mW.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		services.WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "OK",
			"message":     "Imaginify Backend API is running",
			"environment": cfg.Environment,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Handle("/metrics", collectors.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Transformation icons
	r.Handle("/static/icons/*", http.StripPrefix("/static/icons/",
		mW.StaticFileServer("./static/icons")))

	r.Route("/api", func(r chi.Router) {
		// Provider callbacks carry their own signatures.
		r.Post("/webhooks/clerk", clerkHandler.Receive)
		r.Post("/webhooks/stripe", stripeHandler.Receive)

		r.Group(func(r chi.Router) {
			r.Use(rateLimiter.Middleware)

			// Public endpoints (no auth required)
			r.Get("/auth/status", handlers.AuthStatus)
			r.Get("/transformations/types", handlers.TransformationTypes)
			r.Get("/images", imageHandler.ListImages)
			r.Get("/images/{imageId}", imageHandler.GetImage)
			r.Get("/images/user/{userId}", imageHandler.ListUserImages)

			// Protected endpoints (auth required)
			r.Group(func(r chi.Router) {
				r.Use(mW.AuthMiddleware)

				r.Get("/users/{userId}", userHandler.GetUser)
				r.Patch("/users/{userId}/credits", userHandler.UpdateCredits)

				r.Post("/transactions/checkout", checkoutHandler.Checkout)

				r.Post("/images", imageHandler.AddImage)
				r.Put("/images/{imageId}", imageHandler.UpdateImage)
				r.Delete("/images/{imageId}", imageHandler.DeleteImage)
			})
		})
	})

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s (%s)", cfg.Port, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
