package main

import (
	"context"
	"encoding/json"
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

	"github.com/cardledger/backend/docs"
	"github.com/cardledger/backend/internal/audit"
	"github.com/cardledger/backend/internal/config"
	"github.com/cardledger/backend/internal/database"
	"github.com/cardledger/backend/internal/handlers"
	mW "github.com/cardledger/backend/internal/middleware"
	"github.com/cardledger/backend/internal/services"
	"github.com/cardledger/backend/internal/vault"
)

// @title Card Ledger API
// @version 1.0
// @description Personal ledger for bank cards, installments and saved payee cards
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	redisClient := database.NewRedis(ctx, cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	sealer, err := vault.New(vault.Config{
		MasterKey: cfg.Vault.MasterKey,
		Salt:      cfg.Vault.Salt,
	})
	if err != nil {
		log.Fatalf("Failed to initialize vault: %v", err)
	}

	// Initialize services
	auditLogger := audit.NewLogger()
	summaryCache := services.NewSummaryCache(redisClient, cfg.Redis.SummaryTTL)
	money := services.NewLocaleFormatter(cfg.Locale.Language, cfg.Locale.Currency)
	bankService := services.NewBankService(cfg.Static.LogoDir)

	authService := services.NewAuthService(db, redisClient, services.AuthConfig{
		SecretKey: cfg.JWT.SecretKey,
		TokenTTL:  cfg.TokenTTL(),
		Argon2:    cfg.Argon2,
	})
	ledgerService := services.NewLedgerService(db, summaryCache, auditLogger, money)
	cardService := services.NewCardService(db, sealer, summaryCache, bankService)
	installmentService := services.NewInstallmentService(db)
	friendCardService := services.NewFriendCardService(db)

	authHandler := handlers.NewAuthHandler(authService, cfg.JWT.CookieName, cfg.JWT.SecureCookie)
	cardHandler := handlers.NewCardHandler(cardService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	installmentHandler := handlers.NewInstallmentHandler(installmentService, ledgerService)
	friendCardHandler := handlers.NewFriendCardHandler(friendCardService)
	bankHandler := handlers.NewBankHandler(bankService)

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Static file server for bank logos
	r.Handle("/static/logos/*", http.StripPrefix("/static/logos/",
		mW.StaticFileServer(cfg.Static.LogoDir, services.PlaceholderLogo())))

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/banks", bankHandler.GetAllBanks)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(mW.Auth(authService, cfg.JWT.CookieName))

			r.Get("/auth/me", authHandler.Me)
			r.Put("/auth/profile", authHandler.UpdateProfile)
			r.Put("/auth/password", authHandler.ChangePassword)

			r.Get("/cards", cardHandler.ListCards)
			r.Post("/cards", cardHandler.CreateCard)
			r.Get("/cards/{cardId}", cardHandler.GetCard)
			r.Delete("/cards/{cardId}", cardHandler.DeleteCard)

			r.Get("/transactions", transactionHandler.ListTransactions)
			r.Post("/transactions", transactionHandler.RecordTransaction)
			r.Get("/transactions/summary", transactionHandler.Summary)
			r.Delete("/transactions/{id}", transactionHandler.DeleteTransaction)

			r.Get("/installments", installmentHandler.ListInstallments)
			r.Post("/installments", installmentHandler.CreatePlan)
			r.Put("/installments/{id}", installmentHandler.UpdatePlan)
			r.Delete("/installments/{id}", installmentHandler.DeletePlan)
			r.Get("/installments/{id}/payments", installmentHandler.ListPayments)
			r.Post("/installments/{id}/payments", installmentHandler.RecordPayment)

			r.Get("/friend-cards", friendCardHandler.ListFriendCards)
			r.Post("/friend-cards", friendCardHandler.CreateFriendCard)
			r.Put("/friend-cards/{id}", friendCardHandler.UpdateFriendCard)
			r.Delete("/friend-cards/{id}", friendCardHandler.DeleteFriendCard)
			r.Get("/friend-cards/{id}/qr", friendCardHandler.ShareQR)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
