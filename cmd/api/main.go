package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/opsdeskhq/opsdesk-backend/config"
	"github.com/opsdeskhq/opsdesk-backend/internal/modules/inventory"
	"github.com/opsdeskhq/opsdesk-backend/internal/modules/manufacturer"
	"github.com/opsdeskhq/opsdesk-backend/internal/modules/tracking"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading configuration from environment")
	}
	cfg := config.Load()

	logger := newLogger(cfg.Server.AppEnv)
	defer logger.Sync()

	db, err := sqlx.Connect("postgres", cfg.Postgres.URL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
	logger.Info("connected to database")

	// ---- Router ----
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(logger))

	// ---- Inventory ----
	ledgerRepo := inventory.NewLedgerPostgres(db, cfg.Inventory.AllowNegative)
	shopifySource := inventory.NewShopifySource(
		cfg.Shopify.StoreDomain, cfg.Shopify.AccessToken, cfg.Shopify.APIVersion, logger)
	inventoryService := inventory.NewService(ledgerRepo, shopifySource, logger)
	inventory.NewHandler(inventoryService).RegisterRoutes(router)

	// ---- Tracking ----
	carrierClient := tracking.NewCarrierClient(cfg.Tracking.BaseURL, cfg.Tracking.APIKey, cfg.Tracking.Timeout)
	trackingService := tracking.NewService(carrierClient, cfg.Tracking.Timeout, logger)
	tracking.NewHandler(trackingService).RegisterRoutes(router)

	// ---- Manufacturer Orders ----
	orderRepo := manufacturer.NewPostgresRepository(db, ledgerRepo)
	orderService := manufacturer.NewService(orderRepo, trackingService, logger)
	manufacturer.NewHandler(orderService).RegisterRoutes(router)

	// ---- Start Server ----
	logger.Info("server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.Server.AppEnv))
	if err := http.ListenAndServe(":"+cfg.Server.Port, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(appEnv string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if appEnv == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	return logger
}

// requestLogger logs one line per request with status and duration.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", middleware.GetReqID(r.Context())))
		})
	}
}
