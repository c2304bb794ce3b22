package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/billing"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/config"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/customer"
	posHttp "github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/handler/http"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/metrics"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/order"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/pricing"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/report"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/seed"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg)
	log.Info().Msg("POS service starting...")
	log.Debug().Interface("config_loaded", cfg).Msg("Configuration loaded")

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SettingsPath).Msg("Failed to load shop settings")
	}
	loc := settings.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	productRepo := catalog.NewMemoryRepository()
	customerRepo := customer.NewMemoryRepository()
	orderRepo := order.NewMemoryRepository()

	if cfg.SeedSampleData {
		repos := seed.Repositories{Products: productRepo, Customers: customerRepo, Orders: orderRepo}
		if err := seed.Load(context.Background(), repos, loc); err != nil {
			log.Fatal().Err(err).Msg("Failed to load sample data")
		}
	}

	catalogSvc := catalog.NewService(productRepo)
	customerSvc := customer.NewService(customerRepo)
	orderSvc := order.NewService(orderRepo,
		order.WithClock(clock),
		order.WithCustomerLookup(customerSvc),
		order.WithFreeStatusTransitions(settings.POS.FreeStatusTransitions),
	)
	billingSvc := billing.NewService(catalogSvc, customerSvc, orderSvc, billing.Config{
		Calculator:           pricing.NewCalculator(settings.POS.TaxRate),
		DefaultPaymentMethod: settings.POS.DefaultPaymentMethod,
		Now:                  clock,
	})
	reportSvc := report.NewService(orderSvc, customerSvc, catalogSvc, report.WithClock(clock))

	metrics.Register(prometheus.DefaultRegisterer)

	router := posHttp.NewRouter(
		posHttp.NewProductHandler(catalogSvc, settings.Inventory.LowStockThreshold),
		posHttp.NewCustomerHandler(customerSvc, loc),
		posHttp.NewSessionHandler(billingSvc),
		posHttp.NewOrderHandler(orderSvc, loc),
		posHttp.NewReportHandler(reportSvc),
	)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.App.Port).
			Str("store", settings.Store.Name).
			Str("tax_rate", settings.POS.TaxRate.String()).
			Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown failed")
	}
	log.Info().Msg("POS service stopped gracefully")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", "pos-service").Logger()
}
