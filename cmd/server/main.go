package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/asafonov/ecombot/internal/config"
	"github.com/asafonov/ecombot/internal/es"
	"github.com/asafonov/ecombot/internal/httpserver"
	"github.com/asafonov/ecombot/internal/models"
	"github.com/asafonov/ecombot/internal/notify"
	"github.com/asafonov/ecombot/internal/repo"
	"github.com/asafonov/ecombot/internal/search"
	"github.com/asafonov/ecombot/internal/service"
	pkgdb "github.com/asafonov/ecombot/pkg/db"
	"github.com/asafonov/ecombot/pkg/logging"
	loggingmw "github.com/asafonov/ecombot/pkg/middleware/logging"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.DeliveryAddress{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	gormRepo := repo.New(db)

	var dispatcher *notify.Dispatcher
	var notifier service.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		dispatcher = notify.NewDispatcher(cfg.KafkaBrokers, cfg.KafkaTopic)
		notifier = dispatcher
	} else {
		logger.Warn("kafka brokers not configured, order notifications disabled")
	}

	var searchSvc *search.Service
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		searchSvc = &search.Service{ES: esClient, Index: cfg.ESIndex}
	} else {
		logger.Warn("ES_URL not configured, product search disabled")
	}

	users := &service.UserService{Repo: gormRepo}
	catalog := &service.CatalogService{Repo: gormRepo}
	carts := &service.CartService{Repo: gormRepo}
	orders := &service.OrderService{Repo: gormRepo, Notifier: notifier}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	deps := &httpserver.Deps{
		Auth:      &httpserver.AuthHTTP{Svc: users, JWTSecret: cfg.JWTSecret},
		Catalog:   &httpserver.CatalogHTTP{Svc: catalog},
		Cart:      &httpserver.CartHTTP{Svc: carts},
		Checkout:  &httpserver.CheckoutHTTP{Orders: orders, Users: users},
		Profile:   &httpserver.ProfileHTTP{Svc: users},
		Admin:     &httpserver.AdminHTTP{Catalog: catalog, Orders: orders, Search: searchSvc},
		JWTSecret: cfg.JWTSecret,
	}
	if searchSvc != nil {
		deps.Search = &httpserver.SearchHTTP{Svc: searchSvc}
	}
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if dispatcher != nil {
		if err := dispatcher.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
