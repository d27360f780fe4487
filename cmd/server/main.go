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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/urbanstyle/tienda/internal/config"
	"github.com/urbanstyle/tienda/internal/es"
	"github.com/urbanstyle/tienda/internal/handlers"
	"github.com/urbanstyle/tienda/internal/hash"
	"github.com/urbanstyle/tienda/internal/logging"
	authmw "github.com/urbanstyle/tienda/internal/middleware/auth"
	loggingmw "github.com/urbanstyle/tienda/internal/middleware/logging"
	"github.com/urbanstyle/tienda/internal/models"
	"github.com/urbanstyle/tienda/internal/mykafka"
	httpserver "github.com/urbanstyle/tienda/internal/transport/http"
	"github.com/urbanstyle/tienda/pkg/db"
)

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	database, err := db.Open(context.Background(), cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	if err := seedAdmin(database, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("admin seed error: %v", err)
	}

	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = mykafka.NewProducer(cfg.KafkaBrokers)
	}

	var searchHandler *handlers.SearchHandler
	productHandler := &handlers.ProductHandler{DB: database, Producer: prod}
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		productHandler.ES = esClient
		productHandler.ESIndex = "products"
		searchHandler = &handlers.SearchHandler{ES: esClient, Index: "products"}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler:    &handlers.AuthHandler{DB: database, JWTSecret: cfg.JWTSecret, Producer: prod},
		ProductHandler: productHandler,
		OrderHandler:   &handlers.OrderHandler{DB: database},
		SearchHandler:  searchHandler,
		Gate:           &authmw.Gate{JWTSecret: cfg.JWTSecret},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}

// seedAdmin bootstraps the store administrator account when the env pair is
// configured, so a fresh database is usable without manual inserts.
func seedAdmin(database *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	err := database.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:          email,
		PasswordHash:   pwHash,
		Name:           "Admin",
		LastName:       "UrbanStyle",
		DocumentType:   "CC",
		DocumentNumber: "0",
		Phone:          "0",
		Role:           models.RoleAdmin,
	}
	return database.Create(&admin).Error
}
