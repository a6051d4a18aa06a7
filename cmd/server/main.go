package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/atvtrailers/shop-api/internal/auth"
	"github.com/atvtrailers/shop-api/internal/config"
	"github.com/atvtrailers/shop-api/internal/database"
	"github.com/atvtrailers/shop-api/internal/httpapi"
	"github.com/atvtrailers/shop-api/internal/notify"
	"github.com/atvtrailers/shop-api/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	logger := auth.DefaultLogger()
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTIssuer, logger)

	app := httpapi.New(httpapi.Dependencies{
		Tokens:     tokens,
		Users:      repository.NewUsers(db),
		Trailers:   repository.NewTrailers(db),
		Components: repository.NewComponents(db),
		Orders:     repository.NewOrders(db, cfg.OrderIDPrefix),
		Resets:     &notify.LogDispatcher{Logger: logger},
		Logger:     logger,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()
	logger.Info("server listening on %s", cfg.HTTPAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
