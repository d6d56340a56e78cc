package main

import (
	"rentabike/internal/bikes/handler"
	"rentabike/internal/bikes/repository"
	"rentabike/internal/bikes/service"
	"rentabike/internal/bikes/validator"
	"rentabike/pkg/app"
	"rentabike/pkg/auth"
	"rentabike/pkg/cache"
	"rentabike/pkg/clock"
	"rentabike/pkg/config"
	"rentabike/pkg/middleware"
)

const ServiceName = "bikes"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bikes service")
	bikeService := initServices(cfg)

	authenticator := auth.NewAuthenticator(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.AdminTokenTTL)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewBikeHandler(bikeService, middleware.RequireAdmin(authenticator, cfg.Log), cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.BikeService {
	bikeRepo := repository.NewMongoBikeRepository(cfg)
	catalogCache := cache.New(cfg.Client.Redis, "rentabike")

	bikeService := service.NewBikeService(
		bikeRepo,
		catalogCache,
		validator.NewBikeValidator(),
		clock.System{},
		cfg,
	)

	cfg.Log.Info("Bike service initialized",
		"database", cfg.MongoDatabaseName,
		"cache_enabled", cfg.Client.Redis != nil,
	)
	return bikeService
}
