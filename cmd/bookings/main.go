package main

import (
	"context"

	authhandler "rentabike/internal/auth/handler"
	bikerepository "rentabike/internal/bikes/repository"
	"rentabike/internal/bookings/handler"
	"rentabike/internal/bookings/notifier"
	"rentabike/internal/bookings/repository"
	"rentabike/internal/bookings/service"
	"rentabike/internal/bookings/validator"
	"rentabike/pkg/app"
	"rentabike/pkg/auth"
	"rentabike/pkg/clock"
	"rentabike/pkg/config"
	"rentabike/pkg/contracts"
	"rentabike/pkg/kafka"
	kafka_config "rentabike/pkg/kafka/config"
	kafka_middleware "rentabike/pkg/kafka/middleware"
	"rentabike/pkg/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")

	producer, metrics := initProducer(cfg)
	bookingService := initServices(cfg, producer)

	authenticator := auth.NewAuthenticator(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.AdminTokenTTL)
	admin := middleware.RequireAdmin(authenticator, cfg.Log)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, contracts.Handlers{
		handler.NewBookingHandler(bookingService, admin, cfg.Log),
		authhandler.NewAuthHandler(authenticator, cfg.Log),
	})
	serverApp.OnShutdown(func(ctx context.Context) {
		cfg.Log.Info("Draining in-flight notifications")
		bookingService.Wait()
	})
	serverApp.OnShutdown(func(ctx context.Context) {
		metrics.Log(cfg.Log)
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})
	serverApp.Run()
}

func initProducer(cfg *config.Config) (*kafka.Producer, *kafka_middleware.Metrics) {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(metrics.ProducerMiddleware())
	}
	return producer, metrics
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.BookingService {
	clk := clock.System{}
	bookingValidator := validator.NewBookingValidator(cfg.Log, clk, cfg.Location)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewBookingLockRepository(cfg)
	bikeRepo := bikerepository.NewMongoBikeRepository(cfg)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		bikeRepo,
		notifier.NewKafkaNotifier(producer, clk, cfg),
		bookingValidator,
		clk,
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"events_topic", cfg.BookingEventsTopic,
	)
	return bookingService
}
