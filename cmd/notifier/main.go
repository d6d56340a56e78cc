package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rentabike/internal/notifications/handler"
	"rentabike/internal/notifications/mailer"
	"rentabike/internal/notifications/templates"
	"rentabike/pkg/config"
	"rentabike/pkg/kafka"
	kafka_config "rentabike/pkg/kafka/config"
	kafka_middleware "rentabike/pkg/kafka/middleware"
)

const (
	ServiceName   = "notifier"
	ConsumerGroup = "booking-notifier"
	shopName      = "Rent A Bike"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Notifier service")

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	smtpMailer := mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		FromName: shopName,
	})
	eventHandler := handler.NewBookingEventHandler(smtpMailer, templates.Shop{
		Name:         shopName,
		PaymentEmail: cfg.MailFrom,
		DashboardURL: cfg.SiteURL + "/admin",
		Location:     cfg.Location,
	}, cfg.AdminEmail, cfg.Log)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.BookingEventsTopic, ConsumerGroup, cfg.BookingEventsDLQTopic, eventHandler.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(metrics.ConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Consuming booking events", "topic", cfg.BookingEventsTopic, "group", ConsumerGroup)
	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	metrics.Log(cfg.Log)
	cfg.Log.Info("Notifier stopped")
}
