package main

import (
	"innkeeper/internal/billing/handler"
	"innkeeper/internal/billing/repository"
	"innkeeper/internal/billing/service"
	"innkeeper/internal/billing/validator"
	"innkeeper/pkg/app"
	"innkeeper/pkg/config"
	"innkeeper/pkg/events"
	httputil "innkeeper/pkg/http"
	"innkeeper/pkg/kafka"
	kafka_config "innkeeper/pkg/kafka/config"
)

const ServiceName = "billing"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Billing service")
	cfg.SetMongo()

	billingService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewBillingHandler(billingService, cfg.Log),
		httputil.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.BillingService {
	billingService := service.NewBillingService(
		repository.NewMongoInvoiceRepository(cfg),
		repository.NewMongoTransactionRepository(cfg),
		repository.NewMongoChargeSources(cfg),
		validator.NewPaymentValidator(cfg.Log),
		initEmitter(cfg),
		cfg,
	)

	cfg.Log.Info("Billing service initialized", "database", cfg.MongoDatabaseName)
	return billingService
}

func initEmitter(cfg *config.Config) events.Emitter {
	producer, err := kafka.NewProducer(kafka_config.Load(cfg.KafkaBrokers), cfg.KafkaEventsTopic)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, events disabled", "error", err)
		return events.NewNopEmitter()
	}
	return events.NewKafkaEmitter(producer, cfg.Log)
}
