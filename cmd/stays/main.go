package main

import (
	billingrepo "innkeeper/internal/billing/repository"
	billingservice "innkeeper/internal/billing/service"
	billingvalidator "innkeeper/internal/billing/validator"
	"innkeeper/internal/stays/handler"
	"innkeeper/internal/stays/repository"
	"innkeeper/internal/stays/service"
	"innkeeper/pkg/app"
	"innkeeper/pkg/config"
	"innkeeper/pkg/events"
	httputil "innkeeper/pkg/http"
	"innkeeper/pkg/kafka"
	kafka_config "innkeeper/pkg/kafka/config"
)

const ServiceName = "stays"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Stays service")
	cfg.SetMongo()

	stayService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewStayHandler(stayService, cfg.Log),
		httputil.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.StayService {
	emitter := initEmitter(cfg)

	// Checkout finalizes the invoice synchronously, so the stays service
	// carries its own billing composer over the shared collections.
	finalizer := billingservice.NewBillingService(
		billingrepo.NewMongoInvoiceRepository(cfg),
		billingrepo.NewMongoTransactionRepository(cfg),
		billingrepo.NewMongoChargeSources(cfg),
		billingvalidator.NewPaymentValidator(cfg.Log),
		emitter,
		cfg,
	)

	stayService := service.NewStayService(
		repository.NewMongoStayRepository(cfg),
		repository.NewMongoRoomRepository(cfg),
		repository.NewMongoBookingStore(cfg),
		repository.NewServiceCatalog(cfg),
		finalizer,
		emitter,
		cfg,
	)

	cfg.Log.Info("Stay service initialized", "database", cfg.MongoDatabaseName)
	return stayService
}

func initEmitter(cfg *config.Config) events.Emitter {
	producer, err := kafka.NewProducer(kafka_config.Load(cfg.KafkaBrokers), cfg.KafkaEventsTopic)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, events disabled", "error", err)
		return events.NewNopEmitter()
	}
	return events.NewKafkaEmitter(producer, cfg.Log)
}
