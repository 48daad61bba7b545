package main

import (
	"innkeeper/internal/reservations/handler"
	"innkeeper/internal/reservations/repository"
	"innkeeper/internal/reservations/service"
	"innkeeper/internal/reservations/validator"
	"innkeeper/pkg/app"
	"innkeeper/pkg/config"
	"innkeeper/pkg/events"
	httputil "innkeeper/pkg/http"
	"innkeeper/pkg/kafka"
	kafka_config "innkeeper/pkg/kafka/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Reservations service")
	cfg.SetMongo()

	reservationService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewReservationHandler(reservationService, cfg.Log),
		httputil.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ReservationService {
	reservationValidator := validator.NewReservationValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewReservationLockRepository(cfg)
	roomTypeRepo := repository.NewRoomTypeRepository(cfg)
	serviceCatalog := repository.NewServiceCatalog(cfg)

	emitter := initEmitter(cfg)

	reservationService := service.NewReservationService(
		bookingRepo,
		lockRepo,
		roomTypeRepo,
		serviceCatalog,
		reservationValidator,
		emitter,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService
}

func initEmitter(cfg *config.Config) events.Emitter {
	producer, err := kafka.NewProducer(kafka_config.Load(cfg.KafkaBrokers), cfg.KafkaEventsTopic)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, events disabled", "error", err)
		return events.NewNopEmitter()
	}
	return events.NewKafkaEmitter(producer, cfg.Log)
}
