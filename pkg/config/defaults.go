package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "innkeeper"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Billing defaults. Single property, single currency; the room-charge
	// line uses the property-wide tax rate, services carry their own.
	DefaultCurrency    = "EUR"
	DefaultRoomTaxRate = 0.10

	// Advisory reservation locks auto-expire so a crashed holder cannot
	// wedge a room type.
	DefaultReservationLockTTL = 10 * time.Second

	DefaultAllowEarlyCheckIn = false

	DefaultKafkaBrokers     = "localhost:9092"
	DefaultKafkaEventsTopic = "innkeeper.events"

	DefaultPaginationLimit = 100
)
