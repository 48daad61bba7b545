package events

import (
	"context"
	"encoding/json"
	"time"

	"innkeeper/pkg/kafka"
	"innkeeper/pkg/logger"

	"github.com/google/uuid"
)

// Semantic event types emitted by the engine. Consumers (notification
// service, reporting) subscribe downstream; the engine never waits on them.
const (
	BookingConfirmed = "BookingConfirmed"
	BookingApproved  = "BookingApproved"
	BookingCancelled = "BookingCancelled"
	CheckedIn        = "CheckedIn"
	CheckedOut       = "CheckedOut"
	PaymentRecorded  = "PaymentRecorded"
)

// Event carries the entity id the event is about. EntityID doubles as the
// partition key so one booking's events stay ordered.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Emitter delivers events fire-and-forget. Delivery failure must never
// roll back or block the state change that produced the event.
type Emitter interface {
	Emit(eventType, entityID string)
}

type kafkaEmitter struct {
	producer *kafka.Producer
	log      *logger.Logger
	timeout  time.Duration
}

func NewKafkaEmitter(producer *kafka.Producer, log *logger.Logger) Emitter {
	return &kafkaEmitter{
		producer: producer,
		log:      log,
		timeout:  5 * time.Second,
	}
}

func (e *kafkaEmitter) Emit(eventType, entityID string) {
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		e.log.Error("Failed to marshal event", "type", eventType, "entity_id", entityID, "error", err)
		return
	}

	// Detached from the request context: the caller's transaction has
	// already committed and must not be tied to broker latency.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()

		if err := e.producer.Publish(ctx, kafka.Message{
			Key:       entityID,
			Value:     payload,
			Timestamp: event.OccurredAt,
		}); err != nil {
			e.log.Error("Failed to publish event",
				"type", eventType,
				"entity_id", entityID,
				"event_id", event.ID,
				"error", err,
			)
		}
	}()
}

type nopEmitter struct{}

// NewNopEmitter returns an emitter that drops everything. Test helper.
func NewNopEmitter() Emitter {
	return nopEmitter{}
}

func (nopEmitter) Emit(string, string) {}
