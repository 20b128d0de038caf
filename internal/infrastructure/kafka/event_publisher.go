package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/wms-platform/picklist-service/internal/domain"
	pkgkafka "github.com/wms-platform/picklist-service/pkg/kafka"
	"github.com/wms-platform/picklist-service/pkg/logging"
	"github.com/wms-platform/picklist-service/pkg/metrics"
	"github.com/wms-platform/picklist-service/pkg/resilience"
)

const eventSource = "picklist-service"

// EventPublisher publishes domain events to Kafka through a circuit breaker
type EventPublisher struct {
	producer *pkgkafka.Producer
	breaker  *resilience.CircuitBreaker
	topic    string
	logger   *logging.Logger
	metrics  *metrics.Metrics
}

// NewEventPublisher creates a Kafka-backed event publisher
func NewEventPublisher(producer *pkgkafka.Producer, topic string, logger *logging.Logger, m *metrics.Metrics) *EventPublisher {
	var onStateChange resilience.StateChangeFunc
	if m != nil {
		onStateChange = func(name string, state int) {
			m.SetCircuitBreakerState(name, state)
			if state == 2 {
				m.RecordCircuitBreakerTrip(name)
			}
		}
	}

	breaker := resilience.NewCircuitBreaker(
		resilience.DefaultCircuitBreakerConfig("kafka-publisher"),
		logger.Logger,
		onStateChange,
	)

	return &EventPublisher{
		producer: producer,
		breaker:  breaker,
		topic:    topic,
		logger:   logger.WithComponent("kafka-event-publisher"),
		metrics:  m,
	}
}

// Publish publishes a single domain event
func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	subject := eventSubject(event)

	envelope, err := pkgkafka.NewEnvelope(event.EventType(), eventSource, subject, event)
	if err != nil {
		return fmt.Errorf("wrapping event %s: %w", event.EventType(), err)
	}

	start := time.Now()
	_, err = p.breaker.Execute(ctx, func() (interface{}, error) {
		return nil, p.producer.PublishEvent(ctx, p.topic, envelope)
	})
	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(p.topic, event.EventType(), err == nil, time.Since(start))
	}
	if err != nil {
		return fmt.Errorf("publishing event %s to topic %s: %w", event.EventType(), p.topic, err)
	}

	p.logger.WithContext(ctx).Debug("Published domain event",
		"eventType", event.EventType(),
		"topic", p.topic,
		"subject", subject,
	)
	return nil
}

// PublishAll publishes events in order, stopping at the first failure
func (p *EventPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// eventSubject extracts the partition key so all events of one run land on
// the same partition, in order.
func eventSubject(event domain.DomainEvent) string {
	switch e := event.(type) {
	case *domain.PicklistSealedEvent:
		return e.RunID
	case *domain.PicklistRunCompletedEvent:
		return e.RunID
	case *domain.PicklistRunFailedEvent:
		return e.RunID
	default:
		return ""
	}
}
