package infrastructure

import (
	"context"
	"fmt"
	"time"

	"coinflip/config"
	"coinflip/domain/events"
	"coinflip/infrastructure/observability"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// messageWriter is the part of kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventPublisher implements the EventPublisher interface on a Kafka topic.
// Messages are keyed by subject so each event kind keeps its order within a partition.
type KafkaEventPublisher struct {
	writer        messageWriter
	subjectMapper *EventSubjectMapper
	timeout       time.Duration
}

// NewKafkaWriter creates a writer for the settlement event topic
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaEventPublisher creates a publisher over the given writer
func NewKafkaEventPublisher(writer messageWriter, subjectMapper *EventSubjectMapper) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		writer:        writer,
		subjectMapper: subjectMapper,
		timeout:       10 * time.Second,
	}
}

// Publish writes the event envelope to Kafka
func (p *KafkaEventPublisher) Publish(event events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	subject := p.subjectMapper.MapEventToSubject(event)
	envelope, err := NewEventEnvelope(event)
	if err != nil {
		return err
	}
	data, err := envelope.Marshal()
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(subject),
		Value: data,
		Time:  envelope.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(envelope.EventType)},
			{Key: "event_id", Value: []byte(envelope.EventId)},
		},
	})
	observability.GetMetrics().RecordEventPublished(config.EventSinkKafka, string(event.Type()), err)
	if err != nil {
		return fmt.Errorf("failed to publish event to Kafka: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventId,
		"key":       subject,
	}).Debug("Successfully published event to Kafka")
	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}
