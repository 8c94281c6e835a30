package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/rs/zerolog"
)

// Producer is the subset of *kafka.Producer the emitter needs.
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// KafkaConfig configures the Kafka sink.
type KafkaConfig struct {
	Brokers  string
	Topic    string
	ClientID string
}

// ledgerLogRecord is the JSON value of each Kafka message.
type ledgerLogRecord struct {
	Message   string    `json:"message"`
	Service   string    `json:"service"`
	EmittedAt time.Time `json:"emitted_at"`
}

// KafkaEmitter publishes ledger log messages to a Kafka topic. Emit only
// queues the message with the producer; delivery reports are consumed in the
// background so a slow broker never holds a caller's invocation lock.
type KafkaEmitter struct {
	producer   Producer
	topic      string
	deliveries chan kafka.Event
	done       chan struct{}
	log        zerolog.Logger
	now        func() time.Time
}

// NewKafkaProducer creates an idempotent producer.
func NewKafkaProducer(cfg KafkaConfig) (*kafka.Producer, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "pooled-multisender"
	}
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"client.id":         clientID,

		"acks":                                  "all",
		"enable.idempotence":                    true,
		"max.in.flight.requests.per.connection": 5,

		"delivery.timeout.ms": 30000,
		"request.timeout.ms":  30000,
		"retries":             5,
		"retry.backoff.ms":    100,

		"linger.ms":         5,
		"compression.type":  "none",
		"message.max.bytes": 2 * 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return producer, nil
}

func NewKafkaEmitter(producer Producer, topic string, log zerolog.Logger) *KafkaEmitter {
	e := &KafkaEmitter{
		producer:   producer,
		topic:      topic,
		deliveries: make(chan kafka.Event, deliveryBuffer),
		done:       make(chan struct{}),
		log:        log,
		now:        time.Now,
	}
	go e.watch()
	return e
}

const deliveryBuffer = 1024

func (e *KafkaEmitter) Emit(_ context.Context, message string) error {
	value, err := json.Marshal(ledgerLogRecord{
		Message:   message,
		Service:   "pooled-multisender",
		EmittedAt: e.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding ledger log: %w", err)
	}

	err = e.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &e.topic, Partition: kafka.PartitionAny},
		Value:          value,
		Headers:        []kafka.Header{{Key: "content-type", Value: []byte("application/json")}},
	}, e.deliveries)
	if err != nil {
		return fmt.Errorf("kafka produce: %w", err)
	}
	return nil
}

// watch logs failed deliveries until Close.
func (e *KafkaEmitter) watch() {
	defer close(e.done)
	for ev := range e.deliveries {
		m, ok := ev.(*kafka.Message)
		if !ok {
			e.log.Warn().Str("event", fmt.Sprint(ev)).Msg("unexpected kafka delivery event")
			continue
		}
		if m.TopicPartition.Error != nil {
			e.log.Error().Err(m.TopicPartition.Error).Str("value", string(m.Value)).Msg("ledger log not delivered")
		}
	}
}

// Close flushes pending messages, closes the producer and waits for the
// remaining delivery reports.
func (e *KafkaEmitter) Close() {
	if n := e.producer.Flush(5000); n > 0 {
		e.log.Warn().Int("pending", n).Msg("kafka producer closed with undelivered messages")
	}
	e.producer.Close()
	close(e.deliveries)
	<-e.done
}
