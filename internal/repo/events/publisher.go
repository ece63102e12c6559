package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"

	"github.com/aitwy/aitwy-server/internal/config"
	"github.com/aitwy/aitwy-server/internal/models"
	"github.com/aitwy/aitwy-server/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, event models.AccountEvent) error
	Close() error
}

// enqueueTimeout bounds how long an auth request waits for room in the
// producer buffer. Delivery itself happens in the background.
const enqueueTimeout = 250 * time.Millisecond

var errEnqueueTimeout = errors.New("producer buffer full")

type kafkaPublisher struct {
	producer sarama.AsyncProducer
	topic    string
	drained  chan struct{}
}

// NewPublisher returns a Kafka-backed publisher, or a no-op one when no
// brokers are configured.
func NewPublisher(cfg config.KafkaConfig) (Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return noopPublisher{}, nil
	}

	sc := sarama.NewConfig()
	sc.ClientID = "aitwy-server"
	sc.Producer.Return.Errors = true
	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Retry.Max = 3
	sc.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewKafkaPublisher(producer, cfg.Topic), nil
}

// NewKafkaPublisher publishes through producer and logs delivery failures.
func NewKafkaPublisher(producer sarama.AsyncProducer, topic string) Publisher {
	log := logger.MustNamed("events")
	return newKafkaPublisher(producer, topic, func(pe *sarama.ProducerError) {
		log.Warnw("account event not delivered", "topic", pe.Msg.Topic, "error", pe.Err)
	})
}

func newKafkaPublisher(producer sarama.AsyncProducer, topic string, onError func(*sarama.ProducerError)) *kafkaPublisher {
	p := &kafkaPublisher{
		producer: producer,
		topic:    topic,
		drained:  make(chan struct{}),
	}
	go func() {
		defer close(p.drained)
		for pe := range producer.Errors() {
			onError(pe)
		}
	}()
	return p
}

// Publish hands the event to the producer without waiting for the broker.
func (p *kafkaPublisher) Publish(ctx context.Context, event models.AccountEvent) error {
	if event.Name == "" {
		return errors.New("event name is required")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish %s: %w", event.Name, err)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.UserID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event"), Value: []byte(event.Name)},
		},
		Timestamp: event.OccurredAt,
	}

	timer := time.NewTimer(enqueueTimeout)
	defer timer.Stop()
	select {
	case p.producer.Input() <- msg:
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", event.Name, ctx.Err())
	case <-timer.C:
		return fmt.Errorf("publish %s: %w", event.Name, errEnqueueTimeout)
	}

	logger.Debugw(ctx, "account event queued", "event", event.Name)
	return nil
}

// Close flushes buffered events and waits for the error drain to finish.
func (p *kafkaPublisher) Close() error {
	err := p.producer.Close()
	<-p.drained
	return err
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, models.AccountEvent) error { return nil }
func (noopPublisher) Close() error                                      { return nil }
