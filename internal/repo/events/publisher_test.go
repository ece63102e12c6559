package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitwy/aitwy-server/internal/config"
	"github.com/aitwy/aitwy-server/internal/models"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	sent := make(chan *sarama.ProducerMessage, 1)
	producer := mocks.NewAsyncProducer(t, nil)
	producer.ExpectInputWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		sent <- msg
		return nil
	})

	occurred := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	event := models.AccountEvent{
		Name:       models.EventUserRegistered,
		UserID:     "65f0c0ffee0000000000beef",
		Email:      "ada@example.com",
		OccurredAt: occurred,
	}

	pub := NewKafkaPublisher(producer, "account-events")
	require.NoError(t, pub.Publish(context.Background(), event))

	var msg *sarama.ProducerMessage
	select {
	case msg = <-sent:
	case <-time.After(time.Second):
		t.Fatal("message never reached the producer")
	}
	assert.Equal(t, "account-events", msg.Topic)

	key, err := msg.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, event.UserID, string(key))

	value, err := msg.Value.Encode()
	require.NoError(t, err)
	var decoded models.AccountEvent
	require.NoError(t, json.Unmarshal(value, &decoded))
	assert.Equal(t, event.Name, decoded.Name)
	assert.Equal(t, event.Email, decoded.Email)
	assert.True(t, occurred.Equal(decoded.OccurredAt))

	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "user.registered", string(msg.Headers[0].Value))

	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_DeliveryErrorIsReported(t *testing.T) {
	producer := mocks.NewAsyncProducer(t, nil)
	producer.ExpectInputAndFail(errors.New("broker down"))

	failures := make(chan error, 1)
	pub := newKafkaPublisher(producer, "account-events", func(pe *sarama.ProducerError) {
		failures <- pe.Err
	})

	// the request path does not wait for the broker
	require.NoError(t, pub.Publish(context.Background(), models.AccountEvent{Name: models.EventUserLoggedIn, UserID: "u1"}))

	select {
	case err := <-failures:
		assert.ErrorContains(t, err, "broker down")
	case <-time.After(time.Second):
		t.Fatal("delivery error was not drained")
	}
	_ = pub.Close()
}

func TestKafkaPublisher_CanceledContext(t *testing.T) {
	producer := mocks.NewAsyncProducer(t, nil)
	pub := NewKafkaPublisher(producer, "account-events")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pub.Publish(ctx, models.AccountEvent{Name: models.EventUserVerified, UserID: "u1"})
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_FullBufferDoesNotBlock(t *testing.T) {
	producer := &stuckProducer{AsyncProducer: mocks.NewAsyncProducer(t, nil)}
	pub := newKafkaPublisher(producer, "account-events", func(*sarama.ProducerError) {})

	start := time.Now()
	err := pub.Publish(context.Background(), models.AccountEvent{Name: models.EventUserLoggedIn, UserID: "u1"})
	assert.ErrorIs(t, err, errEnqueueTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_RequiresName(t *testing.T) {
	producer := mocks.NewAsyncProducer(t, nil)
	pub := NewKafkaPublisher(producer, "account-events")

	assert.Error(t, pub.Publish(context.Background(), models.AccountEvent{UserID: "u1"}))
	require.NoError(t, pub.Close())
}

func TestNewPublisher_NoBrokers(t *testing.T) {
	pub, err := NewPublisher(config.KafkaConfig{Topic: "account-events"})
	require.NoError(t, err)
	assert.IsType(t, noopPublisher{}, pub)
	assert.NoError(t, pub.Publish(context.Background(), models.AccountEvent{Name: models.EventUserVerified}))
	assert.NoError(t, pub.Close())
}

// stuckProducer never accepts input, like a producer whose buffer is full.
type stuckProducer struct {
	sarama.AsyncProducer
}

func (stuckProducer) Input() chan<- *sarama.ProducerMessage {
	return make(chan *sarama.ProducerMessage)
}
