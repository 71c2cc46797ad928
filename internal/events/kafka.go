package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"currency-ledger-go/internal/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const defaultWriteTimeout = 10 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON encoded events. The topic name is the
// configured prefix followed by the event topic.
type KafkaPublisher struct {
	writer messageWriter
	prefix string
}

func NewKafkaPublisher(cfg models.EventsConfig) *KafkaPublisher {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			WriteTimeout:           timeout,
			AllowAutoTopicCreation: true,
		},
		prefix: cfg.TopicPrefix,
	}
}

// NewPublisher returns a KafkaPublisher when brokers are configured and a
// NopPublisher otherwise.
func NewPublisher(cfg models.EventsConfig) Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		zap.L().Info("No Kafka brokers configured, ledger events disabled")
		return NopPublisher{}
	}
	zap.L().Info("Publishing ledger events to Kafka",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic_prefix", cfg.TopicPrefix))
	return NewKafkaPublisher(cfg)
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event any) error {
	msg, err := newMessage(p.prefix+topic, event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", msg.Topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func newMessage(topic string, event any) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode %s event: %w", topic, err)
	}
	msg := kafka.Message{Topic: topic, Value: data}
	if keyed, ok := event.(Keyed); ok {
		msg.Key = []byte(keyed.EventKey())
	}
	return msg, nil
}
