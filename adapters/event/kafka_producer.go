package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/internal/config"
	"github.com/khoahotran/devfolio/internal/domain/portfolio"
	"github.com/khoahotran/devfolio/pkg/logger"
)

const TopicPortfolioChanges = "portfolio.changes"

// messageWriter is the part of kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	ChangesWriter messageWriter
	logger        logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = TopicPortfolioChanges
	}

	changesWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}

	log.Info("Initialize Kafka producer successfully.", zap.String("topic", topic))

	return &KafkaProducerClient{ChangesWriter: changesWriter, logger: log}, nil
}

// PublishChange writes one change event keyed by owner, so events for an owner stay ordered.
func (c *KafkaProducerClient) PublishChange(ctx context.Context, ev portfolio.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	err = c.ChangesWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OwnerID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() error {
	if c.ChangesWriter == nil {
		return nil
	}
	err := c.ChangesWriter.Close()
	c.logger.Info("Closed Kafka producer")
	return err
}
