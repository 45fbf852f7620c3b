package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/internal/config"
	"github.com/khoahotran/devfolio/internal/domain/portfolio"
	"github.com/khoahotran/devfolio/pkg/logger"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaChangeConsumer delivers change events to one process. Every instance joins its own
// consumer group, so each one sees every event.
type KafkaChangeConsumer struct {
	reader messageReader
	logger logger.Logger
}

func NewKafkaChangeConsumer(cfg config.Config, log logger.Logger) (*KafkaChangeConsumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = TopicPortfolioChanges
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       topic,
		GroupID:     "devfolio-" + uuid.NewString(),
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return &KafkaChangeConsumer{reader: reader, logger: log}, nil
}

// Changes reads until ctx is done. Undecodable messages are logged and skipped.
func (c *KafkaChangeConsumer) Changes(ctx context.Context, fn func(portfolio.ChangeEvent)) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read change event: %w", err)
		}

		var ev portfolio.ChangeEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			c.logger.Warn("Failed to unmarshal change event. Skipping.",
				zap.String("key", string(msg.Key)), zap.Error(err))
			continue
		}
		c.logger.Debug("Received change event",
			zap.String("collection", string(ev.Collection)),
			zap.String("op", string(ev.Op)),
			zap.String("id", ev.ID))
		fn(ev)
	}
}

func (c *KafkaChangeConsumer) Close() error {
	return c.reader.Close()
}
