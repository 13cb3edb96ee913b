package tradepublisher

import (
	"context"

	tradepublisherv1 "github.com/muhammadchandra19/exchange-core/internal/domain/trade-publisher/v1"
	"github.com/muhammadchandra19/exchange-core/pkg/config"
	"github.com/muhammadchandra19/exchange-core/pkg/errors"
	"github.com/muhammadchandra19/exchange-core/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Publisher writes executed trades to the trade topic.
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      logger.Interface
}

// NewPublisher creates a new Kafka publisher for executed trades.
func NewPublisher(cfg config.KafkaConfig, log logger.Interface) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.TradeTopic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// PublishTrade publishes a trade payload to the trade topic.
func (p *Publisher) PublishTrade(ctx context.Context, payload *tradepublisherv1.TradePayload) error {
	msg := kafka.Message{
		Key:   []byte(payload.TradeID),
		Value: tradepublisherv1.ToBytes(payload),
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(err,
			logger.Field{Key: "tradeID", Value: payload.TradeID},
			logger.Field{Key: "pair", Value: payload.Pair},
		)
		return errors.NewTracer("failed to publish trade").Wrap(err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
