package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"zignasa/internal/metrics"

	"github.com/IBM/sarama"
)

// KafkaProducer writes all events to one topic keyed by team id, so events of
// a team stay ordered within a partition.
type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
	metrics  *metrics.MessagingMetrics
}

func NewKafkaProducer(brokers []string, topic string, logger *slog.Logger, m *metrics.MessagingMetrics) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.ClientID = "zignasa"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	logger.Info("kafka producer initialized", "brokers", brokers, "topic", topic)

	return newKafkaProducer(producer, topic, logger, m), nil
}

func newKafkaProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger, m *metrics.MessagingMetrics) *KafkaProducer {
	return &KafkaProducer{
		producer: producer,
		topic:    topic,
		logger:   logger,
		metrics:  m,
	}
}

func (p *KafkaProducer) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(event.TeamID, 10)),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
	}

	start := time.Now()
	partition, offset, err := p.producer.SendMessage(msg)
	p.metrics.RecordPublish(ctx, "kafka", p.topic, time.Since(start), err)

	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send event to kafka", "error", err)
		return err
	}

	p.logger.InfoContext(ctx, "event sent to kafka", "topic", p.topic, "partition", partition, "offset", offset, "type", event.Type)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
