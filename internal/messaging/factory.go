package messaging

import (
	"log/slog"

	"zignasa/internal/config"
	"zignasa/internal/metrics"
)

// NewPublisher picks the broker named by messaging.driver.
func NewPublisher(cfg config.MessagingConfig, logger *slog.Logger, m *metrics.MessagingMetrics) (Publisher, error) {
	switch cfg.Driver {
	case "nats":
		return NewNATSProducer(cfg.NATSURL, cfg.SubjectPrefix, logger, m)
	case "kafka":
		return NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger, m)
	default:
		logger.Info("messaging disabled, events are dropped")
		return Nop{}, nil
	}
}
