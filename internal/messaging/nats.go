package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"zignasa/internal/metrics"

	"github.com/nats-io/nats.go"
)

// NATSProducer publishes each event on <prefix>.<event type>.
type NATSProducer struct {
	conn    *nats.Conn
	prefix  string
	logger  *slog.Logger
	metrics *metrics.MessagingMetrics
}

func NewNATSProducer(url, prefix string, logger *slog.Logger, m *metrics.MessagingMetrics) (*NATSProducer, error) {
	nc, err := nats.Connect(url, nats.Name("zignasa"))
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "prefix", prefix)

	return &NATSProducer{
		conn:    nc,
		prefix:  prefix,
		logger:  logger,
		metrics: m,
	}, nil
}

func (p *NATSProducer) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

func (p *NATSProducer) Publish(ctx context.Context, event Event) error {
	subject := p.Subject(event.Type)

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	start := time.Now()
	err = p.conn.Publish(subject, payload)
	if err == nil {
		err = p.conn.FlushTimeout(2 * time.Second)
	}
	p.metrics.RecordPublish(ctx, "nats", subject, time.Since(start), err)

	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event to NATS", "subject", subject, "error", err)
		return err
	}

	p.logger.InfoContext(ctx, "event published to NATS", "subject", subject, "team_id", event.TeamID)
	return nil
}

func (p *NATSProducer) PingContext(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return nats.ErrConnectionClosed
	}
	return nil
}

func (p *NATSProducer) Close() error {
	p.conn.Close()
	return nil
}
