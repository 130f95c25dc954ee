// Package natspub publishes integration events on core NATS subjects of the
// form <prefix>.<type>.<aggregate id>.
package natspub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Rijon63/fothebys-auction-system/internal/config"
	"github.com/Rijon63/fothebys-auction-system/internal/event"
)

// conn is the subset of *nats.Conn used for publishing.
type conn interface {
	Publish(subject string, data []byte) error
}

// Publisher implements event.Publisher on a NATS connection.
type Publisher struct {
	nc     conn
	prefix string
	logger *slog.Logger
}

// Connect dials cfg.URL and returns a Publisher and the underlying
// connection, which the caller drains on shutdown.
func Connect(cfg config.NATSConfig, logger *slog.Logger) (*Publisher, *nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("fothebys"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", slog.Any("error", err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to nats: %w", err)
	}
	return New(nc, cfg.SubjectPrefix, logger), nc, nil
}

// New wraps an open connection.
func New(nc conn, prefix string, logger *slog.Logger) *Publisher {
	return &Publisher{nc: nc, prefix: prefix, logger: logger}
}

// Subject returns the subject an event is published on.
func (p *Publisher) Subject(e event.Event) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, e.Type, e.AggregateID)
}

// Publish sends e as JSON. Core NATS gives at-most-once delivery.
func (p *Publisher) Publish(ctx context.Context, e event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshalling event %s: %w", e.ID, err)
	}
	subject := p.Subject(e)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	p.logger.DebugContext(ctx, "event published",
		slog.String("subject", subject),
		slog.String("event_id", e.ID),
	)
	return nil
}
