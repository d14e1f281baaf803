// Package events publishes domain events to NATS.
//
// Subjects are {prefix}.{type}, for example:
//
//	pestid.identification.completed
//	pestid.tracking.created
//
// Payloads are JSON-encoded Event envelopes. Publishing is fire-and-forget:
// callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/pestid/internal/config"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event types.
const (
	TypeIdentificationCompleted = "identification.completed"
	TypeTrackingCreated         = "tracking.created"
)

// Event is the envelope published for every domain event.
type Event struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data"`
}

// Publisher sends domain events.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
	Close() error
}

// New returns a NATS publisher, or a Nop publisher when cfg.URL is empty.
func New(cfg config.EventsConfig, logger *zap.Logger) (Publisher, error) {
	if cfg.URL == "" {
		return Nop{}, nil
	}
	return Connect(cfg.URL, cfg.SubjectPrefix, logger)
}

// NATSPublisher publishes events on a NATS connection.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// Connect dials url and returns a publisher using subject prefix.
func Connect(url, prefix string, logger *zap.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = "pestid"
	}

	nc, err := nats.Connect(url,
		nats.Name("pestid"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	logger.Info("connected to NATS", zap.String("url", url), zap.String("prefix", prefix))

	return &NATSPublisher{conn: nc, prefix: prefix, logger: logger, now: time.Now}, nil
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

// Publish marshals data into an Event and publishes it.
func (p *NATSPublisher) Publish(ctx context.Context, eventType string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	msg, err := json.Marshal(Event{
		ID:   uuid.NewString(),
		Type: eventType,
		Time: p.now().UTC(),
		Data: payload,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	if err := p.conn.Publish(p.Subject(eventType), msg); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	err := p.conn.FlushTimeout(2 * time.Second)
	p.conn.Close()
	if err != nil && err != nats.ErrConnectionClosed {
		return fmt.Errorf("flush nats connection: %w", err)
	}
	return nil
}

// Nop discards all events.
type Nop struct{}

// Publish discards the event.
func (Nop) Publish(context.Context, string, any) error {
	return nil
}

// Close is a no-op.
func (Nop) Close() error {
	return nil
}

var (
	_ Publisher = (*NATSPublisher)(nil)
	_ Publisher = Nop{}
)
