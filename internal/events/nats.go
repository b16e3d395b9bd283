package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes each event as JSON on "<prefix>.<type>".
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	log    hclog.Logger
}

// ConnectNATS dials url and keeps reconnecting for the life of the process.
func ConnectNATS(url, clientName, prefix string, logger hclog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "server", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	logger.Info("connected to nats", "server", nc.ConnectedUrl())
	return &NATSPublisher{conn: nc, prefix: prefix, log: logger}, nil
}

// Subject returns the subject an event type is published on.
func Subject(prefix string, t Type) string {
	return prefix + "." + string(t)
}

func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", ev.Type, err)
	}
	if err := p.conn.Publish(Subject(p.prefix, ev.Type), data); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", ev.Type, err)
	}
	return nil
}

// Check reports whether the connection is currently usable. It matches the
// health aggregator's check signature.
func (p *NATSPublisher) Check() error {
	if status := p.conn.Status(); status != nats.CONNECTED {
		return fmt.Errorf("nats connection is %s", status)
	}
	return nil
}

// Close flushes pending messages before closing the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
