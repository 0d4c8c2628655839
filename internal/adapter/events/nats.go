// internal/adapter/events/nats.go

package events

import (
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"poidash/internal/config"
	"poidash/internal/domain/dashboard"
)

// NATSBus implements dashboard.EventBus on a NATS connection
type NATSBus struct {
	conn *nats.Conn
}

// NewNATSBus wraps an established NATS connection
func NewNATSBus(conn *nats.Conn) *NATSBus {
	return &NATSBus{
		conn: conn,
	}
}

// Connect opens a NATS connection with the configured reconnect policy
func Connect(cfg config.NATSConfig) (*NATSBus, error) {
	options := []nats.Option{
		nats.Name("poidash"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return NewNATSBus(nc), nil
}

// Publish sends data on subject
func (b *NATSBus) Publish(subject string, data []byte) error {
	if err := b.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers handler for messages on subject
func (b *NATSBus) Subscribe(subject string, handler func(dashboard.Message)) (dashboard.Subscription, error) {
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(dashboard.Message{Subject: msg.Subject, Data: msg.Data})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return sub, nil
}

// Close drains pending messages and closes the connection
func (b *NATSBus) Close() error {
	return b.conn.Drain()
}

var _ dashboard.EventBus = (*NATSBus)(nil)
