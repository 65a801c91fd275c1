package infra

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Broker is an open AMQP connection and the channel publishers use.
type Broker struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
}

// NewAMQPBroker dials url, naming the connection so it can be told apart in
// the broker's management UI, and opens one channel.
func NewAMQPBroker(ctx context.Context, url, connectionName string) (*Broker, error) {
	if url == "" {
		return nil, fmt.Errorf("amqp url is required")
	}

	var conn *amqp.Connection
	err := retryConnect(ctx, func() error {
		c, err := amqp.DialConfig(url, amqp.Config{
			Properties: amqp.Table{"connection_name": connectionName},
		})
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	return &Broker{Conn: conn, Channel: ch}, nil
}

// Healthy reports whether the connection and channel are still open.
func (b *Broker) Healthy() error {
	if b == nil {
		return nil
	}
	if b.Conn.IsClosed() || b.Channel.IsClosed() {
		return amqp.ErrClosed
	}
	return nil
}

// Close closes the channel and then the connection.
func (b *Broker) Close() error {
	if b == nil {
		return nil
	}
	chErr := b.Channel.Close()
	if err := b.Conn.Close(); err != nil {
		return err
	}
	return chErr
}
