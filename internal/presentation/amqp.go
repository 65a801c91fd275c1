package presentation

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// SnapshotExchange is the topic exchange snapshots are published to.
const SnapshotExchange = "wallet_snapshots"

// Publisher is the subset of *amqp.Channel the AMQP presenter needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPPresenter publishes snapshots as JSON with routing key wallet.<variant>.
type AMQPPresenter struct {
	channel  Publisher
	exchange string
}

// NewAMQPPresenter builds a presenter publishing to exchange.
func NewAMQPPresenter(channel Publisher, exchange string) *AMQPPresenter {
	if exchange == "" {
		exchange = SnapshotExchange
	}
	return &AMQPPresenter{channel: channel, exchange: exchange}
}

// DeclareExchange declares the durable topic exchange snapshots go to.
func DeclareExchange(ch *amqp.Channel, exchange string) error {
	if exchange == "" {
		exchange = SnapshotExchange
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}

// Present implements Presenter.
func (p *AMQPPresenter) Present(ctx context.Context, s Snapshot) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	err = p.channel.PublishWithContext(ctx, p.exchange, "wallet."+s.Variant, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   s.ID,
		Timestamp:   s.At,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}
