package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/Yaro-bit/SimpleSalesman/internal/config"
	"github.com/Yaro-bit/SimpleSalesman/internal/logger"
	"github.com/Yaro-bit/SimpleSalesman/internal/model"
)

// Publisher announces finished imports to other services.
type Publisher interface {
	PublishImportCompleted(ctx context.Context, event model.ImportCompletedEvent) error
	Close() error
}

// New returns an AMQP publisher when RabbitMQ is enabled and a no-op one otherwise.
func New(cfg config.RabbitMQConfig) (Publisher, error) {
	if !cfg.Enabled {
		return NoopPublisher{}, nil
	}
	return NewAMQPPublisher(cfg)
}

type AMQPPublisher struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	log        zerolog.Logger
}

func NewAMQPPublisher(cfg config.RabbitMQConfig) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-delete
		false,        // internal
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	return &AMQPPublisher{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		log:        logger.Component("events"),
	}, nil
}

func (p *AMQPPublisher) PublishImportCompleted(ctx context.Context, event model.ImportCompletedEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish import %s: %w", event.ImportID, err)
	}
	p.log.Debug().Str("import_id", event.ImportID).Str("routing_key", p.routingKey).Msg("Published import event")
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

func newPublishing(event model.ImportCompletedEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Type:         "import.completed",
		Body:         body,
	}, nil
}

type NoopPublisher struct{}

func (NoopPublisher) PublishImportCompleted(context.Context, model.ImportCompletedEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
