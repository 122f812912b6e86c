package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AMQPFeed fans change events out through a topic exchange. The routing key
// is the table name and every subscription gets its own exclusive queue.
type AMQPFeed struct {
	conn     *amqp.Connection
	exchange string
	buffer   int
	logger   zerolog.Logger

	pubMu   sync.Mutex
	pubChan *amqp.Channel
}

func NewAMQPFeed(url, exchange string, buffer int, logger zerolog.Logger) (*AMQPFeed, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger = logger.With().Str("component", "amqp_feed").Logger()
	logger.Info().Str("exchange", exchange).Msg("Connected to RabbitMQ")

	return &AMQPFeed{
		conn:     conn,
		exchange: exchange,
		buffer:   buffer,
		logger:   logger,
		pubChan:  channel,
	}, nil
}

func (f *AMQPFeed) Subscribe(ctx context.Context, table string) (Subscription, error) {
	if f.conn.IsClosed() {
		return nil, ErrFeedClosed
	}

	channel, err := f.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := channel.QueueDeclare(
		"",    // name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(q.Name, table, f.exchange, false, nil); err != nil {
		channel.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	consumerTag := "clubtrack-" + table + "-" + q.Name
	msgs, err := channel.Consume(
		q.Name,      // queue
		consumerTag, // consumer
		true,        // auto-ack
		true,        // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("failed to consume: %w", err)
	}

	logger := f.logger.With().Str("table", table).Str("queue", q.Name).Logger()

	sub, subCtx := newSubscription(ctx, f.buffer, func() error {
		if err := channel.Cancel(consumerTag, false); err != nil && !channel.IsClosed() {
			logger.Error().Err(err).Msg("Failed to cancel RabbitMQ consumer")
		}
		if channel.IsClosed() {
			return nil
		}
		return channel.Close()
	})

	sub.run(func() {
		for {
			select {
			case <-subCtx.Done():
				logger.Info().Msg("Stopping RabbitMQ consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Warn().Msg("RabbitMQ message channel closed")
					return
				}
				evt, err := DecodeEvent(msg.Body)
				if err != nil {
					logger.Error().Err(err).Msg("Dropping malformed message")
					continue
				}
				if !sub.emit(subCtx, evt) {
					return
				}
			}
		}
	})

	logger.Info().Msg("RabbitMQ consumer started")
	return sub, nil
}

func (f *AMQPFeed) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	f.pubMu.Lock()
	defer f.pubMu.Unlock()

	return f.pubChan.PublishWithContext(
		publishCtx,
		f.exchange, // exchange
		evt.Table,  // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
}

func (f *AMQPFeed) Close() error {
	if f.pubChan != nil {
		if err := f.pubChan.Close(); err != nil {
			f.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}

	if f.conn != nil && !f.conn.IsClosed() {
		if err := f.conn.Close(); err != nil {
			f.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return nil
}
