package queue

import (
	"context"
	"fmt"
	"sync"

	"hirelens/internal/config"
	"hirelens/internal/errors"

	"github.com/streadway/amqp"
)

// Consumer owns the RabbitMQ connection and feeds deliveries to a Worker
type Consumer struct {
	cfg    config.QueueConfig
	conn   *amqp.Connection
	worker *Worker
	logger *errors.Logger
}

// Dial connects to the broker at cfg.URL
func Dial(cfg config.QueueConfig, logger *errors.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error dialling rabbitmq: %w", err)
	}
	return &Consumer{cfg: cfg, conn: conn, logger: logger}, nil
}

// Publisher returns a Publisher on its own channel, declaring the updates
// exchange
func (c *Consumer) Publisher() (*ChannelPublisher, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	if err := declareExchange(ch, c.cfg.Exchange); err != nil {
		ch.Close()
		return nil, err
	}
	return &ChannelPublisher{ch: ch, exchange: c.cfg.Exchange}, nil
}

// Attach sets the worker deliveries are handed to
func (c *Consumer) Attach(w *Worker) {
	c.worker = w
}

// Run consumes the jobs queue with cfg.Workers goroutines. It returns nil
// once ctx is cancelled, and an error if the broker closes the channel or
// the deliveries stop, so the caller can exit or reconnect.
func (c *Consumer) Run(ctx context.Context) error {
	if c.worker == nil {
		return fmt.Errorf("no worker attached")
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	defer ch.Close()
	closed := ch.NotifyClose(make(chan *amqp.Error, 1))

	if _, err := ch.QueueDeclare(
		c.cfg.Queue, // name
		true,        // durable
		false,       // auto-delete
		false,       // exclusive
		false,       // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if c.cfg.Prefetch > 0 {
		if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
			return fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	deliveries, err := ch.Consume(
		c.cfg.Queue, // queue
		"",          // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("error consuming rabbitmq messages: %w", err)
	}

	workers := max(c.cfg.Workers, 1)
	c.logger.Info("Queue worker started", "queue", c.cfg.Queue, "workers", workers)

	done := c.startWorkers(ctx, workers, deliveries)
	err = supervise(ctx, closed, done)
	if err != nil {
		c.logger.LogError(err, "Queue consumer stopped", "queue", c.cfg.Queue)
	}

	// closing the channel ends the deliveries range in every worker
	ch.Close()
	<-done
	return err
}

// startWorkers runs n consumers over deliveries. The returned channel is
// closed once every one of them has returned.
func (c *Consumer) startWorkers(ctx context.Context, n int, deliveries <-chan amqp.Delivery) <-chan struct{} {
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.consume(ctx, i+1, deliveries)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

// supervise blocks until ctx is cancelled, the broker closes the channel or
// every worker has returned. Only cancellation is a clean stop.
func supervise(ctx context.Context, closed <-chan *amqp.Error, done <-chan struct{}) error {
	select {
	case <-ctx.Done():
		return nil
	case amqpErr, ok := <-closed:
		if ok && amqpErr != nil {
			return fmt.Errorf("rabbitmq channel closed: %w", amqpErr)
		}
		return fmt.Errorf("rabbitmq channel closed")
	case <-done:
		return fmt.Errorf("rabbitmq deliveries stopped")
	}
}

func (c *Consumer) consume(ctx context.Context, id int, deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		c.logger.Debug("Job received", "worker", id, "delivery_tag", d.DeliveryTag)
		if err := c.worker.Handle(ctx, d.Body); err != nil {
			if nackErr := d.Nack(false, false); nackErr != nil {
				c.logger.LogError(nackErr, "Failed to reject message", "worker", id)
			}
			continue
		}
		if err := d.Ack(false); err != nil {
			c.logger.LogError(err, "Failed to ack message", "worker", id)
		}
	}
}

func (c *Consumer) Close() error {
	return c.conn.Close()
}

// ChannelPublisher publishes JSON updates to a topic exchange. A mutex
// guards the channel, which is not safe for concurrent publishing.
type ChannelPublisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

func (p *ChannelPublisher) Publish(_ context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Publish(
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (p *ChannelPublisher) Close() error {
	return p.ch.Close()
}

func declareExchange(ch *amqp.Channel, name string) error {
	if err := ch.ExchangeDeclare(
		name,    // name
		"topic", // kind
		true,    // durable
		false,   // auto-delete
		false,   // internal
		false,   // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", name, err)
	}
	return nil
}
