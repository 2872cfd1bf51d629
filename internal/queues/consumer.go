// Package queues consumes verification outcomes published by external
// assessor systems over AMQP and feeds them into the same ingest path the
// HTTP API uses. The consumer is optional; nodes without a broker simply
// never construct one.
package queues

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"workforce-grid/internal/usecase"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	dialAttempts  = 5
	handleTimeout = 10 * time.Second
)

// VerificationMessage is the wire shape assessors publish after grading a
// candidate. It mirrors the HTTP verification payload.
type VerificationMessage struct {
	UserID     string    `json:"user_id"`
	Skill      string    `json:"skill"`
	Outcome    string    `json:"outcome"`
	Quality    float64   `json:"quality"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Consumer owns one AMQP connection and drains a single queue of
// verification outcomes.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	ingest  usecase.IngestUsecase
	logger  *log.Logger
}

// NewConsumer dials the broker and declares the queue. Dialing retries
// with backoff so the node survives a broker that is still booting.
func NewConsumer(url, queue string, ingest usecase.IngestUsecase, logger *log.Logger) (*Consumer, error) {
	if logger == nil {
		logger = log.Default()
	}

	conn, err := dial(url, logger)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return &Consumer{
		conn:    conn,
		channel: ch,
		queue:   queue,
		ingest:  ingest,
		logger:  logger,
	}, nil
}

func dial(url string, logger *log.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	wait := time.Second
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		if attempt < dialAttempts {
			logger.Printf("[Queue] dial attempt %d failed, retrying in %s: %v", attempt, wait, err)
			time.Sleep(wait)
			wait *= 2
		}
	}
	return nil, err
}

// Start registers the consumer and drains deliveries on a background
// goroutine until ctx is cancelled or the broker closes the channel.
func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer
		true,    // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	go c.run(ctx, deliveries)
	return nil
}

func (c *Consumer) run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	c.logger.Printf("[Queue] consuming queue=%s", c.queue)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Printf("[Queue] delivery channel closed queue=%s", c.queue)
				return
			}
			c.handle(ctx, d)
		}
	}
}

// handle applies one delivery. Messages are auto-acked, so a payload that
// fails validation is logged and dropped; unknown skills are already
// parked in the unresolved ledger by the ingest usecase.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var msg VerificationMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.logger.Printf("[Queue] malformed message dropped queue=%s: %v", c.queue, err)
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	standing, err := c.ingest.SubmitVerification(opCtx, usecase.VerificationInput{
		UserID:     msg.UserID,
		Skill:      msg.Skill,
		Outcome:    msg.Outcome,
		Quality:    msg.Quality,
		Source:     msg.Source,
		OccurredAt: msg.OccurredAt,
	})
	if err != nil {
		c.logger.Printf("[Queue] verification rejected user=%s skill=%q: %v", msg.UserID, msg.Skill, err)
		return
	}

	c.logger.Printf("[Queue] verification applied user=%s skill=%q trust=%.1f version=%d",
		standing.UserID, standing.Skill, standing.Trust, standing.Version)
}

// Close tears down the channel and connection. Safe to call after a failed
// Start; the delivery loop exits when the channel closes.
func (c *Consumer) Close() {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Printf("[Queue] channel close: %v", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Printf("[Queue] connection close: %v", err)
		}
	}
}
