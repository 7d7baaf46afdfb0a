// Package queue moves scoring work through RabbitMQ: submissions enqueue
// an application id, a worker pool consumes and scores, and progress
// updates fan out on an exchange.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/blocksphere4/TalentHireAI/internal/lifecycle"
)

const (
	scoreQueue      = "applications"
	updatesExchange = "application_updates"
)

type scoreMessage struct {
	ApplicationID uuid.UUID `json:"application_id"`
}

type statusUpdate struct {
	ApplicationID string    `json:"application_id"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	Score         *int      `json:"score,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher enqueues scoring requests and emits progress updates.
type Publisher struct {
	conn   *amqp.Connection
	logger *zap.Logger
}

func NewPublisher(conn *amqp.Connection, logger *zap.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// EnqueueScore publishes a durable scoring request for the application.
func (p *Publisher) EnqueueScore(_ context.Context, applicationID uuid.UUID) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(scoreQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	body, err := json.Marshal(scoreMessage{ApplicationID: applicationID})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := ch.Publish("", scoreQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}); err != nil {
		return err
	}

	if err := p.publishUpdate(statusUpdate{
		ApplicationID: applicationID.String(),
		Status:        "queued",
		Message:       "analysis queued",
	}); err != nil {
		p.logger.Warn("failed to publish queued update",
			zap.String("application_id", applicationID.String()), zap.Error(err))
	}
	return nil
}

func (p *Publisher) publishUpdate(update statusUpdate) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(updatesExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	update.Timestamp = time.Now()
	body, _ := json.Marshal(update)
	routingKey := fmt.Sprintf("application.%s", update.ApplicationID)

	return ch.Publish(updatesExchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// ScoreProvider is the slice of the lifecycle controller the workers use.
type ScoreProvider interface {
	GetScore(ctx context.Context, id uuid.UUID) (lifecycle.ScoreResult, error)
}

// Consumer runs the scoring worker pool.
type Consumer struct {
	url        string
	publisher  *Publisher
	controller ScoreProvider
	logger     *zap.Logger
}

func NewConsumer(url string, publisher *Publisher, controller ScoreProvider, logger *zap.Logger) *Consumer {
	return &Consumer{url: url, publisher: publisher, controller: controller, logger: logger}
}

// StartWorkerPool blocks while numWorkers consumers process the scoring
// queue. Each worker holds its own connection.
func (c *Consumer) StartWorkerPool(ctx context.Context, numWorkers int) {
	done := make(chan struct{}, numWorkers)
	for i := range numWorkers {
		c.logger.Info("scoring worker started", zap.Int("worker", i+1))
		go func(id int) {
			defer func() { done <- struct{}{} }()
			c.worker(ctx, id)
		}(i)
	}
	for range numWorkers {
		<-done
	}
}

func (c *Consumer) worker(ctx context.Context, id int) {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		c.logger.Error("worker failed to dial rabbitmq", zap.Int("worker", id+1), zap.Error(err))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		c.logger.Error("worker failed to open channel", zap.Int("worker", id+1), zap.Error(err))
		return
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(scoreQueue, true, false, false, false, nil); err != nil {
		c.logger.Error("worker failed to declare queue", zap.Int("worker", id+1), zap.Error(err))
		return
	}

	msgs, err := ch.Consume(scoreQueue, "", true, false, false, false, nil)
	if err != nil {
		c.logger.Error("worker failed to consume", zap.Int("worker", id+1), zap.Error(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			c.handle(ctx, id, msg.Body)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, workerID int, body []byte) {
	var msg scoreMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		c.logger.Error("dropping malformed scoring message", zap.Int("worker", workerID+1), zap.Error(err))
		return
	}

	appID := msg.ApplicationID.String()
	c.logger.Info("worker scoring application", zap.Int("worker", workerID+1), zap.String("application_id", appID))

	c.update(statusUpdate{ApplicationID: appID, Status: "processing", Message: "analysis started"})

	result, err := c.controller.GetScore(ctx, msg.ApplicationID)
	switch {
	case err != nil:
		// Leave the application unscored; the message source may retry.
		c.logger.Error("scoring failed", zap.String("application_id", appID), zap.Error(err))
		c.update(statusUpdate{ApplicationID: appID, Status: "failed", Message: "analysis failed"})

	case result.Pending:
		c.logger.Info("application has no resume text, skipping", zap.String("application_id", appID))
		c.update(statusUpdate{ApplicationID: appID, Status: "pending", Message: "no resume text available"})

	default:
		if result.Cached {
			c.logger.Info("application already scored", zap.String("application_id", appID))
		}
		score := result.Score
		c.update(statusUpdate{ApplicationID: appID, Status: "completed", Message: "analysis completed", Score: &score})
	}
}

func (c *Consumer) update(update statusUpdate) {
	if err := c.publisher.publishUpdate(update); err != nil {
		c.logger.Warn("failed to publish status update",
			zap.String("application_id", update.ApplicationID),
			zap.Error(err))
	}
}
