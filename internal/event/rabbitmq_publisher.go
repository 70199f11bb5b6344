package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	routingKeyLoanOriginated = "loan.originated"
	routingKeyLoanRepaid     = "loan.repaid"
	routingKeyLoanEdited     = "loan.edited"
	routingKeyUserRegistered = "user.registered"
	publisherAppID           = "credit-portal"
)

// Publisher fans portal lifecycle events out to interested consumers.
// All publishes are best-effort from the caller's point of view; the
// services log and swallow publish failures rather than failing the
// user-facing operation.
type Publisher interface {
	PublishLoanOriginated(ctx context.Context, event LoanOriginatedEvent) error
	PublishLoanRepaid(ctx context.Context, event LoanRepaidEvent) error
	PublishLoanEdited(ctx context.Context, event LoanEditedEvent) error
	PublishUserRegistered(ctx context.Context, event UserRegisteredEvent) error
}

type LoanOriginatedEvent struct {
	LoanID         string    `json:"loanId"`
	UserID         string    `json:"userId"`
	OfferID        string    `json:"offerId"`
	LoanType       string    `json:"loanType"`
	Amount         float64   `json:"amount"`
	InterestRate   float64   `json:"interestRate"`
	TermMonths     int       `json:"term"`
	MonthlyPayment int64     `json:"monthlyPayment"`
	Timestamp      time.Time `json:"timestamp"`
}

type LoanRepaidEvent struct {
	LoanID    string    `json:"loanId"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

type LoanEditedEvent struct {
	LoanID       string    `json:"loanId"`
	UserID       string    `json:"userId"`
	Amount       float64   `json:"amount"`
	InterestRate float64   `json:"interestRate"`
	TermMonths   int       `json:"term"`
	Timestamp    time.Time `json:"timestamp"`
}

type UserRegisteredEvent struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

type RabbitMQPublisher struct {
	conn         *amqp.Connection
	exchangeName string
	logger       *slog.Logger
}

func NewRabbitMQPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (Publisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection cannot be nil")
	}
	if exchangeName == "" {
		return nil, fmt.Errorf("RabbitMQ exchange name cannot be empty")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	tempCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary channel for exchange declaration: %w", err)
	}
	defer tempCh.Close()

	err = tempCh.ExchangeDeclare(
		exchangeName,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}
	logger.Info("Ensured RabbitMQ exchange exists", "exchange", exchangeName, "type", amqp.ExchangeTopic)

	return &RabbitMQPublisher{
		conn:         conn,
		exchangeName: exchangeName,
		logger:       logger.With("component", "RabbitMQPublisher", "exchange", exchangeName),
	}, nil
}

func (p *RabbitMQPublisher) PublishLoanOriginated(ctx context.Context, event LoanOriginatedEvent) error {
	return p.publish(ctx, routingKeyLoanOriginated, event)
}

func (p *RabbitMQPublisher) PublishLoanRepaid(ctx context.Context, event LoanRepaidEvent) error {
	return p.publish(ctx, routingKeyLoanRepaid, event)
}

func (p *RabbitMQPublisher) PublishLoanEdited(ctx context.Context, event LoanEditedEvent) error {
	return p.publish(ctx, routingKeyLoanEdited, event)
}

func (p *RabbitMQPublisher) PublishUserRegistered(ctx context.Context, event UserRegisteredEvent) error {
	return p.publish(ctx, routingKeyUserRegistered, event)
}

func (p *RabbitMQPublisher) publish(ctx context.Context, routingKey string, payload interface{}) error {
	logCtx := p.logger.With(slog.String("routingKey", routingKey))

	channel, err := p.conn.Channel()
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to open RabbitMQ channel", slog.Any("error", err))
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer channel.Close()

	body, err := json.Marshal(payload)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to marshal event payload to JSON", slog.Any("error", err))
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	logCtx.DebugContext(ctx, "Publishing message", "bodySize", len(body))

	err = channel.PublishWithContext(
		ctx,
		p.exchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			AppId:        publisherAppID,
		},
	)

	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish message to RabbitMQ", slog.Any("error", err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logCtx.InfoContext(ctx, "Successfully published message")
	return nil
}

// NoopPublisher is used when RabbitMQ is disabled in configuration.
type NoopPublisher struct{}

func (NoopPublisher) PublishLoanOriginated(context.Context, LoanOriginatedEvent) error { return nil }
func (NoopPublisher) PublishLoanRepaid(context.Context, LoanRepaidEvent) error         { return nil }
func (NoopPublisher) PublishLoanEdited(context.Context, LoanEditedEvent) error         { return nil }
func (NoopPublisher) PublishUserRegistered(context.Context, UserRegisteredEvent) error { return nil }
