// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

/*
Package gateway connects the auth service to the Viewr platform message bus.

# Protocol

The platform gateway publishes RPC requests to the auth queue as JSON
envelopes:

	{"pattern": "auth.login", "data": {...}, "id": "<correlation id>"}

Each request carries a ReplyTo queue and CorrelationId; the consumer
dispatches the payload and publishes the JSON response (or a structured
error envelope) back to ReplyTo.

# Resilience

The consumer dials the broker in a retry loop with exponential backoff and
re-enters the loop whenever the deliveries channel closes. Malformed
envelopes are rejected without requeue so a poison message cannot spin the
consumer.
*/
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/constants"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/ctxutil"
	"github.com/MohamedSbika/Viewr-Backend-sub000/pkg/uuid"
)

// Dial/consume tuning.
const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
	reconnectPause = 2 * time.Second
	prefetchCount  = 25
)

// envelope is the wire format of one RPC request.
type envelope struct {
	Pattern string          `json:"pattern"`
	Data    json.RawMessage `json:"data"`
	ID      string          `json:"id"`
}

// errorEnvelope is the wire format of a failed RPC response.
type errorEnvelope struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// Dispatcher routes a decoded request to its operation.
type Dispatcher interface {
	Dispatch(ctx context.Context, pattern string, data json.RawMessage) (any, error)
}

// Consumer owns the broker connection lifecycle for the auth queue.
type Consumer struct {
	url        string
	queue      string
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewConsumer builds a consumer for the given broker URL and queue.
func NewConsumer(url, queue string, dispatcher Dispatcher, logger *slog.Logger) *Consumer {
	return &Consumer{
		url:        url,
		queue:      queue,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

/*
Run connects to the broker and consumes until the context is cancelled.

Description: Dial failures back off exponentially up to thirty seconds; a
successful connect resets the backoff. A closed deliveries channel (broker
restart, network partition) drops back into the dial loop.

Parameters:
  - ctx: context.Context (cancellation stops the consumer)

Returns:
  - error: ctx.Err() once cancelled — Run never gives up on its own
*/
func (consumer *Consumer) Run(ctx context.Context) error {
	backoff := initialBackoff

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		connection, err := amqp.Dial(consumer.url)
		if err != nil {
			consumer.logger.Error("gateway_dial_failed",
				slog.Any("error", err),
				slog.Duration("retry_in", backoff),
			)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = initialBackoff

		err = consumer.consumeLoop(ctx, connection)
		_ = connection.Close()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ctx.Err()
		}

		consumer.logger.Error("gateway_consume_loop_ended",
			slog.Any("error", err),
		)
		if !sleepCtx(ctx, reconnectPause) {
			return ctx.Err()
		}
	}
}

// consumeLoop declares the queue and processes deliveries until the channel
// dies or the context is cancelled.
func (consumer *Consumer) consumeLoop(ctx context.Context, connection *amqp.Connection) error {
	channel, err := connection.Channel()
	if err != nil {
		return fmt.Errorf("gateway_channel_open_failed: %w", err)
	}
	defer func() { _ = channel.Close() }()

	if err := channel.Qos(prefetchCount, 0, false); err != nil {
		return fmt.Errorf("gateway_qos_failed: %w", err)
	}

	queue, err := channel.QueueDeclare(
		consumer.queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("gateway_queue_declare_failed: %w", err)
	}

	deliveries, err := channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // manual ack
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("gateway_consume_failed: %w", err)
	}

	consumer.logger.Info("gateway_consuming",
		slog.String("queue", queue.Name),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, open := <-deliveries:
			if !open {
				return errors.New("gateway_deliveries_channel_closed")
			}
			consumer.handleDelivery(ctx, channel, delivery)
		}
	}
}

// handleDelivery processes a single RPC request end to end.
func (consumer *Consumer) handleDelivery(ctx context.Context, channel *amqp.Channel, delivery amqp.Delivery) {
	var request envelope
	if err := json.Unmarshal(delivery.Body, &request); err != nil {
		consumer.logger.Warn("gateway_envelope_malformed",
			slog.Any("error", err),
		)
		// Poison message: reject without requeue
		_ = delivery.Nack(false, false)
		return
	}

	requestID := request.ID
	if requestID == "" {
		requestID = uuid.New()
	}

	messageCtx, cancel := context.WithTimeout(ctx, constants.GlobalRequestTimeout)
	defer cancel()

	messageLogger := consumer.logger.With(
		slog.String("request_id", requestID),
		slog.String("pattern", request.Pattern),
	)
	messageCtx = ctxutil.WithRequestID(messageCtx, requestID)
	messageCtx = ctxutil.WithLogger(messageCtx, messageLogger)

	startTime := time.Now()
	response, err := consumer.dispatcher.Dispatch(messageCtx, request.Pattern, request.Data)

	if err != nil {
		appError := apperr.As(err)
		if appError == nil {
			appError = apperr.Internal(err)
		}

		logLevel := slog.LevelWarn
		if appError.HTTPStatus >= 500 {
			logLevel = slog.LevelError
		}
		messageLogger.Log(messageCtx, logLevel, "gateway_request_failed",
			slog.String("code", appError.Code),
			slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
			slog.Any("cause", appError.Cause),
		)

		consumer.reply(messageCtx, channel, delivery, errorEnvelope{
			Error:   appError.Message,
			Code:    appError.Code,
			Details: appError.Details,
		})
		_ = delivery.Ack(false)
		return
	}

	messageLogger.InfoContext(messageCtx, "gateway_request_finished",
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)

	consumer.reply(messageCtx, channel, delivery, response)
	_ = delivery.Ack(false)
}

// reply publishes a JSON payload back to the requester's ReplyTo queue.
func (consumer *Consumer) reply(ctx context.Context, channel *amqp.Channel, delivery amqp.Delivery, payload any) {
	if delivery.ReplyTo == "" {
		// Fire-and-forget request; nothing to answer.
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		consumer.logger.Error("gateway_reply_marshal_failed",
			slog.Any("error", err),
		)
		return
	}

	err = channel.PublishWithContext(ctx,
		"", // default exchange
		delivery.ReplyTo,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: delivery.CorrelationId,
			Body:          body,
		},
	)
	if err != nil {
		consumer.logger.Error("gateway_reply_publish_failed",
			slog.String("reply_to", delivery.ReplyTo),
			slog.Any("error", err),
		)
	}
}

// sleepCtx sleeps for d unless the context ends first. It reports whether
// the full sleep completed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
