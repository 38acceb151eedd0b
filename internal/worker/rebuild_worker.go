// Package worker keeps the autocomplete tables consistent with stored
// receipts by reacting to receipt change events.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"paragony/internal/amqp"
	"paragony/internal/metrics"
	"paragony/internal/services"
)

type RebuildWorker struct {
	service    *services.ReceiptService
	amqpClient *amqp.Client
}

func NewRebuildWorker(service *services.ReceiptService, amqpClient *amqp.Client) *RebuildWorker {
	return &RebuildWorker{service: service, amqpClient: amqpClient}
}

// Run consumes receipt events until the context is cancelled. Each event
// triggers a full rebuild of the event account's autocomplete tables, which
// also repairs any drift from the write path's best-effort upserts.
func (w *RebuildWorker) Run(ctx context.Context) error {
	return w.amqpClient.ConsumeReceiptEvents(ctx, func(msg *amqp.ReceiptEventMessage) error {
		if err := w.handle(ctx, msg); err != nil {
			metrics.ReceiptEventsConsumed.WithLabelValues("error").Inc()
			return err
		}
		metrics.ReceiptEventsConsumed.WithLabelValues("ok").Inc()
		return nil
	})
}

func (w *RebuildWorker) handle(ctx context.Context, msg *amqp.ReceiptEventMessage) error {
	shops, err := w.service.RebuildRecentShops(ctx, msg.AccountID)
	if err != nil {
		return fmt.Errorf("rebuild recent shops: %w", err)
	}
	predictions, err := w.service.RebuildItemPredictions(ctx, msg.AccountID)
	if err != nil {
		return fmt.Errorf("rebuild item predictions: %w", err)
	}

	slog.InfoContext(ctx, "Autocomplete tables rebuilt",
		"account_id", msg.AccountID,
		"receipt_id", msg.ReceiptID,
		"action", msg.Action,
		"shops", shops,
		"predictions", predictions)
	return nil
}
