// Package services orchestrates receipt operations across SQLite and AMQP.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"paragony/internal/amqp"
	"paragony/internal/core"
	"paragony/internal/metrics"
	"paragony/internal/storage"
)

var (
	ErrUnknownOwner = errors.New("owner does not exist")
	ErrNotAPayer    = errors.New("payer is not flagged as a payer")
)

type ReceiptService struct {
	repo       *storage.SQLiteRepository
	amqpClient *amqp.Client
}

// NewReceiptService wires the service. amqpClient may be nil, in which case
// change notifications are skipped.
func NewReceiptService(repo *storage.SQLiteRepository, amqpClient *amqp.Client) *ReceiptService {
	return &ReceiptService{repo: repo, amqpClient: amqpClient}
}

// CreateReceipt validates and stores a receipt with its nested items, then
// refreshes the autocomplete tables and publishes a change event. Side
// effects after the write are logged but never fail the request.
func (s *ReceiptService) CreateReceipt(ctx context.Context, accountID int64, rec *core.Receipt) error {
	if err := s.validateReceipt(ctx, accountID, rec); err != nil {
		return err
	}
	if err := s.repo.CreateReceipt(ctx, accountID, rec); err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}

	metrics.ReceiptsCreated.Inc()
	s.recordAutocomplete(ctx, accountID, rec)
	s.publishEvent(ctx, rec.ID, accountID, amqp.ActionCreated)
	return nil
}

// UpdateReceipt validates and rewrites a receipt, replacing its item set.
func (s *ReceiptService) UpdateReceipt(ctx context.Context, accountID int64, rec *core.Receipt) error {
	if err := s.validateReceipt(ctx, accountID, rec); err != nil {
		return err
	}
	if err := s.repo.UpdateReceipt(ctx, accountID, rec); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update receipt: %w", err)
	}

	s.recordAutocomplete(ctx, accountID, rec)
	s.publishEvent(ctx, rec.ID, accountID, amqp.ActionUpdated)
	return nil
}

func (s *ReceiptService) DeleteReceipt(ctx context.Context, accountID, id int64) error {
	if err := s.repo.DeleteReceipt(ctx, accountID, id); err != nil {
		return err
	}
	s.publishEvent(ctx, id, accountID, amqp.ActionDeleted)
	return nil
}

func (s *ReceiptService) validateReceipt(ctx context.Context, accountID int64, rec *core.Receipt) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	payer, err := s.repo.GetOwner(ctx, accountID, rec.PayerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: payer %d", ErrUnknownOwner, rec.PayerID)
		}
		return fmt.Errorf("check payer: %w", err)
	}
	if !payer.Payer {
		return fmt.Errorf("%w: owner %d", ErrNotAPayer, rec.PayerID)
	}

	var ownerIDs []int64
	for _, it := range rec.Items {
		ownerIDs = append(ownerIDs, it.OwnerIDs...)
	}
	if len(ownerIDs) > 0 {
		ok, err := s.repo.OwnersExist(ctx, accountID, ownerIDs)
		if err != nil {
			return fmt.Errorf("check item owners: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: item owners %v", ErrUnknownOwner, ownerIDs)
		}
	}
	return nil
}

// recordAutocomplete bumps the recent shop and item prediction tables after
// a successful write.
func (s *ReceiptService) recordAutocomplete(ctx context.Context, accountID int64, rec *core.Receipt) {
	if err := s.repo.UpsertRecentShop(ctx, accountID, rec.Shop); err != nil {
		slog.ErrorContext(ctx, "Failed to record recent shop",
			"shop", rec.Shop, "error", err)
	}
	for _, it := range rec.Items {
		if core.NormalizeName(it.Description) == "" {
			continue
		}
		if err := s.repo.IncrementItemPrediction(ctx, accountID, it.Description, 1); err != nil {
			slog.ErrorContext(ctx, "Failed to record item prediction",
				"description", it.Description, "error", err)
		}
	}
}

func (s *ReceiptService) publishEvent(ctx context.Context, receiptID, accountID int64, action string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishReceiptEvent(ctx, receiptID, accountID, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish receipt event",
			"receipt_id", receiptID, "action", action, "error", err)
		// The receipt is already saved locally, don't fail the request.
		return
	}
	metrics.ReceiptEventsPublished.WithLabelValues(action).Inc()
}

// RebuildRecentShops repopulates the recent shop table from the distinct
// shop names currently on receipts.
func (s *ReceiptService) RebuildRecentShops(ctx context.Context, accountID int64) (int, error) {
	if err := s.repo.DeleteRecentShops(ctx, accountID); err != nil {
		return 0, fmt.Errorf("clear recent shops: %w", err)
	}
	shops, err := s.repo.DistinctReceiptShops(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("list receipt shops: %w", err)
	}
	for _, shop := range shops {
		if err := s.repo.UpsertRecentShop(ctx, accountID, shop); err != nil {
			return 0, fmt.Errorf("upsert shop %q: %w", shop, err)
		}
	}
	return len(shops), nil
}

// RebuildItemPredictions repopulates the prediction table from item
// description frequencies across all stored receipts.
func (s *ReceiptService) RebuildItemPredictions(ctx context.Context, accountID int64) (int, error) {
	if err := s.repo.DeleteItemPredictions(ctx, accountID); err != nil {
		return 0, fmt.Errorf("clear item predictions: %w", err)
	}
	counts, err := s.repo.ItemDescriptionCounts(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("count item descriptions: %w", err)
	}
	for desc, n := range counts {
		if err := s.repo.IncrementItemPrediction(ctx, accountID, desc, n); err != nil {
			return 0, fmt.Errorf("upsert prediction %q: %w", desc, err)
		}
	}
	return len(counts), nil
}

// Close closes both storage and AMQP connections.
func (s *ReceiptService) Close() error {
	var errs []error
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close receipt service: %v", errs)
	}
	return nil
}
