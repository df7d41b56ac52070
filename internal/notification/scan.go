package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FoodExpiryTracker/internal/food"

	"go.uber.org/zap"
)

// ItemStore is the read side of the item store the scan depends on.
type ItemStore interface {
	FindByExpiryRange(ctx context.Context, start, end time.Time) ([]food.OwnedItem, error)
}

// ScanResult is the grouped output of one scan plus the number of items dropped
// for lack of a reachable owner.
type ScanResult struct {
	Batches map[string]*RecipientBatch
	Skipped int
}

// Scanner finds items expiring inside a window and groups them by recipient.
type Scanner struct {
	store  ItemStore
	format DescriptionFormatter
	logger *zap.Logger
}

func NewScanner(store ItemStore, format DescriptionFormatter, logger *zap.Logger) *Scanner {
	return &Scanner{store: store, format: format, logger: logger}
}

// ScanAndGroup returns one batch per recipient email. No matching items yields an
// empty map and a nil error.
func (s *Scanner) ScanAndGroup(ctx context.Context, w Window) (map[string]*RecipientBatch, error) {
	res, err := s.Scan(ctx, w)
	if err != nil {
		return nil, err
	}
	return res.Batches, nil
}

func (s *Scanner) Scan(ctx context.Context, w Window) (ScanResult, error) {
	items, err := s.store.FindByExpiryRange(ctx, w.Start, w.End)
	if err != nil {
		return ScanResult{}, fmt.Errorf("scan expiring items: %w", err)
	}

	res := ScanResult{Batches: make(map[string]*RecipientBatch)}
	for _, item := range items {
		if !w.Contains(item.ExpiryDate) {
			continue
		}
		if item.Owner == nil || strings.TrimSpace(item.Owner.Email) == "" {
			res.Skipped++
			s.logger.Debug("skipping item without reachable owner", zap.String("item_id", item.ID.Hex()))
			continue
		}

		email := strings.TrimSpace(item.Owner.Email)
		batch, ok := res.Batches[email]
		if !ok {
			name := strings.TrimSpace(item.Owner.Name)
			if name == "" {
				name = DefaultRecipientName
			}
			batch = &RecipientBatch{Email: email, Name: name}
			res.Batches[email] = batch
		}
		batch.Items = append(batch.Items, s.format(item.Name, item.ExpiryDate))
		batch.ItemIDs = append(batch.ItemIDs, item.ID)
	}
	return res, nil
}
