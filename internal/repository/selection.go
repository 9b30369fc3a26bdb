package repository

import (
	"context"
	"fmt"
	"time"

	"halawa/internal/domain"
	"halawa/internal/models"

	"github.com/rs/zerolog"
)

// SelectionRepository persists the last selected date as an RFC 3339 timestamp.
type SelectionRepository struct {
	store  domain.KVStore
	logger *zerolog.Logger
}

func NewSelectionRepository(store domain.KVStore, logger *zerolog.Logger) *SelectionRepository {
	return &SelectionRepository{store: store, logger: logger}
}

// GetSelection returns the stored date. An unparseable value is reported as absent.
func (r *SelectionRepository) GetSelection(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := r.store.Get(ctx, models.KeySelectedDate)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get selection: %w", err)
	}
	if !ok || raw == "" {
		return time.Time{}, false, nil
	}
	date, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		r.logger.Warn().Err(err).Str("value", raw).Msg("Ignoring unparseable stored selection")
		return time.Time{}, false, nil
	}
	return date, true, nil
}

func (r *SelectionRepository) SetSelection(ctx context.Context, date time.Time) error {
	if err := r.store.Set(ctx, models.KeySelectedDate, date.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("set selection: %w", err)
	}
	return nil
}

func (r *SelectionRepository) ClearSelection(ctx context.Context) error {
	if err := r.store.Delete(ctx, models.KeySelectedDate); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}
