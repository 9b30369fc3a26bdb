package service

import (
	"context"
	"time"

	"halawa/internal/events"
	"halawa/internal/metrics"
	"halawa/internal/models"

	"github.com/rs/zerolog"
)

const reloadTimeout = 5 * time.Second

type reloader interface {
	Load(ctx context.Context) (models.BookingMap, error)
}

// Watcher reloads the booking store when another process rewrites it.
type Watcher struct {
	store  reloader
	logger *zerolog.Logger
}

func NewWatcher(store reloader, logger *zerolog.Logger) *Watcher {
	return &Watcher{store: store, logger: logger}
}

// Attach subscribes the watcher to storage change events on bus.
func (w *Watcher) Attach(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingsChanged, w.Handle)
}

// Handle ignores local changes; the in-memory state already reflects them.
func (w *Watcher) Handle(event *events.Event) error {
	if !event.Remote {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	bookings, err := w.store.Load(ctx)
	metrics.IncReload()
	if err != nil {
		w.logger.Error().Err(err).Str("origin", event.Origin).Msg("Reload after remote change failed")
		return err
	}
	w.logger.Info().Str("origin", event.Origin).Int("bookings", bookings.Count()).Msg("Reloaded bookings after remote change")
	return nil
}
