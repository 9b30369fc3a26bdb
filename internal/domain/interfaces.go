package domain

import (
	"context"
	"time"

	"halawa/internal/models"
)

// Clock supplies "now" so date policies can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// KVStore is a string key-value persistence backend. A missing key is (zero, false, nil).
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// BookingSource exposes the bookings of one date-key.
type BookingSource interface {
	BookingsFor(key models.DateKey) []models.Booking
}

type BookingStore interface {
	BookingSource
	Load(ctx context.Context) (models.BookingMap, error)
	Save(ctx context.Context, bookings models.BookingMap) error
	Snapshot() models.BookingMap
}

type SelectionRepository interface {
	GetSelection(ctx context.Context) (time.Time, bool, error)
	SetSelection(ctx context.Context, date time.Time) error
	ClearSelection(ctx context.Context) error
}

type PreferencesRepository interface {
	GetPreferences(ctx context.Context) (models.Preferences, error)
	SetLanguage(ctx context.Context, lang string) error
	SetTheme(ctx context.Context, theme string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// DatePolicy decides which calendar dates accept bookings.
type DatePolicy interface {
	IsBookable(date time.Time) bool
}

type IDGenerator interface {
	NewID() string
}

type BookingService interface {
	Submit(ctx context.Context, req models.BookingRequest) (*models.Confirmation, error)
	Availability(key models.DateKey) models.Availability
	NoSelectionAvailability() models.Availability
	Bookings(key models.DateKey) []models.Booking
	BookingsBetween(from, to models.DateKey) models.BookingMap
	EventInfo() models.EventInfo
}

type SelectionService interface {
	Select(ctx context.Context, date time.Time) (*models.SelectionState, error)
	Current(ctx context.Context) (*models.SelectionState, error)
	Restore(ctx context.Context) (*models.SelectionState, error)
	Clear(ctx context.Context) error
}

type PreferencesService interface {
	Get(ctx context.Context) (models.Preferences, error)
	Update(ctx context.Context, prefs models.Preferences) (models.Preferences, error)
}
