package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"halawa/internal/domain"
	"halawa/internal/events"
	"halawa/internal/metrics"
	"halawa/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrPersistenceWriteFailed = errors.New("persistence write failed")
	ErrPersistenceReadCorrupt = errors.New("persisted bookings are unreadable")
)

// BookingStore owns committed bookings. It keeps the authoritative in-memory
// mapping and persists it to a durable primary store, falling back to a
// session-scoped store when the primary rejects a write.
type BookingStore struct {
	primary       domain.KVStore
	session       domain.KVStore
	key           string
	clock         domain.Clock
	loc           *time.Location
	retentionDays int
	publisher     domain.EventPublisher
	logger        *zerolog.Logger

	mu       sync.RWMutex
	bookings models.BookingMap
}

func NewBookingStore(
	primary, session domain.KVStore,
	clock domain.Clock,
	loc *time.Location,
	retentionDays int,
	publisher domain.EventPublisher,
	logger *zerolog.Logger,
) *BookingStore {
	if loc == nil {
		loc = time.UTC
	}
	if retentionDays <= 0 {
		retentionDays = models.DefaultRetentionDays
	}
	return &BookingStore{
		primary:       primary,
		session:       session,
		key:           models.KeyBookings,
		clock:         clock,
		loc:           loc,
		retentionDays: retentionDays,
		publisher:     publisher,
		logger:        logger,
		bookings:      models.BookingMap{},
	}
}

// Load reads the persisted mapping, drops date-keys at least retentionDays old
// and writes the cleaned mapping back. The returned mapping is always usable:
// unparseable data yields an empty mapping and ErrPersistenceReadCorrupt, a
// failed read leaves the in-memory mapping in place.
func (s *BookingStore) Load(ctx context.Context) (models.BookingMap, error) {
	raw, ok, err := s.primary.Get(ctx, s.key)
	if err != nil {
		// unreadable store: keep whatever is already in memory
		s.logger.Error().Err(err).Str("key", s.key).Msg("Error loading bookings")
		metrics.IncPersistenceFailure("read")
		return s.Snapshot(), fmt.Errorf("load bookings: %w", err)
	}
	if !ok {
		s.replace(models.BookingMap{})
		return models.BookingMap{}, nil
	}

	var stored models.BookingMap
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("Stored bookings are corrupt, starting empty")
		metrics.IncPersistenceFailure("read")
		s.replace(models.BookingMap{})
		return models.BookingMap{}, fmt.Errorf("%w: %v", ErrPersistenceReadCorrupt, err)
	}

	cleaned, evicted := s.evict(stored)
	if evicted > 0 {
		s.logger.Info().Int("evicted_dates", evicted).Int("retention_days", s.retentionDays).Msg("Evicted old bookings")
		if err := s.persist(ctx, cleaned); err != nil {
			s.logger.Error().Err(err).Msg("Failed to write back cleaned bookings")
		}
	}

	s.replace(cleaned)
	return cleaned.Clone(), nil
}

// evict keeps date-keys strictly newer than today minus the retention window.
// The boundary day itself (exactly retentionDays old) is evicted.
// Keys that are not dates cannot be accounted for and are dropped too.
func (s *BookingStore) evict(stored models.BookingMap) (models.BookingMap, int) {
	cutoff := models.StartOfDay(s.clock.Now(), s.loc).AddDate(0, 0, -s.retentionDays)
	cleaned := make(models.BookingMap, len(stored))
	evicted := 0
	for key, list := range stored {
		day, err := key.Time(s.loc)
		if err != nil || !day.After(cutoff) {
			evicted++
			continue
		}
		cleaned[key] = list
	}
	return cleaned, evicted
}

// Save replaces the in-memory mapping and persists it. The in-memory state
// stands even when persistence fails; ErrPersistenceWriteFailed is returned
// only when neither store accepted the write.
func (s *BookingStore) Save(ctx context.Context, bookings models.BookingMap) error {
	snapshot := bookings.Clone()
	s.replace(snapshot)

	if err := s.persist(ctx, snapshot); err != nil {
		return err
	}

	if s.publisher != nil {
		payload := events.StorageChangedPayload{
			Key:      s.key,
			Dates:    len(snapshot),
			Bookings: snapshot.Count(),
			At:       s.clock.Now(),
		}
		if err := s.publisher.PublishJSON(events.EventBookingsChanged, payload); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to announce bookings change")
		}
	}
	return nil
}

func (s *BookingStore) persist(ctx context.Context, bookings models.BookingMap) error {
	data, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPersistenceWriteFailed, err)
	}

	primaryErr := s.primary.Set(ctx, s.key, string(data))
	if primaryErr == nil {
		return nil
	}
	s.logger.Error().Err(primaryErr).Str("key", s.key).Int("bytes", len(data)).Msg("Error saving bookings")
	metrics.IncPersistenceFailure("primary")

	if s.session == nil {
		return fmt.Errorf("%w: %v", ErrPersistenceWriteFailed, primaryErr)
	}

	sessionErr := s.session.Set(ctx, s.key, string(data))
	if sessionErr == nil {
		s.logger.Warn().Str("key", s.key).Msg("Bookings saved to session storage only")
		return nil
	}
	s.logger.Error().Err(sessionErr).Str("key", s.key).Msg("Error saving bookings to session storage")
	metrics.IncPersistenceFailure("session")

	return fmt.Errorf("%w: primary: %v; session: %v", ErrPersistenceWriteFailed, primaryErr, sessionErr)
}

func (s *BookingStore) replace(bookings models.BookingMap) {
	s.mu.Lock()
	s.bookings = bookings
	s.mu.Unlock()
}

// BookingsFor returns a copy of the bookings for a date-key, empty when none.
func (s *BookingStore) BookingsFor(key models.DateKey) []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Booking{}, s.bookings[key]...)
}

// Snapshot returns a deep copy of the in-memory mapping.
func (s *BookingStore) Snapshot() models.BookingMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bookings.Clone()
}
