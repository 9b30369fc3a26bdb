package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"halawa/internal/availability"
	"halawa/internal/domain"
	"halawa/internal/events"
	"halawa/internal/metrics"
	"halawa/internal/models"

	"github.com/rs/zerolog"
)

// EventCalendar is the calendar policy as seen by the services.
type EventCalendar interface {
	domain.DatePolicy
	Check(date time.Time) error
	Location() *time.Location
	Window() (time.Time, time.Time)
	Weekdays() []time.Weekday
}

// EventSettings are the fixed commercial terms of the buffet.
type EventSettings struct {
	Name         string
	Price        int64
	Currency     string
	MaxPartySize int
}

type BookingService struct {
	store      domain.BookingStore
	calendar   EventCalendar
	calculator *availability.Calculator
	ids        domain.IDGenerator
	clock      domain.Clock
	eventBus   domain.EventPublisher
	settings   EventSettings
	logger     *zerolog.Logger

	// mu serializes submissions so validation and commit see the same bookings.
	mu sync.Mutex
}

func NewBookingService(
	store domain.BookingStore,
	calendar EventCalendar,
	calculator *availability.Calculator,
	ids domain.IDGenerator,
	clock domain.Clock,
	eventBus domain.EventPublisher,
	settings EventSettings,
	logger *zerolog.Logger,
) *BookingService {
	if settings.MaxPartySize <= 0 {
		settings.MaxPartySize = models.DefaultMaxPartySize
	}
	if settings.Currency == "" {
		settings.Currency = models.DefaultCurrency
	}
	return &BookingService{
		store:      store,
		calendar:   calendar,
		calculator: calculator,
		ids:        ids,
		clock:      clock,
		eventBus:   eventBus,
		settings:   settings,
		logger:     logger,
	}
}

// Submit validates a booking request and commits it. Every rejection leaves
// the store untouched. A confirmation is returned even when persistence
// failed; Persisted reports whether the write reached any store.
func (s *BookingService) Submit(ctx context.Context, req models.BookingRequest) (*models.Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.validate(req)
	if err != nil {
		s.logger.Info().
			Str("reason", string(models.ReasonOf(err))).
			Int("party_size", req.PartySize).
			Msg("Booking rejected")
		metrics.IncBookingOutcome(string(models.ReasonOf(err)))
		return nil, err
	}

	booking := models.Booking{
		ID:         s.ids.NewID(),
		Date:       key,
		GuestName:  strings.TrimSpace(req.GuestName),
		GuestPhone: strings.TrimSpace(req.GuestPhone),
		PartySize:  req.PartySize,
		TotalPrice: int64(req.PartySize) * s.settings.Price,
		CreatedAt:  s.clock.Now(),
		Status:     models.StatusConfirmed,
	}

	bookings := s.store.Snapshot()
	bookings[key] = append(bookings[key], booking)

	persisted := true
	if err := s.store.Save(ctx, bookings); err != nil {
		persisted = false
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Str("date", key.String()).Msg("Booking kept in memory only")
	}

	metrics.IncBookingOutcome("confirmed")
	metrics.AddSeats(booking.PartySize)
	s.publishCreated(booking)

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("date", key.String()).
		Int("party_size", booking.PartySize).
		Int64("total_price", booking.TotalPrice).
		Bool("persisted", persisted).
		Msg("Booking confirmed")

	return &models.Confirmation{
		BookingID:  booking.ID,
		Date:       key,
		GuestName:  booking.GuestName,
		PartySize:  booking.PartySize,
		TotalPrice: booking.TotalPrice,
		Currency:   s.settings.Currency,
		Persisted:  persisted,
	}, nil
}

// validate applies the rejection rules in order and returns the date-key of an accepted request.
func (s *BookingService) validate(req models.BookingRequest) (models.DateKey, error) {
	if req.Date == nil || req.Date.IsZero() {
		return "", models.ErrNoDateSelected
	}
	if err := s.calendar.Check(*req.Date); err != nil {
		s.logger.Debug().Err(err).Time("date", *req.Date).Msg("Date rejected by calendar")
		return "", models.ErrDateNotBookable
	}

	if strings.TrimSpace(req.GuestName) == "" || strings.TrimSpace(req.GuestPhone) == "" || req.PartySize == 0 {
		return "", models.ErrMissingFields
	}
	if req.PartySize < 1 || req.PartySize > s.settings.MaxPartySize {
		return "", models.ErrPartySizeOutOfRange
	}

	key := s.dateKey(*req.Date)
	if !s.calculator.Fits(key, s.store, req.PartySize) {
		return "", models.ErrInsufficientSeats
	}
	return key, nil
}

func (s *BookingService) dateKey(date time.Time) models.DateKey {
	return models.DateKeyOf(models.StartOfDay(date, s.calendar.Location()))
}

func (s *BookingService) publishCreated(booking models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		Date:       booking.Date.String(),
		GuestName:  booking.GuestName,
		PartySize:  booking.PartySize,
		TotalPrice: booking.TotalPrice,
		CreatedAt:  booking.CreatedAt,
	}

	if err := s.eventBus.PublishJSON(events.EventBookingCreated, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", events.EventBookingCreated).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) Availability(key models.DateKey) models.Availability {
	return s.calculator.For(key, s.store)
}

func (s *BookingService) NoSelectionAvailability() models.Availability {
	return s.calculator.NoSelection()
}

func (s *BookingService) Bookings(key models.DateKey) []models.Booking {
	return s.store.BookingsFor(key)
}

// BookingsBetween returns the bookings whose date-key falls in [from, to].
// An empty bound is open.
func (s *BookingService) BookingsBetween(from, to models.DateKey) models.BookingMap {
	out := models.BookingMap{}
	for key, list := range s.store.Snapshot() {
		if from != "" && key < from {
			continue
		}
		if to != "" && key > to {
			continue
		}
		out[key] = list
	}
	return out
}

func (s *BookingService) EventInfo() models.EventInfo {
	start, end := s.calendar.Window()
	weekdays := make([]string, 0, len(s.calendar.Weekdays()))
	for _, wd := range s.calendar.Weekdays() {
		weekdays = append(weekdays, strings.ToLower(wd.String()))
	}
	return models.EventInfo{
		Name:      s.settings.Name,
		Price:     s.settings.Price,
		Currency:  s.settings.Currency,
		Capacity:  s.calculator.Capacity(),
		MaxParty:  s.settings.MaxPartySize,
		Weekdays:  weekdays,
		StartDate: models.DateKeyOf(start),
		EndDate:   models.DateKeyOf(end),
	}
}

// IsRejection reports whether err is a booking rejection rather than an internal failure.
func IsRejection(err error) bool {
	var rej *models.RejectionError
	return errors.As(err, &rej)
}
