package service

import (
	"context"
	"time"

	"halawa/internal/domain"
	"halawa/internal/events"
	"halawa/internal/models"

	"github.com/rs/zerolog"
)

// SelectionService keeps the date a guest is about to book across restarts.
type SelectionService struct {
	repo     domain.SelectionRepository
	calendar EventCalendar
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewSelectionService(repo domain.SelectionRepository, calendar EventCalendar, eventBus domain.EventPublisher, logger *zerolog.Logger) *SelectionService {
	return &SelectionService{
		repo:     repo,
		calendar: calendar,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Select stores date if it is bookable.
func (s *SelectionService) Select(ctx context.Context, date time.Time) (*models.SelectionState, error) {
	if err := s.calendar.Check(date); err != nil {
		return nil, models.ErrDateNotBookable
	}

	day := models.StartOfDay(date, s.calendar.Location())
	if err := s.repo.SetSelection(ctx, day); err != nil {
		s.logger.Error().Err(err).Msg("failed to store selection")
		return nil, err
	}

	state := s.state(day, false)
	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventSelectionChanged, state); err != nil {
			s.logger.Warn().Err(err).Msg("publish selection event error")
		}
	}
	return state, nil
}

// Current returns the stored selection while it is still bookable, nil otherwise.
func (s *SelectionService) Current(ctx context.Context) (*models.SelectionState, error) {
	date, ok, err := s.repo.GetSelection(ctx)
	if err != nil {
		return nil, err
	}
	if !ok || !s.calendar.IsBookable(date) {
		return nil, nil
	}
	return s.state(date, true), nil
}

// Restore is Current plus removal of a stored date that stopped being bookable.
func (s *SelectionService) Restore(ctx context.Context) (*models.SelectionState, error) {
	date, ok, err := s.repo.GetSelection(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if !s.calendar.IsBookable(date) {
		s.logger.Info().Time("date", date).Msg("Discarding stale selection")
		if err := s.repo.ClearSelection(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return s.state(date, true), nil
}

func (s *SelectionService) Clear(ctx context.Context) error {
	return s.repo.ClearSelection(ctx)
}

func (s *SelectionService) state(date time.Time, restored bool) *models.SelectionState {
	loc := s.calendar.Location()
	return &models.SelectionState{
		Date:     date.In(loc),
		Key:      models.DateKeyOf(models.StartOfDay(date, loc)),
		Restored: restored,
	}
}
