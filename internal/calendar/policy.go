package calendar

import (
	"errors"
	"sort"
	"time"

	"halawa/internal/domain"
	"halawa/internal/models"
)

var (
	ErrPastDate        = errors.New("date is in the past")
	ErrOutsideCampaign = errors.New("date is outside the campaign window")
	ErrNotEventDay     = errors.New("no event on this weekday")
)

// Policy decides which dates of the recurring event accept bookings.
// It is re-evaluated against the clock on every call.
type Policy struct {
	start    time.Time
	end      time.Time
	weekdays map[time.Weekday]bool
	loc      *time.Location
	clock    domain.Clock
}

// NewPolicy builds a policy for the closed window [start, end] on the given weekdays.
// Dates are compared at day granularity in loc.
func NewPolicy(start, end time.Time, weekdays []time.Weekday, loc *time.Location, clock domain.Clock) *Policy {
	if loc == nil {
		loc = time.UTC
	}
	set := make(map[time.Weekday]bool, len(weekdays))
	for _, wd := range weekdays {
		set[wd] = true
	}
	return &Policy{
		start:    models.StartOfDay(start, loc),
		end:      models.StartOfDay(end, loc),
		weekdays: set,
		loc:      loc,
		clock:    clock,
	}
}

// Check returns nil for a bookable date, otherwise the first rule that rejects it.
func (p *Policy) Check(date time.Time) error {
	day := models.StartOfDay(date, p.loc)

	if day.Before(p.Today()) {
		return ErrPastDate
	}
	if day.Before(p.start) || day.After(p.end) {
		return ErrOutsideCampaign
	}
	if !p.weekdays[day.Weekday()] {
		return ErrNotEventDay
	}
	return nil
}

func (p *Policy) IsBookable(date time.Time) bool {
	return p.Check(date) == nil
}

// Today is the current date at midnight in the policy location.
func (p *Policy) Today() time.Time {
	return models.StartOfDay(p.clock.Now(), p.loc)
}

func (p *Policy) Location() *time.Location { return p.loc }

// Window returns the campaign bounds.
func (p *Policy) Window() (time.Time, time.Time) { return p.start, p.end }

// Weekdays returns the event weekdays in Sunday-first order.
func (p *Policy) Weekdays() []time.Weekday {
	out := make([]time.Weekday, 0, len(p.weekdays))
	for wd := range p.weekdays {
		out = append(out, wd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
