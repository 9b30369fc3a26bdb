// Package availability derives remaining seats and a coarse tier for a date
// from the committed bookings.
package availability

import (
	"halawa/internal/domain"
	"halawa/internal/models"
)

type Calculator struct {
	capacity int
}

func NewCalculator(capacity int) *Calculator {
	if capacity <= 0 {
		capacity = models.DefaultCapacity
	}
	return &Calculator{capacity: capacity}
}

func (c *Calculator) Capacity() int { return c.capacity }

// Booked sums the party sizes committed for key.
func (c *Calculator) Booked(key models.DateKey, source domain.BookingSource) int {
	total := 0
	for _, b := range source.BookingsFor(key) {
		total += b.PartySize
	}
	return total
}

// For reports the availability of a selected date. Available never drops
// below zero even if stored data overshoots capacity.
func (c *Calculator) For(key models.DateKey, source domain.BookingSource) models.Availability {
	booked := c.Booked(key, source)
	available := c.capacity - booked
	if available < 0 {
		available = 0
	}
	return models.Availability{
		Date:      key,
		Selected:  true,
		Booked:    booked,
		Available: available,
		Capacity:  c.capacity,
		Tier:      TierFor(available),
	}
}

// NoSelection is the availability shown before any date is chosen.
func (c *Calculator) NoSelection() models.Availability {
	return models.Availability{
		Booked:    0,
		Available: c.capacity,
		Capacity:  c.capacity,
		Tier:      TierFor(c.capacity),
	}
}

// Fits reports whether partySize more seats fit on key.
func (c *Calculator) Fits(key models.DateKey, source domain.BookingSource, partySize int) bool {
	return c.Booked(key, source)+partySize <= c.capacity
}

func TierFor(available int) models.Tier {
	switch {
	case available <= models.LowAvailabilityThreshold:
		return models.TierLow
	case available <= models.MediumAvailabilityThreshold:
		return models.TierMedium
	default:
		return models.TierHigh
	}
}
