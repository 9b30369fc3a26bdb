package availability

import (
	"testing"

	"halawa/internal/models"

	"github.com/stretchr/testify/assert"
)

type mapSource models.BookingMap

func (m mapSource) BookingsFor(key models.DateKey) []models.Booking {
	return m[key]
}

func withParties(key models.DateKey, parties ...int) mapSource {
	list := make([]models.Booking, 0, len(parties))
	for _, p := range parties {
		list = append(list, models.Booking{Date: key, PartySize: p})
	}
	return mapSource{key: list}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		available int
		want      models.Tier
	}{
		{0, models.TierLow},
		{20, models.TierLow},
		{21, models.TierMedium},
		{50, models.TierMedium},
		{51, models.TierHigh},
		{200, models.TierHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.available), "available=%d", tt.available)
	}
}

func TestCalculator_For(t *testing.T) {
	calc := NewCalculator(200)
	key := models.DateKey("2026-01-22")

	t.Run("Empty", func(t *testing.T) {
		a := calc.For(key, mapSource{})
		assert.True(t, a.Selected)
		assert.Equal(t, 0, a.Booked)
		assert.Equal(t, 200, a.Available)
		assert.Equal(t, models.TierHigh, a.Tier)
	})

	t.Run("Medium", func(t *testing.T) {
		a := calc.For(key, withParties(key, 20, 20, 20, 20, 20, 20, 20, 20, 10, 4))
		assert.Equal(t, 174, a.Booked)
		assert.Equal(t, 26, a.Available)
		assert.Equal(t, models.TierMedium, a.Tier)
	})

	t.Run("Full", func(t *testing.T) {
		a := calc.For(key, withParties(key, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20))
		assert.Equal(t, 0, a.Available)
		assert.Equal(t, models.TierLow, a.Tier)
	})

	t.Run("OvershootClampsToZero", func(t *testing.T) {
		a := calc.For(key, withParties(key, 150, 100))
		assert.Equal(t, 250, a.Booked)
		assert.Equal(t, 0, a.Available)
	})

	t.Run("OtherDatesIgnored", func(t *testing.T) {
		a := calc.For("2026-01-23", withParties(key, 10))
		assert.Equal(t, 0, a.Booked)
	})
}

func TestCalculator_BookedPlusAvailableIsCapacity(t *testing.T) {
	calc := NewCalculator(200)
	key := models.DateKey("2026-01-24")

	for booked := 0; booked <= 200; booked += 7 {
		a := calc.For(key, withParties(key, booked))
		assert.Equal(t, 200, a.Booked+a.Available, "booked=%d", booked)
	}
}

func TestCalculator_NoSelection(t *testing.T) {
	calc := NewCalculator(200)
	a := calc.NoSelection()
	assert.False(t, a.Selected)
	assert.Equal(t, 0, a.Booked)
	assert.Equal(t, 200, a.Available)
	assert.Equal(t, models.TierHigh, a.Tier)
	assert.Empty(t, a.Date)
}

func TestCalculator_Fits(t *testing.T) {
	calc := NewCalculator(200)
	key := models.DateKey("2026-01-22")
	src := withParties(key, 20, 20, 20, 20, 20, 20, 20, 20, 20, 18)

	assert.True(t, calc.Fits(key, src, 2))
	assert.False(t, calc.Fits(key, src, 3))
}

func TestNewCalculator_DefaultCapacity(t *testing.T) {
	assert.Equal(t, models.DefaultCapacity, NewCalculator(0).Capacity())
}
