package export

import (
	"bytes"
	"testing"
	"time"

	"halawa/internal/availability"
	"halawa/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteBookings(t *testing.T) {
	created := time.Date(2026, 1, 21, 18, 5, 0, 0, time.UTC)
	bookings := models.BookingMap{
		"2026-01-23": {{ID: "HAL-2", Date: "2026-01-23", GuestName: "Omar", GuestPhone: "0781111111", PartySize: 185, TotalPrice: 3700, CreatedAt: created}},
		"2026-01-22": {
			{ID: "HAL-0", Date: "2026-01-22", GuestName: "Lina", GuestPhone: "0790000000", PartySize: 4, TotalPrice: 80, CreatedAt: created},
			{ID: "HAL-1", Date: "2026-01-22", GuestName: "Sami", GuestPhone: "0770000000", PartySize: 2, TotalPrice: 40, CreatedAt: created},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, bookings, availability.NewCalculator(200), "JOD"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{BookingsSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(BookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, bookingHeaders, rows[0])
	assert.Equal(t, []string{"2026-01-22", "HAL-0", "Lina", "0790000000", "4", "80", "JOD", "2026-01-21 18:05"}, rows[1])
	assert.Equal(t, "HAL-1", rows[2][1])
	assert.Equal(t, "2026-01-23", rows[3][0])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"2026-01-22", "2", "6", "194", "high"}, summary[1])
	assert.Equal(t, []string{"2026-01-23", "1", "185", "15", "low"}, summary[2])
}

func TestWriteBookings_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, models.BookingMap{}, availability.NewCalculator(200), "JOD"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(BookingsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "bookings_2026-01-20_to_2026-02-14.xlsx", FileName("2026-01-20", "2026-02-14"))
	assert.Equal(t, "bookings_all_to_all.xlsx", FileName("", ""))
}
