// Package export renders bookings as an XLSX workbook for the venue staff.
package export

import (
	"fmt"
	"io"

	"halawa/internal/availability"
	"halawa/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	BookingsSheet = "Bookings"
	SummarySheet  = "Summary"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var bookingHeaders = []string{"Date", "Reference", "Guest", "Phone", "Party size", "Total", "Currency", "Created at"}

var summaryHeaders = []string{"Date", "Bookings", "Booked", "Available", "Tier"}

// FileName is the suggested download name for the range [from, to].
func FileName(from, to models.DateKey) string {
	if from == "" {
		from = "all"
	}
	if to == "" {
		to = "all"
	}
	return fmt.Sprintf("bookings_%s_to_%s.xlsx", from, to)
}

// WriteBookings writes one row per booking, ordered by date, plus a per-date summary.
func WriteBookings(w io.Writer, bookings models.BookingMap, calc *availability.Calculator, currency string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(BookingsSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	_ = f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	if err := writeHeader(f, BookingsSheet, bookingHeaders, headerStyle); err != nil {
		return err
	}
	if err := writeHeader(f, SummarySheet, summaryHeaders, headerStyle); err != nil {
		return err
	}

	row := 2
	for i, key := range bookings.Dates() {
		for _, b := range bookings[key] {
			values := []interface{}{
				key.String(), b.ID, b.GuestName, b.GuestPhone, b.PartySize,
				b.TotalPrice, currency, b.CreatedAt.Format("2006-01-02 15:04"),
			}
			if err := writeRow(f, BookingsSheet, row, values); err != nil {
				return err
			}
			row++
		}

		a := calc.For(key, bookings)
		summary := []interface{}{key.String(), len(bookings[key]), a.Booked, a.Available, string(a.Tier)}
		if err := writeRow(f, SummarySheet, i+2, summary); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(BookingsSheet, "A", "B", 22)
	_ = f.SetColWidth(BookingsSheet, "C", "D", 25)
	_ = f.SetColWidth(BookingsSheet, "H", "H", 18)
	_ = f.SetColWidth(SummarySheet, "A", "E", 14)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
