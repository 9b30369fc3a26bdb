package calendar

import (
	"time"

	"halawa/internal/models"
)

type DayStatus string

const (
	DayDisabled DayStatus = "disabled"
	DayEvent    DayStatus = "event"
)

// Day is one cell of a month grid.
type Day struct {
	Date     models.DateKey `json:"date"`
	Day      int            `json:"day"`
	Weekday  string         `json:"weekday"`
	Status   DayStatus      `json:"status"`
	Selected bool           `json:"selected"`
}

// Month is the data behind a calendar page. Offset is the number of empty
// leading cells in a Sunday-first grid.
type Month struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Offset int        `json:"offset"`
	Days   []Day      `json:"days"`
}

type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Month lays out every day of the month with its bookability and selection flag.
func (p *Policy) Month(year int, month time.Month, selected *time.Time) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, p.loc)
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, p.loc).Day()

	var selectedKey models.DateKey
	if selected != nil {
		selectedKey = models.DateKeyOf(selected.In(p.loc))
	}

	out := Month{
		Year:   year,
		Month:  month,
		Offset: int(first.Weekday()),
		Days:   make([]Day, 0, daysInMonth),
	}
	for d := 1; d <= daysInMonth; d++ {
		date := first.AddDate(0, 0, d-1)
		key := models.DateKeyOf(date)
		status := DayDisabled
		if p.IsBookable(date) {
			status = DayEvent
		}
		out.Days = append(out.Days, Day{
			Date:     key,
			Day:      d,
			Weekday:  date.Weekday().String(),
			Status:   status,
			Selected: key == selectedKey,
		})
	}
	return out
}

// Months lists the months the campaign window touches; navigation is limited to them.
func (p *Policy) Months() []YearMonth {
	var out []YearMonth
	cur := time.Date(p.start.Year(), p.start.Month(), 1, 0, 0, 0, 0, p.loc)
	last := time.Date(p.end.Year(), p.end.Month(), 1, 0, 0, 0, 0, p.loc)
	for !cur.After(last) {
		out = append(out, YearMonth{Year: cur.Year(), Month: cur.Month()})
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// HasMonth reports whether the month is navigable.
func (p *Policy) HasMonth(year int, month time.Month) bool {
	for _, ym := range p.Months() {
		if ym.Year == year && ym.Month == month {
			return true
		}
	}
	return false
}
