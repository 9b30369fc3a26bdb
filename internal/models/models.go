package models

import "time"

// Tier is a presentation hint derived from remaining seats. It never gates booking.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

type Availability struct {
	Date      DateKey `json:"date,omitempty"`
	Selected  bool    `json:"selected"`
	Booked    int     `json:"booked"`
	Available int     `json:"available"`
	Capacity  int     `json:"capacity"`
	Tier      Tier    `json:"tier"`
}

// SelectionState is the pending date of an in-progress booking attempt.
type SelectionState struct {
	Date     time.Time `json:"date"`
	Key      DateKey   `json:"date_key"`
	Restored bool      `json:"restored"`
}

type Preferences struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

// EventInfo describes the recurring buffet as shown to guests.
type EventInfo struct {
	Name      string   `json:"name"`
	Price     int64    `json:"price"`
	Currency  string   `json:"currency"`
	Capacity  int      `json:"capacity"`
	MaxParty  int      `json:"max_party_size"`
	Weekdays  []string `json:"weekdays"`
	StartDate DateKey  `json:"start_date"`
	EndDate   DateKey  `json:"end_date"`
}
