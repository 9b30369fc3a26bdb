package models

import (
	"sort"
	"time"
)

type Booking struct {
	ID         string    `json:"id"`
	Date       DateKey   `json:"date"`
	GuestName  string    `json:"guest_name"`
	GuestPhone string    `json:"guest_phone"`
	PartySize  int       `json:"party_size"`
	TotalPrice int64     `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
	Status     string    `json:"status"` // always confirmed
}

// BookingMap is the persisted shape of the store: date-key to bookings in insertion order.
type BookingMap map[DateKey][]Booking

// Clone returns a deep copy so callers can mutate without touching the store.
func (m BookingMap) Clone() BookingMap {
	out := make(BookingMap, len(m))
	for k, list := range m {
		out[k] = append([]Booking(nil), list...)
	}
	return out
}

// BookingsFor returns the bookings of one date-key.
func (m BookingMap) BookingsFor(key DateKey) []Booking {
	return m[key]
}

// SeatsBooked sums party sizes for one date-key.
func (m BookingMap) SeatsBooked(key DateKey) int {
	total := 0
	for _, b := range m[key] {
		total += b.PartySize
	}
	return total
}

// Count returns the number of bookings across all dates.
func (m BookingMap) Count() int {
	n := 0
	for _, list := range m {
		n += len(list)
	}
	return n
}

// Dates lists the date-keys in ascending order.
func (m BookingMap) Dates() []DateKey {
	keys := make([]DateKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// BookingRequest is the raw input of a booking attempt. A zero PartySize means the field was not supplied.
type BookingRequest struct {
	Date       *time.Time `json:"date,omitempty"`
	GuestName  string     `json:"guest_name"`
	GuestPhone string     `json:"guest_phone"`
	PartySize  int        `json:"party_size"`
}

type Confirmation struct {
	BookingID  string  `json:"booking_id"`
	Date       DateKey `json:"date"`
	GuestName  string  `json:"guest_name"`
	PartySize  int     `json:"party_size"`
	TotalPrice int64   `json:"total_price"`
	Currency   string  `json:"currency"`
	Persisted  bool    `json:"persisted"`
}
