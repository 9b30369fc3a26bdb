package models

import "errors"

// RejectionReason is the stable code a caller maps to a localized message.
type RejectionReason string

const (
	ReasonNoDateSelected      RejectionReason = "no_date_selected"
	ReasonDateNotBookable     RejectionReason = "date_not_bookable"
	ReasonMissingFields       RejectionReason = "missing_fields"
	ReasonPartySizeOutOfRange RejectionReason = "party_size_out_of_range"
	ReasonInsufficientSeats   RejectionReason = "insufficient_seats"
)

// RejectionError rejects a single booking request and leaves prior state untouched.
type RejectionError struct {
	Reason RejectionReason
	msg    string
}

func (e *RejectionError) Error() string { return e.msg }

var (
	ErrNoDateSelected      = &RejectionError{Reason: ReasonNoDateSelected, msg: "no date selected"}
	ErrDateNotBookable     = &RejectionError{Reason: ReasonDateNotBookable, msg: "date is not bookable"}
	ErrMissingFields       = &RejectionError{Reason: ReasonMissingFields, msg: "name, phone and party size are required"}
	ErrPartySizeOutOfRange = &RejectionError{Reason: ReasonPartySizeOutOfRange, msg: "party size out of range"}
	ErrInsufficientSeats   = &RejectionError{Reason: ReasonInsufficientSeats, msg: "not enough seats available for this date"}
)

// ReasonOf extracts the rejection code from err, or "" when err is not a rejection.
func ReasonOf(err error) RejectionReason {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ""
}
