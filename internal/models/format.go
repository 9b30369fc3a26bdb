package models

import (
	"fmt"
	"regexp"
)

var phonePattern = regexp.MustCompile(`^[\d\s\-+()]+$`)

// IsValidPhone accepts digits, spaces and -+() with at least 7 characters.
// It is not applied on the booking path.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone) && len(phone) >= 7
}

// FormatPrice renders an amount as "20 JOD".
func FormatPrice(amount int64, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return fmt.Sprintf("%d %s", amount, currency)
}
