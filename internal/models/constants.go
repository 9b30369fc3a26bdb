package models

const (
	StatusConfirmed = "confirmed"
)

const (
	LanguageEnglish = "en"
	LanguageArabic  = "ar"

	DefaultLanguage = LanguageEnglish
	ThemeLight      = "light"
	ThemeDark       = "dark"
	DefaultTheme    = ThemeLight
)

// Storage keys shared by every backend.
const (
	KeyBookings     = "bookings"
	KeySelectedDate = "selectedDate"
	KeyLanguage     = "language"
	KeyTheme        = "theme"
)

const (
	// DefaultCapacity maximum guests per event date
	DefaultCapacity = 200

	// DefaultPrice price per person in DefaultCurrency
	DefaultPrice = 20

	DefaultCurrency = "JOD"

	// DefaultMaxPartySize upper bound of a single booking
	DefaultMaxPartySize = 20

	// DefaultRetentionDays bookings older than this are dropped on load
	DefaultRetentionDays = 30

	// LowAvailabilityThreshold and MediumAvailabilityThreshold bound the availability tiers
	LowAvailabilityThreshold    = 20
	MediumAvailabilityThreshold = 50

	// DefaultQuotaBytes mirrors the usual browser localStorage quota
	DefaultQuotaBytes = 5 * 1024 * 1024

	// DefaultSessionTTL lifetime of session-scoped fallback data in seconds
	DefaultSessionTTL = 24 * 60 * 60

	// BookingReferencePrefix prefix of every booking reference
	BookingReferencePrefix = "HAL"
)
