package domain

// SubjectType names who a session belongs to.
type SubjectType string

const (
	SubjectAgent    SubjectType = "agent"
	SubjectBusiness SubjectType = "business"
)

// Principal carries the authenticated caller when available.
type Principal struct {
	SessionID   string      `json:"-"`
	SubjectType SubjectType `json:"subjectType"`
	SubjectID   int64       `json:"subjectId"`
}

// Seat booking lifecycle.
const (
	SeatStatusPending   = "pending"
	SeatStatusBooked    = "booked"
	SeatStatusCancelled = "cancelled"

	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// Trip lifecycle.
const (
	TripActive   = "active"
	TripInactive = "inactive"
)

// Housing booking lifecycle.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
)

// Service booking lifecycle.
const (
	ServiceBookingBooked    = "booked"
	ServiceBookingDelivered = "delivered"
)

// IsActiveSeatStatus reports whether a booking in this status holds its seat.
func IsActiveSeatStatus(status string) bool {
	return status == SeatStatusPending || status == SeatStatusBooked
}

// ValidTripStatus reports whether s is a known trip status.
func ValidTripStatus(s string) bool {
	return s == TripActive || s == TripInactive
}
