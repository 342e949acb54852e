package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"campushub/internal/utils"
)

// ReportsService turns admin and agent listings into CSV exports.
type ReportsService struct {
	Housing   HousingService
	Seats     SeatBookingService
	RequestID string
	Now       func() time.Time
}

func (s ReportsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var housingBookingHeader = []string{
	"booking_id", "property_id", "property_title", "location", "price",
	"student_name", "student_email", "student_phone", "payment_method", "status", "created_at",
}

var seatBookingHeader = []string{
	"booking_id", "ticket_code", "trip_id", "origin", "destination", "departure_date", "departure_time",
	"bus", "seat_number", "student_name", "student_phone", "student_email",
	"status", "payment_status", "booking_fee", "payment_date", "booked_at",
}

// ExportHousingBookings writes every housing booking as CSV and returns the suggested filename.
func (s ReportsService) ExportHousingBookings(ctx context.Context, w io.Writer) (string, error) {
	rows, err := s.Housing.ListBookings(ctx)
	if err != nil {
		return "", err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(housingBookingHeader); err != nil {
		return "", err
	}
	for _, b := range rows {
		if err := cw.Write([]string{
			strconv.FormatInt(b.ID, 10),
			strconv.FormatInt(b.PropertyID, 10),
			b.PropertyTitle,
			b.Location,
			utils.FormatMoney(b.Price),
			b.StudentName,
			b.StudentEmail,
			b.StudentPhone,
			b.PaymentMethod,
			b.Status,
			utils.FormatDateTime(b.CreatedAt),
		}); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	utils.LogEvent(s.RequestID, "reports", "export_housing_bookings", fmt.Sprintf("rows=%d", len(rows)))
	return fmt.Sprintf("housing_bookings_%s.csv", s.now().Format("20060102")), nil
}

// ExportSeatBookings writes the seat bookings on an agent's trips as CSV.
func (s ReportsService) ExportSeatBookings(ctx context.Context, agentID int64, w io.Writer) (string, error) {
	rows, err := s.Seats.ListForAgent(ctx, agentID)
	if err != nil {
		return "", err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(seatBookingHeader); err != nil {
		return "", err
	}
	for _, b := range rows {
		paidAt := ""
		if b.PaymentDate != nil {
			paidAt = utils.FormatDateTime(*b.PaymentDate)
		}
		if err := cw.Write([]string{
			strconv.FormatInt(b.ID, 10),
			b.TicketCode,
			strconv.FormatInt(b.TripID, 10),
			b.Origin,
			b.Destination,
			utils.FormatDay(b.DepartureDate),
			b.DepartureTime,
			b.BusName,
			strconv.Itoa(b.SeatNumber),
			b.StudentName,
			b.StudentPhone,
			b.StudentEmail,
			b.Status,
			b.PaymentStatus,
			utils.FormatMoney(b.BookingFee),
			paidAt,
			utils.FormatDateTime(b.BookedAt),
		}); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	utils.LogEvent(s.RequestID, "reports", "export_seat_bookings", fmt.Sprintf("agent_id=%d rows=%d", agentID, len(rows)))
	return fmt.Sprintf("seat_bookings_%d_%s.csv", agentID, s.now().Format("20060102")), nil
}
