package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"campushub/internal/domain"
	"campushub/internal/domain/models"
	"campushub/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// TicketService renders seat bookings as PDF documents.
type TicketService struct {
	Bookings  SeatBookingService
	RequestID string
	Loader    func(ctx context.Context, code string) (models.SeatBooking, error)
	Now       func() time.Time
}

func (s TicketService) load(ctx context.Context, code string) (models.SeatBooking, error) {
	if s.Loader != nil {
		return s.Loader(ctx, code)
	}
	return s.Bookings.ByTicketCode(ctx, code)
}

func (s TicketService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GenerateETicket renders the e-ticket of a live booking. Cancelled bookings have no ticket.
func (s TicketService) GenerateETicket(ctx context.Context, code string) ([]byte, string, error) {
	b, err := s.load(ctx, code)
	if err != nil {
		return nil, "", err
	}
	if b.Status == domain.SeatStatusCancelled {
		return nil, "", domain.ConflictError{Resource: "ticket", Msg: "booking is cancelled"}
	}
	utils.LogEvent(s.RequestID, "ticket", "generate_eticket", fmt.Sprintf("booking_id=%d", b.ID))
	return buildETicketPDF(b, s.now())
}

func buildETicketPDF(b models.SeatBooking, printedAt time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("E-Ticket "+b.TicketCode, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	payment := "UNPAID - pay the booking fee to your agent"
	if b.PaymentStatus == domain.PaymentPaid {
		payment = "PAID"
		if b.PaymentDate != nil {
			payment += " on " + utils.FormatDateTime(*b.PaymentDate)
		}
	}

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Ticket code  : %s", safe(b.TicketCode, "-")),
		fmt.Sprintf("Passenger    : %s", safe(b.StudentName, "-")),
		fmt.Sprintf("Phone        : %s", safe(b.StudentPhone, "-")),
		fmt.Sprintf("Route        : %s -> %s", safe(b.Origin, "-"), safe(b.Destination, "-")),
		fmt.Sprintf("Departure    : %s %s", safe(utils.FormatDay(b.DepartureDate), "-"), safe(timeHM(b.DepartureTime), "-")),
		fmt.Sprintf("Bus          : %s", safe(b.BusName, "-")),
		fmt.Sprintf("Seat         : %d", b.SeatNumber),
		fmt.Sprintf("Booking fee  : %s", utils.FormatAmount(b.BookingFee)),
		fmt.Sprintf("Payment      : %s", payment),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Valid for one passenger and one seat. Show this ticket when boarding. Printed "+utils.FormatDateTime(printedAt)+".", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("ETICKET_%s_%s.pdf", safeFilenamePart(b.TicketCode), safeFilenamePart(b.StudentName))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func timeHM(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 5 {
		return v[:5]
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
