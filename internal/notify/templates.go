package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

var serviceBookingTmpl = template.Must(template.New("service_booking").Parse(`<h2>New Service Booking!</h2>
<p><strong>Service:</strong> {{.ServiceName}}</p>
<p><strong>Customer:</strong> {{.StudentName}}</p>
<p><strong>Phone:</strong> {{.StudentPhone}}</p>
<p><strong>Email:</strong> {{.StudentEmail}}</p>
<p><strong>Date:</strong> {{.BookingDate}}</p>
<p><strong>Time:</strong> {{.BookingTime}}</p>
<hr>
<p><a href="{{.WhatsAppLink}}" style="background: #00ff88; padding: 10px 20px; color: #000; text-decoration: none; border-radius: 5px; font-weight: bold;">Reply on WhatsApp</a></p>
<p style="color: #666; font-size: 0.9em;">Booking ID: #{{.BookingID}}</p>
`))

var seatTicketTmpl = template.Must(template.New("seat_ticket").Parse(`<h2>Your seat is reserved</h2>
<p>Hi {{.StudentName}},</p>
<p><strong>Route:</strong> {{.Origin}} &rarr; {{.Destination}}</p>
<p><strong>Departure:</strong> {{.DepartureDate}} {{.DepartureTime}}</p>
<p><strong>Seat:</strong> {{.SeatNumber}}</p>
<p><strong>Booking fee:</strong> {{.BookingFee}}</p>
<p><strong>Ticket code:</strong> {{.TicketCode}}</p>
<p style="color: #666; font-size: 0.9em;">Pay the booking fee to the agent to confirm your seat.</p>
`))

// ServiceBookingEmail renders the alert sent to a business for a new service booking.
func ServiceBookingEmail(to string, a ServiceBookingAlert, whatsappLink string) (Message, error) {
	var buf bytes.Buffer
	data := struct {
		ServiceBookingAlert
		WhatsAppLink template.URL
	}{a, template.URL(whatsappLink)}
	if err := serviceBookingTmpl.Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("New Booking: %s", a.ServiceName),
		HTML:    buf.String(),
	}, nil
}

// SeatTicket carries the fields printed in a seat reservation email.
type SeatTicket struct {
	StudentName   string
	Origin        string
	Destination   string
	DepartureDate string
	DepartureTime string
	SeatNumber    int
	BookingFee    string
	TicketCode    string
}

func SeatTicketEmail(to string, t SeatTicket) (Message, error) {
	var buf bytes.Buffer
	if err := seatTicketTmpl.Execute(&buf, t); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Seat %d reserved - ticket %s", t.SeatNumber, t.TicketCode),
		HTML:    buf.String(),
	}, nil
}
