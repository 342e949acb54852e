package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceBookingEmail(t *testing.T) {
	alert := ServiceBookingAlert{BookingID: 42, ServiceName: "Haircut", StudentName: "<b>Ann</b>", StudentPhone: "0991"}
	msg, err := ServiceBookingEmail("shop@example.com", alert, "https://wa.me/265991?text=Hi%20there")
	require.NoError(t, err)

	assert.Equal(t, "shop@example.com", msg.To)
	assert.Equal(t, "New Booking: Haircut", msg.Subject)
	assert.Contains(t, msg.HTML, "Booking ID: #42")
	assert.Contains(t, msg.HTML, `href="https://wa.me/265991?text=Hi%20there"`)
	assert.Contains(t, msg.HTML, "&lt;b&gt;Ann&lt;/b&gt;")
	assert.NotContains(t, msg.HTML, "<b>Ann</b>")
}

func TestSeatTicketEmail(t *testing.T) {
	msg, err := SeatTicketEmail("ann@example.com", SeatTicket{
		StudentName: "Ann",
		Origin:      "Zomba",
		Destination: "Blantyre",
		SeatNumber:  3,
		BookingFee:  "10.00",
		TicketCode:  "CH-ABCDEF0123",
	})
	require.NoError(t, err)

	assert.Equal(t, "Seat 3 reserved - ticket CH-ABCDEF0123", msg.Subject)
	assert.Contains(t, msg.HTML, "CH-ABCDEF0123")
	assert.Contains(t, msg.HTML, "Zomba")
}
