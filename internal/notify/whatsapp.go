package notify

import (
	"fmt"
	"net/url"
	"strings"

	"campushub/internal/utils"
)

// WhatsAppLink builds a wa.me deep link. The phone keeps digits only and the
// text is percent-encoded with spaces as %20.
func WhatsAppLink(phone, text string) string {
	link := "https://wa.me/" + utils.DigitsOnly(phone)
	if text == "" {
		return link
	}
	return link + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// ServiceBookingAlert is the WhatsApp message a business sends itself about a new booking.
type ServiceBookingAlert struct {
	BookingID    int64
	ServiceName  string
	StudentName  string
	StudentPhone string
	StudentEmail string
	BookingDate  string
	BookingTime  string
}

func (a ServiceBookingAlert) Text() string {
	return fmt.Sprintf("New Booking Alert!\n\nService: %s\nCustomer: %s\nPhone: %s\nEmail: %s\nDate: %s\nTime: %s\n\nPlease confirm the booking.",
		a.ServiceName, a.StudentName, a.StudentPhone, a.StudentEmail, a.BookingDate, a.BookingTime)
}

// ConfirmationText is what a business replies to a student from the notifications inbox.
func ConfirmationText(studentName, serviceName string) string {
	return fmt.Sprintf("Hello %s, your booking for %s is confirmed!", studentName, serviceName)
}

// InboxMessage is the one-line summary shown in the business inbox.
func InboxMessage(serviceName, studentName string) string {
	return fmt.Sprintf("New booking for %s from %s", serviceName, studentName)
}
