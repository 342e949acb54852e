package models

import "time"

// Business is a vendor on the services marketplace.
type Business struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	ContactEmail  string    `json:"contact_email"`
	ContactPhone  string    `json:"contact_phone"`
	Location      string    `json:"location"`
	Logo          string    `json:"logo"`
	Approved      bool      `json:"approved"`
	ServicesCount int       `json:"services_count"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

type BusinessInput struct {
	Name         string
	Description  string
	Category     string
	ContactEmail string
	ContactPhone string
	Location     string
	Logo         string
	Password     string
}

type Service struct {
	ID              int64     `json:"id"`
	BusinessID      int64     `json:"business_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	Duration        string    `json:"duration"`
	Images          []string  `json:"images"`
	Available       bool      `json:"available"`
	CreatedAt       time.Time `json:"created_at"`
	BusinessName    string    `json:"business_name,omitempty"`
	BusinessLogo    string    `json:"business_logo,omitempty"`
	Category        string    `json:"category,omitempty"`
	ContactEmail    string    `json:"contact_email,omitempty"`
	ContactPhone    string    `json:"contact_phone,omitempty"`
	BusinessAddress string    `json:"location,omitempty"`
}

type ServiceInput struct {
	BusinessID  int64
	Name        string
	Description string
	Price       float64
	Duration    string
	Images      []string
}

type ServiceBooking struct {
	ID           int64     `json:"id"`
	ServiceID    int64     `json:"service_id"`
	ServiceName  string    `json:"service_name,omitempty"`
	StudentName  string    `json:"student_name"`
	StudentEmail string    `json:"student_email"`
	StudentPhone string    `json:"student_phone"`
	BookingDate  string    `json:"booking_date"`
	BookingTime  string    `json:"booking_time"`
	Commission   float64   `json:"commission"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type ServiceBookingInput struct {
	ServiceID    int64  `json:"service_id" binding:"required"`
	StudentName  string `json:"student_name" binding:"required"`
	StudentEmail string `json:"student_email"`
	StudentPhone string `json:"student_phone" binding:"required"`
	BookingDate  string `json:"booking_date" binding:"required"`
	BookingTime  string `json:"booking_time" binding:"required"`
}

// ServiceContact is what a business needs to hear about a new service booking.
type ServiceContact struct {
	ServiceName  string
	ContactEmail string
	ContactPhone string
}

// BusinessNotification is a recent service booking rendered for the business inbox.
type BusinessNotification struct {
	ServiceBooking
	Message      string `json:"message"`
	WhatsAppLink string `json:"whatsapp_link"`
}
