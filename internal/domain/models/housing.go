package models

import "time"

// Property is a student housing listing.
type Property struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Location    string    `json:"location"`
	Distance    float64   `json:"distance"`
	Images      []string  `json:"images"`
	Amenities   string    `json:"amenities"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}

type PropertyInput struct {
	Title       string
	Description string
	Price       float64
	Location    string
	Distance    float64
	Images      []string
	Amenities   string
}

// Booking is a housing booking request made by a student.
type Booking struct {
	ID            int64     `json:"id"`
	PropertyID    int64     `json:"property_id"`
	StudentName   string    `json:"student_name"`
	StudentEmail  string    `json:"student_email"`
	StudentPhone  string    `json:"student_phone"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// BookingListItem joins a booking with its property for admin listings and exports.
type BookingListItem struct {
	Booking
	PropertyTitle string  `json:"property_title"`
	Price         float64 `json:"price"`
	Location      string  `json:"location"`
}

type BookingInput struct {
	PropertyID    int64  `json:"property_id" binding:"required"`
	StudentName   string `json:"student_name" binding:"required"`
	StudentEmail  string `json:"student_email"`
	StudentPhone  string `json:"student_phone" binding:"required"`
	PaymentMethod string `json:"payment_method"`
}

type Review struct {
	ID          int64     `json:"id"`
	PropertyID  int64     `json:"property_id"`
	StudentName string    `json:"student_name"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

type ReviewInput struct {
	PropertyID  int64  `json:"property_id" binding:"required"`
	StudentName string `json:"student_name" binding:"required"`
	Rating      int    `json:"rating" binding:"required"`
	Comment     string `json:"comment"`
}
