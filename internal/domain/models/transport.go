package models

import (
	"time"

	"campushub/internal/domain"
)

type Agent struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

type Bus struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	RowCount        int               `json:"rows"`
	ColumnCount     int               `json:"columns"`
	WalkwayPosition int               `json:"walkway_position"`
	AgentID         *int64            `json:"agent_id,omitempty"`
	Layout          domain.SeatLayout `json:"seat_layout"`
}

type BusInput struct {
	Name            string `json:"name" binding:"required"`
	RowCount        int    `json:"rows" binding:"required"`
	ColumnCount     int    `json:"columns" binding:"required"`
	WalkwayPosition int    `json:"walkway_position"`
}

type Route struct {
	ID          int64   `json:"id"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Price       float64 `json:"price"`
}

type RouteInput struct {
	Origin      string  `json:"origin" binding:"required"`
	Destination string  `json:"destination" binding:"required"`
	Price       float64 `json:"price"`
}

type Trip struct {
	ID            int64     `json:"id"`
	BusID         int64     `json:"bus_id"`
	RouteID       int64     `json:"route_id"`
	DepartureDate time.Time `json:"departure_date"`
	DepartureTime string    `json:"departure_time"`
	AgentID       *int64    `json:"agent_id,omitempty"`
	Status        string    `json:"status"`

	BusName     string  `json:"bus_name,omitempty"`
	Origin      string  `json:"origin,omitempty"`
	Destination string  `json:"destination,omitempty"`
	Price       float64 `json:"price,omitempty"`
	RowCount    int     `json:"-"`
	ColumnCount int     `json:"-"`
	Walkway     int     `json:"-"`
}

// OwnedBy reports whether agentID owns the trip. Legacy trips with no owner belong to nobody.
func (t Trip) OwnedBy(agentID int64) bool {
	return t.AgentID != nil && *t.AgentID == agentID
}

type TripInput struct {
	BusID         int64  `json:"bus_id" binding:"required"`
	RouteID       int64  `json:"route_id" binding:"required"`
	DepartureDate string `json:"departure_date" binding:"required"`
	DepartureTime string `json:"departure_time" binding:"required"`
}

type SeatBooking struct {
	ID            int64      `json:"id"`
	TripID        int64      `json:"trip_id"`
	SeatNumber    int        `json:"seat_number"`
	StudentName   string     `json:"student_name"`
	StudentPhone  string     `json:"student_phone"`
	StudentEmail  string     `json:"student_email"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	BookingFee    float64    `json:"booking_fee"`
	TicketCode    string     `json:"ticket_code"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	BookedAt      time.Time  `json:"booked_at"`

	Origin        string    `json:"origin,omitempty"`
	Destination   string    `json:"destination,omitempty"`
	DepartureDate time.Time `json:"departure_date,omitempty"`
	DepartureTime string    `json:"departure_time,omitempty"`
	BusName       string    `json:"bus_name,omitempty"`
}

type SeatBookingInput struct {
	SeatNumber   int    `json:"seat_number" binding:"required"`
	StudentName  string `json:"student_name" binding:"required"`
	StudentPhone string `json:"student_phone" binding:"required"`
	StudentEmail string `json:"student_email"`
}

// SeatMap is a trip's layout annotated with the seats already held.
type SeatMap struct {
	Trip       Trip              `json:"trip"`
	Layout     domain.SeatLayout `json:"layout"`
	TakenSeats []int             `json:"taken_seats"`
	BookingFee float64           `json:"booking_fee"`
}
