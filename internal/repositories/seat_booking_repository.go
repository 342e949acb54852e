package repositories

import (
	"context"
	"database/sql"

	intconfig "campushub/internal/config"
	intdb "campushub/internal/db"
	"campushub/internal/domain"
	"campushub/internal/domain/models"
)

// Unique keys on seat_bookings, matched against MySQL 1062 messages.
const (
	KeyTripActiveSeat = "uniq_trip_active_seat"
	KeyTicketCode     = "uniq_ticket_code"
)

type SeatBookingRepository struct {
	DB *sql.DB
}

func (r SeatBookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// SeatClaim is what Allocate writes for a new booking.
type SeatClaim struct {
	TripID       int64
	SeatNumber   int
	StudentName  string
	StudentPhone string
	StudentEmail string
	TicketCode   string
}

// Allocate inserts a pending booking in one statement. The fee is derived from
// the route price by the same statement. The unique key on (trip_id, active_seat)
// rejects a second active booking of the seat with error 1062.
// Zero affected rows means the trip is missing or not active.
func (r SeatBookingRepository) Allocate(ctx context.Context, c SeatClaim) (int64, int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO seat_bookings
			(trip_id, seat_number, student_name, student_phone, student_email, status, payment_status, booking_fee, ticket_code)
		SELECT t.id, ?, ?, ?, ?, ?, ?, ROUND(r.price * ?, 2), ?
		FROM trips t
		JOIN routes r ON t.route_id = r.id
		WHERE t.id = ? AND t.status = ?
	`, c.SeatNumber, c.StudentName, c.StudentPhone, intdb.NullIfEmpty(c.StudentEmail),
		domain.SeatStatusPending, domain.PaymentPending, domain.BookingFeeRate, c.TicketCode,
		c.TripID, domain.TripActive)
	if err != nil {
		return 0, 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil || affected == 0 {
		return 0, affected, err
	}
	id, err := res.LastInsertId()
	return id, affected, err
}

const seatBookingSelect = `
	SELECT sb.id, sb.trip_id, sb.seat_number, sb.student_name, sb.student_phone, COALESCE(sb.student_email,''),
	       sb.status, sb.payment_status, sb.booking_fee, COALESCE(sb.ticket_code,''), sb.payment_date, sb.booked_at,
	       r.origin, r.destination, t.departure_date, t.departure_time, b.name
	FROM seat_bookings sb
	JOIN trips t ON sb.trip_id = t.id
	JOIN routes r ON t.route_id = r.id
	JOIN buses b ON t.bus_id = b.id`

func scanSeatBooking(s interface{ Scan(...any) error }) (models.SeatBooking, error) {
	var (
		sb     models.SeatBooking
		paidAt sql.NullTime
	)
	if err := s.Scan(&sb.ID, &sb.TripID, &sb.SeatNumber, &sb.StudentName, &sb.StudentPhone, &sb.StudentEmail,
		&sb.Status, &sb.PaymentStatus, &sb.BookingFee, &sb.TicketCode, &paidAt, &sb.BookedAt,
		&sb.Origin, &sb.Destination, &sb.DepartureDate, &sb.DepartureTime, &sb.BusName); err != nil {
		return sb, err
	}
	if paidAt.Valid {
		t := paidAt.Time
		sb.PaymentDate = &t
	}
	return sb, nil
}

func (r SeatBookingRepository) GetByID(ctx context.Context, id int64) (models.SeatBooking, error) {
	return scanSeatBooking(r.db().QueryRowContext(ctx, seatBookingSelect+` WHERE sb.id = ?`, id))
}

func (r SeatBookingRepository) GetByTicketCode(ctx context.Context, code string) (models.SeatBooking, error) {
	return scanSeatBooking(r.db().QueryRowContext(ctx, seatBookingSelect+` WHERE sb.ticket_code = ?`, code))
}

// ListByAgent returns bookings on trips owned by agentID, newest first.
func (r SeatBookingRepository) ListByAgent(ctx context.Context, agentID int64) ([]models.SeatBooking, error) {
	rows, err := r.db().QueryContext(ctx, seatBookingSelect+` WHERE t.agent_id = ? ORDER BY sb.booked_at DESC, sb.id DESC`, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.SeatBooking{}
	for rows.Next() {
		sb, err := scanSeatBooking(rows)
		if err != nil {
			return out, err
		}
		out = append(out, sb)
	}
	return out, rows.Err()
}

// TakenSeats lists seats held by pending or booked bookings of a trip.
func (r SeatBookingRepository) TakenSeats(ctx context.Context, tripID int64) ([]int, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT seat_number
		FROM seat_bookings
		WHERE trip_id = ? AND status IN (?, ?)
		ORDER BY seat_number ASC
	`, tripID, domain.SeatStatusPending, domain.SeatStatusBooked)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return out, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// SeatBookingLock is the state read under FOR UPDATE before an agent mutation.
type SeatBookingLock struct {
	Status        string
	PaymentStatus string
	TripAgentID   sql.NullInt64
}

func (r SeatBookingRepository) LockTx(ctx context.Context, tx *sql.Tx, id int64) (SeatBookingLock, error) {
	var l SeatBookingLock
	err := tx.QueryRowContext(ctx, `
		SELECT sb.status, sb.payment_status, t.agent_id
		FROM seat_bookings sb
		JOIN trips t ON sb.trip_id = t.id
		WHERE sb.id = ?
		FOR UPDATE
	`, id).Scan(&l.Status, &l.PaymentStatus, &l.TripAgentID)
	return l, err
}

func (r SeatBookingRepository) MarkPaidTx(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE seat_bookings
		SET payment_status = ?, status = ?, payment_date = UTC_TIMESTAMP()
		WHERE id = ?
	`, domain.PaymentPaid, domain.SeatStatusBooked, id)
	return err
}

func (r SeatBookingRepository) MarkCancelledTx(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE seat_bookings SET status = ? WHERE id = ?`, domain.SeatStatusCancelled, id)
	return err
}

