package repositories

import (
	"context"
	"database/sql"

	intconfig "campushub/internal/config"
	intdb "campushub/internal/db"
	"campushub/internal/domain"
	"campushub/internal/domain/models"
)

type ServiceBookingRepository struct {
	DB *sql.DB
}

func (r ServiceBookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r ServiceBookingRepository) Create(ctx context.Context, in models.ServiceBookingInput) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO service_bookings (service_id, student_name, student_email, student_phone, booking_date, booking_time, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, in.ServiceID, in.StudentName, intdb.NullIfEmpty(in.StudentEmail), in.StudentPhone,
		in.BookingDate, in.BookingTime, domain.ServiceBookingBooked)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListForBusiness returns service bookings across all services of a business, newest first.
// limit <= 0 means no limit.
func (r ServiceBookingRepository) ListForBusiness(ctx context.Context, businessID int64, limit int) ([]models.ServiceBooking, error) {
	query := `
		SELECT sb.id, sb.service_id, s.name, sb.student_name, COALESCE(sb.student_email,''), sb.student_phone,
		       COALESCE(sb.booking_date,''), COALESCE(sb.booking_time,''), sb.commission, sb.status, sb.created_at
		FROM service_bookings sb
		JOIN services s ON sb.service_id = s.id
		WHERE s.business_id = ?
		ORDER BY sb.created_at DESC, sb.id DESC`
	args := []any{businessID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ServiceBooking{}
	for rows.Next() {
		var sb models.ServiceBooking
		if err := rows.Scan(&sb.ID, &sb.ServiceID, &sb.ServiceName, &sb.StudentName, &sb.StudentEmail, &sb.StudentPhone,
			&sb.BookingDate, &sb.BookingTime, &sb.Commission, &sb.Status, &sb.CreatedAt); err != nil {
			return out, err
		}
		out = append(out, sb)
	}
	return out, rows.Err()
}

// OwnerOf returns the business owning a service booking.
func (r ServiceBookingRepository) OwnerOf(ctx context.Context, id int64) (int64, error) {
	var businessID int64
	err := r.db().QueryRowContext(ctx, `
		SELECT s.business_id
		FROM service_bookings sb
		JOIN services s ON sb.service_id = s.id
		WHERE sb.id = ?
	`, id).Scan(&businessID)
	return businessID, err
}

func (r ServiceBookingRepository) MarkDelivered(ctx context.Context, id int64) error {
	_, err := r.db().ExecContext(ctx, `UPDATE service_bookings SET status = ? WHERE id = ?`, domain.ServiceBookingDelivered, id)
	return err
}
