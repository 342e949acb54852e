package repositories

import (
	"context"
	"database/sql"

	intconfig "campushub/internal/config"
	intdb "campushub/internal/db"
	"campushub/internal/domain"
	"campushub/internal/domain/models"
)

// BookingRepository stores housing bookings.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r BookingRepository) Create(ctx context.Context, in models.BookingInput) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO bookings (property_id, student_name, student_email, student_phone, payment_method, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.PropertyID, in.StudentName, intdb.NullIfEmpty(in.StudentEmail), in.StudentPhone,
		intdb.NullIfEmpty(in.PaymentMethod), domain.BookingPending)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// List joins every booking with its property, newest first.
func (r BookingRepository) List(ctx context.Context) ([]models.BookingListItem, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT b.id, b.property_id, b.student_name, COALESCE(b.student_email,''), b.student_phone,
		       COALESCE(b.payment_method,''), b.status, b.created_at,
		       p.title, p.price, COALESCE(p.location,'')
		FROM bookings b
		JOIN properties p ON b.property_id = p.id
		ORDER BY b.created_at DESC, b.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.BookingListItem{}
	for rows.Next() {
		var it models.BookingListItem
		if err := rows.Scan(&it.ID, &it.PropertyID, &it.StudentName, &it.StudentEmail, &it.StudentPhone,
			&it.PaymentMethod, &it.Status, &it.CreatedAt,
			&it.PropertyTitle, &it.Price, &it.Location); err != nil {
			return out, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// LockTx loads a booking's property and status under a row lock.
func (r BookingRepository) LockTx(ctx context.Context, tx *sql.Tx, id int64) (propertyID int64, status string, err error) {
	err = tx.QueryRowContext(ctx, `SELECT property_id, status FROM bookings WHERE id = ? FOR UPDATE`, id).Scan(&propertyID, &status)
	return propertyID, status, err
}

func (r BookingRepository) SetStatusTx(ctx context.Context, tx *sql.Tx, id int64, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	return err
}
