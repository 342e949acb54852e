package repositories

import (
	"context"
	"database/sql"
	"strings"

	intconfig "campushub/internal/config"
	intdb "campushub/internal/db"
	"campushub/internal/domain/models"
)

type PropertyRepository struct {
	DB *sql.DB
}

func (r PropertyRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const propertyColumns = `id, title, COALESCE(description,''), price, COALESCE(location,''), distance,
	COALESCE(images,''), COALESCE(amenities,''), available, created_at`

func scanProperty(s interface{ Scan(...any) error }) (models.Property, error) {
	var (
		p      models.Property
		images string
	)
	if err := s.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Location, &p.Distance,
		&images, &p.Amenities, &p.Available, &p.CreatedAt); err != nil {
		return p, err
	}
	p.Images = intdb.SplitList(images)
	return p, nil
}

// ListAvailable returns bookable properties, newest first.
func (r PropertyRepository) ListAvailable(ctx context.Context) ([]models.Property, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE available = 1 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r PropertyRepository) GetByID(ctx context.Context, id int64) (models.Property, error) {
	return scanProperty(r.db().QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id))
}

func (r PropertyRepository) Create(ctx context.Context, in models.PropertyInput) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO properties (title, description, price, location, distance, images, amenities)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, in.Title, intdb.NullIfEmpty(in.Description), in.Price, intdb.NullIfEmpty(in.Location), in.Distance,
		strings.Join(in.Images, ","), intdb.NullIfEmpty(in.Amenities))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Delete removes the listing only; uploaded images stay on disk.
func (r PropertyRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db().ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LockAvailabilityTx reads the availability flag under a row lock.
func (r PropertyRepository) LockAvailabilityTx(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	var available bool
	err := tx.QueryRowContext(ctx, `SELECT available FROM properties WHERE id = ? FOR UPDATE`, id).Scan(&available)
	return available, err
}

func (r PropertyRepository) MarkUnavailableTx(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE properties SET available = 0 WHERE id = ?`, id)
	return err
}
