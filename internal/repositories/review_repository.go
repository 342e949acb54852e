package repositories

import (
	"context"
	"database/sql"

	intconfig "campushub/internal/config"
	intdb "campushub/internal/db"
	"campushub/internal/domain/models"
)

type ReviewRepository struct {
	DB *sql.DB
}

func (r ReviewRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r ReviewRepository) ListByProperty(ctx context.Context, propertyID int64) ([]models.Review, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT id, property_id, student_name, rating, COALESCE(comment,''), created_at
		FROM reviews
		WHERE property_id = ?
		ORDER BY created_at DESC, id DESC
	`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Review{}
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.PropertyID, &rv.StudentName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return out, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r ReviewRepository) Create(ctx context.Context, in models.ReviewInput) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO reviews (property_id, student_name, rating, comment)
		VALUES (?, ?, ?, ?)
	`, in.PropertyID, in.StudentName, in.Rating, intdb.NullIfEmpty(in.Comment))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
