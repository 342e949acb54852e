package repositories

import (
	"context"
	"database/sql"

	intconfig "campushub/internal/config"
	"campushub/internal/domain/models"
)

type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r RouteRepository) List(ctx context.Context) ([]models.Route, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT id, origin, destination, price FROM routes ORDER BY origin ASC, destination ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		var rt models.Route
		if err := rows.Scan(&rt.ID, &rt.Origin, &rt.Destination, &rt.Price); err != nil {
			return out, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r RouteRepository) GetByID(ctx context.Context, id int64) (models.Route, error) {
	var rt models.Route
	err := r.db().QueryRowContext(ctx, `SELECT id, origin, destination, price FROM routes WHERE id = ?`, id).
		Scan(&rt.ID, &rt.Origin, &rt.Destination, &rt.Price)
	return rt, err
}

func (r RouteRepository) Create(ctx context.Context, in models.RouteInput) (int64, error) {
	res, err := r.db().ExecContext(ctx, `INSERT INTO routes (origin, destination, price) VALUES (?, ?, ?)`,
		in.Origin, in.Destination, in.Price)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
