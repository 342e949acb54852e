package repositories

import (
	"context"
	"database/sql"

	intconfig "campushub/internal/config"
	"campushub/internal/domain"
	"campushub/internal/domain/models"
)

type TripRepository struct {
	DB *sql.DB
}

func (r TripRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const tripSelect = `
	SELECT t.id, t.bus_id, t.route_id, t.departure_date, t.departure_time, t.agent_id, t.status,
	       b.name, r.origin, r.destination, r.price, b.row_count, b.column_count, b.walkway_position
	FROM trips t
	JOIN buses b ON t.bus_id = b.id
	JOIN routes r ON t.route_id = r.id`

func scanTrip(s interface{ Scan(...any) error }) (models.Trip, error) {
	var (
		t     models.Trip
		agent sql.NullInt64
	)
	if err := s.Scan(&t.ID, &t.BusID, &t.RouteID, &t.DepartureDate, &t.DepartureTime, &agent, &t.Status,
		&t.BusName, &t.Origin, &t.Destination, &t.Price, &t.RowCount, &t.ColumnCount, &t.Walkway); err != nil {
		return t, err
	}
	if agent.Valid {
		id := agent.Int64
		t.AgentID = &id
	}
	return t, nil
}

func (r TripRepository) list(ctx context.Context, where string, args ...any) ([]models.Trip, error) {
	rows, err := r.db().QueryContext(ctx, tripSelect+` `+where+` ORDER BY t.departure_date ASC, t.departure_time ASC, t.id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListActive is the public departure board.
func (r TripRepository) ListActive(ctx context.Context) ([]models.Trip, error) {
	return r.list(ctx, `WHERE t.status = ?`, domain.TripActive)
}

func (r TripRepository) ListByAgent(ctx context.Context, agentID int64) ([]models.Trip, error) {
	return r.list(ctx, `WHERE t.agent_id = ?`, agentID)
}

func (r TripRepository) GetByID(ctx context.Context, id int64) (models.Trip, error) {
	return scanTrip(r.db().QueryRowContext(ctx, tripSelect+` WHERE t.id = ?`, id))
}

func (r TripRepository) Create(ctx context.Context, agentID int64, in models.TripInput) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO trips (bus_id, route_id, departure_date, departure_time, agent_id, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.BusID, in.RouteID, in.DepartureDate, in.DepartureTime, agentID, domain.TripActive)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateStatus changes the status of a trip owned by agentID.
func (r TripRepository) UpdateStatus(ctx context.Context, agentID, id int64, status string) (int64, error) {
	res, err := r.db().ExecContext(ctx, `UPDATE trips SET status = ? WHERE id = ? AND agent_id = ?`, status, id, agentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
