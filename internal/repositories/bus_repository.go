package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	intconfig "campushub/internal/config"
	"campushub/internal/domain"
	"campushub/internal/domain/models"
)

type BusRepository struct {
	DB *sql.DB
}

func (r BusRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const busColumns = `id, name, row_count, column_count, walkway_position, agent_id, COALESCE(seat_layout, '')`

func scanBus(s interface{ Scan(...any) error }) (models.Bus, error) {
	var (
		b      models.Bus
		agent  sql.NullInt64
		layout string
	)
	if err := s.Scan(&b.ID, &b.Name, &b.RowCount, &b.ColumnCount, &b.WalkwayPosition, &agent, &layout); err != nil {
		return b, err
	}
	if agent.Valid {
		id := agent.Int64
		b.AgentID = &id
	}
	// Rows written before seat_layout existed are rebuilt from geometry.
	if layout == "" || json.Unmarshal([]byte(layout), &b.Layout) != nil {
		b.Layout = domain.GenerateSeatLayout(b.RowCount, b.ColumnCount, b.WalkwayPosition)
	}
	return b, nil
}

func (r BusRepository) GetByID(ctx context.Context, id int64) (models.Bus, error) {
	return scanBus(r.db().QueryRowContext(ctx, `SELECT `+busColumns+` FROM buses WHERE id = ?`, id))
}

func (r BusRepository) ListByAgent(ctx context.Context, agentID int64) ([]models.Bus, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+busColumns+` FROM buses WHERE agent_id = ? ORDER BY id ASC`, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Bus{}
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BusRepository) Create(ctx context.Context, agentID int64, in models.BusInput, layout domain.SeatLayout) (int64, error) {
	raw, err := json.Marshal(layout)
	if err != nil {
		return 0, err
	}
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO buses (name, row_count, column_count, walkway_position, agent_id, seat_layout)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.Name, in.RowCount, in.ColumnCount, in.WalkwayPosition, agentID, string(raw))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update rewrites geometry and layout of a bus owned by agentID.
// Zero affected rows means the bus is missing or belongs to someone else.
func (r BusRepository) Update(ctx context.Context, agentID, id int64, in models.BusInput, layout domain.SeatLayout) (int64, error) {
	raw, err := json.Marshal(layout)
	if err != nil {
		return 0, err
	}
	res, err := r.db().ExecContext(ctx, `
		UPDATE buses
		SET name = ?, row_count = ?, column_count = ?, walkway_position = ?, seat_layout = ?
		WHERE id = ? AND agent_id = ?
	`, in.Name, in.RowCount, in.ColumnCount, in.WalkwayPosition, string(raw), id, agentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r BusRepository) Delete(ctx context.Context, agentID, id int64) (int64, error) {
	res, err := r.db().ExecContext(ctx, `DELETE FROM buses WHERE id = ? AND agent_id = ?`, id, agentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// HasTrips reports whether any trip still references the bus.
func (r BusRepository) HasTrips(ctx context.Context, id int64) (bool, error) {
	var n int
	err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM trips WHERE bus_id = ?`, id).Scan(&n)
	return n > 0, err
}
