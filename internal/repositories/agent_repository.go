package repositories

import (
	"context"
	"database/sql"

	intconfig "campushub/internal/config"
	intdb "campushub/internal/db"
	"campushub/internal/domain/models"
)

type AgentRepository struct {
	DB *sql.DB
}

func (r AgentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const agentColumns = `id, email, password_hash, name, COALESCE(phone,''), created_at`

func scanAgent(row *sql.Row) (models.Agent, error) {
	var a models.Agent
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.Phone, &a.CreatedAt)
	return a, err
}

func (r AgentRepository) FindByEmail(ctx context.Context, email string) (models.Agent, error) {
	return scanAgent(r.db().QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE email = ?`, email))
}

func (r AgentRepository) GetByID(ctx context.Context, id int64) (models.Agent, error) {
	return scanAgent(r.db().QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = ?`, id))
}

// CreateIfAbsent inserts the agent unless the email is already taken.
// It reports whether a row was created.
func (r AgentRepository) CreateIfAbsent(ctx context.Context, a models.Agent) (bool, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT IGNORE INTO agents (email, password_hash, name, phone)
		VALUES (?, ?, ?, ?)
	`, a.Email, a.PasswordHash, a.Name, intdb.NullIfEmpty(a.Phone))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AssignOrphans gives buses and trips without an owner to agentID.
func (r AgentRepository) AssignOrphans(ctx context.Context, agentID int64) (buses, trips int64, err error) {
	res, err := r.db().ExecContext(ctx, `UPDATE buses SET agent_id = ? WHERE agent_id IS NULL`, agentID)
	if err != nil {
		return 0, 0, err
	}
	buses, _ = res.RowsAffected()

	res, err = r.db().ExecContext(ctx, `UPDATE trips SET agent_id = ? WHERE agent_id IS NULL`, agentID)
	if err != nil {
		return buses, 0, err
	}
	trips, _ = res.RowsAffected()
	return buses, trips, nil
}
