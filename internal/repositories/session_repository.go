package repositories

import (
	"context"
	"database/sql"
	"time"

	intconfig "campushub/internal/config"
	"campushub/internal/domain"
)

// SessionRepository keeps server-side session rows referenced by the session cookie.
type SessionRepository struct {
	DB *sql.DB
}

func (r SessionRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r SessionRepository) Create(ctx context.Context, p domain.Principal, expiresAt time.Time) error {
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO sessions (id, subject_type, subject_id, expires_at)
		VALUES (?, ?, ?, ?)
	`, p.SessionID, string(p.SubjectType), p.SubjectID, expiresAt.UTC())
	return err
}

// GetValid loads a session that has not expired yet.
func (r SessionRepository) GetValid(ctx context.Context, id string) (domain.Principal, error) {
	var (
		p       domain.Principal
		subject string
	)
	err := r.db().QueryRowContext(ctx, `
		SELECT id, subject_type, subject_id
		FROM sessions
		WHERE id = ? AND expires_at > UTC_TIMESTAMP()
	`, id).Scan(&p.SessionID, &subject, &p.SubjectID)
	p.SubjectType = domain.SubjectType(subject)
	return p, err
}

func (r SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db().ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db().ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= UTC_TIMESTAMP()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
