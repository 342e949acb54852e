package repositories

import (
	"context"
	"database/sql"

	intconfig "campushub/internal/config"
	intdb "campushub/internal/db"
	"campushub/internal/domain/models"
)

type BusinessRepository struct {
	DB *sql.DB
}

func (r BusinessRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const businessColumns = `b.id, b.name, COALESCE(b.description,''), COALESCE(b.category,''),
	COALESCE(b.contact_email,''), COALESCE(b.contact_phone,''), COALESCE(b.location,''),
	COALESCE(b.logo,''), b.approved, b.created_at`

func scanBusiness(s interface{ Scan(...any) error }, withCount bool) (models.Business, error) {
	var b models.Business
	dest := []any{&b.ID, &b.Name, &b.Description, &b.Category, &b.ContactEmail, &b.ContactPhone,
		&b.Location, &b.Logo, &b.Approved, &b.CreatedAt}
	if withCount {
		dest = append(dest, &b.ServicesCount)
	}
	err := s.Scan(dest...)
	return b, err
}

func (r BusinessRepository) list(ctx context.Context, where, order string) ([]models.Business, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT `+businessColumns+`, COUNT(s.id) AS services_count
		FROM businesses b
		LEFT JOIN services s ON b.id = s.business_id
		`+where+`
		GROUP BY b.id
		ORDER BY `+order)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Business{}
	for rows.Next() {
		b, err := scanBusiness(rows, true)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListApproved is the public marketplace listing.
func (r BusinessRepository) ListApproved(ctx context.Context) ([]models.Business, error) {
	return r.list(ctx, "WHERE b.approved = 1", "b.name ASC")
}

// ListAll is the admin listing, pending businesses first.
func (r BusinessRepository) ListAll(ctx context.Context) ([]models.Business, error) {
	return r.list(ctx, "", "b.approved ASC, b.created_at DESC")
}

func (r BusinessRepository) GetByID(ctx context.Context, id int64) (models.Business, error) {
	return scanBusiness(r.db().QueryRowContext(ctx, `SELECT `+businessColumns+` FROM businesses b WHERE b.id = ?`, id), false)
}

// GetApproved is the public lookup; pending businesses read as sql.ErrNoRows.
func (r BusinessRepository) GetApproved(ctx context.Context, id int64) (models.Business, error) {
	return scanBusiness(r.db().QueryRowContext(ctx, `SELECT `+businessColumns+` FROM businesses b WHERE b.id = ? AND b.approved = 1`, id), false)
}

func (r BusinessRepository) Create(ctx context.Context, in models.BusinessInput, passwordHash string) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO businesses (name, description, category, contact_email, contact_phone, location, logo, approved, password_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
	`, in.Name, intdb.NullIfEmpty(in.Description), intdb.NullIfEmpty(in.Category), intdb.NullIfEmpty(in.ContactEmail),
		intdb.NullIfEmpty(in.ContactPhone), intdb.NullIfEmpty(in.Location), in.Logo, intdb.NullIfEmpty(passwordHash))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ApprovalState returns the approved flag; sql.ErrNoRows when the business is missing.
func (r BusinessRepository) ApprovalState(ctx context.Context, id int64) (bool, error) {
	var approved bool
	err := r.db().QueryRowContext(ctx, `SELECT approved FROM businesses WHERE id = ?`, id).Scan(&approved)
	return approved, err
}

func (r BusinessRepository) Approve(ctx context.Context, id int64) error {
	_, err := r.db().ExecContext(ctx, `UPDATE businesses SET approved = 1 WHERE id = ?`, id)
	return err
}

func (r BusinessRepository) SetPasswordHash(ctx context.Context, id int64, hash string) (int64, error) {
	res, err := r.db().ExecContext(ctx, `UPDATE businesses SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FindCredentials loads id, name and password hash by contact email.
func (r BusinessRepository) FindCredentials(ctx context.Context, email string) (models.Business, error) {
	var (
		b    models.Business
		hash sql.NullString
	)
	err := r.db().QueryRowContext(ctx, `
		SELECT id, name, COALESCE(contact_email,''), password_hash
		FROM businesses
		WHERE contact_email = ?
		ORDER BY id ASC
		LIMIT 1
	`, email).Scan(&b.ID, &b.Name, &b.ContactEmail, &hash)
	b.PasswordHash = hash.String
	return b, err
}

// DeleteWithServices removes the business and its services in one transaction.
func (r BusinessRepository) DeleteWithServices(ctx context.Context, id int64) (int64, error) {
	var deleted int64
	err := intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM services WHERE business_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM businesses WHERE id = ?`, id)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return deleted, err
}
