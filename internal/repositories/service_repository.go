package repositories

import (
	"context"
	"database/sql"
	"strings"

	intconfig "campushub/internal/config"
	intdb "campushub/internal/db"
	"campushub/internal/domain/models"
)

// ServiceRepository stores marketplace services offered by businesses.
type ServiceRepository struct {
	DB *sql.DB
}

func (r ServiceRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const serviceColumns = `s.id, s.business_id, s.name, COALESCE(s.description,''), s.price,
	COALESCE(s.duration,''), COALESCE(s.images,''), s.available, s.created_at`

func scanService(s interface{ Scan(...any) error }, extra ...any) (models.Service, error) {
	var (
		svc    models.Service
		images string
	)
	dest := append([]any{&svc.ID, &svc.BusinessID, &svc.Name, &svc.Description, &svc.Price,
		&svc.Duration, &images, &svc.Available, &svc.CreatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return svc, err
	}
	svc.Images = intdb.SplitList(images)
	return svc, nil
}

// ListPublic returns available services of approved businesses.
func (r ServiceRepository) ListPublic(ctx context.Context) ([]models.Service, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT `+serviceColumns+`, b.name, COALESCE(b.logo,''), COALESCE(b.category,'')
		FROM services s
		JOIN businesses b ON s.business_id = b.id
		WHERE s.available = 1 AND b.approved = 1
		ORDER BY s.created_at DESC, s.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Service{}
	for rows.Next() {
		var name, logo, category string
		svc, err := scanService(rows, &name, &logo, &category)
		if err != nil {
			return out, err
		}
		svc.BusinessName, svc.BusinessLogo, svc.Category = name, logo, category
		out = append(out, svc)
	}
	return out, rows.Err()
}

// GetByID only finds services of approved businesses.
func (r ServiceRepository) GetByID(ctx context.Context, id int64) (models.Service, error) {
	var name, email, phone, location string
	svc, err := scanService(r.db().QueryRowContext(ctx, `
		SELECT `+serviceColumns+`, b.name, COALESCE(b.contact_email,''), COALESCE(b.contact_phone,''), COALESCE(b.location,'')
		FROM services s
		JOIN businesses b ON s.business_id = b.id
		WHERE s.id = ? AND b.approved = 1
	`, id), &name, &email, &phone, &location)
	if err != nil {
		return svc, err
	}
	svc.BusinessName, svc.ContactEmail, svc.ContactPhone, svc.BusinessAddress = name, email, phone, location
	return svc, nil
}

func (r ServiceRepository) ListByBusiness(ctx context.Context, businessID int64) ([]models.Service, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+serviceColumns+` FROM services s WHERE s.business_id = ? ORDER BY s.id ASC`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Service{}
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return out, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

func (r ServiceRepository) Create(ctx context.Context, in models.ServiceInput) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO services (business_id, name, description, price, duration, images)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.BusinessID, in.Name, intdb.NullIfEmpty(in.Description), in.Price, intdb.NullIfEmpty(in.Duration), strings.Join(in.Images, ","))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Contact loads who should hear about a booking of this service. Only
// available services of approved businesses can be booked.
func (r ServiceRepository) Contact(ctx context.Context, serviceID int64) (models.ServiceContact, error) {
	var c models.ServiceContact
	err := r.db().QueryRowContext(ctx, `
		SELECT s.name, COALESCE(b.contact_email,''), COALESCE(b.contact_phone,'')
		FROM services s
		JOIN businesses b ON s.business_id = b.id
		WHERE s.id = ? AND s.available = 1 AND b.approved = 1
	`, serviceID).Scan(&c.ServiceName, &c.ContactEmail, &c.ContactPhone)
	return c, err
}
