package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "campushub/internal/config"
	intdb "campushub/internal/db"
	"campushub/internal/domain"
	"campushub/internal/domain/models"
	"campushub/internal/repositories"
	"campushub/internal/utils"
)

// HousingService covers property listings, their bookings and reviews.
type HousingService struct {
	Properties repositories.PropertyRepository
	Bookings   repositories.BookingRepository
	Reviews    repositories.ReviewRepository
	DB         *sql.DB
	RequestID  string
}

func (s HousingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s HousingService) ListProperties(ctx context.Context) ([]models.Property, error) {
	out, err := s.Properties.ListAvailable(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "list properties", Err: err}
	}
	return out, nil
}

// GetProperty returns the listing with its reviews.
func (s HousingService) GetProperty(ctx context.Context, id int64) (models.Property, []models.Review, error) {
	p, err := s.Properties.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil, domain.NotFoundError{Resource: "property", Err: err}
	}
	if err != nil {
		return p, nil, domain.InternalError{Msg: "load property", Err: err}
	}
	reviews, err := s.Reviews.ListByProperty(ctx, id)
	if err != nil {
		return p, nil, domain.InternalError{Msg: "list reviews", Err: err}
	}
	return p, reviews, nil
}

func (s HousingService) CreateProperty(ctx context.Context, in models.PropertyInput) (models.Property, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return models.Property{}, domain.ValidationError{Field: "title", Msg: "is required"}
	}
	if in.Price < 0 {
		return models.Property{}, domain.ValidationError{Field: "price", Msg: "must not be negative"}
	}
	if in.Distance < 0 {
		return models.Property{}, domain.ValidationError{Field: "distance", Msg: "must not be negative"}
	}
	id, err := s.Properties.Create(ctx, in)
	if err != nil {
		return models.Property{}, domain.InternalError{Msg: "create property", Err: err}
	}
	utils.LogEvent(s.RequestID, "housing", "create_property", fmt.Sprintf("property_id=%d", id))
	return models.Property{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		Distance:    in.Distance,
		Images:      in.Images,
		Amenities:   in.Amenities,
		Available:   true,
	}, nil
}

func (s HousingService) DeleteProperty(ctx context.Context, id int64) error {
	n, err := s.Properties.Delete(ctx, id)
	if err != nil {
		return domain.InternalError{Msg: "delete property", Err: err}
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "property"}
	}
	utils.LogEvent(s.RequestID, "housing", "delete_property", fmt.Sprintf("property_id=%d", id))
	return nil
}

func (s HousingService) CreateBooking(ctx context.Context, in models.BookingInput) (models.Booking, error) {
	in.StudentName = strings.TrimSpace(in.StudentName)
	in.StudentPhone = strings.TrimSpace(in.StudentPhone)
	if in.StudentName == "" || in.StudentPhone == "" {
		return models.Booking{}, domain.ValidationError{Msg: "student_name and student_phone are required"}
	}
	p, err := s.Properties.GetByID(ctx, in.PropertyID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "property", Err: err}
	}
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "load property", Err: err}
	}
	if !p.Available {
		return models.Booking{}, domain.ConflictError{Resource: "property", Msg: "property is no longer available"}
	}
	id, err := s.Bookings.Create(ctx, in)
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "create booking", Err: err}
	}
	utils.LogEvent(s.RequestID, "housing", "create_booking", fmt.Sprintf("booking_id=%d property_id=%d", id, in.PropertyID))
	return models.Booking{
		ID:            id,
		PropertyID:    in.PropertyID,
		StudentName:   in.StudentName,
		StudentEmail:  in.StudentEmail,
		StudentPhone:  in.StudentPhone,
		PaymentMethod: in.PaymentMethod,
		Status:        domain.BookingPending,
	}, nil
}

func (s HousingService) ListBookings(ctx context.Context) ([]models.BookingListItem, error) {
	out, err := s.Bookings.List(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "list bookings", Err: err}
	}
	return out, nil
}

// ConfirmBooking confirms the booking and takes the property off the market
// in one transaction. Confirming twice is a no-op.
func (s HousingService) ConfirmBooking(ctx context.Context, id int64) error {
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		propertyID, status, err := s.Bookings.LockTx(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "booking", Err: err}
		}
		if err != nil {
			return domain.InternalError{Msg: "lock booking", Err: err}
		}
		if status == domain.BookingConfirmed {
			return nil
		}
		available, err := s.Properties.LockAvailabilityTx(ctx, tx, propertyID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "property", Err: err}
		}
		if err != nil {
			return domain.InternalError{Msg: "lock property", Err: err}
		}
		if !available {
			return domain.ConflictError{Resource: "property", Msg: "property is already taken"}
		}
		if err := s.Bookings.SetStatusTx(ctx, tx, id, domain.BookingConfirmed); err != nil {
			return domain.InternalError{Msg: "confirm booking", Err: err}
		}
		if err := s.Properties.MarkUnavailableTx(ctx, tx, propertyID); err != nil {
			return domain.InternalError{Msg: "mark property unavailable", Err: err}
		}
		return nil
	})
	if err != nil {
		return wrapTxError(err, "confirm booking")
	}
	utils.LogEvent(s.RequestID, "housing", "confirm_booking", fmt.Sprintf("booking_id=%d", id))
	return nil
}

func (s HousingService) CreateReview(ctx context.Context, in models.ReviewInput) (models.Review, error) {
	in.StudentName = strings.TrimSpace(in.StudentName)
	if in.StudentName == "" {
		return models.Review{}, domain.ValidationError{Field: "student_name", Msg: "is required"}
	}
	if in.Rating < 1 || in.Rating > 5 {
		return models.Review{}, domain.ValidationError{Field: "rating", Msg: "must be between 1 and 5"}
	}
	if _, err := s.Properties.GetByID(ctx, in.PropertyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Review{}, domain.NotFoundError{Resource: "property", Err: err}
		}
		return models.Review{}, domain.InternalError{Msg: "load property", Err: err}
	}
	id, err := s.Reviews.Create(ctx, in)
	if err != nil {
		return models.Review{}, domain.InternalError{Msg: "create review", Err: err}
	}
	return models.Review{
		ID:          id,
		PropertyID:  in.PropertyID,
		StudentName: in.StudentName,
		Rating:      in.Rating,
		Comment:     in.Comment,
	}, nil
}

// wrapTxError keeps domain errors raised inside a transaction and wraps
// begin/commit failures as internal errors.
func wrapTxError(err error, action string) error {
	switch {
	case domain.IsNotFound(err), domain.IsValidation(err), domain.IsConflict(err),
		domain.IsForbidden(err), domain.IsUnauthorized(err), domain.IsInternal(err):
		return err
	default:
		return domain.InternalError{Msg: action, Err: err}
	}
}
