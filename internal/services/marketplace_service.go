package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"campushub/internal/domain"
	"campushub/internal/domain/models"
	"campushub/internal/notify"
	"campushub/internal/repositories"
	"campushub/internal/utils"
)

// MaxServiceImages caps images attached to one service.
const MaxServiceImages = 10

// notificationLimit is how many recent bookings the business inbox shows.
const notificationLimit = 10

// MarketplaceService runs the vendor marketplace: businesses, their services
// and service bookings.
type MarketplaceService struct {
	Businesses      repositories.BusinessRepository
	Services        repositories.ServiceRepository
	ServiceBookings repositories.ServiceBookingRepository
	Notifier        notify.Notifier
	RequestID       string
}

func (s MarketplaceService) notifier() notify.Notifier {
	if s.Notifier != nil {
		return s.Notifier
	}
	return notify.Default()
}

func (s MarketplaceService) ListApprovedBusinesses(ctx context.Context) ([]models.Business, error) {
	out, err := s.Businesses.ListApproved(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "list businesses", Err: err}
	}
	return out, nil
}

func (s MarketplaceService) ListAllBusinesses(ctx context.Context) ([]models.Business, error) {
	out, err := s.Businesses.ListAll(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "list businesses", Err: err}
	}
	return out, nil
}

func (s MarketplaceService) business(ctx context.Context, id int64) (models.Business, error) {
	b, err := s.Businesses.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return b, domain.NotFoundError{Resource: "business", Err: err}
	}
	if err != nil {
		return b, domain.InternalError{Msg: "load business", Err: err}
	}
	return b, nil
}

// GetBusiness returns an approved business with all of its services.
// Pending businesses are not found.
func (s MarketplaceService) GetBusiness(ctx context.Context, id int64) (models.Business, []models.Service, error) {
	b, err := s.Businesses.GetApproved(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return b, nil, domain.NotFoundError{Resource: "business", Err: err}
	}
	if err != nil {
		return b, nil, domain.InternalError{Msg: "load business", Err: err}
	}
	services, err := s.Services.ListByBusiness(ctx, id)
	if err != nil {
		return b, nil, domain.InternalError{Msg: "list services", Err: err}
	}
	b.ServicesCount = len(services)
	return b, services, nil
}

// CreateBusiness registers a business as pending. A password is optional and
// only stored hashed.
func (s MarketplaceService) CreateBusiness(ctx context.Context, in models.BusinessInput) (models.Business, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return models.Business{}, domain.ValidationError{Field: "name", Msg: "is required"}
	}
	if in.Logo == "" {
		return models.Business{}, domain.ValidationError{Field: "logo", Msg: "is required"}
	}
	hash := ""
	if in.Password != "" {
		h, err := HashPassword(in.Password)
		if err != nil {
			return models.Business{}, err
		}
		hash = h
	}
	id, err := s.Businesses.Create(ctx, in, hash)
	if err != nil {
		return models.Business{}, domain.InternalError{Msg: "create business", Err: err}
	}
	utils.LogEvent(s.RequestID, "marketplace", "create_business", fmt.Sprintf("business_id=%d", id))
	return models.Business{
		ID:           id,
		Name:         in.Name,
		Description:  in.Description,
		Category:     in.Category,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		Location:     in.Location,
		Logo:         in.Logo,
		Approved:     false,
	}, nil
}

// ApproveBusiness moves a business to approved. Approving an approved
// business succeeds without writing; the bool reports that case.
func (s MarketplaceService) ApproveBusiness(ctx context.Context, id int64) (bool, error) {
	approved, err := s.Businesses.ApprovalState(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.NotFoundError{Resource: "business", Err: err}
	}
	if err != nil {
		return false, domain.InternalError{Msg: "load business", Err: err}
	}
	if approved {
		return true, nil
	}
	if err := s.Businesses.Approve(ctx, id); err != nil {
		return false, domain.InternalError{Msg: "approve business", Err: err}
	}
	utils.LogEvent(s.RequestID, "marketplace", "approve_business", fmt.Sprintf("business_id=%d", id))
	return false, nil
}

func (s MarketplaceService) SetBusinessPassword(ctx context.Context, id int64, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := s.business(ctx, id); err != nil {
		return err
	}
	if _, err := s.Businesses.SetPasswordHash(ctx, id, hash); err != nil {
		return domain.InternalError{Msg: "set business password", Err: err}
	}
	utils.LogEvent(s.RequestID, "marketplace", "set_business_password", fmt.Sprintf("business_id=%d", id))
	return nil
}

// DeleteBusiness removes the business and its services together.
func (s MarketplaceService) DeleteBusiness(ctx context.Context, id int64) error {
	n, err := s.Businesses.DeleteWithServices(ctx, id)
	if err != nil {
		return domain.InternalError{Msg: "delete business", Err: err}
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "business"}
	}
	utils.LogEvent(s.RequestID, "marketplace", "delete_business", fmt.Sprintf("business_id=%d", id))
	return nil
}

func (s MarketplaceService) ListServices(ctx context.Context) ([]models.Service, error) {
	out, err := s.Services.ListPublic(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "list services", Err: err}
	}
	return out, nil
}

func (s MarketplaceService) GetService(ctx context.Context, id int64) (models.Service, error) {
	svc, err := s.Services.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return svc, domain.NotFoundError{Resource: "service", Err: err}
	}
	if err != nil {
		return svc, domain.InternalError{Msg: "load service", Err: err}
	}
	return svc, nil
}

func (s MarketplaceService) CreateService(ctx context.Context, in models.ServiceInput) (models.Service, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return models.Service{}, domain.ValidationError{Field: "name", Msg: "is required"}
	}
	if in.Price < 0 {
		return models.Service{}, domain.ValidationError{Field: "price", Msg: "must not be negative"}
	}
	if len(in.Images) == 0 {
		return models.Service{}, domain.ValidationError{Field: "images", Msg: "at least one image is required"}
	}
	if len(in.Images) > MaxServiceImages {
		return models.Service{}, domain.ValidationError{Field: "images", Msg: fmt.Sprintf("at most %d images", MaxServiceImages)}
	}
	if _, err := s.business(ctx, in.BusinessID); err != nil {
		return models.Service{}, err
	}
	id, err := s.Services.Create(ctx, in)
	if err != nil {
		return models.Service{}, domain.InternalError{Msg: "create service", Err: err}
	}
	utils.LogEvent(s.RequestID, "marketplace", "create_service", fmt.Sprintf("service_id=%d business_id=%d", id, in.BusinessID))
	return models.Service{
		ID:          id,
		BusinessID:  in.BusinessID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Duration:    in.Duration,
		Images:      in.Images,
		Available:   true,
	}, nil
}

// BookService stores the booking, then queues an email to the business.
// The returned link opens WhatsApp with the same alert text.
func (s MarketplaceService) BookService(ctx context.Context, in models.ServiceBookingInput) (models.ServiceBooking, string, error) {
	in.StudentName = strings.TrimSpace(in.StudentName)
	in.StudentPhone = strings.TrimSpace(in.StudentPhone)
	if in.StudentName == "" || in.StudentPhone == "" {
		return models.ServiceBooking{}, "", domain.ValidationError{Msg: "student_name and student_phone are required"}
	}
	if in.BookingDate != "" {
		if _, err := utils.ParseDate(in.BookingDate); err != nil {
			return models.ServiceBooking{}, "", domain.ValidationError{Field: "booking_date", Msg: "expected YYYY-MM-DD", Err: err}
		}
	}
	contact, err := s.Services.Contact(ctx, in.ServiceID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ServiceBooking{}, "", domain.NotFoundError{Resource: "service", Err: err}
	}
	if err != nil {
		return models.ServiceBooking{}, "", domain.InternalError{Msg: "load service", Err: err}
	}

	id, err := s.ServiceBookings.Create(ctx, in)
	if err != nil {
		return models.ServiceBooking{}, "", domain.InternalError{Msg: "create service booking", Err: err}
	}
	utils.LogEvent(s.RequestID, "marketplace", "book_service", fmt.Sprintf("service_booking_id=%d service_id=%d", id, in.ServiceID))

	alert := notify.ServiceBookingAlert{
		BookingID:    id,
		ServiceName:  contact.ServiceName,
		StudentName:  in.StudentName,
		StudentPhone: in.StudentPhone,
		StudentEmail: in.StudentEmail,
		BookingDate:  in.BookingDate,
		BookingTime:  in.BookingTime,
	}
	link := ""
	if contact.ContactPhone != "" {
		link = notify.WhatsAppLink(contact.ContactPhone, alert.Text())
	}
	if contact.ContactEmail != "" {
		msg, err := notify.ServiceBookingEmail(contact.ContactEmail, alert, link)
		if err != nil {
			utils.LogError(s.RequestID, "marketplace", "render_booking_email", err)
		} else {
			s.notifier().Notify(notify.WithRequestID(ctx, s.RequestID), msg)
		}
	}

	return models.ServiceBooking{
		ID:           id,
		ServiceID:    in.ServiceID,
		ServiceName:  contact.ServiceName,
		StudentName:  in.StudentName,
		StudentEmail: in.StudentEmail,
		StudentPhone: in.StudentPhone,
		BookingDate:  in.BookingDate,
		BookingTime:  in.BookingTime,
		Status:       domain.ServiceBookingBooked,
	}, link, nil
}

func (s MarketplaceService) Orders(ctx context.Context, businessID int64) ([]models.ServiceBooking, error) {
	out, err := s.ServiceBookings.ListForBusiness(ctx, businessID, 0)
	if err != nil {
		return nil, domain.InternalError{Msg: "list orders", Err: err}
	}
	return out, nil
}

// MarkDelivered closes a service booking that belongs to businessID.
func (s MarketplaceService) MarkDelivered(ctx context.Context, businessID, bookingID int64) error {
	owner, err := s.ServiceBookings.OwnerOf(ctx, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: "service booking", Err: err}
	}
	if err != nil {
		return domain.InternalError{Msg: "load service booking", Err: err}
	}
	if owner != businessID {
		return domain.ForbiddenError{Resource: "service booking"}
	}
	if err := s.ServiceBookings.MarkDelivered(ctx, bookingID); err != nil {
		return domain.InternalError{Msg: "mark delivered", Err: err}
	}
	utils.LogEvent(s.RequestID, "marketplace", "mark_delivered", fmt.Sprintf("service_booking_id=%d", bookingID))
	return nil
}

// Notifications returns the latest bookings with a reply link to each student.
func (s MarketplaceService) Notifications(ctx context.Context, businessID int64) ([]models.BusinessNotification, error) {
	rows, err := s.ServiceBookings.ListForBusiness(ctx, businessID, notificationLimit)
	if err != nil {
		return nil, domain.InternalError{Msg: "list notifications", Err: err}
	}
	out := make([]models.BusinessNotification, 0, len(rows))
	for _, sb := range rows {
		out = append(out, models.BusinessNotification{
			ServiceBooking: sb,
			Message:        notify.InboxMessage(sb.ServiceName, sb.StudentName),
			WhatsAppLink:   notify.WhatsAppLink(sb.StudentPhone, notify.ConfirmationText(sb.StudentName, sb.ServiceName)),
		})
	}
	return out, nil
}
