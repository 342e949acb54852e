package services

import (
	"context"
	"database/sql/driver"
	"strings"
	"testing"
	"time"

	"campushub/internal/domain"
	"campushub/internal/domain/models"
	"campushub/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newMarketplaceService(t *testing.T) (MarketplaceService, sqlmock.Sqlmock, *recordingNotifier) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	n := &recordingNotifier{}
	return MarketplaceService{
		Businesses:      repositories.BusinessRepository{DB: db},
		Services:        repositories.ServiceRepository{DB: db},
		ServiceBookings: repositories.ServiceBookingRepository{DB: db},
		Notifier:        n,
	}, mock, n
}

func TestApproveBusinessIsIdempotent(t *testing.T) {
	svc, mock, _ := newMarketplaceService(t)

	mock.ExpectQuery("SELECT approved FROM businesses").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"approved"}).AddRow(false))
	mock.ExpectExec("UPDATE businesses SET approved = 1").WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT approved FROM businesses").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"approved"}).AddRow(true))

	already, err := svc.ApproveBusiness(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, already)

	already, err = svc.ApproveBusiness(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, already)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveMissingBusiness(t *testing.T) {
	svc, mock, _ := newMarketplaceService(t)
	mock.ExpectQuery("SELECT approved FROM businesses").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"approved"}))

	_, err := svc.ApproveBusiness(context.Background(), 3)
	assert.True(t, domain.IsNotFound(err))
}

func TestCreateBusinessHashesPassword(t *testing.T) {
	svc, mock, _ := newMarketplaceService(t)

	var stored string
	mock.ExpectExec("INSERT INTO businesses").
		WithArgs("Print Hub", nil, "printing", "hub@example.com", nil, nil, "logo.png", hashCapture{&stored}).
		WillReturnResult(sqlmock.NewResult(5, 1))

	b, err := svc.CreateBusiness(context.Background(), models.BusinessInput{
		Name: "Print Hub", Category: "printing", ContactEmail: "hub@example.com", Logo: "logo.png", Password: "s3cret",
	})
	require.NoError(t, err)
	assert.False(t, b.Approved)
	assert.NotEqual(t, "s3cret", stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("s3cret")))
	require.NoError(t, mock.ExpectationsWereMet())
}

// hashCapture matches any string argument and keeps it.
type hashCapture struct{ dst *string }

func (h hashCapture) Match(v driver.Value) bool {
	s, ok := v.(string)
	if ok {
		*h.dst = s
	}
	return ok
}

func TestCreateBusinessRequiresLogo(t *testing.T) {
	svc, _, _ := newMarketplaceService(t)
	_, err := svc.CreateBusiness(context.Background(), models.BusinessInput{Name: "Print Hub"})
	var ve domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "logo", ve.Field)
}

func TestDeleteBusinessRemovesServicesInOneTransaction(t *testing.T) {
	svc, mock, _ := newMarketplaceService(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM services WHERE business_id").WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM businesses WHERE id").WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.DeleteBusiness(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateServiceImageBounds(t *testing.T) {
	svc, _, _ := newMarketplaceService(t)

	_, err := svc.CreateService(context.Background(), models.ServiceInput{BusinessID: 1, Name: "Binding"})
	assert.True(t, domain.IsValidation(err))

	images := make([]string, MaxServiceImages+1)
	for i := range images {
		images[i] = "x.png"
	}
	_, err = svc.CreateService(context.Background(), models.ServiceInput{BusinessID: 1, Name: "Binding", Images: images})
	assert.True(t, domain.IsValidation(err))
}

func TestBookServiceQueuesEmailAndReturnsLink(t *testing.T) {
	svc, mock, n := newMarketplaceService(t)

	mock.ExpectQuery("SELECT s.name, COALESCE\\(b.contact_email").WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "contact_email", "contact_phone"}).
			AddRow("Haircut", "salon@example.com", "+265 991 000 111"))
	mock.ExpectExec("INSERT INTO service_bookings").
		WithArgs(int64(8), "Ann <b>", nil, "0991", "2026-11-02", "10:00", "booked").
		WillReturnResult(sqlmock.NewResult(21, 1))

	sb, link, err := svc.BookService(context.Background(), models.ServiceBookingInput{
		ServiceID: 8, StudentName: "Ann <b>", StudentPhone: "0991", BookingDate: "2026-11-02", BookingTime: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(21), sb.ID)
	assert.Equal(t, domain.ServiceBookingBooked, sb.Status)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/265991000111?text="), link)
	assert.NotContains(t, link, "+")

	sent := n.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "salon@example.com", sent[0].To)
	assert.Equal(t, "New Booking: Haircut", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "Ann &lt;b&gt;")
	assert.Contains(t, sent[0].HTML, "#21")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookServiceWithoutEmailSkipsNotification(t *testing.T) {
	svc, mock, n := newMarketplaceService(t)

	mock.ExpectQuery("SELECT s.name, COALESCE\\(b.contact_email").WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "contact_email", "contact_phone"}).AddRow("Haircut", "", ""))
	mock.ExpectExec("INSERT INTO service_bookings").WillReturnResult(sqlmock.NewResult(22, 1))

	_, link, err := svc.BookService(context.Background(), models.ServiceBookingInput{
		ServiceID: 8, StudentName: "Ann", StudentPhone: "0991", BookingDate: "2026-11-02", BookingTime: "10:00",
	})
	require.NoError(t, err)
	assert.Empty(t, link)
	assert.Empty(t, n.sent())
}

func TestBookUnknownService(t *testing.T) {
	svc, mock, _ := newMarketplaceService(t)
	mock.ExpectQuery("SELECT s.name, COALESCE\\(b.contact_email").WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "contact_email", "contact_phone"}))

	_, _, err := svc.BookService(context.Background(), models.ServiceBookingInput{
		ServiceID: 8, StudentName: "Ann", StudentPhone: "0991", BookingDate: "2026-11-02", BookingTime: "10:00",
	})
	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPendingBusinessIsNotFound(t *testing.T) {
	svc, mock, _ := newMarketplaceService(t)
	mock.ExpectQuery("FROM businesses b WHERE b.id = \\? AND b.approved = 1").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, services, err := svc.GetBusiness(context.Background(), 7)
	assert.True(t, domain.IsNotFound(err))
	assert.Nil(t, services)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPendingBusinessServiceIsNotFound(t *testing.T) {
	svc, mock, _ := newMarketplaceService(t)
	mock.ExpectQuery("WHERE s.id = \\? AND b.approved = 1").WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.GetService(context.Background(), 8)
	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookServiceOfPendingBusinessIsRejected(t *testing.T) {
	svc, mock, n := newMarketplaceService(t)
	mock.ExpectQuery("WHERE s.id = \\? AND s.available = 1 AND b.approved = 1").WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "contact_email", "contact_phone"}))

	_, _, err := svc.BookService(context.Background(), models.ServiceBookingInput{
		ServiceID: 8, StudentName: "Ann", StudentPhone: "0991", BookingDate: "2026-11-02", BookingTime: "10:00",
	})
	assert.True(t, domain.IsNotFound(err))
	assert.Empty(t, n.sent())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkDeliveredChecksOwnership(t *testing.T) {
	svc, mock, _ := newMarketplaceService(t)

	mock.ExpectQuery("SELECT s.business_id").WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"business_id"}).AddRow(int64(4)))

	err := svc.MarkDelivered(context.Background(), 3, 21)
	assert.True(t, domain.IsForbidden(err))

	mock.ExpectQuery("SELECT s.business_id").WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"business_id"}).AddRow(int64(3)))
	mock.ExpectExec("UPDATE service_bookings SET status").WithArgs("delivered", int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.MarkDelivered(context.Background(), 3, 21))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationsCarryReplyLinks(t *testing.T) {
	svc, mock, _ := newMarketplaceService(t)

	cols := []string{"id", "service_id", "name", "student_name", "student_email", "student_phone",
		"booking_date", "booking_time", "commission", "status", "created_at"}
	mock.ExpectQuery("FROM service_bookings sb").WithArgs(int64(3), notificationLimit).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(21), int64(8), "Haircut", "Ann", "", "0991 234", "2026-11-02", "10:00", 0.0, "booked", time.Now()))

	out, err := svc.Notifications(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "New booking for Haircut from Ann", out[0].Message)
	assert.Equal(t, "https://wa.me/0991234?text=Hello%20Ann%2C%20your%20booking%20for%20Haircut%20is%20confirmed%21", out[0].WhatsAppLink)
	require.NoError(t, mock.ExpectationsWereMet())
}
