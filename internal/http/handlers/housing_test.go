package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"campushub/internal/http/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func housingEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	admin := middleware.RequireAdmin("admin-key")
	r.GET("/api/bookings/export", admin, ExportBookings)
	r.POST("/api/bookings/:id/confirm", admin, ConfirmBooking)
	r.POST("/api/reviews", CreateReview)
	return r
}

var adminHeader = map[string]string{middleware.AdminKeyHeader: "admin-key"}

func TestExportBookingsIsCSVAttachment(t *testing.T) {
	mock := useMockDB(t)
	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.Local)
	mock.ExpectQuery("FROM bookings b").WillReturnRows(sqlmock.NewRows([]string{
		"id", "property_id", "student_name", "student_email", "student_phone", "payment_method", "status", "created_at",
		"title", "price", "location",
	}).AddRow(int64(1), int64(2), "Ann", "", "0991", "cash", "pending", created, "Hostel A", 120.0, "Chirunga"))

	w := do(housingEngine(), http.MethodGet, "/api/bookings/export", nil, adminHeader)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="housing_bookings_`)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "booking_id,property_id"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmBookingOfTakenPropertyIs409(t *testing.T) {
	mock := useMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings").WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"property_id", "status"}).AddRow(int64(2), "pending"))
	mock.ExpectQuery("FROM properties").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(false))
	mock.ExpectRollback()

	w := do(housingEngine(), http.MethodPost, "/api/bookings/4/confirm", nil, adminHeader)

	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReviewRatingOutOfRangeIs400(t *testing.T) {
	useMockDB(t)
	w := do(housingEngine(), http.MethodPost, "/api/reviews",
		map[string]any{"property_id": 2, "student_name": "Ann", "rating": 6}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
