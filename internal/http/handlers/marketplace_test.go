package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campushub/internal/http/middleware"
	"campushub/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marketplaceEngine(t *testing.T) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	up := storage.NewUploads(t.TempDir(), 0)
	admin := middleware.RequireAdmin("admin-key")
	business := middleware.RequireBusiness(testSessions)

	r.POST("/api/businesses", CreateBusiness(up))
	r.GET("/api/businesses/:id", GetBusiness)
	r.GET("/api/services/:id", GetService)
	r.POST("/api/businesses/:id/approve", admin, ApproveBusiness)
	r.GET("/api/businesses/:id/orders", business, BusinessOrders)
	r.POST("/api/business/order/:id/deliver", business, MarkOrderDelivered)
	r.POST("/api/service-bookings", CreateServiceBooking)
	return r
}

func TestCreateServiceBookingReturnsWhatsAppLink(t *testing.T) {
	mock := useMockDB(t)
	mock.ExpectQuery("SELECT s.name, COALESCE\\(b.contact_email").WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "contact_email", "contact_phone"}).
			AddRow("Haircut", "", "+265 991 000 111"))
	mock.ExpectExec("INSERT INTO service_bookings").WillReturnResult(sqlmock.NewResult(21, 1))

	w := do(marketplaceEngine(t), http.MethodPost, "/api/service-bookings", map[string]any{
		"service_id": 8, "student_name": "Ann", "student_phone": "0991",
		"booking_date": "2026-11-02", "booking_time": "10:00",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := jsonBody(t, w)
	assert.Equal(t, float64(21), body["id"])
	assert.Equal(t, "booked", body["status"])
	assert.True(t, strings.HasPrefix(body["whatsapp_link"].(string), "https://wa.me/265991000111?text="))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingBusinessIsHiddenFromPublicRoutes(t *testing.T) {
	mock := useMockDB(t)
	mock.ExpectQuery("WHERE b.id = \\? AND b.approved = 1").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("WHERE s.id = \\? AND b.approved = 1").WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("AND s.available = 1 AND b.approved = 1").WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "contact_email", "contact_phone"}))

	e := marketplaceEngine(t)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/api/businesses/7", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/api/services/8", nil, nil).Code)
	w := do(e, http.MethodPost, "/api/service-bookings", map[string]any{
		"service_id": 8, "student_name": "Ann", "student_phone": "0991",
		"booking_date": "2026-11-02", "booking_time": "10:00",
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateServiceBookingMissingFieldsIs400(t *testing.T) {
	useMockDB(t)
	w := do(marketplaceEngine(t), http.MethodPost, "/api/service-bookings",
		map[string]any{"service_id": 8}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApproveBusinessNeedsAdminKey(t *testing.T) {
	useMockDB(t)
	e := marketplaceEngine(t)
	w := do(e, http.MethodPost, "/api/businesses/3/approve", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(e, http.MethodPost, "/api/businesses/3/approve", nil, map[string]string{middleware.AdminKeyHeader: "wrong"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestApproveBusinessTwiceSucceeds(t *testing.T) {
	mock := useMockDB(t)
	mock.ExpectQuery("SELECT approved FROM businesses").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"approved"}).AddRow(true))

	w := do(marketplaceEngine(t), http.MethodPost, "/api/businesses/3/approve", nil,
		map[string]string{middleware.AdminKeyHeader: "admin-key"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "business already approved", jsonBody(t, w)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessOrdersOfAnotherBusinessIs403(t *testing.T) {
	mock := useMockDB(t)
	w := do(marketplaceEngine(t), http.MethodGet, "/api/businesses/4/orders", nil, bearer("business-3"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessOrdersRejectsAgentSession(t *testing.T) {
	useMockDB(t)
	w := do(marketplaceEngine(t), http.MethodGet, "/api/businesses/3/orders", nil, bearer("agent-1"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMarkOrderDeliveredOwnOrder(t *testing.T) {
	mock := useMockDB(t)
	mock.ExpectQuery("SELECT s.business_id").WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"business_id"}).AddRow(int64(3)))
	mock.ExpectExec("UPDATE service_bookings SET status").WithArgs("delivered", int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := do(marketplaceEngine(t), http.MethodPost, "/api/business/order/21/deliver", nil, bearer("business-3"))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "delivered", jsonBody(t, w)["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBusinessRequiresLogo(t *testing.T) {
	useMockDB(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Campus Cuts"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/businesses", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	marketplaceEngine(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "logo is required", jsonBody(t, w)["error"])
}
