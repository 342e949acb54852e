package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"campushub/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportHousingBookingsCSV(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.Local)
	mock.ExpectQuery("FROM bookings b").WillReturnRows(sqlmock.NewRows([]string{
		"id", "property_id", "student_name", "student_email", "student_phone", "payment_method", "status", "created_at",
		"title", "price", "location",
	}).AddRow(int64(1), int64(2), "Ann, Jr", "", "0991", "cash", "pending", created, "Hostel A", 120.0, "Chirunga"))

	svc := ReportsService{
		Housing: HousingService{Bookings: repositories.BookingRepository{DB: db}},
		Now:     func() time.Time { return created },
	}
	var buf bytes.Buffer
	name, err := svc.ExportHousingBookings(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, "housing_bookings_20261001.csv", name)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, housingBookingHeader, records[0])
	assert.Equal(t, "Ann, Jr", records[1][5])
	assert.Equal(t, "120.00", records[1][4])
	assert.Equal(t, "2026-10-01 09:00:00", records[1][10])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportSeatBookingsCSV(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM seat_bookings sb").WithArgs(int64(1)).
		WillReturnRows(seatBookingRows(5, 3, "", "pending", "pending", nil))

	svc := ReportsService{
		Seats: SeatBookingService{Bookings: repositories.SeatBookingRepository{DB: db}},
		Now:   func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) },
	}
	var buf bytes.Buffer
	name, err := svc.ExportSeatBookings(context.Background(), 1, &buf)
	require.NoError(t, err)
	assert.Equal(t, "seat_bookings_1_20261015.csv", name)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, seatBookingHeader, records[0])
	assert.Equal(t, "CH-TEST00001", records[1][1])
	assert.Equal(t, "2026-11-02", records[1][5])
	assert.Equal(t, "10.00", records[1][14])
	assert.Equal(t, "", records[1][15])
	require.NoError(t, mock.ExpectationsWereMet())
}
