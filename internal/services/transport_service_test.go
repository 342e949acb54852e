package services

import (
	"context"
	"encoding/json"
	"testing"

	"campushub/internal/domain"
	"campushub/internal/domain/models"
	"campushub/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var busCols = []string{"id", "name", "row_count", "column_count", "walkway_position", "agent_id", "seat_layout"}

func newTransportService(t *testing.T) (TransportService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return TransportService{
		Buses:  repositories.BusRepository{DB: db},
		Routes: repositories.RouteRepository{DB: db},
		Trips:  repositories.TripRepository{DB: db},
	}, mock
}

func TestCreateBusStoresGeneratedLayout(t *testing.T) {
	svc, mock := newTransportService(t)
	layout := domain.GenerateSeatLayout(3, 4, 2)
	raw, err := json.Marshal(layout)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO buses").WithArgs("Campus Express", 3, 4, 2, int64(1), string(raw)).
		WillReturnResult(sqlmock.NewResult(6, 1))

	bus, err := svc.CreateBus(context.Background(), 1, models.BusInput{Name: "Campus Express", RowCount: 3, ColumnCount: 4, WalkwayPosition: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(6), bus.ID)
	assert.Equal(t, 12, bus.Layout.SeatCount())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBusValidatesGeometry(t *testing.T) {
	svc, _ := newTransportService(t)
	for _, in := range []models.BusInput{
		{Name: "", RowCount: 1, ColumnCount: 1},
		{Name: "A", RowCount: 0, ColumnCount: 4},
		{Name: "A", RowCount: 3, ColumnCount: 0},
		{Name: "A", RowCount: 3, ColumnCount: 4, WalkwayPosition: -1},
	} {
		_, err := svc.CreateBus(context.Background(), 1, in)
		assert.True(t, domain.IsValidation(err), "%+v", in)
	}
}

func TestUpdateBusOwnedByAnotherAgent(t *testing.T) {
	svc, mock := newTransportService(t)
	mock.ExpectQuery("FROM buses WHERE id").WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows(busCols).AddRow(int64(6), "Campus Express", 3, 4, 2, int64(2), ""))

	_, err := svc.UpdateBus(context.Background(), 1, 6, models.BusInput{Name: "X", RowCount: 2, ColumnCount: 2})
	assert.True(t, domain.IsForbidden(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBusGeometryWithTripsIsConflict(t *testing.T) {
	svc, mock := newTransportService(t)
	mock.ExpectQuery("FROM buses WHERE id").WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows(busCols).AddRow(int64(6), "Campus Express", 3, 4, 2, int64(1), ""))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM trips WHERE bus_id").WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	_, err := svc.UpdateBus(context.Background(), 1, 6, models.BusInput{Name: "Campus Express", RowCount: 2, ColumnCount: 2})
	assert.True(t, domain.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBusRenameWithTripsKeepsGeometry(t *testing.T) {
	svc, mock := newTransportService(t)
	mock.ExpectQuery("FROM buses WHERE id").WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows(busCols).AddRow(int64(6), "Campus Express", 3, 4, 2, int64(1), ""))
	mock.ExpectExec("UPDATE buses").
		WithArgs("Night Express", 3, 4, 1, sqlmock.AnyArg(), int64(6), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	b, err := svc.UpdateBus(context.Background(), 1, 6, models.BusInput{Name: "Night Express", RowCount: 3, ColumnCount: 4, WalkwayPosition: 1})
	require.NoError(t, err)
	assert.Equal(t, 12, b.Layout.SeatCount())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBusWithTripsIsConflict(t *testing.T) {
	svc, mock := newTransportService(t)
	mock.ExpectQuery("FROM buses WHERE id").WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows(busCols).AddRow(int64(6), "Campus Express", 3, 4, 2, int64(1), ""))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM trips").WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))

	err := svc.DeleteBus(context.Background(), 1, 6)
	assert.True(t, domain.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBusLayoutRebuiltForLegacyRows(t *testing.T) {
	svc, mock := newTransportService(t)
	mock.ExpectQuery("FROM buses WHERE id").WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows(busCols).AddRow(int64(6), "Old Bus", 2, 3, 1, nil, ""))

	bus, err := svc.BusLayout(context.Background(), 6)
	require.NoError(t, err)
	assert.Nil(t, bus.AgentID)
	assert.Equal(t, 6, bus.Layout.SeatCount())
	assert.Len(t, bus.Layout.Rows[0], 4)
}

func TestCreateTripRequiresOwnedBus(t *testing.T) {
	svc, mock := newTransportService(t)
	mock.ExpectQuery("FROM buses WHERE id").WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows(busCols).AddRow(int64(6), "Campus Express", 3, 4, 2, int64(2), ""))

	_, err := svc.CreateTrip(context.Background(), 1, models.TripInput{BusID: 6, RouteID: 4, DepartureDate: "2026-11-02", DepartureTime: "08:30"})
	assert.True(t, domain.IsForbidden(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTripValidatesDateAndTime(t *testing.T) {
	svc, _ := newTransportService(t)
	_, err := svc.CreateTrip(context.Background(), 1, models.TripInput{BusID: 6, RouteID: 4, DepartureDate: "02/11/2026", DepartureTime: "08:30"})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.CreateTrip(context.Background(), 1, models.TripInput{BusID: 6, RouteID: 4, DepartureDate: "2026-11-02", DepartureTime: "8.30am"})
	assert.True(t, domain.IsValidation(err))
}

func TestCreateTrip(t *testing.T) {
	svc, mock := newTransportService(t)
	mock.ExpectQuery("FROM buses WHERE id").WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows(busCols).AddRow(int64(6), "Campus Express", 3, 4, 2, int64(1), ""))
	mock.ExpectQuery("FROM routes WHERE id").WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "origin", "destination", "price"}).AddRow(int64(4), "Zomba", "Blantyre", 50.0))
	mock.ExpectExec("INSERT INTO trips").WithArgs(int64(6), int64(4), "2026-11-02", "08:30", int64(1), "active").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("FROM trips t").WithArgs(int64(7)).WillReturnRows(tripRows(7, 1, "active"))

	trip, err := svc.CreateTrip(context.Background(), 1, models.TripInput{BusID: 6, RouteID: 4, DepartureDate: "2026-11-02", DepartureTime: "08:30"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), trip.ID)
	assert.Equal(t, "Campus Express", trip.BusName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTripStatus(t *testing.T) {
	svc, mock := newTransportService(t)

	_, err := svc.UpdateTripStatus(context.Background(), 1, 7, "paused")
	assert.True(t, domain.IsValidation(err))

	mock.ExpectQuery("FROM trips t").WithArgs(int64(7)).WillReturnRows(tripRows(7, 2, "active"))
	_, err = svc.UpdateTripStatus(context.Background(), 1, 7, "inactive")
	assert.True(t, domain.IsForbidden(err))

	mock.ExpectQuery("FROM trips t").WithArgs(int64(7)).WillReturnRows(tripRows(7, 1, "active"))
	mock.ExpectExec("UPDATE trips SET status").WithArgs("inactive", int64(7), int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	trip, err := svc.UpdateTripStatus(context.Background(), 1, 7, "Inactive")
	require.NoError(t, err)
	assert.Equal(t, domain.TripInactive, trip.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRouteValidation(t *testing.T) {
	svc, mock := newTransportService(t)

	_, err := svc.CreateRoute(context.Background(), models.RouteInput{Origin: "Zomba", Destination: "zomba", Price: 10})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.CreateRoute(context.Background(), models.RouteInput{Origin: "Zomba", Destination: "Blantyre", Price: -1})
	assert.True(t, domain.IsValidation(err))

	mock.ExpectExec("INSERT INTO routes").WithArgs("Zomba", "Blantyre", 50.0).WillReturnResult(sqlmock.NewResult(4, 1))
	r, err := svc.CreateRoute(context.Background(), models.RouteInput{Origin: " Zomba ", Destination: "Blantyre", Price: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(4), r.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
