package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDuplicateKey(t *testing.T) {
	seat := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '7-3' for key 'seat_bookings.uniq_trip_active_seat'"}

	assert.True(t, IsDuplicateKey(seat, "uniq_trip_active_seat"))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", seat), ""))
	assert.False(t, IsDuplicateKey(seat, "uniq_ticket_code"))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1452, Message: "foreign key"}, ""))
	assert.False(t, IsDuplicateKey(errors.New("Duplicate entry"), ""))
}

func TestNullIfEmptyAndSplitList(t *testing.T) {
	assert.Nil(t, NullIfEmpty("  "))
	assert.Equal(t, "a@b.c", NullIfEmpty("a@b.c"))
	assert.Equal(t, []string{"a.png", "b.png"}, SplitList(" a.png, ,b.png,"))
	assert.Empty(t, SplitList(""))
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE trips").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, WithTx(context.Background(), conn, func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE trips SET status = 'inactive'")
		return err
	}))

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()
	err = WithTx(context.Background(), conn, func(tx *sql.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaAddsMissingColumnsOnly(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	for range tables {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	for i, m := range columnMigrations {
		q := mock.ExpectQuery("FROM information_schema.columns").WithArgs(m.table, m.column)
		if i == 0 {
			q.WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
			mock.ExpectExec("ALTER TABLE buses ADD COLUMN agent_id").WillReturnResult(sqlmock.NewResult(0, 0))
			continue
		}
		q.WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow(m.column))
	}
	for _, m := range indexMigrations {
		mock.ExpectQuery("FROM information_schema.statistics").WithArgs(m.table, m.index).
			WillReturnRows(sqlmock.NewRows([]string{"index_name"}).AddRow(m.index))
	}
	mock.ExpectQuery("GROUP_CONCAT").WillReturnRows(sqlmock.NewRows([]string{"index_name"}))

	require.NoError(t, EnsureSchema(context.Background(), conn))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaUpgradesLegacySeatBookings(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	for range tables {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	for _, m := range columnMigrations {
		q := mock.ExpectQuery("FROM information_schema.columns").WithArgs(m.table, m.column)
		if m.table == "seat_bookings" && m.column != "booking_fee" {
			q.WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
			mock.ExpectExec("ALTER TABLE seat_bookings ADD COLUMN " + m.column).WillReturnResult(sqlmock.NewResult(0, 0))
			continue
		}
		q.WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow(m.column))
	}
	mock.ExpectQuery("FROM information_schema.statistics").WithArgs("seat_bookings", "uniq_ticket_code").
		WillReturnRows(sqlmock.NewRows([]string{"index_name"}))
	mock.ExpectExec("ADD UNIQUE KEY uniq_ticket_code").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM information_schema.statistics").WithArgs("seat_bookings", "uniq_trip_active_seat").
		WillReturnRows(sqlmock.NewRows([]string{"index_name"}))
	mock.ExpectExec("ADD UNIQUE KEY uniq_trip_active_seat \\(trip_id, active_seat\\)").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("GROUP_CONCAT").WillReturnRows(sqlmock.NewRows([]string{"index_name"}).AddRow("trip_id"))
	mock.ExpectExec("ALTER TABLE seat_bookings DROP INDEX `trip_id`").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), conn))
	require.NoError(t, mock.ExpectationsWereMet())
}
