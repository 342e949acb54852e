package db

import (
	"context"
	"database/sql"
	"fmt"

	"campushub/internal/utils"
)

type tableDDL struct {
	name string
	ddl  string
}

var tables = []tableDDL{
	{"properties", `
CREATE TABLE IF NOT EXISTS properties (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	description TEXT,
	price DECIMAL(12,2) NOT NULL DEFAULT 0,
	location VARCHAR(255),
	distance DECIMAL(8,2) NOT NULL DEFAULT 0,
	images TEXT,
	amenities TEXT,
	available TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_available (available)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	property_id BIGINT NOT NULL,
	student_name VARCHAR(255) NOT NULL,
	student_email VARCHAR(255),
	student_phone VARCHAR(50) NOT NULL,
	payment_method VARCHAR(50),
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_property (property_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"reviews", `
CREATE TABLE IF NOT EXISTS reviews (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	property_id BIGINT NOT NULL,
	student_name VARCHAR(255) NOT NULL,
	rating TINYINT NOT NULL,
	comment TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_property (property_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"businesses", `
CREATE TABLE IF NOT EXISTS businesses (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	description TEXT,
	category VARCHAR(100),
	contact_email VARCHAR(255),
	contact_phone VARCHAR(50),
	location VARCHAR(255),
	logo VARCHAR(255),
	approved TINYINT(1) NOT NULL DEFAULT 0,
	password_hash VARCHAR(255),
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_contact_email (contact_email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"services", `
CREATE TABLE IF NOT EXISTS services (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	business_id BIGINT NOT NULL,
	name VARCHAR(255) NOT NULL,
	description TEXT,
	price DECIMAL(12,2) NOT NULL DEFAULT 0,
	duration VARCHAR(100),
	images TEXT,
	available TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_business (business_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"service_bookings", `
CREATE TABLE IF NOT EXISTS service_bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	service_id BIGINT NOT NULL,
	student_name VARCHAR(255) NOT NULL,
	student_email VARCHAR(255),
	student_phone VARCHAR(50) NOT NULL,
	booking_date VARCHAR(20),
	booking_time VARCHAR(20),
	commission DECIMAL(12,2) NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'booked',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_service (service_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"agents", `
CREATE TABLE IF NOT EXISTS agents (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	name VARCHAR(255) NOT NULL,
	phone VARCHAR(50),
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_agent_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"sessions", `
CREATE TABLE IF NOT EXISTS sessions (
	id CHAR(36) PRIMARY KEY,
	subject_type VARCHAR(20) NOT NULL,
	subject_id BIGINT NOT NULL,
	expires_at DATETIME NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_subject (subject_type, subject_id),
	KEY idx_expires (expires_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"buses", `
CREATE TABLE IF NOT EXISTS buses (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	row_count INT NOT NULL,
	column_count INT NOT NULL,
	walkway_position INT NOT NULL DEFAULT 2,
	agent_id BIGINT NULL,
	seat_layout JSON,
	KEY idx_agent (agent_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"routes", `
CREATE TABLE IF NOT EXISTS routes (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	origin VARCHAR(255) NOT NULL,
	destination VARCHAR(255) NOT NULL,
	price DECIMAL(12,2) NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"trips", `
CREATE TABLE IF NOT EXISTS trips (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	bus_id BIGINT NOT NULL,
	route_id BIGINT NOT NULL,
	departure_date DATE NOT NULL,
	departure_time VARCHAR(10) NOT NULL,
	agent_id BIGINT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'active',
	KEY idx_trip_date (departure_date),
	KEY idx_agent (agent_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	// active_seat is NULL for released bookings, so the unique key only
	// constrains pending/booked rows.
	{"seat_bookings", `
CREATE TABLE IF NOT EXISTS seat_bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	trip_id BIGINT NOT NULL,
	seat_number INT NOT NULL,
	student_name VARCHAR(255) NOT NULL,
	student_phone VARCHAR(50) NOT NULL,
	student_email VARCHAR(255),
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
	booking_fee DECIMAL(12,2) NOT NULL DEFAULT 0,
	ticket_code VARCHAR(64) NOT NULL,
	payment_date DATETIME NULL,
	booked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	active_seat INT AS (CASE WHEN status IN ('pending','booked') THEN seat_number ELSE NULL END) STORED,
	UNIQUE KEY uniq_ticket_code (ticket_code),
	UNIQUE KEY uniq_trip_active_seat (trip_id, active_seat),
	KEY idx_trip_seat (trip_id, seat_number)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

type columnMigration struct {
	table  string
	column string
	ddl    string
}

// Columns added after the first release; older databases get them on startup.
var columnMigrations = []columnMigration{
	{"buses", "agent_id", `ALTER TABLE buses ADD COLUMN agent_id BIGINT NULL`},
	{"buses", "seat_layout", `ALTER TABLE buses ADD COLUMN seat_layout JSON`},
	{"trips", "agent_id", `ALTER TABLE trips ADD COLUMN agent_id BIGINT NULL`},
	{"trips", "status", `ALTER TABLE trips ADD COLUMN status VARCHAR(20) NOT NULL DEFAULT 'active'`},
	{"businesses", "password_hash", `ALTER TABLE businesses ADD COLUMN password_hash VARCHAR(255)`},
	{"service_bookings", "commission", `ALTER TABLE service_bookings ADD COLUMN commission DECIMAL(12,2) NOT NULL DEFAULT 0`},
	{"seat_bookings", "booking_fee", `ALTER TABLE seat_bookings ADD COLUMN booking_fee DECIMAL(12,2) NOT NULL DEFAULT 0`},
	{"seat_bookings", "ticket_code", `ALTER TABLE seat_bookings ADD COLUMN ticket_code VARCHAR(64) NULL`},
	{"seat_bookings", "payment_date", `ALTER TABLE seat_bookings ADD COLUMN payment_date DATETIME NULL`},
	{"seat_bookings", "active_seat", `ALTER TABLE seat_bookings ADD COLUMN active_seat INT AS (CASE WHEN status IN ('pending','booked') THEN seat_number ELSE NULL END) STORED`},
}

type indexMigration struct {
	table string
	index string
	ddl   string
}

// Keys the seat invariant depends on. Legacy ticket codes stay NULL, which a
// unique key allows more than once.
var indexMigrations = []indexMigration{
	{"seat_bookings", "uniq_ticket_code", `ALTER TABLE seat_bookings ADD UNIQUE KEY uniq_ticket_code (ticket_code)`},
	{"seat_bookings", "uniq_trip_active_seat", `ALTER TABLE seat_bookings ADD UNIQUE KEY uniq_trip_active_seat (trip_id, active_seat)`},
}

// Older tables carried UNIQUE(trip_id, seat_number), which keeps a cancelled
// seat from being sold again. It is dropped once uniq_trip_active_seat exists.
const legacySeatUniqueQuery = `
	SELECT index_name
	FROM information_schema.statistics
	WHERE table_schema = DATABASE()
	  AND table_name = 'seat_bookings'
	  AND non_unique = 0
	  AND index_name <> 'PRIMARY'
	GROUP BY index_name
	HAVING GROUP_CONCAT(column_name ORDER BY seq_in_index) = 'trip_id,seat_number'`

// EnsureSchema creates missing tables and columns. Safe to run on every start.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return fmt.Errorf("db not available")
	}
	for _, t := range tables {
		if _, err := conn.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	for _, m := range columnMigrations {
		if HasColumn(ctx, conn, m.table, m.column) {
			continue
		}
		if _, err := conn.ExecContext(ctx, m.ddl); err != nil {
			return fmt.Errorf("add column %s.%s: %w", m.table, m.column, err)
		}
		utils.LogEvent("", "schema", "add_column", m.table+"."+m.column)
	}
	for _, m := range indexMigrations {
		if HasIndex(ctx, conn, m.table, m.index) {
			continue
		}
		if _, err := conn.ExecContext(ctx, m.ddl); err != nil {
			return fmt.Errorf("add index %s.%s: %w", m.table, m.index, err)
		}
		utils.LogEvent("", "schema", "add_index", m.table+"."+m.index)
	}
	return dropLegacySeatUnique(ctx, conn)
}

func dropLegacySeatUnique(ctx context.Context, conn *sql.DB) error {
	rows, err := conn.QueryContext(ctx, legacySeatUniqueQuery)
	if err != nil {
		return fmt.Errorf("inspect seat_bookings keys: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := conn.ExecContext(ctx, "ALTER TABLE seat_bookings DROP INDEX `"+name+"`"); err != nil {
			return fmt.Errorf("drop index seat_bookings.%s: %w", name, err)
		}
		utils.LogEvent("", "schema", "drop_index", "seat_bookings."+name)
	}
	return nil
}
