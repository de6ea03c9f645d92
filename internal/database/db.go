package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported driver names.  DriverSQLite is the default; it keeps the
// whole store in process memory, which is how the assistant normally
// runs.  DriverMySQL points at an external server for deployments that
// want the bookings to survive restarts.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// OpenSQLite opens an in-memory SQLite database.  A shared cache plus a
// single connection keeps every statement on the same in-memory store;
// without both, each pooled connection would see its own empty database.
func OpenSQLite() (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := ping(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenMySQL connects to MySQL and verifies the connection.  Timestamps
// are written and read as "2006-01-02 15:04:05" strings so both
// drivers scan identically; parseTime is therefore deliberately off.
func OpenMySQL(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&loc=UTC", auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := ping(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
