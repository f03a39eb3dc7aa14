package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Supported driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DB is the destination datastore. It is opened once per process and passed
// to whoever needs it; Close releases the pool.
type DB struct {
	conn    *sql.DB
	dialect dialect
	table   string
}

// InferDriver guesses the driver from a connection string.
func InferDriver(dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=") {
		return DriverPostgres
	}
	return DriverSQLite
}

// ValidIdentifier reports whether name can be used unescaped as a table name.
func ValidIdentifier(name string) bool {
	return identPattern.MatchString(name)
}

// Open connects to the destination datastore and checks connectivity.
func Open(ctx context.Context, driver, dsn, table string) (*DB, error) {
	if driver == "" {
		driver = InferDriver(dsn)
	}
	var d dialect
	switch driver {
	case DriverPostgres:
		d = postgresDialect
	case DriverSQLite:
		d = sqliteDialect
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
	if !ValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if d == sqliteDialect {
		// SQLite allows a single writer; one connection avoids "database is locked".
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	return &DB{conn: conn, dialect: d, table: table}, nil
}

// Close releases the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Table returns the destination table name.
func (db *DB) Table() string {
	return db.table
}

// Driver returns the database driver name.
func (db *DB) Driver() string {
	return string(db.dialect)
}

func (db *DB) tableExists(ctx context.Context, q queryer, name string) (bool, error) {
	var exists bool
	if err := q.QueryRowContext(ctx, db.dialect.tableExistsSQL(), name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return exists, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
