package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Open opens and pings a database connection for the given driver
func Open(ctx context.Context, driver, dsn string, log *zap.Logger) (*sql.DB, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("database connection string is empty")
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Test the connection
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("✓ Database connection established", zap.String("driver", driver))
	return conn, nil
}

// Rebind rewrites ? placeholders into the driver's positional syntax.
// Queries are written with ?, pgx needs $1, $2, ...
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
