package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRebind(t *testing.T) {
	query := "SELECT * FROM t WHERE a = ? AND b = ?"

	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", Rebind(DriverPostgres, query))
	assert.Equal(t, query, Rebind(DriverSQLite, query))
}

func TestOpenSQLite(t *testing.T) {
	conn, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "test.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer conn.Close()

	var one int
	require.NoError(t, conn.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestOpenRejectsBadInput(t *testing.T) {
	log := zaptest.NewLogger(t)

	_, err := Open(context.Background(), "mysql", "dsn", log)
	assert.ErrorContains(t, err, "unsupported")

	_, err = Open(context.Background(), DriverSQLite, "", log)
	assert.ErrorContains(t, err, "empty")
}
