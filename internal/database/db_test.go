package database

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg, err := mysql.ParseDSN(DSN("gym", "pw", "db", "3306", "gym"))
	require.NoError(t, err)
	assert.Equal(t, "gym", cfg.User)
	assert.Equal(t, "pw", cfg.Passwd)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.Equal(t, "gym", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.True(t, cfg.MultiStatements)
	assert.Equal(t, time.UTC, cfg.Loc)
	assert.Equal(t, "utf8mb4_unicode_ci", cfg.Collation)

	assert.True(t, strings.HasPrefix(DSN("root", "", "db", "3306", "gym"), "root@tcp("))
}

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	assert.Equal(t, ups, downs)
}

func TestSchemaGuardsIdempotency(t *testing.T) {
	b, err := fs.ReadFile(migrationFiles, "migrations/000002_ledger.up.sql")
	require.NoError(t, err)
	sql := string(b)
	assert.Contains(t, sql, "UNIQUE KEY uq_payments_gateway_order (gateway_order_id)")
	assert.Contains(t, sql, "UNIQUE KEY uq_customer_packages_payment (payment_id)")
}
