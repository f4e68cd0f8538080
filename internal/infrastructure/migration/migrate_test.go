package migration

import (
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebooks/backend/migrations"
)

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs, "every up migration needs a matching down migration")

	names := make([]string, 0, len(ups))
	for name := range ups {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.True(t, strings.HasPrefix(names[0], "000001_"))
	assert.Contains(t, names, "000002_create_ledger_transactions")
}

func TestEmbeddedMigrations_CreateLedgerTables(t *testing.T) {
	up, err := fs.ReadFile(migrations.FS, "000002_create_ledger_transactions.up.sql")
	require.NoError(t, err)

	sql := string(up)
	assert.Contains(t, sql, "REFERENCES parties (id)")
	assert.Contains(t, sql, "chk_ledger_tx_one_side")
}
