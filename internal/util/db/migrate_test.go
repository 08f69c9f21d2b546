package db_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-batchpay/internal/util"
	"github/chapool/go-batchpay/internal/util/db"
)

func TestMigrationsAreParsable(t *testing.T) {
	source := db.Migrations(filepath.Join(util.GetProjectRootDir(), "migrations"))

	migrations, err := source.FindMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for _, m := range migrations {
		assert.NotEmpty(t, m.Up, "migration %s has no up statements", m.Id)
		assert.NotEmpty(t, m.Down, "migration %s has no down statements", m.Id)
	}
}
