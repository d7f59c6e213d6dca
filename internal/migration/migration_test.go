package migration

import (
	"io/fs"
	"testing"

	"github.com/smallbiznis/counterreport/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	files, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	ups, downs := 0, 0
	for _, f := range files {
		switch {
		case len(f) > 7 && f[len(f)-7:] == ".up.sql":
			ups++
		case len(f) > 9 && f[len(f)-9:] == ".down.sql":
			downs++
		}
	}
	assert.Equal(t, ups, downs)
	assert.Equal(t, 3, ups)
}

func TestApplyUsesAutoMigrateOnSQLite(t *testing.T) {
	conn := db.NewTest(t)
	require.NoError(t, Apply(conn))

	for _, table := range []string{"counter_events", "institutions", "catalog_titles"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}
