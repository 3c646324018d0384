package migration

import (
	"database/sql"
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryDialectHasPairedMigrations(t *testing.T) {
	var reference []string

	for _, dbType := range []string{"postgres", "mysql", "sqlite"} {
		dir, err := migrationsDir(dbType)
		require.NoError(t, err)

		entries, err := fs.ReadDir(embeddedMigrations, dir)
		require.NoError(t, err)

		ups := map[string]bool{}
		downs := map[string]bool{}
		for _, entry := range entries {
			name := entry.Name()
			switch {
			case strings.HasSuffix(name, ".up.sql"):
				ups[strings.TrimSuffix(name, ".up.sql")] = true
			case strings.HasSuffix(name, ".down.sql"):
				downs[strings.TrimSuffix(name, ".down.sql")] = true
			}
		}

		versions := make([]string, 0, len(ups))
		for version := range ups {
			assert.True(t, downs[version], "%s: %s has no down migration", dbType, version)
			versions = append(versions, version)
		}
		sort.Strings(versions)
		assert.Len(t, downs, len(ups), dbType)

		if reference == nil {
			reference = versions
			continue
		}
		assert.Equal(t, reference, versions, "%s migrations drift from postgres", dbType)
	}
}

func TestRunMigrationsRejectsUnknownType(t *testing.T) {
	err := RunMigrations(&sql.DB{}, "oracle")
	require.Error(t, err)

	err = RunMigrations(nil, "postgres")
	require.Error(t, err)
}
