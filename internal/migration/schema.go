package migration

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// UpStatements returns the individual up statements for dbType in version
// order. It is used by tooling that cannot run golang-migrate directly.
func UpStatements(dbType string) ([]string, error) {
	dir, err := migrationsDir(dbType)
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(embeddedMigrations, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var statements []string
	for _, name := range names {
		raw, err := fs.ReadFile(embeddedMigrations, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		for _, stmt := range strings.Split(string(raw), ";") {
			if stmt = strings.TrimSpace(stmt); stmt != "" {
				statements = append(statements, stmt)
			}
		}
	}
	return statements, nil
}
