package repositories

import (
	"embed"
	"fmt"
	"path"
	"sort"
)

//go:embed migrations
var migrationsFS embed.FS

// readMigrations returns the migration scripts for dialect in file name order.
func readMigrations(dialect string) ([]string, error) {
	dir := path.Join("migrations", dialect)
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	scripts := make([]string, 0, len(names))
	for _, name := range names {
		b, err := migrationsFS.ReadFile(path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", name, err)
		}
		scripts = append(scripts, string(b))
	}
	return scripts, nil
}
