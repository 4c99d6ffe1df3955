package store

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

// postgresMigrations holds the Postgres schema, applied in lexical order.
//
//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

// migrationFiles returns the .sql files under dir of fsys sorted by name.
func migrationFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, dir+"/"+e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
