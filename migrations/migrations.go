// Package migrations embeds the Postgres schema and seed scripts.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed *.sql
var files embed.FS

// Schema and Seed name the scripts applied by "migrate up" and "migrate seed".
const (
	Schema = "001_schema.sql"
	Seed   = "002_seed.sql"
)

// Tables lists the managed tables, children first so they can be dropped in order.
var Tables = []string{"last_metro", "headways", "stations"}

// Read returns the contents of the named script.
func Read(name string) (string, error) {
	b, err := fs.ReadFile(files, name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// List returns every embedded script name in apply order.
func List() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
