package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/samirrijal/derniermetro/migrations"
)

// Apply executes the named embedded migration script.
func (db *DB) Apply(ctx context.Context, name string) error {
	sql, err := migrations.Read(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if _, err := db.Pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("exec %s: %w", name, err)
	}
	return nil
}

// TableStatus reports, for every managed table, whether it exists.
func (db *DB) TableStatus(ctx context.Context) (map[string]bool, error) {
	out := make(map[string]bool, len(migrations.Tables))
	for _, table := range migrations.Tables {
		var exists bool
		err := db.Pool.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = current_schema() AND table_name = $1
			)
		`, table).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check table %s: %w", table, err)
		}
		out[table] = exists
	}
	return out, nil
}

// Reset drops every managed table.
func (db *DB) Reset(ctx context.Context) error {
	stmt := "DROP TABLE IF EXISTS " + strings.Join(migrations.Tables, ", ") + " CASCADE"
	if _, err := db.Pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}
