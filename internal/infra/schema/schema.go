// Package schema carries the Postgres DDL for the lab and consultation tables.
package schema

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Migration is one embedded DDL file.
type Migration struct {
	Name string
	SQL  string
}

// Migrations returns the embedded files sorted by name.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	out := make([]Migration, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		data, err := migrations.ReadFile("migrations/" + e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Name: e.Name(), SQL: string(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Apply runs every migration in order. Statements are idempotent so Apply may run on each start.
func Apply(ctx context.Context, db Execer, logger *slog.Logger) error {
	list, err := Migrations()
	if err != nil {
		return err
	}
	for _, m := range list {
		if _, err := db.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply %s: %w", m.Name, err)
		}
		if logger != nil {
			logger.Info("schema migration applied", "component", "schema", "name", m.Name)
		}
	}
	return nil
}
