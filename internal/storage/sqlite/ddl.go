package sqlite

import (
	"context"
	"fmt"

	"elt/internal/ddl"
	"elt/internal/schema"
	"elt/internal/storage"
)

// Dialect renders SQLite DDL. Booleans are stored as 0/1 integers and
// timestamps as ISO-8601 text, the SQLite conventions.
var Dialect = ddl.Dialect{Quote: ddl.DoubleQuote, Type: MapType}

// MapType maps a logical column type to a SQLite type affinity.
func MapType(t schema.Type) string {
	switch t {
	case schema.Int, schema.Bool:
		return "INTEGER"
	case schema.Float:
		return "REAL"
	case schema.Decimal:
		return "NUMERIC"
	default:
		return "TEXT"
	}
}

// Recreate drops and creates the table for t.
func Recreate(ctx context.Context, repo storage.Repository, schemaName string, t schema.Table) error {
	fqn := FQN(schemaName, t.Name)
	drop, err := ddl.BuildDropTableSQL(fqn, Dialect)
	if err != nil {
		return err
	}
	create, err := ddl.BuildCreateTableSQL(ddl.FromTable(t, fqn, Dialect), Dialect)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, drop); err != nil {
		return fmt.Errorf("drop %s: %w", fqn, err)
	}
	if err := repo.Exec(ctx, create); err != nil {
		return fmt.Errorf("create %s: %w", fqn, err)
	}
	return nil
}

// PromoteStatements drops target and renames staging into its place.
func PromoteStatements(schemaName, staging, target string) ([]string, error) {
	drop, err := ddl.BuildDropTableSQL(FQN(schemaName, target), Dialect)
	if err != nil {
		return nil, err
	}
	rename, err := ddl.BuildRenameTableSQL(FQN(schemaName, staging), FQN(schemaName, target), Dialect)
	if err != nil {
		return nil, err
	}
	return []string{drop, rename}, nil
}

// Discard drops table if it exists.
func Discard(ctx context.Context, repo storage.Repository, schemaName, table string) error {
	drop, err := ddl.BuildDropTableSQL(FQN(schemaName, table), Dialect)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, drop)
}

// Promote replaces target with the loaded staging table.
func Promote(ctx context.Context, repo storage.Repository, schemaName, staging, target string) error {
	stmts, err := PromoteStatements(schemaName, staging, target)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if err := repo.Exec(ctx, s); err != nil {
			return fmt.Errorf("promote %s: %w", FQN(schemaName, target), err)
		}
	}
	return nil
}
