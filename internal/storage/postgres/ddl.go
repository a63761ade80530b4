package postgres

import (
	"context"
	"fmt"

	"elt/internal/ddl"
	"elt/internal/schema"
	"elt/internal/storage"
)

// Dialect renders Postgres DDL with double-quoted identifiers.
var Dialect = ddl.Dialect{Quote: ddl.DoubleQuote, Type: MapType}

// MapType maps a logical column type to a Postgres type.
func MapType(t schema.Type) string {
	switch t {
	case schema.Int:
		return "BIGINT"
	case schema.Float:
		return "DOUBLE PRECISION"
	case schema.Decimal:
		return "NUMERIC(14,2)"
	case schema.Bool:
		return "BOOLEAN"
	case schema.Timestamp:
		return "TIMESTAMPTZ"
	case schema.Date:
		return "DATE"
	default:
		return "TEXT"
	}
}

// Statements returns the DDL that recreates t: an optional CREATE SCHEMA,
// then DROP and CREATE TABLE.
func Statements(schemaName string, t schema.Table) ([]string, error) {
	fqn := FQN(schemaName, t.Name)
	drop, err := ddl.BuildDropTableSQL(fqn, Dialect)
	if err != nil {
		return nil, err
	}
	create, err := ddl.BuildCreateTableSQL(ddl.FromTable(t, fqn, Dialect), Dialect)
	if err != nil {
		return nil, err
	}
	var stmts []string
	if schemaName != "" {
		stmts = append(stmts, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", ddl.DoubleQuote(schemaName)))
	}
	return append(stmts, drop, create), nil
}

// Recreate drops and creates the table for t, creating its schema first.
func Recreate(ctx context.Context, repo storage.Repository, schemaName string, t schema.Table) error {
	stmts, err := Statements(schemaName, t)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if err := repo.Exec(ctx, s); err != nil {
			return fmt.Errorf("recreate %s: %w", FQN(schemaName, t.Name), err)
		}
	}
	return nil
}

// PromoteStatements drops target, renames staging into its place and
// renames the primary key index to match, so the next staging table can
// claim its own.
func PromoteStatements(schemaName, staging, target string) ([]string, error) {
	drop, err := ddl.BuildDropTableSQL(FQN(schemaName, target), Dialect)
	if err != nil {
		return nil, err
	}
	rename, err := ddl.BuildRenameTableSQL(FQN(schemaName, staging), target, Dialect)
	if err != nil {
		return nil, err
	}
	index := fmt.Sprintf("ALTER INDEX IF EXISTS %s RENAME TO %s;",
		Dialect.QuoteFQN(FQN(schemaName, staging+"_pkey")), ddl.DoubleQuote(target+"_pkey"))
	return []string{drop, rename, index}, nil
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
