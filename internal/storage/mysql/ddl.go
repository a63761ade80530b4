package mysql

import (
	"context"
	"fmt"
	"strings"

	"elt/internal/ddl"
	"elt/internal/schema"
	"elt/internal/storage"
)

// Dialect renders MySQL DDL with backtick-quoted identifiers.
var Dialect = ddl.Dialect{Quote: backtick, Type: MapType}

// keyText replaces TEXT for primary keys, which need a bounded length.
const keyText = "VARCHAR(255)"

func backtick(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// MapType maps a logical column type to a MySQL type.
func MapType(t schema.Type) string {
	switch t {
	case schema.Int:
		return "BIGINT"
	case schema.Float:
		return "DOUBLE"
	case schema.Decimal:
		return "DECIMAL(14,2)"
	case schema.Bool:
		return "BOOLEAN"
	case schema.Timestamp:
		return "DATETIME"
	case schema.Date:
		return "DATE"
	default:
		return "TEXT"
	}
}

// Statements returns the DDL that recreates t. A schema is a database in
// MySQL and is created when missing.
func Statements(schemaName string, t schema.Table) ([]string, error) {
	fqn := FQN(schemaName, t.Name)
	drop, err := ddl.BuildDropTableSQL(fqn, Dialect)
	if err != nil {
		return nil, err
	}
	td := ddl.FromTable(t, fqn, Dialect)
	for i, c := range td.Columns {
		if c.PrimaryKey && c.SQLType == MapType(schema.Text) {
			td.Columns[i].SQLType = keyText
		}
	}
	create, err := ddl.BuildCreateTableSQL(td, Dialect)
	if err != nil {
		return nil, err
	}
	var stmts []string
	if schemaName != "" {
		stmts = append(stmts, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s;", backtick(schemaName)))
	}
	return append(stmts, drop, create), nil
}

// Recreate drops and creates the table for t.
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

// PromoteStatements drops target and renames staging into its place. Both
// names are qualified so the table stays in its database.
func PromoteStatements(schemaName, staging, target string) ([]string, error) {
	drop, err := ddl.BuildDropTableSQL(FQN(schemaName, target), Dialect)
	if err != nil {
		return nil, err
	}
	rename := fmt.Sprintf("RENAME TABLE %s TO %s;",
		Dialect.QuoteFQN(FQN(schemaName, staging)), Dialect.QuoteFQN(FQN(schemaName, target)))
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
