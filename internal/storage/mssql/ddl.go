package mssql

import (
	"context"
	"fmt"
	"strings"

	"elt/internal/ddl"
	"elt/internal/schema"
	"elt/internal/storage"
)

// Dialect renders SQL Server DDL with bracketed identifiers.
var Dialect = ddl.Dialect{Quote: msIdent, Type: MapType}

// keyText is used instead of NVARCHAR(MAX) for text primary keys, which must
// fit in a 900-byte index key.
const keyText = "NVARCHAR(450)"

// MapType maps a logical column type to a SQL Server type.
func MapType(t schema.Type) string {
	switch t {
	case schema.Int:
		return "BIGINT"
	case schema.Float:
		return "FLOAT"
	case schema.Decimal:
		return "DECIMAL(14,2)"
	case schema.Bool:
		return "BIT"
	case schema.Timestamp:
		return "DATETIME2"
	case schema.Date:
		return "DATE"
	default:
		return "NVARCHAR(MAX)"
	}
}

// Statements returns the DDL that recreates t: an optional schema creation,
// then DROP and CREATE TABLE.
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
		lit := strings.ReplaceAll(schemaName, "'", "''")
		stmts = append(stmts, fmt.Sprintf(
			"IF SCHEMA_ID(N'%s') IS NULL EXEC('CREATE SCHEMA %s');",
			lit, strings.ReplaceAll(msIdent(schemaName), "'", "''"),
		))
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

// PromoteStatements drops target and renames staging into its place with
// sp_rename, which takes the new name unquoted.
func PromoteStatements(schemaName, staging, target string) ([]string, error) {
	drop, err := ddl.BuildDropTableSQL(FQN(schemaName, target), Dialect)
	if err != nil {
		return nil, err
	}
	lit := func(s string) string { return strings.ReplaceAll(s, "'", "''") }
	rename := fmt.Sprintf("EXEC sp_rename N'%s', N'%s';",
		lit(Dialect.QuoteFQN(FQN(schemaName, staging))), lit(target))
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
