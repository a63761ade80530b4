// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render CREATE, DROP and RENAME TABLE statements from that model.
//
// Backends (internal/storage/postgres, mssql, mysql, sqlite) supply a Dialect
// with their identifier quoting and type mapping; everything else is shared.
package ddl

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL renders a CREATE TABLE statement from a TableDef.
//
// Rules:
//
//   - t.FQN must be non-empty.
//
//   - Each column must have a non-empty Name and SQLType.
//
//   - A column is rendered as:
//
//     <Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
//     where NOT NULL is added when Nullable == false or the column is part
//     of the primary key.
//
//   - Columns with PrimaryKey == true are collected, in column order, into a
//     trailing PRIMARY KEY (...) clause.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, 1)

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(d.quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}

		if def := strings.TrimSpace(c.Default); def != "" {
			// Default is emitted as raw SQL.
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}

		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	create := "CREATE TABLE"
	if d.IfNotExists {
		create += " IF NOT EXISTS"
	}
	return fmt.Sprintf(
		"%s %s (\n  %s\n);",
		create,
		d.QuoteFQN(fqn),
		strings.Join(cols, ",\n  "),
	), nil
}

// BuildDropTableSQL renders DROP TABLE IF EXISTS for fqn.
func BuildDropTableSQL(fqn string, d Dialect) (string, error) {
	if strings.TrimSpace(fqn) == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", d.QuoteFQN(fqn)), nil
}

// BuildRenameTableSQL renders ALTER TABLE ... RENAME TO, the form shared by
// Postgres and SQLite. toName is a bare table name; the table keeps its
// schema.
func BuildRenameTableSQL(fromFQN, toName string, d Dialect) (string, error) {
	if strings.TrimSpace(fromFQN) == "" || strings.TrimSpace(toName) == "" {
		return "", fmt.Errorf("ddl: rename needs both table names")
	}
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", d.QuoteFQN(fromFQN), d.quote(toName)), nil
}

// QuoteFQN quotes each dotted segment of f, e.g. "olist.dim_date" becomes
// `"olist"."dim_date"` for a double-quoting dialect. Empty segments are
// dropped.
func (d Dialect) QuoteFQN(f string) string {
	parts := strings.Split(f, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, d.quote(p))
	}
	return strings.Join(out, ".")
}

// QuoteList quotes each name and joins them with ", ".
func (d Dialect) QuoteList(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = d.quote(n)
	}
	return strings.Join(out, ", ")
}

func (d Dialect) quote(id string) string {
	if d.Quote == nil {
		return id
	}
	return d.Quote(id)
}

// DoubleQuote is the ANSI identifier quote used by Postgres and SQLite.
func DoubleQuote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
