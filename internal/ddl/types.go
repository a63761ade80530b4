package ddl

import "elt/internal/schema"

// ColumnDef describes a single column in a table definition. Name is the
// logical, unquoted column name; quoting happens at render time.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name (FQN, dotted "schema.table" form) and an
// ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Dialect carries what differs between SQL backends when rendering DDL.
type Dialect struct {
	// Quote quotes a single identifier segment. Nil emits names as-is.
	Quote func(ident string) string
	// Type maps a logical column type to the backend's SQL type.
	Type func(t schema.Type) string
	// IfNotExists adds IF NOT EXISTS to CREATE TABLE.
	IfNotExists bool
}

// FromTable derives a TableDef named fqn from a logical table. The table key
// becomes the primary key.
func FromTable(t schema.Table, fqn string, d Dialect) TableDef {
	td := TableDef{FQN: fqn, Columns: make([]ColumnDef, 0, len(t.Columns))}
	for _, c := range t.Columns {
		td.Columns = append(td.Columns, ColumnDef{
			Name:       c.Name,
			SQLType:    d.Type(c.Type),
			Nullable:   c.Nullable,
			PrimaryKey: c.Name == t.Key,
		})
	}
	return td
}
