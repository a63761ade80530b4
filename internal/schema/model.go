// Package schema describes published tables independently of any SQL
// dialect. Storage backends map Type to their own column types.
package schema

import "time"

// Type is a logical column type.
type Type string

const (
	Text      Type = "text"
	Int       Type = "int"
	Float     Type = "float"
	Decimal   Type = "decimal"
	Bool      Type = "bool"
	Timestamp Type = "timestamp"
	Date      Type = "date"
)

type Column struct {
	Name     string
	Type     Type
	Nullable bool
}

// Table is a named row set. Key names the primary key column. Row values are
// nil, string, int64, float64, bool or time.Time, in Columns order.
type Table struct {
	Name    string
	Key     string
	Columns []Column
	Rows    [][]any
}

// ColumnNames returns the column names in order.
func (t Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// NullString maps "" to nil.
func NullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NullInt maps nil to nil and widens to int64.
func NullInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func NullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func NullBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func NullTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}
