package warehouse

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"

	"elt/internal/schema"
)

// Fingerprint returns an xxh3 digest per table over a canonical encoding of
// its columns and rows. Two warehouses with equal fingerprints published the
// same bytes.
func (w *Warehouse) Fingerprint() map[string]uint64 {
	tables := w.Tables()
	out := make(map[string]uint64, len(tables))
	var buf bytes.Buffer
	for _, t := range tables {
		buf.Reset()
		encodeTable(&buf, t)
		out[t.Name] = xxh3.Hash(buf.Bytes())
	}
	return out
}

// encodeTable writes a type-tagged, separator-delimited rendering of t.
func encodeTable(buf *bytes.Buffer, t schema.Table) {
	for _, c := range t.Columns {
		fmt.Fprintf(buf, "%s:%s:%t\x1f", c.Name, c.Type, c.Nullable)
	}
	buf.WriteByte('\x1e')
	for _, row := range t.Rows {
		for _, v := range row {
			encodeValue(buf, v)
			buf.WriteByte('\x1f')
		}
		buf.WriteByte('\x1e')
	}
}

func encodeValue(buf *bytes.Buffer, v any) {
	switch x := v.(type) {
	case nil:
		buf.WriteString("N")
	case string:
		buf.WriteString("S")
		buf.WriteString(strconv.Quote(x))
	case int64:
		buf.WriteString("I")
		buf.WriteString(strconv.FormatInt(x, 10))
	case float64:
		buf.WriteString("F")
		buf.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case bool:
		buf.WriteString("B")
		buf.WriteString(strconv.FormatBool(x))
	case time.Time:
		buf.WriteString("T")
		buf.WriteString(x.UTC().Format(time.RFC3339Nano))
	default:
		fmt.Fprintf(buf, "?%v", x)
	}
}
