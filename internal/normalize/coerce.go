package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"elt/pkg/records"
)

// timeLayouts are tried in order. Olist extracts use the first one; the zone
// suffixed forms are what BigQuery exports write for TIMESTAMP columns.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05.999999 MST",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// raw renders a scalar as a string without cleaning. nil and unsupported
// types yield "".
func raw(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// text returns a cleaned field: NBSP becomes a space, runs are trimmed and the
// result is NFC-normalized so composed and decomposed accents compare equal.
func text(r records.Record, key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	s := strings.TrimSpace(strings.ReplaceAll(raw(v), "\u00a0", " "))
	return norm.NFC.String(s)
}

// freeText only trims; comments are kept as written.
func freeText(r records.Record, key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(raw(v))
}

// stateCode upper-cases two-letter codes. Anything else is kept as cleaned.
func stateCode(r records.Record, key string) string {
	s := text(r, key)
	if len([]rune(s)) == 2 {
		return strings.ToUpper(s)
	}
	return s
}

// lowerCode is used for enumerations such as order status and payment type.
func lowerCode(r records.Record, key string) string {
	return strings.ToLower(text(r, key))
}

func float(r records.Record, key string) *float64 {
	s := text(r, key)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func money(r records.Record, key string) decimal.NullDecimal {
	s := text(r, key)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// integer accepts "3" and integral floats such as "3.0".
func integer(r records.Record, key string) *int {
	s := text(r, key)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	n := int(f)
	return &n
}

func timestamp(r records.Record, key string) *time.Time {
	s := text(r, key)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
