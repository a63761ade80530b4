// Package json implements a JSON lines parser that turns JSON objects into
// records.Record maps.
//
// Supported inputs:
//
//   - newline-delimited JSON objects:
//     {"order_id":"o1","order_status":"delivered"}
//   - a single top-level array of objects (AllowArrays)
//   - envelopes such as {"data":{...}} when PayloadField="data"
//   - envelopes carrying the payload as an encoded string, as loaders such
//     as Singer targets write it: {"data":"{\"order_id\":\"o1\"}"}
//
// Numbers are kept as json.Number so callers decide how to coerce them.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"elt/internal/config"
	"elt/pkg/records"
)

// Options configures decoding.
type Options struct {
	// AllowArrays accepts a top-level JSON array of objects.
	AllowArrays bool

	// PayloadField, when set, unwraps each object's nested record under that
	// key. The payload may be an object or a string holding one. Objects
	// without a usable payload are skipped.
	PayloadField string
}

// FromConfigOptions constructs JSON Options from a generic config.Options
// map (the same one used by the csv parser).
func FromConfigOptions(o config.Options) Options {
	return Options{
		AllowArrays:  o.Bool("allow_arrays", true),
		PayloadField: o.String("payload_field", ""),
	}
}

// errSkip marks a value that is not a usable record.
var errSkip = errors.New("json parser: not a record")

// Parser reads a whole JSON stream into records.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads every record from r. The int result counts top-level values
// that were not objects or lacked the payload field.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	return decodeAll(r, p.opt)
}

func decodeAll(r io.Reader, opt Options) ([]records.Record, int, error) {
	d := json.NewDecoder(r)
	d.UseNumber()

	var out []records.Record
	skipped := 0
	add := func(v any) {
		rec, err := toRecord(v, opt)
		if err != nil {
			skipped++
			return
		}
		out = append(out, rec)
	}

	for first := true; ; first = false {
		var v any
		if err := d.Decode(&v); err != nil {
			if err == io.EOF {
				return out, skipped, nil
			}
			return nil, skipped, fmt.Errorf("json parser: decode: %w", err)
		}
		arr, isArr := v.([]any)
		if !isArr {
			add(v)
			continue
		}
		if !first || !opt.AllowArrays {
			return nil, skipped, fmt.Errorf("json parser: top-level array encountered but allow_arrays=false")
		}
		for _, elem := range arr {
			add(elem)
		}
	}
}

func toRecord(v any, opt Options) (records.Record, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errSkip
	}
	if opt.PayloadField == "" {
		return records.Record(m), nil
	}
	switch inner := m[opt.PayloadField].(type) {
	case map[string]any:
		return records.Record(inner), nil
	case string:
		return decodePayload(inner)
	default:
		return nil, errSkip
	}
}

// decodePayload parses a string-encoded payload object. Anything other than
// exactly one JSON object is skipped.
func decodePayload(s string) (records.Record, error) {
	d := json.NewDecoder(strings.NewReader(s))
	d.UseNumber()
	var m map[string]any
	if err := d.Decode(&m); err != nil || m == nil {
		return nil, errSkip
	}
	if d.More() {
		return nil, errSkip
	}
	return records.Record(m), nil
}
