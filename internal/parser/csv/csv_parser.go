// Package csv turns delimited snapshot extracts into records. Input bytes are
// decoded to UTF-8 first (BOM sniffing plus an optional single-byte charset),
// so the rest of the pipeline only ever sees UTF-8 strings.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"elt/internal/config"
	"elt/pkg/records"
)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// Encoding names the source charset: "utf-8" (default), "latin1" /
	// "iso-8859-1" or "windows-1252". A leading BOM always wins.
	Encoding string

	// LazyQuotes relaxes quote handling for hand-edited exports.
	LazyQuotes bool

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// Logger receives one line per skipped row, up to a limit. Nil disables.
	Logger *zap.Logger
}

// FromConfigOptions maps the free-form parser options of a pipeline file.
func FromConfigOptions(o config.Options) Options {
	return Options{
		Comma:      o.Rune("comma", ','),
		Encoding:   o.String("encoding", "utf-8"),
		LazyQuotes: o.Bool("lazy_quotes", true),
		TrimSpace:  o.Bool("trim_space", true),
	}
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs and holds no per-input state.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// skipLogLimit caps per-row log lines for a single input.
const skipLogLimit = 20

// Parse reads a header row followed by data rows. It returns the parsed rows
// and the number of rows skipped because they failed to parse or had a
// different width than the header. Empty cells become nil.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	dec, err := decoderFor(p.opt.Encoding)
	if err != nil {
		return nil, 0, err
	}
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(dec.NewDecoder())))
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := normalizeHeaders(h)

	var out []records.Record
	skipped := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.logSkip(skipped, line, err.Error())
			skipped++
			continue
		}
		if len(row) != len(headers) {
			p.logSkip(skipped, line, fmt.Sprintf("incorrect number of fields (expected %d, got %d)", len(headers), len(row)))
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		out = append(out, rec)
	}
	return out, skipped, nil
}

func (p *Parser) logSkip(n, line int, reason string) {
	if p.opt.Logger == nil || n >= skipLogLimit {
		return
	}
	p.opt.Logger.Warn("csv: skipping row", zap.Int("line", line), zap.String("reason", reason))
}

// decoderFor resolves an encoding name. The returned encoding is used as the
// fallback when no BOM is present.
func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("csv: unsupported encoding %q", name)
	}
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders lower-cases and trims header cells; blank cells get a
// synthesized "col_N" name.
func normalizeHeaders(h []string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF")))
		if col == "" {
			col = fmt.Sprintf("col_%d", i)
		}
		res[i] = col
	}
	return res
}
