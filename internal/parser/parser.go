// Package parser selects the record parser configured for a pipeline.
package parser

import (
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"elt/internal/config"
	pcsv "elt/internal/parser/csv"
	pjson "elt/internal/parser/json"
	"elt/pkg/records"
)

// Parser turns a raw stream into records. The int result counts rows that
// could not be parsed and were skipped.
type Parser interface {
	Parse(r io.Reader) ([]records.Record, int, error)
}

// New returns the parser for cfg.Kind ("csv" or "jsonl").
func New(cfg config.Parser, logger *zap.Logger) (Parser, error) {
	switch cfg.Kind {
	case "csv", "":
		opt := pcsv.FromConfigOptions(cfg.Options)
		opt.Logger = logger
		return pcsv.NewParser(opt), nil
	case "jsonl", "json":
		return pjson.NewParser(pjson.FromConfigOptions(cfg.Options)), nil
	default:
		return nil, fmt.Errorf("parser: unknown kind %q", cfg.Kind)
	}
}

// ForFile returns the parser for an object name. Known extensions override
// cfg.Kind so CSV reference tables can sit beside JSON lines extracts.
func ForFile(cfg config.Parser, name string, logger *zap.Logger) (Parser, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		cfg.Kind = "csv"
	case ".jsonl", ".ndjson", ".json":
		cfg.Kind = "jsonl"
	}
	return New(cfg, logger)
}
