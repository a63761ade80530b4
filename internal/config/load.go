package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a pipeline file from path. Files ending in .yaml or .yml are
// decoded with yaml.v3; everything else is treated as JSON. Environment
// overrides are applied afterwards via ApplyEnv(os.Getenv).
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}
	p, err := Decode(b, filepath.Ext(path))
	if err != nil {
		return Pipeline{}, err
	}
	ApplyEnv(&p, os.Getenv)
	return p, nil
}

// Decode parses raw pipeline bytes. ext selects the format (".yaml", ".yml"
// or anything else for JSON).
func Decode(b []byte, ext string) (Pipeline, error) {
	var p Pipeline
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &p); err != nil {
			return Pipeline{}, fmt.Errorf("decode yaml config: %w", err)
		}
	default:
		if err := json.NewDecoder(bytes.NewReader(b)).Decode(&p); err != nil {
			return Pipeline{}, fmt.Errorf("decode config: %w", err)
		}
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	return p, nil
}

// ApplyEnv overlays 12-factor style overrides onto p. Only non-empty values
// win. getenv is injected so tests stay hermetic.
//
//	WAREHOUSE_SOURCE_BASE    source.base
//	WAREHOUSE_STORAGE_KIND   storage.kind
//	WAREHOUSE_DSN            storage.db.dsn
//	WAREHOUSE_REPORT_PATH    report.path
//	WAREHOUSE_BATCH_SIZE     runtime.batch_size
//	WAREHOUSE_LOADER_WORKERS runtime.loader_workers
func ApplyEnv(p *Pipeline, getenv func(string) string) {
	if v := getenv("WAREHOUSE_SOURCE_BASE"); v != "" {
		p.Source.Base = v
	}
	if v := getenv("WAREHOUSE_STORAGE_KIND"); v != "" {
		p.Storage.Kind = v
	}
	if v := getenv("WAREHOUSE_DSN"); v != "" {
		p.Storage.DB.DSN = v
	}
	if v := getenv("WAREHOUSE_REPORT_PATH"); v != "" {
		p.Report.Path = v
	}
	p.Runtime.BatchSize = pickInt(getenvInt(getenv, "WAREHOUSE_BATCH_SIZE", 0), p.Runtime.BatchSize)
	p.Runtime.LoaderWorkers = pickInt(getenvInt(getenv, "WAREHOUSE_LOADER_WORKERS", 0), p.Runtime.LoaderWorkers)
}

// getenvInt parses an integer environment variable, returning def when unset
// or malformed.
func getenvInt(getenv func(string) string, k string, def int) int {
	if s := getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// pickInt chooses the first positive value 'a', otherwise returns 'b'.
func pickInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}
