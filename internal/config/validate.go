// Package config provides configuration models and helpers for the warehouse
// build.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "validation.custom_rules[1].name"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateValidation(p.Validation)...)
	issues = append(issues, validateRuntime(p.Runtime)...)

	return issues
}

// validateSource validates Source configuration.
func validateSource(s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
		return issues
	}

	known := map[string]struct{}{
		"file": {},
		"s3":   {},
		"gcs":  {},
		"http": {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; expected file, s3, gcs or http", s.Kind),
		})
	}

	if strings.TrimSpace(s.Base) == "" && s.Kind != "file" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.base",
			Message:  fmt.Sprintf("%s source requires a non-empty base (bucket/prefix or URL)", s.Kind),
		})
	}

	known = make(map[string]struct{}, len(Entities))
	for _, e := range Entities {
		known[e] = struct{}{}
	}
	for entity, name := range s.Files {
		path := fmt.Sprintf("source.files.%s", entity)
		if _, ok := known[entity]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("unknown entity %q is ignored", entity),
			})
			continue
		}
		if strings.TrimSpace(name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  "empty file name; the default Olist name is used",
			})
		}
	}

	return issues
}

// validateParser validates parser configuration.
func validateParser(p Parser) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  "parser.kind must not be empty",
		})
		return issues
	}

	switch p.Kind {
	case "csv":
		switch enc := strings.ToLower(p.Options.String("encoding", "utf-8")); enc {
		case "utf-8", "utf8", "latin1", "iso-8859-1", "windows-1252":
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.encoding",
				Message:  fmt.Sprintf("unsupported encoding %q", enc),
			})
		}
	case "jsonl":
		// payload_field is optional; records are read flat when absent.
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q; expected csv or jsonl", p.Kind),
		})
	}

	return issues
}

// validateStorage validates storage configuration and DB settings.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
		return issues
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if s.Kind == "sqlite" && s.DB.Schema != "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.db.schema",
			Message:  "sqlite has no schemas; the schema is used as a table name prefix",
		})
	}

	return issues
}

// validateValidation checks threshold sanity and custom rule declarations.
func validateValidation(v Validation) []Issue {
	var issues []Issue

	if v.Tolerance < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "validation.tolerance",
			Message:  "tolerance must not be negative",
		})
	}
	if v.PaymentMinRatio < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "validation.payment_min_ratio",
			Message:  "payment_min_ratio must not be negative",
		})
	}
	if v.PaymentMaxMultiple != 0 && v.PaymentMaxMultiple < v.PaymentMinRatio {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "validation.payment_max_multiple",
			Message:  "payment_max_multiple must be greater than payment_min_ratio",
		})
	}

	seen := make(map[string]struct{}, len(v.CustomRules))
	for i, r := range v.CustomRules {
		base := fmt.Sprintf("validation.custom_rules[%d]", i)
		if strings.TrimSpace(r.Name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".name",
				Message:  "custom rule name must not be empty",
			})
		} else if _, dup := seen[r.Name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".name",
				Message:  fmt.Sprintf("duplicate custom rule name %q", r.Name),
			})
		}
		seen[r.Name] = struct{}{}
		if strings.TrimSpace(r.Expression) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".expression",
				Message:  "custom rule expression must not be empty",
			})
		}
		switch r.Severity {
		case "", "error", "warning":
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".severity",
				Message:  fmt.Sprintf("severity %q must be error or warning", r.Severity),
			})
		}
	}

	return issues
}

// validateRuntime validates RuntimeConfig for obvious misconfigurations
// (negative values, zero-sized batches, etc.).
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	if r.LoaderWorkers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.loader_workers",
			Message:  "loader_workers must not be negative",
		})
	}
	if r.ChannelBuffer < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.channel_buffer",
			Message:  "channel_buffer must not be negative",
		})
	}

	return issues
}
