package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"elt/internal/normalize"
	"elt/internal/validate"
	"elt/internal/warehouse"
)

// Report is the JSON document written to report.path for the orchestrator.
type Report struct {
	RunID      string    `json:"run_id"`
	Job        string    `json:"job"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Sources      normalize.Stats   `json:"sources"`
	Build        warehouse.Stats   `json:"build"`
	Tables       map[string]int    `json:"tables"`
	Fingerprints map[string]string `json:"fingerprints"`
	Validation   validate.Report   `json:"validation"`
}

// writeReport writes rep as indented JSON, creating parent directories. The
// file is written to a temporary name first and renamed into place.
func writeReport(path string, rep *Report) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
