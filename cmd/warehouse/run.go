package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"elt/internal/analytics"
	"elt/internal/config"
	"elt/internal/datasource"
	"elt/internal/metrics"
	"elt/internal/normalize"
	"elt/internal/runlock"
	"elt/internal/schema"
	"elt/internal/storage"
	"elt/internal/validate"
	"elt/internal/warehouse"
)

// options are the CLI switches that shape a run.
type options struct {
	FailOnFindings bool
	Summary        bool
	SkipPublish    bool
	LockPath       string
}

// Test seams.
var (
	openStore = datasource.Open
	openRepo  = storage.New
	newRunID  = func() string { return uuid.NewString() }
	now       = time.Now
)

// run executes one warehouse build. The report is returned whenever the
// warehouse was built, even if publishing failed afterwards.
func run(ctx context.Context, p config.Pipeline, opts options, log *zap.Logger, stdout io.Writer) (*Report, error) {
	rep := &Report{RunID: newRunID(), Job: p.Job, StartedAt: now().UTC()}
	log = log.With(zap.String("run_id", rep.RunID), zap.String("job", p.Job))

	if path := lockPath(p, opts); path != "" {
		lk, err := runlock.Acquire(path)
		if err != nil {
			return nil, fmt.Errorf("run lock %s: %w", path, err)
		}
		defer lk.Release()
		log.Debug("run lock held", zap.String("path", path))
	}

	rules, err := validate.CompileCustom(p.Validation.CustomRules)
	if err != nil {
		return nil, fmt.Errorf("custom rules: %w", err)
	}

	var snap *normalize.Snapshot
	err = step(p.Job, "load", func() error {
		store, err := openStore(ctx, p.Source)
		if err != nil {
			return fmt.Errorf("open source: %w", err)
		}
		defer store.Close()
		snap, err = normalize.Load(ctx, normalize.StoreReader{
			Store:  store,
			Source: p.Source,
			Parser: p.Parser,
			Logger: log,
		}, log)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	rep.Sources = snap.Stats
	for entity, st := range snap.Stats {
		metrics.RecordSourceRows(p.Job, entity, "read", int64(st.Read))
		metrics.RecordSourceRows(p.Job, entity, "kept", int64(st.Kept))
		metrics.RecordSourceRows(p.Job, entity, "dropped", int64(st.Dropped))
		metrics.RecordSourceRows(p.Job, entity, "skipped", int64(st.Skipped))
	}

	var w *warehouse.Warehouse
	err = step(p.Job, "build", func() error {
		w, err = warehouse.Build(ctx, snap)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	rep.Build = w.Stats
	tables := w.Tables()
	rep.Tables = make(map[string]int, len(tables))
	for _, t := range tables {
		rep.Tables[t.Name] = len(t.Rows)
	}
	rep.Fingerprints = make(map[string]string, len(tables))
	for name, fp := range w.Fingerprint() {
		rep.Fingerprints[name] = fmt.Sprintf("%016x", fp)
	}
	log.Info("warehouse built",
		zap.Int("fact_rows", len(w.Sales)),
		zap.Int("fact_dropped", w.Stats.Fact.Input-w.Stats.Fact.Kept),
	)

	err = step(p.Job, "validate", func() error {
		reg := validate.Default()
		for _, r := range rules {
			if err := reg.Register(r); err != nil {
				return err
			}
		}
		rep.Validation = reg.Run(w, validate.ThresholdsFromConfig(p.Validation))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	logFindings(log, p.Job, rep.Validation)

	rep.FinishedAt = now().UTC()
	if p.Report.Path != "" {
		if err := writeReport(p.Report.Path, rep); err != nil {
			return rep, err
		}
		log.Info("report written", zap.String("path", p.Report.Path))
	}

	if opts.Summary {
		if err := analytics.Summarize(w).Write(stdout); err != nil {
			return rep, fmt.Errorf("summary: %w", err)
		}
	}

	if opts.SkipPublish {
		log.Info("publish skipped")
		return rep, nil
	}
	err = step(p.Job, "publish", func() error {
		return publish(ctx, p, tables, log)
	})
	if err != nil {
		return rep, fmt.Errorf("publish: %w", err)
	}
	return rep, nil
}

// step times fn and records it under name.
func step(job, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(job, name, err, time.Since(start))
	return err
}

func publish(ctx context.Context, p config.Pipeline, tables []schema.Table, log *zap.Logger) error {
	repo, err := openRepo(ctx, storage.Config{
		Kind:   p.Storage.Kind,
		DSN:    p.Storage.DB.DSN,
		Schema: p.Storage.DB.Schema,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	counts, err := storage.Publish(ctx, repo, tables, storage.PublishOptions{
		Kind:          p.Storage.Kind,
		Schema:        p.Storage.DB.Schema,
		Job:           p.Job,
		BatchSize:     p.Runtime.BatchSize,
		Workers:       p.Runtime.LoaderWorkers,
		ChannelBuffer: p.Runtime.ChannelBuffer,
		Logger:        log,
	})
	if err != nil {
		return err
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	log.Info("published", zap.Int("tables", len(counts)), zap.Int64("rows", total))
	return nil
}

func logFindings(log *zap.Logger, job string, r validate.Report) {
	for _, f := range r.Findings {
		if f.Passed {
			continue
		}
		metrics.RecordFinding(job, f.Rule, string(f.Severity), f.Failing)
		fields := []zap.Field{
			zap.String("rule", f.Rule),
			zap.String("severity", string(f.Severity)),
			zap.Int("failing_rows", f.Failing),
		}
		if len(f.Details) > 0 {
			fields = append(fields, zap.Strings("details", f.Details))
		}
		log.Warn("validation finding", fields...)
	}
	log.Info("validation complete",
		zap.Bool("passed", r.Passed),
		zap.Int("errors", r.Errors),
		zap.Int("warnings", r.Warnings),
	)
}

// lockPath returns the run lock to hold: the -lock flag, or "<db>.lock" next
// to a file-backed sqlite database. Other backends run unlocked by default.
func lockPath(p config.Pipeline, opts options) string {
	if opts.LockPath != "" {
		return opts.LockPath
	}
	if p.Storage.Kind != "sqlite" || opts.SkipPublish {
		return ""
	}
	path := strings.TrimPrefix(p.Storage.DB.DSN, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		if q, err := url.ParseQuery(path[i+1:]); err == nil && q.Get("mode") == "memory" {
			return ""
		}
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path + ".lock"
}
