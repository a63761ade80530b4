package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"elt/internal/metrics"
	"elt/internal/schema"
)

// Default publish tuning.
const (
	DefaultBatchSize     = 5000
	DefaultWorkers       = 1
	DefaultChannelBuffer = 1024
)

// PublishOptions tunes Publish. Zero values fall back to the defaults above.
type PublishOptions struct {
	// Kind selects the registered DDL bootstrapper.
	Kind   string
	Schema string
	// Job labels metrics.
	Job string

	BatchSize     int
	Workers       int
	ChannelBuffer int

	Logger *zap.Logger
}

func (o PublishOptions) withDefaults() PublishOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.ChannelBuffer <= 0 {
		o.ChannelBuffer = DefaultChannelBuffer
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Publish replaces every table in tables. Each table is created, bulk
// copied and row-count checked; up to opts.Workers tables load concurrently
// and the first failure cancels the rest.
//
// When the kind has a Swapper, tables load into staging tables and are
// promoted only after all of them loaded, so a failed load leaves the
// previous tables untouched. The returned map holds the row count of each
// table that was published.
func Publish(ctx context.Context, repo Repository, tables []schema.Table, opts PublishOptions) (map[string]int64, error) {
	opts = opts.withDefaults()
	swap, staged := lookupSwapper(opts.Kind)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	var mu sync.Mutex
	loaded := make(map[string]int64, len(tables))
	for _, t := range tables {
		g.Go(func() error {
			physical := t
			if staged {
				physical.Name = StagingName(t.Name)
			}
			n, err := loadTable(gctx, repo, physical, opts)
			if err != nil {
				return fmt.Errorf("publish %s: %w", t.Name, err)
			}
			mu.Lock()
			loaded[t.Name] = n
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	if !staged {
		for name, n := range loaded {
			recordPublished(opts, name, n)
		}
		return loaded, err
	}
	if err != nil {
		return map[string]int64{}, errors.Join(err, discard(ctx, repo, swap, tables, opts))
	}

	out := make(map[string]int64, len(tables))
	for i, t := range tables {
		if err := swap.Promote(ctx, repo, opts.Schema, StagingName(t.Name), t.Name); err != nil {
			err = fmt.Errorf("promote %s: %w", t.Name, err)
			return out, errors.Join(err, discard(ctx, repo, swap, tables[i:], opts))
		}
		out[t.Name] = loaded[t.Name]
		recordPublished(opts, t.Name, loaded[t.Name])
	}
	return out, nil
}

// discard drops the staging tables of tables. It runs even when ctx is
// already canceled.
func discard(ctx context.Context, repo Repository, swap Swapper, tables []schema.Table, opts PublishOptions) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, t := range tables {
		if err := swap.Discard(ctx, repo, opts.Schema, StagingName(t.Name)); err != nil {
			errs = append(errs, fmt.Errorf("discard %s: %w", StagingName(t.Name), err))
		}
	}
	if len(errs) == 0 {
		opts.Logger.Warn("publish aborted; staging tables dropped", zap.Int("tables", len(tables)))
	}
	return errors.Join(errs...)
}

func recordPublished(opts PublishOptions, table string, n int64) {
	batches := (n + int64(opts.BatchSize) - 1) / int64(opts.BatchSize)
	metrics.RecordBatches(opts.Job, batches)
	metrics.RecordPublished(opts.Job, table, n)
	opts.Logger.Info("published table", zap.String("table", table), zap.Int64("rows", n))
}

// loadTable recreates t and copies its rows, returning the verified count.
func loadTable(ctx context.Context, repo Repository, t schema.Table, opts PublishOptions) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	log := opts.Logger.With(zap.String("table", t.Name))

	if err := RecreateTable(ctx, opts.Kind, repo, opts.Schema, t); err != nil {
		return 0, fmt.Errorf("ddl: %w", err)
	}

	in := make(chan []any, opts.ChannelBuffer)
	go func() {
		defer close(in)
		for _, r := range t.Rows {
			select {
			case in <- r:
			case <-ctx.Done():
				return
			}
		}
	}()

	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return repo.CopyFrom(ctx, t.Name, columns, rows)
	}
	if _, err := LoadBatches(ctx, log, t.ColumnNames(), in, opts.BatchSize, copyFn); err != nil {
		return 0, err
	}

	n, err := repo.Count(ctx, t.Name)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	if n != int64(len(t.Rows)) {
		return n, fmt.Errorf("row count %d, want %d", n, len(t.Rows))
	}
	log.Debug("loaded table", zap.Int64("rows", n))
	return n, nil
}
