package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"elt/internal/config"
	"elt/internal/fixture"
	"elt/internal/runlock"
	"elt/internal/storage"
	"elt/internal/warehouse"
)

// testPipeline writes a generated snapshot and returns a pipeline that reads
// it and publishes into a sqlite file in the same temp dir.
func testPipeline(t *testing.T, opts fixture.Options) (config.Pipeline, *fixture.Snapshot) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "snapshot")
	snap := fixture.Generate(opts)
	require.NoError(t, snap.WriteDir(src))

	p := config.Pipeline{
		Job:     "olist_test",
		Source:  config.Source{Kind: "file", Base: src},
		Parser:  config.Parser{Kind: "csv", Options: config.Options{}},
		Storage: config.Storage{Kind: "sqlite", DB: config.DBConfig{DSN: filepath.Join(dir, "warehouse.db")}},
		Report:  config.Report{Path: filepath.Join(dir, "out", "report.json")},
	}
	return p, snap
}

func stubRunID(t *testing.T) {
	t.Helper()
	orig := newRunID
	newRunID = func() string { return "run-0001" }
	t.Cleanup(func() { newRunID = orig })
}

func TestRun_EndToEndSQLite(t *testing.T) {
	stubRunID(t)
	p, snap := testPipeline(t, fixture.Options{Seed: 11, Orders: 60})

	var out bytes.Buffer
	rep, err := run(context.Background(), p, options{Summary: true}, zap.NewNop(), &out)
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.Equal(t, "run-0001", rep.RunID)
	assert.True(t, rep.Validation.Passed, "%+v", rep.Validation.Failed())
	assert.Equal(t, rep.Build.Fact.Kept, rep.Tables[warehouse.TableSales])
	assert.Equal(t, snap.Rows(config.EntityOrderItems), rep.Build.Fact.Input)
	assert.Equal(t, snap.Rows(config.EntityOrders), rep.Tables[warehouse.TableOrders])
	assert.Len(t, rep.Fingerprints, len(rep.Tables))
	assert.Contains(t, out.String(), "orders")

	b, err := os.ReadFile(p.Report.Path)
	require.NoError(t, err)
	var onDisk Report
	require.NoError(t, json.Unmarshal(b, &onDisk))
	assert.Equal(t, rep.RunID, onDisk.RunID)
	assert.Equal(t, rep.Tables, onDisk.Tables)
	assert.Equal(t, rep.Validation.Errors, onDisk.Validation.Errors)

	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: p.Storage.DB.DSN})
	require.NoError(t, err)
	defer repo.Close()
	for name, want := range rep.Tables {
		got, err := repo.Count(context.Background(), name)
		require.NoError(t, err, name)
		assert.Equal(t, int64(want), got, name)
	}
}

func TestRun_RerunIsIdempotent(t *testing.T) {
	stubRunID(t)
	p, _ := testPipeline(t, fixture.Options{Seed: 12, Orders: 30})

	first, err := run(context.Background(), p, options{}, zap.NewNop(), &bytes.Buffer{})
	require.NoError(t, err)
	second, err := run(context.Background(), p, options{}, zap.NewNop(), &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprints, second.Fingerprints)
	assert.Equal(t, first.Tables, second.Tables)
}

func TestRun_PublishFailureStillWritesReport(t *testing.T) {
	p, _ := testPipeline(t, fixture.Options{Seed: 13, Orders: 20})

	boom := errors.New("sink down")
	orig := openRepo
	openRepo = func(context.Context, storage.Config) (storage.Repository, error) { return nil, boom }
	t.Cleanup(func() { openRepo = orig })

	rep, err := run(context.Background(), p, options{}, zap.NewNop(), &bytes.Buffer{})
	require.ErrorIs(t, err, boom)
	require.NotNil(t, rep)
	_, statErr := os.Stat(p.Report.Path)
	assert.NoError(t, statErr)
}

func TestRun_NoPublishSkipsStorage(t *testing.T) {
	p, _ := testPipeline(t, fixture.Options{Seed: 14, Orders: 20})

	orig := openRepo
	openRepo = func(context.Context, storage.Config) (storage.Repository, error) {
		t.Fatal("storage opened with -no-publish")
		return nil, nil
	}
	t.Cleanup(func() { openRepo = orig })

	_, err := run(context.Background(), p, options{SkipPublish: true}, zap.NewNop(), &bytes.Buffer{})
	require.NoError(t, err)
}

func TestRun_CustomRules(t *testing.T) {
	p, _ := testPipeline(t, fixture.Options{Seed: 15, Orders: 20})
	p.Validation.CustomRules = []config.CustomRule{
		{Name: "quantity_one", Expression: "row.quantity == 1"},
	}

	rep, err := run(context.Background(), p, options{SkipPublish: true}, zap.NewNop(), &bytes.Buffer{})
	require.NoError(t, err)
	var found bool
	for _, f := range rep.Validation.Findings {
		if f.Rule == "custom.quantity_one" {
			found = true
			assert.True(t, f.Passed)
		}
	}
	assert.True(t, found)

	p.Validation.CustomRules = []config.CustomRule{{Name: "broken", Expression: "row.quantity =="}}
	rep, err = run(context.Background(), p, options{SkipPublish: true}, zap.NewNop(), &bytes.Buffer{})
	require.Error(t, err)
	assert.Nil(t, rep)
}

func TestRun_MissingSnapshot(t *testing.T) {
	p := config.Pipeline{
		Job:     "olist_test",
		Source:  config.Source{Kind: "file", Base: t.TempDir()},
		Parser:  config.Parser{Kind: "csv"},
		Storage: config.Storage{Kind: "sqlite", DB: config.DBConfig{DSN: ":memory:"}},
	}
	rep, err := run(context.Background(), p, options{}, zap.NewNop(), &bytes.Buffer{})
	require.Error(t, err)
	assert.Nil(t, rep)
}

func TestRun_LockedByAnotherRun(t *testing.T) {
	p, _ := testPipeline(t, fixture.Options{Seed: 16, Orders: 5})

	held, err := runlock.Acquire(p.Storage.DB.DSN + ".lock")
	require.NoError(t, err)
	defer held.Release()

	_, err = run(context.Background(), p, options{}, zap.NewNop(), &bytes.Buffer{})
	assert.ErrorIs(t, err, runlock.ErrLocked)
}

func TestLockPath(t *testing.T) {
	t.Parallel()

	sqlite := func(dsn string) config.Pipeline {
		return config.Pipeline{Storage: config.Storage{Kind: "sqlite", DB: config.DBConfig{DSN: dsn}}}
	}
	tests := []struct {
		name string
		p    config.Pipeline
		opts options
		want string
	}{
		{"flag wins", sqlite("a.db"), options{LockPath: "/tmp/x.lock"}, "/tmp/x.lock"},
		{"plain path", sqlite("data/olist.db"), options{}, "data/olist.db.lock"},
		{"file uri with query", sqlite("file:olist.db?_pragma=journal_mode(WAL)"), options{}, "olist.db.lock"},
		{"memory", sqlite(":memory:"), options{}, ""},
		{"memory mode", sqlite("file:x?mode=memory"), options{}, ""},
		{"no publish", sqlite("a.db"), options{SkipPublish: true}, ""},
		{"postgres", config.Pipeline{Storage: config.Storage{Kind: "postgres", DB: config.DBConfig{DSN: "postgres://x"}}}, options{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, lockPath(tt.p, tt.opts))
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	clean := &Report{}
	clean.Validation.Passed = true
	dirty := &Report{}

	tests := []struct {
		name   string
		rep    *Report
		err    error
		strict bool
		want   int
	}{
		{"clean", clean, nil, false, exitOK},
		{"clean strict", clean, nil, true, exitOK},
		{"findings lenient", dirty, nil, false, exitOK},
		{"findings strict", dirty, nil, true, exitFindings},
		{"fatal", nil, errors.New("x"), true, exitFatal},
		{"fatal with report", dirty, errors.New("publish"), true, exitFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, exitCode(tt.rep, tt.err, tt.strict))
		})
	}
}
