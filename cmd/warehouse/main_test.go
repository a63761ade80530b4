package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
	assert.Equal(t, "", firstNonEmpty())
}

func TestEnvOr(t *testing.T) {
	t.Setenv("WAREHOUSE_TEST_ENV", "staging")
	assert.Equal(t, "staging", envOr("WAREHOUSE_TEST_ENV", "development"))
	assert.Equal(t, "development", envOr("WAREHOUSE_TEST_ENV_UNSET", "development"))
}

func TestSetupMetrics_DisabledBackends(t *testing.T) {
	t.Setenv("METRICS_BACKEND", "")

	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)

	flush := setupMetrics(log, "olist_test", "none", "", "")
	require.NotNil(t, flush)
	flush()

	flush = setupMetrics(log, "olist_test", "graphite", "", "")
	require.NotNil(t, flush)
	flush()

	assert.Equal(t, 1, logs.FilterMessage("metrics: disabled").Len())
	assert.Equal(t, 1, logs.FilterMessage("metrics: unknown backend; metrics disabled").Len())
}

func TestSetupMetrics_EnvSelectsBackend(t *testing.T) {
	t.Setenv("METRICS_BACKEND", "bogus")

	core, logs := observer.New(zap.DebugLevel)
	flush := setupMetrics(zap.New(core), "", "", "", "")
	flush()

	entries := logs.FilterMessage("metrics: unknown backend; metrics disabled").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bogus", entries[0].ContextMap()["backend"])
}
