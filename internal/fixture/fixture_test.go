package fixture

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"elt/internal/config"
	"elt/internal/datasource/file"
	"elt/internal/normalize"
	"elt/internal/validate"
	"elt/internal/warehouse"
)

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	a := Generate(Options{Seed: 7, Orders: 40})
	b := Generate(Options{Seed: 7, Orders: 40})
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different snapshots")
	}
	c := Generate(Options{Seed: 8, Orders: 40})
	assert.NotEqual(t, a.Tables[config.EntityOrders].Rows, c.Tables[config.EntityOrders].Rows)
}

func TestGenerate_Shape(t *testing.T) {
	t.Parallel()

	s := Generate(Options{Seed: 1, Customers: 30, Sellers: 5, Products: 12, Orders: 50})
	assert.Equal(t, 30, s.Rows(config.EntityCustomers))
	assert.Equal(t, 5, s.Rows(config.EntitySellers))
	assert.Equal(t, 12, s.Rows(config.EntityProducts))
	assert.Equal(t, 50, s.Rows(config.EntityOrders))
	assert.Equal(t, len(BrazilStates), s.Rows(config.EntityStateRegion))
	assert.GreaterOrEqual(t, s.Rows(config.EntityOrderItems), 50)
	assert.GreaterOrEqual(t, s.Rows(config.EntityPayments), 50)

	for entity, tbl := range s.Tables {
		for i, row := range tbl.Rows {
			require.Len(t, row, len(tbl.Header), "%s row %d", entity, i)
		}
	}

	none := Generate(Options{Seed: 1, Orders: 5, OmitPayments: true})
	assert.Zero(t, none.Rows(config.EntityPayments))
}

func TestBrazilStates(t *testing.T) {
	t.Parallel()

	require.Len(t, BrazilStates, 27)
	seen := map[string]bool{}
	regions := map[string]bool{}
	for _, s := range BrazilStates {
		assert.Len(t, s.Code, 2)
		assert.False(t, seen[s.Code], "duplicate %s", s.Code)
		seen[s.Code] = true
		regions[s.Region] = true
	}
	assert.Len(t, regions, 5)
}

func loadDir(t *testing.T, dir string) *warehouse.Warehouse {
	t.Helper()
	ctx := context.Background()
	snap, err := normalize.Load(ctx, normalize.StoreReader{
		Store:  file.NewDir(dir),
		Parser: config.Parser{Kind: "csv", Options: config.Options{}},
	}, zap.NewNop())
	require.NoError(t, err)
	w, err := warehouse.Build(ctx, snap)
	require.NoError(t, err)
	return w
}

// TestWriteDir_BuildsCleanWarehouse round-trips a generated snapshot through
// CSV files, the normalizer and the builder; the default rules must find no
// errors.
func TestWriteDir_BuildsCleanWarehouse(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := Generate(Options{Seed: 42})
	require.NoError(t, s.WriteDir(dir))

	for _, entity := range config.Entities {
		_, err := os.Stat(filepath.Join(dir, config.DefaultFiles[entity]))
		require.NoError(t, err, entity)
	}

	w := loadDir(t, dir)
	assert.Len(t, w.Sales, s.Rows(config.EntityOrderItems))
	assert.Len(t, w.Orders, s.Rows(config.EntityOrders))

	rep := validate.Default().Run(w, validate.DefaultThresholds())
	for _, f := range rep.Failed() {
		if f.Severity == validate.SeverityError {
			t.Errorf("rule %s failed %d rows: %v", f.Rule, f.Failing, f.Details)
		}
	}
	assert.True(t, rep.Passed)
}

func TestWriteDir_UnmappedStatesWarn(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, Generate(Options{Seed: 3, Customers: 50, Orders: 60, UnmappedRate: 0.5}).WriteDir(dir))

	rep := validate.Default().Run(loadDir(t, dir), validate.DefaultThresholds())
	var found bool
	for _, f := range rep.Findings {
		if f.Rule == "region.customers" {
			found = true
			assert.False(t, f.Passed)
			assert.Equal(t, validate.SeverityWarning, f.Severity)
			assert.Equal(t, []string{"unmapped states: ZZ"}, f.Details)
		}
	}
	assert.True(t, found)
}

func TestBrazilStates_MatchReferenceCSV(t *testing.T) {
	t.Parallel()
	f, err := os.Open(filepath.Join("..", "..", "configs", "reference", "brazil_state_regions.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(BrazilStates)+1)
	assert.Equal(t, []string{"state_code", "state_name", "region", "economic_zone"}, rows[0])
	for i, s := range BrazilStates {
		assert.Equal(t, []string{s.Code, s.Name, s.Region, s.EconomicZone}, rows[i+1])
	}
}
