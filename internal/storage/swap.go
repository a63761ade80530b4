package storage

import (
	"context"
	"sync"
)

// StagingSuffix is appended to a table name to form its staging table.
const StagingSuffix = "__staging"

// StagingName returns the staging table loaded in place of table.
func StagingName(table string) string { return table + StagingSuffix }

// Swapper moves loaded staging tables into place. Backends register one per
// storage kind next to their DDLBootstrapper; a kind without a Swapper is
// published in place.
type Swapper struct {
	// Promote replaces target with staging, dropping the old target.
	Promote func(ctx context.Context, repo Repository, schemaName, staging, target string) error
	// Discard drops table if it exists.
	Discard func(ctx context.Context, repo Repository, schemaName, table string) error
}

var (
	swapMu  sync.RWMutex
	swapFns = map[string]Swapper{}
)

// RegisterSwapper registers (or replaces) the Swapper for kind.
func RegisterSwapper(kind string, s Swapper) {
	swapMu.Lock()
	defer swapMu.Unlock()
	swapFns[kind] = s
}

func lookupSwapper(kind string) (Swapper, bool) {
	swapMu.RLock()
	defer swapMu.RUnlock()
	s, ok := swapFns[kind]
	return s, ok
}
