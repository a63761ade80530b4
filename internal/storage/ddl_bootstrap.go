package storage

import (
	"context"
	"fmt"
	"sync"

	"elt/internal/schema"
)

// DDLBootstrapper is a backend-specific function that drops and recreates the
// physical table for t via repo.Exec. schemaName is the configured schema,
// qualified the same way the backend's CopyFrom does.
//
// Backends register their implementation for a storage kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, schemaName string, t schema.Table) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// RecreateTable locates the DDLBootstrapper for kind and invokes it.
func RecreateTable(ctx context.Context, kind string, repo Repository, schemaName string, t schema.Table) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, schemaName, t)
}
