// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each backend, which register their
// factories and DDL bootstrappers with the storage package:
//
//   - "postgres" (elt/internal/storage/postgres)
//   - "mssql"    (elt/internal/storage/mssql)
//   - "mysql"    (elt/internal/storage/mysql)
//   - "sqlite"   (elt/internal/storage/sqlite)
//
// Typical usage (in cmd/warehouse/main.go):
//
//	import _ "elt/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{
//	    Kind:   p.Storage.Kind,
//	    DSN:    p.Storage.DB.DSN,
//	    Schema: p.Storage.DB.Schema,
//	})
//	if err != nil {
//	    // handle error
//	}
//	defer repo.Close()
//	counts, err := storage.Publish(ctx, repo, tables, opts)
//
// A binary that supports only a subset of backends can import the required
// backend packages directly instead of this package.
package all

import (
	_ "elt/internal/storage/mssql"
	_ "elt/internal/storage/mysql"
	_ "elt/internal/storage/postgres"
	_ "elt/internal/storage/sqlite"
)
