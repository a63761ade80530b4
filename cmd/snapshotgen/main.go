// Command snapshotgen writes a synthetic Olist snapshot as CSV files. The
// output directory can be used directly as a "file" source base, which makes
// it handy for local runs, demos and benchmarks without the public extract.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"elt/internal/config"
	"elt/internal/fixture"
	"elt/internal/logging"
)

func main() {
	log := logging.New(os.Getenv("WAREHOUSE_ENV"), false)
	defer func() { _ = log.Sync() }()

	if err := run(os.Args[1:], log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(args []string, log *zap.Logger) error {
	fs := flag.NewFlagSet("snapshotgen", flag.ContinueOnError)
	var (
		out  = fs.String("out", "data/synthetic", "output directory")
		seed = fs.Uint64("seed", 1, "random seed; 0 draws one")
		opts fixture.Options
	)
	fs.IntVar(&opts.Orders, "orders", 0, "number of orders (default 300)")
	fs.IntVar(&opts.Customers, "customers", 0, "number of customers (default 200)")
	fs.IntVar(&opts.Sellers, "sellers", 0, "number of sellers (default 25)")
	fs.IntVar(&opts.Products, "products", 0, "number of products (default 80)")
	fs.Float64Var(&opts.UnmappedRate, "unmapped-rate", 0, "fraction of customers in a state missing from the region reference")
	fs.BoolVar(&opts.OmitPayments, "omit-payments", false, "leave the payments file out of the snapshot")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.UnmappedRate < 0 || opts.UnmappedRate > 1 {
		return fmt.Errorf("unmapped-rate must be within [0,1], got %v", opts.UnmappedRate)
	}
	opts.Seed = *seed

	start := time.Now()
	snap := fixture.Generate(opts)
	if err := snap.WriteDir(*out); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	fields := []zap.Field{zap.String("dir", *out), zap.Uint64("seed", *seed), zap.Duration("took", time.Since(start))}
	for _, e := range config.Entities {
		if n := snap.Rows(e); n > 0 {
			fields = append(fields, zap.Int(e, n))
		}
	}
	log.Info("snapshot written", fields...)
	return nil
}
