package warehouse

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"elt/internal/normalize"
)

// Build runs the dimension builders concurrently, waits for all of them, then
// builds the fact table. Each builder writes only its own field of the
// result. The output is deterministic for a given snapshot.
func Build(ctx context.Context, snap *normalize.Snapshot) (*Warehouse, error) {
	if snap == nil {
		return nil, fmt.Errorf("warehouse: nil snapshot")
	}
	w := &Warehouse{}
	regions := NewRegionIndex(snap.StateRegions)
	w.Regions = regions.Regions()

	g, gctx := errgroup.WithContext(ctx)
	step := func(fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}
	step(func() { w.Customers, w.Stats.CustomersDropped = BuildCustomers(snap.Customers, regions) })
	step(func() { w.Sellers, w.Stats.SellersDropped = BuildSellers(snap.Sellers, regions) })
	step(func() { w.Products = BuildProducts(snap.Products, snap.Translations) })
	step(func() { w.Dates = BuildDates(snap.Orders) })
	step(func() { w.Payments = BuildPayments(snap.Payments) })
	step(func() { w.Reviews = BuildReviews(snap.Reviews, snap.Orders) })
	step(func() { w.Orders = BuildOrders(snap.Orders) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("warehouse: dimensions: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("warehouse: fact: %w", err)
	}

	w.Sales, w.Stats.Fact = BuildSales(snap.OrderItems, newFactInputs(snap, w.Payments, w.Reviews))
	return w, nil
}
