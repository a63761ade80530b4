package warehouse

import (
	"cmp"
	"slices"

	"elt/internal/normalize"
)

// BuildOrders emits one row per order_id (last duplicate wins) with delivery
// metrics in calendar days:
//
//	days_to_delivery          = delivered_customer - purchase
//	delivery_vs_estimate_days = delivered_customer - estimated
//	is_delivered_on_time      = delivery_vs_estimate_days <= 0
func BuildOrders(in []normalize.Order) []Order {
	byID := make(map[string]normalize.Order, len(in))
	for _, o := range in {
		byID[o.OrderID] = o
	}

	out := make([]Order, 0, len(byID))
	for id, o := range byID {
		row := Order{
			Key:                 id,
			Status:              o.Status,
			PurchasedAt:         o.PurchasedAt,
			ApprovedAt:          o.ApprovedAt,
			DeliveredCarrierAt:  o.DeliveredCarrierAt,
			DeliveredCustomerAt: o.DeliveredCustomerAt,
			EstimatedDeliveryAt: o.EstimatedDeliveryAt,
		}
		if o.DeliveredCustomerAt != nil && o.PurchasedAt != nil {
			d := daysBetween(*o.PurchasedAt, *o.DeliveredCustomerAt)
			row.DaysToDelivery = &d
		}
		if o.DeliveredCustomerAt != nil && o.EstimatedDeliveryAt != nil {
			d := daysBetween(*o.EstimatedDeliveryAt, *o.DeliveredCustomerAt)
			onTime := d <= 0
			row.DeliveryVsEstimateDays = &d
			row.IsDeliveredOnTime = &onTime
		}
		out = append(out, row)
	}
	slices.SortFunc(out, func(a, b Order) int { return cmp.Compare(a.Key, b.Key) })
	return out
}
