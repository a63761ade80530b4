package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"elt/internal/warehouse"
)

// Default returns a registry with every built-in rule.
func Default() *Registry {
	reg := NewRegistry()
	for _, r := range builtinRules() {
		if err := reg.Register(r); err != nil {
			panic(err)
		}
	}
	return reg
}

func builtinRules() []Rule {
	rules := fkRules()
	return append(rules,
		Rule{
			Name:        "not_null.fact_keys",
			Description: "required fact foreign keys are never null",
			Check:       checkFactKeysNotNull,
		},
		Rule{
			Name:        "unique.order_item_sk",
			Description: "order_item_sk is unique across fact_sales",
			Check:       checkUniqueSK,
		},
		Rule{
			Name:        "arithmetic.total_item_value",
			Description: "total_item_value equals item_price + freight_value within tolerance",
			Check:       checkTotalItemValue,
		},
		Rule{
			Name:        "plausibility.payment_value",
			Description: "order payment value lies between the min ratio and max multiple of the item total",
			Check:       checkPaymentPlausibility,
		},
		Rule{
			Name:        "delivery.positive_days",
			Description: "delivered orders take a positive number of days",
			Check:       checkPositiveDeliveryDays,
		},
		Rule{
			Name:        "delivery.on_time_flag",
			Description: "is_delivered_on_time is true iff delivery_vs_estimate_days <= 0",
			Check:       checkOnTimeFlag,
		},
		Rule{
			Name:        "review.timing",
			Description: "days_to_review is not earlier than the configured minimum",
			Check:       checkReviewTiming,
		},
		Rule{
			Name:        "payment.flag_consistency",
			Description: "the primary payment type's method flag is set",
			Check:       checkPaymentFlags,
		},
		Rule{
			Name:        "product.volume_consistency",
			Description: "product volume is L*H*W when all dimensions are positive, else 0",
			Check:       checkVolume,
		},
		Rule{
			Name:        "region.customers",
			Description: "every customer carries a reference region",
			Check:       func(w *warehouse.Warehouse, _ Thresholds) Result { return checkRegions(w.Customers, w.Regions) },
		},
		Rule{
			Name:        "region.sellers",
			Description: "every seller carries a reference region",
			Check:       func(w *warehouse.Warehouse, _ Thresholds) Result { return checkRegions(w.Sellers, w.Regions) },
		},
		Rule{
			Name:        "tables.non_empty",
			Description: "every published table has rows",
			Severity:    SeverityWarning,
			Check:       checkNonEmpty,
		},
	)
}

// fkRules builds one closure rule per fact foreign key.
func fkRules() []Rule {
	type fk struct {
		column string
		dim    string
		value  func(warehouse.Sale) *string
		keys   func(*warehouse.Warehouse) map[string]struct{}
	}
	str := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	fks := []fk{
		{"customer_key", warehouse.TableCustomers, func(s warehouse.Sale) *string { return str(s.CustomerKey) },
			func(w *warehouse.Warehouse) map[string]struct{} { return locationKeys(w.Customers) }},
		{"product_key", warehouse.TableProducts, func(s warehouse.Sale) *string { return str(s.ProductKey) },
			func(w *warehouse.Warehouse) map[string]struct{} { return keySet(w.Products, func(p warehouse.Product) string { return p.Key }) }},
		{"seller_key", warehouse.TableSellers, func(s warehouse.Sale) *string { return str(s.SellerKey) },
			func(w *warehouse.Warehouse) map[string]struct{} { return locationKeys(w.Sellers) }},
		{"order_key", warehouse.TableOrders, func(s warehouse.Sale) *string { return str(s.OrderKey) },
			func(w *warehouse.Warehouse) map[string]struct{} { return keySet(w.Orders, func(o warehouse.Order) string { return o.Key }) }},
		{"date_key", warehouse.TableDates, func(s warehouse.Sale) *string { return str(s.DateKey) },
			func(w *warehouse.Warehouse) map[string]struct{} { return keySet(w.Dates, func(d warehouse.Date) string { return d.Key }) }},
		{"payment_key", warehouse.TablePayments, func(s warehouse.Sale) *string { return str(s.PaymentKey) },
			func(w *warehouse.Warehouse) map[string]struct{} { return keySet(w.Payments, func(p warehouse.Payment) string { return p.Key }) }},
		{"review_key", warehouse.TableReviews, func(s warehouse.Sale) *string { return s.ReviewKey },
			func(w *warehouse.Warehouse) map[string]struct{} { return keySet(w.Reviews, func(r warehouse.Review) string { return r.Key }) }},
	}

	rules := make([]Rule, 0, len(fks))
	for _, f := range fks {
		rules = append(rules, Rule{
			Name:        "fk_closure." + f.column,
			Description: fmt.Sprintf("every non-null fact_sales.%s exists in %s", f.column, f.dim),
			Check: func(w *warehouse.Warehouse, _ Thresholds) Result {
				keys := f.keys(w)
				missing := map[string]struct{}{}
				res := Result{}
				for _, s := range w.Sales {
					v := f.value(s)
					if v == nil {
						continue
					}
					if _, ok := keys[*v]; !ok {
						res.Failing++
						missing[*v] = struct{}{}
					}
				}
				res.Details = sample(missing)
				return res
			},
		})
	}
	return rules
}

func keySet[T any](rows []T, key func(T) string) map[string]struct{} {
	m := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		m[key(r)] = struct{}{}
	}
	return m
}

func locationKeys(rows []warehouse.Location) map[string]struct{} {
	return keySet(rows, func(l warehouse.Location) string { return l.Key })
}

func checkFactKeysNotNull(w *warehouse.Warehouse, _ Thresholds) Result {
	res := Result{}
	for _, s := range w.Sales {
		if s.OrderItemSK == "" || s.OrderKey == "" || s.CustomerKey == "" || s.ProductKey == "" ||
			s.SellerKey == "" || s.DateKey == "" || s.PaymentKey == "" {
			res.Failing++
		}
	}
	return res
}

func checkUniqueSK(w *warehouse.Warehouse, _ Thresholds) Result {
	seen := make(map[string]struct{}, len(w.Sales))
	dups := map[string]struct{}{}
	res := Result{}
	for _, s := range w.Sales {
		if _, ok := seen[s.OrderItemSK]; ok {
			res.Failing++
			dups[s.OrderItemSK] = struct{}{}
			continue
		}
		seen[s.OrderItemSK] = struct{}{}
	}
	res.Details = sample(dups)
	return res
}

func checkTotalItemValue(w *warehouse.Warehouse, th Thresholds) Result {
	tol := decimal.NewFromFloat(th.Tolerance)
	res := Result{}
	for _, s := range w.Sales {
		if s.TotalItemValue.Sub(s.ItemPrice.Add(s.FreightValue)).Abs().GreaterThan(tol) {
			res.Failing++
		}
	}
	return res
}

func checkPaymentPlausibility(w *warehouse.Warehouse, th Thresholds) Result {
	lo := decimal.NewFromFloat(th.PaymentMinRatio)
	hi := decimal.NewFromFloat(th.PaymentMaxMultiple)
	res := Result{}
	for _, s := range w.Sales {
		if s.PaymentValue.LessThan(s.TotalItemValue.Mul(lo)) || s.PaymentValue.GreaterThan(s.TotalItemValue.Mul(hi)) {
			res.Failing++
		}
	}
	return res
}

// deliveredStatus is the order status the delivery rules apply to.
const deliveredStatus = "delivered"

func checkPositiveDeliveryDays(w *warehouse.Warehouse, _ Thresholds) Result {
	res := Result{}
	for _, o := range w.Orders {
		if o.Status == deliveredStatus && o.DaysToDelivery != nil && *o.DaysToDelivery <= 0 {
			res.Failing++
		}
	}
	return res
}

func checkOnTimeFlag(w *warehouse.Warehouse, _ Thresholds) Result {
	res := Result{}
	for _, o := range w.Orders {
		delta, flag := o.DeliveryVsEstimateDays, o.IsDeliveredOnTime
		switch {
		case (delta == nil) != (flag == nil):
			res.Failing++
		case delta != nil && *flag != (*delta <= 0):
			res.Failing++
		}
	}
	return res
}

func checkReviewTiming(w *warehouse.Warehouse, th Thresholds) Result {
	res := Result{}
	for _, r := range w.Reviews {
		if r.DaysToReview != nil && *r.DaysToReview < th.ReviewMinDays {
			res.Failing++
		}
	}
	return res
}

func checkPaymentFlags(w *warehouse.Warehouse, _ Thresholds) Result {
	res := Result{}
	for _, p := range w.Payments {
		if flag, ok := p.MethodFlag(p.PrimaryType); ok && !flag {
			res.Failing++
		}
	}
	return res
}

func checkVolume(w *warehouse.Warehouse, th Thresholds) Result {
	res := Result{}
	for _, p := range w.Products {
		l, h, wd := p.LengthCm, p.HeightCm, p.WidthCm
		if l != nil && h != nil && wd != nil && *l > 0 && *h > 0 && *wd > 0 {
			if math.Abs(p.VolumeCm3-(*l)*(*h)*(*wd)) > th.Tolerance {
				res.Failing++
			}
			continue
		}
		if p.VolumeCm3 != 0 {
			res.Failing++
		}
	}
	return res
}

// checkRegions treats a null region, or one outside the reference set
// known, as an error and the Unknown fallback as a warning that lists the
// unmapped states. An empty known skips the membership test.
func checkRegions(rows []warehouse.Location, known []string) Result {
	res := Result{Severity: SeverityWarning}
	nulls := 0
	unmapped := map[string]struct{}{}
	foreign := map[string]struct{}{}
	inRef := make(map[string]struct{}, len(known))
	for _, r := range known {
		inRef[r] = struct{}{}
	}
	for _, l := range rows {
		switch {
		case l.Region == "" || l.EconomicZone == "":
			nulls++
		case l.Region == warehouse.Unknown:
			state := l.State
			if state == "" {
				state = "(empty)"
			}
			unmapped[state] = struct{}{}
			res.Failing++
		case len(inRef) > 0:
			if _, ok := inRef[l.Region]; !ok {
				foreign[l.Region] = struct{}{}
				res.Failing++
			}
		}
	}
	if len(unmapped) > 0 {
		res.Details = append(res.Details, "unmapped states: "+strings.Join(sample(unmapped), ", "))
	}
	if len(foreign) > 0 {
		res.Severity = SeverityError
		res.Details = append(res.Details, "regions outside the reference: "+strings.Join(sample(foreign), ", "))
	}
	if nulls > 0 {
		res.Severity = SeverityError
		res.Failing += nulls
		res.Details = append(res.Details, fmt.Sprintf("%d rows with null region", nulls))
	}
	return res
}

func checkNonEmpty(w *warehouse.Warehouse, _ Thresholds) Result {
	res := Result{}
	for _, t := range w.Tables() {
		if len(t.Rows) == 0 {
			res.Failing++
			res.Details = append(res.Details, t.Name)
		}
	}
	return res
}
