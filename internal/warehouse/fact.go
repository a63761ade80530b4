package warehouse

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"elt/internal/normalize"
)

// SurrogateKey returns the fact key of an order item.
func SurrogateKey(orderID string, itemID int) string {
	return orderID + "-" + strconv.Itoa(itemID)
}

// factInputs are the lookups the fact builder joins against.
type factInputs struct {
	orders    map[string]normalize.Order
	customers map[string]string // customer_id -> customer_unique_id
	payments  map[string]Payment
	reviews   map[string]struct{}
}

func newFactInputs(snap *normalize.Snapshot, payments []Payment, reviews []Review) factInputs {
	in := factInputs{
		orders:    make(map[string]normalize.Order, len(snap.Orders)),
		customers: customerKeys(snap.Customers),
		payments:  make(map[string]Payment, len(payments)),
		reviews:   make(map[string]struct{}, len(reviews)),
	}
	for _, o := range snap.Orders {
		in.orders[o.OrderID] = o
	}
	for _, p := range payments {
		in.payments[p.Key] = p
	}
	for _, r := range reviews {
		in.reviews[r.Key] = struct{}{}
	}
	return in
}

// BuildSales assembles the fact table at order-item grain.
//
// Order, customer and purchase date are inner joins: an item whose order is
// unknown, whose order's customer has no unique id, or whose order has no
// purchase date is dropped and counted. Payment is a left join with a
// zero/default fallback; payment_key stays the order id so the gap remains
// visible to referential checks. Review is a left join that leaves
// review_key nil. Missing price or freight count as zero.
func BuildSales(items []normalize.OrderItem, in factInputs) ([]Sale, FactStats) {
	st := FactStats{Input: len(items)}
	out := make([]Sale, 0, len(items))

	for _, it := range items {
		o, ok := in.orders[it.OrderID]
		if !ok {
			st.MissingOrder++
			continue
		}
		customer, ok := in.customers[o.CustomerID]
		if !ok {
			st.MissingCustomer++
			continue
		}
		if o.PurchasedAt == nil {
			st.MissingDate++
			continue
		}

		pay, ok := in.payments[o.OrderID]
		if !ok {
			st.MissingPayment++
			pay = fallbackPayment(o.OrderID)
		}
		var reviewKey *string
		if _, ok := in.reviews[o.OrderID]; ok {
			k := o.OrderID
			reviewKey = &k
		} else {
			st.MissingReview++
		}
		if !it.Price.Valid || !it.Freight.Valid {
			st.MissingPrice++
		}
		price := orZero(it.Price)
		freight := orZero(it.Freight)

		out = append(out, Sale{
			OrderItemSK:        SurrogateKey(o.OrderID, it.ItemID),
			OrderKey:           o.OrderID,
			CustomerKey:        customer,
			ProductKey:         it.ProductID,
			SellerKey:          it.SellerID,
			DateKey:            DateKey(o.PurchasedAt),
			PaymentKey:         pay.Key,
			ReviewKey:          reviewKey,
			OrderItemID:        it.ItemID,
			ItemPrice:          price,
			FreightValue:       freight,
			TotalItemValue:     price.Add(freight),
			PaymentValue:       pay.Value,
			TotalInstallments:  pay.TotalInstallments,
			MethodsCount:       pay.MethodsCount,
			PrimaryPaymentType: pay.PrimaryType,
			UsesCreditCard:     pay.UsesCreditCard,
			UsesBoleto:         pay.UsesBoleto,
			UsesVoucher:        pay.UsesVoucher,
			UsesDebitCard:      pay.UsesDebitCard,
			Quantity:           1,
		})
	}

	slices.SortStableFunc(out, func(a, b Sale) int { return cmp.Compare(a.OrderItemSK, b.OrderItemSK) })
	st.Kept = len(out)
	return out, st
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}
