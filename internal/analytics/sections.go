package analytics

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"elt/internal/warehouse"
)

// TopCategories caps the category ranking.
const TopCategories = 20

// Review bands of the review/sales breakdown.
const (
	BandPositive = "Positive (4-5)"
	BandNeutral  = "Neutral (3)"
	BandNegative = "Negative (1-2)"
	BandNone     = "No Review"
)

// Category is sales performance of one English product category.
type Category struct {
	Category     string          `json:"category"`
	Products     int             `json:"unique_products"`
	Items        int             `json:"items_sold"`
	Revenue      decimal.Decimal `json:"total_revenue"`
	AvgItemValue decimal.Decimal `json:"avg_item_value"`
	Freight      decimal.Decimal `json:"total_freight"`
}

// RegionFlow is sales from sellers of one region to customers of another.
type RegionFlow struct {
	CustomerRegion string          `json:"customer_region"`
	SellerRegion   string          `json:"seller_region"`
	Orders         int             `json:"total_orders"`
	Items          int             `json:"total_items"`
	Sales          decimal.Decimal `json:"total_sales"`
	AvgItemValue   decimal.Decimal `json:"avg_item_value"`
	Customers      int             `json:"unique_customers"`
	Sellers        int             `json:"unique_sellers"`
}

// CustomerSegment summarizes purchase behavior of the customers of one
// region. Averages are taken per customer.
type CustomerSegment struct {
	Region           string          `json:"customer_region"`
	Customers        int             `json:"customer_count"`
	AvgOrders        float64         `json:"avg_orders_per_customer"`
	AvgLifetimeValue decimal.Decimal `json:"avg_customer_lifetime_value"`
	AvgItemValue     decimal.Decimal `json:"avg_item_value"`
	AvgLifetimeDays  float64         `json:"avg_customer_lifetime_days"`
	OneTime          int             `json:"one_time_customers"`
	Repeat           int             `json:"repeat_customers"`
}

// PaymentMix is usage of one primary payment type. Order counts and
// payment totals are per distinct order.
type PaymentMix struct {
	Type             string          `json:"primary_payment_type"`
	Orders           int             `json:"total_orders"`
	Sales            decimal.Decimal `json:"total_sales"`
	AvgItemValue     decimal.Decimal `json:"avg_item_value"`
	AvgInstallments  float64         `json:"avg_installments"`
	CreditCardOrders int             `json:"credit_card_orders"`
	BoletoOrders     int             `json:"boleto_orders"`
	VoucherOrders    int             `json:"voucher_orders"`
	Payments         decimal.Decimal `json:"total_payments"`
}

// SellerRegion is seller performance grouped by seller region.
type SellerRegion struct {
	Region           string          `json:"seller_region"`
	Sellers          int             `json:"unique_sellers"`
	Orders           int             `json:"total_orders"`
	Items            int             `json:"total_items"`
	Revenue          decimal.Decimal `json:"total_revenue"`
	AvgItemValue     decimal.Decimal `json:"avg_item_value"`
	RevenuePerSeller decimal.Decimal `json:"revenue_per_seller"`
	Products         int             `json:"unique_products_sold"`
}

// ReviewBand relates one review band to the sales it covers. AvgScore
// counts unscored items as 0.
type ReviewBand struct {
	Band         string          `json:"review_category"`
	Items        int             `json:"total_items"`
	Sales        decimal.Decimal `json:"total_sales"`
	AvgItemValue decimal.Decimal `json:"avg_item_value"`
	AvgScore     float64         `json:"avg_review_score"`
	Reviews      int             `json:"reviews_count"`
	NoReview     int             `json:"no_review_count"`
}

type set map[string]struct{}

func (s set) add(k string) { s[k] = struct{}{} }

func avgMoney(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(2)
}

func meanFloat(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return round1(sum / float64(n))
}

// byMoneyDesc orders by amount descending, then by name.
func byMoneyDesc(a, b decimal.Decimal, an, bn string) int {
	return cmp.Or(b.Cmp(a), cmp.Compare(an, bn))
}

func regionIndex(rows []warehouse.Location) map[string]string {
	out := make(map[string]string, len(rows))
	for _, l := range rows {
		out[l.Key] = l.Region
	}
	return out
}

func topCategories(w *warehouse.Warehouse, limit int) []Category {
	english := make(map[string]string, len(w.Products))
	for _, p := range w.Products {
		english[p.Key] = p.CategoryEnglish
	}
	type acc struct {
		Category
		products set
	}
	groups := map[string]*acc{}
	for _, f := range w.Sales {
		name := english[f.ProductKey]
		if name == "" {
			continue
		}
		a := groups[name]
		if a == nil {
			a = &acc{Category: Category{Category: name, Revenue: decimal.Zero, Freight: decimal.Zero}, products: set{}}
			groups[name] = a
		}
		a.Items++
		a.Revenue = a.Revenue.Add(f.TotalItemValue)
		a.Freight = a.Freight.Add(f.FreightValue)
		a.products.add(f.ProductKey)
	}

	out := make([]Category, 0, len(groups))
	for _, a := range groups {
		c := a.Category
		c.Products = len(a.products)
		c.AvgItemValue = avgMoney(c.Revenue, c.Items)
		c.Revenue = c.Revenue.Round(2)
		c.Freight = c.Freight.Round(2)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Category) int { return byMoneyDesc(a.Revenue, b.Revenue, a.Category, b.Category) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func regionFlows(w *warehouse.Warehouse) []RegionFlow {
	custRegion := regionIndex(w.Customers)
	sellRegion := regionIndex(w.Sellers)
	type acc struct {
		RegionFlow
		orders, customers, sellers set
	}
	groups := map[[2]string]*acc{}
	for _, f := range w.Sales {
		cr, sr := custRegion[f.CustomerKey], sellRegion[f.SellerKey]
		if cr == "" || sr == "" {
			continue
		}
		k := [2]string{cr, sr}
		a := groups[k]
		if a == nil {
			a = &acc{
				RegionFlow: RegionFlow{CustomerRegion: cr, SellerRegion: sr, Sales: decimal.Zero},
				orders:     set{},
				customers:  set{},
				sellers:    set{},
			}
			groups[k] = a
		}
		a.Items++
		a.Sales = a.Sales.Add(f.TotalItemValue)
		a.orders.add(f.OrderKey)
		a.customers.add(f.CustomerKey)
		a.sellers.add(f.SellerKey)
	}

	out := make([]RegionFlow, 0, len(groups))
	for _, a := range groups {
		r := a.RegionFlow
		r.Orders = len(a.orders)
		r.Customers = len(a.customers)
		r.Sellers = len(a.sellers)
		r.AvgItemValue = avgMoney(r.Sales, r.Items)
		r.Sales = r.Sales.Round(2)
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b RegionFlow) int {
		return cmp.Or(b.Sales.Cmp(a.Sales), cmp.Compare(a.CustomerRegion, b.CustomerRegion), cmp.Compare(a.SellerRegion, b.SellerRegion))
	})
	return out
}

// customerSegments groups customers by region. Lifetime is the span in days
// between a customer's first and last purchase date.
func customerSegments(w *warehouse.Warehouse, dates map[string]warehouse.Date) []CustomerSegment {
	type customer struct {
		orders set
		spent  decimal.Decimal
		items  int
		first, last warehouse.Date
		dated       bool
	}
	perCustomer := map[string]*customer{}
	for _, f := range w.Sales {
		c := perCustomer[f.CustomerKey]
		if c == nil {
			c = &customer{orders: set{}, spent: decimal.Zero}
			perCustomer[f.CustomerKey] = c
		}
		c.orders.add(f.OrderKey)
		c.spent = c.spent.Add(f.TotalItemValue)
		c.items++
		d, ok := dates[f.DateKey]
		if !ok {
			continue
		}
		if !c.dated || d.FullDate.Before(c.first.FullDate) {
			c.first = d
		}
		if !c.dated || d.FullDate.After(c.last.FullDate) {
			c.last = d
		}
		c.dated = true
	}

	custRegion := regionIndex(w.Customers)
	type acc struct {
		CustomerSegment
		orders, days      float64
		dated             int
		spent, itemValues decimal.Decimal
	}
	groups := map[string]*acc{}
	for key, c := range perCustomer {
		region := cmp.Or(custRegion[key], warehouse.Unknown)
		a := groups[region]
		if a == nil {
			a = &acc{CustomerSegment: CustomerSegment{Region: region}, spent: decimal.Zero, itemValues: decimal.Zero}
			groups[region] = a
		}
		a.Customers++
		a.orders += float64(len(c.orders))
		a.spent = a.spent.Add(c.spent)
		a.itemValues = a.itemValues.Add(c.spent.Div(decimal.NewFromInt(int64(c.items))))
		if c.dated {
			a.days += c.last.FullDate.Sub(c.first.FullDate).Hours() / 24
			a.dated++
		}
		if len(c.orders) > 1 {
			a.Repeat++
		} else {
			a.OneTime++
		}
	}

	out := make([]CustomerSegment, 0, len(groups))
	for _, a := range groups {
		s := a.CustomerSegment
		s.AvgOrders = meanFloat(a.orders, s.Customers)
		s.AvgLifetimeValue = avgMoney(a.spent, s.Customers)
		s.AvgItemValue = avgMoney(a.itemValues, s.Customers)
		s.AvgLifetimeDays = meanFloat(a.days, a.dated)
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b CustomerSegment) int {
		return byMoneyDesc(a.AvgLifetimeValue, b.AvgLifetimeValue, a.Region, b.Region)
	})
	return out
}

// paymentMix joins fact rows to dim_payments; rows whose payment key is not
// in the dimension are left out.
func paymentMix(w *warehouse.Warehouse) []PaymentMix {
	payments := make(map[string]warehouse.Payment, len(w.Payments))
	for _, p := range w.Payments {
		payments[p.Key] = p
	}
	type acc struct {
		PaymentMix
		items        int
		installments int
		orders       set
	}
	groups := map[string]*acc{}
	for _, f := range w.Sales {
		p, ok := payments[f.PaymentKey]
		if !ok {
			continue
		}
		a := groups[p.PrimaryType]
		if a == nil {
			a = &acc{PaymentMix: PaymentMix{Type: p.PrimaryType, Sales: decimal.Zero, Payments: decimal.Zero}, orders: set{}}
			groups[p.PrimaryType] = a
		}
		a.items++
		a.Sales = a.Sales.Add(f.TotalItemValue)
		if _, seen := a.orders[f.OrderKey]; seen {
			continue
		}
		a.orders.add(f.OrderKey)
		a.installments += p.TotalInstallments
		a.Payments = a.Payments.Add(p.Value)
		if p.UsesCreditCard {
			a.CreditCardOrders++
		}
		if p.UsesBoleto {
			a.BoletoOrders++
		}
		if p.UsesVoucher {
			a.VoucherOrders++
		}
	}

	out := make([]PaymentMix, 0, len(groups))
	for _, a := range groups {
		m := a.PaymentMix
		m.Orders = len(a.orders)
		m.AvgItemValue = avgMoney(m.Sales, a.items)
		m.AvgInstallments = mean(a.installments, m.Orders)
		m.Sales = m.Sales.Round(2)
		m.Payments = m.Payments.Round(2)
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b PaymentMix) int { return byMoneyDesc(a.Sales, b.Sales, a.Type, b.Type) })
	return out
}

func sellerRegions(w *warehouse.Warehouse) []SellerRegion {
	sellRegion := regionIndex(w.Sellers)
	type acc struct {
		SellerRegion
		sellers, orders, products set
	}
	groups := map[string]*acc{}
	for _, f := range w.Sales {
		region := sellRegion[f.SellerKey]
		if region == "" {
			continue
		}
		a := groups[region]
		if a == nil {
			a = &acc{SellerRegion: SellerRegion{Region: region, Revenue: decimal.Zero}, sellers: set{}, orders: set{}, products: set{}}
			groups[region] = a
		}
		a.Items++
		a.Revenue = a.Revenue.Add(f.TotalItemValue)
		a.sellers.add(f.SellerKey)
		a.orders.add(f.OrderKey)
		a.products.add(f.ProductKey)
	}

	out := make([]SellerRegion, 0, len(groups))
	for _, a := range groups {
		r := a.SellerRegion
		r.Sellers = len(a.sellers)
		r.Orders = len(a.orders)
		r.Products = len(a.products)
		r.AvgItemValue = avgMoney(r.Revenue, r.Items)
		r.RevenuePerSeller = avgMoney(r.Revenue, r.Sellers)
		r.Revenue = r.Revenue.Round(2)
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b SellerRegion) int { return byMoneyDesc(a.Revenue, b.Revenue, a.Region, b.Region) })
	return out
}

func band(r *warehouse.Review) string {
	switch {
	case r == nil || r.Score == nil:
		return BandNone
	case *r.Score >= 4:
		return BandPositive
	case *r.Score == 3:
		return BandNeutral
	default:
		return BandNegative
	}
}

// reviewBands left-joins fact rows to dim_reviews. A review without a score
// falls in the no-review band but still counts as a review.
func reviewBands(w *warehouse.Warehouse) []ReviewBand {
	reviews := make(map[string]*warehouse.Review, len(w.Reviews))
	for i := range w.Reviews {
		reviews[w.Reviews[i].Key] = &w.Reviews[i]
	}
	type acc struct {
		ReviewBand
		scores int
	}
	groups := map[string]*acc{}
	for _, f := range w.Sales {
		var r *warehouse.Review
		if f.ReviewKey != nil {
			r = reviews[*f.ReviewKey]
		}
		b := band(r)
		a := groups[b]
		if a == nil {
			a = &acc{ReviewBand: ReviewBand{Band: b, Sales: decimal.Zero}}
			groups[b] = a
		}
		a.Items++
		a.Sales = a.Sales.Add(f.TotalItemValue)
		if r == nil {
			a.NoReview++
			continue
		}
		a.Reviews++
		if r.Score != nil {
			a.scores += *r.Score
		}
	}

	out := make([]ReviewBand, 0, len(groups))
	for _, a := range groups {
		b := a.ReviewBand
		b.AvgItemValue = avgMoney(b.Sales, b.Items)
		b.AvgScore = mean(a.scores, b.Items)
		b.Sales = b.Sales.Round(2)
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b ReviewBand) int { return byMoneyDesc(a.Sales, b.Sales, a.Band, b.Band) })
	return out
}
