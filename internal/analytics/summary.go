// Package analytics computes the dashboard numbers from a built warehouse:
// headline totals, the monthly trend, and one breakdown per business
// question answered by the marts.
package analytics

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"elt/internal/warehouse"
)

// Month is one point of the monthly sales trend.
type Month struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	MonthName string          `json:"month_name"`
	Orders    int             `json:"orders"`
	Items     int             `json:"items"`
	Sales     decimal.Decimal `json:"sales"`
}

// RegionDelivery is delivery performance for one customer region. The
// averages cover orders with the metric present; OnTimeRate is a percentage
// of orders with an on-time flag.
type RegionDelivery struct {
	Region            string  `json:"region"`
	Orders            int     `json:"orders"`
	AvgDeliveryDays   float64 `json:"avg_delivery_days"`
	AvgVsEstimateDays float64 `json:"avg_delivery_vs_estimate_days"`
	OnTime            int     `json:"on_time"`
	Late              int     `json:"late"`
	OnTimeRate        float64 `json:"on_time_rate"`
}

// Summary holds the headline metrics.
type Summary struct {
	Orders          int             `json:"total_orders"`
	Items           int             `json:"total_items"`
	Sales           decimal.Decimal `json:"total_sales"`
	AvgItemValue    decimal.Decimal `json:"avg_item_value"`
	UniqueCustomers int             `json:"unique_customers"`
	UniqueSellers   int             `json:"unique_sellers"`
	UniqueProducts  int             `json:"unique_products"`

	Monthly    []Month           `json:"monthly"`
	Categories []Category        `json:"top_categories"`
	Flows      []RegionFlow      `json:"sales_by_region"`
	Customers  []CustomerSegment `json:"customer_behavior"`
	Payments   []PaymentMix      `json:"payment_analysis"`
	Sellers    []SellerRegion    `json:"seller_performance"`
	Reviews    []ReviewBand      `json:"reviews_vs_sales"`
	Delivery   []RegionDelivery  `json:"delivery_by_region"`
}

// Summarize aggregates fact_sales joined to its dimensions. Money values are
// rounded to cents.
func Summarize(w *warehouse.Warehouse) Summary {
	s := Summary{Sales: decimal.Zero, AvgItemValue: decimal.Zero}

	dates := make(map[string]warehouse.Date, len(w.Dates))
	for _, d := range w.Dates {
		dates[d.Key] = d
	}

	orders := map[string]struct{}{}
	customers := map[string]struct{}{}
	sellers := map[string]struct{}{}
	products := map[string]struct{}{}
	type monthAcc struct {
		Month
		orders map[string]struct{}
	}
	months := map[string]*monthAcc{}
	orderCustomer := map[string]string{}

	for _, f := range w.Sales {
		s.Items++
		s.Sales = s.Sales.Add(f.TotalItemValue)
		orders[f.OrderKey] = struct{}{}
		customers[f.CustomerKey] = struct{}{}
		sellers[f.SellerKey] = struct{}{}
		products[f.ProductKey] = struct{}{}
		orderCustomer[f.OrderKey] = f.CustomerKey

		d, ok := dates[f.DateKey]
		if !ok {
			continue
		}
		mk := fmt.Sprintf("%04d-%02d", d.Year, d.Month)
		m := months[mk]
		if m == nil {
			m = &monthAcc{
				Month:  Month{Year: d.Year, Month: d.Month, MonthName: d.MonthName, Sales: decimal.Zero},
				orders: map[string]struct{}{},
			}
			months[mk] = m
		}
		m.Items++
		m.Sales = m.Sales.Add(f.TotalItemValue)
		m.orders[f.OrderKey] = struct{}{}
	}

	s.Orders = len(orders)
	s.UniqueCustomers = len(customers)
	s.UniqueSellers = len(sellers)
	s.UniqueProducts = len(products)
	if s.Items > 0 {
		s.AvgItemValue = s.Sales.Div(decimal.NewFromInt(int64(s.Items))).Round(2)
	}
	s.Sales = s.Sales.Round(2)

	for _, m := range months {
		m.Orders = len(m.orders)
		m.Sales = m.Sales.Round(2)
		s.Monthly = append(s.Monthly, m.Month)
	}
	slices.SortFunc(s.Monthly, func(a, b Month) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.Month, b.Month))
	})

	s.Categories = topCategories(w, TopCategories)
	s.Flows = regionFlows(w)
	s.Customers = customerSegments(w, dates)
	s.Payments = paymentMix(w)
	s.Sellers = sellerRegions(w)
	s.Reviews = reviewBands(w)
	s.Delivery = deliveryByRegion(w, orderCustomer)
	return s
}

func deliveryByRegion(w *warehouse.Warehouse, orderCustomer map[string]string) []RegionDelivery {
	regionOf := make(map[string]string, len(w.Customers))
	for _, c := range w.Customers {
		regionOf[c.Key] = c.Region
	}

	type acc struct {
		RegionDelivery
		days, vsEst   int
		nDays, nVsEst int
	}
	byRegion := map[string]*acc{}
	for _, o := range w.Orders {
		cust, ok := orderCustomer[o.Key]
		if !ok {
			continue
		}
		region := regionOf[cust]
		if region == "" {
			region = warehouse.Unknown
		}
		a := byRegion[region]
		if a == nil {
			a = &acc{RegionDelivery: RegionDelivery{Region: region}}
			byRegion[region] = a
		}
		a.Orders++
		if o.DaysToDelivery != nil {
			a.days += *o.DaysToDelivery
			a.nDays++
		}
		if o.DeliveryVsEstimateDays != nil {
			a.vsEst += *o.DeliveryVsEstimateDays
			a.nVsEst++
		}
		if o.IsDeliveredOnTime != nil {
			if *o.IsDeliveredOnTime {
				a.OnTime++
			} else {
				a.Late++
			}
		}
	}

	out := make([]RegionDelivery, 0, len(byRegion))
	for _, a := range byRegion {
		r := a.RegionDelivery
		r.AvgDeliveryDays = mean(a.days, a.nDays)
		r.AvgVsEstimateDays = mean(a.vsEst, a.nVsEst)
		if n := r.OnTime + r.Late; n > 0 {
			r.OnTimeRate = round1(float64(r.OnTime) * 100 / float64(n))
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b RegionDelivery) int { return cmp.Compare(a.Region, b.Region) })
	return out
}

func mean(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return round1(float64(sum) / float64(n))
}

func round1(f float64) float64 {
	v, _ := decimal.NewFromFloat(f).Round(1).Float64()
	return v
}

// Write prints s as aligned text tables.
func (s Summary) Write(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "orders\t%d\n", s.Orders)
	fmt.Fprintf(tw, "items\t%d\n", s.Items)
	fmt.Fprintf(tw, "sales\t%s\n", s.Sales.StringFixed(2))
	fmt.Fprintf(tw, "avg item value\t%s\n", s.AvgItemValue.StringFixed(2))
	fmt.Fprintf(tw, "customers\t%d\n", s.UniqueCustomers)
	fmt.Fprintf(tw, "sellers\t%d\n", s.UniqueSellers)
	fmt.Fprintf(tw, "products\t%d\n", s.UniqueProducts)

	fmt.Fprintln(tw, "\nmonth\torders\titems\tsales")
	for _, m := range s.Monthly {
		fmt.Fprintf(tw, "%04d-%02d\t%d\t%d\t%s\n", m.Year, m.Month, m.Orders, m.Items, m.Sales.StringFixed(2))
	}

	fmt.Fprintln(tw, "\ncategory\tproducts\titems\trevenue\tavg item\tfreight")
	for _, c := range s.Categories {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n", c.Category, c.Products, c.Items,
			c.Revenue.StringFixed(2), c.AvgItemValue.StringFixed(2), c.Freight.StringFixed(2))
	}

	fmt.Fprintln(tw, "\ncustomer region\tseller region\torders\titems\tsales\tcustomers\tsellers")
	for _, f := range s.Flows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%d\t%d\n", f.CustomerRegion, f.SellerRegion, f.Orders, f.Items,
			f.Sales.StringFixed(2), f.Customers, f.Sellers)
	}

	fmt.Fprintln(tw, "\ncustomer region\tcustomers\tavg orders\tavg value\tavg days\tone-time\trepeat")
	for _, c := range s.Customers {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%s\t%.1f\t%d\t%d\n", c.Region, c.Customers, c.AvgOrders,
			c.AvgLifetimeValue.StringFixed(2), c.AvgLifetimeDays, c.OneTime, c.Repeat)
	}

	fmt.Fprintln(tw, "\npayment type\torders\tsales\tavg installments\tcredit card\tboleto\tvoucher")
	for _, p := range s.Payments {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.1f\t%d\t%d\t%d\n", p.Type, p.Orders, p.Sales.StringFixed(2),
			p.AvgInstallments, p.CreditCardOrders, p.BoletoOrders, p.VoucherOrders)
	}

	fmt.Fprintln(tw, "\nseller region\tsellers\torders\trevenue\tper seller\tproducts")
	for _, r := range s.Sellers {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%d\n", r.Region, r.Sellers, r.Orders,
			r.Revenue.StringFixed(2), r.RevenuePerSeller.StringFixed(2), r.Products)
	}

	fmt.Fprintln(tw, "\nreviews\titems\tsales\tavg item\tavg score")
	for _, b := range s.Reviews {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.1f\n", b.Band, b.Items, b.Sales.StringFixed(2), b.AvgItemValue.StringFixed(2), b.AvgScore)
	}

	fmt.Fprintln(tw, "\nregion\torders\tavg days\tvs estimate\ton time %")
	for _, r := range s.Delivery {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%.1f\t%.1f\n", r.Region, r.Orders, r.AvgDeliveryDays, r.AvgVsEstimateDays, r.OnTimeRate)
	}
	return tw.Flush()
}
