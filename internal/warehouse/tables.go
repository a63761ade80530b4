package warehouse

import (
	"github.com/shopspring/decimal"

	"elt/internal/schema"
)

// Table names of the published star schema.
const (
	TableCustomers = "dim_customers"
	TableSellers   = "dim_sellers"
	TableProducts  = "dim_products"
	TableDates     = "dim_date"
	TablePayments  = "dim_payments"
	TableReviews   = "dim_reviews"
	TableOrders    = "dim_orders"
	TableSales     = "fact_sales"
)

func col(name string, t schema.Type) schema.Column { return schema.Column{Name: name, Type: t} }

func nullable(name string, t schema.Type) schema.Column {
	return schema.Column{Name: name, Type: t, Nullable: true}
}

func money(d decimal.Decimal) any { return d.InexactFloat64() }

// locationTable renders customers or sellers; prefix is "customer" or
// "seller".
func locationTable(name, prefix string, rows []Location) schema.Table {
	t := schema.Table{
		Name: name,
		Key:  prefix + "_key",
		Columns: []schema.Column{
			col(prefix+"_key", schema.Text),
			nullable(prefix+"_city", schema.Text),
			nullable(prefix+"_state", schema.Text),
			nullable(prefix+"_zip_code_prefix", schema.Text),
			col(prefix+"_region", schema.Text),
			col(prefix+"_economic_zone", schema.Text),
			nullable(prefix+"_state_name", schema.Text),
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Key, schema.NullString(r.City), schema.NullString(r.State), schema.NullString(r.ZipPrefix),
			r.Region, r.EconomicZone, schema.NullString(r.StateName),
		})
	}
	return t
}

func productTable(rows []Product) schema.Table {
	t := schema.Table{
		Name: TableProducts,
		Key:  "product_key",
		Columns: []schema.Column{
			col("product_key", schema.Text),
			nullable("product_category_name", schema.Text),
			nullable("product_category_english", schema.Text),
			nullable("product_weight_g", schema.Float),
			nullable("product_length_cm", schema.Float),
			nullable("product_height_cm", schema.Float),
			nullable("product_width_cm", schema.Float),
			col("product_volume_cm3", schema.Float),
			nullable("product_photos_qty", schema.Int),
			nullable("product_name_length", schema.Int),
			nullable("product_description_length", schema.Int),
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Key, schema.NullString(r.Category), schema.NullString(r.CategoryEnglish),
			schema.NullFloat(r.WeightG), schema.NullFloat(r.LengthCm), schema.NullFloat(r.HeightCm), schema.NullFloat(r.WidthCm),
			r.VolumeCm3, schema.NullInt(r.PhotosQty), schema.NullInt(r.NameLength), schema.NullInt(r.DescriptionLength),
		})
	}
	return t
}

func dateTable(rows []Date) schema.Table {
	t := schema.Table{
		Name: TableDates,
		Key:  "date_key",
		Columns: []schema.Column{
			col("date_key", schema.Text),
			col("full_date", schema.Date),
			col("year", schema.Int),
			col("quarter", schema.Int),
			col("month", schema.Int),
			col("month_name", schema.Text),
			col("day", schema.Int),
			col("day_of_week", schema.Int),
			col("day_name", schema.Text),
			col("is_weekend", schema.Bool),
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Key, r.FullDate, int64(r.Year), int64(r.Quarter), int64(r.Month), r.MonthName,
			int64(r.Day), int64(r.DayOfWeek), r.DayName, r.IsWeekend,
		})
	}
	return t
}

func paymentTable(rows []Payment) schema.Table {
	t := schema.Table{
		Name: TablePayments,
		Key:  "payment_key",
		Columns: []schema.Column{
			col("payment_key", schema.Text),
			col("payment_value", schema.Decimal),
			col("total_installments", schema.Int),
			col("payment_methods_count", schema.Int),
			col("primary_payment_type", schema.Text),
			col("uses_credit_card", schema.Bool),
			col("uses_boleto", schema.Bool),
			col("uses_voucher", schema.Bool),
			col("uses_debit_card", schema.Bool),
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Key, money(r.Value), int64(r.TotalInstallments), int64(r.MethodsCount), r.PrimaryType,
			r.UsesCreditCard, r.UsesBoleto, r.UsesVoucher, r.UsesDebitCard,
		})
	}
	return t
}

func reviewTable(rows []Review) schema.Table {
	t := schema.Table{
		Name: TableReviews,
		Key:  "review_key",
		Columns: []schema.Column{
			col("review_key", schema.Text),
			nullable("review_id", schema.Text),
			nullable("review_score", schema.Int),
			col("has_comment_title", schema.Bool),
			col("has_comment_message", schema.Bool),
			nullable("review_creation_date", schema.Timestamp),
			nullable("review_answer_timestamp", schema.Timestamp),
			nullable("days_to_review", schema.Int),
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Key, schema.NullString(r.ReviewID), schema.NullInt(r.Score), r.HasCommentTitle, r.HasCommentMessage,
			schema.NullTime(r.CreatedAt), schema.NullTime(r.AnsweredAt), schema.NullInt(r.DaysToReview),
		})
	}
	return t
}

func orderTable(rows []Order) schema.Table {
	t := schema.Table{
		Name: TableOrders,
		Key:  "order_key",
		Columns: []schema.Column{
			col("order_key", schema.Text),
			nullable("order_status", schema.Text),
			nullable("order_purchase_timestamp", schema.Timestamp),
			nullable("order_approved_at", schema.Timestamp),
			nullable("order_delivered_carrier_date", schema.Timestamp),
			nullable("order_delivered_customer_date", schema.Timestamp),
			nullable("order_estimated_delivery_date", schema.Timestamp),
			nullable("days_to_delivery", schema.Int),
			nullable("delivery_vs_estimate_days", schema.Int),
			nullable("is_delivered_on_time", schema.Bool),
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Key, schema.NullString(r.Status),
			schema.NullTime(r.PurchasedAt), schema.NullTime(r.ApprovedAt), schema.NullTime(r.DeliveredCarrierAt),
			schema.NullTime(r.DeliveredCustomerAt), schema.NullTime(r.EstimatedDeliveryAt),
			schema.NullInt(r.DaysToDelivery), schema.NullInt(r.DeliveryVsEstimateDays), schema.NullBool(r.IsDeliveredOnTime),
		})
	}
	return t
}

func saleTable(rows []Sale) schema.Table {
	t := schema.Table{
		Name: TableSales,
		Key:  "order_item_sk",
		Columns: []schema.Column{
			col("order_item_sk", schema.Text),
			col("order_key", schema.Text),
			col("customer_key", schema.Text),
			col("product_key", schema.Text),
			col("seller_key", schema.Text),
			col("date_key", schema.Text),
			col("payment_key", schema.Text),
			nullable("review_key", schema.Text),
			col("order_item_id", schema.Int),
			col("item_price", schema.Decimal),
			col("freight_value", schema.Decimal),
			col("total_item_value", schema.Decimal),
			col("payment_value", schema.Decimal),
			col("total_installments", schema.Int),
			col("payment_methods_count", schema.Int),
			col("primary_payment_type", schema.Text),
			col("uses_credit_card", schema.Bool),
			col("uses_boleto", schema.Bool),
			col("uses_voucher", schema.Bool),
			col("uses_debit_card", schema.Bool),
			col("quantity", schema.Int),
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		var review any
		if r.ReviewKey != nil {
			review = *r.ReviewKey
		}
		t.Rows = append(t.Rows, []any{
			r.OrderItemSK, r.OrderKey, r.CustomerKey, r.ProductKey, r.SellerKey, r.DateKey, r.PaymentKey, review,
			int64(r.OrderItemID), money(r.ItemPrice), money(r.FreightValue), money(r.TotalItemValue), money(r.PaymentValue),
			int64(r.TotalInstallments), int64(r.MethodsCount), r.PrimaryPaymentType,
			r.UsesCreditCard, r.UsesBoleto, r.UsesVoucher, r.UsesDebitCard, int64(r.Quantity),
		})
	}
	return t
}

// Tables renders every table for publishing. Dimensions come first and the
// fact table last.
func (w *Warehouse) Tables() []schema.Table {
	return []schema.Table{
		locationTable(TableCustomers, "customer", w.Customers),
		locationTable(TableSellers, "seller", w.Sellers),
		productTable(w.Products),
		dateTable(w.Dates),
		paymentTable(w.Payments),
		reviewTable(w.Reviews),
		orderTable(w.Orders),
		saleTable(w.Sales),
	}
}

// SalesTable renders only the fact table.
func (w *Warehouse) SalesTable() schema.Table { return saleTable(w.Sales) }
