package normalize

import "elt/pkg/records"

// NormalizeCustomers requires customer_id.
func NormalizeCustomers(in []records.Record) ([]Customer, int) {
	out := make([]Customer, 0, len(in))
	dropped := 0
	for _, r := range in {
		c := Customer{
			CustomerID: text(r, "customer_id"),
			UniqueID:   text(r, "customer_unique_id"),
			ZipPrefix:  text(r, "customer_zip_code_prefix"),
			City:       text(r, "customer_city"),
			State:      stateCode(r, "customer_state"),
		}
		if c.CustomerID == "" {
			dropped++
			continue
		}
		out = append(out, c)
	}
	return out, dropped
}

// NormalizeOrders requires order_id and customer_id.
func NormalizeOrders(in []records.Record) ([]Order, int) {
	out := make([]Order, 0, len(in))
	dropped := 0
	for _, r := range in {
		o := Order{
			OrderID:             text(r, "order_id"),
			CustomerID:          text(r, "customer_id"),
			Status:              lowerCode(r, "order_status"),
			PurchasedAt:         timestamp(r, "order_purchase_timestamp"),
			ApprovedAt:          timestamp(r, "order_approved_at"),
			DeliveredCarrierAt:  timestamp(r, "order_delivered_carrier_date"),
			DeliveredCustomerAt: timestamp(r, "order_delivered_customer_date"),
			EstimatedDeliveryAt: timestamp(r, "order_estimated_delivery_date"),
		}
		if o.OrderID == "" || o.CustomerID == "" {
			dropped++
			continue
		}
		out = append(out, o)
	}
	return out, dropped
}

// NormalizeOrderItems requires the full composite key: order_id,
// order_item_id, product_id and seller_id.
func NormalizeOrderItems(in []records.Record) ([]OrderItem, int) {
	out := make([]OrderItem, 0, len(in))
	dropped := 0
	for _, r := range in {
		seq := integer(r, "order_item_id")
		it := OrderItem{
			OrderID:       text(r, "order_id"),
			ProductID:     text(r, "product_id"),
			SellerID:      text(r, "seller_id"),
			ShippingLimit: timestamp(r, "shipping_limit_date"),
			Price:         money(r, "price"),
			Freight:       money(r, "freight_value"),
		}
		if it.OrderID == "" || seq == nil || it.ProductID == "" || it.SellerID == "" {
			dropped++
			continue
		}
		it.ItemID = *seq
		out = append(out, it)
	}
	return out, dropped
}

// NormalizePayments requires order_id and payment_sequential. A missing
// payment type is recorded as "not_defined", the extract's own placeholder.
func NormalizePayments(in []records.Record) ([]Payment, int) {
	out := make([]Payment, 0, len(in))
	dropped := 0
	for _, r := range in {
		seq := integer(r, "payment_sequential")
		p := Payment{
			OrderID:      text(r, "order_id"),
			Type:         lowerCode(r, "payment_type"),
			Installments: integer(r, "payment_installments"),
			Value:        money(r, "payment_value"),
		}
		if p.OrderID == "" || seq == nil {
			dropped++
			continue
		}
		if p.Type == "" {
			p.Type = PaymentNotDefined
		}
		p.Sequential = *seq
		out = append(out, p)
	}
	return out, dropped
}

// NormalizeReviews requires order_id. Comment fields are only trimmed.
func NormalizeReviews(in []records.Record) ([]Review, int) {
	out := make([]Review, 0, len(in))
	dropped := 0
	for _, r := range in {
		rv := Review{
			ReviewID:   text(r, "review_id"),
			OrderID:    text(r, "order_id"),
			Score:      integer(r, "review_score"),
			Title:      freeText(r, "review_comment_title"),
			Message:    freeText(r, "review_comment_message"),
			CreatedAt:  timestamp(r, "review_creation_date"),
			AnsweredAt: timestamp(r, "review_answer_timestamp"),
		}
		if rv.OrderID == "" {
			dropped++
			continue
		}
		out = append(out, rv)
	}
	return out, dropped
}

// NormalizeProducts requires product_id. The misspelled "lenght" columns
// are the extract's own names.
func NormalizeProducts(in []records.Record) ([]Product, int) {
	out := make([]Product, 0, len(in))
	dropped := 0
	for _, r := range in {
		p := Product{
			ProductID:         text(r, "product_id"),
			Category:          text(r, "product_category_name"),
			NameLength:        integer(r, "product_name_lenght"),
			DescriptionLength: integer(r, "product_description_lenght"),
			PhotosQty:         integer(r, "product_photos_qty"),
			WeightG:           float(r, "product_weight_g"),
			LengthCm:          float(r, "product_length_cm"),
			HeightCm:          float(r, "product_height_cm"),
			WidthCm:           float(r, "product_width_cm"),
		}
		if p.ProductID == "" {
			dropped++
			continue
		}
		out = append(out, p)
	}
	return out, dropped
}

// NormalizeSellers requires seller_id.
func NormalizeSellers(in []records.Record) ([]Seller, int) {
	out := make([]Seller, 0, len(in))
	dropped := 0
	for _, r := range in {
		s := Seller{
			SellerID:  text(r, "seller_id"),
			ZipPrefix: text(r, "seller_zip_code_prefix"),
			City:      text(r, "seller_city"),
			State:     stateCode(r, "seller_state"),
		}
		if s.SellerID == "" {
			dropped++
			continue
		}
		out = append(out, s)
	}
	return out, dropped
}

// NormalizeCategoryTranslations requires product_category_name. A missing
// English name is kept as empty so the product builder falls back.
func NormalizeCategoryTranslations(in []records.Record) ([]CategoryTranslation, int) {
	out := make([]CategoryTranslation, 0, len(in))
	dropped := 0
	for _, r := range in {
		t := CategoryTranslation{
			Category: text(r, "product_category_name"),
			English:  text(r, "product_category_name_english"),
		}
		if t.Category == "" {
			dropped++
			continue
		}
		out = append(out, t)
	}
	return out, dropped
}

// NormalizeStateRegions requires state_code.
func NormalizeStateRegions(in []records.Record) ([]StateRegion, int) {
	out := make([]StateRegion, 0, len(in))
	dropped := 0
	for _, r := range in {
		s := StateRegion{
			StateCode:    stateCode(r, "state_code"),
			StateName:    text(r, "state_name"),
			Region:       text(r, "region"),
			EconomicZone: text(r, "economic_zone"),
		}
		if s.StateCode == "" {
			dropped++
			continue
		}
		out = append(out, s)
	}
	return out, dropped
}
