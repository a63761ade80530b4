package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elt/pkg/records"
)

func TestNormalizeCustomers(t *testing.T) {
	in := []records.Record{
		{"customer_id": " c1 ", "customer_unique_id": "u1", "customer_city": "são paulo", "customer_state": "sp", "customer_zip_code_prefix": "01001"},
		{"customer_id": nil, "customer_unique_id": "u2"},
		{"customer_id": "", "customer_unique_id": "u3"},
		{"customer_id": "c4", "customer_state": "Sao Paulo"},
	}
	out, dropped := NormalizeCustomers(in)
	assert.Equal(t, 2, dropped)
	require.Len(t, out, 2)
	assert.Equal(t, Customer{CustomerID: "c1", UniqueID: "u1", ZipPrefix: "01001", City: "são paulo", State: "SP"}, out[0])
	assert.Equal(t, "Sao Paulo", out[1].State, "only two-letter codes are upper-cased")
}

func TestNormalizeOrders(t *testing.T) {
	in := []records.Record{
		{"order_id": "o1", "customer_id": "c1", "order_status": "Delivered",
			"order_purchase_timestamp": "2023-01-01 10:00:00", "order_delivered_customer_date": "2023-01-05 08:00:00",
			"order_estimated_delivery_date": "2023-01-10", "order_approved_at": "not a date"},
		{"order_id": "o2"},
	}
	out, dropped := NormalizeOrders(in)
	assert.Equal(t, 1, dropped)
	require.Len(t, out, 1)
	o := out[0]
	assert.Equal(t, "delivered", o.Status)
	require.NotNil(t, o.PurchasedAt)
	assert.Equal(t, time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC), *o.PurchasedAt)
	require.NotNil(t, o.EstimatedDeliveryAt)
	assert.Equal(t, time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), *o.EstimatedDeliveryAt)
	assert.Nil(t, o.ApprovedAt, "unparseable timestamps become nil")
	assert.Nil(t, o.DeliveredCarrierAt)
}

func TestNormalizeOrderItems(t *testing.T) {
	in := []records.Record{
		{"order_id": "o1", "order_item_id": "1", "product_id": "p1", "seller_id": "s1", "price": "58.90", "freight_value": "13.29"},
		{"order_id": "o1", "order_item_id": json.Number("2"), "product_id": "p2", "seller_id": "s1", "price": "abc"},
		{"order_id": "o1", "order_item_id": "x", "product_id": "p1", "seller_id": "s1"},
		{"order_id": "o1", "order_item_id": "3", "product_id": "p1"},
	}
	out, dropped := NormalizeOrderItems(in)
	assert.Equal(t, 2, dropped)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].ItemID)
	assert.True(t, out[0].Price.Valid)
	assert.True(t, decimal.RequireFromString("58.90").Equal(out[0].Price.Decimal))
	assert.Equal(t, 2, out[1].ItemID)
	assert.False(t, out[1].Price.Valid)
	assert.False(t, out[1].Freight.Valid)
}

func TestNormalizePayments(t *testing.T) {
	in := []records.Record{
		{"order_id": "o1", "payment_sequential": "1", "payment_type": "CREDIT_CARD", "payment_installments": "3", "payment_value": "10.5"},
		{"order_id": "o1", "payment_sequential": 2.0, "payment_value": "1"},
		{"order_id": "o2"},
	}
	out, dropped := NormalizePayments(in)
	assert.Equal(t, 1, dropped)
	require.Len(t, out, 2)
	assert.Equal(t, PaymentCreditCard, out[0].Type)
	require.NotNil(t, out[0].Installments)
	assert.Equal(t, 3, *out[0].Installments)
	assert.Equal(t, 2, out[1].Sequential)
	assert.Equal(t, PaymentNotDefined, out[1].Type)
	assert.Nil(t, out[1].Installments)
}

func TestNormalizeReviews_FreeTextOnlyTrimmed(t *testing.T) {
	in := []records.Record{
		{"review_id": "r1", "order_id": "o1", "review_score": "5", "review_comment_message": "  Recebi bem ANTES do prazo  "},
		{"review_id": "r2"},
	}
	out, dropped := NormalizeReviews(in)
	assert.Equal(t, 1, dropped)
	require.Len(t, out, 1)
	assert.Equal(t, "Recebi bem ANTES do prazo", out[0].Message)
	assert.Equal(t, "", out[0].Title)
}

func TestNormalizeProducts(t *testing.T) {
	in := []records.Record{
		{"product_id": "p1", "product_category_name": "perfumaria", "product_weight_g": "225",
			"product_length_cm": "16", "product_height_cm": "10", "product_width_cm": "14", "product_photos_qty": "1.0"},
		{"product_id": "p2", "product_length_cm": "NaN", "product_height_cm": "-3"},
		{"product_category_name": "x"},
	}
	out, dropped := NormalizeProducts(in)
	assert.Equal(t, 1, dropped)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].LengthCm)
	assert.Equal(t, 16.0, *out[0].LengthCm)
	require.NotNil(t, out[0].PhotosQty)
	assert.Equal(t, 1, *out[0].PhotosQty)
	assert.Nil(t, out[1].LengthCm)
	require.NotNil(t, out[1].HeightCm)
	assert.Equal(t, -3.0, *out[1].HeightCm)
}

func TestNormalizeSellersAndReference(t *testing.T) {
	sellers, dropped := NormalizeSellers([]records.Record{
		{"seller_id": "s1", "seller_state": " rj ", "seller_city": "rio de janeiro"},
		{"seller_city": "x"},
	})
	assert.Equal(t, 1, dropped)
	require.Len(t, sellers, 1)
	assert.Equal(t, "RJ", sellers[0].State)
	assert.Equal(t, "rio de janeiro", sellers[0].City)

	regions, dropped := NormalizeStateRegions([]records.Record{
		{"state_code": "sp", "state_name": "São Paulo", "region": "Sudeste", "economic_zone": "Southeast"},
		{"state_name": "nowhere"},
	})
	assert.Equal(t, 1, dropped)
	assert.Equal(t, "SP", regions[0].StateCode)

	tr, dropped := NormalizeCategoryTranslations([]records.Record{
		{"product_category_name": "beleza_saude", "product_category_name_english": "health_beauty"},
		{"product_category_name_english": "orphan"},
	})
	assert.Equal(t, 1, dropped)
	assert.Equal(t, "health_beauty", tr[0].English)
}

func TestText_NFC(t *testing.T) {
	// "são" written with a combining tilde.
	r := records.Record{"c": "sa\u0303o"}
	assert.Equal(t, "s\u00e3o", text(r, "c"))
}

func TestCoercions(t *testing.T) {
	r := records.Record{
		"f": json.Number("1.5"), "i": "7", "if": "7.5", "ts": "2017-10-02T10:56:33Z", "b": true, "n": nil,
	}
	require.NotNil(t, float(r, "f"))
	assert.Equal(t, 1.5, *float(r, "f"))
	require.NotNil(t, integer(r, "i"))
	assert.Equal(t, 7, *integer(r, "i"))
	assert.Nil(t, integer(r, "if"))
	require.NotNil(t, timestamp(r, "ts"))
	assert.Equal(t, 2017, timestamp(r, "ts").Year())
	assert.Equal(t, "true", text(r, "b"))
	assert.Nil(t, float(r, "n"))
	assert.False(t, money(r, "missing").Valid)
}

func TestTimestamp_Layouts(t *testing.T) {
	want := time.Date(2017, 10, 2, 10, 56, 33, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2017-10-02 10:56:33", want},
		{"2017-10-02 10:56:33 UTC", want},
		{"2017-10-02 10:56:33.250000 UTC", want.Add(250 * time.Millisecond)},
		{"2017-10-02T10:56:33Z", want},
		{"2017-10-02T10:56:33", want},
		{"2017-10-02 10:56", want.Truncate(time.Minute)},
		{"2017-10-02", want.Truncate(24 * time.Hour)},
	}
	for _, tt := range tests {
		got := timestamp(records.Record{"ts": tt.in}, "ts")
		if assert.NotNil(t, got, tt.in) {
			assert.True(t, tt.want.Equal(*got), "%s: got %v", tt.in, got)
		}
	}
	assert.Nil(t, timestamp(records.Record{"ts": "02/10/2017"}, "ts"))
}

func TestNormalizeOrders_BigQueryTimestamps(t *testing.T) {
	orders, dropped := NormalizeOrders([]records.Record{{
		"order_id":                 "o2",
		"customer_id":              "c2",
		"order_purchase_timestamp": "2017-10-02 10:56:33 UTC",
	}})
	assert.Zero(t, dropped)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].PurchasedAt)
	assert.Equal(t, time.Date(2017, 10, 2, 10, 56, 33, 0, time.UTC), *orders[0].PurchasedAt)
}
