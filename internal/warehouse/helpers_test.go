package warehouse

import (
	"time"

	"github.com/shopspring/decimal"

	"elt/internal/normalize"
)

func ts(s string) *time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	panic("bad test timestamp " + s)
}

func ip(n int) *int { return &n }

func fp(f float64) *float64 { return &f }

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

var testRegions = []normalize.StateRegion{
	{StateCode: "SP", StateName: "São Paulo", Region: "Sudeste", EconomicZone: "Southeast"},
	{StateCode: "RJ", StateName: "Rio de Janeiro", Region: "Sudeste", EconomicZone: "Southeast"},
	{StateCode: "BA", StateName: "Bahia", Region: "Nordeste", EconomicZone: "Northeast"},
}

// sampleSnapshot covers one on-time delivered order with a review and split
// payment, one late order without a review, one order without payments, and
// item rows that must be dropped by the inner joins.
func sampleSnapshot() *normalize.Snapshot {
	return &normalize.Snapshot{
		Customers: []normalize.Customer{
			{CustomerID: "c1", UniqueID: "u1", City: "sao paulo", State: "SP", ZipPrefix: "01001"},
			{CustomerID: "c2", UniqueID: "u2", City: "salvador", State: "ba"},
			{CustomerID: "c3", UniqueID: "u3", City: "nowhere", State: "ZZ"},
		},
		Orders: []normalize.Order{
			{OrderID: "o1", CustomerID: "c1", Status: "delivered", PurchasedAt: ts("2023-01-01 10:00:00"),
				DeliveredCustomerAt: ts("2023-01-05 09:00:00"), EstimatedDeliveryAt: ts("2023-01-10")},
			{OrderID: "o2", CustomerID: "c2", Status: "delivered", PurchasedAt: ts("2023-01-01 23:00:00"),
				DeliveredCustomerAt: ts("2023-01-05 12:00:00"), EstimatedDeliveryAt: ts("2023-01-03")},
			{OrderID: "o3", CustomerID: "c3", Status: "shipped", PurchasedAt: ts("2023-02-04 08:00:00")},
			{OrderID: "o4", CustomerID: "ghost", Status: "delivered", PurchasedAt: ts("2023-02-05 08:00:00")},
			{OrderID: "o5", CustomerID: "c1", Status: "created"},
		},
		OrderItems: []normalize.OrderItem{
			{OrderID: "o1", ItemID: 2, ProductID: "p2", SellerID: "s1", Price: dec("20.00"), Freight: dec("5.10")},
			{OrderID: "o1", ItemID: 1, ProductID: "p1", SellerID: "s1", Price: dec("58.90"), Freight: dec("13.29")},
			{OrderID: "o2", ItemID: 1, ProductID: "p1", SellerID: "s2", Price: dec("100"), Freight: dec("0")},
			{OrderID: "o3", ItemID: 1, ProductID: "p2", SellerID: "s2", Price: dec("10")},
			{OrderID: "o4", ItemID: 1, ProductID: "p1", SellerID: "s1", Price: dec("1"), Freight: dec("1")},
			{OrderID: "o5", ItemID: 1, ProductID: "p1", SellerID: "s1", Price: dec("1"), Freight: dec("1")},
			{OrderID: "o9", ItemID: 1, ProductID: "p1", SellerID: "s1", Price: dec("1"), Freight: dec("1")},
		},
		Payments: []normalize.Payment{
			{OrderID: "o1", Sequential: 2, Type: "boleto", Installments: ip(1), Value: dec("30.00")},
			{OrderID: "o1", Sequential: 1, Type: "credit_card", Installments: ip(3), Value: dec("60.00")},
			{OrderID: "o1", Sequential: 3, Type: "voucher", Installments: ip(1), Value: dec("7.29")},
			{OrderID: "o2", Sequential: 1, Type: "debit_card", Installments: ip(1), Value: dec("100")},
		},
		Reviews: []normalize.Review{
			{ReviewID: "r1", OrderID: "o1", Score: ip(5), Message: "ótimo", CreatedAt: ts("2023-01-06")},
			{ReviewID: "r9", OrderID: "o3", Score: ip(1), CreatedAt: ts("2023-02-03")},
			{ReviewID: "rx", OrderID: "o-unknown", Score: ip(3), CreatedAt: ts("2023-02-03")},
		},
		Products: []normalize.Product{
			{ProductID: "p1", Category: "beleza_saude", LengthCm: fp(16), HeightCm: fp(10), WidthCm: fp(14), WeightG: fp(225)},
			{ProductID: "p2", Category: "Relogios_Presentes", LengthCm: fp(20), HeightCm: nil, WidthCm: fp(10)},
		},
		Sellers: []normalize.Seller{
			{SellerID: "s1", City: "campinas", State: "SP"},
			{SellerID: "s2", City: "rio", State: "rj"},
		},
		Translations: []normalize.CategoryTranslation{
			{Category: "beleza_saude", English: "health_beauty"},
			{Category: " relogios_presentes ", English: "watches_gifts"},
		},
		StateRegions: testRegions,
	}
}
