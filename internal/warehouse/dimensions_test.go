package warehouse

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elt/internal/normalize"
)

func TestBuildCustomers_DedupAndRegions(t *testing.T) {
	in := []normalize.Customer{
		{CustomerID: "c9", UniqueID: "u1", City: "campinas", State: "sp"},
		{CustomerID: "c1", UniqueID: "u1", City: "santos", State: "SP"},
		{CustomerID: "c5", UniqueID: "u2", City: "x", State: "ZZ"},
		{CustomerID: "c6", UniqueID: "", City: "y", State: "SP"},
	}
	rows, dropped := BuildCustomers(in, NewRegionIndex(testRegions))
	assert.Equal(t, 1, dropped)
	require.Len(t, rows, 2)

	// c9 sorts after c1, so it is visited last and wins.
	assert.Equal(t, Location{Key: "u1", City: "campinas", State: "sp", StateName: "São Paulo", Region: "Sudeste", EconomicZone: "Southeast"}, rows[0])
	assert.Equal(t, "u2", rows[1].Key)
	assert.Equal(t, Unknown, rows[1].Region)
	assert.Equal(t, Unknown, rows[1].EconomicZone)
}

func TestBuildCustomers_OrderIndependent(t *testing.T) {
	a := []normalize.Customer{
		{CustomerID: "c1", UniqueID: "u1", City: "a"},
		{CustomerID: "c2", UniqueID: "u1", City: "b"},
	}
	b := []normalize.Customer{a[1], a[0]}
	ra, _ := BuildCustomers(a, nil)
	rb, _ := BuildCustomers(b, nil)
	assert.Equal(t, ra, rb)
	assert.Equal(t, "b", ra[0].City)
}

func TestRegionIndex_BlankReferenceFallsBack(t *testing.T) {
	idx := NewRegionIndex([]normalize.StateRegion{{StateCode: "AC", StateName: "Acre"}})
	name, region, zone := idx.Lookup(" ac ")
	assert.Equal(t, "Acre", name)
	assert.Equal(t, Unknown, region)
	assert.Equal(t, Unknown, zone)
	assert.Equal(t, []string{"Nordeste", "Sudeste"}, NewRegionIndex(testRegions).Regions())
}

func TestBuildSellers(t *testing.T) {
	rows, dropped := BuildSellers([]normalize.Seller{
		{SellerID: "s2", State: "RJ"},
		{SellerID: "s1", State: "SP", City: "old"},
		{SellerID: "s1", State: "SP", City: "new"},
	}, NewRegionIndex(testRegions))
	assert.Zero(t, dropped)
	require.Len(t, rows, 2)
	assert.Equal(t, "s1", rows[0].Key)
	assert.Equal(t, "new", rows[0].City)
	assert.Equal(t, "Rio de Janeiro", rows[1].StateName)
}

func TestVolume(t *testing.T) {
	cases := []struct {
		name    string
		l, h, w *float64
		want    float64
	}{
		{"all_positive", fp(16), fp(10), fp(14), 2240},
		{"missing_height", fp(16), nil, fp(14), 0},
		{"zero_width", fp(16), fp(10), fp(0), 0},
		{"negative_length", fp(-1), fp(10), fp(14), 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, Volume(c.l, c.h, c.w), 1e-9)
		})
	}
}

func TestBuildProducts_Translation(t *testing.T) {
	rows := BuildProducts(sampleSnapshot().Products, sampleSnapshot().Translations)
	require.Len(t, rows, 2)
	assert.Equal(t, "health_beauty", rows[0].CategoryEnglish)
	assert.InDelta(t, 2240.0, rows[0].VolumeCm3, 1e-9)
	assert.Equal(t, "watches_gifts", rows[1].CategoryEnglish, "case and whitespace are ignored")
	assert.Zero(t, rows[1].VolumeCm3)

	rows = BuildProducts([]normalize.Product{{ProductID: "p", Category: "pet_shop"}}, nil)
	assert.Equal(t, "pet_shop", rows[0].CategoryEnglish)
}

func TestBuildDates(t *testing.T) {
	rows := BuildDates(sampleSnapshot().Orders)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2023-01-01", "2023-02-04", "2023-02-05"}, []string{rows[0].Key, rows[1].Key, rows[2].Key})

	jan1 := rows[0]
	assert.Equal(t, 2023, jan1.Year)
	assert.Equal(t, 1, jan1.Quarter)
	assert.Equal(t, "January", jan1.MonthName)
	assert.Equal(t, 1, jan1.DayOfWeek, "2023-01-01 is a Sunday")
	assert.Equal(t, "Sunday", jan1.DayName)
	assert.True(t, jan1.IsWeekend)

	feb4 := rows[1]
	assert.Equal(t, 7, feb4.DayOfWeek)
	assert.Equal(t, "Saturday", feb4.DayName)
	assert.True(t, feb4.IsWeekend)

	assert.Equal(t, 4, NewDate(*ts("2023-11-15")).Quarter)
	assert.False(t, NewDate(*ts("2023-11-15")).IsWeekend)
}

func TestBuildPayments_TieBreakAndFlags(t *testing.T) {
	rows := BuildPayments(sampleSnapshot().Payments)
	require.Len(t, rows, 2)
	p := rows[0]
	assert.Equal(t, "o1", p.Key)
	assert.Equal(t, normalize.PaymentCreditCard, p.PrimaryType, "sequence 1 wins over 2 and 3")
	assert.True(t, decimal.RequireFromString("97.29").Equal(p.Value))
	assert.Equal(t, 5, p.TotalInstallments)
	assert.Equal(t, 3, p.MethodsCount)
	assert.True(t, p.UsesCreditCard)
	assert.True(t, p.UsesBoleto)
	assert.True(t, p.UsesVoucher)
	assert.False(t, p.UsesDebitCard)
}

func TestBuildPayments_EqualSequenceFirstWins(t *testing.T) {
	rows := BuildPayments([]normalize.Payment{
		{OrderID: "o", Sequential: 1, Type: "voucher"},
		{OrderID: "o", Sequential: 1, Type: "boleto"},
		{OrderID: "o", Sequential: 1, Type: "voucher", Value: dec("2.5")},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "voucher", rows[0].PrimaryType)
	assert.Equal(t, 2, rows[0].MethodsCount)
	assert.True(t, decimal.RequireFromString("2.5").Equal(rows[0].Value))
}

func TestMethodFlag(t *testing.T) {
	p := Payment{UsesBoleto: true}
	flag, ok := p.MethodFlag(normalize.PaymentBoleto)
	assert.True(t, ok)
	assert.True(t, flag)
	_, ok = p.MethodFlag(normalize.PaymentNotDefined)
	assert.False(t, ok)
}

func TestBuildReviews(t *testing.T) {
	snap := sampleSnapshot()
	rows := BuildReviews(snap.Reviews, snap.Orders)
	require.Len(t, rows, 3)

	byKey := map[string]Review{}
	for _, r := range rows {
		byKey[r.Key] = r
	}
	o1 := byKey["o1"]
	require.NotNil(t, o1.DaysToReview)
	assert.Equal(t, 5, *o1.DaysToReview)
	assert.True(t, o1.HasCommentMessage)
	assert.False(t, o1.HasCommentTitle)

	o3 := byKey["o3"]
	require.NotNil(t, o3.DaysToReview)
	assert.Equal(t, -1, *o3.DaysToReview)

	assert.Nil(t, byKey["o-unknown"].DaysToReview, "unknown order yields a null day count")
}

func TestBuildReviews_DuplicatesResolveDeterministically(t *testing.T) {
	in := []normalize.Review{
		{ReviewID: "a", OrderID: "o", CreatedAt: ts("2023-01-02")},
		{ReviewID: "c", OrderID: "o", CreatedAt: ts("2023-01-01")},
		{ReviewID: "b", OrderID: "o", CreatedAt: ts("2023-01-02")},
		{ReviewID: "z", OrderID: "o"},
	}
	rows := BuildReviews(in, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].ReviewID)

	rev := []normalize.Review{in[3], in[2], in[1], in[0]}
	assert.Equal(t, rows, BuildReviews(rev, nil))
}

func TestBuildOrders_DeliveryScenarios(t *testing.T) {
	rows := BuildOrders(sampleSnapshot().Orders)
	byKey := map[string]Order{}
	for _, o := range rows {
		byKey[o.Key] = o
	}

	onTime := byKey["o1"]
	require.NotNil(t, onTime.DaysToDelivery)
	assert.Equal(t, 4, *onTime.DaysToDelivery)
	assert.Equal(t, -5, *onTime.DeliveryVsEstimateDays)
	assert.True(t, *onTime.IsDeliveredOnTime)

	late := byKey["o2"]
	assert.Equal(t, 2, *late.DeliveryVsEstimateDays)
	assert.False(t, *late.IsDeliveredOnTime)
	assert.Equal(t, 4, *late.DaysToDelivery, "calendar days, not elapsed hours")

	pending := byKey["o3"]
	assert.Nil(t, pending.DaysToDelivery)
	assert.Nil(t, pending.DeliveryVsEstimateDays)
	assert.Nil(t, pending.IsDeliveredOnTime)
}
