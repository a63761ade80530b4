// Package warehouse builds the star schema from a normalized snapshot.
//
// Builders are pure functions: they read the snapshot and return new,
// key-sorted slices. Build runs the dimension builders concurrently, then the
// fact builder, and returns a Warehouse that is never mutated afterwards.
package warehouse

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unknown fills region attributes for states absent from the reference.
const Unknown = "Unknown"

// UnknownPaymentType marks fact rows whose order has no payment rows.
const UnknownPaymentType = "unknown"

// Location is a customer or seller dimension row.
type Location struct {
	Key          string
	ZipPrefix    string
	City         string
	State        string
	StateName    string
	Region       string
	EconomicZone string
}

type Product struct {
	Key               string
	Category          string
	CategoryEnglish   string
	WeightG           *float64
	LengthCm          *float64
	HeightCm          *float64
	WidthCm           *float64
	VolumeCm3         float64
	PhotosQty         *int
	NameLength        *int
	DescriptionLength *int
}

// Date is one observed purchase date. DayOfWeek runs 1=Sunday..7=Saturday.
type Date struct {
	Key       string
	FullDate  time.Time
	Year      int
	Quarter   int
	Month     int
	MonthName string
	Day       int
	DayOfWeek int
	DayName   string
	IsWeekend bool
}

// Payment aggregates every payment row of one order.
type Payment struct {
	Key               string
	Value             decimal.Decimal
	TotalInstallments int
	MethodsCount      int
	PrimaryType       string
	UsesCreditCard    bool
	UsesBoleto        bool
	UsesVoucher       bool
	UsesDebitCard     bool
}

// Review is the single review kept for an order. DaysToReview is nil when
// the order or either date is unknown.
type Review struct {
	Key               string
	ReviewID          string
	Score             *int
	HasCommentTitle   bool
	HasCommentMessage bool
	CreatedAt         *time.Time
	AnsweredAt        *time.Time
	DaysToReview      *int
}

// Order carries delivery metrics. The three derived fields are nil when an
// input timestamp is missing.
type Order struct {
	Key                    string
	Status                 string
	PurchasedAt            *time.Time
	ApprovedAt             *time.Time
	DeliveredCarrierAt     *time.Time
	DeliveredCustomerAt    *time.Time
	EstimatedDeliveryAt    *time.Time
	DaysToDelivery         *int
	DeliveryVsEstimateDays *int
	IsDeliveredOnTime      *bool
}

// Sale is one fact row at order-item grain.
type Sale struct {
	OrderItemSK string
	OrderKey    string
	CustomerKey string
	ProductKey  string
	SellerKey   string
	DateKey     string
	PaymentKey  string
	ReviewKey   *string
	OrderItemID int

	ItemPrice      decimal.Decimal
	FreightValue   decimal.Decimal
	TotalItemValue decimal.Decimal

	PaymentValue       decimal.Decimal
	TotalInstallments  int
	MethodsCount       int
	PrimaryPaymentType string
	UsesCreditCard     bool
	UsesBoleto         bool
	UsesVoucher        bool
	UsesDebitCard      bool
	Quantity           int
}

// FactStats counts fact rows dropped by the inner joins and rows that fell
// back to defaults on the left joins.
type FactStats struct {
	Input           int `json:"input"`
	Kept            int `json:"kept"`
	MissingOrder    int `json:"missing_order"`
	MissingCustomer int `json:"missing_customer"`
	MissingDate     int `json:"missing_date"`
	MissingPayment  int `json:"missing_payment"`
	MissingReview   int `json:"missing_review"`
	MissingPrice    int `json:"missing_price"`
}

// Stats collects per-builder drop counts.
type Stats struct {
	CustomersDropped int       `json:"customers_dropped"`
	SellersDropped   int       `json:"sellers_dropped"`
	Fact             FactStats `json:"fact"`
}

// Warehouse is the complete output of one run.
type Warehouse struct {
	Customers []Location
	Sellers   []Location
	Products  []Product
	Dates     []Date
	Payments  []Payment
	Reviews   []Review
	Orders    []Order
	Sales     []Sale

	// Regions lists the reference region names; region rules reject anything
	// outside it other than Unknown.
	Regions []string

	Stats Stats
}
