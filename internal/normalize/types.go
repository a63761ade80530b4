// Package normalize turns raw snapshot records into typed entities.
//
// Every Normalize* function is pure: it reads a slice of records and returns
// the entities it could build plus the number of records dropped because an
// identifying key was missing. Non-key fields that fail to coerce become nil
// (or the empty string for text) and never fail the record.
package normalize

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is one order-time customer identity. Several CustomerIDs may map
// to the same UniqueID.
type Customer struct {
	CustomerID string
	UniqueID   string
	ZipPrefix  string
	City       string
	State      string
}

type Order struct {
	OrderID             string
	CustomerID          string
	Status              string
	PurchasedAt         *time.Time
	ApprovedAt          *time.Time
	DeliveredCarrierAt  *time.Time
	DeliveredCustomerAt *time.Time
	EstimatedDeliveryAt *time.Time
}

// OrderItem is one physical line of an order. ItemID is the per-order
// sequence number.
type OrderItem struct {
	OrderID       string
	ItemID        int
	ProductID     string
	SellerID      string
	ShippingLimit *time.Time
	Price         decimal.NullDecimal
	Freight       decimal.NullDecimal
}

type Payment struct {
	OrderID      string
	Sequential   int
	Type         string
	Installments *int
	Value        decimal.NullDecimal
}

type Review struct {
	ReviewID   string
	OrderID    string
	Score      *int
	Title      string
	Message    string
	CreatedAt  *time.Time
	AnsweredAt *time.Time
}

type Product struct {
	ProductID         string
	Category          string
	NameLength        *int
	DescriptionLength *int
	PhotosQty         *int
	WeightG           *float64
	LengthCm          *float64
	HeightCm          *float64
	WidthCm           *float64
}

type Seller struct {
	SellerID  string
	ZipPrefix string
	City      string
	State     string
}

// CategoryTranslation maps a source-language product category to English.
type CategoryTranslation struct {
	Category string
	English  string
}

// StateRegion is one row of the state reference table.
type StateRegion struct {
	StateCode    string
	StateName    string
	Region       string
	EconomicZone string
}

// Snapshot is the fully normalized input of one run. It is built once and
// only read afterwards.
type Snapshot struct {
	Customers    []Customer
	Orders       []Order
	OrderItems   []OrderItem
	Payments     []Payment
	Reviews      []Review
	Products     []Product
	Sellers      []Seller
	Translations []CategoryTranslation
	StateRegions []StateRegion

	Stats Stats
}

// SourceStats counts what happened to one raw stream. Skipped rows never
// reached the normalizer (parse errors); Dropped rows lacked a key.
type SourceStats struct {
	Read    int `json:"read"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
	Skipped int `json:"skipped"`
}

// Stats maps entity name to its counts.
type Stats map[string]SourceStats

// Payment types known to the extract. Only the first four carry a flag in
// the payment dimension.
const (
	PaymentCreditCard = "credit_card"
	PaymentBoleto     = "boleto"
	PaymentVoucher    = "voucher"
	PaymentDebitCard  = "debit_card"
	PaymentNotDefined = "not_defined"
)
