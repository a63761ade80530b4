// Package fixture generates synthetic Olist-shaped snapshots. The rows are
// internally consistent (every item references a generated order, product
// and seller; payments add up to the order total) so a generated snapshot
// builds a warehouse that passes validation unless Options ask for defects.
package fixture

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"elt/internal/config"
)

// tsLayout is the timestamp layout of the public extract.
const tsLayout = "2006-01-02 15:04:05"

// Options sizes and shapes a snapshot. Zero values select the defaults.
type Options struct {
	// Seed makes output reproducible; 0 draws a random seed.
	Seed uint64

	Customers int
	Sellers   int
	Products  int
	Orders    int

	// Start and End bound order purchase timestamps.
	Start time.Time
	End   time.Time

	// UnmappedRate is the fraction of customers placed in state "ZZ", which
	// the region reference does not list.
	UnmappedRate float64
	// LateRate is the fraction of delivered orders that arrive after the
	// estimate.
	LateRate float64
	// ReviewRate is the fraction of orders with a review.
	ReviewRate float64
	// OmitPayments leaves the payments file empty of rows.
	OmitPayments bool
}

func (o Options) withDefaults() Options {
	if o.Customers <= 0 {
		o.Customers = 200
	}
	if o.Sellers <= 0 {
		o.Sellers = 25
	}
	if o.Products <= 0 {
		o.Products = 80
	}
	if o.Orders <= 0 {
		o.Orders = 300
	}
	if o.Start.IsZero() {
		o.Start = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if o.End.IsZero() || !o.End.After(o.Start) {
		o.End = o.Start.AddDate(1, 8, 0)
	}
	if o.LateRate == 0 {
		o.LateRate = 0.08
	}
	if o.ReviewRate == 0 {
		o.ReviewRate = 0.9
	}
	return o
}

// Table is one raw CSV stream: a header and string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Snapshot holds one Table per entity name (see config.Entities).
type Snapshot struct {
	Tables map[string]*Table
}

// Rows returns the row count of entity.
func (s *Snapshot) Rows(entity string) int {
	if t, ok := s.Tables[entity]; ok {
		return len(t.Rows)
	}
	return 0
}

// Generate builds a snapshot.
func Generate(opts Options) *Snapshot {
	opts = opts.withDefaults()
	g := &generator{f: gofakeit.New(opts.Seed), opts: opts, snap: newSnapshot()}
	g.references()
	g.customers()
	g.sellers()
	g.products()
	g.orders()
	return g.snap
}

func newSnapshot() *Snapshot {
	headers := map[string][]string{
		config.EntityCustomers:           {"customer_id", "customer_unique_id", "customer_zip_code_prefix", "customer_city", "customer_state"},
		config.EntityOrders:              {"order_id", "customer_id", "order_status", "order_purchase_timestamp", "order_approved_at", "order_delivered_carrier_date", "order_delivered_customer_date", "order_estimated_delivery_date"},
		config.EntityOrderItems:          {"order_id", "order_item_id", "product_id", "seller_id", "shipping_limit_date", "price", "freight_value"},
		config.EntityPayments:            {"order_id", "payment_sequential", "payment_type", "payment_installments", "payment_value"},
		config.EntityReviews:             {"review_id", "order_id", "review_score", "review_comment_title", "review_comment_message", "review_creation_date", "review_answer_timestamp"},
		config.EntityProducts:            {"product_id", "product_category_name", "product_name_lenght", "product_description_lenght", "product_photos_qty", "product_weight_g", "product_length_cm", "product_height_cm", "product_width_cm"},
		config.EntitySellers:             {"seller_id", "seller_zip_code_prefix", "seller_city", "seller_state"},
		config.EntityCategoryTranslation: {"product_category_name", "product_category_name_english"},
		config.EntityStateRegion:         {"state_code", "state_name", "region", "economic_zone"},
	}
	s := &Snapshot{Tables: make(map[string]*Table, len(headers))}
	for entity, h := range headers {
		s.Tables[entity] = &Table{Header: h}
	}
	return s
}

// WriteDir writes every table to dir under its default Olist file name.
func (s *Snapshot) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fixture: mkdir %s: %w", dir, err)
	}
	for _, entity := range config.Entities {
		t, ok := s.Tables[entity]
		if !ok {
			continue
		}
		if err := writeCSV(filepath.Join(dir, config.DefaultFiles[entity]), t); err != nil {
			return fmt.Errorf("fixture: %s: %w", entity, err)
		}
	}
	return nil
}

func writeCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type generator struct {
	f    *gofakeit.Faker
	opts Options
	snap *Snapshot

	customerIDs []string
	sellerIDs   []string
	productIDs  []string
}

func (g *generator) add(entity string, row ...string) {
	t := g.snap.Tables[entity]
	t.Rows = append(t.Rows, row)
}

func (g *generator) references() {
	for _, s := range BrazilStates {
		g.add(config.EntityStateRegion, s.Code, s.Name, s.Region, s.EconomicZone)
	}
	for _, c := range categories {
		if c[1] != "" {
			g.add(config.EntityCategoryTranslation, c[0], c[1])
		}
	}
}

func (g *generator) state() string {
	return g.f.RandomString(busyStates)
}

func (g *generator) customers() {
	var unique string
	for i := 0; i < g.opts.Customers; i++ {
		id := g.hexID()
		// Roughly one customer in eight is a repeat buyer with a new
		// customer_id under an existing unique id.
		if unique == "" || g.f.Float64() >= 0.125 {
			unique = g.hexID()
		}
		state := g.state()
		if g.f.Float64() < g.opts.UnmappedRate {
			state = "ZZ"
		}
		g.customerIDs = append(g.customerIDs, id)
		g.add(config.EntityCustomers, id, unique, g.zip(), g.f.City(), state)
	}
}

func (g *generator) sellers() {
	for i := 0; i < g.opts.Sellers; i++ {
		id := g.hexID()
		g.sellerIDs = append(g.sellerIDs, id)
		g.add(config.EntitySellers, id, g.zip(), g.f.City(), g.state())
	}
}

func (g *generator) products() {
	for i := 0; i < g.opts.Products; i++ {
		id := g.hexID()
		g.productIDs = append(g.productIDs, id)
		category := categories[g.f.IntRange(0, len(categories)-1)][0]
		if g.f.Float64() < 0.02 {
			category = ""
		}
		g.add(config.EntityProducts,
			id,
			category,
			strconv.Itoa(g.f.IntRange(10, 76)),
			strconv.Itoa(g.f.IntRange(50, 3000)),
			strconv.Itoa(g.f.IntRange(1, 6)),
			strconv.Itoa(g.f.IntRange(100, 15000)),
			strconv.Itoa(g.f.IntRange(11, 80)),
			strconv.Itoa(g.f.IntRange(2, 60)),
			strconv.Itoa(g.f.IntRange(11, 60)),
		)
	}
}

// orders emits orders with their items, payments and reviews. Item prices
// stay in a narrow band so an order's payment never exceeds twenty times a
// single item's value.
func (g *generator) orders() {
	for i := 0; i < g.opts.Orders; i++ {
		id := g.hexID()
		purchased := g.f.DateRange(g.opts.Start, g.opts.End).Truncate(time.Second)
		approved := purchased.Add(time.Duration(g.f.IntRange(10, 600)) * time.Minute)
		estimated := midnight(purchased.AddDate(0, 0, g.f.IntRange(15, 35)))

		status := "delivered"
		switch p := g.f.Float64(); {
		case p < 0.02:
			status = "canceled"
		case p < 0.05:
			status = "shipped"
		}

		var carrier, delivered string
		var deliveredAt time.Time
		if status != "canceled" {
			carrier = approved.Add(time.Duration(g.f.IntRange(12, 96)) * time.Hour).Format(tsLayout)
		}
		if status == "delivered" {
			deliveredAt = estimated.AddDate(0, 0, -g.f.IntRange(1, 12)).Add(time.Duration(g.f.IntRange(8, 20)) * time.Hour)
			if g.f.Float64() < g.opts.LateRate {
				deliveredAt = estimated.AddDate(0, 0, g.f.IntRange(1, 15)).Add(time.Duration(g.f.IntRange(8, 20)) * time.Hour)
			}
			if deliveredAt.Sub(purchased) < 48*time.Hour {
				deliveredAt = purchased.Add(48 * time.Hour)
			}
			delivered = deliveredAt.Format(tsLayout)
		}

		customer := g.customerIDs[g.f.IntRange(0, len(g.customerIDs)-1)]
		g.add(config.EntityOrders, id, customer, status,
			purchased.Format(tsLayout), approved.Format(tsLayout), carrier, delivered, estimated.Format(tsLayout))

		total := g.items(id, approved)
		if !g.opts.OmitPayments {
			g.payments(id, total)
		}
		if g.f.Float64() < g.opts.ReviewRate {
			g.review(id, purchased, deliveredAt)
		}
	}
}

func (g *generator) items(orderID string, approved time.Time) decimal.Decimal {
	total := decimal.Zero
	seller := g.sellerIDs[g.f.IntRange(0, len(g.sellerIDs)-1)]
	limit := approved.AddDate(0, 0, 6).Format(tsLayout)
	n := 1
	if p := g.f.Float64(); p < 0.1 {
		n = 3
	} else if p < 0.25 {
		n = 2
	}
	for seq := 1; seq <= n; seq++ {
		price := decimal.NewFromFloat(g.f.Float64Range(40, 200)).Round(2)
		freight := decimal.NewFromFloat(g.f.Float64Range(5, 30)).Round(2)
		total = total.Add(price).Add(freight)
		product := g.productIDs[g.f.IntRange(0, len(g.productIDs)-1)]
		g.add(config.EntityOrderItems, orderID, strconv.Itoa(seq), product, seller, limit,
			price.StringFixed(2), freight.StringFixed(2))
	}
	return total
}

var paymentTypes = []string{"credit_card", "credit_card", "credit_card", "boleto", "debit_card"}

// payments splits total into one or two installments whose sum is exact.
func (g *generator) payments(orderID string, total decimal.Decimal) {
	primary := g.f.RandomString(paymentTypes)
	installments := 1
	if primary == "credit_card" {
		installments = g.f.IntRange(1, 10)
	}
	if g.f.Float64() < 0.1 {
		voucher := total.Mul(decimal.NewFromFloat(0.2)).Round(2)
		g.add(config.EntityPayments, orderID, "1", primary, strconv.Itoa(installments), total.Sub(voucher).StringFixed(2))
		g.add(config.EntityPayments, orderID, "2", "voucher", "1", voucher.StringFixed(2))
		return
	}
	g.add(config.EntityPayments, orderID, "1", primary, strconv.Itoa(installments), total.StringFixed(2))
}

// review is created a day after delivery, or a week after purchase for
// orders that were never delivered.
func (g *generator) review(orderID string, purchased, delivered time.Time) {
	created := midnight(purchased.AddDate(0, 0, 7))
	score := g.f.IntRange(3, 5)
	if !delivered.IsZero() {
		created = midnight(delivered.AddDate(0, 0, 1))
	}
	var title, message string
	if g.f.Float64() < 0.4 {
		title = g.f.Word()
		message = g.f.Sentence(8)
	}
	answered := created.Add(time.Duration(g.f.IntRange(2, 72)) * time.Hour)
	g.add(config.EntityReviews, g.hexID(), orderID, strconv.Itoa(score), title, message,
		created.Format(tsLayout), answered.Format(tsLayout))
}

// hexID returns a 32-character lowercase hex id like the extract's keys.
func (g *generator) hexID() string {
	return strings.ReplaceAll(g.f.UUID(), "-", "")
}

// zip returns a five-digit CEP prefix.
func (g *generator) zip() string {
	return fmt.Sprintf("%05d", g.f.IntRange(1000, 99999))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
