// Package config defines the canonical, serializable configuration model for
// the warehouse build. A pipeline file (JSON or YAML) is decoded into
// Pipeline and passed through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the structure used in pipeline files
//     under configs/pipelines/.
//  3. Minimalism: decoding is performed by encoding/json or yaml.v3, with a
//     light Options helper for typed access to parser-specific knobs.
//
// Example (trimmed):
//
//	{
//	  "job":     "olist_marts",
//	  "source":  { "kind": "file", "base": "data/brazilian-ecommerce" },
//	  "parser":  { "kind": "csv", "options": { "comma": "," } },
//	  "storage": { "kind": "sqlite", "db": { "dsn": "file:olist.db" } },
//	  "validation": { "payment_max_multiple": 20 }
//	}
package config

import "encoding/json"

// Entity names for every raw stream the warehouse consumes. They double as
// keys of Source.Files.
const (
	EntityCustomers           = "customers"
	EntityOrders              = "orders"
	EntityOrderItems          = "order_items"
	EntityPayments            = "payments"
	EntityReviews             = "reviews"
	EntityProducts            = "products"
	EntitySellers             = "sellers"
	EntityCategoryTranslation = "category_translation"
	EntityStateRegion         = "state_region"
)

// Entities lists all entity names in a stable order.
var Entities = []string{
	EntityCustomers,
	EntityOrders,
	EntityOrderItems,
	EntityPayments,
	EntityReviews,
	EntityProducts,
	EntitySellers,
	EntityCategoryTranslation,
	EntityStateRegion,
}

// DefaultFiles maps each entity to the object name used by the public Olist
// extract. The state→region reference ships with the repository.
var DefaultFiles = map[string]string{
	EntityCustomers:           "olist_customers_dataset.csv",
	EntityOrders:              "olist_orders_dataset.csv",
	EntityOrderItems:          "olist_order_items_dataset.csv",
	EntityPayments:            "olist_order_payments_dataset.csv",
	EntityReviews:             "olist_order_reviews_dataset.csv",
	EntityProducts:            "olist_products_dataset.csv",
	EntitySellers:             "olist_sellers_dataset.csv",
	EntityCategoryTranslation: "product_category_name_translation.csv",
	EntityStateRegion:         "brazil_state_regions.csv",
}

// Pipeline describes the full warehouse build. It is the top-level object
// decoded from a pipeline file (e.g., configs/pipelines/olist.json).
type Pipeline struct {
	// Job names the run for metrics grouping and the report.
	Job string `json:"job" yaml:"job"`

	// Source describes where the raw snapshot comes from.
	Source Source `json:"source" yaml:"source"`

	// Parser configures how raw bytes are turned into records.
	Parser Parser `json:"parser" yaml:"parser"`

	// Storage describes where the star schema is written.
	Storage Storage `json:"storage" yaml:"storage"`

	// Validation tunes the business-rule thresholds and custom rules.
	Validation Validation `json:"validation" yaml:"validation"`

	// Report controls where the validation report is written.
	Report Report `json:"report" yaml:"report"`

	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`
}

// RuntimeConfig controls concurrency, batching, and channel buffer sizes of
// the publish stage.
type RuntimeConfig struct {
	LoaderWorkers int `json:"loader_workers" yaml:"loader_workers"`
	BatchSize     int `json:"batch_size" yaml:"batch_size"`
	ChannelBuffer int `json:"channel_buffer" yaml:"channel_buffer"`
}

// Source identifies the snapshot location.
type Source struct {
	// Kind selects the source implementation: "file", "s3", "gcs" or "http".
	Kind string `json:"kind" yaml:"kind"`

	// Base is the directory (file), "bucket/prefix" (s3, gcs), a base URL
	// (http) or a full s3:// / gs:// URI under which the entity files live.
	Base string `json:"base" yaml:"base"`

	// Files overrides per-entity object names relative to Base. Entities not
	// listed fall back to DefaultFiles. An absolute path or URI is used as-is.
	Files map[string]string `json:"files" yaml:"files"`

	// Region is the AWS region for the "s3" kind; empty uses the SDK chain.
	Region string `json:"region" yaml:"region"`
}

// File returns the configured object name for entity.
func (s Source) File(entity string) string {
	if f, ok := s.Files[entity]; ok && f != "" {
		return f
	}
	return DefaultFiles[entity]
}

// Parser selects how to parse each raw stream into records.
type Parser struct {
	// Kind selects the parser implementation: "csv" or "jsonl".
	Kind string `json:"kind" yaml:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV, typical keys include:
	//   comma (string), encoding (string), lazy_quotes (bool)
	// For JSON lines:
	//   payload_field (string)
	Options Options `json:"options" yaml:"options"`
}

// Storage selects the sink used to persist the star schema.
type Storage struct {
	// Kind selects the storage implementation: "sqlite", "postgres",
	// "mssql" or "mysql".
	Kind string `json:"kind" yaml:"kind"`

	DB DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the DB sink.
type DBConfig struct {
	// DSN is the driver connection string.
	DSN string `json:"dsn" yaml:"dsn"`

	// Schema optionally qualifies every table name (e.g., "olist_marts").
	Schema string `json:"schema" yaml:"schema"`
}

// Validation carries the heuristic thresholds used by the validator. Zero
// values mean "use the default"; see Thresholds.
type Validation struct {
	Tolerance          float64      `json:"tolerance" yaml:"tolerance"`
	PaymentMinRatio    float64      `json:"payment_min_ratio" yaml:"payment_min_ratio"`
	PaymentMaxMultiple float64      `json:"payment_max_multiple" yaml:"payment_max_multiple"`
	ReviewMinDays      *int         `json:"review_min_days" yaml:"review_min_days"`
	CustomRules        []CustomRule `json:"custom_rules" yaml:"custom_rules"`
}

// CustomRule is a per-fact-row predicate written in CEL. The row passes when
// Expression evaluates to true.
type CustomRule struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Expression  string `json:"expression" yaml:"expression"`
	// Severity is "error" (default) or "warning".
	Severity string `json:"severity" yaml:"severity"`
}

// Report controls the validation report sink.
type Report struct {
	// Path is where the JSON report is written; empty disables the file.
	Path string `json:"path" yaml:"path"`
}

// Options is a small helper to fetch typed values from arbitrary maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json and YAML integers as int, so both are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. This is useful for single-character parser settings such as
// a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null "options"
// object in JSON decodes to a non-nil, empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
