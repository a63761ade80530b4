// Package records defines the loosely typed row representation that flows
// from parsers into the source normalizer.
package records

// Record is one raw source row keyed by column name. CSV parsers fill string
// values; JSON-lines parsers may also carry float64, bool or nil.
type Record map[string]any

// Get returns the value stored under key and whether it was present and
// non-nil.
func (r Record) Get(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
