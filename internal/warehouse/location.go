package warehouse

import (
	"cmp"
	"slices"
	"strings"

	"elt/internal/normalize"
)

// RegionIndex resolves state codes case-insensitively.
type RegionIndex map[string]normalize.StateRegion

// NewRegionIndex indexes the reference table. Later rows win on duplicate
// codes.
func NewRegionIndex(rows []normalize.StateRegion) RegionIndex {
	idx := make(RegionIndex, len(rows))
	for _, r := range rows {
		idx[strings.ToUpper(strings.TrimSpace(r.StateCode))] = r
	}
	return idx
}

// Lookup returns the reference row for state or the Unknown fallback.
// Blank reference attributes also fall back to Unknown.
func (idx RegionIndex) Lookup(state string) (name, region, zone string) {
	r, ok := idx[strings.ToUpper(strings.TrimSpace(state))]
	if !ok {
		return "", Unknown, Unknown
	}
	return r.StateName, orUnknown(r.Region), orUnknown(r.EconomicZone)
}

// Regions returns the distinct region names of the reference, sorted.
func (idx RegionIndex) Regions() []string {
	seen := make(map[string]struct{}, 8)
	for _, r := range idx {
		seen[orUnknown(r.Region)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}

// locationSource extracts the business key and raw location attributes of
// one input record.
type locationSource[T any] struct {
	order  func(a, b T) int
	locate func(T) Location
}

// buildLocations collapses in onto one row per Location.Key and enriches each
// row with its region. Records are visited in the source's order (stable) and
// the last visited record wins for non-key attributes. Records with an empty
// key are dropped and counted.
func buildLocations[T any](in []T, src locationSource[T], regions RegionIndex) ([]Location, int) {
	visit := slices.Clone(in)
	slices.SortStableFunc(visit, src.order)

	byKey := make(map[string]Location, len(visit))
	dropped := 0
	for _, rec := range visit {
		loc := src.locate(rec)
		if loc.Key == "" {
			dropped++
			continue
		}
		byKey[loc.Key] = loc
	}

	out := make([]Location, 0, len(byKey))
	for _, loc := range byKey {
		loc.StateName, loc.Region, loc.EconomicZone = regions.Lookup(loc.State)
		out = append(out, loc)
	}
	slices.SortFunc(out, func(a, b Location) int { return cmp.Compare(a.Key, b.Key) })
	return out, dropped
}

// BuildCustomers keys customers by customer_unique_id. When several
// order-time identities share a unique id, the one with the greatest
// customer_id wins ("any value, assumed consistent per customer").
func BuildCustomers(in []normalize.Customer, regions RegionIndex) ([]Location, int) {
	return buildLocations(in, locationSource[normalize.Customer]{
		order: func(a, b normalize.Customer) int { return cmp.Compare(a.CustomerID, b.CustomerID) },
		locate: func(c normalize.Customer) Location {
			return Location{Key: c.UniqueID, ZipPrefix: c.ZipPrefix, City: c.City, State: c.State}
		},
	}, regions)
}

// BuildSellers keys sellers by seller_id; the last duplicate in input order
// wins.
func BuildSellers(in []normalize.Seller, regions RegionIndex) ([]Location, int) {
	return buildLocations(in, locationSource[normalize.Seller]{
		order: func(a, b normalize.Seller) int { return cmp.Compare(a.SellerID, b.SellerID) },
		locate: func(s normalize.Seller) Location {
			return Location{Key: s.SellerID, ZipPrefix: s.ZipPrefix, City: s.City, State: s.State}
		},
	}, regions)
}

// customerKeys maps order-time customer_id to the dimension key.
func customerKeys(in []normalize.Customer) map[string]string {
	m := make(map[string]string, len(in))
	for _, c := range in {
		if c.UniqueID != "" {
			m[c.CustomerID] = c.UniqueID
		}
	}
	return m
}
