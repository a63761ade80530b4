package warehouse

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"elt/internal/normalize"
)

// Volume returns length*height*width when all three are present and
// strictly positive, and 0 otherwise.
func Volume(l, h, w *float64) float64 {
	if l == nil || h == nil || w == nil || *l <= 0 || *h <= 0 || *w <= 0 {
		return 0
	}
	return *l * *h * *w
}

// BuildProducts keeps the last record per product_id and joins the English
// category name. The join ignores case and surrounding whitespace; a missing
// translation falls back to the source-language name.
func BuildProducts(in []normalize.Product, translations []normalize.CategoryTranslation) []Product {
	fold := cases.Fold()
	key := func(s string) string { return fold.String(strings.TrimSpace(s)) }

	english := make(map[string]string, len(translations))
	for _, t := range translations {
		if t.English != "" {
			english[key(t.Category)] = t.English
		}
	}

	byID := make(map[string]normalize.Product, len(in))
	for _, p := range in {
		byID[p.ProductID] = p
	}

	out := make([]Product, 0, len(byID))
	for id, p := range byID {
		en, ok := english[key(p.Category)]
		if !ok {
			en = p.Category
		}
		out = append(out, Product{
			Key:               id,
			Category:          p.Category,
			CategoryEnglish:   en,
			WeightG:           p.WeightG,
			LengthCm:          p.LengthCm,
			HeightCm:          p.HeightCm,
			WidthCm:           p.WidthCm,
			VolumeCm3:         Volume(p.LengthCm, p.HeightCm, p.WidthCm),
			PhotosQty:         p.PhotosQty,
			NameLength:        p.NameLength,
			DescriptionLength: p.DescriptionLength,
		})
	}
	slices.SortFunc(out, func(a, b Product) int { return cmp.Compare(a.Key, b.Key) })
	return out
}
