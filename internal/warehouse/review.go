package warehouse

import (
	"cmp"
	"slices"
	"time"

	"elt/internal/normalize"
)

// BuildReviews keeps one review per order. Duplicates resolve to the latest
// creation timestamp (missing sorts first), then to the highest review_id.
// DaysToReview is measured from the order's purchase date in calendar days.
func BuildReviews(in []normalize.Review, orders []normalize.Order) []Review {
	purchased := make(map[string]*time.Time, len(orders))
	for _, o := range orders {
		purchased[o.OrderID] = o.PurchasedAt
	}

	best := make(map[string]normalize.Review, len(in))
	for _, r := range in {
		cur, ok := best[r.OrderID]
		if !ok || newerReview(r, cur) {
			best[r.OrderID] = r
		}
	}

	out := make([]Review, 0, len(best))
	for id, r := range best {
		row := Review{
			Key:               id,
			ReviewID:          r.ReviewID,
			Score:             r.Score,
			HasCommentTitle:   r.Title != "",
			HasCommentMessage: r.Message != "",
			CreatedAt:         r.CreatedAt,
			AnsweredAt:        r.AnsweredAt,
		}
		if p := purchased[id]; p != nil && r.CreatedAt != nil {
			d := daysBetween(*p, *r.CreatedAt)
			row.DaysToReview = &d
		}
		out = append(out, row)
	}
	slices.SortFunc(out, func(a, b Review) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

func newerReview(a, b normalize.Review) bool {
	switch {
	case a.CreatedAt == nil && b.CreatedAt != nil:
		return false
	case a.CreatedAt != nil && b.CreatedAt == nil:
		return true
	case a.CreatedAt != nil && !a.CreatedAt.Equal(*b.CreatedAt):
		return a.CreatedAt.After(*b.CreatedAt)
	}
	return a.ReviewID > b.ReviewID
}
