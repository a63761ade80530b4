package warehouse

import (
	"cmp"
	"slices"
	"time"

	"elt/internal/normalize"
)

// DateLayout is the string form of date keys.
const DateLayout = "2006-01-02"

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// dayNames is indexed by DayOfWeek-1 (1=Sunday).
var dayNames = [...]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// DateKey returns the date key of t, or "" for nil.
func DateKey(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// NewDate derives the calendar attributes of day (time of day is ignored).
func NewDate(day time.Time) Date {
	y, m, d := day.Date()
	month := int(m)
	dow := int(day.Weekday()) + 1
	return Date{
		Key:       day.Format(DateLayout),
		FullDate:  time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Year:      y,
		Quarter:   (month-1)/3 + 1,
		Month:     month,
		MonthName: monthNames[month-1],
		Day:       d,
		DayOfWeek: dow,
		DayName:   dayNames[dow-1],
		IsWeekend: dow == 1 || dow == 7,
	}
}

// BuildDates returns one row per distinct purchase date observed in orders.
func BuildDates(orders []normalize.Order) []Date {
	seen := make(map[string]Date)
	for _, o := range orders {
		if o.PurchasedAt == nil {
			continue
		}
		k := DateKey(o.PurchasedAt)
		if _, ok := seen[k]; !ok {
			seen[k] = NewDate(*o.PurchasedAt)
		}
	}
	out := make([]Date, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Date) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

// daysBetween counts calendar days from a to b (b-a), ignoring time of day.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
