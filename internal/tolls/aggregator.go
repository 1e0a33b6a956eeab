package tolls

import (
	"sort"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
)

// AggregateWeekly groups notices into (year, week) buckets and computes the
// per-week totals the UI shows. It is a pure function: same input order in,
// byte-identical output out. Buckets are always rebuilt from scratch, never
// patched incrementally.
//
// Output is sorted most recent week first (year desc, then week desc).
// Members inside a bucket keep input order.
func AggregateWeekly(notices []models.RentalTollNotice) []models.WeeklyTollSummary {
	type bucketKey struct {
		year int
		week int
	}

	buckets := map[bucketKey]*models.WeeklyTollSummary{}
	order := []bucketKey{}

	for _, n := range notices {
		key := bucketKey{year: n.Year, week: n.WeekOfYear}
		s, ok := buckets[key]
		if !ok {
			start, end := WeekBounds(n.Year, n.WeekOfYear)
			s = &models.WeeklyTollSummary{
				WeekOfYear: n.WeekOfYear,
				Year:       n.Year,
				WeekStart:  start,
				WeekEnd:    end,
			}
			buckets[key] = s
			order = append(order, key)
		}

		s.TotalTolls++
		s.TotalAmount += n.TotalAmount
		s.TotalAdminFees += n.AdminFee
		if n.IsPaid {
			s.PaidCount++
		} else {
			s.UnpaidCount++
		}
		s.Notices = append(s.Notices, n)
	}

	out := make([]models.WeeklyTollSummary, 0, len(order))
	for _, key := range order {
		out = append(out, *buckets[key])
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].WeekOfYear > out[j].WeekOfYear
	})

	return out
}
