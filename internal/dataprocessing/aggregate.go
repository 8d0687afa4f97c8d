package dataprocessing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"salesreport/pkg/contracts/domain"
)

// MonthlyAggregate holds per-reference monthly sums over a date window
type MonthlyAggregate struct {
	Window        domain.DateRange
	MonthsInRange int
	// Months is every month present in the input, ascending
	Months []domain.Month
	// References is every product reference, ascending. Numeric references
	// compare by value and sort before the others.
	References []string
	Buckets    map[string]map[domain.Month]decimal.Decimal
	Totals     map[string]decimal.Decimal
	Averages   map[string]decimal.Decimal
}

// Bucket returns the summed quantity of ref in m and whether any record
// contributed to it.
func (a *MonthlyAggregate) Bucket(ref string, m domain.Month) (decimal.Decimal, bool) {
	q, ok := a.Buckets[ref][m]
	return q, ok
}

// MonthsInRange counts the calendar months touched by [start, end]. The day
// of month is ignored.
func MonthsInRange(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
}

// Aggregate sums quantities by (reference, month) and computes each
// reference's total and its average over the months of the window. The
// window is validated before any record is read.
func Aggregate(records []domain.SalesRecord, window domain.DateRange) (*MonthlyAggregate, error) {
	if err := ValidateWindow(window); err != nil {
		return nil, err
	}

	agg := &MonthlyAggregate{
		Window:        window,
		MonthsInRange: MonthsInRange(window.Start, window.End),
		Buckets:       make(map[string]map[domain.Month]decimal.Decimal),
		Totals:        make(map[string]decimal.Decimal),
		Averages:      make(map[string]decimal.Decimal),
	}

	months := make(map[domain.Month]struct{})
	for _, r := range records {
		agg.Totals[r.Reference] = agg.Totals[r.Reference].Add(r.Quantity)

		if r.SaleDate == nil {
			continue
		}
		m := domain.MonthOf(*r.SaleDate)
		months[m] = struct{}{}

		byMonth, ok := agg.Buckets[r.Reference]
		if !ok {
			byMonth = make(map[domain.Month]decimal.Decimal)
			agg.Buckets[r.Reference] = byMonth
		}
		byMonth[m] = byMonth[m].Add(r.Quantity)
	}

	divisor := decimal.NewFromInt(int64(agg.MonthsInRange))
	for ref, total := range agg.Totals {
		agg.References = append(agg.References, ref)
		agg.Averages[ref] = total.Div(divisor)
	}
	sort.Slice(agg.References, func(i, j int) bool {
		return lessReference(agg.References[i], agg.References[j])
	})

	for m := range months {
		agg.Months = append(agg.Months, m)
	}
	sort.Slice(agg.Months, func(i, j int) bool {
		return agg.Months[i].Before(agg.Months[j])
	})

	return agg, nil
}

// lessReference orders numeric references by value ahead of text ones,
// which compare bytewise. Equal values such as "7" and "07" fall back to
// the text order.
func lessReference(a, b string) bool {
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	switch {
	case errA == nil && errB == nil:
		if c := da.Cmp(db); c != 0 {
			return c < 0
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
