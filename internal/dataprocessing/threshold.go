package dataprocessing

import (
	"github.com/shopspring/decimal"

	"salesreport/pkg/contracts/domain"
)

// DefaultThresholdOffset places the threshold one unit under the average
var DefaultThresholdOffset = decimal.NewFromInt(-1)

// AnalyzeThreshold flags, per reference, the months whose bucket is strictly
// below average+offset. Every row carries one cell per month of the
// aggregate; the cell holds the bucket when flagged and zero otherwise. A
// month without a bucket for the reference is never flagged.
func AnalyzeThreshold(agg *MonthlyAggregate, offset decimal.Decimal) *domain.ResultTable {
	table := &domain.ResultTable{
		Months:          append([]domain.Month(nil), agg.Months...),
		Rows:            make([]domain.ProductSummary, 0, len(agg.References)),
		MonthsInRange:   agg.MonthsInRange,
		ThresholdOffset: offset,
	}

	for _, ref := range agg.References {
		avg := agg.Averages[ref]
		summary := domain.ProductSummary{
			Reference:                   ref,
			TotalQuantity:               agg.Totals[ref],
			MonthlyAverage:              avg,
			ThresholdValue:              avg.Add(offset),
			MonthlyQuantities:           make([]domain.MonthQuantity, 0, len(agg.Months)),
			BelowThresholdMonths:        []domain.Month{},
			BelowThresholdTotalQuantity: decimal.Zero,
		}

		for _, m := range agg.Months {
			cell := domain.MonthQuantity{Month: m, Quantity: decimal.Zero}
			if q, ok := agg.Bucket(ref, m); ok && q.LessThan(summary.ThresholdValue) {
				cell.Quantity = q
				cell.Below = true
				summary.BelowThresholdMonthCount++
				summary.BelowThresholdMonths = append(summary.BelowThresholdMonths, m)
				summary.BelowThresholdTotalQuantity = summary.BelowThresholdTotalQuantity.Add(q)
			}
			summary.MonthlyQuantities = append(summary.MonthlyQuantities, cell)
		}

		table.Rows = append(table.Rows, summary)
	}

	return table
}
