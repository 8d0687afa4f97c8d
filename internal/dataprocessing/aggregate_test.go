package dataprocessing

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salesreport/internal/errors"
	"salesreport/pkg/contracts/domain"
)

func TestMonthsInRange(t *testing.T) {
	tests := []struct {
		start, end time.Time
		want       int
	}{
		{date(2023, 7, 1), date(2023, 12, 31), 6},
		{date(2023, 7, 15), date(2023, 12, 1), 6},
		{date(2023, 7, 15), date(2023, 8, 1), 2},
		{date(2023, 7, 1), date(2023, 7, 31), 1},
		{date(2023, 11, 1), date(2024, 2, 1), 4},
		{date(2022, 1, 1), date(2023, 12, 31), 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MonthsInRange(tt.start, tt.end), "%s..%s", tt.start.Format(domain.DateLayout), tt.end.Format(domain.DateLayout))
	}
}

func aggregateRecords() []domain.SalesRecord {
	return []domain.SalesRecord{
		rec("B", 4, date(2023, 8, 2), "", "", ""),
		rec("A", 10, date(2023, 7, 5), "", "", ""),
		rec("A", 5, date(2023, 7, 20), "", "", ""),
		rec("A", -2, date(2023, 9, 9), "", "", ""),
		rec("B", 6, date(2023, 8, 30), "", "", ""),
	}
}

func TestAggregate(t *testing.T) {
	window := domain.DateRange{Start: date(2023, 7, 1), End: date(2023, 9, 30)}
	agg, err := Aggregate(aggregateRecords(), window)
	require.NoError(t, err)

	assert.Equal(t, 3, agg.MonthsInRange)
	assert.Equal(t, []string{"A", "B"}, agg.References)
	assert.Equal(t, []domain.Month{
		{Year: 2023, Month: time.July},
		{Year: 2023, Month: time.August},
		{Year: 2023, Month: time.September},
	}, agg.Months)

	july, ok := agg.Bucket("A", domain.Month{Year: 2023, Month: time.July})
	require.True(t, ok)
	assert.True(t, july.Equal(decimal.NewFromInt(15)))

	_, ok = agg.Bucket("B", domain.Month{Year: 2023, Month: time.July})
	assert.False(t, ok)

	assert.True(t, agg.Totals["A"].Equal(decimal.NewFromInt(13)))
	assert.True(t, agg.Totals["B"].Equal(decimal.NewFromInt(10)))
	assert.True(t, agg.Averages["B"].Equal(decimal.NewFromInt(10).Div(decimal.NewFromInt(3))))
}

func TestAggregateBucketsSumToTotals(t *testing.T) {
	window := domain.DateRange{Start: date(2023, 7, 1), End: date(2023, 12, 31)}
	agg, err := Aggregate(aggregateRecords(), window)
	require.NoError(t, err)

	for _, ref := range agg.References {
		sum := decimal.Zero
		for _, q := range agg.Buckets[ref] {
			sum = sum.Add(q)
		}
		assert.True(t, sum.Equal(agg.Totals[ref]), "ref %s: buckets %s, total %s", ref, sum, agg.Totals[ref])
	}
}

func TestAggregateInvalidRange(t *testing.T) {
	window := domain.DateRange{Start: date(2023, 10, 1), End: date(2023, 9, 30)}
	agg, err := Aggregate(aggregateRecords(), window)
	require.Error(t, err)
	assert.Nil(t, agg)
	assert.True(t, errors.Is(err, ErrInvalidDateRange))
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
}

func TestAnalyzeThresholdX1(t *testing.T) {
	records := []domain.SalesRecord{
		rec("X1", 10, date(2023, 7, 5), "", "", ""),
		rec("X1", 8, date(2023, 8, 10), "", "", ""),
		rec("X1", -3, date(2023, 9, 1), "", "", ""),
	}
	agg, err := Aggregate(records, domain.DateRange{Start: date(2023, 7, 1), End: date(2023, 9, 30)})
	require.NoError(t, err)

	table := AnalyzeThreshold(agg, DefaultThresholdOffset)
	require.Len(t, table.Rows, 1)
	require.Len(t, table.Months, 3)

	row := table.Rows[0]
	assert.Equal(t, "X1", row.Reference)
	assert.Equal(t, "15", row.TotalQuantity.String())
	assert.Equal(t, "5", row.MonthlyAverage.String())
	assert.Equal(t, "4", row.ThresholdValue.String())
	assert.Equal(t, 1, row.BelowThresholdMonthCount)
	assert.Equal(t, "-3", row.BelowThresholdTotalQuantity.String())
	assert.Equal(t, []domain.Month{{Year: 2023, Month: time.September}}, row.BelowThresholdMonths)

	require.Len(t, row.MonthlyQuantities, 3)
	assert.True(t, row.MonthlyQuantities[0].Quantity.IsZero())
	assert.False(t, row.MonthlyQuantities[0].Below)
	assert.True(t, row.MonthlyQuantities[1].Quantity.IsZero())
	assert.Equal(t, "-3", row.MonthlyQuantities[2].Quantity.String())
	assert.True(t, row.MonthlyQuantities[2].Below)
}

func TestAnalyzeThresholdStrictComparison(t *testing.T) {
	// avg = 12/3 = 4, threshold with offset 0 is 4; a bucket of exactly 4
	// is not below.
	records := []domain.SalesRecord{
		rec("R", 4, date(2023, 7, 1), "", "", ""),
		rec("R", 5, date(2023, 8, 1), "", "", ""),
		rec("R", 3, date(2023, 9, 1), "", "", ""),
	}
	agg, err := Aggregate(records, domain.DateRange{Start: date(2023, 7, 1), End: date(2023, 9, 30)})
	require.NoError(t, err)

	row := AnalyzeThreshold(agg, decimal.Zero).Rows[0]
	assert.Equal(t, 1, row.BelowThresholdMonthCount)
	assert.Equal(t, []domain.Month{{Year: 2023, Month: time.September}}, row.BelowThresholdMonths)
}

func TestAnalyzeThresholdMissingMonthsNeverCounted(t *testing.T) {
	// Y only sells in July; with a large positive offset its threshold is
	// far above zero, yet August and September have no bucket for Y.
	records := []domain.SalesRecord{
		rec("X", 1, date(2023, 7, 1), "", "", ""),
		rec("X", 1, date(2023, 8, 1), "", "", ""),
		rec("X", 1, date(2023, 9, 1), "", "", ""),
		rec("Y", 30, date(2023, 7, 1), "", "", ""),
	}
	agg, err := Aggregate(records, domain.DateRange{Start: date(2023, 7, 1), End: date(2023, 9, 30)})
	require.NoError(t, err)

	table := AnalyzeThreshold(agg, decimal.NewFromInt(100))
	require.Len(t, table.Rows, 2)

	y := table.Rows[1]
	assert.Equal(t, "Y", y.Reference)
	assert.Equal(t, 1, y.BelowThresholdMonthCount, "only July has a bucket")
	assert.Equal(t, "30", y.BelowThresholdTotalQuantity.String())
	require.Len(t, y.MonthlyQuantities, 3, "every global month is reported")
	assert.True(t, y.QuantityFor(domain.Month{Year: 2023, Month: time.August}).IsZero())
	assert.False(t, y.MonthlyQuantities[1].Below)
}

func TestAnalyzeThresholdOffsetMonotonic(t *testing.T) {
	agg, err := Aggregate(aggregateRecords(), domain.DateRange{Start: date(2023, 7, 1), End: date(2023, 12, 31)})
	require.NoError(t, err)

	offsets := []int64{10, 5, 1, 0, -1, -3, -10}
	prev := map[string]int{}
	for i, o := range offsets {
		table := AnalyzeThreshold(agg, decimal.NewFromInt(o))
		for _, row := range table.Rows {
			if i > 0 {
				assert.LessOrEqual(t, row.BelowThresholdMonthCount, prev[row.Reference],
					"ref %s offset %d", row.Reference, o)
			}
			prev[row.Reference] = row.BelowThresholdMonthCount
		}
	}
}

func TestAnalyzeThresholdRowsSortedAndComplete(t *testing.T) {
	agg, err := Aggregate(aggregateRecords(), domain.DateRange{Start: date(2023, 7, 1), End: date(2023, 9, 30)})
	require.NoError(t, err)

	table := AnalyzeThreshold(agg, DefaultThresholdOffset)
	assert.Equal(t, 3, table.MonthsInRange)
	assert.True(t, table.ThresholdOffset.Equal(decimal.NewFromInt(-1)))
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "A", table.Rows[0].Reference)
	assert.Equal(t, "B", table.Rows[1].Reference)

	for _, row := range table.Rows {
		require.Len(t, row.MonthlyQuantities, len(table.Months))
		for i, mq := range row.MonthlyQuantities {
			assert.Equal(t, table.Months[i], mq.Month)
		}
		below := decimal.Zero
		for _, m := range row.BelowThresholdMonths {
			below = below.Add(row.QuantityFor(m))
		}
		assert.True(t, below.Equal(row.BelowThresholdTotalQuantity))
		assert.Len(t, row.BelowThresholdMonths, row.BelowThresholdMonthCount)
	}
}

func TestAggregateOrdersNumericReferencesByValue(t *testing.T) {
	july := date(2023, 7, 5)
	records := []domain.SalesRecord{
		rec("10", 1, july, "", "", ""),
		rec("X1", 1, july, "", "", ""),
		rec("100", 1, july, "", "", ""),
		rec("9", 1, july, "", "", ""),
		rec("7", 1, july, "", "", ""),
		rec("07", 1, july, "", "", ""),
	}
	agg, err := Aggregate(records, domain.DateRange{Start: date(2023, 7, 1), End: date(2023, 7, 31)})
	require.NoError(t, err)

	assert.Equal(t, []string{"07", "7", "9", "10", "100", "X1"}, agg.References)
	table := AnalyzeThreshold(agg, DefaultThresholdOffset)
	assert.Equal(t, "9", table.Rows[2].Reference)
}
