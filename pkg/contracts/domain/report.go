package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportStatus represents the terminal state of a report run
type ReportStatus string

const (
	// ReportStatusOK means the result table was computed
	ReportStatusOK ReportStatus = "ok"
	// ReportStatusNoRows means no record survived the filters; no table exists
	ReportStatusNoRows ReportStatus = "no_rows"
)

// FilterDiagnostics counts the rows surviving each filter stage
type FilterDiagnostics struct {
	Total       int `json:"total"`
	AfterDate   int `json:"after_date"`
	AfterBrand  int `json:"after_brand"`
	AfterFamily int `json:"after_family"`
	AfterZone   int `json:"after_zone"`
}

// Final returns the row count after every filter.
func (d FilterDiagnostics) Final() int {
	return d.AfterZone
}

// MonthQuantity is one month cell of a product row. Quantity is zero unless
// Below is set.
type MonthQuantity struct {
	Month    Month           `json:"month"`
	Quantity decimal.Decimal `json:"quantity"`
	Below    bool            `json:"below"`
}

// ProductSummary holds the statistics of one product reference
type ProductSummary struct {
	Reference                   string          `json:"reference"`
	TotalQuantity               decimal.Decimal `json:"total_quantity"`
	MonthlyAverage              decimal.Decimal `json:"monthly_average"`
	ThresholdValue              decimal.Decimal `json:"threshold_value"`
	BelowThresholdMonthCount    int             `json:"below_threshold_month_count"`
	MonthlyQuantities           []MonthQuantity `json:"monthly_quantities"`
	BelowThresholdMonths        []Month         `json:"below_threshold_months"`
	BelowThresholdTotalQuantity decimal.Decimal `json:"below_threshold_total_quantity"`
}

// QuantityFor returns the reported quantity for m, zero when m is not a
// column of the table or the month was not below threshold.
func (p ProductSummary) QuantityFor(m Month) decimal.Decimal {
	for _, mq := range p.MonthlyQuantities {
		if mq.Month == m {
			return mq.Quantity
		}
	}
	return decimal.Zero
}

// ResultTable is the per-product report. Months is the chronological list of
// every month present in the filtered data; each row has one cell per month.
type ResultTable struct {
	Months          []Month          `json:"months"`
	Rows            []ProductSummary `json:"rows"`
	MonthsInRange   int              `json:"months_in_range"`
	ThresholdOffset decimal.Decimal  `json:"threshold_offset"`
}

// Report is the outcome of one run over an archive
type Report struct {
	RunID       string            `json:"run_id"`
	Status      ReportStatus      `json:"status"`
	Criteria    FilterCriteria    `json:"criteria"`
	Diagnostics FilterDiagnostics `json:"diagnostics"`
	Table       *ResultTable      `json:"table,omitempty"`
	Sources     []SourceFile      `json:"sources,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Empty reports whether the run ended without rows.
func (r *Report) Empty() bool {
	return r == nil || r.Status == ReportStatusNoRows || r.Table == nil
}
