package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salesreport/pkg/contracts/domain"
)

// Analyzer runs filter, aggregation and threshold analysis over a dataset
type Analyzer struct {
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewAnalyzer creates an analyzer. A nil tracer uses the global provider.
func NewAnalyzer(logger *slog.Logger, tracer trace.Tracer) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer("salesreport/dataprocessing")
	}
	return &Analyzer{
		logger: logger.With(slog.String("component", "analyzer")),
		tracer: tracer,
		now:    time.Now,
	}
}

// Analyze computes the report for criteria. A filter result without rows is
// reported as ReportStatusNoRows with no table; it is not an error. An
// inverted date range is rejected before any filtering.
func (a *Analyzer) Analyze(ctx context.Context, ds *domain.SalesDataset, criteria domain.FilterCriteria, offset decimal.Decimal) (*domain.Report, error) {
	window := criteria.DateRange
	if err := ValidateWindow(window); err != nil {
		return nil, err
	}

	report := &domain.Report{
		Criteria:    criteria,
		GeneratedAt: a.now().UTC(),
	}
	if ds != nil {
		report.Sources = ds.Sources
	}

	_, span := a.tracer.Start(ctx, "report.filter")
	records, diag := ApplyFilters(ds, criteria)
	span.SetAttributes(
		attribute.Int("rows.total", diag.Total),
		attribute.Int("rows.final", diag.Final()),
	)
	span.End()

	report.Diagnostics = diag
	a.logger.InfoContext(ctx, "filters applied",
		slog.Int("total", diag.Total),
		slog.Int("after_date", diag.AfterDate),
		slog.Int("after_brand", diag.AfterBrand),
		slog.Int("after_family", diag.AfterFamily),
		slog.Int("after_zone", diag.AfterZone))

	if len(records) == 0 {
		report.Status = domain.ReportStatusNoRows
		a.logger.InfoContext(ctx, "no rows after filtering")
		return report, nil
	}

	_, span = a.tracer.Start(ctx, "report.aggregate")
	agg, err := Aggregate(records, window)
	span.End()
	if err != nil {
		return nil, err
	}

	_, span = a.tracer.Start(ctx, "report.threshold")
	table := AnalyzeThreshold(agg, offset)
	span.SetAttributes(attribute.Int("products", len(table.Rows)), attribute.Int("months", len(table.Months)))
	span.End()

	report.Status = domain.ReportStatusOK
	report.Table = table

	a.logger.InfoContext(ctx, "report computed",
		slog.Int("products", len(table.Rows)),
		slog.Int("months", len(table.Months)),
		slog.Int("months_in_range", table.MonthsInRange),
		slog.String("threshold_offset", offset.String()))

	return report, nil
}
