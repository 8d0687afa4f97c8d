package http

import (
	"context"

	"github.com/shopspring/decimal"

	"salesreport/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations the handlers need
type ReportServiceInterface interface {
	ComputeReport(ctx context.Context, archive []byte, criteria domain.FilterCriteria, offset decimal.Decimal) (*domain.Report, error)
	Options(ctx context.Context, archive []byte) (domain.FilterOptions, error)
	Defaults() (domain.DateRange, decimal.Decimal)
}
