// Package api contains the HTTP API contract of the sales report service.
// Version v1 represents the current stable API version.
package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"salesreport/pkg/contracts/domain"
)

// ReportRequest carries the form fields that accompany an uploaded archive.
// Empty dates fall back to the configured default window.
type ReportRequest struct {
	StartDate       string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Brands          []string `json:"brands,omitempty" validate:"omitempty,dive,required,max=200"`
	Families        []string `json:"families,omitempty" validate:"omitempty,dive,required,max=200"`
	Zones           []string `json:"zones,omitempty" validate:"omitempty,dive,required,max=200"`
	ThresholdOffset string   `json:"threshold_offset,omitempty" validate:"omitempty,numeric"`
	Format          string   `json:"format,omitempty" validate:"omitempty,oneof=json csv"`
}

// Criteria resolves the request against the default window and offset
func (r ReportRequest) Criteria(defaults domain.DateRange, defaultOffset decimal.Decimal) (domain.FilterCriteria, decimal.Decimal, error) {
	window := defaults
	if r.StartDate != "" {
		start, err := time.Parse(domain.DateLayout, r.StartDate)
		if err != nil {
			return domain.FilterCriteria{}, decimal.Zero, fmt.Errorf("start_date: %w", err)
		}
		window.Start = start
	}
	if r.EndDate != "" {
		end, err := time.Parse(domain.DateLayout, r.EndDate)
		if err != nil {
			return domain.FilterCriteria{}, decimal.Zero, fmt.Errorf("end_date: %w", err)
		}
		window.End = end
	}

	offset := defaultOffset
	if r.ThresholdOffset != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(r.ThresholdOffset))
		if err != nil {
			return domain.FilterCriteria{}, decimal.Zero, fmt.Errorf("threshold_offset: %w", err)
		}
		offset = parsed
	}

	return domain.FilterCriteria{
		DateRange: window,
		Brands:    r.Brands,
		Families:  r.Families,
		Zones:     r.Zones,
	}, offset, nil
}
