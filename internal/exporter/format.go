package exporter

import (
	"strings"

	"github.com/shopspring/decimal"

	"salesreport/pkg/contracts/domain"
)

// formatDecimal renders an exact decimal without trailing zeros
func formatDecimal(d decimal.Decimal) string {
	return d.String()
}

// formatMonths joins months the way the below-threshold list is exported
func formatMonths(months []domain.Month) string {
	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = m.String()
	}
	return strings.Join(parts, monthListSeparator)
}

func parseMonths(s string) ([]domain.Month, error) {
	months := []domain.Month{}
	if strings.TrimSpace(s) == "" {
		return months, nil
	}
	for _, part := range strings.Split(s, monthListSeparator) {
		m, err := domain.ParseMonth(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		months = append(months, m)
	}
	return months, nil
}
