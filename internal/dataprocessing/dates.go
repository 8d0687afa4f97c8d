package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"salesreport/pkg/contracts/domain"
)

// textDateLayouts are tried in order. ISO forms come first so that an
// unambiguous year-first value is never read day-first.
var textDateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"02.01.2006",
	"2/1/2006",
}

// serial bounds accepted as Excel date numbers (1900-01-01 .. 9999-12-31)
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// ParseSaleDate converts a raw date cell to a calendar date at UTC midnight.
// It returns nil when the cell is blank or not a recognizable date.
func ParseSaleDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < minExcelSerial || serial > maxExcelSerial {
			return nil
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil
		}
		day := domain.TruncateDay(t)
		return &day
	}

	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			day := domain.TruncateDay(t)
			return &day
		}
	}
	return nil
}
