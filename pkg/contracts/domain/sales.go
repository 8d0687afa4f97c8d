package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format accepted at every input boundary.
const DateLayout = "2006-01-02"

// Columns is a set of optional source columns. A cleared bit means the column
// was absent from the source; a nil field on a record means the cell was empty.
type Columns uint8

const (
	ColumnSaleDate Columns = 1 << iota
	ColumnBrand
	ColumnFamily
	ColumnProductLine
	ColumnZone
	ColumnPrice
)

// Has reports whether every column in c is present in s.
func (s Columns) Has(c Columns) bool {
	return s&c == c
}

func (s Columns) String() string {
	names := []struct {
		col  Columns
		name string
	}{
		{ColumnSaleDate, "sale_date"},
		{ColumnBrand, "brand"},
		{ColumnFamily, "family"},
		{ColumnProductLine, "product_line"},
		{ColumnZone, "zone"},
		{ColumnPrice, "price"},
	}
	var parts []string
	for _, n := range names {
		if s.Has(n.col) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// SalesRecord is one normalized transaction line.
type SalesRecord struct {
	Reference   string          `json:"reference"`
	Quantity    decimal.Decimal `json:"quantity"`
	SaleDate    *time.Time      `json:"sale_date,omitempty"`
	Brand       *string         `json:"brand,omitempty"`
	Family      *string         `json:"family,omitempty"`
	ProductLine *string         `json:"product_line,omitempty"`
	Zone        *string         `json:"zone,omitempty"`
}

// SourceFile describes one spreadsheet that contributed to a dataset.
type SourceFile struct {
	Name        string  `json:"name"`
	Rows        int     `json:"rows"`
	SkippedRows int     `json:"skipped_rows"`
	Columns     Columns `json:"-"`
}

// SalesDataset is the concatenation of every normalized source file, in
// archive order. Columns is the union of the per-file column sets.
type SalesDataset struct {
	Records []SalesRecord `json:"-"`
	Columns Columns       `json:"-"`
	Sources []SourceFile  `json:"sources"`
}

// Len returns the number of records.
func (d *SalesDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether the range is non-inverted.
func (r DateRange) Valid() bool {
	return !TruncateDay(r.Start).After(TruncateDay(r.End))
}

// Contains reports whether the calendar day of t lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	day := TruncateDay(t)
	return !day.Before(TruncateDay(r.Start)) && !day.After(TruncateDay(r.End))
}

// FilterCriteria selects the rows that take part in a report. An empty
// categorical slice places no restriction on that dimension.
type FilterCriteria struct {
	DateRange DateRange `json:"date_range"`
	Brands    []string  `json:"brands,omitempty"`
	Families  []string  `json:"families,omitempty"`
	Zones     []string  `json:"zones,omitempty"`
}

// FilterOptions lists the distinct categorical values found in a dataset.
type FilterOptions struct {
	Brands    []string   `json:"brands"`
	Families  []string   `json:"families"`
	Zones     []string   `json:"zones"`
	Records   int        `json:"records"`
	FirstDate *time.Time `json:"first_date,omitempty"`
	LastDate  *time.Time `json:"last_date,omitempty"`
}

// TruncateDay drops the time of day and normalizes to UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
