package dataprocessing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"salesreport/pkg/contracts/domain"
)

func rec(ref string, qty int64, day time.Time, brand, family, zone string) domain.SalesRecord {
	r := domain.SalesRecord{Reference: ref, Quantity: decimal.NewFromInt(qty)}
	if !day.IsZero() {
		d := day
		r.SaleDate = &d
	}
	if brand != "" {
		r.Brand = domain.StringPtr(brand)
	}
	if family != "" {
		r.Family = domain.StringPtr(family)
	}
	if zone != "" {
		r.Zone = domain.StringPtr(zone)
	}
	return r
}

const allColumns = domain.ColumnSaleDate | domain.ColumnBrand | domain.ColumnFamily | domain.ColumnZone

func filterDataset() *domain.SalesDataset {
	return &domain.SalesDataset{
		Columns: allColumns,
		Records: []domain.SalesRecord{
			rec("A", 1, date(2023, 6, 30), "Acme", "Tools", "North"),
			rec("A", 2, date(2023, 7, 1), "Acme", "Tools", "North"),
			rec("B", 3, date(2023, 7, 15), "Beta", "Tools", "South"),
			rec("C", 4, date(2023, 8, 31), "Acme", "Garden", "South"),
			rec("D", 5, date(2023, 9, 1), "Acme", "Tools", "North"),
			rec("E", 6, time.Time{}, "Acme", "Tools", "North"),
			rec("F", 7, date(2023, 7, 20), "", "Tools", "North"),
		},
	}
}

func julyAugust() domain.DateRange {
	return domain.DateRange{Start: date(2023, 7, 1), End: date(2023, 8, 31)}
}

func refs(records []domain.SalesRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Reference)
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name     string
		criteria domain.FilterCriteria
		want     []string
		diag     domain.FilterDiagnostics
	}{
		{
			name:     "date only, bounds inclusive, undated dropped",
			criteria: domain.FilterCriteria{DateRange: julyAugust()},
			want:     []string{"A", "B", "C", "F"},
			diag:     domain.FilterDiagnostics{Total: 7, AfterDate: 4, AfterBrand: 4, AfterFamily: 4, AfterZone: 4},
		},
		{
			name:     "brand set excludes null brand",
			criteria: domain.FilterCriteria{DateRange: julyAugust(), Brands: []string{"Acme"}},
			want:     []string{"A", "C"},
			diag:     domain.FilterDiagnostics{Total: 7, AfterDate: 4, AfterBrand: 2, AfterFamily: 2, AfterZone: 2},
		},
		{
			name: "all stages",
			criteria: domain.FilterCriteria{
				DateRange: julyAugust(),
				Brands:    []string{"Acme", "Beta"},
				Families:  []string{"Tools"},
				Zones:     []string{"South"},
			},
			want: []string{"B"},
			diag: domain.FilterDiagnostics{Total: 7, AfterDate: 4, AfterBrand: 3, AfterFamily: 2, AfterZone: 1},
		},
		{
			name:     "no match",
			criteria: domain.FilterCriteria{DateRange: julyAugust(), Zones: []string{"West"}},
			want:     []string{},
			diag:     domain.FilterDiagnostics{Total: 7, AfterDate: 4, AfterBrand: 4, AfterFamily: 4, AfterZone: 0},
		},
		{
			name: "time of day ignored at the end bound",
			criteria: domain.FilterCriteria{DateRange: domain.DateRange{
				Start: date(2023, 9, 1),
				End:   time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC),
			}},
			want: []string{"D"},
			diag: domain.FilterDiagnostics{Total: 7, AfterDate: 1, AfterBrand: 1, AfterFamily: 1, AfterZone: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diag := ApplyFilters(filterDataset(), tt.criteria)
			assert.Equal(t, tt.want, refs(got))
			assert.Equal(t, tt.diag, diag)
			assert.Equal(t, len(got), diag.Final())
		})
	}
}

func TestApplyFiltersEmptySetIsNoOp(t *testing.T) {
	base := domain.FilterCriteria{DateRange: julyAugust()}
	withEmpty := domain.FilterCriteria{DateRange: julyAugust(), Brands: []string{}, Families: nil, Zones: []string{}}

	a, _ := ApplyFilters(filterDataset(), base)
	b, _ := ApplyFilters(filterDataset(), withEmpty)
	assert.Equal(t, refs(a), refs(b))
}

func TestApplyFiltersAbsentColumnSkipsStage(t *testing.T) {
	ds := filterDataset()
	ds.Columns = domain.ColumnSaleDate | domain.ColumnFamily

	got, diag := ApplyFilters(ds, domain.FilterCriteria{
		DateRange: julyAugust(),
		Brands:    []string{"nobody"},
		Zones:     []string{"nowhere"},
	})
	assert.Equal(t, []string{"A", "B", "C", "F"}, refs(got))
	assert.Equal(t, 4, diag.AfterBrand)
	assert.Equal(t, 4, diag.AfterZone)
}

func TestApplyFiltersWithoutDateColumn(t *testing.T) {
	ds := &domain.SalesDataset{
		Columns: domain.ColumnBrand,
		Records: []domain.SalesRecord{rec("A", 1, time.Time{}, "Acme", "", "")},
	}
	got, diag := ApplyFilters(ds, domain.FilterCriteria{DateRange: julyAugust()})
	assert.Empty(t, got)
	assert.Equal(t, 1, diag.Total)
	assert.Equal(t, 0, diag.AfterDate)
}

// Categorical stages are intersections, so their order cannot change the
// surviving set.
func TestApplyFiltersStageOrderCommutes(t *testing.T) {
	ds := filterDataset()
	criteria := domain.FilterCriteria{
		DateRange: julyAugust(),
		Brands:    []string{"Acme", "Beta"},
		Families:  []string{"Tools"},
		Zones:     []string{"South", "North"},
	}
	want, _ := ApplyFilters(ds, criteria)

	brand := func(r *domain.SalesRecord) *string { return r.Brand }
	family := func(r *domain.SalesRecord) *string { return r.Family }
	zone := func(r *domain.SalesRecord) *string { return r.Zone }

	records := filterDate(ds.Records, criteria.DateRange)
	records = filterSet(records, true, criteria.Zones, zone)
	records = filterSet(records, true, criteria.Families, family)
	records = filterSet(records, true, criteria.Brands, brand)

	assert.Equal(t, refs(want), refs(records))
}

func TestApplyFiltersNilDataset(t *testing.T) {
	got, diag := ApplyFilters(nil, domain.FilterCriteria{DateRange: julyAugust()})
	assert.Nil(t, got)
	assert.Equal(t, domain.FilterDiagnostics{}, diag)
}
