package dataprocessing

import (
	"salesreport/pkg/contracts/domain"
)

// ApplyFilters keeps the records matching every criterion, in input order.
// Stages run date, brand, family, zone; the diagnostics count the survivors
// of each stage. An empty value set, or a categorical column missing from
// the dataset, leaves that stage a no-op.
func ApplyFilters(ds *domain.SalesDataset, criteria domain.FilterCriteria) ([]domain.SalesRecord, domain.FilterDiagnostics) {
	var diag domain.FilterDiagnostics
	if ds == nil {
		return nil, diag
	}

	diag.Total = len(ds.Records)

	records := filterDate(ds.Records, criteria.DateRange)
	diag.AfterDate = len(records)

	records = filterSet(records, ds.Columns.Has(domain.ColumnBrand), criteria.Brands,
		func(r *domain.SalesRecord) *string { return r.Brand })
	diag.AfterBrand = len(records)

	records = filterSet(records, ds.Columns.Has(domain.ColumnFamily), criteria.Families,
		func(r *domain.SalesRecord) *string { return r.Family })
	diag.AfterFamily = len(records)

	records = filterSet(records, ds.Columns.Has(domain.ColumnZone), criteria.Zones,
		func(r *domain.SalesRecord) *string { return r.Zone })
	diag.AfterZone = len(records)

	return records, diag
}

// filterDate keeps records dated within the range. Undated records never
// match, so a dataset without a sale date column filters to nothing.
func filterDate(records []domain.SalesRecord, window domain.DateRange) []domain.SalesRecord {
	out := make([]domain.SalesRecord, 0, len(records))
	for _, r := range records {
		if r.SaleDate != nil && window.Contains(*r.SaleDate) {
			out = append(out, r)
		}
	}
	return out
}

func filterSet(records []domain.SalesRecord, present bool, values []string, field func(*domain.SalesRecord) *string) []domain.SalesRecord {
	if !present || len(values) == 0 {
		return records
	}

	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}

	out := make([]domain.SalesRecord, 0, len(records))
	for i := range records {
		v := field(&records[i])
		if v == nil {
			continue
		}
		if _, ok := allowed[*v]; ok {
			out = append(out, records[i])
		}
	}
	return out
}
