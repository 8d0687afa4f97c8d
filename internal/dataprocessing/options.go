package dataprocessing

import (
	"salesreport/pkg/contracts/domain"
)

// CollectOptions lists the distinct non-empty brands, families and zones of
// a dataset in first-appearance order, with the span of its sale dates.
func CollectOptions(ds *domain.SalesDataset) domain.FilterOptions {
	opts := domain.FilterOptions{
		Brands:   []string{},
		Families: []string{},
		Zones:    []string{},
	}
	if ds == nil {
		return opts
	}
	opts.Records = len(ds.Records)

	seenBrand := map[string]struct{}{}
	seenFamily := map[string]struct{}{}
	seenZone := map[string]struct{}{}

	for i := range ds.Records {
		r := &ds.Records[i]
		opts.Brands = appendDistinct(opts.Brands, seenBrand, r.Brand)
		opts.Families = appendDistinct(opts.Families, seenFamily, r.Family)
		opts.Zones = appendDistinct(opts.Zones, seenZone, r.Zone)

		if r.SaleDate == nil {
			continue
		}
		if opts.FirstDate == nil || r.SaleDate.Before(*opts.FirstDate) {
			d := *r.SaleDate
			opts.FirstDate = &d
		}
		if opts.LastDate == nil || r.SaleDate.After(*opts.LastDate) {
			d := *r.SaleDate
			opts.LastDate = &d
		}
	}

	return opts
}

func appendDistinct(list []string, seen map[string]struct{}, v *string) []string {
	if v == nil {
		return list
	}
	if _, ok := seen[*v]; ok {
		return list
	}
	seen[*v] = struct{}{}
	return append(list, *v)
}
