// Package dataprocessing turns zipped sales spreadsheets into the monthly
// threshold report.
//
// # Data Flow
//
//	zip archive → ArchiveLoader → SalesDataset → ApplyFilters → Aggregate → AnalyzeThreshold → ResultTable
//
// NormalizeWorkbook maps each spreadsheet onto the canonical columns
// (Referencia, Qtd Vendidas, Data da venda, Marca, Familia, LinhaProduto,
// Zona). Quantities use decimal arithmetic; a negative PrecoVenda marks the
// row as a return and negates its quantity.
//
// Analyzer.Analyze runs the filter, aggregate and threshold stages and
// produces a domain.Report. A filter that leaves no rows yields a report with
// status no_rows rather than an error.
//
// # Usage
//
//	loader := dataprocessing.NewArchiveLoader(logger, nil)
//	ds, err := loader.Load(ctx, bytes.NewReader(archive), int64(len(archive)))
//	if err != nil {
//	    return err
//	}
//	report, err := dataprocessing.NewAnalyzer(logger, nil).Analyze(ctx, ds, criteria, dataprocessing.DefaultThresholdOffset)
//
// # Error Handling
//
// Failures are *errors.AppError values wrapping ErrNoData,
// ErrMalformedArchive, ErrInvalidDateRange, *FieldError or
// *MissingColumnError, so callers can match with errors.Is and errors.As.
package dataprocessing
