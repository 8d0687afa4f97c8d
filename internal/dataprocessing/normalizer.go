package dataprocessing

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "salesreport/internal/errors"
	"salesreport/pkg/contracts/domain"
)

// NormalizedTable is one spreadsheet mapped onto the canonical schema
type NormalizedTable struct {
	Name        string
	Records     []domain.SalesRecord
	Columns     domain.Columns
	SkippedRows int
}

// Source describes the table for dataset diagnostics
func (t *NormalizedTable) Source() domain.SourceFile {
	return domain.SourceFile{
		Name:        t.Name,
		Rows:        len(t.Records),
		SkippedRows: t.SkippedRows,
		Columns:     t.Columns,
	}
}

// NormalizeWorkbook reads the first worksheet of an xlsx stream and maps it
// onto the canonical schema. Unrecognized columns are dropped. A quantity or
// price that cannot be parsed fails the whole file.
func NormalizeWorkbook(name string, r io.Reader) (*NormalizedTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).
			WithContext("file", name)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no worksheets", nil).
			WithContext("file", name)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read worksheet", err).
			WithContext("file", name).
			WithContext("sheet", sheets[0])
	}

	return NormalizeRows(name, rows)
}

// NormalizeRows maps a header row followed by data rows onto the canonical
// schema. It is the sheet-independent half of NormalizeWorkbook.
func NormalizeRows(name string, rows [][]string) (*NormalizedTable, error) {
	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	idx, present := indexHeader(header)

	var missing []string
	for _, required := range []string{SourceReference, SourceQuantity} {
		if _, ok := idx[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, missingColumns(name, missing)
	}

	table := &NormalizedTable{
		Name:    name,
		Columns: present,
		Records: make([]domain.SalesRecord, 0, len(rows)),
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		record, ok, err := normalizeRow(name, i+1, row, idx, present)
		if err != nil {
			return nil, err
		}
		if !ok {
			table.SkippedRows++
			continue
		}
		table.Records = append(table.Records, record)
	}

	return table, nil
}

// normalizeRow converts one data row. ok is false when the row carries no
// product reference.
func normalizeRow(file string, rowNum int, row []string, idx columnIndex, present domain.Columns) (domain.SalesRecord, bool, error) {
	ref, _ := idx.cell(row, SourceReference)
	if ref == "" {
		return domain.SalesRecord{}, false, nil
	}

	rawQty, _ := idx.cell(row, SourceQuantity)
	qty, err := ParseDecimal(rawQty)
	if err != nil {
		return domain.SalesRecord{}, false, parseFailure(&FieldError{
			File: file, Column: SourceQuantity, Row: rowNum, Value: rawQty, Err: err,
		})
	}

	var price *decimal.Decimal
	if present.Has(domain.ColumnPrice) {
		if rawPrice, _ := idx.cell(row, SourcePrice); rawPrice != "" {
			p, err := ParseDecimal(rawPrice)
			if err != nil {
				return domain.SalesRecord{}, false, parseFailure(&FieldError{
					File: file, Column: SourcePrice, Row: rowNum, Value: rawPrice, Err: err,
				})
			}
			price = &p
		}
	}

	record := domain.SalesRecord{
		Reference: ref,
		Quantity:  applyPriceSign(qty, price),
	}
	if raw, ok := idx.cell(row, SourceSaleDate); ok {
		record.SaleDate = ParseSaleDate(raw)
	}
	record.Brand = optionalText(idx, row, SourceBrand)
	record.Family = optionalText(idx, row, SourceFamily)
	record.ProductLine = optionalText(idx, row, SourceProductLine)
	record.Zone = optionalText(idx, row, SourceZone)

	return record, true, nil
}

func optionalText(idx columnIndex, row []string, source string) *string {
	v, ok := idx.cell(row, source)
	if !ok || v == "" {
		return nil
	}
	return domain.StringPtr(v)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// String is used in debug logging
func (t *NormalizedTable) String() string {
	return fmt.Sprintf("%s (%d rows, %d skipped, columns: %s)", t.Name, len(t.Records), t.SkippedRows, t.Columns)
}
