package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	apierrors "salesreport/internal/errors"
	"salesreport/pkg/contracts/domain"
)

// Report column headers. Month columns sit between HeaderBelowCount and
// HeaderBelowTotal, one per month in YYYY-MM form.
const (
	HeaderReference   = "Referencia"
	HeaderTotal       = "Vendas totais"
	HeaderAverage     = "Qtd média mes"
	HeaderBelowCount  = "Meses abaixo do limite"
	HeaderBelowTotal  = "Qtd abaixo do limite"
	HeaderBelowMonths = "Meses < limite"

	monthListSeparator = ", "
	leadingColumns     = 4
	trailingColumns    = 2
)

// ReportFileName is the download name of an exported report
const ReportFileName = "average_monthly_sales_with_totals_and_analysis.csv"

// ReportHeader returns the header row for a table with the given months
func ReportHeader(months []domain.Month) []string {
	header := make([]string, 0, leadingColumns+len(months)+trailingColumns)
	header = append(header, HeaderReference, HeaderTotal, HeaderAverage, HeaderBelowCount)
	for _, m := range months {
		header = append(header, m.String())
	}
	return append(header, HeaderBelowTotal, HeaderBelowMonths)
}

// ReportRecords renders one CSV record per product row
func ReportRecords(table *domain.ResultTable) [][]string {
	records := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := make([]string, 0, leadingColumns+len(table.Months)+trailingColumns)
		rec = append(rec,
			row.Reference,
			formatDecimal(row.TotalQuantity),
			formatDecimal(row.MonthlyAverage),
			strconv.Itoa(row.BelowThresholdMonthCount),
		)
		for _, m := range table.Months {
			rec = append(rec, formatDecimal(row.QuantityFor(m)))
		}
		rec = append(rec,
			formatDecimal(row.BelowThresholdTotalQuantity),
			formatMonths(row.BelowThresholdMonths),
		)
		records = append(records, rec)
	}
	return records
}

// WriteReport writes the table as CSV. A nil table writes nothing.
func (w *CSVWriter) WriteReport(out io.Writer, table *domain.ResultTable, bom bool) error {
	if table == nil {
		return nil
	}
	return w.Write(out, WriteOptions{
		Headers:   ReportHeader(table.Months),
		Records:   ReportRecords(table),
		BOMPrefix: bom,
	})
}

// WriteReportFile writes the table to filePath
func (w *CSVWriter) WriteReportFile(filePath string, table *domain.ResultTable, bom bool) error {
	if table == nil {
		return errors.New("no result table to export")
	}
	err := w.WriteFile(filePath, WriteOptions{
		Headers:   ReportHeader(table.Months),
		Records:   ReportRecords(table),
		BOMPrefix: bom,
	})
	if err != nil {
		return apierrors.NewStorageError("failed to write report", err).WithContext("file", filePath)
	}
	return nil
}

// ParseReportCSV reads a table written by WriteReport. Threshold values and
// the analysis window are not part of the export and stay zero.
func ParseReportCSV(r io.Reader) (*domain.ResultTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	months, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	table := &domain.ResultTable{Months: months, Rows: []domain.ProductSummary{}}
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := parseRecord(rec, months)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func parseHeader(header []string) ([]domain.Month, error) {
	if len(header) < leadingColumns+trailingColumns {
		return nil, fmt.Errorf("report header has %d columns, want at least %d", len(header), leadingColumns+trailingColumns)
	}
	fixed := map[int]string{
		0:               HeaderReference,
		1:               HeaderTotal,
		2:               HeaderAverage,
		3:               HeaderBelowCount,
		len(header) - 2: HeaderBelowTotal,
		len(header) - 1: HeaderBelowMonths,
	}
	for pos, want := range fixed {
		if header[pos] != want {
			return nil, fmt.Errorf("report column %d is %q, want %q", pos+1, header[pos], want)
		}
	}

	months := make([]domain.Month, 0, len(header)-leadingColumns-trailingColumns)
	for _, name := range header[leadingColumns : len(header)-trailingColumns] {
		m, err := domain.ParseMonth(name)
		if err != nil {
			return nil, fmt.Errorf("report month column: %w", err)
		}
		months = append(months, m)
	}
	return months, nil
}

func parseRecord(rec []string, months []domain.Month) (domain.ProductSummary, error) {
	var row domain.ProductSummary
	var err error

	row.Reference = rec[0]
	if row.TotalQuantity, err = decimal.NewFromString(rec[1]); err != nil {
		return row, fmt.Errorf("%s: %w", HeaderTotal, err)
	}
	if row.MonthlyAverage, err = decimal.NewFromString(rec[2]); err != nil {
		return row, fmt.Errorf("%s: %w", HeaderAverage, err)
	}
	if row.BelowThresholdMonthCount, err = strconv.Atoi(rec[3]); err != nil {
		return row, fmt.Errorf("%s: %w", HeaderBelowCount, err)
	}

	last := len(rec) - trailingColumns
	if row.BelowThresholdTotalQuantity, err = decimal.NewFromString(rec[last]); err != nil {
		return row, fmt.Errorf("%s: %w", HeaderBelowTotal, err)
	}
	if row.BelowThresholdMonths, err = parseMonths(rec[last+1]); err != nil {
		return row, fmt.Errorf("%s: %w", HeaderBelowMonths, err)
	}

	below := make(map[domain.Month]bool, len(row.BelowThresholdMonths))
	for _, m := range row.BelowThresholdMonths {
		below[m] = true
	}

	row.MonthlyQuantities = make([]domain.MonthQuantity, 0, len(months))
	for i, m := range months {
		q, err := decimal.NewFromString(rec[leadingColumns+i])
		if err != nil {
			return row, fmt.Errorf("%s: %w", m, err)
		}
		row.MonthlyQuantities = append(row.MonthlyQuantities, domain.MonthQuantity{Month: m, Quantity: q, Below: below[m]})
	}
	return row, nil
}
