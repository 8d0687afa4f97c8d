package dataprocessing

import (
	"strings"

	"salesreport/pkg/contracts/domain"
)

// Source headers as exported by the sales system
const (
	SourceReference   = "Ref"
	SourceQuantity    = "Quantidade"
	SourceSaleDate    = "DataDoc"
	SourceBrand       = "Marca"
	SourceFamily      = "Familia"
	SourceProductLine = "LinhaProduto"
	SourceZone        = "Zona"
	SourcePrice       = "PrecoVenda"
)

// Canonical names after normalization. Columns without a rename keep their
// source name.
const (
	ColumnReference   = "Referencia"
	ColumnQuantity    = "Qtd Vendidas"
	ColumnSaleDate    = "Data da venda"
	ColumnBrand       = SourceBrand
	ColumnFamily      = SourceFamily
	ColumnProductLine = SourceProductLine
	ColumnZone        = SourceZone
	ColumnPrice       = SourcePrice
)

// columnSpec ties a recognized source header to its canonical name and the
// optional-column bit it sets (zero for required columns).
type columnSpec struct {
	source    string
	canonical string
	bit       domain.Columns
}

var recognizedColumns = []columnSpec{
	{SourceReference, ColumnReference, 0},
	{SourceQuantity, ColumnQuantity, 0},
	{SourceSaleDate, ColumnSaleDate, domain.ColumnSaleDate},
	{SourceBrand, ColumnBrand, domain.ColumnBrand},
	{SourceFamily, ColumnFamily, domain.ColumnFamily},
	{SourceProductLine, ColumnProductLine, domain.ColumnProductLine},
	{SourceZone, ColumnZone, domain.ColumnZone},
	{SourcePrice, ColumnPrice, domain.ColumnPrice},
}

// canonicalName returns the normalized name of a source header, or "" when
// the header is not recognized.
func canonicalName(source string) string {
	source = strings.TrimSpace(source)
	for _, spec := range recognizedColumns {
		if spec.source == source {
			return spec.canonical
		}
	}
	return ""
}

// columnIndex maps each recognized source header to its position in the
// header row. The first occurrence of a duplicated header wins.
type columnIndex map[string]int

func indexHeader(header []string) (columnIndex, domain.Columns) {
	idx := make(columnIndex, len(recognizedColumns))
	var present domain.Columns
	for pos, raw := range header {
		name := strings.TrimSpace(raw)
		for _, spec := range recognizedColumns {
			if spec.source != name {
				continue
			}
			if _, seen := idx[name]; !seen {
				idx[name] = pos
				present |= spec.bit
			}
		}
	}
	return idx, present
}

// cell returns the trimmed value of a source column in row, and whether the
// column exists in the header. Short rows yield "".
func (c columnIndex) cell(row []string, source string) (string, bool) {
	pos, ok := c[source]
	if !ok {
		return "", false
	}
	if pos >= len(row) {
		return "", true
	}
	return strings.TrimSpace(row[pos]), true
}
