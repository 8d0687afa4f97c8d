package testutil

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SalesHeader is the column layout exported by the sales system
var SalesHeader = []any{"Ref", "Quantidade", "DataDoc", "Marca", "Familia", "LinhaProduto", "Zona", "PrecoVenda"}

// SalesRow builds a row matching SalesHeader. A nil value leaves the cell blank.
func SalesRow(ref, qty, date, brand, family, line, zone, price any) []any {
	return []any{ref, qty, date, brand, family, line, zone, price}
}

// Workbook renders rows into the first sheet of an in-memory xlsx file
func Workbook(t testing.TB, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set %s: %v", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// SalesWorkbook is Workbook with SalesHeader prepended
func SalesWorkbook(t testing.TB, rows ...[]any) []byte {
	t.Helper()
	return Workbook(t, append([][]any{SalesHeader}, rows...)...)
}

// ArchiveEntry is one file stored in a test zip
type ArchiveEntry struct {
	Name string
	Data []byte
}

// Archive zips entries in the given order
func Archive(t testing.TB, entries ...ArchiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("create %s: %v", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

// ArchiveReader wraps archive bytes for loaders taking io.ReaderAt
func ArchiveReader(data []byte) (*bytes.Reader, int64) {
	return bytes.NewReader(data), int64(len(data))
}
