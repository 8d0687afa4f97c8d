package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "salesreport/internal/errors"
	"salesreport/pkg/contracts/domain"
)

var (
	jul = domain.Month{Year: 2023, Month: time.July}
	aug = domain.Month{Year: 2023, Month: time.August}
	sep = domain.Month{Year: 2023, Month: time.September}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleTable() *domain.ResultTable {
	return &domain.ResultTable{
		Months:          []domain.Month{jul, aug, sep},
		MonthsInRange:   3,
		ThresholdOffset: dec("-1"),
		Rows: []domain.ProductSummary{
			{
				Reference:                   "X1",
				TotalQuantity:               dec("15"),
				MonthlyAverage:              dec("5"),
				ThresholdValue:              dec("4"),
				BelowThresholdMonthCount:    1,
				BelowThresholdMonths:        []domain.Month{sep},
				BelowThresholdTotalQuantity: dec("-3"),
				MonthlyQuantities: []domain.MonthQuantity{
					{Month: jul, Quantity: decimal.Zero},
					{Month: aug, Quantity: decimal.Zero},
					{Month: sep, Quantity: dec("-3"), Below: true},
				},
			},
			{
				Reference:                   "Y, with comma",
				TotalQuantity:               dec("2.5"),
				MonthlyAverage:              dec("0.8333333333333333"),
				ThresholdValue:              dec("-0.1666666666666667"),
				BelowThresholdMonthCount:    2,
				BelowThresholdMonths:        []domain.Month{jul, aug},
				BelowThresholdTotalQuantity: dec("-1.5"),
				MonthlyQuantities: []domain.MonthQuantity{
					{Month: jul, Quantity: dec("-1"), Below: true},
					{Month: aug, Quantity: dec("-0.5"), Below: true},
					{Month: sep, Quantity: decimal.Zero},
				},
			},
		},
	}
}

func TestReportHeader(t *testing.T) {
	assert.Equal(t, []string{
		"Referencia", "Vendas totais", "Qtd média mes", "Meses abaixo do limite",
		"2023-07", "2023-08", "2023-09",
		"Qtd abaixo do limite", "Meses < limite",
	}, ReportHeader([]domain.Month{jul, aug, sep}))
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(nil).WriteReport(&buf, sampleTable(), false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "X1,15,5,1,0,0,-3,-3,2023-09", lines[1])
	assert.Equal(t, `"Y, with comma",2.5,0.8333333333333333,2,-1,-0.5,0,-1.5,"2023-07, 2023-08"`, lines[2])
}

func TestWriteReportBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(nil).WriteReport(&buf, sampleTable(), true))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
}

func TestWriteReportNilTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(nil).WriteReport(&buf, nil, true))
	assert.Zero(t, buf.Len())
}

func TestReportRoundTrip(t *testing.T) {
	for _, bom := range []bool{false, true} {
		var buf bytes.Buffer
		want := sampleTable()
		require.NoError(t, NewCSVWriter(nil).WriteReport(&buf, want, bom))

		got, err := ParseReportCSV(&buf)
		require.NoError(t, err)

		assert.Equal(t, want.Months, got.Months)
		require.Len(t, got.Rows, len(want.Rows))
		for i, w := range want.Rows {
			g := got.Rows[i]
			assert.Equal(t, w.Reference, g.Reference)
			assert.True(t, w.TotalQuantity.Equal(g.TotalQuantity))
			assert.True(t, w.MonthlyAverage.Equal(g.MonthlyAverage))
			assert.Equal(t, w.BelowThresholdMonthCount, g.BelowThresholdMonthCount)
			assert.Equal(t, w.BelowThresholdMonths, g.BelowThresholdMonths)
			assert.True(t, w.BelowThresholdTotalQuantity.Equal(g.BelowThresholdTotalQuantity))
			require.Len(t, g.MonthlyQuantities, len(w.MonthlyQuantities))
			for j, mq := range w.MonthlyQuantities {
				assert.Equal(t, mq.Month, g.MonthlyQuantities[j].Month)
				assert.Equal(t, mq.Below, g.MonthlyQuantities[j].Below)
				assert.True(t, mq.Quantity.Equal(g.MonthlyQuantities[j].Quantity))
			}
		}
	}
}

func TestParseReportCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "failed to read header"},
		{name: "short header", input: "Referencia,Vendas totais\n", want: "want at least"},
		{name: "wrong column", input: "Ref,Vendas totais,Qtd média mes,Meses abaixo do limite,Qtd abaixo do limite,Meses < limite\n", want: `"Ref"`},
		{name: "bad month", input: "Referencia,Vendas totais,Qtd média mes,Meses abaixo do limite,julho,Qtd abaixo do limite,Meses < limite\n", want: "month column"},
		{
			name:  "bad number",
			input: "Referencia,Vendas totais,Qtd média mes,Meses abaixo do limite,Qtd abaixo do limite,Meses < limite\nX,abc,1,0,0,\n",
			want:  "line 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReportCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteReportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", ReportFileName)
	w := NewCSVWriter(nil)
	require.NoError(t, w.WriteReportFile(path, sampleTable(), true))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := ParseReportCSV(f)
	require.NoError(t, err)
	assert.Len(t, got.Rows, 2)

	assert.Error(t, w.WriteReportFile(path, nil, false))

	err = w.WriteReportFile(filepath.Dir(path), sampleTable(), false)
	require.Error(t, err)
	assert.Equal(t, apierrors.ErrTypeStorage, apierrors.TypeOf(err))
}
