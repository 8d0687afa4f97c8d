// Package exporter writes result tables as CSV.
//
// The report layout is fixed:
//
//	Referencia, Vendas totais, Qtd média mes, Meses abaixo do limite, <YYYY-MM>..., Qtd abaixo do limite, Meses < limite
//
// Quantities are exact decimal strings. ParseReportCSV reads an export back
// into a domain.ResultTable.
package exporter
