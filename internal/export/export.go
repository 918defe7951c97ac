// Package export renders batch results as an XLSX report.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jatenx/invoice-pipeline/internal/parser"
)

// Row is one document's outcome in the report.
type Row struct {
	Source     string
	Status     string
	OutputFile string
	Message    string
	Record     *parser.InvoiceRecord // nil when the document failed
}

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// BuildReportXLSX returns an XLSX workbook (as bytes) summarizing a batch:
// one row per document with the key extracted invoice fields.
func (s *Service) BuildReportXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet excelize creates
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Source",
		"Status",
		"Invoice Number",
		"Invoice Date",
		"Importer",
		"Importer RFC",
		"Pedimento",
		"Suppliers",
		"Line Items",
		"Output File",
		"Message",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rowN := 2
	for _, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowN)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.Source)
		write(2, r.Status)
		if r.Record != nil {
			write(3, r.Record.InvoiceNumber)
			write(4, r.Record.InvoiceDate)
			write(5, r.Record.ImporterName)
			write(6, r.Record.ImporterTaxID)
			write(7, r.Record.DeclarationNumber)
			write(8, len(r.Record.Suppliers))
			write(9, len(r.Record.LineItems))
		}
		write(10, r.OutputFile)
		write(11, truncate(r.Message, 140))
		rowN++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 40) // source path
	_ = f.SetColWidth(sheet, "C", "D", 18) // invoice number/date
	_ = f.SetColWidth(sheet, "E", "E", 28) // importer
	_ = f.SetColWidth(sheet, "J", "J", 40) // output path
	_ = f.SetColWidth(sheet, "K", "K", 48) // message

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
