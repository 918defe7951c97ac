package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jatenx/invoice-pipeline/internal/parser"
)

func TestBuildReportXLSX(t *testing.T) {
	rec := parser.NewRecord()
	rec.InvoiceNumber = "F-2021-0042"
	rec.ImporterName = "Aceros del Norte"
	rec.Suppliers = append(rec.Suppliers, parser.Supplier{Name: "acme"})

	rows := []Row{
		{Source: "data/2021/a.txt", Status: "success", OutputFile: "out/2021/a.json", Record: rec},
		{Source: "data/2021/b.txt", Status: "error", Message: "read failed"},
	}

	data, err := NewService(nil).BuildReportXLSX(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	const sheet = "Invoices"

	header, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Source", header)

	invoice, err := f.GetCellValue(sheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "F-2021-0042", invoice)

	suppliers, err := f.GetCellValue(sheet, "H2")
	require.NoError(t, err)
	assert.Equal(t, "1", suppliers)

	status, err := f.GetCellValue(sheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "error", status)

	msg, err := f.GetCellValue(sheet, "K3")
	require.NoError(t, err)
	assert.Equal(t, "read failed", msg)

	// failed row has no invoice fields
	empty, err := f.GetCellValue(sheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestBuildReportXLSXEmpty(t *testing.T) {
	data, err := NewService(nil).BuildReportXLSX(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}
