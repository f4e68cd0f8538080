// Package export renders ledger reports into downloadable spreadsheet files.
package export

import (
	"fmt"

	"github.com/shopspring/decimal"
	appledger "github.com/tradebooks/backend/internal/application/ledger"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Sheet names in the aging workbook
const (
	AgingSheet   = "Aging"
	BucketsSheet = "Buckets"
)

// XLSXContentType is the MIME type of xlsx workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var agingHeaders = []any{
	"Party Code", "Party Name", "Party Type", "Reference",
	"Invoice Date", "Allowed Days", "Due Date", "Reference Date",
	"Bill Days", "Over Days", "Bucket", "Amount", "Settled",
}

// ExcelExporter renders aging reports as xlsx workbooks
type ExcelExporter struct {
	lang language.Tag
}

// NewExcelExporter creates an exporter with English labels
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{lang: language.English}
}

// ContentType returns the workbook MIME type
func (e *ExcelExporter) ContentType() string {
	return XLSXContentType
}

// Extension returns the workbook file extension
func (e *ExcelExporter) Extension() string {
	return ".xlsx"
}

// ExportAging writes one row per invoice on the Aging sheet followed by a
// totals row, and the per-bucket sums on the Buckets sheet.
func (e *ExcelExporter) ExportAging(report *appledger.AgingReport) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", AgingSheet); err != nil {
		return nil, fmt.Errorf("failed to name aging sheet: %w", err)
	}
	if _, err := f.NewSheet(BucketsSheet); err != nil {
		return nil, fmt.Errorf("failed to create buckets sheet: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}
	if err := e.writeAgingSheet(f, report, styles); err != nil {
		return nil, err
	}
	if err := e.writeBucketsSheet(f, report, styles); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetStyles struct {
	header int
	amount int
	total  int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	}); err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	// 4 is the built-in "#,##0.00" format
	if s.amount, err = f.NewStyle(&excelize.Style{NumFmt: 4}); err != nil {
		return s, fmt.Errorf("failed to create amount style: %w", err)
	}
	if s.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		NumFmt: 4,
	}); err != nil {
		return s, fmt.Errorf("failed to create total style: %w", err)
	}
	return s, nil
}

func (e *ExcelExporter) writeAgingSheet(f *excelize.File, report *appledger.AgingReport, styles sheetStyles) error {
	title := cases.Title(e.lang)
	printer := message.NewPrinter(e.lang)

	if err := f.SetSheetRow(AgingSheet, "A1", &agingHeaders); err != nil {
		return fmt.Errorf("failed to write aging header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(agingHeaders))
	if err := f.SetCellStyle(AgingSheet, "A1", lastCol+"1", styles.header); err != nil {
		return err
	}

	for i, row := range report.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			row.PartyCode, row.PartyName, title.String(row.PartyType), row.Reference,
			row.InvoiceDate, row.AllowedDays, row.DueDate, row.ReferenceDate,
			row.BillDays, row.OverDays, row.Bucket, row.Amount.InexactFloat64(), yesNo(row.Settled),
		}
		if err := f.SetSheetRow(AgingSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write aging row %d: %w", i+1, err)
		}
	}

	totalRow := len(report.Rows) + 2
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	totals := []any{
		printer.Sprintf("Total (%d invoices)", len(report.Rows)), nil, nil, nil,
		nil, nil, nil, nil,
		intTotal(report.Totals, "bill_days"), intTotal(report.Totals, "over_days"), nil,
		report.Totals["amount"].InexactFloat64(), nil,
	}
	if err := f.SetSheetRow(AgingSheet, cell, &totals); err != nil {
		return fmt.Errorf("failed to write aging totals: %w", err)
	}

	if len(report.Rows) > 0 {
		if err := f.SetCellStyle(AgingSheet, "L2", fmt.Sprintf("L%d", totalRow-1), styles.amount); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(AgingSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), styles.total); err != nil {
		return err
	}

	if err := f.SetColWidth(AgingSheet, "A", lastCol, 14); err != nil {
		return err
	}
	if err := f.SetColWidth(AgingSheet, "B", "B", 28); err != nil {
		return err
	}
	return f.SetPanes(AgingSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (e *ExcelExporter) writeBucketsSheet(f *excelize.File, report *appledger.AgingReport, styles sheetStyles) error {
	title := cases.Title(e.lang)

	header := []any{"Bucket", "Invoices", "Amount"}
	if err := f.SetSheetRow(BucketsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write bucket header: %w", err)
	}
	if err := f.SetCellStyle(BucketsSheet, "A1", "C1", styles.header); err != nil {
		return err
	}

	count := 0
	for i, b := range report.Buckets {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{title.String(b.Bucket), b.Count, b.Amount.InexactFloat64()}
		if err := f.SetSheetRow(BucketsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write bucket %s: %w", b.Bucket, err)
		}
		count += b.Count
	}

	totalRow := len(report.Buckets) + 2
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	totals := []any{"Total", count, report.Totals["amount"].InexactFloat64()}
	if err := f.SetSheetRow(BucketsSheet, cell, &totals); err != nil {
		return fmt.Errorf("failed to write bucket totals: %w", err)
	}
	if err := f.SetCellStyle(BucketsSheet, "C2", fmt.Sprintf("C%d", totalRow), styles.amount); err != nil {
		return err
	}
	return f.SetColWidth(BucketsSheet, "A", "C", 16)
}

func intTotal(totals map[string]decimal.Decimal, field string) int64 {
	return totals[field].IntPart()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

var _ appledger.AgingExporter = (*ExcelExporter)(nil)
