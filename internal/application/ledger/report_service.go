package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/infrastructure/logger"
	"github.com/tradebooks/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var (
	statementTotalFields = []string{"debit", "credit"}
	agingTotalFields     = []string{"amount", "bill_days", "over_days"}
)

// ReportService builds statements, aging reports and totals
type ReportService struct {
	partyRepo   ledger.PartyRepository
	txRepo      ledger.TransactionRepository
	exporter    AgingExporter
	archive     ReportArchive
	exportLimit int
	now         func() time.Time
}

// ReportServiceOption configures a ReportService
type ReportServiceOption func(*ReportService)

// WithExporter sets the aging workbook renderer
func WithExporter(e AgingExporter) ReportServiceOption {
	return func(s *ReportService) {
		s.exporter = e
	}
}

// WithArchive sets where exported reports are stored
func WithArchive(a ReportArchive) ReportServiceOption {
	return func(s *ReportService) {
		s.archive = a
	}
}

// WithExportLimit caps the number of invoices in one export; zero means no cap
func WithExportLimit(n int) ReportServiceOption {
	return func(s *ReportService) {
		s.exportLimit = n
	}
}

// WithClock overrides the clock used for default as-of dates and archive names
func WithClock(now func() time.Time) ReportServiceOption {
	return func(s *ReportService) {
		s.now = now
	}
}

// NewReportService creates a new ReportService
func NewReportService(partyRepo ledger.PartyRepository, txRepo ledger.TransactionRepository, opts ...ReportServiceOption) *ReportService {
	s := &ReportService{
		partyRepo: partyRepo,
		txRepo:    txRepo,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Statement returns a party ledger for the requested window. Transactions
// before From fold into the opening balance.
func (s *ReportService) Statement(ctx context.Context, partyID uuid.UUID, req StatementRequest) (*Statement, error) {
	if !req.From.IsZero() && !req.To.IsZero() && ledger.CalendarDay(req.From).After(ledger.CalendarDay(req.To)) {
		return nil, shared.NewDomainError(shared.CodeInvalidDate, "from date cannot be after to date")
	}

	party, err := s.partyRepo.FindByID(ctx, partyID)
	if err != nil {
		return nil, err
	}
	txs, err := s.txRepo.FindByParty(ctx, partyID, req.To)
	if err != nil {
		return nil, err
	}

	convention := party.Type.Convention()
	before, window := ledger.SplitAt(txs, req.From)
	opening := ledger.OpeningBalance(before, party.OpeningBalance, convention)

	rows, err := ledger.BuildLedgerWithConvention(window, opening, convention)
	if err != nil {
		// Stored transactions were validated on write; a failure here means bad data
		logger.L(ctx).Error("Stored transactions failed validation",
			zap.String("party_id", partyID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	statement := &Statement{
		Party:          ToPartyResponse(party),
		From:           formatOptionalDate(req.From),
		To:             formatOptionalDate(req.To),
		Convention:     convention.String(),
		OpeningBalance: opening,
		Rows:           make([]StatementRow, len(rows)),
		Totals:         ledger.Aggregate(rows, statementTotalFields),
		ClosingBalance: ledger.ClosingBalance(rows, opening),
	}
	for i := range rows {
		statement.Rows[i] = StatementRow{
			TransactionResponse: ToTransactionResponse(&rows[i].Transaction),
			RunningBalance:      rows[i].RunningBalance,
		}
	}
	return statement, nil
}

// AgingReport ages every matching invoice against its settlement date, or the
// as-of date (default today) while it is open.
func (s *ReportService) AgingReport(ctx context.Context, req AgingRequest) (*AgingReport, error) {
	partyType := ledger.PartyType(req.PartyType)
	if req.PartyType != "" && !partyType.IsValid() {
		return nil, shared.NewValidationError("Invalid party type: " + req.PartyType)
	}
	asOf := ledger.CalendarDay(req.AsOf)
	if req.AsOf.IsZero() {
		asOf = ledger.CalendarDay(s.now())
	}

	invoices, err := s.txRepo.FindInvoices(ctx, ledger.InvoiceFilter{
		PartyType:      partyType,
		PartyID:        req.PartyID,
		IncludeSettled: req.IncludeSettled,
		AsOf:           asOf,
	})
	if err != nil {
		return nil, err
	}

	partyIDs := make([]uuid.UUID, 0, len(invoices))
	seen := make(map[uuid.UUID]bool, len(invoices))
	for _, inv := range invoices {
		if !seen[inv.PartyID] {
			seen[inv.PartyID] = true
			partyIDs = append(partyIDs, inv.PartyID)
		}
	}
	parties, err := s.partyRepo.FindByIDs(ctx, partyIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]AgingRow, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		party, ok := parties[inv.PartyID]
		if !ok {
			logger.L(ctx).Warn("Invoice references a missing party",
				zap.String("transaction_id", inv.ID.String()),
				zap.String("party_id", inv.PartyID.String()),
			)
			continue
		}

		reference := asOf
		if inv.SettledOn != nil && inv.SettledOn.Before(asOf) {
			reference = *inv.SettledOn
		}
		record, err := ledger.ComputeAging(inv.Date, party.CreditDaysFor(inv), reference)
		if err != nil {
			return nil, err
		}
		rows = append(rows, toAgingRow(inv, party, record))
	}

	report := &AgingReport{
		AsOf:           asOf.Format(ledger.DateLayout),
		PartyType:      req.PartyType,
		IncludeSettled: req.IncludeSettled,
		Rows:           rows,
		Buckets:        summarizeBuckets(rows),
		Totals:         ledger.Aggregate(rows, agingTotalFields),
	}
	return report, nil
}

// Totals sums the requested fields over caller-supplied rows. Values are
// parsed leniently, so "1,500" counts as 1500 and junk counts as zero.
func (s *ReportService) Totals(_ context.Context, req TotalsRequest) (map[string]decimal.Decimal, error) {
	if len(req.Fields) == 0 {
		return nil, shared.NewValidationError("At least one field is required")
	}
	records := make([]ledger.Record, len(req.Rows))
	for i, row := range req.Rows {
		records[i] = ledger.Record(row)
	}
	return ledger.Aggregate(records, req.Fields), nil
}

// ExportAging renders the aging report as a workbook. With archive set the
// file is also stored and a time-limited download link returned.
func (s *ReportService) ExportAging(ctx context.Context, req AgingRequest, archive bool) (*ExportResult, error) {
	if s.exporter == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Report export is not configured")
	}
	if archive && s.archive == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Report archive is not configured")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_report", "export_aging")
	defer span.End()

	report, err := s.AgingReport(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAsOf, report.AsOf,
		telemetry.SpanAttrRows, len(report.Rows),
	)
	if s.exportLimit > 0 && len(report.Rows) > s.exportLimit {
		return nil, shared.NewValidationError(fmt.Sprintf(
			"Report has %d invoices, more than the export limit of %d; narrow the filter", len(report.Rows), s.exportLimit))
	}

	data, err := s.exporter.ExportAging(report)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to render aging report: %w", err)
	}

	result := &ExportResult{
		FileName:    agingFileName(report, s.exporter.Extension()),
		ContentType: s.exporter.ContentType(),
		Data:        data,
	}
	if !archive {
		return result, nil
	}

	generated := s.now().UTC().Format("20060102T150405Z")
	key := s.archive.Key(strings.TrimSuffix(result.FileName, s.exporter.Extension()) + "-" + generated + s.exporter.Extension())
	if err := s.archive.Upload(ctx, key, data, result.ContentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	link, expiresAt, err := s.archive.GenerateDownloadURL(ctx, key, 0)
	if err != nil {
		return nil, err
	}
	result.ArchiveKey = key
	result.DownloadURL = link
	result.ExpiresAt = &expiresAt

	logger.L(ctx).Info("Aging report archived",
		zap.String("key", key),
		zap.Int("invoices", len(report.Rows)),
	)
	return result, nil
}

func toAgingRow(inv *ledger.Transaction, party *ledger.Party, record ledger.AgingRecord) AgingRow {
	return AgingRow{
		TransactionID: inv.ID,
		PartyID:       party.ID,
		PartyCode:     party.Code,
		PartyName:     party.Name,
		PartyType:     string(party.Type),
		Reference:     inv.Reference,
		InvoiceDate:   record.InvoiceDate.Format(ledger.DateLayout),
		DueDate:       record.DueDate.Format(ledger.DateLayout),
		ReferenceDate: record.ReferenceDate.Format(ledger.DateLayout),
		AllowedDays:   record.AllowedDays,
		BillDays:      record.BillDays,
		OverDays:      record.OverDays,
		Bucket:        record.Bucket,
		Amount:        inv.Amount(),
		Settled:       inv.IsSettled(),
	}
}

func summarizeBuckets(rows []AgingRow) []AgingBucketSummary {
	index := make(map[string]int, len(ledger.Buckets))
	summaries := make([]AgingBucketSummary, len(ledger.Buckets))
	for i, b := range ledger.Buckets {
		index[b] = i
		summaries[i] = AgingBucketSummary{Bucket: b, Amount: decimal.Zero}
	}
	for _, row := range rows {
		i := index[row.Bucket]
		summaries[i].Count++
		summaries[i].Amount = summaries[i].Amount.Add(row.Amount)
	}
	return summaries
}

func agingFileName(report *AgingReport, ext string) string {
	scope := "all"
	if report.PartyType != "" {
		scope = strings.ToLower(report.PartyType)
	}
	return fmt.Sprintf("aging-%s-%s%s", scope, report.AsOf, ext)
}

func formatOptionalDate(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := ledger.CalendarDay(t).Format(ledger.DateLayout)
	return &s
}
