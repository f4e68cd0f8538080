package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics counts credit guard decisions and posted entries.
type LedgerMetrics struct {
	guardDecisions *Counter
	entries        *Counter
}

// NewLedgerMetrics creates the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	guardDecisions, err := NewCounter(meter,
		"ledger_credit_guard_decisions_total",
		"Credit guard evaluations by party type and outcome",
		"{decision}",
	)
	if err != nil {
		return nil, err
	}
	entries, err := NewCounter(meter,
		"ledger_entries_total",
		"Transactions posted to party ledgers",
		"{entry}",
	)
	if err != nil {
		return nil, err
	}
	return &LedgerMetrics{guardDecisions: guardDecisions, entries: entries}, nil
}

// RecordGuardDecision counts one enforced credit guard evaluation.
func (m *LedgerMetrics) RecordGuardDecision(ctx context.Context, partyType string, allowed bool) {
	m.guardDecisions.Inc(ctx, AttrPartyType.String(partyType), AttrAllowed.Bool(allowed))
}

// RecordEntry counts one posted transaction.
func (m *LedgerMetrics) RecordEntry(ctx context.Context, partyType, kind string) {
	m.entries.Inc(ctx, AttrPartyType.String(partyType), AttrKind.String(kind))
}
