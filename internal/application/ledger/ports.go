package ledger

import (
	"context"
	"time"
)

// AgingExporter renders an aging report into a downloadable file
type AgingExporter interface {
	ExportAging(report *AgingReport) ([]byte, error)
	ContentType() string
	Extension() string
}

// ReportArchive stores rendered reports and links to them
type ReportArchive interface {
	Key(name string) string
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// Metrics records ledger business events
type Metrics interface {
	RecordGuardDecision(ctx context.Context, partyType string, allowed bool)
	RecordEntry(ctx context.Context, partyType, kind string)
}

type noopMetrics struct{}

func (noopMetrics) RecordGuardDecision(context.Context, string, bool) {}
func (noopMetrics) RecordEntry(context.Context, string, string)       {}
