package policies

import (
	"context"
	"time"

	"churnportal/internal/domain/employee"
)

type PredictionKind string

const (
	KindSingle PredictionKind = "single"
	KindBatch  PredictionKind = "batch"
)

// PredictionEvent describes one completed submission.
type PredictionEvent struct {
	ID         string                 `json:"id"`
	Kind       PredictionKind         `json:"kind"`
	Username   string                 `json:"username,omitempty"`
	Scale      employee.Scale         `json:"scale"`
	Records    int                    `json:"records"`
	Label      string                 `json:"label,omitempty"`
	Summary    *employee.BatchSummary `json:"summary,omitempty"`
	Failed     bool                   `json:"failed"`
	Cause      string                 `json:"cause,omitempty"`
	DurationMS int64                  `json:"duration_ms"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type AuditPort interface {
	PublishPrediction(ctx context.Context, event PredictionEvent) error
}

// ReportArchivePort stores exported reports and returns a link to them.
type ReportArchivePort interface {
	Archive(ctx context.Context, owner string, data []byte) (url string, err error)
}

// ReportExporter renders a finished batch as a downloadable workbook.
type ReportExporter interface {
	ExportBatch(rows []map[string]string, outcome employee.BatchOutcome) ([]byte, error)
}
