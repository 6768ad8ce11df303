package reports

import (
	"context"
	"errors"
	"log/slog"

	"churnportal/internal/app/policies"
	"churnportal/internal/domain/employee"
)

var ErrNothingToExport = errors.New("reports: no batch result to export")

// Service exports batch results and, when an archive is configured, keeps a
// copy of every successful report.
type Service struct {
	Exporter policies.ReportExporter
	Archive  policies.ReportArchivePort
	Logger   *slog.Logger
}

func (s *Service) Export(rows []map[string]string, outcome employee.BatchOutcome) ([]byte, error) {
	if s.Exporter == nil {
		return nil, errors.New("reports: exporter required")
	}
	if len(rows) == 0 {
		return nil, ErrNothingToExport
	}
	return s.Exporter.ExportBatch(rows, outcome)
}

// Enabled reports whether successful batches are archived.
func (s *Service) Enabled() bool {
	return s != nil && s.Exporter != nil && s.Archive != nil
}

// ArchiveBatch uploads the report of a successful batch and returns its URL.
// Failures are logged and yield "".
func (s *Service) ArchiveBatch(ctx context.Context, owner string, rows []map[string]string, outcome employee.BatchOutcome) string {
	if !s.Enabled() || outcome.Failed() {
		return ""
	}
	data, err := s.Export(rows, outcome)
	if err != nil {
		s.logWarn("report export failed", err)
		return ""
	}
	url, err := s.Archive.Archive(context.WithoutCancel(ctx), owner, data)
	if err != nil {
		s.logWarn("report archive failed", err)
		return ""
	}
	if s.Logger != nil {
		s.Logger.Info("batch report archived", "owner", owner, "url", url, "bytes", len(data))
	}
	return url
}

func (s *Service) logWarn(msg string, err error) {
	if s.Logger == nil {
		return
	}
	s.Logger.Warn(msg, "error", err)
}
