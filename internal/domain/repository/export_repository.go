package repository

import (
	"context"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
)

// SnapshotPublisher writes the run's documents to a durable sink. Pack
// reports are written before the consolidated snapshot; an implementation
// must not leave a partially written consolidated document behind.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snapshot *entity.Snapshot, packReports []entity.PackReport) (string, error)
}

// ExportRepository writes local report files in the requested formats.
type ExportRepository interface {
	ExportSnapshotToJSON(snapshot *entity.Snapshot, filename, outputDir string) (string, error)
	ExportFindingsToCSV(snapshot *entity.Snapshot, filename, outputDir string) (string, error)
	ExportSnapshotToPDF(snapshot *entity.Snapshot, filename, outputDir string) (string, error)
}

// MetricsRepository records the outcome of a run.
type MetricsRepository interface {
	RecordRun(ctx context.Context, snapshot *entity.Snapshot, runErr error) error
}
