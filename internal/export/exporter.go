package export

import (
	"context"
	"time"

	"github.com/kennelworks/kennelworks/internal/config"
	"github.com/kennelworks/kennelworks/internal/domain/animal"
	"github.com/kennelworks/kennelworks/internal/logger"
)

// Snapshot is one full copy of the animal set handed to the export
// sink by the backup trigger.
type Snapshot struct {
	TakenAt time.Time
	Animals []*animal.Animal
}

// Exporter writes a snapshot to a destination and returns its
// location.
type Exporter interface {
	Export(ctx context.Context, snapshot *Snapshot) (string, error)
}

// NewExporter builds the configured export pipeline: a local CSV
// directory, fanned out to S3 when offsite backups are enabled.
func NewExporter(cfg *config.Configuration, log *logger.Logger) (Exporter, error) {
	local := NewLocalExporter(cfg.Backup.Directory, log)
	if !cfg.Backup.S3.Enabled {
		return local, nil
	}

	s3Exporter, err := NewS3Exporter(cfg.Backup.S3, log)
	if err != nil {
		return nil, err
	}
	return NewMultiExporter(local, s3Exporter), nil
}

// MultiExporter fans a snapshot out to several destinations and
// returns the first location. An error from any destination fails the
// export; the next backup window is the retry.
type MultiExporter struct {
	exporters []Exporter
}

func NewMultiExporter(exporters ...Exporter) *MultiExporter {
	return &MultiExporter{exporters: exporters}
}

func (m *MultiExporter) Export(ctx context.Context, snapshot *Snapshot) (string, error) {
	var first string
	for i, exporter := range m.exporters {
		location, err := exporter.Export(ctx, snapshot)
		if err != nil {
			return "", err
		}
		if i == 0 {
			first = location
		}
	}
	return first, nil
}
