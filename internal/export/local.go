package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/logger"
)

// LocalExporter writes CSV snapshots into a directory on disk.
type LocalExporter struct {
	dir    string
	logger *logger.Logger
}

func NewLocalExporter(dir string, log *logger.Logger) *LocalExporter {
	return &LocalExporter{dir: dir, logger: log}
}

func (e *LocalExporter) Export(_ context.Context, snapshot *Snapshot) (string, error) {
	data, err := RenderCSV(snapshot)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to create the backup directory").
			Mark(ierr.ErrSystem)
	}

	name := fmt.Sprintf("backup_%s.csv", snapshot.TakenAt.UTC().Format("20060102_150405"))
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to write the backup file").
			Mark(ierr.ErrSystem)
	}

	e.logger.Infow("wrote backup snapshot",
		"path", path,
		"animals", len(snapshot.Animals))
	return path, nil
}
