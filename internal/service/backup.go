package service

import (
	"context"

	"github.com/kennelworks/kennelworks/internal/api/dto"
	"github.com/kennelworks/kennelworks/internal/export"
	"github.com/kennelworks/kennelworks/internal/types"
)

// BackupService snapshots the full animal set into the export sink at
// each configured backup window.
type BackupService interface {
	RunBackup(ctx context.Context) (*dto.BackupRunResponse, error)
}

type backupService struct {
	ServiceParams
}

func NewBackupService(params ServiceParams) BackupService {
	return &backupService{
		ServiceParams: params,
	}
}

func (s *backupService) RunBackup(ctx context.Context) (*dto.BackupRunResponse, error) {
	animals, err := s.AnimalRepo.ListAll(ctx, types.NewNoLimitAnimalFilter())
	if err != nil {
		return nil, err
	}

	snapshot := &export.Snapshot{
		TakenAt: s.Clock.Now().UTC(),
		Animals: animals,
	}
	location, err := s.Exporter.Export(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	runID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BACKUP)
	s.Logger.Infow("backup completed",
		"run_id", runID,
		"location", location,
		"animals", len(animals))
	return &dto.BackupRunResponse{
		RunID:    runID,
		Location: location,
		Animals:  len(animals),
		TakenAt:  snapshot.TakenAt,
	}, nil
}
