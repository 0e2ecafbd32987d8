package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kennelworks/kennelworks/internal/domain/animal"
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/testutil"
	"github.com/kennelworks/kennelworks/internal/types"
)

type BackupServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BackupService
}

func TestBackupService(t *testing.T) {
	suite.Run(t, new(BackupServiceSuite))
}

func (s *BackupServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBackupService(ServiceParams{
		Logger:     s.GetLogger(),
		Config:     s.GetConfig(),
		Clock:      s.GetClock(),
		AnimalRepo: s.GetAnimalRepo(),
		Notifier:   s.GetNotifier(),
		Exporter:   s.GetExporter(),
	})
}

func (s *BackupServiceSuite) seedAnimal(name string) {
	a := &animal.Animal{
		Name:          name,
		OwnerName:     "Jordan Reeves",
		PresenceState: types.PresenceStateDaycarePresent,
		ArrivalAt:     s.GetClock().Now().UTC(),
	}
	s.NoError(s.GetAnimalRepo().Create(s.GetContext(), a))
}

func (s *BackupServiceSuite) TestRunBackup() {
	s.seedAnimal("Biscuit")
	s.seedAnimal("Mabel")

	resp, err := s.service.RunBackup(s.GetContext())
	s.NoError(err)
	s.True(strings.HasPrefix(resp.RunID, "backup_"), resp.RunID)
	s.Equal("memory://backup/1", resp.Location)
	s.Equal(2, resp.Animals)
	s.Equal(s.GetClock().Now().UTC(), resp.TakenAt)

	snapshots := s.GetExporter().Snapshots
	s.Len(snapshots, 1)
	s.Len(snapshots[0].Animals, 2)
}

func (s *BackupServiceSuite) TestRunBackupEmptySet() {
	resp, err := s.service.RunBackup(s.GetContext())
	s.NoError(err)
	s.Equal(0, resp.Animals)
	s.Len(s.GetExporter().Snapshots, 1)
	s.Empty(s.GetExporter().Snapshots[0].Animals)
}

func (s *BackupServiceSuite) TestRunBackupExporterFailure() {
	s.seedAnimal("Biscuit")
	s.GetExporter().Err = ierr.NewError("disk full").Mark(ierr.ErrSystem)

	_, err := s.service.RunBackup(s.GetContext())
	s.Error(err)
	s.Empty(s.GetExporter().Snapshots)
}
