package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/kennelworks/kennelworks/internal/api/dto"
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/testutil"
	"github.com/kennelworks/kennelworks/internal/types"
)

type AnimalServiceSuite struct {
	testutil.BaseServiceTestSuite
	service AnimalService
}

func TestAnimalService(t *testing.T) {
	suite.Run(t, new(AnimalServiceSuite))
}

func (s *AnimalServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewAnimalService(s.serviceParams())
}

func (s *AnimalServiceSuite) serviceParams() ServiceParams {
	return ServiceParams{
		Logger:     s.GetLogger(),
		Config:     s.GetConfig(),
		Clock:      s.GetClock(),
		AnimalRepo: s.GetAnimalRepo(),
		Notifier:   s.GetNotifier(),
		Exporter:   s.GetExporter(),
	}
}

func (s *AnimalServiceSuite) createAnimal(name string) *dto.AnimalResponse {
	resp, err := s.service.CreateAnimal(s.GetContext(), dto.CreateAnimalRequest{
		Name:      name,
		OwnerName: "Jordan Reeves",
	})
	s.NoError(err)
	s.NotNil(resp)
	return resp
}

func (s *AnimalServiceSuite) TestCreateAnimal() {
	expires := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	resp, err := s.service.CreateAnimal(s.GetContext(), dto.CreateAnimalRequest{
		Name:         "Biscuit",
		OwnerName:    "Jordan Reeves",
		OwnerPhone:   "555-0142",
		AgeYears:     3,
		Gender:       types.GenderFemale,
		Neutered:     true,
		Walks:        true,
		HouseFeeding: true,
		Vaccinations: map[string]*time.Time{"rabies": &expires},
	})
	s.NoError(err)
	s.NotEmpty(resp.ID)
	s.Equal("Biscuit", resp.Name)

	// A freshly registered animal is checked in for the day.
	s.Equal(types.PresenceStateDaycarePresent, resp.PresenceState)
	s.Equal(1, resp.VisitCount)
	s.NotNil(resp.LastVisitAt)
	s.Equal(&expires, resp.VaccinationExpiration(types.VaccineRabies))
	s.Equal("test-user", resp.CreatedBy)
}

func (s *AnimalServiceSuite) TestCreateAnimalValidation() {
	_, err := s.service.CreateAnimal(s.GetContext(), dto.CreateAnimalRequest{
		OwnerName: "Jordan Reeves",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreateAnimal(s.GetContext(), dto.CreateAnimalRequest{
		Name:      "Biscuit",
		OwnerName: "Jordan Reeves",
		Gender:    types.Gender("robot"),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	expires := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.service.CreateAnimal(s.GetContext(), dto.CreateAnimalRequest{
		Name:         "Biscuit",
		OwnerName:    "Jordan Reeves",
		Vaccinations: map[string]*time.Time{"smallpox": &expires},
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *AnimalServiceSuite) TestGetAnimalNotFound() {
	_, err := s.service.GetAnimal(s.GetContext(), "animal_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AnimalServiceSuite) TestUpdateAnimal() {
	created := s.createAnimal("Biscuit")

	resp, err := s.service.UpdateAnimal(s.GetContext(), created.ID, dto.UpdateAnimalRequest{
		Notes:    lo.ToPtr("Afraid of vacuum cleaners"),
		AgeYears: lo.ToPtr(4),
	})
	s.NoError(err)
	s.Equal("Afraid of vacuum cleaners", resp.Notes)
	s.Equal(4, resp.AgeYears)

	// Unset fields stay untouched.
	s.Equal("Biscuit", resp.Name)
	s.Equal("Jordan Reeves", resp.OwnerName)
}

func (s *AnimalServiceSuite) TestUpdateAnimalEmptyName() {
	created := s.createAnimal("Biscuit")

	_, err := s.service.UpdateAnimal(s.GetContext(), created.ID, dto.UpdateAnimalRequest{
		Name: lo.ToPtr(""),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *AnimalServiceSuite) TestUpdateVaccinations() {
	created := s.createAnimal("Biscuit")
	expires := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	resp, err := s.service.UpdateAnimal(s.GetContext(), created.ID, dto.UpdateAnimalRequest{
		Vaccinations: map[string]*time.Time{"dhpp": &expires},
	})
	s.NoError(err)
	s.Equal(&expires, resp.VaccinationExpiration(types.VaccineDHPP))

	// A nil expiration removes the entry.
	resp, err = s.service.UpdateAnimal(s.GetContext(), created.ID, dto.UpdateAnimalRequest{
		Vaccinations: map[string]*time.Time{"dhpp": nil},
	})
	s.NoError(err)
	s.Nil(resp.VaccinationExpiration(types.VaccineDHPP))
}

func (s *AnimalServiceSuite) TestDeleteAnimal() {
	created := s.createAnimal("Biscuit")

	err := s.service.DeleteAnimal(s.GetContext(), created.ID)
	s.NoError(err)

	// A tombstoned animal is gone from reads and listings.
	_, err = s.service.GetAnimal(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	list, err := s.service.ListAnimals(s.GetContext(), nil)
	s.NoError(err)
	s.Empty(list.Items)

	// But remains visible to the sync feed as a tombstone.
	changes, err := s.service.ListChanges(s.GetContext(), nil)
	s.NoError(err)
	s.Len(changes.Items, 1)
	s.Equal(created.ID, changes.Items[0].ID)
}

func (s *AnimalServiceSuite) TestListAnimalsOrderedByName() {
	s.createAnimal("Ziggy")
	s.createAnimal("Archie")
	s.createAnimal("Mabel")

	list, err := s.service.ListAnimals(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(3, list.Total)

	names := lo.Map(list.Items, func(r *dto.AnimalResponse, _ int) string { return r.Name })
	s.Equal([]string{"Archie", "Mabel", "Ziggy"}, names)
}

func (s *AnimalServiceSuite) TestListAnimalsByPresence() {
	s.createAnimal("Archie")
	mabel := s.createAnimal("Mabel")
	_, err := s.service.CheckOut(s.GetContext(), mabel.ID)
	s.NoError(err)

	filter := types.NewAnimalFilter()
	filter.PresenceStates = []types.PresenceState{types.PresenceStateDaycarePresent}
	list, err := s.service.ListAnimals(s.GetContext(), filter)
	s.NoError(err)
	s.Equal(1, list.Total)
	s.Equal("Archie", list.Items[0].Name)

	filter = types.NewAnimalFilter()
	filter.OnPremises = lo.ToPtr(false)
	list, err = s.service.ListAnimals(s.GetContext(), filter)
	s.NoError(err)
	s.Equal(1, list.Total)
	s.Equal("Mabel", list.Items[0].Name)
}

func (s *AnimalServiceSuite) TestCheckInAndOut() {
	created := s.createAnimal("Biscuit")

	// Already on the premises after registration.
	_, err := s.service.CheckIn(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	s.GetClock().Advance(2 * time.Hour)
	resp, err := s.service.CheckOut(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.PresenceStateDaycareDeparted, resp.PresenceState)
	s.NotNil(resp.DepartureAt)

	_, err = s.service.CheckOut(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// Next visit increments the counter and clears the departure.
	s.GetClock().Advance(24 * time.Hour)
	resp, err = s.service.CheckIn(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.PresenceStateDaycarePresent, resp.PresenceState)
	s.Equal(2, resp.VisitCount)
	s.Nil(resp.DepartureAt)
	s.Equal(s.GetClock().Now().UTC(), resp.ArrivalAt)
}

func (s *AnimalServiceSuite) TestBeginBoarding() {
	created := s.createAnimal("Biscuit")
	endDate := s.GetClock().Now().Add(72 * time.Hour)

	resp, err := s.service.BeginBoarding(s.GetContext(), created.ID, dto.BeginBoardingRequest{
		EndDate: &endDate,
	})
	s.NoError(err)
	s.Equal(types.PresenceStateBoarding, resp.PresenceState)
	s.Equal(&endDate, resp.BoardingEndDate)
	s.Nil(resp.DepartureAt)

	// Boarding blocks daycare check-in.
	_, err = s.service.CheckIn(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *AnimalServiceSuite) TestBeginBoardingIndefinite() {
	created := s.createAnimal("Biscuit")

	resp, err := s.service.BeginBoarding(s.GetContext(), created.ID, dto.BeginBoardingRequest{})
	s.NoError(err)
	s.Equal(types.PresenceStateBoarding, resp.PresenceState)
	s.Nil(resp.BoardingEndDate)
}

func (s *AnimalServiceSuite) TestBeginBoardingPastEndDate() {
	created := s.createAnimal("Biscuit")
	endDate := s.GetClock().Now().Add(-48 * time.Hour)

	_, err := s.service.BeginBoarding(s.GetContext(), created.ID, dto.BeginBoardingRequest{
		EndDate: &endDate,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *AnimalServiceSuite) TestSetDeparture() {
	created := s.createAnimal("Biscuit")
	pickup := s.GetClock().Now().Add(8 * time.Hour)

	resp, err := s.service.SetDeparture(s.GetContext(), created.ID, dto.SetDepartureRequest{
		DepartureAt: pickup,
	})
	s.NoError(err)
	s.Equal(pickup.UTC(), *resp.DepartureAt)

	// Departure times apply only to present daycare animals.
	_, err = s.service.CheckOut(s.GetContext(), created.ID)
	s.NoError(err)
	_, err = s.service.SetDeparture(s.GetContext(), created.ID, dto.SetDepartureRequest{
		DepartureAt: pickup,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *AnimalServiceSuite) TestListChangesWatermark() {
	first := s.createAnimal("Archie")

	changes, err := s.service.ListChanges(s.GetContext(), nil)
	s.NoError(err)
	s.Len(changes.Items, 1)
	s.NotNil(changes.Watermark)
	s.Equal(first.UpdatedAt, *changes.Watermark)

	watermark := *changes.Watermark
	s.GetClock().Advance(time.Minute)
	second := s.createAnimal("Mabel")

	// Resuming from the watermark yields only what changed after it.
	changes, err = s.service.ListChanges(s.GetContext(), &watermark)
	s.NoError(err)
	s.Len(changes.Items, 1)
	s.Equal(second.ID, changes.Items[0].ID)
	s.True(changes.Watermark.After(watermark))

	// No changes past the new watermark: empty page, watermark echoed.
	changes, err = s.service.ListChanges(s.GetContext(), changes.Watermark)
	s.NoError(err)
	s.Empty(changes.Items)
	s.NotNil(changes.Watermark)
}

func (s *AnimalServiceSuite) TestPurgeTombstones() {
	created := s.createAnimal("Biscuit")
	s.NoError(s.service.DeleteAnimal(s.GetContext(), created.ID))

	s.GetClock().Advance(48 * time.Hour)
	resp, err := s.service.PurgeTombstones(s.GetContext(), dto.PurgeTombstonesRequest{
		Before: s.GetClock().Now(),
	})
	s.NoError(err)
	s.Equal(1, resp.Purged)

	// Purged records disappear from the sync feed entirely.
	changes, err := s.service.ListChanges(s.GetContext(), nil)
	s.NoError(err)
	s.Empty(changes.Items)
}

func (s *AnimalServiceSuite) TestPurgeSparesRecentTombstones() {
	created := s.createAnimal("Biscuit")
	s.NoError(s.service.DeleteAnimal(s.GetContext(), created.ID))

	cutoff := s.GetClock().Now().Add(-time.Hour)
	resp, err := s.service.PurgeTombstones(s.GetContext(), dto.PurgeTombstonesRequest{Before: cutoff})
	s.NoError(err)
	s.Equal(0, resp.Purged)
}
