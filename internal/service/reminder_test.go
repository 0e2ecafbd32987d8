package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kennelworks/kennelworks/internal/domain/animal"
	"github.com/kennelworks/kennelworks/internal/testutil"
	"github.com/kennelworks/kennelworks/internal/types"
)

type ReminderServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ReminderService
}

func TestReminderService(t *testing.T) {
	suite.Run(t, new(ReminderServiceSuite))
}

func (s *ReminderServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewReminderService(ServiceParams{
		Logger:     s.GetLogger(),
		Config:     s.GetConfig(),
		Clock:      s.GetClock(),
		AnimalRepo: s.GetAnimalRepo(),
		Notifier:   s.GetNotifier(),
		Exporter:   s.GetExporter(),
	})
}

func (s *ReminderServiceSuite) seedAnimal(name string, state types.PresenceState, mutate func(*animal.Animal)) *animal.Animal {
	a := &animal.Animal{
		Name:          name,
		OwnerName:     "Jordan Reeves",
		PresenceState: state,
		ArrivalAt:     s.GetClock().Now().UTC(),
	}
	if mutate != nil {
		mutate(a)
	}
	s.NoError(s.GetAnimalRepo().Create(s.GetContext(), a))
	return a
}

func (s *ReminderServiceSuite) TestOnlyPresentAnimalsArePending() {
	s.seedAnimal("Biscuit", types.PresenceStateDaycarePresent, nil)
	s.seedAnimal("Mabel", types.PresenceStateDaycareDeparted, nil)
	s.seedAnimal("Ziggy", types.PresenceStateBoarding, nil)

	resp, err := s.service.RunDepartureReminder(s.GetContext())
	s.NoError(err)
	s.True(strings.HasPrefix(resp.RunID, "remind_"), resp.RunID)
	s.Equal([]string{"Biscuit"}, resp.Pending)
	s.True(resp.Notified)

	notifications := s.GetNotifier().Notifications
	s.Len(notifications, 1)
	s.Equal("Pending departures", notifications[0].Title)
	s.Contains(notifications[0].Body, "Biscuit")
	s.NotContains(notifications[0].Body, "Ziggy")
}

func (s *ReminderServiceSuite) TestNoPendingDeparturesSkipsNotification() {
	s.seedAnimal("Mabel", types.PresenceStateDaycareDeparted, nil)
	s.seedAnimal("Ziggy", types.PresenceStateBoarding, nil)

	resp, err := s.service.RunDepartureReminder(s.GetContext())
	s.NoError(err)
	s.Empty(resp.Pending)
	s.False(resp.Notified)
	s.Empty(s.GetNotifier().Notifications)
}

func (s *ReminderServiceSuite) TestExpiringVaccinationsFlagged() {
	soon := s.GetClock().Now().Add(10 * 24 * time.Hour)
	farOut := s.GetClock().Now().Add(200 * 24 * time.Hour)

	s.seedAnimal("Biscuit", types.PresenceStateDaycarePresent, func(a *animal.Animal) {
		a.Vaccinations = map[types.Vaccine]*time.Time{
			types.VaccineRabies: &soon,
			types.VaccineDHPP:   &farOut,
		}
	})
	// Unknown expirations are never flagged.
	s.seedAnimal("Mabel", types.PresenceStateDaycareDeparted, nil)

	resp, err := s.service.RunDepartureReminder(s.GetContext())
	s.NoError(err)
	s.Equal([]string{"Biscuit (rabies)"}, resp.ExpiringVaccinations)

	notifications := s.GetNotifier().Notifications
	s.Len(notifications, 1)
	s.Contains(notifications[0].Body, "Vaccinations expiring soon: Biscuit (rabies)")
}

func (s *ReminderServiceSuite) TestRerunRepeatsNotificationOnly() {
	s.seedAnimal("Biscuit", types.PresenceStateDaycarePresent, nil)

	_, err := s.service.RunDepartureReminder(s.GetContext())
	s.NoError(err)
	_, err = s.service.RunDepartureReminder(s.GetContext())
	s.NoError(err)

	// The check is stateless: a re-fire repeats the notification but
	// changes no records.
	s.Len(s.GetNotifier().Notifications, 2)
	changes, err := s.GetAnimalRepo().List(s.GetContext(), types.NewNoLimitAnimalFilter())
	s.NoError(err)
	s.Len(changes, 1)
}
