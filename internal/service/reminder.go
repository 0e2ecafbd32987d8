package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/kennelworks/kennelworks/internal/api/dto"
	"github.com/kennelworks/kennelworks/internal/domain/animal"
	"github.com/kennelworks/kennelworks/internal/types"
)

// vaccinationWarningWindow is how far ahead the reminder flags
// upcoming vaccination expirations.
const vaccinationWarningWindow = 30 * 24 * time.Hour

// ReminderService emits the end-of-day departure reminder. The check
// is stateless and side-effect-only, so a scheduler re-fire at worst
// repeats the notification.
type ReminderService interface {
	RunDepartureReminder(ctx context.Context) (*dto.ReminderRunResponse, error)
}

type reminderService struct {
	ServiceParams
}

func NewReminderService(params ServiceParams) ReminderService {
	return &reminderService{
		ServiceParams: params,
	}
}

func (s *reminderService) RunDepartureReminder(ctx context.Context) (*dto.ReminderRunResponse, error) {
	animals, err := s.AnimalRepo.ListAll(ctx, types.NewNoLimitAnimalFilter())
	if err != nil {
		return nil, err
	}

	// Boarding animals stay overnight: only daycare animals still on
	// the premises are pending departures.
	pending := lo.FilterMap(animals, func(a *animal.Animal, _ int) (string, bool) {
		return a.Name, a.PresenceState == types.PresenceStateDaycarePresent
	})
	expiring := s.expiringVaccinations(animals)

	response := &dto.ReminderRunResponse{
		RunID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REMINDER),
		Pending:              pending,
		ExpiringVaccinations: expiring,
	}
	if len(pending) == 0 {
		s.Logger.Debugw("no pending departures, skipping reminder")
		return response, nil
	}

	body := fmt.Sprintf("Still on the premises: %s.", strings.Join(pending, ", "))
	if len(expiring) > 0 {
		body += fmt.Sprintf(" Vaccinations expiring soon: %s.", strings.Join(expiring, ", "))
	}
	s.Notifier.Notify(ctx, "Pending departures", body)
	response.Notified = true

	s.Logger.Infow("sent departure reminder",
		"pending", len(pending),
		"expiring_vaccinations", len(expiring))
	return response, nil
}

// expiringVaccinations names animals with a vaccination expiring
// within the warning window. An unknown expiration is never flagged.
func (s *reminderService) expiringVaccinations(animals []*animal.Animal) []string {
	cutoff := s.Clock.Now().Add(vaccinationWarningWindow)

	var flagged []string
	for _, a := range animals {
		for _, vaccine := range types.AllVaccines() {
			expires := a.VaccinationExpiration(vaccine)
			if expires == nil || expires.After(cutoff) {
				continue
			}
			flagged = append(flagged, fmt.Sprintf("%s (%s)", a.Name, vaccine))
		}
	}
	return flagged
}
