package service

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/kennelworks/kennelworks/internal/api/dto"
	"github.com/kennelworks/kennelworks/internal/domain/animal"
	"github.com/kennelworks/kennelworks/internal/types"
)

// transitionWorkers bounds concurrent per-animal updates in one run.
const transitionWorkers = 4

// Transition actions reported per animal.
const (
	TransitionActionEndBoarding    = "end_boarding"
	TransitionActionClearDeparture = "clear_departure"
	TransitionActionNone           = "none"
)

// TransitionService reclassifies every animal's presence state at the
// day boundary.
type TransitionService interface {
	RunDailyTransitions(ctx context.Context) (*dto.TransitionRunResponse, error)
}

type transitionService struct {
	ServiceParams
}

func NewTransitionService(params ServiceParams) TransitionService {
	return &transitionService{
		ServiceParams: params,
	}
}

// RunDailyTransitions applies the daily ruleset to the full set of
// active animals:
//
//  1. Boarding with an end date of today returns to daycare and the
//     end date is cleared.
//  2. Boarding with no end date, or a future one, stays boarding.
//  3. A present daycare animal with a recorded departure time has it
//     cleared; a fresh day needs a fresh departure time.
//  4. An already departed animal is left alone.
//
// Every rule is defined over current field values, so re-running the
// engine on the same day is a no-op even when the scheduler re-fires a
// still-running job. Per-animal failures are collected into the
// aggregate outcome and never abort the rest of the run.
func (s *transitionService) RunDailyTransitions(ctx context.Context) (*dto.TransitionRunResponse, error) {
	runID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TRANSITION_RUN)
	runDate := s.Clock.Now()

	s.Logger.Infow("starting daily transition run",
		"run_id", runID,
		"run_date", runDate)

	animals, err := s.AnimalRepo.ListAll(ctx, types.NewNoLimitAnimalFilter())
	if err != nil {
		return nil, err
	}

	response := &dto.TransitionRunResponse{
		RunID:   runID,
		RunDate: runDate,
		Items:   make([]*dto.TransitionRunResponseItem, 0, len(animals)),
	}

	var mu sync.Mutex
	workers := pool.New().WithMaxGoroutines(transitionWorkers)

	for _, a := range animals {
		workers.Go(func() {
			item := s.transitionAnimal(ctx, a, runDate)

			mu.Lock()
			defer mu.Unlock()
			if item.Action == TransitionActionNone {
				response.Unchanged++
				return
			}
			response.Items = append(response.Items, item)
			if item.Success {
				response.TotalSuccess++
			} else {
				response.TotalFailed++
			}
		})
	}
	workers.Wait()

	s.Logger.Infow("completed daily transition run",
		"run_date", runDate,
		"total_success", response.TotalSuccess,
		"total_failed", response.TotalFailed,
		"unchanged", response.Unchanged)
	return response, nil
}

// transitionAnimal evaluates the ruleset for one animal and issues at
// most one update.
func (s *transitionService) transitionAnimal(ctx context.Context, a *animal.Animal, runDate time.Time) *dto.TransitionRunResponseItem {
	item := &dto.TransitionRunResponseItem{
		AnimalID: a.ID,
		Name:     a.Name,
		Action:   TransitionActionNone,
	}

	switch {
	case a.PresenceState == types.PresenceStateBoarding:
		if a.BoardingEndDate == nil || !s.Clock.SameCalendarDay(*a.BoardingEndDate, runDate) {
			// Indefinite or still-running boarding stays untouched.
			return item
		}
		item.Action = TransitionActionEndBoarding
		a.PresenceState = types.PresenceStateDaycarePresent
		a.BoardingEndDate = nil

	case a.PresenceState == types.PresenceStateDaycarePresent && a.DepartureAt != nil:
		item.Action = TransitionActionClearDeparture
		a.DepartureAt = nil

	default:
		return item
	}

	if err := s.AnimalRepo.Update(ctx, a); err != nil {
		s.Logger.Errorw("failed to transition animal",
			"animal_id", a.ID,
			"action", item.Action,
			"error", err)
		item.Error = err.Error()
		return item
	}

	item.Success = true
	return item
}
