package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/kennelworks/kennelworks/internal/api/dto"
	"github.com/kennelworks/kennelworks/internal/domain/animal"
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/types"
)

type AnimalService interface {
	CreateAnimal(ctx context.Context, req dto.CreateAnimalRequest) (*dto.AnimalResponse, error)
	GetAnimal(ctx context.Context, id string) (*dto.AnimalResponse, error)
	ListAnimals(ctx context.Context, filter *types.AnimalFilter) (*dto.ListAnimalsResponse, error)
	UpdateAnimal(ctx context.Context, id string, req dto.UpdateAnimalRequest) (*dto.AnimalResponse, error)
	DeleteAnimal(ctx context.Context, id string) error

	// Care operations
	CheckIn(ctx context.Context, id string) (*dto.AnimalResponse, error)
	CheckOut(ctx context.Context, id string) (*dto.AnimalResponse, error)
	BeginBoarding(ctx context.Context, id string, req dto.BeginBoardingRequest) (*dto.AnimalResponse, error)
	SetDeparture(ctx context.Context, id string, req dto.SetDepartureRequest) (*dto.AnimalResponse, error)

	// ListChanges is the incremental sync feed: every record modified
	// strictly after the watermark, tombstones included.
	ListChanges(ctx context.Context, since *time.Time) (*dto.ChangesResponse, error)

	// PurgeTombstones physically removes tombstones older than the
	// cutoff. Administrative only.
	PurgeTombstones(ctx context.Context, req dto.PurgeTombstonesRequest) (*dto.PurgeTombstonesResponse, error)
}

type animalService struct {
	ServiceParams
}

func NewAnimalService(params ServiceParams) AnimalService {
	return &animalService{
		ServiceParams: params,
	}
}

func (s *animalService) CreateAnimal(ctx context.Context, req dto.CreateAnimalRequest) (*dto.AnimalResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a := req.ToAnimal(s.Clock.Now().UTC())
	if err := s.AnimalRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.Logger.Infow("registered animal",
		"animal_id", a.ID,
		"name", a.Name)
	return dto.NewAnimalResponse(a), nil
}

func (s *animalService) GetAnimal(ctx context.Context, id string) (*dto.AnimalResponse, error) {
	a, err := s.AnimalRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewAnimalResponse(a), nil
}

func (s *animalService) ListAnimals(ctx context.Context, filter *types.AnimalFilter) (*dto.ListAnimalsResponse, error) {
	if filter == nil {
		filter = types.NewAnimalFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	animals, err := s.AnimalRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.AnimalRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListAnimalsResponse{
		Items: lo.Map(animals, func(a *animal.Animal, _ int) *dto.AnimalResponse {
			return dto.NewAnimalResponse(a)
		}),
		Total: total,
	}, nil
}

func (s *animalService) UpdateAnimal(ctx context.Context, id string, req dto.UpdateAnimalRequest) (*dto.AnimalResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.AnimalRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(a)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.AnimalRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	return dto.NewAnimalResponse(a), nil
}

func (s *animalService) DeleteAnimal(ctx context.Context, id string) error {
	return s.AnimalRepo.Delete(ctx, id)
}

func (s *animalService) CheckIn(ctx context.Context, id string) (*dto.AnimalResponse, error) {
	a, err := s.AnimalRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.PresenceState == types.PresenceStateBoarding {
		return nil, ierr.NewError("animal is boarding").
			WithHint("A boarding animal cannot check in for daycare").
			WithReportableDetails(map[string]any{"animal_id": id}).
			Mark(ierr.ErrInvalidOperation)
	}
	if a.PresenceState == types.PresenceStateDaycarePresent {
		return nil, ierr.NewError("animal is already checked in").
			WithHint("The animal is already on the premises").
			WithReportableDetails(map[string]any{"animal_id": id}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := s.Clock.Now().UTC()
	a.PresenceState = types.PresenceStateDaycarePresent
	a.ArrivalAt = now
	a.DepartureAt = nil
	a.VisitCount++
	a.LastVisitAt = &now

	if err := s.AnimalRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.Logger.Infow("checked in animal",
		"animal_id", a.ID,
		"name", a.Name,
		"visit_count", a.VisitCount)
	return dto.NewAnimalResponse(a), nil
}

func (s *animalService) CheckOut(ctx context.Context, id string) (*dto.AnimalResponse, error) {
	a, err := s.AnimalRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.PresenceState != types.PresenceStateDaycarePresent {
		return nil, ierr.NewError("animal is not checked in").
			WithHint("Only an animal present for daycare can check out").
			WithReportableDetails(map[string]any{"animal_id": id, "state": a.PresenceState}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := s.Clock.Now().UTC()
	a.PresenceState = types.PresenceStateDaycareDeparted
	a.DepartureAt = &now

	if err := s.AnimalRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.Logger.Infow("checked out animal",
		"animal_id", a.ID,
		"name", a.Name)
	return dto.NewAnimalResponse(a), nil
}

func (s *animalService) BeginBoarding(ctx context.Context, id string, req dto.BeginBoardingRequest) (*dto.AnimalResponse, error) {
	a, err := s.AnimalRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	if req.EndDate != nil && req.EndDate.Before(now) && !s.Clock.SameCalendarDay(*req.EndDate, now) {
		return nil, ierr.NewError("boarding end date is in the past").
			WithHint("The boarding end date cannot be in the past").
			WithReportableDetails(map[string]any{"end_date": req.EndDate}).
			Mark(ierr.ErrValidation)
	}

	a.PresenceState = types.PresenceStateBoarding
	a.BoardingEndDate = req.EndDate
	// A boarding animal has no daily departure; the transition run
	// restores it to daycare on its end date.
	a.DepartureAt = nil

	if err := s.AnimalRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.Logger.Infow("began boarding",
		"animal_id", a.ID,
		"name", a.Name,
		"end_date", a.BoardingEndDate)
	return dto.NewAnimalResponse(a), nil
}

func (s *animalService) SetDeparture(ctx context.Context, id string, req dto.SetDepartureRequest) (*dto.AnimalResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.AnimalRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.PresenceState != types.PresenceStateDaycarePresent {
		return nil, ierr.NewError("animal is not checked in").
			WithHint("A departure time applies only to an animal present for daycare").
			WithReportableDetails(map[string]any{"animal_id": id, "state": a.PresenceState}).
			Mark(ierr.ErrInvalidOperation)
	}

	departureAt := req.DepartureAt.UTC()
	a.DepartureAt = &departureAt

	if err := s.AnimalRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	return dto.NewAnimalResponse(a), nil
}

func (s *animalService) ListChanges(ctx context.Context, since *time.Time) (*dto.ChangesResponse, error) {
	filter := types.NewNoLimitAnimalFilter()
	filter.ModifiedAfter = since
	filter.IncludeDeleted = true

	animals, err := s.AnimalRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.ChangesResponse{
		Items: make([]*dto.AnimalResponse, 0, len(animals)),
	}
	for _, a := range animals {
		resp.Items = append(resp.Items, dto.NewAnimalResponse(a))
		if resp.Watermark == nil || a.UpdatedAt.After(*resp.Watermark) {
			updatedAt := a.UpdatedAt
			resp.Watermark = &updatedAt
		}
	}
	if resp.Watermark == nil {
		resp.Watermark = since
	}
	return resp, nil
}

func (s *animalService) PurgeTombstones(ctx context.Context, req dto.PurgeTombstonesRequest) (*dto.PurgeTombstonesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	purged, err := s.AnimalRepo.Purge(ctx, req.Before)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("purged tombstones",
		"purged", purged,
		"before", req.Before)
	return &dto.PurgeTombstonesResponse{Purged: purged}, nil
}
