package record

import (
	"context"
	"time"

	"github.com/kennelworks/kennelworks/internal/domain/animal"
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/logger"
	"github.com/kennelworks/kennelworks/internal/recordstore"
	"github.com/kennelworks/kennelworks/internal/types"
)

// RecordTypeAnimal is the entity type name in the record store.
const RecordTypeAnimal = "animals"

// Storage field names. Every domain field maps to exactly one of
// these; booleans are stored as 0/1 integers and optional fields are
// absent when unset.
const (
	fieldName          = "name"
	fieldOwnerName     = "owner_name"
	fieldOwnerPhone    = "owner_phone"
	fieldAgeYears      = "age_years"
	fieldGender        = "gender"
	fieldNeutered      = "neutered"
	fieldAllergyNotes  = "allergy_notes"
	fieldFeedingNotes  = "feeding_notes"
	fieldNotes         = "notes"
	fieldWalks         = "walks"
	fieldWalkingNotes  = "walking_notes"
	fieldHouseFeeding  = "house_feeding"
	fieldPresenceState = "presence_state"
	fieldArrivalAt     = "arrival_at"
	fieldDepartureAt   = "departure_at"
	fieldBoardingEnd   = "boarding_end_date"
	fieldVisitCount    = "visit_count"
	fieldLastVisitAt   = "last_visit_at"
	fieldCreatedBy     = "created_by"
	fieldUpdatedBy     = "updated_by"
	vaccineFieldPrefix = "vaccine_"
	vaccineFieldSuffix = "_expires_at"
)

type animalRepository struct {
	store  recordstore.Store
	logger *logger.Logger
}

func NewAnimalRepository(store recordstore.Store, log *logger.Logger) animal.Repository {
	return &animalRepository{store: store, logger: log}
}

func (r *animalRepository) Create(ctx context.Context, a *animal.Animal) error {
	if a.ID == "" {
		a.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ANIMAL)
	}
	a.CreatedBy = types.GetActorID(ctx)
	a.UpdatedBy = a.CreatedBy

	r.logger.Debugw("creating animal record", "animal_id", a.ID, "name", a.Name)

	record, err := r.store.Insert(ctx, RecordTypeAnimal, a.ID, encodeAnimal(a))
	if err != nil {
		return err
	}

	a.Status = types.StatusActive
	a.CreatedAt = record.CreatedAt
	a.UpdatedAt = record.UpdatedAt
	return nil
}

func (r *animalRepository) Get(ctx context.Context, id string) (*animal.Animal, error) {
	record, err := r.store.Get(ctx, RecordTypeAnimal, id)
	if err != nil {
		return nil, err
	}
	if record.Deleted {
		return nil, ierr.NewError("animal not found").
			WithHintf("No animal with id %s", id).
			WithReportableDetails(map[string]any{"animal_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return decodeAnimal(record)
}

func (r *animalRepository) List(ctx context.Context, filter *types.AnimalFilter) ([]*animal.Animal, error) {
	records, err := r.store.Search(ctx, RecordTypeAnimal, queryFromFilter(filter))
	if err != nil {
		return nil, err
	}

	animals := make([]*animal.Animal, 0, len(records))
	for _, record := range records {
		a, err := decodeAnimal(record)
		if err != nil {
			return nil, err
		}
		animals = append(animals, a)
	}
	return animals, nil
}

func (r *animalRepository) Count(ctx context.Context, filter *types.AnimalFilter) (int, error) {
	q := queryFromFilter(filter)
	q.Limit = 0
	q.Offset = 0
	records, err := r.store.Search(ctx, RecordTypeAnimal, q)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (r *animalRepository) ListAll(ctx context.Context, filter *types.AnimalFilter) ([]*animal.Animal, error) {
	f := *filter
	f.QueryFilter = types.NewNoLimitQueryFilter()
	return r.List(ctx, &f)
}

func (r *animalRepository) Update(ctx context.Context, a *animal.Animal) error {
	a.UpdatedBy = types.GetActorID(ctx)

	record, err := r.store.Update(ctx, RecordTypeAnimal, a.ID, encodeAnimal(a))
	if err != nil {
		return err
	}

	// UpdatedAt comes back from the store, never from our clock.
	a.UpdatedAt = record.UpdatedAt
	return nil
}

func (r *animalRepository) Delete(ctx context.Context, id string) error {
	a, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	a.Status = types.StatusDeleted
	a.UpdatedBy = types.GetActorID(ctx)

	_, err = r.store.Update(ctx, RecordTypeAnimal, id, encodeAnimal(a))
	return err
}

func (r *animalRepository) Purge(ctx context.Context, before time.Time) (int, error) {
	return r.store.Purge(ctx, RecordTypeAnimal, before)
}

// queryFromFilter renders the typed filter into store predicates. The
// default ordering is name ascending so fetches are reproducible.
func queryFromFilter(filter *types.AnimalFilter) recordstore.Query {
	if filter == nil {
		filter = types.NewAnimalFilter()
	}

	q := recordstore.Query{
		OrderBy:        fieldName,
		ModifiedAfter:  filter.ModifiedAfter,
		IncludeDeleted: filter.IncludeDeleted,
		Limit:          filter.GetLimit(),
		Offset:         filter.GetOffset(),
	}
	if filter.QueryFilter != nil && filter.QueryFilter.Order != nil {
		q.Descending = filter.QueryFilter.GetOrder() == types.OrderDesc
	}

	if len(filter.PresenceStates) > 0 {
		values := make([]any, 0, len(filter.PresenceStates))
		for _, state := range filter.PresenceStates {
			values = append(values, state.String())
		}
		q.In = map[string][]any{fieldPresenceState: values}
	} else if filter.OnPremises != nil {
		if *filter.OnPremises {
			q.In = map[string][]any{fieldPresenceState: {
				types.PresenceStateDaycarePresent.String(),
				types.PresenceStateBoarding.String(),
			}}
		} else {
			q.Equals = recordstore.Fields{
				fieldPresenceState: types.PresenceStateDaycareDeparted.String(),
			}
		}
	}

	return q
}

func vaccineField(v types.Vaccine) string {
	return vaccineFieldPrefix + v.String() + vaccineFieldSuffix
}

// encodeAnimal maps the domain record onto its flat storage fields.
func encodeAnimal(a *animal.Animal) recordstore.Fields {
	fields := recordstore.Fields{
		fieldName:          a.Name,
		fieldOwnerName:     a.OwnerName,
		fieldOwnerPhone:    a.OwnerPhone,
		fieldAgeYears:      a.AgeYears,
		fieldGender:        a.Gender.String(),
		fieldAllergyNotes:  a.AllergyNotes,
		fieldFeedingNotes:  a.FeedingNotes,
		fieldNotes:         a.Notes,
		fieldWalkingNotes:  a.WalkingNotes,
		fieldPresenceState: a.PresenceState.String(),
		fieldVisitCount:    a.VisitCount,
		fieldCreatedBy:     a.CreatedBy,
		fieldUpdatedBy:     a.UpdatedBy,
	}
	fields.SetBool(fieldNeutered, a.Neutered)
	fields.SetBool(fieldWalks, a.Walks)
	fields.SetBool(fieldHouseFeeding, a.HouseFeeding)
	fields.SetBool(recordstore.FieldDeleted, a.Status == types.StatusDeleted)
	fields.SetTime(fieldArrivalAt, &a.ArrivalAt)
	fields.SetTime(fieldDepartureAt, a.DepartureAt)
	fields.SetTime(fieldBoardingEnd, a.BoardingEndDate)
	fields.SetTime(fieldLastVisitAt, a.LastVisitAt)
	for _, vaccine := range types.AllVaccines() {
		fields.SetTime(vaccineField(vaccine), a.VaccinationExpiration(vaccine))
	}
	return fields
}

// decodeAnimal maps storage fields back to the domain record. Missing
// optional fields decode to unset; a present field of the wrong shape
// is an encoding failure.
func decodeAnimal(record *recordstore.Record) (*animal.Animal, error) {
	fields := record.Fields

	a := &animal.Animal{
		ID:           record.ID,
		Vaccinations: map[types.Vaccine]*time.Time{},
		BaseModel: types.BaseModel{
			Status:    types.StatusActive,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		},
	}
	if record.Deleted {
		a.Status = types.StatusDeleted
	}

	var err error
	if a.Name, err = fields.GetString(fieldName); err != nil {
		return nil, err
	}
	if a.OwnerName, err = fields.GetString(fieldOwnerName); err != nil {
		return nil, err
	}
	if a.OwnerPhone, err = fields.GetString(fieldOwnerPhone); err != nil {
		return nil, err
	}
	if a.AgeYears, err = fields.GetInt(fieldAgeYears); err != nil {
		return nil, err
	}
	gender, err := fields.GetString(fieldGender)
	if err != nil {
		return nil, err
	}
	a.Gender = types.Gender(gender)
	if a.Neutered, err = fields.GetBool(fieldNeutered); err != nil {
		return nil, err
	}
	if a.AllergyNotes, err = fields.GetString(fieldAllergyNotes); err != nil {
		return nil, err
	}
	if a.FeedingNotes, err = fields.GetString(fieldFeedingNotes); err != nil {
		return nil, err
	}
	if a.Notes, err = fields.GetString(fieldNotes); err != nil {
		return nil, err
	}
	if a.Walks, err = fields.GetBool(fieldWalks); err != nil {
		return nil, err
	}
	if a.WalkingNotes, err = fields.GetString(fieldWalkingNotes); err != nil {
		return nil, err
	}
	if a.HouseFeeding, err = fields.GetBool(fieldHouseFeeding); err != nil {
		return nil, err
	}
	state, err := fields.GetString(fieldPresenceState)
	if err != nil {
		return nil, err
	}
	a.PresenceState = types.PresenceState(state)
	arrivalAt, err := fields.GetTime(fieldArrivalAt)
	if err != nil {
		return nil, err
	}
	if arrivalAt != nil {
		a.ArrivalAt = *arrivalAt
	}
	if a.DepartureAt, err = fields.GetTime(fieldDepartureAt); err != nil {
		return nil, err
	}
	if a.BoardingEndDate, err = fields.GetTime(fieldBoardingEnd); err != nil {
		return nil, err
	}
	if a.VisitCount, err = fields.GetInt(fieldVisitCount); err != nil {
		return nil, err
	}
	if a.LastVisitAt, err = fields.GetTime(fieldLastVisitAt); err != nil {
		return nil, err
	}
	if a.CreatedBy, err = fields.GetString(fieldCreatedBy); err != nil {
		return nil, err
	}
	if a.UpdatedBy, err = fields.GetString(fieldUpdatedBy); err != nil {
		return nil, err
	}
	for _, vaccine := range types.AllVaccines() {
		expires, err := fields.GetTime(vaccineField(vaccine))
		if err != nil {
			return nil, err
		}
		if expires != nil {
			a.Vaccinations[vaccine] = expires
		}
	}
	return a, nil
}
