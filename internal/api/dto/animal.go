package dto

import (
	"time"

	"github.com/kennelworks/kennelworks/internal/domain/animal"
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/types"
	"github.com/kennelworks/kennelworks/internal/validator"
)

// CreateAnimalRequest registers a new animal at intake.
type CreateAnimalRequest struct {
	Name         string                `json:"name" validate:"required,max=100"`
	OwnerName    string                `json:"owner_name" validate:"required,max=100"`
	OwnerPhone   string                `json:"owner_phone" validate:"max=30"`
	AgeYears     int                   `json:"age_years" validate:"min=0,max=40"`
	Gender       types.Gender          `json:"gender"`
	Neutered     bool                  `json:"neutered"`
	AllergyNotes string                `json:"allergy_notes"`
	FeedingNotes string                `json:"feeding_notes"`
	Notes        string                `json:"notes"`
	Walks        bool                  `json:"walks"`
	WalkingNotes string                `json:"walking_notes"`
	HouseFeeding bool                  `json:"house_feeding"`
	Vaccinations map[string]*time.Time `json:"vaccinations"`
}

func (r *CreateAnimalRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Gender != "" {
		if err := r.Gender.Validate(); err != nil {
			return err
		}
	}
	for name := range r.Vaccinations {
		if err := types.Vaccine(name).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ToAnimal builds the domain record. A freshly registered animal is
// checked in for the day it was created.
func (r *CreateAnimalRequest) ToAnimal(now time.Time) *animal.Animal {
	gender := r.Gender
	if gender == "" {
		gender = types.GenderUnknown
	}

	vaccinations := map[types.Vaccine]*time.Time{}
	for name, expires := range r.Vaccinations {
		if expires != nil {
			vaccinations[types.Vaccine(name)] = expires
		}
	}

	return &animal.Animal{
		Name:          r.Name,
		OwnerName:     r.OwnerName,
		OwnerPhone:    r.OwnerPhone,
		AgeYears:      r.AgeYears,
		Gender:        gender,
		Neutered:      r.Neutered,
		AllergyNotes:  r.AllergyNotes,
		FeedingNotes:  r.FeedingNotes,
		Notes:         r.Notes,
		Walks:         r.Walks,
		WalkingNotes:  r.WalkingNotes,
		HouseFeeding:  r.HouseFeeding,
		Vaccinations:  vaccinations,
		PresenceState: types.PresenceStateDaycarePresent,
		ArrivalAt:     now,
		VisitCount:    1,
		LastVisitAt:   &now,
	}
}

// UpdateAnimalRequest edits profile fields. Nil fields are left
// untouched; presence fields change through the care operations, not
// here.
type UpdateAnimalRequest struct {
	Name         *string               `json:"name,omitempty" validate:"omitempty,max=100"`
	OwnerName    *string               `json:"owner_name,omitempty" validate:"omitempty,max=100"`
	OwnerPhone   *string               `json:"owner_phone,omitempty" validate:"omitempty,max=30"`
	AgeYears     *int                  `json:"age_years,omitempty" validate:"omitempty,min=0,max=40"`
	Gender       *types.Gender         `json:"gender,omitempty"`
	Neutered     *bool                 `json:"neutered,omitempty"`
	AllergyNotes *string               `json:"allergy_notes,omitempty"`
	FeedingNotes *string               `json:"feeding_notes,omitempty"`
	Notes        *string               `json:"notes,omitempty"`
	Walks        *bool                 `json:"walks,omitempty"`
	WalkingNotes *string               `json:"walking_notes,omitempty"`
	HouseFeeding *bool                 `json:"house_feeding,omitempty"`
	Vaccinations map[string]*time.Time `json:"vaccinations,omitempty"`
}

func (r *UpdateAnimalRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Name != nil && *r.Name == "" {
		return ierr.NewError("animal name cannot be empty").
			WithHint("Animal name cannot be empty").
			Mark(ierr.ErrValidation)
	}
	if r.Gender != nil {
		if err := r.Gender.Validate(); err != nil {
			return err
		}
	}
	for name := range r.Vaccinations {
		if err := types.Vaccine(name).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply overwrites the set fields on the animal.
func (r *UpdateAnimalRequest) Apply(a *animal.Animal) {
	if r.Name != nil {
		a.Name = *r.Name
	}
	if r.OwnerName != nil {
		a.OwnerName = *r.OwnerName
	}
	if r.OwnerPhone != nil {
		a.OwnerPhone = *r.OwnerPhone
	}
	if r.AgeYears != nil {
		a.AgeYears = *r.AgeYears
	}
	if r.Gender != nil {
		a.Gender = *r.Gender
	}
	if r.Neutered != nil {
		a.Neutered = *r.Neutered
	}
	if r.AllergyNotes != nil {
		a.AllergyNotes = *r.AllergyNotes
	}
	if r.FeedingNotes != nil {
		a.FeedingNotes = *r.FeedingNotes
	}
	if r.Notes != nil {
		a.Notes = *r.Notes
	}
	if r.Walks != nil {
		a.Walks = *r.Walks
	}
	if r.WalkingNotes != nil {
		a.WalkingNotes = *r.WalkingNotes
	}
	if r.HouseFeeding != nil {
		a.HouseFeeding = *r.HouseFeeding
	}
	for name, expires := range r.Vaccinations {
		if a.Vaccinations == nil {
			a.Vaccinations = map[types.Vaccine]*time.Time{}
		}
		if expires == nil {
			delete(a.Vaccinations, types.Vaccine(name))
		} else {
			a.Vaccinations[types.Vaccine(name)] = expires
		}
	}
}

// BeginBoardingRequest switches an animal to boarding. A nil end date
// means indefinite boarding.
type BeginBoardingRequest struct {
	EndDate *time.Time `json:"end_date,omitempty"`
}

// SetDepartureRequest records the expected pickup time for the day.
type SetDepartureRequest struct {
	DepartureAt time.Time `json:"departure_at" validate:"required"`
}

func (r *SetDepartureRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// PurgeTombstonesRequest is the administrative purge cutoff.
type PurgeTombstonesRequest struct {
	Before time.Time `json:"before" validate:"required"`
}

func (r *PurgeTombstonesRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// AnimalResponse is an animal as returned by the API.
type AnimalResponse struct {
	*animal.Animal
}

func NewAnimalResponse(a *animal.Animal) *AnimalResponse {
	return &AnimalResponse{Animal: a}
}

// ListAnimalsResponse is a paginated animal listing.
type ListAnimalsResponse struct {
	Items []*AnimalResponse `json:"items"`
	Total int               `json:"total"`
}

// ChangesResponse is the incremental sync feed: every record, active
// or tombstoned, modified after the caller's watermark, plus the new
// watermark to resume from.
type ChangesResponse struct {
	Items     []*AnimalResponse `json:"items"`
	Watermark *time.Time        `json:"watermark,omitempty"`
}

// PurgeTombstonesResponse reports an administrative purge.
type PurgeTombstonesResponse struct {
	Purged int `json:"purged"`
}
