package animal

import (
	"time"

	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/types"
)

// Animal is the central record for one animal in the facility's care.
type Animal struct {
	// ID is the immutable identity assigned at intake
	ID string `json:"id"`

	// Name is the animal's call name
	Name string `json:"name"`

	// OwnerName is the owner the facility contacts
	OwnerName string `json:"owner_name"`

	// OwnerPhone is the owner's phone number
	OwnerPhone string `json:"owner_phone"`

	// AgeYears is the animal's age in whole years
	AgeYears int `json:"age_years"`

	Gender types.Gender `json:"gender"`

	// Neutered reports whether the animal is neutered or spayed
	Neutered bool `json:"neutered"`

	// AllergyNotes is free text about allergies and dietary limits
	AllergyNotes string `json:"allergy_notes"`

	// FeedingNotes is free text about feeding routine
	FeedingNotes string `json:"feeding_notes"`

	// Notes carries special instructions from the owner
	Notes string `json:"notes"`

	// Walks reports whether the animal joins scheduled walks
	Walks bool `json:"walks"`

	// WalkingNotes is free text about walking behavior
	WalkingNotes string `json:"walking_notes"`

	// HouseFeeding reports whether the facility feeds the animal during
	// daycare rather than the owner sending food
	HouseFeeding bool `json:"house_feeding"`

	// Vaccinations maps each tracked vaccine to its expiration date.
	// A nil or absent entry means the expiration is unknown, which is
	// never treated as expired.
	Vaccinations map[types.Vaccine]*time.Time `json:"vaccinations,omitempty"`

	// PresenceState classifies the animal's current service status
	PresenceState types.PresenceState `json:"presence_state"`

	// ArrivalAt is when the animal last arrived at the facility
	ArrivalAt time.Time `json:"arrival_at"`

	// DepartureAt is the expected or recorded pickup time for the day.
	// Meaningful only while the animal is not boarding; the nightly
	// transition run clears it so each day needs a fresh departure time.
	DepartureAt *time.Time `json:"departure_at,omitempty"`

	// BoardingEndDate is the day a boarding stay ends. Defined iff
	// PresenceState is boarding; nil while boarding means indefinite.
	BoardingEndDate *time.Time `json:"boarding_end_date,omitempty"`

	// VisitCount counts completed check-ins over the animal's lifetime
	VisitCount int `json:"visit_count"`

	// LastVisitAt is when the animal last checked in
	LastVisitAt *time.Time `json:"last_visit_at,omitempty"`

	types.BaseModel
}

func (a *Animal) Validate() error {
	if a.Name == "" {
		return ierr.NewError("animal name is required").
			WithHint("Animal name is required").
			Mark(ierr.ErrValidation)
	}
	if err := a.PresenceState.Validate(); err != nil {
		return err
	}
	if a.Gender != "" {
		if err := a.Gender.Validate(); err != nil {
			return err
		}
	}
	for vaccine := range a.Vaccinations {
		if err := vaccine.Validate(); err != nil {
			return err
		}
	}
	if a.BoardingEndDate != nil && a.PresenceState != types.PresenceStateBoarding {
		return ierr.NewError("boarding end date without boarding state").
			WithHint("Boarding end date is only valid while the animal is boarding").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsOnPremises reports whether the animal is currently at the facility
func (a *Animal) IsOnPremises() bool {
	return a.PresenceState.IsOnPremises()
}

// VaccinationExpiration returns the recorded expiration for a vaccine,
// nil when unknown
func (a *Animal) VaccinationExpiration(v types.Vaccine) *time.Time {
	if a.Vaccinations == nil {
		return nil
	}
	return a.Vaccinations[v]
}
