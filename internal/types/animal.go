package types

import (
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/samber/lo"
)

// Gender is the recorded sex of an animal.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

func (g Gender) String() string {
	return string(g)
}

func (g Gender) Validate() error {
	allowed := []Gender{GenderMale, GenderFemale, GenderUnknown}
	if !lo.Contains(allowed, g) {
		return ierr.NewError("invalid gender").
			WithHint("Invalid gender").
			WithReportableDetails(map[string]any{
				"gender":  g,
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Vaccine identifies one of the fixed set of vaccinations the facility
// tracks expirations for. An absent expiration means "unknown", never
// "expired".
type Vaccine string

const (
	VaccineRabies     Vaccine = "rabies"
	VaccineDHPP       Vaccine = "dhpp"
	VaccineBordetella Vaccine = "bordetella"
)

// AllVaccines lists the tracked vaccines in a stable order, which keeps
// storage field mapping and export columns deterministic.
func AllVaccines() []Vaccine {
	return []Vaccine{VaccineRabies, VaccineDHPP, VaccineBordetella}
}

func (v Vaccine) String() string {
	return string(v)
}

func (v Vaccine) Validate() error {
	if !lo.Contains(AllVaccines(), v) {
		return ierr.NewError("unknown vaccine").
			WithHint("Unknown vaccine").
			WithReportableDetails(map[string]any{
				"vaccine": v,
				"allowed": AllVaccines(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
