package types

import (
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/samber/lo"
)

// PresenceState is the tri-valued classification of an animal's current
// service status at the facility.
type PresenceState string

const (
	// PresenceStateDaycarePresent means the animal is on the premises for
	// the day and is expected to be picked up before closing.
	PresenceStateDaycarePresent PresenceState = "daycare_present"
	// PresenceStateDaycareDeparted means the animal has left for the day.
	PresenceStateDaycareDeparted PresenceState = "daycare_departed"
	// PresenceStateBoarding means the animal stays overnight until its
	// boarding end date; an unset end date means indefinite boarding.
	PresenceStateBoarding PresenceState = "boarding"
)

func (p PresenceState) String() string {
	return string(p)
}

func (p PresenceState) Validate() error {
	allowed := []PresenceState{
		PresenceStateDaycarePresent,
		PresenceStateDaycareDeparted,
		PresenceStateBoarding,
	}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid presence state").
			WithHint("Invalid presence state").
			WithReportableDetails(map[string]any{
				"state":          p,
				"allowed_states": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsOnPremises reports whether an animal in this state is physically at
// the facility. Boarding animals are always on premises.
func (p PresenceState) IsOnPremises() bool {
	return p == PresenceStateDaycarePresent || p == PresenceStateBoarding
}
