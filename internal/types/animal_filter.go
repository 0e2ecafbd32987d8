package types

import (
	"time"
)

// AnimalFilter narrows animal queries. The zero filter matches every
// non-tombstoned animal, ordered by name ascending so results are
// reproducible across runs.
type AnimalFilter struct {
	*QueryFilter

	// PresenceStates limits results to the given states when non-empty.
	PresenceStates []PresenceState `json:"presence_states,omitempty" form:"presence_states"`

	// OnPremises limits results to animals physically at the facility
	// (daycare present or boarding) or away from it.
	OnPremises *bool `json:"on_premises,omitempty" form:"on_premises"`

	// ModifiedAfter is the incremental-sync watermark: only animals
	// with updated_at strictly after it are returned.
	ModifiedAfter *time.Time `json:"modified_after,omitempty" form:"modified_after"`

	// IncludeDeleted makes the query administrative: tombstoned animals
	// are returned alongside active ones.
	IncludeDeleted bool `json:"include_deleted,omitempty" form:"include_deleted"`
}

// NewAnimalFilter returns a filter with default pagination
func NewAnimalFilter() *AnimalFilter {
	return &AnimalFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

// NewNoLimitAnimalFilter returns an unpaginated filter, used by the
// transition engine and backup snapshots that must see the full set
func NewNoLimitAnimalFilter() *AnimalFilter {
	return &AnimalFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *AnimalFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	for _, state := range f.PresenceStates {
		if err := state.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// GetLimit returns the pagination limit, zero meaning unlimited
func (f *AnimalFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

// GetOffset returns the pagination offset
func (f *AnimalFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}
