package types

// Status is the lifecycle state of a stored record. Deleted records are
// tombstones: they stay in the record store so replicas can observe the
// deletion during incremental sync, and only an explicit administrative
// purge removes them physically.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Validate() bool {
	switch s {
	case StatusActive, StatusDeleted:
		return true
	}
	return false
}
