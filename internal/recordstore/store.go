package recordstore

import (
	"context"
	"time"
)

// Reserved storage field names. The store owns these: callers cannot
// set them through Insert or Update, and every backend stamps them the
// same way so UpdatedAt stays usable as an incremental-sync watermark.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldDeleted   = "is_deleted"
)

// Fields is the flat storage representation of an entity. Every domain
// field maps to exactly one key; booleans are stored as 0/1 integers
// and optional fields are simply absent.
type Fields map[string]any

// Record is one stored entity with its store-assigned audit stamps.
type Record struct {
	ID        string    `json:"id"`
	Type      string    `json:"-"`
	Fields    Fields    `json:"-"`
	Deleted   bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Query narrows a Search. The zero query matches every non-tombstoned
// record of the type.
type Query struct {
	// Equals are exact-match predicates on stored field values.
	Equals Fields

	// In matches records whose field value is any of the given values.
	In map[string][]any

	// ModifiedAfter keeps only records with UpdatedAt strictly after
	// the watermark.
	ModifiedAfter *time.Time

	// IncludeDeleted returns tombstoned records as well; used by
	// administrative fetches and replica sync.
	IncludeDeleted bool

	// OrderBy names the stored field to sort on. Empty means no
	// backend ordering; callers that need determinism set it.
	OrderBy    string
	Descending bool

	Limit  int
	Offset int
}

// Store is the remote record store contract. Entities are keyed by a
// type name plus caller-assigned identity; the store assigns CreatedAt
// and UpdatedAt on every successful write and guarantees UpdatedAt
// never moves backward for a given identity. There is no transactional
// multi-record guarantee.
type Store interface {
	// Insert persists a new record and returns it with store-assigned
	// stamps. Fails with ErrAlreadyExists when the identity is taken,
	// tombstoned identities included.
	Insert(ctx context.Context, recordType, id string, fields Fields) (*Record, error)

	// Update overwrites all mutable fields of an existing record and
	// restamps UpdatedAt from the store's clock, never the caller's.
	// Fails with ErrNotFound when the identity is absent. Last writer
	// wins: no concurrency token is checked.
	Update(ctx context.Context, recordType, id string, fields Fields) (*Record, error)

	// Get returns a record by identity, tombstoned or not. Callers
	// decide whether a tombstone is visible to them.
	Get(ctx context.Context, recordType, id string) (*Record, error)

	// Search returns records matching the query in the requested order.
	Search(ctx context.Context, recordType string, q Query) ([]*Record, error)

	// Delete tombstones a record. It is an update setting the deleted
	// marker, never a physical removal, so other replicas observe the
	// deletion during incremental sync.
	Delete(ctx context.Context, recordType, id string) error

	// Purge physically removes tombstones last modified before the
	// cutoff. Administrative only; normal operation never calls it.
	Purge(ctx context.Context, recordType string, before time.Time) (int, error)
}
