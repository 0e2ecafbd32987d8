package animal

import (
	"context"
	"time"

	"github.com/kennelworks/kennelworks/internal/types"
)

// Repository defines the interface for animal data access. Writes hand
// the record to the remote store and copy the store-assigned audit
// stamps back onto the passed animal.
type Repository interface {
	Create(ctx context.Context, animal *Animal) error
	Get(ctx context.Context, id string) (*Animal, error)
	List(ctx context.Context, filter *types.AnimalFilter) ([]*Animal, error)
	Count(ctx context.Context, filter *types.AnimalFilter) (int, error)
	ListAll(ctx context.Context, filter *types.AnimalFilter) ([]*Animal, error)
	Update(ctx context.Context, animal *Animal) error
	Delete(ctx context.Context, id string) error

	// Purge physically removes tombstones last modified before the
	// cutoff. Administrative only.
	Purge(ctx context.Context, before time.Time) (int, error)
}
