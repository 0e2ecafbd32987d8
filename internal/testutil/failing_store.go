package testutil

import (
	"context"

	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/recordstore"
)

// FailingStore wraps a Store and fails updates for selected record
// ids, simulating a partial outage so tests can assert per-record
// failure isolation.
type FailingStore struct {
	recordstore.Store
	FailIDs map[string]bool
}

func NewFailingStore(inner recordstore.Store, failIDs ...string) *FailingStore {
	ids := make(map[string]bool, len(failIDs))
	for _, id := range failIDs {
		ids[id] = true
	}
	return &FailingStore{Store: inner, FailIDs: ids}
}

func (s *FailingStore) Update(ctx context.Context, recordType, id string, fields recordstore.Fields) (*recordstore.Record, error) {
	if s.FailIDs[id] {
		return nil, ierr.NewError("store unreachable").
			WithHint("Record store request failed").
			Mark(ierr.ErrTransport)
	}
	return s.Store.Update(ctx, recordType, id, fields)
}
