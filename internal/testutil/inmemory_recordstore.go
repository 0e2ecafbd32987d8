package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kennelworks/kennelworks/internal/clock"
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/recordstore"
)

// InMemoryRecordStore implements the full recordstore.Store contract:
// conflict on duplicate insert, not-found on absent update, tombstone
// visibility rules, store-stamped monotonic UpdatedAt, and ordered
// queries. Service tests run against it the same way production runs
// against sqlite or the hosted API.
type InMemoryRecordStore struct {
	mu      sync.RWMutex
	clock   clock.Clock
	records map[string]map[string]*recordstore.Record
}

func NewInMemoryRecordStore(clk clock.Clock) *InMemoryRecordStore {
	return &InMemoryRecordStore{
		clock:   clk,
		records: make(map[string]map[string]*recordstore.Record),
	}
}

func copyRecord(r *recordstore.Record) *recordstore.Record {
	if r == nil {
		return nil
	}
	fields := make(recordstore.Fields, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	clone := *r
	clone.Fields = fields
	return &clone
}

func (s *InMemoryRecordStore) Insert(ctx context.Context, recordType, id string, fields recordstore.Fields) (*recordstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.records[recordType]
	if !ok {
		byID = make(map[string]*recordstore.Record)
		s.records[recordType] = byID
	}
	if _, exists := byID[id]; exists {
		return nil, ierr.NewError("record already exists").
			WithHintf("A record with id %s already exists", id).
			WithReportableDetails(map[string]any{"id": id, "type": recordType}).
			Mark(ierr.ErrAlreadyExists)
	}

	now := s.clock.Now().UTC()
	record := &recordstore.Record{
		ID:        id,
		Type:      recordType,
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	}
	byID[id] = copyRecord(record)
	return copyRecord(record), nil
}

func (s *InMemoryRecordStore) Update(ctx context.Context, recordType, id string, fields recordstore.Fields) (*recordstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[recordType][id]
	if !ok {
		return nil, notFound(recordType, id)
	}

	// Store-stamped and monotonic, exactly like the real backends.
	now := s.clock.Now().UTC()
	if !now.After(existing.UpdatedAt) {
		now = existing.UpdatedAt.Add(time.Millisecond)
	}

	deleted, _ := fields.GetBool(recordstore.FieldDeleted)
	record := &recordstore.Record{
		ID:        id,
		Type:      recordType,
		Fields:    fields,
		Deleted:   deleted,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: now,
	}
	s.records[recordType][id] = copyRecord(record)
	return copyRecord(record), nil
}

func (s *InMemoryRecordStore) Get(ctx context.Context, recordType, id string) (*recordstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[recordType][id]
	if !ok {
		return nil, notFound(recordType, id)
	}
	return copyRecord(record), nil
}

func (s *InMemoryRecordStore) Search(ctx context.Context, recordType string, q recordstore.Query) ([]*recordstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*recordstore.Record, 0)
	for _, record := range s.records[recordType] {
		if record.Deleted && !q.IncludeDeleted {
			continue
		}
		if q.ModifiedAfter != nil && !record.UpdatedAt.After(*q.ModifiedAfter) {
			continue
		}
		if !matchesEquals(record, q.Equals) || !matchesIn(record, q.In) {
			continue
		}
		matched = append(matched, copyRecord(record))
	}

	if q.OrderBy != "" {
		sort.Slice(matched, func(i, j int) bool {
			less := fieldLess(matched[i], matched[j], q.OrderBy)
			if q.Descending {
				return !less
			}
			return less
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return []*recordstore.Record{}, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (s *InMemoryRecordStore) Delete(ctx context.Context, recordType, id string) error {
	s.mu.RLock()
	existing, ok := s.records[recordType][id]
	s.mu.RUnlock()
	if !ok {
		return notFound(recordType, id)
	}

	fields := copyRecord(existing).Fields
	fields[recordstore.FieldDeleted] = 1
	_, err := s.Update(ctx, recordType, id, fields)
	return err
}

func (s *InMemoryRecordStore) Purge(ctx context.Context, recordType string, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, record := range s.records[recordType] {
		if record.Deleted && record.UpdatedAt.Before(before) {
			delete(s.records[recordType], id)
			purged++
		}
	}
	return purged, nil
}

// Clear drops all records between tests.
func (s *InMemoryRecordStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]map[string]*recordstore.Record)
}

func notFound(recordType, id string) error {
	return ierr.NewError("record not found").
		WithHintf("No record with id %s", id).
		WithReportableDetails(map[string]any{"id": id, "type": recordType}).
		Mark(ierr.ErrNotFound)
}

func matchesEquals(record *recordstore.Record, equals recordstore.Fields) bool {
	for field, want := range equals {
		if !valueEqual(record.Fields[field], want) {
			return false
		}
	}
	return true
}

func matchesIn(record *recordstore.Record, in map[string][]any) bool {
	for field, values := range in {
		if len(values) == 0 {
			continue
		}
		found := false
		for _, want := range values {
			if valueEqual(record.Fields[field], want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// valueEqual compares stored values loosely across the numeric shapes
// JSON transports produce.
func valueEqual(got, want any) bool {
	if got == want {
		return true
	}
	gotNum, gotOK := asFloat(got)
	wantNum, wantOK := asFloat(want)
	return gotOK && wantOK && gotNum == wantNum
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func fieldLess(a, b *recordstore.Record, field string) bool {
	av, aOK := a.Fields[field].(string)
	bv, bOK := b.Fields[field].(string)
	if aOK && bOK && av != bv {
		return av < bv
	}
	an, aNum := asFloat(a.Fields[field])
	bn, bNum := asFloat(b.Fields[field])
	if aNum && bNum && an != bn {
		return an < bn
	}
	return a.ID < b.ID
}
