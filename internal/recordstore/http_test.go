package recordstore_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kennelworks/kennelworks/internal/config"
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/httpclient"
	"github.com/kennelworks/kennelworks/internal/logger"
	"github.com/kennelworks/kennelworks/internal/recordstore"
)

type HTTPStoreSuite struct {
	suite.Suite
	ctx context.Context
	log *logger.Logger
}

func TestHTTPStore(t *testing.T) {
	suite.Run(t, new(HTTPStoreSuite))
}

func (s *HTTPStoreSuite) SetupSuite() {
	s.ctx = context.Background()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = "error"
	log, err := logger.NewLogger(cfg)
	s.Require().NoError(err)
	s.log = log
}

func (s *HTTPStoreSuite) newStore(handler http.HandlerFunc) *recordstore.HTTPStore {
	server := httptest.NewServer(handler)
	s.T().Cleanup(server.Close)

	return recordstore.NewHTTPStore(config.RecordStoreConfig{
		BaseURL:  server.URL,
		APIToken: "secret",
	}, httpclient.NewDefaultClient(), s.log)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *HTTPStoreSuite) TestInsertSendsIdentityAndParsesStamps() {
	store := s.newStore(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("/api/data/animals", r.URL.Path)
		s.Equal("Bearer secret", r.Header.Get("Authorization"))

		var body map[string]any
		s.NoError(json.NewDecoder(r.Body).Decode(&body))
		// The caller owns the identity; it rides in the payload.
		s.Equal("animal_1", body["id"])
		s.Equal("Biscuit", body["name"])

		writeJSON(w, map[string]any{
			"id":         "animal_1",
			"name":       "Biscuit",
			"is_deleted": 0,
			"created_at": "2024-03-01T09:00:00Z",
			"updated_at": "2024-03-01T09:00:00Z",
		})
	})

	record, err := store.Insert(s.ctx, "animals", "animal_1", recordstore.Fields{"name": "Biscuit"})
	s.NoError(err)
	s.Equal("animal_1", record.ID)
	s.False(record.Deleted)

	// Server-assigned stamps split off the wire object; domain fields
	// stay behind without the reserved keys.
	s.Equal(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), record.CreatedAt)
	s.Equal(record.CreatedAt, record.UpdatedAt)
	s.Equal("Biscuit", record.Fields["name"])
	s.NotContains(record.Fields, recordstore.FieldID)
	s.NotContains(record.Fields, recordstore.FieldCreatedAt)
	s.NotContains(record.Fields, recordstore.FieldUpdatedAt)
}

func (s *HTTPStoreSuite) TestInsertConflict() {
	store := s.newStore(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	_, err := store.Insert(s.ctx, "animals", "animal_1", recordstore.Fields{"name": "Biscuit"})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *HTTPStoreSuite) TestGetNotFound() {
	store := s.newStore(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/api/data/animals/animal_missing", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := store.Get(s.ctx, "animals", "animal_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *HTTPStoreSuite) TestServerFailureIsTransport() {
	store := s.newStore(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := store.Get(s.ctx, "animals", "animal_1")
	s.Error(err)
	s.True(ierr.IsTransport(err))
	s.False(ierr.IsNotFound(err))
}

func (s *HTTPStoreSuite) TestUpdateUsesRecordURLAndServerStamp() {
	store := s.newStore(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPut, r.Method)
		s.Equal("/api/data/animals/animal_1", r.URL.Path)

		writeJSON(w, map[string]any{
			"id":         "animal_1",
			"name":       "Biscuit",
			"is_deleted": 0,
			"created_at": "2024-03-01T09:00:00Z",
			"updated_at": "2024-03-01T09:00:00.001Z",
		})
	})

	record, err := store.Update(s.ctx, "animals", "animal_1", recordstore.Fields{"name": "Biscuit"})
	s.NoError(err)

	// The watermark comes from the server, never the client clock.
	s.True(record.UpdatedAt.After(record.CreatedAt))
}

func (s *HTTPStoreSuite) TestSearchFilterGrammar() {
	var query map[string]string
	capture := func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		writeJSON(w, []map[string]any{})
	}
	store := s.newStore(capture)

	s.Run("equals with quote escaping", func() {
		_, err := store.Search(s.ctx, "animals", recordstore.Query{
			Equals: recordstore.Fields{"owner_name": "O'Malley"},
		})
		s.NoError(err)
		s.Equal("owner_name = 'O''Malley'", query["where"])
	})

	s.Run("in clause", func() {
		_, err := store.Search(s.ctx, "animals", recordstore.Query{
			In: map[string][]any{"presence_state": {"daycare_present", "boarding"}},
		})
		s.NoError(err)
		s.Equal("presence_state in ('daycare_present', 'boarding')", query["where"])
	})

	s.Run("watermark predicate", func() {
		watermark := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		_, err := store.Search(s.ctx, "animals", recordstore.Query{
			ModifiedAfter: &watermark,
		})
		s.NoError(err)
		s.Equal("updated_at > '2024-03-01T09:00:00Z'", query["where"])
	})

	s.Run("ordering and paging", func() {
		_, err := store.Search(s.ctx, "animals", recordstore.Query{
			OrderBy:        "name",
			IncludeDeleted: true,
			Limit:          10,
			Offset:         20,
		})
		s.NoError(err)
		s.Equal("name", query["sort_by"])
		s.Equal("asc", query["order"])
		s.Equal("true", query["include_deleted"])
		s.Equal("10", query["page_size"])
		s.Equal("20", query["offset"])
	})
}

func (s *HTTPStoreSuite) TestSearchDecodesWireRecords() {
	store := s.newStore(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{
				"id":         "animal_1",
				"name":       "Biscuit",
				"is_deleted": 0,
				"created_at": "2024-03-01T09:00:00Z",
				"updated_at": "2024-03-01T09:00:00Z",
			},
			{
				"id":         "animal_2",
				"name":       "Mabel",
				"is_deleted": 1,
				"created_at": "2024-03-01T09:00:00Z",
				"updated_at": "2024-03-02T09:00:00Z",
			},
		})
	})

	records, err := store.Search(s.ctx, "animals", recordstore.Query{IncludeDeleted: true})
	s.NoError(err)
	s.Len(records, 2)
	s.False(records[0].Deleted)

	// JSON hands the 0/1 marker back as a number; the tombstone flag
	// still decodes.
	s.True(records[1].Deleted)
	s.Equal(time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), records[1].UpdatedAt)
}

func (s *HTTPStoreSuite) TestDeleteWritesTombstone() {
	var updated map[string]any
	store := s.newStore(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, map[string]any{
				"id":         "animal_1",
				"name":       "Biscuit",
				"is_deleted": 0,
				"created_at": "2024-03-01T09:00:00Z",
				"updated_at": "2024-03-01T09:00:00Z",
			})
		case http.MethodPut:
			s.NoError(json.NewDecoder(r.Body).Decode(&updated))
			writeJSON(w, map[string]any{
				"id":         "animal_1",
				"name":       "Biscuit",
				"is_deleted": 1,
				"created_at": "2024-03-01T09:00:00Z",
				"updated_at": "2024-03-01T09:00:00.001Z",
			})
		default:
			s.Failf("unexpected method", "%s %s", r.Method, r.URL.Path)
		}
	})

	s.NoError(store.Delete(s.ctx, "animals", "animal_1"))

	// Deletion is an update setting the marker, never a DELETE.
	s.Equal(float64(1), updated["is_deleted"])
	s.Equal("Biscuit", updated["name"])
}

func (s *HTTPStoreSuite) TestPurgeRemovesOnlyOldTombstones() {
	var deleted []string
	store := s.newStore(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.Equal("true", r.URL.Query().Get("include_deleted"))
			writeJSON(w, []map[string]any{
				{
					"id":         "animal_old",
					"is_deleted": 1,
					"created_at": "2024-01-01T00:00:00Z",
					"updated_at": "2024-01-02T00:00:00Z",
				},
				{
					"id":         "animal_recent",
					"is_deleted": 1,
					"created_at": "2024-02-28T00:00:00Z",
					"updated_at": "2024-03-01T08:00:00Z",
				},
			})
		case http.MethodDelete:
			deleted = append(deleted, r.URL.Path)
			w.WriteHeader(http.StatusOK)
		default:
			s.Failf("unexpected method", "%s %s", r.Method, r.URL.Path)
		}
	})

	cutoff := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	purged, err := store.Purge(s.ctx, "animals", cutoff)
	s.NoError(err)
	s.Equal(1, purged)
	s.Equal([]string{"/api/data/animals/animal_old"}, deleted)
}
