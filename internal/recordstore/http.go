package recordstore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kennelworks/kennelworks/internal/config"
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/httpclient"
	"github.com/kennelworks/kennelworks/internal/logger"
)

// HTTPStore talks to a hosted record API over REST. The remote service
// owns the audit stamps: every successful write returns the record with
// server-assigned created_at/updated_at, which is what makes the
// watermark safe against client clock skew.
type HTTPStore struct {
	baseURL  string
	apiToken string
	client   httpclient.Client
	logger   *logger.Logger
}

func NewHTTPStore(cfg config.RecordStoreConfig, client httpclient.Client, log *logger.Logger) *HTTPStore {
	return &HTTPStore{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		apiToken: cfg.APIToken,
		client:   client,
		logger:   log,
	}
}

func (s *HTTPStore) Insert(ctx context.Context, recordType, id string, fields Fields) (*Record, error) {
	payload := Fields{}
	for k, v := range fields {
		payload[k] = v
	}
	payload[FieldID] = id

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Record fields cannot be encoded").
			Mark(ierr.ErrEncoding)
	}

	resp, err := s.send(ctx, http.MethodPost, s.collectionURL(recordType), body)
	if err != nil {
		return nil, s.mapError(err, recordType, id)
	}
	return s.decodeRecord(recordType, resp.Body)
}

func (s *HTTPStore) Update(ctx context.Context, recordType, id string, fields Fields) (*Record, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Record fields cannot be encoded").
			Mark(ierr.ErrEncoding)
	}

	resp, err := s.send(ctx, http.MethodPut, s.recordURL(recordType, id), body)
	if err != nil {
		return nil, s.mapError(err, recordType, id)
	}
	return s.decodeRecord(recordType, resp.Body)
}

func (s *HTTPStore) Get(ctx context.Context, recordType, id string) (*Record, error) {
	resp, err := s.send(ctx, http.MethodGet, s.recordURL(recordType, id), nil)
	if err != nil {
		return nil, s.mapError(err, recordType, id)
	}
	return s.decodeRecord(recordType, resp.Body)
}

func (s *HTTPStore) Search(ctx context.Context, recordType string, q Query) ([]*Record, error) {
	params := url.Values{}
	if where := buildWhere(q); where != "" {
		params.Set("where", where)
	}
	if q.OrderBy != "" {
		params.Set("sort_by", q.OrderBy)
		if q.Descending {
			params.Set("order", "desc")
		} else {
			params.Set("order", "asc")
		}
	}
	if q.IncludeDeleted {
		params.Set("include_deleted", "true")
	}
	if q.Limit > 0 {
		params.Set("page_size", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}

	endpoint := s.collectionURL(recordType)
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	resp, err := s.send(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, s.mapError(err, recordType, "")
	}

	var raw []map[string]any
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Record store response cannot be decoded").
			Mark(ierr.ErrEncoding)
	}

	records := make([]*Record, 0, len(raw))
	for _, item := range raw {
		record, err := fromWire(recordType, item)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *HTTPStore) Delete(ctx context.Context, recordType, id string) error {
	existing, err := s.Get(ctx, recordType, id)
	if err != nil {
		return err
	}
	fields := existing.Fields
	fields[FieldDeleted] = 1
	_, err = s.Update(ctx, recordType, id, fields)
	return err
}

func (s *HTTPStore) Purge(ctx context.Context, recordType string, before time.Time) (int, error) {
	tombstones, err := s.Search(ctx, recordType, Query{
		Equals:         Fields{FieldDeleted: 1},
		IncludeDeleted: true,
	})
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, record := range tombstones {
		if !record.UpdatedAt.Before(before) {
			continue
		}
		if _, err := s.send(ctx, http.MethodDelete, s.recordURL(recordType, record.ID), nil); err != nil {
			return purged, s.mapError(err, recordType, record.ID)
		}
		purged++
	}
	return purged, nil
}

func (s *HTTPStore) send(ctx context.Context, method, endpoint string, body []byte) (*httpclient.Response, error) {
	headers := map[string]string{}
	if s.apiToken != "" {
		headers["Authorization"] = "Bearer " + s.apiToken
	}
	return s.client.Send(ctx, &httpclient.Request{
		Method:  method,
		URL:     endpoint,
		Headers: headers,
		Body:    body,
	})
}

func (s *HTTPStore) collectionURL(recordType string) string {
	return fmt.Sprintf("%s/api/data/%s", s.baseURL, url.PathEscape(recordType))
}

func (s *HTTPStore) recordURL(recordType, id string) string {
	return fmt.Sprintf("%s/api/data/%s/%s", s.baseURL, url.PathEscape(recordType), url.PathEscape(id))
}

// mapError translates remote HTTP statuses onto the domain taxonomy.
// Anything that is not a clean 404 or 409 is a transport failure the
// caller absorbs until the next scheduled firing.
func (s *HTTPStore) mapError(err error, recordType, id string) error {
	httpErr, ok := httpclient.IsHTTPError(err)
	if !ok {
		return err
	}
	switch httpErr.StatusCode {
	case http.StatusNotFound:
		return ierr.NewError("record not found").
			WithHintf("No record with id %s", id).
			WithReportableDetails(map[string]any{"id": id, "type": recordType}).
			Mark(ierr.ErrNotFound)
	case http.StatusConflict:
		return ierr.NewError("record already exists").
			WithHintf("A record with id %s already exists", id).
			WithReportableDetails(map[string]any{"id": id, "type": recordType}).
			Mark(ierr.ErrAlreadyExists)
	default:
		return ierr.WithError(err).
			WithHint("Record store request failed").
			WithReportableDetails(map[string]any{"status": httpErr.StatusCode}).
			Mark(ierr.ErrTransport)
	}
}

func (s *HTTPStore) decodeRecord(recordType string, body []byte) (*Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Record store response cannot be decoded").
			Mark(ierr.ErrEncoding)
	}
	return fromWire(recordType, raw)
}

// fromWire splits the flat wire object into reserved stamps and domain
// fields.
func fromWire(recordType string, raw map[string]any) (*Record, error) {
	fields := Fields{}
	for k, v := range raw {
		switch k {
		case FieldID, FieldCreatedAt, FieldUpdatedAt:
		default:
			fields[k] = v
		}
	}

	wire := Fields(raw)
	id, err := wire.GetString(FieldID)
	if err != nil {
		return nil, err
	}
	createdAt, err := wire.GetTime(FieldCreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := wire.GetTime(FieldUpdatedAt)
	if err != nil {
		return nil, err
	}
	deleted, err := wire.GetBool(FieldDeleted)
	if err != nil {
		return nil, err
	}

	record := &Record{
		ID:      id,
		Type:    recordType,
		Fields:  fields,
		Deleted: deleted,
	}
	if createdAt != nil {
		record.CreatedAt = *createdAt
	}
	if updatedAt != nil {
		record.UpdatedAt = *updatedAt
	}
	return record, nil
}

// buildWhere renders the query predicates in the record API's filter
// grammar.
func buildWhere(q Query) string {
	clauses := make([]string, 0, len(q.Equals)+2)
	for field, value := range q.Equals {
		clauses = append(clauses, fmt.Sprintf("%s = %s", field, whereValue(value)))
	}
	for field, values := range q.In {
		if len(values) == 0 {
			continue
		}
		rendered := make([]string, 0, len(values))
		for _, v := range values {
			rendered = append(rendered, whereValue(v))
		}
		clauses = append(clauses, fmt.Sprintf("%s in (%s)", field, strings.Join(rendered, ", ")))
	}
	if q.ModifiedAfter != nil {
		clauses = append(clauses, fmt.Sprintf("%s > '%s'",
			FieldUpdatedAt, q.ModifiedAfter.UTC().Format(time.RFC3339Nano)))
	}
	return strings.Join(clauses, " and ")
}

func whereValue(v any) string {
	switch value := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	default:
		return fmt.Sprintf("%v", value)
	}
}
