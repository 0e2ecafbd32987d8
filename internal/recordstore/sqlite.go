package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite"

	"github.com/kennelworks/kennelworks/internal/clock"
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	record_type   TEXT    NOT NULL,
	record_id     TEXT    NOT NULL,
	fields        TEXT    NOT NULL,
	is_deleted    INTEGER NOT NULL DEFAULT 0,
	created_at_ns INTEGER NOT NULL,
	updated_at_ns INTEGER NOT NULL,
	PRIMARY KEY (record_type, record_id)
);
CREATE INDEX IF NOT EXISTS idx_records_updated ON records (record_type, updated_at_ns);
`

// identRe guards field names interpolated into json_extract paths.
var identRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// SqliteStore keeps records in a local SQLite database. It implements
// the same contract as the hosted record API, including store-stamped
// monotonic UpdatedAt, so the rest of the system cannot tell the two
// apart.
type SqliteStore struct {
	db     *sqlx.DB
	clock  clock.Clock
	logger *logger.Logger
}

func NewSqliteStore(path string, clk clock.Clock, log *logger.Logger) (*SqliteStore, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to open the local record database").
			Mark(ierr.ErrDatabase)
	}
	// modernc sqlite is single-writer; serialize access through one conn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to prepare the local record database").
			Mark(ierr.ErrDatabase)
	}

	return &SqliteStore{db: db, clock: clk, logger: log}, nil
}

type recordRow struct {
	RecordType  string `db:"record_type"`
	RecordID    string `db:"record_id"`
	Fields      string `db:"fields"`
	IsDeleted   int    `db:"is_deleted"`
	CreatedAtNs int64  `db:"created_at_ns"`
	UpdatedAtNs int64  `db:"updated_at_ns"`
}

func (r recordRow) toRecord() (*Record, error) {
	fields := Fields{}
	if err := json.Unmarshal([]byte(r.Fields), &fields); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Stored record cannot be decoded").
			WithReportableDetails(map[string]any{"id": r.RecordID}).
			Mark(ierr.ErrEncoding)
	}
	return &Record{
		ID:        r.RecordID,
		Type:      r.RecordType,
		Fields:    fields,
		Deleted:   r.IsDeleted != 0,
		CreatedAt: time.Unix(0, r.CreatedAtNs).UTC(),
		UpdatedAt: time.Unix(0, r.UpdatedAtNs).UTC(),
	}, nil
}

func (s *SqliteStore) Insert(ctx context.Context, recordType, id string, fields Fields) (*Record, error) {
	data, err := encodeFields(fields)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (record_type, record_id, fields, is_deleted, created_at_ns, updated_at_ns)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		recordType, id, data, now.UnixNano(), now.UnixNano())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, ierr.NewError("record already exists").
				WithHintf("A record with id %s already exists", id).
				WithReportableDetails(map[string]any{"id": id, "type": recordType}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to insert record").
			Mark(ierr.ErrDatabase)
	}

	return &Record{
		ID:        id,
		Type:      recordType,
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SqliteStore) Update(ctx context.Context, recordType, id string, fields Fields) (*Record, error) {
	existing, err := s.Get(ctx, recordType, id)
	if err != nil {
		return nil, err
	}

	data, err := encodeFields(fields)
	if err != nil {
		return nil, err
	}

	// Store-stamped and monotonic: never let UpdatedAt move backward
	// even if the wall clock did, or a watermark fetch would miss this
	// write.
	now := s.clock.Now().UTC()
	if !now.After(existing.UpdatedAt) {
		now = existing.UpdatedAt.Add(time.Millisecond)
	}

	deleted := 0
	if isDeleted(fields) {
		deleted = 1
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE records SET fields = ?, is_deleted = ?, updated_at_ns = ?
		 WHERE record_type = ? AND record_id = ?`,
		data, deleted, now.UnixNano(), recordType, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to update record").
			Mark(ierr.ErrDatabase)
	}

	return &Record{
		ID:        id,
		Type:      recordType,
		Fields:    fields,
		Deleted:   deleted != 0,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: now,
	}, nil
}

func (s *SqliteStore) Get(ctx context.Context, recordType, id string) (*Record, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row,
		`SELECT record_type, record_id, fields, is_deleted, created_at_ns, updated_at_ns
		 FROM records WHERE record_type = ? AND record_id = ?`,
		recordType, id)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("record not found").
			WithHintf("No record with id %s", id).
			WithReportableDetails(map[string]any{"id": id, "type": recordType}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read record").
			Mark(ierr.ErrDatabase)
	}
	return row.toRecord()
}

func (s *SqliteStore) Search(ctx context.Context, recordType string, q Query) ([]*Record, error) {
	where := []string{"record_type = ?"}
	args := []any{recordType}

	if !q.IncludeDeleted {
		where = append(where, "is_deleted = 0")
	}
	if q.ModifiedAfter != nil {
		where = append(where, "updated_at_ns > ?")
		args = append(args, q.ModifiedAfter.UnixNano())
	}
	for field, value := range q.Equals {
		path, err := jsonPath(field)
		if err != nil {
			return nil, err
		}
		where = append(where, fmt.Sprintf("json_extract(fields, %s) = ?", path))
		args = append(args, value)
	}
	for field, values := range q.In {
		if len(values) == 0 {
			continue
		}
		path, err := jsonPath(field)
		if err != nil {
			return nil, err
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
		where = append(where, fmt.Sprintf("json_extract(fields, %s) IN (%s)", path, placeholders))
		args = append(args, values...)
	}

	query := `SELECT record_type, record_id, fields, is_deleted, created_at_ns, updated_at_ns
		 FROM records WHERE ` + strings.Join(where, " AND ")

	if q.OrderBy != "" {
		path, err := jsonPath(q.OrderBy)
		if err != nil {
			return nil, err
		}
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY json_extract(fields, %s) %s, record_id %s", path, dir, dir)
	}
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", q.Limit, q.Offset)
	} else if q.Offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", q.Offset)
	}

	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to search records").
			Mark(ierr.ErrDatabase)
	}

	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *SqliteStore) Delete(ctx context.Context, recordType, id string) error {
	existing, err := s.Get(ctx, recordType, id)
	if err != nil {
		return err
	}
	fields := existing.Fields
	fields[FieldDeleted] = 1
	_, err = s.Update(ctx, recordType, id, fields)
	return err
}

func (s *SqliteStore) Purge(ctx context.Context, recordType string, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE record_type = ? AND is_deleted = 1 AND updated_at_ns < ?`,
		recordType, before.UnixNano())
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to purge tombstones").
			Mark(ierr.ErrDatabase)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to purge tombstones").
			Mark(ierr.ErrDatabase)
	}
	return int(n), nil
}

func encodeFields(fields Fields) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Record fields cannot be encoded").
			Mark(ierr.ErrEncoding)
	}
	return string(data), nil
}

func isDeleted(fields Fields) bool {
	deleted, err := fields.GetBool(FieldDeleted)
	return err == nil && deleted
}

func jsonPath(field string) (string, error) {
	if !identRe.MatchString(field) {
		return "", ierr.NewErrorf("invalid field name %q", field).
			WithHint("Field names must be lowercase identifiers").
			Mark(ierr.ErrValidation)
	}
	return fmt.Sprintf("'$.%s'", field), nil
}
