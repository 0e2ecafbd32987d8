package recordstore

import (
	"time"

	ierr "github.com/kennelworks/kennelworks/internal/errors"
)

// Typed accessors for Fields. Decoding is deliberately forgiving about
// absence — a missing key is "unset", never an error — and strict about
// type: a present value of the wrong shape is an ErrEncoding, because
// it means the storage representation drifted from the field mapping.

// GetString returns the string value of key, empty when absent.
func (f Fields) GetString(key string) (string, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", decodeError(key, v, "string")
	}
	return s, nil
}

// GetInt returns the integer value of key, zero when absent. JSON
// transports hand numbers back as float64, so both shapes decode.
func (f Fields) GetInt(key string) (int, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, decodeError(key, v, "integer")
}

// GetBool decodes the two-valued integer representation back to a
// boolean. Absence means false.
func (f Fields) GetBool(key string) (bool, error) {
	n, err := f.GetInt(key)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// GetTime returns the timestamp value of key, nil when absent. Stored
// timestamps are RFC 3339 strings.
func (f Fields) GetTime(key string) (*time.Time, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, decodeError(key, v, "timestamp")
	}
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Field %s holds a malformed timestamp", key).
			WithReportableDetails(map[string]any{"field": key, "value": s}).
			Mark(ierr.ErrEncoding)
	}
	return &t, nil
}

// SetBool writes the 0/1 integer encoding of a boolean.
func (f Fields) SetBool(key string, v bool) {
	if v {
		f[key] = 1
	} else {
		f[key] = 0
	}
}

// SetTime writes an RFC 3339 timestamp, or removes the key when nil so
// an unset optional field round-trips as absent.
func (f Fields) SetTime(key string, t *time.Time) {
	if t == nil {
		delete(f, key)
		return
	}
	f[key] = t.UTC().Format(time.RFC3339Nano)
}

func decodeError(key string, v any, want string) error {
	return ierr.NewErrorf("field %s is not a %s", key, want).
		WithHintf("Stored field %s cannot be decoded", key).
		WithReportableDetails(map[string]any{"field": key, "value": v}).
		Mark(ierr.ErrEncoding)
}
