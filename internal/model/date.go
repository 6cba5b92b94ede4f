package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// DateLayout is the wire layout for calendar dates (renewal dates, month starts).
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component.
type Date struct {
	time.Time
}

// NewDate returns the Date for the given year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, eris.Wrapf(err, "model: parse date %q", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON accepts "YYYY-MM-DD" as well as full timestamps.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return eris.Wrap(err, "model: date is not a string")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	ts, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	y, m, dd := ts.Date()
	*d = NewDate(y, m, dd)
	return nil
}

// MarshalYAML renders the date in its wire layout.
func (d Date) MarshalYAML() (any, error) {
	return d.Format(DateLayout), nil
}

// Timestamp is a point in time as sent by the server. The backend emits ISO-8601
// values that may lack a zone offset; those are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	DateLayout,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, eris.Errorf("model: unrecognised timestamp %q", s)
}

// MarshalJSON encodes the timestamp as RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// UnmarshalJSON accepts RFC 3339 and zone-less ISO-8601 timestamps.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return eris.Wrap(err, "model: timestamp is not a string")
	}
	parsed, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalYAML renders the timestamp as RFC 3339.
func (t Timestamp) MarshalYAML() (any, error) {
	return t.UTC().Format(time.RFC3339), nil
}
