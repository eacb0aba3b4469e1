package billing

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedTimestamp is wrapped by every timestamp parse failure.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// TimestampError reports an entry whose timestamp could not be parsed.
type TimestampError struct {
	EntryID string
	Value   string
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("entry %q: %v %q", e.EntryID, ErrMalformedTimestamp, e.Value)
}

func (e *TimestampError) Unwrap() error {
	return ErrMalformedTimestamp
}

// Zone-less layouts are read in the caller's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an RFC 3339 instant. Timestamps without an offset
// are interpreted in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q", ErrMalformedTimestamp, s)
}

func entryTime(id, ts string, loc *time.Location) (time.Time, error) {
	t, err := ParseTimestamp(ts, loc)
	if err != nil {
		return time.Time{}, &TimestampError{EntryID: id, Value: ts}
	}
	return t, nil
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
