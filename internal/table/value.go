package table

import (
	"strconv"
	"strings"
	"time"
)

// Canonical cell encodings used after type coercion.
const (
	// InstantLayout is the canonical encoding for timezone-aware instants.
	InstantLayout = time.RFC3339
	// DateLayout is the canonical encoding for calendar dates.
	DateLayout = "2006-01-02"
	// DayFirstLayout is the day-first numeric format used by the SMS export.
	DayFirstLayout = "02/01/2006"
)

// InstantLayouts are the layouts tried, in order, when coercing a raw cell
// into a timezone-aware instant. Layouts without a zone are read as UTC.
var InstantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// Value is a single nullable cell. The zero Value is null.
type Value struct {
	Str   string
	Valid bool
}

// String returns a non-null Value holding s.
func String(s string) Value {
	return Value{Str: s, Valid: true}
}

// Null returns the null Value.
func Null() Value {
	return Value{}
}

// IsNull reports whether the cell carries no value.
func (v Value) IsNull() bool {
	return !v.Valid
}

// IsBlank reports whether the cell is null or whitespace-only. Raw CSV
// extracts encode absence as an empty field, so blank and null are treated
// the same during cleaning.
func (v Value) IsBlank() bool {
	return !v.Valid || strings.TrimSpace(v.Str) == ""
}

// Int coerces the cell to an integer. Float-encoded integers ("4.0") are
// accepted because upstream exports write numeric columns that way.
func (v Value) Int() (int64, bool) {
	if v.IsBlank() {
		return 0, false
	}
	s := strings.TrimSpace(v.Str)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return int64(f), true
	}
	return 0, false
}

// Float coerces the cell to a float64.
func (v Value) Float() (float64, bool) {
	if v.IsBlank() {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Time coerces the cell to a timezone-aware instant using the given layouts.
// Layouts without zone information are interpreted as UTC.
func (v Value) Time(layouts ...string) (time.Time, bool) {
	if v.IsBlank() {
		return time.Time{}, false
	}
	s := strings.TrimSpace(v.Str)
	for _, layout := range layouts {
		if strings.Contains(layout, "Z07") || strings.Contains(layout, "-07") {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
			continue
		}
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Instant coerces the cell using the standard instant layouts.
func (v Value) Instant() (time.Time, bool) {
	return v.Time(InstantLayouts...)
}
