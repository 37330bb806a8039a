package dateutil

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ncruces/go-strftime"
)

// ISOLayout is the wire format used by Harvest for spent dates
const ISOLayout = "2006-01-02"

// Date is a calendar date without a time component.
// Equality and ordering are by calendar value only.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// NewDate builds a normalized Date (overflowing days roll into the next month)
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns the date n calendar days after d (n may be negative)
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Weekday returns the day of the week of d
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o
func (d Date) Compare(o Date) int {
	return d.Time().Compare(o.Time())
}

// Before reports whether d is strictly before o
func (d Date) Before(o Date) bool {
	return d.Compare(o) < 0
}

// After reports whether d is strictly after o
func (d Date) After(o Date) bool {
	return d.Compare(o) > 0
}

// DaysUntil returns the number of days from d to o (negative when o is before d)
func (d Date) DaysUntil(o Date) int {
	// UTC has no DST, so every day is exactly 24h
	return int(o.Time().Sub(d.Time()).Hours() / 24)
}

// Format formats the date using a Go layout
func (d Date) Format(layout string) string {
	return d.Time().Format(layout)
}

// String returns the ISO form YYYY-MM-DD
func (d Date) String() string {
	return d.Format(ISOLayout)
}

// MarshalJSON implements json.Marshaler for Date
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler for Date
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	parsed, err := ParseISO(s)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// ParseISO parses a YYYY-MM-DD date
func ParseISO(s string) (Date, error) {
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Parse parses value with a strftime-style format such as "%d/%m/%Y"
func Parse(format, value string) (Date, error) {
	t, err := strftime.Parse(format, value)
	if err != nil {
		return Date{}, fmt.Errorf("cannot parse %q as %q: %w", value, format, err)
	}
	return DateOf(t), nil
}

// FormatAs formats d with a strftime-style format
func FormatAs(format string, d Date) string {
	return strftime.Format(format, d.Time())
}

// StartOfWeek returns the Monday of the week containing d
func StartOfWeek(d Date) Date {
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	return d.AddDays(-(weekday - 1))
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(d Date) bool {
	weekday := d.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(d Date) bool {
	weekday := d.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// Today returns today's date in the local timezone
func Today() Date {
	return DateOf(time.Now())
}
