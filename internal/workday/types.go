package workday

import (
	"strings"

	"github.com/username/timesheet-bot/pkg/dateutil"
)

// SkipKind identifies why a date is not a workday
type SkipKind int

const (
	SkipWeekend SkipKind = iota + 1
	SkipHoliday
)

// SkipReason is Weekend or Holiday(name)
type SkipReason struct {
	Kind SkipKind
	Name string // holiday name, empty for weekends
}

// Weekend returns the weekend skip reason
func Weekend() SkipReason {
	return SkipReason{Kind: SkipWeekend}
}

// Holiday returns a holiday skip reason
func Holiday(name string) SkipReason {
	return SkipReason{Kind: SkipHoliday, Name: name}
}

func (s SkipReason) String() string {
	switch s.Kind {
	case SkipWeekend:
		return "Weekend"
	case SkipHoliday:
		return "Holiday(" + s.Name + ")"
	default:
		return "Unknown"
	}
}

// Day is one classified date. No reasons means a workday.
type Day struct {
	Date    dateutil.Date
	Reasons []SkipReason
}

// IsWorkday reports whether the day has no skip reasons
func (d Day) IsWorkday() bool {
	return len(d.Reasons) == 0
}

// HasReason reports whether the day was skipped for kind
func (d Day) HasReason(kind SkipKind) bool {
	for _, r := range d.Reasons {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

// ReasonText joins the reasons for display, e.g. "Weekend, Holiday(Boxing Day)"
func (d Day) ReasonText() string {
	parts := make([]string, 0, len(d.Reasons))
	for _, r := range d.Reasons {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, ", ")
}

// Result is an ordered, contiguous run of classified dates
type Result struct {
	Days []Day
}

// Workdays returns the workday dates in order
func (r Result) Workdays() []dateutil.Date {
	var out []dateutil.Date
	for _, d := range r.Days {
		if d.IsWorkday() {
			out = append(out, d.Date)
		}
	}
	return out
}

// Skipped returns the non-workdays with their reasons
func (r Result) Skipped() []Day {
	var out []Day
	for _, d := range r.Days {
		if !d.IsWorkday() {
			out = append(out, d)
		}
	}
	return out
}

// Bounds returns the first and last date, ok is false for an empty result
func (r Result) Bounds() (first, last dateutil.Date, ok bool) {
	if len(r.Days) == 0 {
		return dateutil.Date{}, dateutil.Date{}, false
	}
	return r.Days[0].Date, r.Days[len(r.Days)-1].Date, true
}
