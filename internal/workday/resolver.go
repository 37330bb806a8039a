package workday

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/username/timesheet-bot/pkg/dateutil"
	"go.uber.org/zap"
)

// workWeekDays is Monday through Friday
const workWeekDays = 5

// ErrInvalidDateFormat is returned when an operator date does not match the input format
var ErrInvalidDateFormat = errors.New("invalid date format")

// Holidays answers holiday questions for the configured region.
// *calendar.HolidayCalendar satisfies it.
type Holidays interface {
	IsHoliday(ctx context.Context, date dateutil.Date) (bool, error)
	HolidayName(ctx context.Context, date dateutil.Date) (string, error)
}

// unnamedHoliday is shown for holidays the source did not name
const unnamedHoliday = "Holiday"

// Resolver expands date ranges and classifies each date as a workday or a skipped day
type Resolver struct {
	holidays Holidays
	now      func() time.Time
	observer Observer
	logger   *zap.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithClock replaces time.Now, used by CurrentWeek
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithObserver attaches progress reporting to streamed ranges
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		if o != nil {
			r.observer = o
		}
	}
}

// NewResolver creates a new Resolver
func NewResolver(holidays Holidays, logger *zap.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		holidays: holidays,
		now:      time.Now,
		observer: NopObserver{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ParseDate parses an operator supplied date with a strftime style format
func ParseDate(format, value string) (dateutil.Date, error) {
	d, err := dateutil.Parse(format, value)
	if err != nil {
		return dateutil.Date{}, fmt.Errorf("%w: %q does not match %s", ErrInvalidDateFormat, value, format)
	}
	return d, nil
}

// CurrentWeekBounds returns Monday and Friday of the week containing now
func (r *Resolver) CurrentWeekBounds() (dateutil.Date, dateutil.Date) {
	monday := dateutil.StartOfWeek(dateutil.DateOf(r.now()))
	return monday, monday.AddDays(workWeekDays - 1)
}

// CurrentWeek classifies Monday through Friday of the current week
func (r *Resolver) CurrentWeek(ctx context.Context) (Result, error) {
	monday, friday := r.CurrentWeekBounds()
	return r.ClassifyRange(ctx, monday, friday)
}

// ExpandRange parses both bounds and classifies every date between them inclusive.
// start after end yields an empty result.
func (r *Resolver) ExpandRange(ctx context.Context, startStr, endStr, format string) (Result, error) {
	start, end, err := parseBounds(startStr, endStr, format)
	if err != nil {
		return Result{}, err
	}
	return r.ClassifyRange(ctx, start, end)
}

// ClassifyRange classifies every date from start to end inclusive
func (r *Resolver) ClassifyRange(ctx context.Context, start, end dateutil.Date) (Result, error) {
	var result Result

	for d := start; !d.After(end); d = d.AddDays(1) {
		reasons, err := r.Reasons(ctx, d)
		if err != nil {
			return Result{}, err
		}
		result.Days = append(result.Days, Day{Date: d, Reasons: reasons})
	}

	r.logger.Debug("Date range classified",
		zap.Stringer("start", start),
		zap.Stringer("end", end),
		zap.Int("days", len(result.Days)),
		zap.Int("workdays", len(result.Workdays())))

	return result, nil
}

// Stream parses both bounds and returns a lazy sequence of the workdays between them.
// See StreamRange.
func (r *Resolver) Stream(ctx context.Context, startStr, endStr, format string) (iter.Seq2[dateutil.Date, error], error) {
	start, end, err := parseBounds(startStr, endStr, format)
	if err != nil {
		return nil, err
	}
	return r.StreamRange(ctx, start, end), nil
}

// StreamRange yields the workdays from start to end one at a time.
// Date N+1 is not classified until the loop body for date N has returned.
// Skipped days and progress go to the observer as they happen.
// The sequence can be ranged over once; later ranges yield nothing.
// A holiday lookup failure is yielded as (Date{}, err) and ends the sequence.
func (r *Resolver) StreamRange(ctx context.Context, start, end dateutil.Date) iter.Seq2[dateutil.Date, error] {
	consumed := false

	return func(yield func(dateutil.Date, error) bool) {
		if consumed {
			return
		}
		consumed = true

		total := max(start.DaysUntil(end)+1, 0)
		r.observer.RangeStarted(start, end, total)

		workdays, skipped := 0, 0
		for d := start; !d.After(end); d = d.AddDays(1) {
			reasons, err := r.Reasons(ctx, d)
			if err != nil {
				yield(dateutil.Date{}, err)
				return
			}

			if len(reasons) > 0 {
				skipped++
				r.observer.DaySkipped(Day{Date: d, Reasons: reasons})
				continue
			}

			workdays++
			r.observer.WorkdayStarted(workdays, d)
			if !yield(d, nil) {
				return
			}
			r.observer.WorkdayFinished(workdays, d)
		}

		r.observer.Completed(workdays, skipped)
	}
}

// IsWorkday reports whether date is Monday to Friday and not a public holiday
func (r *Resolver) IsWorkday(ctx context.Context, date dateutil.Date) (bool, error) {
	if dateutil.IsWeekend(date) {
		return false, nil
	}
	holiday, err := r.holidays.IsHoliday(ctx, date)
	if err != nil {
		return false, err
	}
	return !holiday, nil
}

// Reasons returns why date is not a workday, weekend first then holiday.
// An empty slice means date is a workday.
func (r *Resolver) Reasons(ctx context.Context, date dateutil.Date) ([]SkipReason, error) {
	var reasons []SkipReason

	if dateutil.IsWeekend(date) {
		reasons = append(reasons, Weekend())
	}

	holiday, err := r.holidays.IsHoliday(ctx, date)
	if err != nil {
		return nil, err
	}
	if !holiday {
		return reasons, nil
	}

	name, err := r.holidays.HolidayName(ctx, date)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = unnamedHoliday
	}

	return append(reasons, Holiday(name)), nil
}

func parseBounds(startStr, endStr, format string) (dateutil.Date, dateutil.Date, error) {
	start, err := ParseDate(format, startStr)
	if err != nil {
		return dateutil.Date{}, dateutil.Date{}, err
	}
	end, err := ParseDate(format, endStr)
	if err != nil {
		return dateutil.Date{}, dateutil.Date{}, err
	}
	return start, end, nil
}
