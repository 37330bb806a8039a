package workday

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/timesheet-bot/pkg/dateutil"
	"go.uber.org/zap/zaptest"
)

const operatorFormat = "%d/%m/%Y"

// fakeHolidays is a fixed holiday table with an optional failure
type fakeHolidays struct {
	table map[dateutil.Date]string
	err   error
}

func (f *fakeHolidays) IsHoliday(_ context.Context, d dateutil.Date) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.table[d]
	return ok, nil
}

func (f *fakeHolidays) HolidayName(_ context.Context, d dateutil.Date) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.table[d], nil
}

// victoria2025 lists the 2025 public holidays of Victoria, Australia
func victoria2025() *fakeHolidays {
	return &fakeHolidays{table: map[dateutil.Date]string{
		dateutil.NewDate(2025, 1, 1):   "New Year's Day",
		dateutil.NewDate(2025, 1, 27):  "Australia Day",
		dateutil.NewDate(2025, 3, 10):  "Labour Day",
		dateutil.NewDate(2025, 4, 18):  "Good Friday",
		dateutil.NewDate(2025, 4, 19):  "Easter Saturday",
		dateutil.NewDate(2025, 4, 20):  "Easter Sunday",
		dateutil.NewDate(2025, 4, 21):  "Easter Monday",
		dateutil.NewDate(2025, 4, 25):  "Anzac Day",
		dateutil.NewDate(2025, 6, 9):   "King's Birthday",
		dateutil.NewDate(2025, 11, 4):  "Melbourne Cup",
		dateutil.NewDate(2025, 12, 25): "Christmas Day",
		dateutil.NewDate(2025, 12, 26): "Boxing Day",
	}}
}

// recorder captures observer events and consumer work in order
type recorder struct {
	events []string
}

func (r *recorder) RangeStarted(start, end dateutil.Date, total int) {
	r.events = append(r.events, fmt.Sprintf("start %s..%s (%d)", start, end, total))
}

func (r *recorder) DaySkipped(day Day) {
	r.events = append(r.events, fmt.Sprintf("skip %s %s", day.Date, day.ReasonText()))
}

func (r *recorder) WorkdayStarted(n int, d dateutil.Date) {
	r.events = append(r.events, fmt.Sprintf("begin %d %s", n, d))
}

func (r *recorder) WorkdayFinished(n int, d dateutil.Date) {
	r.events = append(r.events, fmt.Sprintf("end %d %s", n, d))
}

func (r *recorder) Completed(workdays, skipped int) {
	r.events = append(r.events, fmt.Sprintf("done %d/%d", workdays, skipped))
}

func newTestResolver(t *testing.T, h Holidays, opts ...Option) *Resolver {
	return NewResolver(h, zaptest.NewLogger(t), opts...)
}

func TestExpandRange_LengthAndContiguity(t *testing.T) {
	r := newTestResolver(t, victoria2025())
	ctx := context.Background()

	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"Single day", "06/01/2025", "06/01/2025"},
		{"Work week", "06/01/2025", "10/01/2025"},
		{"Month boundary", "28/01/2025", "03/02/2025"},
		{"Leap February", "27/02/2024", "02/03/2024"},
		{"Year boundary", "30/12/2024", "02/01/2025"},
		{"Whole quarter", "01/01/2025", "31/03/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.ExpandRange(ctx, tt.start, tt.end, operatorFormat)
			require.NoError(t, err)

			start, _ := dateutil.Parse(operatorFormat, tt.start)
			end, _ := dateutil.Parse(operatorFormat, tt.end)
			require.Len(t, result.Days, start.DaysUntil(end)+1)

			assert.Equal(t, start, result.Days[0].Date)
			for i := 1; i < len(result.Days); i++ {
				assert.Equal(t, result.Days[i-1].Date.AddDays(1), result.Days[i].Date)
			}
			assert.Equal(t, len(result.Days), len(result.Workdays())+len(result.Skipped()))
		})
	}
}

func TestIsWorkday_MatchesPredicate(t *testing.T) {
	holidays := victoria2025()
	r := newTestResolver(t, holidays)
	ctx := context.Background()

	for d := dateutil.NewDate(2025, 1, 1); d.Year == 2025; d = d.AddDays(1) {
		got, err := r.IsWorkday(ctx, d)
		require.NoError(t, err)

		_, holiday := holidays.table[d]
		want := d.Weekday() != time.Saturday && d.Weekday() != time.Sunday && !holiday
		if got != want {
			t.Errorf("IsWorkday(%v) = %v, want %v", d, got, want)
		}
	}
}

func TestUnnamedHolidayIsNotAWorkday(t *testing.T) {
	monday := dateutil.NewDate(2025, 1, 6)
	r := newTestResolver(t, &fakeHolidays{table: map[dateutil.Date]string{monday: ""}})
	ctx := context.Background()

	ok, err := r.IsWorkday(ctx, monday)
	require.NoError(t, err)
	assert.False(t, ok)

	reasons, err := r.Reasons(ctx, monday)
	require.NoError(t, err)
	assert.Equal(t, []SkipReason{Holiday("Holiday")}, reasons)

	result, err := r.ExpandRange(ctx, "06/01/2025", "07/01/2025", operatorFormat)
	require.NoError(t, err)
	assert.Equal(t, []dateutil.Date{monday.AddDays(1)}, result.Workdays())
}

func TestExpandRange_NormalWeek(t *testing.T) {
	r := newTestResolver(t, victoria2025())

	result, err := r.ExpandRange(context.Background(), "06/01/2025", "10/01/2025", operatorFormat)
	require.NoError(t, err)

	assert.Len(t, result.Workdays(), 5)
	assert.Empty(t, result.Skipped())
}

func TestExpandRange_HolidayAndWeekend(t *testing.T) {
	r := newTestResolver(t, victoria2025())

	result, err := r.ExpandRange(context.Background(), "01/01/2025", "06/01/2025", operatorFormat)
	require.NoError(t, err)

	skipped := result.Skipped()
	require.Len(t, skipped, 3)

	assert.Equal(t, dateutil.NewDate(2025, 1, 1), skipped[0].Date)
	assert.Equal(t, []SkipReason{Holiday("New Year's Day")}, skipped[0].Reasons)
	assert.Equal(t, dateutil.NewDate(2025, 1, 4), skipped[1].Date)
	assert.Equal(t, []SkipReason{Weekend()}, skipped[1].Reasons)
	assert.Equal(t, dateutil.NewDate(2025, 1, 5), skipped[2].Date)
	assert.Equal(t, []SkipReason{Weekend()}, skipped[2].Reasons)

	assert.Equal(t, len(result.Days)-len(skipped), len(result.Workdays()))
	assert.Equal(t, []dateutil.Date{
		dateutil.NewDate(2025, 1, 2),
		dateutil.NewDate(2025, 1, 3),
		dateutil.NewDate(2025, 1, 6),
	}, result.Workdays())
}

func TestExpandRange_WeekendHolidayReportsBoth(t *testing.T) {
	r := newTestResolver(t, victoria2025())

	// Easter Saturday and Easter Sunday
	result, err := r.ExpandRange(context.Background(), "19/04/2025", "20/04/2025", operatorFormat)
	require.NoError(t, err)
	require.Len(t, result.Days, 2)

	assert.Equal(t, []SkipReason{Weekend(), Holiday("Easter Saturday")}, result.Days[0].Reasons)
	assert.Equal(t, []SkipReason{Weekend(), Holiday("Easter Sunday")}, result.Days[1].Reasons)
	assert.True(t, result.Days[0].HasReason(SkipWeekend))
	assert.True(t, result.Days[0].HasReason(SkipHoliday))
	assert.Equal(t, "Weekend, Holiday(Easter Saturday)", result.Days[0].ReasonText())
	assert.Empty(t, result.Workdays())
}

func TestExpandRange_StartAfterEnd(t *testing.T) {
	r := newTestResolver(t, victoria2025())

	result, err := r.ExpandRange(context.Background(), "10/01/2025", "06/01/2025", operatorFormat)
	require.NoError(t, err)

	assert.Empty(t, result.Days)
	assert.Empty(t, result.Workdays())
	assert.Empty(t, result.Skipped())
	_, _, ok := result.Bounds()
	assert.False(t, ok)
}

func TestExpandRange_InvalidFormat(t *testing.T) {
	r := newTestResolver(t, victoria2025())
	ctx := context.Background()

	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"Bad start", "2025-01-06", "10/01/2025"},
		{"Bad end", "06/01/2025", "tomorrow"},
		{"Impossible day", "32/01/2025", "10/02/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ExpandRange(ctx, tt.start, tt.end, operatorFormat)
			assert.ErrorIs(t, err, ErrInvalidDateFormat)

			_, err = r.Stream(ctx, tt.start, tt.end, operatorFormat)
			assert.ErrorIs(t, err, ErrInvalidDateFormat)
		})
	}
}

func TestExpandRange_HolidayLookupFails(t *testing.T) {
	lookupErr := errors.New("holiday API down")
	r := newTestResolver(t, &fakeHolidays{err: lookupErr})

	_, err := r.ExpandRange(context.Background(), "06/01/2025", "10/01/2025", operatorFormat)
	assert.ErrorIs(t, err, lookupErr)
}

func TestCurrentWeek(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
	}{
		{"Wednesday", time.Date(2025, 1, 8, 15, 0, 0, 0, time.UTC)},
		{"Monday morning", time.Date(2025, 1, 6, 0, 0, 1, 0, time.UTC)},
		{"Sunday night", time.Date(2025, 1, 12, 23, 59, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := func() time.Time { return tt.now }
			r := newTestResolver(t, victoria2025(), WithClock(clock))

			result, err := r.CurrentWeek(context.Background())
			require.NoError(t, err)

			first, last, ok := result.Bounds()
			require.True(t, ok)
			assert.Equal(t, dateutil.NewDate(2025, 1, 6), first)
			assert.Equal(t, dateutil.NewDate(2025, 1, 10), last)
			assert.Len(t, result.Workdays(), 5)
		})
	}
}

func TestCurrentWeek_WithHoliday(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 12, 24, 9, 0, 0, 0, time.UTC) }
	r := newTestResolver(t, victoria2025(), WithClock(clock))

	result, err := r.CurrentWeek(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []dateutil.Date{
		dateutil.NewDate(2025, 12, 22),
		dateutil.NewDate(2025, 12, 23),
		dateutil.NewDate(2025, 12, 24),
	}, result.Workdays())
	assert.Len(t, result.Skipped(), 2)
}

func TestStream_MatchesExpandRange(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"Normal week", "06/01/2025", "10/01/2025"},
		{"New Year", "30/12/2024", "05/01/2025"},
		{"Easter", "14/04/2025", "27/04/2025"},
		{"Start after end", "10/01/2025", "06/01/2025"},
		{"Year", "01/01/2025", "31/12/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t, victoria2025())

			batch, err := r.ExpandRange(ctx, tt.start, tt.end, operatorFormat)
			require.NoError(t, err)

			seq, err := r.Stream(ctx, tt.start, tt.end, operatorFormat)
			require.NoError(t, err)

			var streamed []dateutil.Date
			for d, err := range seq {
				require.NoError(t, err)
				streamed = append(streamed, d)
			}

			assert.Equal(t, batch.Workdays(), streamed)
		})
	}
}

func TestStream_SuspendsUntilConsumerFinishes(t *testing.T) {
	rec := &recorder{}
	r := newTestResolver(t, victoria2025(), WithObserver(rec))

	seq, err := r.Stream(context.Background(), "31/12/2024", "06/01/2025", operatorFormat)
	require.NoError(t, err)

	for d, err := range seq {
		require.NoError(t, err)
		rec.events = append(rec.events, "work "+d.String())
	}

	assert.Equal(t, []string{
		"start 2024-12-31..2025-01-06 (7)",
		"begin 1 2024-12-31",
		"work 2024-12-31",
		"end 1 2024-12-31",
		"skip 2025-01-01 Holiday(New Year's Day)",
		"begin 2 2025-01-02",
		"work 2025-01-02",
		"end 2 2025-01-02",
		"begin 3 2025-01-03",
		"work 2025-01-03",
		"end 3 2025-01-03",
		"skip 2025-01-04 Weekend",
		"skip 2025-01-05 Weekend",
		"begin 4 2025-01-06",
		"work 2025-01-06",
		"end 4 2025-01-06",
		"done 4/3",
	}, rec.events)
}

func TestStream_NotRestartable(t *testing.T) {
	r := newTestResolver(t, victoria2025())

	seq, err := r.Stream(context.Background(), "06/01/2025", "10/01/2025", operatorFormat)
	require.NoError(t, err)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}

	assert.Equal(t, 5, first)
	assert.Zero(t, second)
}

func TestStream_EarlyBreak(t *testing.T) {
	rec := &recorder{}
	r := newTestResolver(t, victoria2025(), WithObserver(rec))

	seq, err := r.Stream(context.Background(), "06/01/2025", "10/01/2025", operatorFormat)
	require.NoError(t, err)

	for d := range seq {
		if d == dateutil.NewDate(2025, 1, 7) {
			break
		}
	}

	assert.Equal(t, []string{
		"start 2025-01-06..2025-01-10 (5)",
		"begin 1 2025-01-06",
		"end 1 2025-01-06",
		"begin 2 2025-01-07",
	}, rec.events)
}

func TestStream_HolidayLookupFails(t *testing.T) {
	lookupErr := errors.New("holiday API down")
	r := newTestResolver(t, &fakeHolidays{err: lookupErr})

	seq, err := r.Stream(context.Background(), "06/01/2025", "10/01/2025", operatorFormat)
	require.NoError(t, err)

	var errs []error
	for d, err := range seq {
		assert.True(t, d.IsZero())
		errs = append(errs, err)
	}

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], lookupErr)
}

func TestStream_StartAfterEnd(t *testing.T) {
	rec := &recorder{}
	r := newTestResolver(t, victoria2025(), WithObserver(rec))

	seq, err := r.Stream(context.Background(), "10/01/2025", "06/01/2025", operatorFormat)
	require.NoError(t, err)

	for range seq {
		t.Fatal("expected no workdays")
	}

	assert.Equal(t, []string{
		"start 2025-01-10..2025-01-06 (0)",
		"done 0/0",
	}, rec.events)
}
