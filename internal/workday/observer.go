package workday

import (
	"github.com/username/timesheet-bot/pkg/dateutil"
	"go.uber.org/zap"
)

// Observer receives progress events from a streamed range
type Observer interface {
	RangeStarted(start, end dateutil.Date, totalDays int)
	DaySkipped(day Day)
	WorkdayStarted(n int, date dateutil.Date)
	// WorkdayFinished fires after the consumer's loop body for date returns
	WorkdayFinished(n int, date dateutil.Date)
	Completed(workdays, skipped int)
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) RangeStarted(dateutil.Date, dateutil.Date, int) {}
func (NopObserver) DaySkipped(Day) {}
func (NopObserver) WorkdayStarted(int, dateutil.Date) {}
func (NopObserver) WorkdayFinished(int, dateutil.Date) {}
func (NopObserver) Completed(int, int) {}

// LogObserver writes progress events to a zap logger
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver creates a new LogObserver
func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) RangeStarted(start, end dateutil.Date, totalDays int) {
	o.logger.Info("Processing date range",
		zap.Stringer("start", start),
		zap.Stringer("end", end),
		zap.Int("days", totalDays))
}

func (o *LogObserver) DaySkipped(day Day) {
	o.logger.Info("Skipping non-workday",
		zap.Stringer("date", day.Date),
		zap.String("reasons", day.ReasonText()))
}

func (o *LogObserver) WorkdayStarted(n int, date dateutil.Date) {
	o.logger.Debug("Workday started", zap.Int("n", n), zap.Stringer("date", date))
}

func (o *LogObserver) WorkdayFinished(n int, date dateutil.Date) {
	o.logger.Debug("Workday finished", zap.Int("n", n), zap.Stringer("date", date))
}

func (o *LogObserver) Completed(workdays, skipped int) {
	o.logger.Info("Date range completed",
		zap.Int("workdays", workdays),
		zap.Int("skipped", skipped))
}

// MultiObserver fans events out to several observers in order
type MultiObserver []Observer

func (m MultiObserver) RangeStarted(start, end dateutil.Date, totalDays int) {
	for _, o := range m {
		o.RangeStarted(start, end, totalDays)
	}
}

func (m MultiObserver) DaySkipped(day Day) {
	for _, o := range m {
		o.DaySkipped(day)
	}
}

func (m MultiObserver) WorkdayStarted(n int, date dateutil.Date) {
	for _, o := range m {
		o.WorkdayStarted(n, date)
	}
}

func (m MultiObserver) WorkdayFinished(n int, date dateutil.Date) {
	for _, o := range m {
		o.WorkdayFinished(n, date)
	}
}

func (m MultiObserver) Completed(workdays, skipped int) {
	for _, o := range m {
		o.Completed(workdays, skipped)
	}
}
