package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/username/timesheet-bot/pkg/dateutil"
	"go.uber.org/zap"
)

// ErrHolidayLookup is returned when a holiday source cannot produce a year table
var ErrHolidayLookup = errors.New("holiday lookup failed")

// HolidayTable maps a date to its holiday display name for one (country, region, year)
type HolidayTable map[dateutil.Date]string

// HolidaySource provides public holidays for a region.
// Results must be deterministic for a given (country, region, year) within a run.
type HolidaySource interface {
	LookupHolidays(ctx context.Context, country, region string, year int) (HolidayTable, error)
}

// HolidayCalendar answers holiday questions for one country/region.
// Year tables are fetched once and kept for the lifetime of the calendar.
// A HolidayCalendar is not safe for concurrent use.
type HolidayCalendar struct {
	source  HolidaySource
	country string
	region  string
	years   map[int]HolidayTable
	logger  *zap.Logger
}

// NewHolidayCalendar creates a calendar backed by source
func NewHolidayCalendar(source HolidaySource, country, region string, logger *zap.Logger) *HolidayCalendar {
	return &HolidayCalendar{
		source:  source,
		country: country,
		region:  region,
		years:   make(map[int]HolidayTable),
		logger:  logger,
	}
}

// YearTable returns the holiday table for year, looking it up on first use
func (hc *HolidayCalendar) YearTable(ctx context.Context, year int) (HolidayTable, error) {
	if table, ok := hc.years[year]; ok {
		return table, nil
	}

	table, err := hc.source.LookupHolidays(ctx, hc.country, hc.region, year)
	if err != nil {
		return nil, fmt.Errorf("%w for %s-%s %d: %w", ErrHolidayLookup, hc.country, hc.region, year, err)
	}
	if table == nil {
		table = HolidayTable{}
	}

	hc.years[year] = table

	hc.logger.Info("Holiday table loaded",
		zap.String("country", hc.country),
		zap.String("region", hc.region),
		zap.Int("year", year),
		zap.Int("holidays", len(table)))

	return table, nil
}

// IsHoliday reports whether date is a public holiday
func (hc *HolidayCalendar) IsHoliday(ctx context.Context, date dateutil.Date) (bool, error) {
	table, err := hc.YearTable(ctx, date.Year)
	if err != nil {
		return false, err
	}
	_, ok := table[date]
	return ok, nil
}

// HolidayName returns the holiday name for date, or "" when it is not a holiday
func (hc *HolidayCalendar) HolidayName(ctx context.Context, date dateutil.Date) (string, error) {
	table, err := hc.YearTable(ctx, date.Year)
	if err != nil {
		return "", err
	}
	return table[date], nil
}
