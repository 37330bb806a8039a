package calendar

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CompositeSource implements HolidaySource with fallback strategy
// Primary: NagerSource (API)
// Fallback: FileSource (local file)
type CompositeSource struct {
	primary  HolidaySource
	fallback HolidaySource
	logger   *zap.Logger
}

// NewCompositeSource creates a new CompositeSource
func NewCompositeSource(primary, fallback HolidaySource, logger *zap.Logger) *CompositeSource {
	return &CompositeSource{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// LookupHolidays tries the primary source first and falls back on error
func (cs *CompositeSource) LookupHolidays(ctx context.Context, country, region string, year int) (HolidayTable, error) {
	table, err := cs.primary.LookupHolidays(ctx, country, region, year)
	if err == nil {
		return table, nil
	}

	cs.logger.Warn("Primary holiday source failed, falling back",
		zap.Int("year", year),
		zap.Error(err))

	table, fallbackErr := cs.fallback.LookupHolidays(ctx, country, region, year)
	if fallbackErr != nil {
		return nil, fmt.Errorf("primary and fallback both failed: primary=%w, fallback=%v", err, fallbackErr)
	}

	return table, nil
}

// LoadFallback loads the fallback source eagerly (if FileSource)
func (cs *CompositeSource) LoadFallback() error {
	if fs, ok := cs.fallback.(*FileSource); ok {
		if err := fs.Load(); err != nil {
			return fmt.Errorf("failed to load fallback holidays: %w", err)
		}
		cs.logger.Info("Fallback holidays loaded successfully")
	}
	return nil
}
