package main

import (
	"context"
	"fmt"

	"github.com/username/timesheet-bot/internal/calendar"
	"github.com/username/timesheet-bot/internal/config"
	"github.com/username/timesheet-bot/internal/harvest"
	"github.com/username/timesheet-bot/internal/timesheet"
	"github.com/username/timesheet-bot/internal/workday"
	"go.uber.org/zap"
)

// app wires the components of one run
type app struct {
	cfg      *config.Config
	resolver *workday.Resolver
	sync     *timesheet.Synchronizer
	printer  *progressPrinter
}

func newApp(ctx context.Context, cfg *config.Config, dryRun bool) (*app, error) {
	source, err := newHolidaySource(cfg)
	if err != nil {
		return nil, err
	}

	client, err := newHarvestClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	printer := &progressPrinter{format: cfg.Dates.GetInputFormat()}
	cal := calendar.NewHolidayCalendar(source, cfg.Holidays.Country, cfg.Holidays.Region, logger)
	resolver := workday.NewResolver(cal, logger,
		workday.WithObserver(workday.MultiObserver{printer, workday.NewLogObserver(logger)}))

	return &app{
		cfg:      cfg,
		resolver: resolver,
		sync:     timesheet.NewSynchronizer(client, dryRun, logger),
		printer:  printer,
	}, nil
}

func newHolidaySource(cfg *config.Config) (calendar.HolidaySource, error) {
	switch cfg.Holidays.Source {
	case config.HolidaySourceNager:
		logger.Info("Using Nager.Date holiday API",
			zap.String("country", cfg.Holidays.Country),
			zap.String("region", cfg.Holidays.Region))
		return calendar.NewNagerSource(cfg.Holidays.APIURL, logger), nil

	case config.HolidaySourceFile:
		logger.Info("Using holiday file", zap.String("file", cfg.Holidays.File))
		return calendar.NewFileSource(cfg.Holidays.File, logger), nil

	case config.HolidaySourceComposite:
		logger.Info("Using Nager.Date holiday API with file fallback",
			zap.String("file", cfg.Holidays.File))
		composite := calendar.NewCompositeSource(
			calendar.NewNagerSource(cfg.Holidays.APIURL, logger),
			calendar.NewFileSource(cfg.Holidays.File, logger),
			logger,
		)

		// Load fallback holidays
		if err := composite.LoadFallback(); err != nil {
			logger.Warn("Failed to load fallback holidays, continuing with API only",
				zap.Error(err))
		}
		return composite, nil

	default:
		return nil, fmt.Errorf("unknown holiday source: %s", cfg.Holidays.Source)
	}
}

func newHarvestClient(ctx context.Context, cfg *config.Config) (*harvest.Client, error) {
	token, err := harvest.ResolveToken(cfg.Harvest.AccessToken, cfg.Harvest.AccountID, logger)
	if err != nil {
		return nil, err
	}

	return harvest.NewClient(ctx, harvest.Config{
		BaseURL:     cfg.Harvest.BaseURL,
		AccountID:   cfg.Harvest.AccountID,
		AccessToken: token,
		UserAgent:   cfg.Harvest.UserAgent,
	}, logger), nil
}
