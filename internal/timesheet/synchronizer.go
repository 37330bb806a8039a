package timesheet

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/username/timesheet-bot/internal/harvest"
	"github.com/username/timesheet-bot/pkg/dateutil"
	"go.uber.org/zap"
)

var (
	// ErrRemoteFetch means the working set could not be listed; the operation is aborted
	ErrRemoteFetch = errors.New("failed to fetch time entries")
	// ErrRemoteWrite means a single create or delete failed; it is recorded per entry
	ErrRemoteWrite = errors.New("failed to write time entry")
)

// Remote is the time-tracking service. *harvest.Client satisfies it.
type Remote interface {
	CreateTimeEntry(ctx context.Context, req harvest.CreateTimeEntryRequest) (*harvest.TimeEntry, error)
	ListTimeEntries(ctx context.Context, from, to dateutil.Date) ([]harvest.TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, id int64) error
}

// Synchronizer applies entry specs to workdays and manages existing entries
type Synchronizer struct {
	remote Remote
	dryRun bool
	logger *zap.Logger
}

// NewSynchronizer creates a new Synchronizer. In dry-run mode nothing is written.
func NewSynchronizer(remote Remote, dryRun bool, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		remote: remote,
		dryRun: dryRun,
		logger: logger,
	}
}

// DryRun reports whether writes are suppressed
func (s *Synchronizer) DryRun() bool {
	return s.dryRun
}

// FillDay creates one entry per spec for date, in order.
// A failed create is recorded in its outcome and the remaining specs still run.
func (s *Synchronizer) FillDay(ctx context.Context, date dateutil.Date, specs []EntrySpec) []EntryOutcome {
	s.logger.Info("Filling day",
		zap.Stringer("date", date),
		zap.Int("entries", len(specs)),
		zap.Bool("dry_run", s.dryRun))

	outcomes := make([]EntryOutcome, 0, len(specs))
	for _, spec := range specs {
		outcomes = append(outcomes, s.createEntry(ctx, date, spec))
	}

	return outcomes
}

func (s *Synchronizer) createEntry(ctx context.Context, date dateutil.Date, spec EntrySpec) EntryOutcome {
	outcome := EntryOutcome{Date: date, Spec: spec}

	if s.dryRun {
		outcome.Status = StatusPlanned
		return outcome
	}

	record, err := s.remote.CreateTimeEntry(ctx, spec.Request(date))
	if err != nil {
		s.logger.Error("Failed to create time entry",
			zap.Stringer("date", date),
			zap.String("entry", spec.Label()),
			zap.Error(err))
		outcome.Status = StatusFailed
		outcome.Err = fmt.Errorf("%w: %s %s: %w", ErrRemoteWrite, date, spec.Label(), err)
		return outcome
	}

	outcome.Status = StatusSucceeded
	outcome.Record = record
	return outcome
}

// FillWorkdays fills every workday yielded by days and reports each day to onDay.
// An error yielded by days aborts the run and is returned with the partial summary.
func (s *Synchronizer) FillWorkdays(ctx context.Context, days iter.Seq2[dateutil.Date, error], specs []EntrySpec, onDay func(DayResult)) (*Summary, error) {
	summary := &Summary{}

	for date, err := range days {
		if err != nil {
			return summary, err
		}

		result := DayResult{Date: date, Outcomes: s.FillDay(ctx, date, specs)}
		summary.add(result)

		if onDay != nil {
			onDay(result)
		}
	}

	s.logger.Info("Timesheet fill completed",
		zap.Int("days", summary.Days),
		zap.Int("created", summary.Created),
		zap.Int("failed", summary.Failed),
		zap.Int("planned", summary.Planned),
		zap.Float64("hours", summary.Hours))

	return summary, nil
}

// ListRange returns the remote entries with spent_date in [from, to], as returned
func (s *Synchronizer) ListRange(ctx context.Context, from, to dateutil.Date) ([]harvest.TimeEntry, error) {
	entries, err := s.remote.ListTimeEntries(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w for %s..%s: %w", ErrRemoteFetch, from, to, err)
	}
	return entries, nil
}

// DeleteRange deletes every remote entry with spent_date in [from, to].
// Only a failure to list the entries is returned as an error.
func (s *Synchronizer) DeleteRange(ctx context.Context, from, to dateutil.Date) ([]DeleteOutcome, error) {
	entries, err := s.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deleting time entries",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("count", len(entries)),
		zap.Bool("dry_run", s.dryRun))

	outcomes := make([]DeleteOutcome, 0, len(entries))
	for _, entry := range entries {
		outcomes = append(outcomes, s.deleteEntry(ctx, entry))
	}

	return outcomes, nil
}

func (s *Synchronizer) deleteEntry(ctx context.Context, entry harvest.TimeEntry) DeleteOutcome {
	outcome := DeleteOutcome{Entry: entry}

	if s.dryRun {
		outcome.Status = StatusPlanned
		return outcome
	}

	if err := s.remote.DeleteTimeEntry(ctx, entry.ID); err != nil {
		s.logger.Error("Failed to delete time entry",
			zap.Int64("id", entry.ID),
			zap.Stringer("date", entry.SpentDate),
			zap.Error(err))
		outcome.Status = StatusFailed
		outcome.Err = fmt.Errorf("%w: entry %d on %s: %w", ErrRemoteWrite, entry.ID, entry.SpentDate, err)
		return outcome
	}

	outcome.Status = StatusSucceeded
	return outcome
}
