package timesheet

import (
	"errors"
	"fmt"

	"github.com/username/timesheet-bot/internal/harvest"
	"github.com/username/timesheet-bot/pkg/dateutil"
)

// EntrySpec describes one recurring daily entry
type EntrySpec struct {
	ProjectID   int64
	TaskID      int64
	ProjectName string
	TaskName    string
	Hours       float64
	Notes       string
}

// Label returns "Project - Task", falling back to ids when names are not configured
func (s EntrySpec) Label() string {
	project := s.ProjectName
	if project == "" {
		project = fmt.Sprintf("project %d", s.ProjectID)
	}
	task := s.TaskName
	if task == "" {
		task = fmt.Sprintf("task %d", s.TaskID)
	}
	return project + " - " + task
}

// Validate checks ids and hours
func (s EntrySpec) Validate() error {
	if s.ProjectID <= 0 {
		return errors.New("project_id is required")
	}
	if s.TaskID <= 0 {
		return errors.New("task_id is required")
	}
	if s.Hours <= 0 {
		return fmt.Errorf("hours must be positive, got %v", s.Hours)
	}
	return nil
}

// Request builds the create request for date
func (s EntrySpec) Request(date dateutil.Date) harvest.CreateTimeEntryRequest {
	return harvest.CreateTimeEntryRequest{
		ProjectID: s.ProjectID,
		TaskID:    s.TaskID,
		SpentDate: date,
		Hours:     s.Hours,
		Notes:     s.Notes,
	}
}

// Status is the result of one remote write
type Status int

const (
	StatusSucceeded Status = iota + 1
	StatusFailed
	StatusPlanned // dry run, nothing written
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusPlanned:
		return "planned"
	default:
		return "unknown"
	}
}

// EntryOutcome is the result of creating one spec on one date
type EntryOutcome struct {
	Date   dateutil.Date
	Spec   EntrySpec
	Status Status
	Record *harvest.TimeEntry // set when Succeeded
	Err    error              // set when Failed
}

// DeleteOutcome is the result of deleting one remote entry
type DeleteOutcome struct {
	Entry  harvest.TimeEntry
	Status Status
	Err    error
}

// DayResult holds the outcomes of one filled workday
type DayResult struct {
	Date     dateutil.Date
	Outcomes []EntryOutcome
}

// Count returns the number of outcomes with status
func (d DayResult) Count(status Status) int {
	n := 0
	for _, o := range d.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Hours sums the hours of succeeded and planned outcomes
func (d DayResult) Hours() float64 {
	total := 0.0
	for _, o := range d.Outcomes {
		if o.Status != StatusFailed {
			total += o.Spec.Hours
		}
	}
	return total
}

// Summary aggregates a fill run
type Summary struct {
	Days       int
	Created    int
	Failed     int
	Planned    int
	Hours      float64
	DayResults []DayResult
}

func (s *Summary) add(day DayResult) {
	s.Days++
	s.Created += day.Count(StatusSucceeded)
	s.Failed += day.Count(StatusFailed)
	s.Planned += day.Count(StatusPlanned)
	s.Hours += day.Hours()
	s.DayResults = append(s.DayResults, day)
}

// Failures returns every failed outcome across the run
func (s *Summary) Failures() []EntryOutcome {
	var out []EntryOutcome
	for _, day := range s.DayResults {
		for _, o := range day.Outcomes {
			if o.Status == StatusFailed {
				out = append(out, o)
			}
		}
	}
	return out
}

// CountDeletes returns the number of delete outcomes with status
func CountDeletes(outcomes []DeleteOutcome, status Status) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
