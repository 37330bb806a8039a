package harvest

import (
	"fmt"

	"github.com/username/timesheet-bot/pkg/dateutil"
)

// User represents the authenticated Harvest user
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Display returns "First Last"
func (u User) Display() string {
	return u.FirstName + " " + u.LastName
}

// Ref is the {id, name} pair Harvest embeds for projects, tasks and clients
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TimeEntry represents a Harvest time entry
type TimeEntry struct {
	ID        int64         `json:"id"`
	SpentDate dateutil.Date `json:"spent_date"`
	User      Ref           `json:"user"`
	Client    Ref           `json:"client"`
	Project   Ref           `json:"project"`
	Task      Ref           `json:"task"`
	Hours     float64       `json:"hours"`
	Notes     string        `json:"notes"`
}

// Label returns "Project - Task" for progress output
func (e TimeEntry) Label() string {
	return fmt.Sprintf("%s - %s", e.Project.Name, e.Task.Name)
}

// CreateTimeEntryRequest represents request body for POST /time_entries
type CreateTimeEntryRequest struct {
	ProjectID int64         `json:"project_id"`
	TaskID    int64         `json:"task_id"`
	SpentDate dateutil.Date `json:"spent_date"`
	Hours     float64       `json:"hours"`
	Notes     string        `json:"notes,omitempty"`
}

// timeEntriesPage is one page of GET /time_entries
type timeEntriesPage struct {
	TimeEntries  []TimeEntry `json:"time_entries"`
	PerPage      int         `json:"per_page"`
	TotalPages   int         `json:"total_pages"`
	TotalEntries int         `json:"total_entries"`
	Page         int         `json:"page"`
	NextPage     *int        `json:"next_page"`
}

// ProjectTask is a project/task pair seen in the user's time entries
type ProjectTask struct {
	Client  Ref
	Project Ref
	Task    Ref
}

// APIError is a non-2xx response from Harvest
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: API request failed with status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}
