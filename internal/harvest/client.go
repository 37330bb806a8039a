package harvest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/username/timesheet-bot/pkg/dateutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL   = "https://api.harvestapp.com/v2"
	DefaultUserAgent = "timesheet-bot"

	defaultTimeout = 30 * time.Second
	pageSize       = 100
)

// Config holds the connection settings for a Harvest account
type Config struct {
	BaseURL     string
	AccountID   string
	AccessToken string
	UserAgent   string
}

// Client represents Harvest API v2 client
type Client struct {
	baseURL     string
	accountID   string
	userAgent   string
	httpClient  *http.Client
	logger      *zap.Logger
	currentUser *User // Cached current user info
}

// NewClient creates a new Harvest API client.
// The access token is sent as a Bearer token by an oauth2 transport.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = defaultTimeout

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountID:  cfg.AccountID,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     logger,
	}
}

// GetCurrentUser returns current authenticated user info (cached)
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	if c.currentUser != nil {
		return c.currentUser, nil
	}

	var user User
	if err := c.doRequest(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	c.currentUser = &user

	c.logger.Info("Current user identified",
		zap.Int64("id", user.ID),
		zap.String("display", user.Display()))

	return &user, nil
}

// ListTimeEntries returns the current user's entries with spent_date in [from, to],
// following pagination until the last page.
func (c *Client) ListTimeEntries(ctx context.Context, from, to dateutil.Date) ([]TimeEntry, error) {
	user, err := c.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var entries []TimeEntry
	page := 1
	for {
		q := url.Values{}
		q.Set("user_id", strconv.FormatInt(user.ID, 10))
		q.Set("from", from.String())
		q.Set("to", to.String())
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(pageSize))

		var resp timeEntriesPage
		if err := c.doRequest(ctx, http.MethodGet, "/time_entries?"+q.Encode(), nil, &resp); err != nil {
			return nil, fmt.Errorf("failed to list time entries: %w", err)
		}

		entries = append(entries, resp.TimeEntries...)

		if resp.NextPage == nil || *resp.NextPage <= page {
			break
		}
		page = *resp.NextPage
	}

	c.logger.Info("Time entries retrieved",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("count", len(entries)),
		zap.Int("pages", page))

	return entries, nil
}

// CreateTimeEntry creates a new time entry
func (c *Client) CreateTimeEntry(ctx context.Context, req CreateTimeEntryRequest) (*TimeEntry, error) {
	var entry TimeEntry
	if err := c.doRequest(ctx, http.MethodPost, "/time_entries", req, &entry); err != nil {
		return nil, fmt.Errorf("failed to create time entry for project %d task %d: %w", req.ProjectID, req.TaskID, err)
	}

	c.logger.Info("Time entry created",
		zap.Int64("id", entry.ID),
		zap.Int64("project_id", req.ProjectID),
		zap.Int64("task_id", req.TaskID),
		zap.Stringer("spent_date", req.SpentDate),
		zap.Float64("hours", req.Hours))

	return &entry, nil
}

// DeleteTimeEntry deletes a time entry
func (c *Client) DeleteTimeEntry(ctx context.Context, id int64) error {
	if err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/time_entries/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete time entry %d: %w", id, err)
	}

	c.logger.Info("Time entry deleted", zap.Int64("id", id))

	return nil
}

// RecentProjectTasks lists the distinct project/task pairs used in [from, to],
// sorted by project then task name.
func (c *Client) RecentProjectTasks(ctx context.Context, from, to dateutil.Date) ([]ProjectTask, error) {
	entries, err := c.ListTimeEntries(ctx, from, to)
	if err != nil {
		return nil, err
	}

	type key struct{ project, task int64 }
	seen := make(map[key]bool)
	var pairs []ProjectTask
	for _, e := range entries {
		k := key{e.Project.ID, e.Task.ID}
		if seen[k] {
			continue
		}
		seen[k] = true
		pairs = append(pairs, ProjectTask{Client: e.Client, Project: e.Project, Task: e.Task})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Project.Name != pairs[j].Project.Name {
			return pairs[i].Project.Name < pairs[j].Project.Name
		}
		return pairs[i].Task.Name < pairs[j].Task.Name
	})

	return pairs, nil
}

// doRequest performs a single HTTP request. There are no retries.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Harvest-Account-ID", c.accountID)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Harvest request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
