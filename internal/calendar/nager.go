package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/username/timesheet-bot/pkg/dateutil"
	"go.uber.org/zap"
)

const (
	defaultNagerURL    = "https://date.nager.at/api/v3"
	defaultHTTPTimeout = 10 * time.Second
)

// NagerSource implements HolidaySource using the Nager.Date public holiday API
type NagerSource struct {
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

// nagerHoliday represents one item of /PublicHolidays/{year}/{country}
type nagerHoliday struct {
	Date        string   `json:"date"` // YYYY-MM-DD
	LocalName   string   `json:"localName"`
	Name        string   `json:"name"`
	CountryCode string   `json:"countryCode"`
	Global      bool     `json:"global"`
	Counties    []string `json:"counties"` // e.g. ["AU-VIC"], null when global
	Types       []string `json:"types"`
}

// NewNagerSource creates a new NagerSource instance
func NewNagerSource(apiURL string, logger *zap.Logger) *NagerSource {
	if apiURL == "" {
		apiURL = defaultNagerURL
	}

	return &NagerSource{
		apiURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		logger: logger,
	}
}

// LookupHolidays fetches the holidays of one year and keeps those that apply to region
func (ns *NagerSource) LookupHolidays(ctx context.Context, country, region string, year int) (HolidayTable, error) {
	url := fmt.Sprintf("%s/PublicHolidays/%d/%s", ns.apiURL, year, strings.ToUpper(country))

	ns.logger.Debug("Fetching public holidays",
		zap.String("url", url),
		zap.Int("year", year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ns.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday API returned status %d", resp.StatusCode)
	}

	var items []nagerHoliday
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse holiday response: %w", err)
	}

	return ns.buildTable(country, region, items), nil
}

// buildTable filters national and regional holidays for COUNTRY-REGION.
// Several holidays on one date are joined with "; ".
func (ns *NagerSource) buildTable(country, region string, items []nagerHoliday) HolidayTable {
	county := ""
	if region != "" {
		county = strings.ToUpper(country) + "-" + strings.ToUpper(region)
	}

	table := make(HolidayTable)
	for _, item := range items {
		if !isPublic(item) || !appliesTo(item, county) {
			continue
		}

		date, err := dateutil.ParseISO(item.Date)
		if err != nil {
			ns.logger.Warn("Failed to parse holiday date",
				zap.String("date", item.Date),
				zap.Error(err))
			continue
		}

		name := item.Name
		if name == "" {
			name = item.LocalName
		}

		if existing, ok := table[date]; ok && existing != name {
			table[date] = existing + "; " + name
		} else {
			table[date] = name
		}
	}

	return table
}

// isPublic drops bank, school and observance-only days
func isPublic(item nagerHoliday) bool {
	if len(item.Types) == 0 {
		return true
	}
	for _, t := range item.Types {
		if t == "Public" {
			return true
		}
	}
	return false
}

func appliesTo(item nagerHoliday, county string) bool {
	if item.Global || len(item.Counties) == 0 {
		return true
	}
	if county == "" {
		return false
	}
	for _, c := range item.Counties {
		if strings.EqualFold(c, county) {
			return true
		}
	}
	return false
}
