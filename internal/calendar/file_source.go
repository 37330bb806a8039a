package calendar

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/username/timesheet-bot/pkg/dateutil"
	"go.uber.org/zap"
)

// FileSource implements HolidaySource using a local text file.
// The file is assumed to already be scoped to the configured country/region.
type FileSource struct {
	filePath string
	logger   *zap.Logger
	data     map[int]HolidayTable // year → holidays
	loaded   bool
}

// NewFileSource creates a new FileSource instance
func NewFileSource(filePath string, logger *zap.Logger) *FileSource {
	return &FileSource{
		filePath: filePath,
		logger:   logger,
		data:     make(map[int]HolidayTable),
	}
}

// Load loads holiday data from file
func (fs *FileSource) Load() error {
	file, err := os.Open(fs.filePath)
	if err != nil {
		return fmt.Errorf("failed to open holiday file: %w", err)
	}
	defer file.Close()

	data := make(map[int]HolidayTable)
	scanner := bufio.NewScanner(file)
	count := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Format: YYYY-MM-DD name
		// Example: 2025-01-27 Australia Day
		parts := strings.SplitN(line, " ", 2)
		if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
			fs.logger.Warn("Invalid line format", zap.String("line", line))
			continue
		}

		date, err := dateutil.ParseISO(parts[0])
		if err != nil {
			fs.logger.Warn("Failed to parse date", zap.String("date", parts[0]), zap.Error(err))
			continue
		}

		table, ok := data[date.Year]
		if !ok {
			table = make(HolidayTable)
			data[date.Year] = table
		}

		name := strings.TrimSpace(parts[1])
		if existing, ok := table[date]; ok {
			name = existing + "; " + name
		}
		table[date] = name
		count++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading holiday file: %w", err)
	}

	fs.data = data
	fs.loaded = true

	fs.logger.Info("Holiday file loaded",
		zap.String("file", fs.filePath),
		zap.Int("years", len(data)),
		zap.Int("holidays", count))

	return nil
}

// LookupHolidays returns the holidays listed for year.
// A year missing from the file is an error rather than an empty table.
func (fs *FileSource) LookupHolidays(_ context.Context, _, _ string, year int) (HolidayTable, error) {
	if !fs.loaded {
		if err := fs.Load(); err != nil {
			return nil, err
		}
	}

	table, ok := fs.data[year]
	if !ok {
		return nil, fmt.Errorf("year %d not found in holiday file %s", year, fs.filePath)
	}

	out := make(HolidayTable, len(table))
	for d, name := range table {
		out[d] = name
	}
	return out, nil
}
