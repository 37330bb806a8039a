package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
harvest:
  account_id: "12345"
  user_agent: "timesheet-bot (ops@example.com)"
holidays:
  source: composite
  country: AU
  region: VIC
  file: ${HOLIDAY_DIR}/holidays.txt
dates:
  input_format: "%d/%m/%Y"
entries:
  - project_id: 101
    task_id: 201
    project_name: Product & Development
    task_name: Team Management & Strategy
    hours: 2
    notes: Team Management & Strategy
  - project_id: 102
    task_id: 202
    project_name: General
    task_name: Internal Meeting
    hours: 1.5
log:
  level: debug
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("HOLIDAY_DIR", "/var/lib/timesheet-bot")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "12345", cfg.Harvest.AccountID)
	assert.Equal(t, HolidaySourceComposite, cfg.Holidays.Source)
	assert.Equal(t, "/var/lib/timesheet-bot/holidays.txt", cfg.Holidays.File)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NoError(t, cfg.ValidateEntries())

	specs := cfg.EntrySpecs()
	require.Len(t, specs, 2)
	assert.Equal(t, int64(101), specs[0].ProjectID)
	assert.Equal(t, "General - Internal Meeting", specs[1].Label())
	assert.Equal(t, 1.5, specs[1].Hours)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "harvest:\n  account_id: \"12345\"\n"))
	require.NoError(t, err)

	assert.Equal(t, HolidaySourceNager, cfg.Holidays.Source)
	assert.Equal(t, "AU", cfg.Holidays.Country)
	assert.Equal(t, "VIC", cfg.Holidays.Region)
	assert.Equal(t, DefaultInputFormat, cfg.Dates.GetInputFormat())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Error(t, cfg.ValidateEntries())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HARVEST_ACCOUNT_ID", "99999")

	cfg, err := Load(writeConfig(t, "harvest:\n  account_id: \"12345\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "99999", cfg.Harvest.AccountID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"Starter config", func(c *Config) {}, false},
		{"Missing account", func(c *Config) { c.Harvest.AccountID = "" }, true},
		{"Missing country", func(c *Config) { c.Holidays.Country = "" }, true},
		{"Unknown source", func(c *Config) { c.Holidays.Source = "isdayoff" }, true},
		{"File source without file", func(c *Config) { c.Holidays.Source = HolidaySourceFile }, true},
		{"File source with file", func(c *Config) {
			c.Holidays.Source = HolidaySourceFile
			c.Holidays.File = "holidays.txt"
		}, false},
		{"Bad input format", func(c *Config) { c.Dates.InputFormat = "%Q" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Starter("12345")
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEntries(t *testing.T) {
	cfg := Starter("12345")

	// Starter entries have no ids yet
	assert.Error(t, cfg.ValidateEntries())

	for i := range cfg.Entries {
		cfg.Entries[i].ProjectID = int64(100 + i)
		cfg.Entries[i].TaskID = int64(200 + i)
	}
	assert.NoError(t, cfg.ValidateEntries())

	cfg.Entries[1].Hours = 0
	assert.ErrorContains(t, cfg.ValidateEntries(), "entries[1]")
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	starter := Starter("12345")
	require.NoError(t, starter.Save(path))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, starter.Harvest.AccountID, cfg.Harvest.AccountID)
	assert.Equal(t, starter.Holidays, cfg.Holidays)
	assert.Equal(t, starter.Entries, cfg.Entries)
}
