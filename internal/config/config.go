package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ncruces/go-strftime"
	"github.com/spf13/viper"
	"github.com/username/timesheet-bot/internal/timesheet"
	"gopkg.in/yaml.v3"
)

const (
	HolidaySourceNager     = "nager"
	HolidaySourceFile      = "file"
	HolidaySourceComposite = "composite"

	DefaultInputFormat = "%d/%m/%Y"
)

// Config represents application configuration
type Config struct {
	Harvest  HarvestConfig  `mapstructure:"harvest" yaml:"harvest"`
	Holidays HolidaysConfig `mapstructure:"holidays" yaml:"holidays"`
	Dates    DatesConfig    `mapstructure:"dates" yaml:"dates"`
	Entries  []EntryConfig  `mapstructure:"entries" yaml:"entries"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// HarvestConfig represents Harvest account configuration
type HarvestConfig struct {
	AccountID   string `mapstructure:"account_id" yaml:"account_id"`
	AccessToken string `mapstructure:"access_token" yaml:"access_token,omitempty"` // Prefer keyring or $HARVEST_ACCESS_TOKEN
	BaseURL     string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	UserAgent   string `mapstructure:"user_agent" yaml:"user_agent,omitempty"`
}

// HolidaysConfig represents public holiday configuration
type HolidaysConfig struct {
	Source  string `mapstructure:"source" yaml:"source"` // "nager", "file" or "composite"
	Country string `mapstructure:"country" yaml:"country"`
	Region  string `mapstructure:"region" yaml:"region"`
	APIURL  string `mapstructure:"api_url" yaml:"api_url,omitempty"`
	File    string `mapstructure:"file" yaml:"file,omitempty"` // For file and composite sources
}

// DatesConfig represents operator date input configuration
type DatesConfig struct {
	InputFormat string `mapstructure:"input_format" yaml:"input_format"` // strftime style
}

// EntryConfig represents one time entry created on every workday
type EntryConfig struct {
	ProjectID   int64   `mapstructure:"project_id" yaml:"project_id"`
	TaskID      int64   `mapstructure:"task_id" yaml:"task_id"`
	ProjectName string  `mapstructure:"project_name" yaml:"project_name"`
	TaskName    string  `mapstructure:"task_name" yaml:"task_name"`
	Hours       float64 `mapstructure:"hours" yaml:"hours"`
	Notes       string  `mapstructure:"notes" yaml:"notes"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file,omitempty"`
	Level string `mapstructure:"level" yaml:"level"`
}

// Load loads configuration from file.
// A .env file in the working directory is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.timesheet-bot")
	}

	// Read environment variables, e.g. HARVEST_ACCOUNT_ID overrides harvest.account_id
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("harvest.account_id", "")
	v.SetDefault("harvest.access_token", "")
	v.SetDefault("harvest.base_url", "")
	v.SetDefault("harvest.user_agent", "")
	v.SetDefault("holidays.source", HolidaySourceNager)
	v.SetDefault("holidays.country", "AU")
	v.SetDefault("holidays.region", "VIC")
	v.SetDefault("holidays.api_url", "")
	v.SetDefault("holidays.file", "")
	v.SetDefault("dates.input_format", DefaultInputFormat)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate Harvest config
	if c.Harvest.AccountID == "" {
		return fmt.Errorf("harvest.account_id is required")
	}

	// Validate Holidays config
	if c.Holidays.Country == "" {
		return fmt.Errorf("holidays.country is required")
	}

	switch c.Holidays.Source {
	case HolidaySourceNager:
	case HolidaySourceFile, HolidaySourceComposite:
		if c.Holidays.File == "" {
			return fmt.Errorf("holidays.file is required for %s source", c.Holidays.Source)
		}
	default:
		return fmt.Errorf("holidays.source must be 'nager', 'file' or 'composite', got '%s'", c.Holidays.Source)
	}

	// Validate Dates config
	if _, err := strftime.Layout(c.Dates.InputFormat); err != nil {
		return fmt.Errorf("dates.input_format %q is invalid: %w", c.Dates.InputFormat, err)
	}

	return nil
}

// ValidateEntries checks the entries used to fill workdays.
func (c *Config) ValidateEntries() error {
	if len(c.Entries) == 0 {
		return fmt.Errorf("no entries configured")
	}
	for i, e := range c.Entries {
		if err := e.Spec().Validate(); err != nil {
			return fmt.Errorf("entries[%d]: %w", i, err)
		}
	}
	return nil
}

// Spec converts the entry to a timesheet.EntrySpec
func (e EntryConfig) Spec() timesheet.EntrySpec {
	return timesheet.EntrySpec{
		ProjectID:   e.ProjectID,
		TaskID:      e.TaskID,
		ProjectName: e.ProjectName,
		TaskName:    e.TaskName,
		Hours:       e.Hours,
		Notes:       e.Notes,
	}
}

// EntrySpecs returns the configured entries in order
func (c *Config) EntrySpecs() []timesheet.EntrySpec {
	specs := make([]timesheet.EntrySpec, 0, len(c.Entries))
	for _, e := range c.Entries {
		specs = append(specs, e.Spec())
	}
	return specs
}

// GetInputFormat returns the operator date format
func (c *DatesConfig) GetInputFormat() string {
	if c.InputFormat == "" {
		return DefaultInputFormat
	}
	return c.InputFormat
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Harvest.AccountID = os.ExpandEnv(c.Harvest.AccountID)
	c.Harvest.AccessToken = os.ExpandEnv(c.Harvest.AccessToken)
	c.Holidays.File = os.ExpandEnv(c.Holidays.File)
	c.Log.File = os.ExpandEnv(c.Log.File)
}

// Starter returns a config with example entries for the init command
func Starter(accountID string) *Config {
	return &Config{
		Harvest: HarvestConfig{
			AccountID: accountID,
		},
		Holidays: HolidaysConfig{
			Source:  HolidaySourceNager,
			Country: "AU",
			Region:  "VIC",
		},
		Dates: DatesConfig{
			InputFormat: DefaultInputFormat,
		},
		Entries: []EntryConfig{
			{ProjectName: "Product & Development", TaskName: "Team Management & Strategy", Hours: 2, Notes: "Team Management & Strategy"},
			{ProjectName: "General", TaskName: "Internal Meeting", Hours: 2, Notes: "Internal Meeting"},
			{ProjectName: "Product & Development", TaskName: "Development & Technical Work", Hours: 4, Notes: "Development & Technical Work"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Save writes the config to the given path as YAML
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
