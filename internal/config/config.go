// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/iwvelando/unsub-forecast/internal/settings"
	"github.com/iwvelando/unsub-forecast/pkg/constants"
	"github.com/iwvelando/unsub-forecast/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for unsub-forecast.
type Configuration struct {
	Scenario Scenario       `yaml:"scenario"`
	Settings map[string]any `yaml:"settings,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format   string `yaml:"format,omitempty"` // pretty, csv, json
	View     string `yaml:"view,omitempty"`   // table, cost, fulfillment, oa, impact, timeline, export, report, slider, details
	PageSize int    `yaml:"pageSize,omitempty"`
}

// Scenario names the journals to project and the spend cap to select under.
type Scenario struct {
	Name            string   `yaml:"name,omitempty"`
	DataFile        string   `yaml:"dataFile"` // relative to the config file
	Journals        []string `yaml:"journals,omitempty"` // empty means every journal in DataFile
	SpendCapPercent float64  `yaml:"spendCapPercent"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")
	v.SetDefault("output.pageSize", constants.DefaultPageSize)
	v.SetDefault("output.view", constants.DefaultView)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if configuration.Scenario.DataFile == "" {
		return nil, fmt.Errorf("scenario.dataFile is required")
	}
	// Relative data files are resolved against the config file's directory.
	if !filepath.IsAbs(configuration.Scenario.DataFile) {
		configuration.Scenario.DataFile = filepath.Join(filepath.Dir(configPath), configuration.Scenario.DataFile)
	}
	if err := validation.ValidateSpendCap(configuration.Scenario.SpendCapPercent); err != nil {
		return nil, err
	}
	if err := validation.ValidatePageSize(configuration.Output.PageSize); err != nil {
		return nil, err
	}

	return &configuration, nil
}

// ResolveSettings builds the projection assumptions from the settings
// section, falling back to defaults for anything left out.
func (c *Configuration) ResolveSettings() (*settings.Settings, error) {
	s, err := settings.New(c.Settings)
	if err != nil {
		return nil, fmt.Errorf("invalid settings section: %w", err)
	}
	return s, nil
}

// JournalIDs returns the configured journals, or known when none are listed.
func (c *Configuration) JournalIDs(known []string) []string {
	if len(c.Scenario.Journals) == 0 {
		return known
	}
	return c.Scenario.Journals
}

// ValidateConfiguration performs general validation of the configuration
// against the journals present in the data file and returns warnings.
func (c *Configuration) ValidateConfiguration(known []string) []string {
	validator := validation.ScenarioValidator{
		SpendCapPercent: c.Scenario.SpendCapPercent,
		PageSize:        c.Output.PageSize,
		JournalIDs:      c.Scenario.Journals,
		KnownIDs:        known,
	}
	return validator.ValidateAll()
}
