// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"

	"github.com/nmendoza-ar/credit-simulator/internal/simulation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for credit-simulator.
type Configuration struct {
	Catalog   []simulation.CatalogEntry
	Scenarios []Scenario
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Scenario is a named simulation run bound to a roster counterpart by tax id.
type Scenario struct {
	Name               string
	TaxID              string
	Items              []simulation.CartItem
	DownPaymentPercent float64
	InterestRate       float64
	AnnualPayment      bool // single bullet repayment instead of monthly installments
	Months             int
}

// PlanParameters converts the scenario into the engine's immutable parameter
// value, mapping the annual-payment flag onto the tagged plan variant.
func (s Scenario) PlanParameters() simulation.PlanParameters {
	params := simulation.PlanParameters{
		Items:              s.Items,
		DownPaymentPercent: s.DownPaymentPercent,
		InterestRate:       s.InterestRate,
	}
	if s.AnnualPayment {
		params.Plan = simulation.BulletPlan{}
	} else {
		params.Plan = simulation.AmortizingPlan{Months: s.Months}
	}
	return params
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// DefaultCatalog returns the built-in tire price catalog used when the config
// supplies none.
func DefaultCatalog() []simulation.CatalogEntry {
	return []simulation.CatalogEntry{
		{ID: "t1", Name: "315/80 R22.5", Price: 300000},
		{ID: "t2", Name: "295/80 R22.5", Price: 350000},
		{ID: "t3", Name: "385/65 R22.5", Price: 400000},
	}
}

// CatalogOrDefault returns the configured catalog, falling back to the
// built-in one when the config carries no entries.
func (conf *Configuration) CatalogOrDefault() []simulation.CatalogEntry {
	if len(conf.Catalog) == 0 {
		return DefaultCatalog()
	}
	return conf.Catalog
}

// ValidateConfiguration checks the configuration for consistency issues and
// returns human-readable warnings. Warnings never block a run.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	catalog := conf.CatalogOrDefault()
	seen := make(map[string]bool)
	for _, entry := range catalog {
		if seen[entry.ID] {
			warnings = append(warnings, fmt.Sprintf("Catalog id '%s' appears more than once; the first entry wins", entry.ID))
		}
		seen[entry.ID] = true
		if entry.Price < 0 {
			warnings = append(warnings, fmt.Sprintf("Catalog entry '%s' has a negative price", entry.ID))
		}
	}

	for _, scenario := range conf.Scenarios {
		if scenario.TaxID == "" {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' names no counterpart tax id", scenario.Name))
		}
		if !scenario.AnnualPayment && scenario.Months <= 0 {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' has a non-positive term of %d months", scenario.Name, scenario.Months))
		}
		for _, item := range scenario.Items {
			if !seen[item.CatalogID] {
				warnings = append(warnings, fmt.Sprintf("Scenario '%s' references unknown catalog id '%s'; it will contribute zero cost", scenario.Name, item.CatalogID))
			}
		}
	}

	return warnings
}
