package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nmendoza-ar/credit-simulator/internal/simulation"
)

const testConfigYAML = `catalog:
  - id: t1
    name: "315/80 R22.5"
    price: 300000
  - id: t2
    name: "295/80 R22.5"
    price: 350000
scenarios:
  - name: fleet renewal
    taxId: "20175312650"
    items:
      - catalogId: t1
        quantity: 4
    downPaymentPercent: 20
    interestRate: 35
    months: 12
  - name: single annual payment
    taxId: "20236590918"
    items:
      - catalogId: t2
        quantity: 2
    downPaymentPercent: 0
    interestRate: 35
    annualPayment: true
logging:
  level: debug
  format: console
output:
  format: csv
`

func writeTestConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	conf, err := LoadConfiguration(writeTestConfig(t, testConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfiguration() returned error: %v", err)
	}

	if len(conf.Catalog) != 2 {
		t.Fatalf("expected 2 catalog entries, got %d", len(conf.Catalog))
	}
	if conf.Catalog[0].ID != "t1" || conf.Catalog[0].Price != 300000 {
		t.Errorf("unexpected first catalog entry: %+v", conf.Catalog[0])
	}

	if len(conf.Scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(conf.Scenarios))
	}

	first := conf.Scenarios[0]
	if first.TaxID != "20175312650" {
		t.Errorf("scenario tax id = %q, expected 20175312650", first.TaxID)
	}
	if len(first.Items) != 1 || first.Items[0].CatalogID != "t1" || first.Items[0].Quantity != 4 {
		t.Errorf("unexpected scenario items: %+v", first.Items)
	}
	if first.DownPaymentPercent != 20 || first.InterestRate != 35 || first.Months != 12 {
		t.Errorf("unexpected scenario parameters: %+v", first)
	}

	if conf.Logging.Level != "debug" || conf.Logging.Format != "console" {
		t.Errorf("unexpected logging config: %+v", conf.Logging)
	}
	if conf.Output.Format != "csv" {
		t.Errorf("output format = %q, expected csv", conf.Output.Format)
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestScenarioPlanParameters(t *testing.T) {
	tests := []struct {
		name     string
		scenario Scenario
		expected simulation.PaymentPlan
	}{
		{
			name:     "Monthly installments",
			scenario: Scenario{Months: 24},
			expected: simulation.AmortizingPlan{Months: 24},
		},
		{
			name:     "Single annual payment",
			scenario: Scenario{AnnualPayment: true, Months: 24},
			expected: simulation.BulletPlan{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.scenario.PlanParameters()
			if params.Plan != tt.expected {
				t.Errorf("plan = %#v, expected %#v", params.Plan, tt.expected)
			}
		})
	}
}

func TestCatalogOrDefault(t *testing.T) {
	empty := &Configuration{}
	catalog := empty.CatalogOrDefault()
	if len(catalog) != 3 {
		t.Fatalf("expected the 3 default tire models, got %d entries", len(catalog))
	}
	if catalog[0].ID != "t1" || catalog[1].ID != "t2" || catalog[2].ID != "t3" {
		t.Errorf("unexpected default catalog ids: %+v", catalog)
	}

	custom := &Configuration{Catalog: []simulation.CatalogEntry{{ID: "x1", Price: 100}}}
	if got := custom.CatalogOrDefault(); len(got) != 1 || got[0].ID != "x1" {
		t.Errorf("configured catalog should win over the default, got %+v", got)
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name            string
		conf            Configuration
		expectedWarning string
	}{
		{
			name: "Duplicate catalog id",
			conf: Configuration{
				Catalog: []simulation.CatalogEntry{
					{ID: "t1", Price: 100},
					{ID: "t1", Price: 200},
				},
			},
			expectedWarning: "appears more than once",
		},
		{
			name: "Negative price",
			conf: Configuration{
				Catalog: []simulation.CatalogEntry{{ID: "t1", Price: -5}},
			},
			expectedWarning: "negative price",
		},
		{
			name: "Scenario without tax id",
			conf: Configuration{
				Scenarios: []Scenario{{Name: "anonymous", Months: 12}},
			},
			expectedWarning: "names no counterpart tax id",
		},
		{
			name: "Non-positive term",
			conf: Configuration{
				Scenarios: []Scenario{{Name: "zero term", TaxID: "1"}},
			},
			expectedWarning: "non-positive term",
		},
		{
			name: "Unknown catalog reference",
			conf: Configuration{
				Scenarios: []Scenario{{
					Name:   "ghost item",
					TaxID:  "1",
					Months: 12,
					Items:  []simulation.CartItem{{CatalogID: "nope", Quantity: 1}},
				}},
			},
			expectedWarning: "unknown catalog id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.conf.ValidateConfiguration()
			found := false
			for _, warning := range warnings {
				if strings.Contains(warning, tt.expectedWarning) {
					found = true
				}
			}
			if !found {
				t.Errorf("warnings %v do not mention %q", warnings, tt.expectedWarning)
			}
		})
	}
}

func TestValidateConfigurationClean(t *testing.T) {
	conf := Configuration{
		Scenarios: []Scenario{{
			Name:   "clean",
			TaxID:  "20175312650",
			Months: 12,
			Items:  []simulation.CartItem{{CatalogID: "t1", Quantity: 1}},
		}},
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}
