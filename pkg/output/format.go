// Package output provides utilities for formatting and displaying simulation results.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/nmendoza-ar/credit-simulator/internal/simulation"
	"github.com/nmendoza-ar/credit-simulator/pkg/format"
)

// ScenarioResult pairs a named scenario run with its counterpart and result.
type ScenarioResult struct {
	Name        string
	Counterpart simulation.Counterpart
	Result      simulation.SimulationResult
}

// PrettyFormat writes a human-readable rather than machine-readable rendering
// of the simulation results.
func PrettyFormat(w io.Writer, results []ScenarioResult) {
	for n, sr := range results {
		fmt.Fprintf(w, "--- Results for scenario %s (%s, %s) ---\n", sr.Name, sr.Counterpart.Name, sr.Counterpart.TaxID)
		fmt.Fprintf(w, "Period | Label                   | Due Date   | Payment         | Interest        | Principal       | Balance\n")
		fmt.Fprintf(w, "______ | _____                   | ________   | _______         | ________        | _________       | _______\n")
		for _, row := range sr.Result.Schedule {
			dueDate := row.DueDate
			if dueDate == "" {
				dueDate = "-"
			}
			fmt.Fprintf(w, "%6d | %-23s | %-10s | %15s | %15s | %15s | %15s\n",
				row.Period, row.Label, dueDate,
				format.Currency(row.Payment), format.Currency(row.Interest),
				format.Currency(row.Principal), format.Currency(row.Balance))
		}
		fmt.Fprintf(w, "Total cost: %s | Down payment: %s | Financed: %s\n",
			format.Currency(sr.Result.TotalCost),
			format.Currency(sr.Result.DownPaymentAmount),
			format.Currency(sr.Result.LoanAmount))
		fmt.Fprintf(w, "Total interest: %s | Total payment: %s | Risk ratio: %.4f\n",
			format.Currency(sr.Result.TotalInterest),
			format.Currency(sr.Result.TotalPayment),
			sr.Result.RiskRatio)
		verdict := "APPROVED"
		if !sr.Result.IsViable {
			verdict = "REJECTED"
		}
		fmt.Fprintf(w, "Verdict: %s - %s\n", verdict, sr.Result.ViabilityMessage)
		if n < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat writes the schedules in comma-separated value format.
func CsvFormat(w io.Writer, results []ScenarioResult) {
	fmt.Fprintf(w, `"scenario","counterpart","taxId","period","label","dueDate","payment","interest","principal","balance","isViable"`)
	fmt.Fprintf(w, "\n")
	for _, sr := range results {
		for _, row := range sr.Result.Schedule {
			fmt.Fprintf(w, `"%s","%s","%s","%d","%s","%s","%.2f","%.2f","%.2f","%.2f","%t"`,
				csvEscape(sr.Name), csvEscape(sr.Counterpart.Name), sr.Counterpart.TaxID,
				row.Period, csvEscape(row.Label), row.DueDate,
				row.Payment, row.Interest, row.Principal, row.Balance,
				sr.Result.IsViable)
			fmt.Fprintf(w, "\n")
		}
	}
}

func csvEscape(value string) string {
	return strings.ReplaceAll(value, `"`, `""`)
}
