// Package simulation defines the financing data model and implements the
// simulation engine that produces amortization schedules and viability
// verdicts for credit proposals.
package simulation

import "github.com/nmendoza-ar/credit-simulator/pkg/constants"

// Counterpart is a normalized commercial counterpart (transporter) profile.
// MaxCreditLimit is derived from AnnualBilling at construction time and is
// never mutated independently.
type Counterpart struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	TaxID          string  `json:"taxId"`
	AnnualBilling  float64 `json:"annualBilling"`
	MaxCreditLimit float64 `json:"maxCreditLimit"`
}

// NewCounterpart builds a Counterpart with its credit ceiling derived as 30%
// of annual billing. Identity is the tax id.
func NewCounterpart(name, taxID string, annualBilling float64) Counterpart {
	return Counterpart{
		ID:             taxID,
		Name:           name,
		TaxID:          taxID,
		AnnualBilling:  annualBilling,
		MaxCreditLimit: annualBilling * constants.CreditCeilingRatio,
	}
}

// CatalogEntry is a priced item in the static catalog supplied by the caller.
// The engine reads the catalog but never owns or mutates it.
type CatalogEntry struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CartItem references a catalog entry by id with an integer quantity. A
// quantity of zero is equivalent to absence from the cart.
type CartItem struct {
	CatalogID string `json:"catalogId"`
	Quantity  int    `json:"quantity"`
}

// PaymentPlan selects the repayment structure of a proposal. The two variants
// are BulletPlan and AmortizingPlan; modeling them as a sealed variant keeps
// the two computation branches mutually exclusive.
type PaymentPlan interface {
	planKind() string
}

// BulletPlan is a single repayment of principal plus interest at period 12,
// with no intermediate installments.
type BulletPlan struct{}

func (BulletPlan) planKind() string { return "bullet" }

// AmortizingPlan is a fixed-payment declining-balance (French system) plan
// over the given number of months.
type AmortizingPlan struct {
	Months int
}

func (AmortizingPlan) planKind() string { return "amortizing" }

// PlanParameters is the complete, immutable parameter set for one simulation
// call.
type PlanParameters struct {
	Items              []CartItem
	DownPaymentPercent float64
	InterestRate       float64 // nominal annual rate, percent
	Plan               PaymentPlan
}

// AmortizationRow is one period of a repayment schedule. Payment equals
// interest plus principal for every row, and the final row's balance is zero.
type AmortizationRow struct {
	Period    int     `json:"period"`
	Label     string  `json:"label"`
	DueDate   string  `json:"dueDate,omitempty"`
	Payment   float64 `json:"payment"`
	Interest  float64 `json:"interest"`
	Principal float64 `json:"principal"`
	Balance   float64 `json:"balance"`
}

// SimulationResult is an immutable snapshot of one simulation run. A rejected
// proposal is still a successfully-computed result with IsViable false, never
// an error.
type SimulationResult struct {
	TotalCost         float64           `json:"totalCost"`
	DownPaymentAmount float64           `json:"downPaymentAmount"`
	LoanAmount        float64           `json:"loanAmount"`
	MonthlyPayment    float64           `json:"monthlyPayment"`
	FinalPayment      float64           `json:"finalPayment,omitempty"`
	TotalPayment      float64           `json:"totalPayment"`
	TotalInterest     float64           `json:"totalInterest"`
	RiskRatio         float64           `json:"riskRatio"`
	IsViable          bool              `json:"isViable"`
	ViabilityMessage  string            `json:"viabilityMessage"`
	Schedule          []AmortizationRow `json:"amortizationSchedule"`
}
