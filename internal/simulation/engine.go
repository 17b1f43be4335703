package simulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/nmendoza-ar/credit-simulator/pkg/constants"
	"github.com/nmendoza-ar/credit-simulator/pkg/datetime"
	"github.com/nmendoza-ar/credit-simulator/pkg/format"
	"github.com/nmendoza-ar/credit-simulator/pkg/mathutil"
	"go.uber.org/zap"
)

// ErrInvalidParameters indicates structurally invalid plan parameters, such
// as a non-positive term or a negative rate. It is checked before any
// computation so NaN or infinite values never reach a result.
var ErrInvalidParameters = errors.New("invalid plan parameters")

// Engine computes financing simulations. It holds no state between calls and
// is safe for concurrent use as long as the catalog is not mutated.
type Engine struct {
	logger    *zap.Logger
	scheduler *datetime.Scheduler
}

// NewEngine creates a simulation engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// WithScheduler returns a copy of the engine with a due-date scheduler
// attached, leaving the receiver untouched so a shared engine can be
// reconfigured per request. Without one, schedule rows carry no due dates;
// the engine itself never reads the system clock.
func (e *Engine) WithScheduler(scheduler *datetime.Scheduler) *Engine {
	derived := *e
	derived.scheduler = scheduler
	return &derived
}

// Simulate computes a full financing proposal for one counterpart, cart, and
// plan parameter set against the given price catalog. It is pure and
// deterministic given its inputs and the scheduler's reference date.
func (e *Engine) Simulate(counterpart Counterpart, params PlanParameters, catalog []CatalogEntry) (SimulationResult, error) {
	if err := validateParameters(params); err != nil {
		return SimulationResult{}, err
	}

	totalCost := e.totalCost(params.Items, catalog)
	downPaymentAmount := mathutil.ApplyPercentage(totalCost, params.DownPaymentPercent)
	loanAmount := totalCost - downPaymentAmount

	var result SimulationResult
	result.TotalCost = totalCost
	result.DownPaymentAmount = downPaymentAmount
	result.LoanAmount = loanAmount

	switch plan := params.Plan.(type) {
	case BulletPlan:
		e.simulateBullet(&result, loanAmount, downPaymentAmount, params.InterestRate)
	case AmortizingPlan:
		e.simulateAmortizing(&result, loanAmount, downPaymentAmount, params.InterestRate, plan.Months)
	}

	e.assessViability(&result, counterpart, params.Plan)

	e.logger.Debug(fmt.Sprintf("simulated proposal for %s: loan %.2f, viable %t",
		counterpart.TaxID, result.LoanAmount, result.IsViable),
		zap.String("op", "simulation.Simulate"),
	)

	return result, nil
}

func validateParameters(params PlanParameters) error {
	switch plan := params.Plan.(type) {
	case BulletPlan:
	case AmortizingPlan:
		if plan.Months <= 0 {
			return fmt.Errorf("%w: term must be a positive number of months, got %d", ErrInvalidParameters, plan.Months)
		}
	default:
		return fmt.Errorf("%w: no payment plan selected", ErrInvalidParameters)
	}
	if params.InterestRate < 0 {
		return fmt.Errorf("%w: interest rate must not be negative, got %.2f", ErrInvalidParameters, params.InterestRate)
	}
	if params.DownPaymentPercent < 0 || params.DownPaymentPercent > 100 {
		return fmt.Errorf("%w: down payment percent must be within [0,100], got %.2f", ErrInvalidParameters, params.DownPaymentPercent)
	}
	for _, item := range params.Items {
		if item.Quantity < 0 {
			return fmt.Errorf("%w: quantity for %s must not be negative, got %d", ErrInvalidParameters, item.CatalogID, item.Quantity)
		}
	}
	return nil
}

// totalCost aggregates catalog prices over the cart. Items referencing an id
// absent from the catalog contribute zero.
func (e *Engine) totalCost(items []CartItem, catalog []CatalogEntry) float64 {
	total := 0.0
	for _, item := range items {
		entry, ok := catalogEntry(catalog, item.CatalogID)
		if !ok {
			e.logger.Debug(fmt.Sprintf("cart references unknown catalog id %s, contributing zero", item.CatalogID),
				zap.String("op", "simulation.totalCost"),
			)
			continue
		}
		total += entry.Price * float64(item.Quantity)
	}
	return total
}

func catalogEntry(catalog []CatalogEntry, id string) (CatalogEntry, bool) {
	for _, entry := range catalog {
		if entry.ID == id {
			return entry, true
		}
	}
	return CatalogEntry{}, false
}

// simulateBullet fills in the single-repayment branch: interest is applied
// once over the full year, non-compounded, and the entire obligation settles
// at period 12.
func (e *Engine) simulateBullet(result *SimulationResult, loanAmount, downPaymentAmount, rate float64) {
	interest := mathutil.ApplyPercentage(loanAmount, rate)
	finalPayment := loanAmount + interest

	row := AmortizationRow{
		Period:    constants.BulletPaymentPeriod,
		Label:     fmt.Sprintf("Month %d (single payment)", constants.BulletPaymentPeriod),
		Payment:   finalPayment,
		Interest:  interest,
		Principal: loanAmount,
		Balance:   0,
	}
	if e.scheduler != nil {
		row.DueDate = e.scheduler.DueDateString(constants.BulletPaymentPeriod)
	}

	result.MonthlyPayment = 0
	result.FinalPayment = finalPayment
	result.TotalInterest = interest
	result.TotalPayment = downPaymentAmount + finalPayment
	result.Schedule = []AmortizationRow{row}
}

// simulateAmortizing fills in the French-system branch. The monthly rate is
// the flat division rate/100/12, not an effective-rate conversion.
func (e *Engine) simulateAmortizing(result *SimulationResult, loanAmount, downPaymentAmount, rate float64, months int) {
	monthlyRate := rate / constants.PercentageMultiplier / constants.MonthsPerYear

	var payment float64
	if monthlyRate > 0 {
		payment = loanAmount * monthlyRate / (1 - math.Pow(1+monthlyRate, float64(-months)))
	} else {
		payment = loanAmount / float64(months)
	}

	schedule := make([]AmortizationRow, 0, months)
	balance := loanAmount
	totalInterest := 0.0
	for period := 1; period <= months; period++ {
		interest := balance * monthlyRate
		principal := payment - interest
		balance -= principal
		if balance < 0 {
			balance = 0
		}
		if period == months && mathutil.IsZero(balance) {
			balance = 0
		}
		totalInterest += interest

		row := AmortizationRow{
			Period:    period,
			Label:     fmt.Sprintf("Month %d", period),
			Payment:   payment,
			Interest:  interest,
			Principal: principal,
			Balance:   balance,
		}
		if e.scheduler != nil {
			row.DueDate = e.scheduler.DueDateString(period)
		}
		schedule = append(schedule, row)
	}

	result.MonthlyPayment = payment
	result.TotalInterest = totalInterest
	result.TotalPayment = downPaymentAmount + payment*float64(months)
	result.Schedule = schedule
}

// assessViability applies the business rules as an ordered, first-match-wins
// sequence, defaulting to approved. Bullet plans report a risk ratio against
// annual billing but are gated only by the credit ceiling.
func (e *Engine) assessViability(result *SimulationResult, counterpart Counterpart, plan PaymentPlan) {
	result.IsViable = true
	result.ViabilityMessage = "Financing approved"

	if result.LoanAmount > counterpart.MaxCreditLimit {
		result.IsViable = false
		result.ViabilityMessage = fmt.Sprintf(
			"The requested amount exceeds 30%% of annual billing (credit ceiling %s)",
			format.Currency(counterpart.MaxCreditLimit),
		)
	}

	switch plan.(type) {
	case BulletPlan:
		if counterpart.AnnualBilling > 0 {
			result.RiskRatio = (result.LoanAmount + result.TotalInterest) / counterpart.AnnualBilling
		}
	case AmortizingPlan:
		monthlyIncome := counterpart.AnnualBilling / constants.MonthsPerYear
		if monthlyIncome > 0 {
			result.RiskRatio = result.MonthlyPayment / monthlyIncome
		}
		if result.IsViable && result.RiskRatio > constants.MaxIncomeRatio {
			result.IsViable = false
			result.ViabilityMessage = fmt.Sprintf(
				"The monthly installment exceeds %s of the estimated monthly income",
				format.Percent(constants.MaxIncomeRatio),
			)
		}
	}
}
