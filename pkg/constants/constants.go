// Package constants provides shared constants for the credit-simulator application.
package constants

// DateTimeLayout is the output format for schedule due dates.
const DateTimeLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CreditCeilingRatio caps the financed amount at 30% of annual billing
	CreditCeilingRatio = 0.30

	// MaxIncomeRatio caps the monthly installment at 35% of estimated monthly income
	MaxIncomeRatio = 0.35

	// BulletPaymentPeriod is the period at which a bullet plan settles in full
	BulletPaymentPeriod = 12

	// DueDateIntervalDays is the number of days between consecutive due dates
	DueDateIntervalDays = 30

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for roster files (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// Roster format constants
const (
	// RosterFieldSeparator delimits fields within a roster row
	RosterFieldSeparator = ";"

	// RosterMinFields is the minimum number of fields a roster row must carry
	RosterMinFields = 3
)
