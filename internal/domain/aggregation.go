package domain

import "github.com/shopspring/decimal"

// Period selects which records participate in an aggregation, evaluated
// against the reference time passed to the aggregator.
type Period string

const (
	PeriodMonth Period = "month" // current calendar month and year
	PeriodYear  Period = "year"  // current calendar year
	PeriodAll   Period = "all"   // no date filter
)

// ValidPeriod reports whether p is one of the supported periods.
func ValidPeriod(p Period) bool {
	return p == PeriodMonth || p == PeriodYear || p == PeriodAll
}

// AggregationResult is the derived portfolio summary for one period and
// currency. It is recomputed on demand and never persisted.
//
// A zero value in any field is a sentinel meaning "no data for this
// period", not an error; distinguishing it from a legitimately zero price
// is the caller's concern.
type AggregationResult struct {
	TotalBTC            decimal.Decimal
	TotalInvested       decimal.Decimal
	WeightedAverageRate decimal.Decimal
	CurrentValue        decimal.Decimal
	PercentChange       decimal.Decimal
	Period              Period
	Currency            Currency
}
