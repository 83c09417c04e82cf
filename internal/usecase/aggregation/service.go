package aggregation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmoraes/aportebtc-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Aggregate computes the portfolio summary for one period and currency
// from an arbitrary record set plus a market quote snapshot. Pure: the
// reference time is threaded in explicitly, so results are deterministic
// under test.
//
// Balance adjustments move real holdings, so they count toward TotalBTC,
// but they are not purchases and are excluded from TotalInvested and the
// weighted average cost.
//
// Records in the other currency are restated at the snapshot's cross rate
// (target leg / source leg), uniformly, regardless of each record's
// acquisition date.
//
// Degenerate inputs (empty filtered set, zero denominators) resolve to
// zero in every field, never an error. The zero is a "no data" sentinel,
// not a computed price.
func Aggregate(
	records []domain.InvestmentRecord,
	rate domain.CurrentRate,
	period domain.Period,
	target domain.Currency,
	now time.Time,
) domain.AggregationResult {
	result := domain.AggregationResult{
		TotalBTC:            decimal.Zero,
		TotalInvested:       decimal.Zero,
		WeightedAverageRate: decimal.Zero,
		CurrentValue:        decimal.Zero,
		PercentChange:       decimal.Zero,
		Period:              period,
		Currency:            target,
	}

	purchasedBTC := decimal.Zero
	for _, record := range records {
		if !inPeriod(record.Date, period, now) {
			continue
		}

		result.TotalBTC = result.TotalBTC.Add(record.BTCAmount)

		if record.IsAdjustment() {
			continue
		}

		invested := record.AmountInvested.Mul(rate.CrossRate(record.Currency, target))
		result.TotalInvested = result.TotalInvested.Add(invested)
		purchasedBTC = purchasedBTC.Add(record.BTCAmount)
	}

	// Weighted average acquisition cost: capital deployed over units
	// acquired, purchases only.
	if purchasedBTC.IsPositive() && result.TotalInvested.IsPositive() {
		result.WeightedAverageRate = result.TotalInvested.Div(purchasedBTC)
	}

	result.CurrentValue = result.TotalBTC.Mul(rate.Rate(target))

	if result.TotalInvested.IsPositive() {
		result.PercentChange = result.CurrentValue.
			Sub(result.TotalInvested).
			Div(result.TotalInvested).
			Mul(hundred)
	}

	return result
}

// inPeriod applies the calendar filter against the reference time. Month
// and year are evaluated at computation time: rerunning after month-end
// changes which records qualify, by design.
func inPeriod(date time.Time, period domain.Period, now time.Time) bool {
	switch period {
	case domain.PeriodMonth:
		return date.Year() == now.Year() && date.Month() == now.Month()
	case domain.PeriodYear:
		return date.Year() == now.Year()
	default:
		return true
	}
}

// Service exposes the aggregator to the application, resolving the record
// set and the quote snapshot through the domain interfaces.
type Service struct {
	Records domain.RecordRepository
	Rates   domain.RateProvider
}

// NewService creates a new aggregation Service instance.
func NewService(records domain.RecordRepository, rates domain.RateProvider) *Service {
	return &Service{Records: records, Rates: rates}
}

// Summary loads all records plus the current quote and aggregates them
// for the requested period and currency.
func (s *Service) Summary(ctx context.Context, period domain.Period, currency domain.Currency) (*domain.AggregationResult, error) {
	if !domain.ValidPeriod(period) {
		return nil, fmt.Errorf("unknown period %q", period)
	}

	records, err := s.Records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	rate, err := s.Rates.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current rate: %w", err)
	}

	set := make([]domain.InvestmentRecord, 0, len(records))
	for _, r := range records {
		set = append(set, *r)
	}

	result := Aggregate(set, *rate, period, currency, time.Now())
	return &result, nil
}
