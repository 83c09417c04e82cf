package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CurrentRate is a point-in-time market quote snapshot: the price of one
// bitcoin in each supported fiat currency. It is supplied by an external
// collaborator; the core never fetches it.
type CurrentRate struct {
	BRL  decimal.Decimal
	USD  decimal.Decimal
	AsOf time.Time
}

// Rate returns the quoted bitcoin price in the given currency.
func (c CurrentRate) Rate(currency Currency) decimal.Decimal {
	if currency == CurrencyUSD {
		return c.USD
	}
	return c.BRL
}

// CrossRate returns the factor that converts an amount denominated in
// `from` into `to`, derived from the two legs of this snapshot
// (targetRate / sourceRate). Historical values are restated at today's
// cross rate, not at the rate prevailing on each record's date.
// Returns zero when the source leg is zero.
func (c CurrentRate) CrossRate(from, to Currency) decimal.Decimal {
	if from == to {
		return decimal.New(1, 0)
	}
	source := c.Rate(from)
	if source.IsZero() {
		return decimal.Zero
	}
	return c.Rate(to).Div(source)
}

// Validate ensures the snapshot carries usable quotes.
func (c CurrentRate) Validate() error {
	if c.BRL.LessThanOrEqual(decimal.Zero) || c.USD.LessThanOrEqual(decimal.Zero) {
		return errors.New("rate snapshot quotes must be positive")
	}
	return nil
}
