package ingest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmoraes/aportebtc-backend/internal/domain"
)

// NormalizedRow holds the typed scalars extracted from one spreadsheet
// row, before invariants are enforced.
type NormalizedRow struct {
	Date           time.Time
	AmountInvested decimal.Decimal
	BTCAmount      decimal.Decimal
	SuppliedRate   decimal.Decimal // from the file; informational only
	Currency       domain.Currency
	Origin         domain.Origin
}

// BuildRecord turns a normalized row into a canonical record or a
// row-level error. Checks short-circuit in a fixed order: date, amount,
// btc, derived rate; the first failure is the reported reason.
//
// The exchange rate is always recomputed as amount/btc, even when the
// file supplied one. Spreadsheet rate cells are the dominant source of
// transcription noise, so the derived value is the only one trusted.
func BuildRecord(row NormalizedRow) (domain.InvestmentRecord, error) {
	if row.Date.IsZero() {
		return domain.InvestmentRecord{}, fmt.Errorf("%w: missing date", ErrInvalidDate)
	}

	adjustment := row.Origin == domain.OriginAdjustment

	if !adjustment && row.AmountInvested.LessThanOrEqual(decimal.Zero) {
		return domain.InvestmentRecord{}, fmt.Errorf("%w: amount invested %s", ErrNonPositiveAmount, row.AmountInvested)
	}

	if adjustment {
		if row.BTCAmount.IsZero() {
			return domain.InvestmentRecord{}, fmt.Errorf("%w: adjustment btc amount is zero", ErrNonPositiveAmount)
		}
	} else if row.BTCAmount.LessThanOrEqual(decimal.Zero) {
		return domain.InvestmentRecord{}, fmt.Errorf("%w: btc amount %s", ErrNonPositiveAmount, row.BTCAmount)
	}

	rate := reconcileRate(row.AmountInvested, row.BTCAmount)
	if !adjustment && rate.LessThanOrEqual(decimal.Zero) {
		return domain.InvestmentRecord{}, fmt.Errorf("%w: derived exchange rate %s", ErrNonPositiveAmount, rate)
	}

	return domain.InvestmentRecord{
		Date:           row.Date,
		AmountInvested: row.AmountInvested,
		BTCAmount:      row.BTCAmount,
		ExchangeRate:   rate,
		Currency:       row.Currency,
		Origin:         row.Origin,
		Source:         domain.SourceSpreadsheet,
	}, nil
}

// reconcileRate derives the acquisition price from the two trusted
// scalars. Adjustments with a zero or negative leg get a zero rate; the
// rate is never left blank.
func reconcileRate(amount, btc decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) || btc.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return amount.Div(btc)
}
