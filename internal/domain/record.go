package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is one of the two fiat currencies the system operates in.
// BRL is the local currency, USD the reserve currency.
type Currency string

const (
	CurrencyBRL Currency = "BRL"
	CurrencyUSD Currency = "USD"
)

// Origin classifies how a unit of Bitcoin was acquired, or how a balance
// changed. ADJUSTMENT records are custody corrections, not purchases.
type Origin string

const (
	OriginExchange    Origin = "EXCHANGE"
	OriginP2P         Origin = "P2P"
	OriginSpreadsheet Origin = "SPREADSHEET"
	OriginAdjustment  Origin = "ADJUSTMENT"
)

// RegistrationSource records how an entry got into the system, independent
// of its Origin: typed in by hand or imported from a spreadsheet.
type RegistrationSource string

const (
	SourceManual      RegistrationSource = "MANUAL"
	SourceSpreadsheet RegistrationSource = "SPREADSHEET"
)

// satoshisPerBTC converts whole bitcoin to satoshi for display.
var satoshisPerBTC = decimal.New(1, 8)

// InvestmentRecord represents a single aporte (Bitcoin purchase) or a
// balance adjustment in the domain layer.
// ID is assigned at persistence time, never during normalization.
type InvestmentRecord struct {
	ID             uuid.UUID
	Date           time.Time
	AmountInvested decimal.Decimal // in Currency
	BTCAmount      decimal.Decimal // whole bitcoin, not satoshi
	ExchangeRate   decimal.Decimal // price per whole bitcoin in Currency
	Currency       Currency
	Origin         Origin
	Source         RegistrationSource
}

// Validate ensures the record adheres to domain rules.
// Purchases must carry positive amounts and a rate consistent with
// amount/btc. Balance adjustments may carry a negative BTCAmount and a
// zero AmountInvested (they correct holdings, they do not buy anything).
func (r *InvestmentRecord) Validate() error {
	if r.Date.IsZero() {
		return errors.New("record date cannot be zero")
	}

	if !validCurrency(r.Currency) {
		return errors.New("currency must be BRL or USD")
	}

	if !validOrigin(r.Origin) {
		return errors.New("origin must be EXCHANGE, P2P, SPREADSHEET or ADJUSTMENT")
	}

	if r.Source != SourceManual && r.Source != SourceSpreadsheet {
		return errors.New("registration source must be MANUAL or SPREADSHEET")
	}

	if r.Origin == OriginAdjustment {
		if r.BTCAmount.IsZero() {
			return errors.New("adjustment btc amount cannot be zero")
		}
		return nil
	}

	if r.AmountInvested.LessThanOrEqual(decimal.Zero) {
		return errors.New("amount invested must be positive")
	}

	if r.BTCAmount.LessThanOrEqual(decimal.Zero) {
		return errors.New("btc amount must be positive")
	}

	if r.ExchangeRate.LessThanOrEqual(decimal.Zero) {
		return errors.New("exchange rate must be positive")
	}

	return nil
}

// IsAdjustment reports whether the record is a balance correction rather
// than a purchase.
func (r *InvestmentRecord) IsAdjustment() bool {
	return r.Origin == OriginAdjustment
}

// Satoshis returns the BTC amount in satoshi. Display-only unit; the
// canonical quantity is always BTCAmount.
func (r *InvestmentRecord) Satoshis() decimal.Decimal {
	return r.BTCAmount.Mul(satoshisPerBTC)
}

func validCurrency(c Currency) bool {
	return c == CurrencyBRL || c == CurrencyUSD
}

func validOrigin(o Origin) bool {
	switch o {
	case OriginExchange, OriginP2P, OriginSpreadsheet, OriginAdjustment:
		return true
	}
	return false
}
