package ingest

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dmoraes/aportebtc-backend/internal/domain"
)

// RawRow is one spreadsheet row as an unordered header -> cell mapping.
// It exists only during ingestion.
type RawRow map[string]string

// Result is the outcome of ingesting one file: the records that
// validated, and one entry per row that did not. An empty Accepted set
// with a nonempty input is not an error; it means zero importable rows
// and the caller decides what to do with that.
type Result struct {
	Accepted []domain.InvestmentRecord
	Rejected []RowError
}

// currencyAliases maps folded currency cells to the fixed currency pair.
var currencyAliases = map[string]domain.Currency{
	"brl":     domain.CurrencyBRL,
	"r$":      domain.CurrencyBRL,
	"real":    domain.CurrencyBRL,
	"reais":   domain.CurrencyBRL,
	"usd":     domain.CurrencyUSD,
	"us$":     domain.CurrencyUSD,
	"$":       domain.CurrencyUSD,
	"dolar":   domain.CurrencyUSD,
	"dolares": domain.CurrencyUSD,
}

// Ingest runs the full pipeline over one file: resolve columns once
// against the header, then normalize, classify and validate row by row.
//
// A missing required column aborts the whole file (the header is a
// structural, per-file decision). Row failures are per-record: a bad row
// lands in Rejected and never blocks the rows around it.
//
// Ingest is not idempotent. Row identity is assigned at persistence time,
// so feeding the same file twice yields duplicate records; deduplication
// is the caller's job (see the importer use case).
func Ingest(headers []string, rows []RawRow) (*Result, error) {
	columns, err := ResolveColumns(headers)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows {
		record, err := ingestRow(columns, row)
		if err != nil {
			result.Rejected = append(result.Rejected, RowError{RowIndex: i, Err: err})
			continue
		}
		result.Accepted = append(result.Accepted, record)
	}
	return result, nil
}

func ingestRow(columns *ColumnMap, row RawRow) (domain.InvestmentRecord, error) {
	normalized := NormalizedRow{
		Currency: domain.CurrencyBRL,
		Origin:   domain.OriginExchange,
	}

	// Optional origin first: the adjustment relaxations in BuildRecord
	// depend on it.
	if header, ok := columns.Header(RoleOrigin); ok {
		normalized.Origin = ClassifyOrigin(row[header])
	}

	if header, ok := columns.Header(RoleCurrency); ok {
		if currency, ok := currencyAliases[foldKey(row[header])]; ok {
			normalized.Currency = currency
		}
	}

	header, _ := columns.Header(RoleDate)
	date, err := ParseFlexibleDate(row[header])
	if err != nil {
		return domain.InvestmentRecord{}, err
	}
	normalized.Date = date

	header, _ = columns.Header(RoleAmount)
	normalized.AmountInvested, err = parseAmountCell(row[header], normalized.Origin)
	if err != nil {
		return domain.InvestmentRecord{}, err
	}

	header, _ = columns.Header(RoleBTC)
	normalized.BTCAmount, err = ParseLocaleDecimal(row[header])
	if err != nil {
		return domain.InvestmentRecord{}, err
	}

	// The supplied rate is parsed for completeness but never trusted;
	// BuildRecord derives the real one.
	if header, ok := columns.Header(RoleRate); ok {
		if rate, err := ParseLocaleDecimal(row[header]); err == nil {
			normalized.SuppliedRate = rate
		}
	}

	return BuildRecord(normalized)
}

// parseAmountCell reads the invested-amount cell. Adjustment rows may
// leave it blank (they carry no capital), every other origin must supply
// a number.
func parseAmountCell(raw string, origin domain.Origin) (decimal.Decimal, error) {
	if origin == domain.OriginAdjustment && strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	return ParseLocaleDecimal(raw)
}
