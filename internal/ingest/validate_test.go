package ingest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmoraes/aportebtc-backend/internal/domain"
)

func TestBuildRecord_DerivesExchangeRate(t *testing.T) {
	record, err := BuildRecord(NormalizedRow{
		Date:           date(2024, time.January, 5),
		AmountInvested: decimal.NewFromInt(1000),
		BTCAmount:      decimal.RequireFromString("0.01"),
		Currency:       domain.CurrencyBRL,
		Origin:         domain.OriginExchange,
	})
	require.NoError(t, err)

	assert.True(t, record.ExchangeRate.Equal(decimal.NewFromInt(100000)),
		"rate should be amount/btc, got %s", record.ExchangeRate)
	assert.Equal(t, domain.SourceSpreadsheet, record.Source)
}

func TestBuildRecord_SuppliedRateNeverTrusted(t *testing.T) {
	// The file claims 999999 per BTC; the derived value wins.
	record, err := BuildRecord(NormalizedRow{
		Date:           date(2024, time.January, 5),
		AmountInvested: decimal.NewFromInt(500),
		BTCAmount:      decimal.RequireFromString("0.004"),
		SuppliedRate:   decimal.NewFromInt(999999),
		Currency:       domain.CurrencyBRL,
		Origin:         domain.OriginExchange,
	})
	require.NoError(t, err)

	assert.True(t, record.ExchangeRate.Equal(decimal.NewFromInt(125000)))
	assert.True(t, record.ExchangeRate.Equal(record.AmountInvested.Div(record.BTCAmount)),
		"reconciliation invariant: rate == amount/btc exactly")
}

func TestBuildRecord_ShortCircuitOrder(t *testing.T) {
	// Every check is broken at once; the first one in the fixed order is
	// the reported reason.
	tests := []struct {
		name string
		row  NormalizedRow
		want error
	}{
		{
			name: "missing date reported before bad amount",
			row: NormalizedRow{
				AmountInvested: decimal.NewFromInt(-10),
				BTCAmount:      decimal.Zero,
				Origin:         domain.OriginExchange,
			},
			want: ErrInvalidDate,
		},
		{
			name: "bad amount reported before bad btc",
			row: NormalizedRow{
				Date:           date(2024, time.March, 1),
				AmountInvested: decimal.Zero,
				BTCAmount:      decimal.NewFromInt(-1),
				Origin:         domain.OriginExchange,
			},
			want: ErrNonPositiveAmount,
		},
		{
			name: "bad btc",
			row: NormalizedRow{
				Date:           date(2024, time.March, 1),
				AmountInvested: decimal.NewFromInt(100),
				BTCAmount:      decimal.Zero,
				Origin:         domain.OriginExchange,
			},
			want: ErrNonPositiveAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRecord(tt.row)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuildRecord_AdjustmentRelaxations(t *testing.T) {
	// A balance adjustment may carry a negative btc amount and no
	// invested capital; its rate stays zero rather than blank.
	record, err := BuildRecord(NormalizedRow{
		Date:      date(2024, time.February, 10),
		BTCAmount: decimal.RequireFromString("-0.01"),
		Currency:  domain.CurrencyBRL,
		Origin:    domain.OriginAdjustment,
	})
	require.NoError(t, err)

	assert.True(t, record.BTCAmount.IsNegative())
	assert.True(t, record.AmountInvested.IsZero())
	assert.True(t, record.ExchangeRate.IsZero())
}

func TestBuildRecord_AdjustmentZeroBTCRejected(t *testing.T) {
	_, err := BuildRecord(NormalizedRow{
		Date:   date(2024, time.February, 10),
		Origin: domain.OriginAdjustment,
	})
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}
