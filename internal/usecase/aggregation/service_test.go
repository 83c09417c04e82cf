package aggregation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmoraes/aportebtc-backend/internal/domain"
)

var testRate = domain.CurrentRate{
	BRL:  decimal.NewFromInt(600000),
	USD:  decimal.NewFromInt(100000),
	AsOf: time.Date(2024, time.January, 25, 12, 0, 0, 0, time.UTC),
}

func purchase(day time.Time, amount, btc string) domain.InvestmentRecord {
	a := decimal.RequireFromString(amount)
	b := decimal.RequireFromString(btc)
	return domain.InvestmentRecord{
		Date:           day,
		AmountInvested: a,
		BTCAmount:      b,
		ExchangeRate:   a.Div(b),
		Currency:       domain.CurrencyBRL,
		Origin:         domain.OriginExchange,
		Source:         domain.SourceManual,
	}
}

func TestAggregate_EmptySetIsAllZeros(t *testing.T) {
	for _, period := range []domain.Period{domain.PeriodMonth, domain.PeriodYear, domain.PeriodAll} {
		result := Aggregate(nil, testRate, period, domain.CurrencyBRL, time.Now())

		assert.True(t, result.TotalBTC.IsZero())
		assert.True(t, result.TotalInvested.IsZero())
		assert.True(t, result.WeightedAverageRate.IsZero())
		assert.True(t, result.CurrentValue.IsZero())
		assert.True(t, result.PercentChange.IsZero())
	}
}

func TestAggregate_WeightedAverageWorkedExample(t *testing.T) {
	now := time.Date(2024, time.January, 25, 10, 0, 0, 0, time.UTC)
	records := []domain.InvestmentRecord{
		purchase(time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), "1000", "0.01"),
		purchase(time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC), "500", "0.004"),
	}

	result := Aggregate(records, testRate, domain.PeriodMonth, domain.CurrencyBRL, now)

	// (1000+500) / (0.01+0.004) = 107142.857...
	expected := decimal.NewFromInt(1500).Div(decimal.RequireFromString("0.014"))
	assert.True(t, result.WeightedAverageRate.Equal(expected),
		"want %s got %s", expected, result.WeightedAverageRate)
	assert.Equal(t, "1500", result.TotalInvested.String())
	assert.Equal(t, "0.014", result.TotalBTC.String())

	// Definition check: average times total units equals total capital.
	product := result.WeightedAverageRate.Mul(result.TotalBTC)
	assert.True(t, product.Sub(result.TotalInvested).Abs().LessThan(decimal.RequireFromString("0.0001")))
}

func TestAggregate_PeriodFilterUsesReferenceTime(t *testing.T) {
	january := purchase(time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), "1000", "0.01")
	december := purchase(time.Date(2023, time.December, 28, 0, 0, 0, 0, time.UTC), "900", "0.01")

	records := []domain.InvestmentRecord{january, december}
	now := time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)

	month := Aggregate(records, testRate, domain.PeriodMonth, domain.CurrencyBRL, now)
	assert.Equal(t, "1000", month.TotalInvested.String(), "December record falls outside the current month")

	year := Aggregate(records, testRate, domain.PeriodYear, domain.CurrencyBRL, now)
	assert.Equal(t, "1000", year.TotalInvested.String(), "December 2023 falls outside the current year")

	all := Aggregate(records, testRate, domain.PeriodAll, domain.CurrencyBRL, now)
	assert.Equal(t, "1900", all.TotalInvested.String())

	// Recomputing with February's clock silently drops the January
	// record from the month slice. Intentional.
	february := Aggregate(records, testRate, domain.PeriodMonth, domain.CurrencyBRL,
		time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC))
	assert.True(t, february.TotalInvested.IsZero())
}

func TestAggregate_AdjustmentExcludedFromAverageCost(t *testing.T) {
	now := time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)
	adjustment := domain.InvestmentRecord{
		Date:      time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		BTCAmount: decimal.RequireFromString("-0.01"),
		Currency:  domain.CurrencyBRL,
		Origin:    domain.OriginAdjustment,
		Source:    domain.SourceManual,
	}
	records := []domain.InvestmentRecord{
		purchase(time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), "1000", "0.01"),
		purchase(time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC), "500", "0.004"),
		adjustment,
	}

	result := Aggregate(records, testRate, domain.PeriodMonth, domain.CurrencyBRL, now)

	// The withdrawal fee shrinks holdings...
	assert.Equal(t, "0.004", result.TotalBTC.String())
	// ...but neither its btc nor its (absent) amount touches the average.
	expected := decimal.NewFromInt(1500).Div(decimal.RequireFromString("0.014"))
	assert.True(t, result.WeightedAverageRate.Equal(expected))
	assert.Equal(t, "1500", result.TotalInvested.String())
}

func TestAggregate_CrossCurrencyRestatement(t *testing.T) {
	now := time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)
	usdPurchase := domain.InvestmentRecord{
		Date:           time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC),
		AmountInvested: decimal.NewFromInt(100),
		BTCAmount:      decimal.RequireFromString("0.001"),
		ExchangeRate:   decimal.NewFromInt(100000),
		Currency:       domain.CurrencyUSD,
		Origin:         domain.OriginExchange,
		Source:         domain.SourceManual,
	}
	records := []domain.InvestmentRecord{
		purchase(time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), "600", "0.001"),
		usdPurchase,
	}

	result := Aggregate(records, testRate, domain.PeriodMonth, domain.CurrencyBRL, now)

	// USD 100 restated at today's cross rate (600000/100000 = 6): BRL 600.
	assert.Equal(t, "1200", result.TotalInvested.String())
	assert.Equal(t, "0.002", result.TotalBTC.String())
	// CurrentValue = 0.002 * 600000 BRL.
	assert.Equal(t, "1200", result.CurrentValue.String())
	assert.True(t, result.PercentChange.IsZero())
}

func TestAggregate_PercentChange(t *testing.T) {
	now := time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)
	records := []domain.InvestmentRecord{
		// 0.01 BTC bought for 3000; worth 6000 at the test quote.
		purchase(time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), "3000", "0.01"),
	}

	result := Aggregate(records, testRate, domain.PeriodAll, domain.CurrencyBRL, now)

	assert.Equal(t, "6000", result.CurrentValue.String())
	assert.Equal(t, "100", result.PercentChange.String())
}

func TestAggregate_OnlyAdjustmentsNoDivisionByZero(t *testing.T) {
	now := time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)
	records := []domain.InvestmentRecord{
		{
			Date:      time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
			BTCAmount: decimal.RequireFromString("0.05"),
			Currency:  domain.CurrencyBRL,
			Origin:    domain.OriginAdjustment,
			Source:    domain.SourceManual,
		},
	}

	result := Aggregate(records, testRate, domain.PeriodAll, domain.CurrencyBRL, now)

	assert.Equal(t, "0.05", result.TotalBTC.String())
	assert.True(t, result.TotalInvested.IsZero())
	assert.True(t, result.WeightedAverageRate.IsZero(), "zero is the no-data sentinel, not a price")
	assert.True(t, result.PercentChange.IsZero(), "guarded: no NaN/Infinity on zero capital")
	assert.Equal(t, "30000", result.CurrentValue.String())
}

// MockRecordRepository is a mock implementation of domain.RecordRepository
// for testing
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Create(ctx context.Context, record *domain.InvestmentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) BulkInsert(ctx context.Context, records []*domain.InvestmentRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockRecordRepository) List(ctx context.Context) ([]*domain.InvestmentRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InvestmentRecord), args.Error(1)
}

func (m *MockRecordRepository) ListSince(ctx context.Context, from time.Time) ([]*domain.InvestmentRecord, error) {
	args := m.Called(ctx, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InvestmentRecord), args.Error(1)
}

func (m *MockRecordRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockRateProvider is a mock implementation of domain.RateProvider for
// testing
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) Current(ctx context.Context) (*domain.CurrentRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrentRate), args.Error(1)
}

func TestSummary_FetchesRecordsAndRate(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRecordRepository)
	mockRates := new(MockRateProvider)
	service := NewService(mockRepo, mockRates)

	stored := purchase(time.Now().UTC().Truncate(24*time.Hour), "3000", "0.01")
	mockRepo.On("List", ctx).Return([]*domain.InvestmentRecord{&stored}, nil)
	mockRates.On("Current", ctx).Return(&testRate, nil)

	result, err := service.Summary(ctx, domain.PeriodAll, domain.CurrencyBRL)
	require.NoError(t, err)
	assert.Equal(t, "3000", result.TotalInvested.String())
	assert.Equal(t, domain.PeriodAll, result.Period)

	mockRepo.AssertExpectations(t)
	mockRates.AssertExpectations(t)
}

func TestSummary_InvalidPeriod(t *testing.T) {
	service := NewService(new(MockRecordRepository), new(MockRateProvider))

	_, err := service.Summary(context.Background(), "quarter", domain.CurrencyBRL)
	assert.Error(t, err)
}

func TestSummary_RateProviderFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRecordRepository)
	mockRates := new(MockRateProvider)
	service := NewService(mockRepo, mockRates)

	mockRepo.On("List", ctx).Return([]*domain.InvestmentRecord{}, nil)
	mockRates.On("Current", ctx).Return(nil, errors.New("upstream down"))

	_, err := service.Summary(ctx, domain.PeriodAll, domain.CurrencyBRL)
	assert.ErrorContains(t, err, "current rate")
}
