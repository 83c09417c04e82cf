package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmoraes/aportebtc-backend/internal/domain"
)

// recordRepository implements domain.RecordRepository
type recordRepository struct {
	db *DB
}

// NewRecordRepository creates a new investment record repository
func NewRecordRepository(db *DB) domain.RecordRepository {
	return &recordRepository{db: db}
}

const insertRecordQuery = `
	INSERT INTO investment_records
		(id, date, amount_invested, btc_amount, exchange_rate, currency, origin, source)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

const selectRecordColumns = `
	SELECT id, date, amount_invested, btc_amount, exchange_rate, currency, origin, source
	FROM investment_records
`

// Create persists a single record
func (r *recordRepository) Create(ctx context.Context, record *domain.InvestmentRecord) error {
	_, err := r.db.ExecContext(ctx, insertRecordQuery,
		record.ID,
		record.Date,
		record.AmountInvested.String(),
		record.BTCAmount.String(),
		record.ExchangeRate.String(),
		string(record.Currency),
		string(record.Origin),
		string(record.Source),
	)
	if err != nil {
		return fmt.Errorf("failed to insert investment record: %w", err)
	}
	return nil
}

// BulkInsert persists a batch of records in a single database transaction
// (all rows or none)
func (r *recordRepository) BulkInsert(ctx context.Context, records []*domain.InvestmentRecord) error {
	if len(records) == 0 {
		return nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, record := range records {
		_, err = dbTx.ExecContext(ctx, insertRecordQuery,
			record.ID,
			record.Date,
			record.AmountInvested.String(),
			record.BTCAmount.String(),
			record.ExchangeRate.String(),
			string(record.Currency),
			string(record.Origin),
			string(record.Source),
		)
		if err != nil {
			return fmt.Errorf("failed to insert investment record: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// List retrieves all records ordered by date ascending
func (r *recordRepository) List(ctx context.Context) ([]*domain.InvestmentRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectRecordColumns+` ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list investment records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListSince retrieves records with date >= from, ordered by date ascending
func (r *recordRepository) ListSince(ctx context.Context, from time.Time) ([]*domain.InvestmentRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectRecordColumns+` WHERE date >= $1 ORDER BY date ASC`, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list investment records since %s: %w", from, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the total number of records
func (r *recordRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM investment_records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count investment records: %w", err)
	}
	return count, nil
}

func scanRecords(rows *sql.Rows) ([]*domain.InvestmentRecord, error) {
	var records []*domain.InvestmentRecord
	for rows.Next() {
		var record domain.InvestmentRecord
		var amountStr, btcStr, rateStr, currency, origin, source string

		if err := rows.Scan(
			&record.ID,
			&record.Date,
			&amountStr,
			&btcStr,
			&rateStr,
			&currency,
			&origin,
			&source,
		); err != nil {
			return nil, fmt.Errorf("failed to scan investment record: %w", err)
		}

		var err error
		if record.AmountInvested, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount_invested: %w", err)
		}
		if record.BTCAmount, err = decimal.NewFromString(btcStr); err != nil {
			return nil, fmt.Errorf("failed to parse btc_amount: %w", err)
		}
		if record.ExchangeRate, err = decimal.NewFromString(rateStr); err != nil {
			return nil, fmt.Errorf("failed to parse exchange_rate: %w", err)
		}

		record.Currency = domain.Currency(currency)
		record.Origin = domain.Origin(origin)
		record.Source = domain.RegistrationSource(source)
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investment records: %w", err)
	}
	return records, nil
}
