package domain

import (
	"context"
	"time"
)

// RecordRepository defines the interface for investment record persistence
// operations. Implementations assign nothing; IDs are set by the caller
// before insert.
type RecordRepository interface {
	// Create persists a single record
	Create(ctx context.Context, record *InvestmentRecord) error

	// BulkInsert persists a batch of records atomically
	// (all rows or none; used by spreadsheet import)
	BulkInsert(ctx context.Context, records []*InvestmentRecord) error

	// List retrieves all records ordered by date ascending
	List(ctx context.Context) ([]*InvestmentRecord, error)

	// ListSince retrieves records with date >= from, ordered by date ascending
	ListSince(ctx context.Context, from time.Time) ([]*InvestmentRecord, error)

	// Count returns the total number of records
	Count(ctx context.Context) (int, error)
}

// RateProvider supplies the current market quote snapshot.
// The core treats it as an already-resolved value; fetching, caching and
// timeouts belong to the implementation.
type RateProvider interface {
	// Current returns the latest known quote for BTC in both currencies
	Current(ctx context.Context) (*CurrentRate, error)
}
