package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmoraes/aportebtc-backend/internal/domain"
	"github.com/dmoraes/aportebtc-backend/internal/ingest"
)

// Service turns an uploaded spreadsheet into persisted records. The
// ingestion pipeline itself is not idempotent, so duplicate protection
// lives here, keyed on record content.
type Service struct {
	Records domain.RecordRepository
}

// NewService creates a new importer Service instance.
func NewService(records domain.RecordRepository) *Service {
	return &Service{Records: records}
}

// ImportInput is one upload: the file's header row plus its data rows, as
// produced by the byte-level CSV reader.
type ImportInput struct {
	Headers []string
	Rows    []ingest.RawRow

	// SkipDuplicates drops accepted rows whose content hash matches an
	// already persisted record instead of inserting them twice.
	SkipDuplicates bool
}

// ImportResult reports what happened to every row of the upload.
type ImportResult struct {
	Imported   []*domain.InvestmentRecord
	Rejected   []ingest.RowError
	Duplicates int
}

// ImportSpreadsheet runs the ingestion pipeline and persists the accepted
// records in one bulk insert. IDs are assigned here, at persistence time.
// A missing required column fails the whole upload; row-level rejections
// are returned alongside the imported records.
func (s *Service) ImportSpreadsheet(ctx context.Context, input ImportInput) (*ImportResult, error) {
	result, err := ingest.Ingest(input.Headers, input.Rows)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	if input.SkipDuplicates && len(result.Accepted) > 0 {
		existing, err := s.Records.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list existing records: %w", err)
		}
		for _, r := range existing {
			seen[contentHash(r)] = true
		}
	}

	out := &ImportResult{Rejected: result.Rejected}
	records := make([]*domain.InvestmentRecord, 0, len(result.Accepted))
	for i := range result.Accepted {
		record := result.Accepted[i]
		record.ID = uuid.New()

		if input.SkipDuplicates {
			hash := contentHash(&record)
			if seen[hash] {
				out.Duplicates++
				continue
			}
			seen[hash] = true
		}
		records = append(records, &record)
	}

	if len(records) > 0 {
		if err := s.Records.BulkInsert(ctx, records); err != nil {
			return nil, fmt.Errorf("failed to insert records: %w", err)
		}
	}

	out.Imported = records
	return out, nil
}

// contentHash fingerprints a record by the fields that identify an aporte
// in practice: date, amount, btc and origin. ID and registration source
// stay out so a manual entry and its spreadsheet twin collide.
func contentHash(r *domain.InvestmentRecord) string {
	payload := strings.Join([]string{
		r.Date.Format("2006-01-02"),
		r.AmountInvested.String(),
		r.BTCAmount.String(),
		string(r.Origin),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
