package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmoraes/aportebtc-backend/internal/adapter/csvfile"
	"github.com/dmoraes/aportebtc-backend/internal/domain"
	"github.com/dmoraes/aportebtc-backend/internal/ingest"
	"github.com/dmoraes/aportebtc-backend/internal/logger"
	"github.com/dmoraes/aportebtc-backend/internal/usecase/aggregation"
	"github.com/dmoraes/aportebtc-backend/internal/usecase/importer"
)

// Server exposes the aporte API over HTTP/JSON.
type Server struct {
	ImporterService    *importer.Service
	AggregationService *aggregation.Service
	Records            domain.RecordRepository

	maxUploadBytes int64
}

// NewServer creates a new HTTP API server instance.
func NewServer(
	importerService *importer.Service,
	aggregationService *aggregation.Service,
	records domain.RecordRepository,
	maxUploadBytes int64,
) *Server {
	return &Server{
		ImporterService:    importerService,
		AggregationService: aggregationService,
		Records:            records,
		maxUploadBytes:     maxUploadBytes,
	}
}

// Routes wires the API endpoints onto a mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/imports", s.handleImport)
	mux.HandleFunc("POST /api/v1/records", s.handleCreateRecord)
	mux.HandleFunc("GET /api/v1/records", s.handleListRecords)
	mux.HandleFunc("GET /api/v1/summary", s.handleSummary)
	return mux
}

// recordResponse is the JSON shape of one investment record. Decimals
// travel as strings to avoid float rounding on the wire.
type recordResponse struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	AmountInvested string `json:"amountInvested"`
	BTCAmount      string `json:"btcAmount"`
	Satoshis       string `json:"satoshis"`
	ExchangeRate   string `json:"exchangeRate"`
	Currency       string `json:"currency"`
	Origin         string `json:"origin"`
	Source         string `json:"source"`
}

func toRecordResponse(r *domain.InvestmentRecord) recordResponse {
	return recordResponse{
		ID:             r.ID.String(),
		Date:           r.Date.Format("2006-01-02"),
		AmountInvested: r.AmountInvested.String(),
		BTCAmount:      r.BTCAmount.String(),
		Satoshis:       r.Satoshis().String(),
		ExchangeRate:   r.ExchangeRate.String(),
		Currency:       string(r.Currency),
		Origin:         string(r.Origin),
		Source:         string(r.Source),
	}
}

type rejectedRowResponse struct {
	RowIndex int    `json:"rowIndex"`
	Reason   string `json:"reason"`
}

type importResponse struct {
	Imported   []recordResponse      `json:"imported"`
	Rejected   []rejectedRowResponse `json:"rejected"`
	Duplicates int                   `json:"duplicates"`
}

// handleImport accepts a multipart CSV upload and runs it through the
// ingestion pipeline. Row-level rejections come back in the response; a
// missing required column fails the whole upload with 422.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, "failed to parse form or upload too large", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, "missing 'file' field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	headers, rows, err := csvfile.Parse(file)
	if err != nil {
		logger.L.Warn("unreadable CSV upload", "filename", fileHeader.Filename, "error", err)
		writeError(w, "could not read CSV file", http.StatusBadRequest)
		return
	}

	input := importer.ImportInput{
		Headers:        headers,
		Rows:           rows,
		SkipDuplicates: r.FormValue("skip_duplicates") == "true",
	}

	result, err := s.ImporterService.ImportSpreadsheet(r.Context(), input)
	if err != nil {
		var missing *ingest.MissingRequiredColumnError
		if errors.As(err, &missing) {
			writeError(w, missing.Error(), http.StatusUnprocessableEntity)
			return
		}
		logger.L.Error("import failed", "filename", fileHeader.Filename, "error", err)
		writeError(w, "internal error while importing file", http.StatusInternalServerError)
		return
	}

	logger.L.Info("spreadsheet imported",
		"filename", fileHeader.Filename,
		"imported", len(result.Imported),
		"rejected", len(result.Rejected),
		"duplicates", result.Duplicates,
	)

	resp := importResponse{
		Imported:   make([]recordResponse, 0, len(result.Imported)),
		Rejected:   make([]rejectedRowResponse, 0, len(result.Rejected)),
		Duplicates: result.Duplicates,
	}
	for _, record := range result.Imported {
		resp.Imported = append(resp.Imported, toRecordResponse(record))
	}
	for _, rej := range result.Rejected {
		resp.Rejected = append(resp.Rejected, rejectedRowResponse{
			RowIndex: rej.RowIndex,
			Reason:   rej.Err.Error(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type createRecordRequest struct {
	Date           string `json:"date"`
	AmountInvested string `json:"amountInvested"`
	BTCAmount      string `json:"btcAmount"`
	Currency       string `json:"currency"`
	Origin         string `json:"origin"`
}

// handleCreateRecord registers one manually entered aporte. The exchange
// rate is derived from amount/btc just like imported rows.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.AmountInvested)
	if err != nil {
		writeError(w, "invalid amountInvested", http.StatusBadRequest)
		return
	}

	btc, err := decimal.NewFromString(req.BTCAmount)
	if err != nil {
		writeError(w, "invalid btcAmount", http.StatusBadRequest)
		return
	}

	record := domain.InvestmentRecord{
		ID:             uuid.New(),
		Date:           date,
		AmountInvested: amount,
		BTCAmount:      btc,
		Currency:       domain.CurrencyBRL,
		Origin:         ingest.ClassifyOrigin(req.Origin),
		Source:         domain.SourceManual,
	}
	if req.Currency != "" {
		record.Currency = domain.Currency(req.Currency)
	}
	if amount.IsPositive() && btc.IsPositive() {
		record.ExchangeRate = amount.Div(btc)
	}

	if err := record.Validate(); err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if err := s.Records.Create(r.Context(), &record); err != nil {
		logger.L.Error("failed to create record", "error", err)
		writeError(w, "internal error while saving record", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toRecordResponse(&record))
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.Records.List(r.Context())
	if err != nil {
		logger.L.Error("failed to list records", "error", err)
		writeError(w, "internal error while listing records", http.StatusInternalServerError)
		return
	}

	resp := make([]recordResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, toRecordResponse(record))
	}
	writeJSON(w, http.StatusOK, resp)
}

type summaryResponse struct {
	TotalBTC            string `json:"totalBtc"`
	TotalInvested       string `json:"totalInvested"`
	WeightedAverageRate string `json:"weightedAverageRate"`
	CurrentValue        string `json:"currentValue"`
	PercentChange       string `json:"percentChange"`
	Period              string `json:"period"`
	Currency            string `json:"currency"`
}

// handleSummary returns the aggregated portfolio metrics for the
// requested period (month, year, all; default all) and currency
// (default BRL).
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	period := domain.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = domain.PeriodAll
	}
	if !domain.ValidPeriod(period) {
		writeError(w, "period must be month, year or all", http.StatusBadRequest)
		return
	}

	currency := domain.Currency(r.URL.Query().Get("currency"))
	if currency == "" {
		currency = domain.CurrencyBRL
	}
	if currency != domain.CurrencyBRL && currency != domain.CurrencyUSD {
		writeError(w, "currency must be BRL or USD", http.StatusBadRequest)
		return
	}

	result, err := s.AggregationService.Summary(r.Context(), period, currency)
	if err != nil {
		logger.L.Error("failed to aggregate", "period", period, "currency", currency, "error", err)
		writeError(w, "internal error while aggregating", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		TotalBTC:            result.TotalBTC.String(),
		TotalInvested:       result.TotalInvested.String(),
		WeightedAverageRate: result.WeightedAverageRate.String(),
		CurrentValue:        result.CurrentValue.String(),
		PercentChange:       result.PercentChange.String(),
		Period:              string(result.Period),
		Currency:            string(result.Currency),
	})
}
