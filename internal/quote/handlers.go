package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/metrics"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/riskgrade"
)

// Mount registers the service routes on r.
func (s *Service) Mount(r chi.Router) {
	r.Get("/products", s.ListProducts)
	r.Get("/products/{code}", s.GetProduct)
	r.Post("/pricing/suggest", s.SuggestRate)
	r.Get("/pricing/range", s.GetRange)
	r.Post("/profitability", s.Profitability)
	r.Get("/risk-grade", s.GetRiskGrade)
	r.Get("/risk-grades", s.ListRiskGrades)
	r.Post("/rates/validate", s.ValidateRate)
	r.Post("/quotes", s.CreateQuote)
	r.Post("/quotes/batch", s.CreateBatch)
	if s.wsHub != nil {
		r.Get("/ws", s.wsHub.HandleWS)
	}
}

// --- Request/Response types ---

// ProfitabilityRequest is the JSON body for POST /profitability.
type ProfitabilityRequest struct {
	Principal  decimal.Decimal `json:"principal"`
	TermMonths int             `json:"term_months"`
	AnnualRate float64         `json:"annual_rate"`
	PD         float64         `json:"pd"`
}

// ValidateRateRequest is the JSON body for POST /rates/validate.
type ValidateRateRequest struct {
	ProductCode string  `json:"product_code"`
	Rate        float64 `json:"rate"`
}

// RiskGradeResponse is returned from GET /risk-grade.
type RiskGradeResponse struct {
	PD            float64         `json:"pd"`
	Grade         model.RiskGrade `json:"grade"`
	Decision      model.Decision  `json:"decision"`
	DashboardBand string          `json:"dashboard_band"`
}

// BatchRequest is the JSON body for POST /quotes/batch.
type BatchRequest struct {
	Requests []QuoteRequest `json:"requests"`
}

// BatchRow is one row of a batch result. Exactly one of Quote and Error is set.
type BatchRow struct {
	Index int          `json:"index"`
	Quote *model.Quote `json:"quote,omitempty"`
	Error string       `json:"error,omitempty"`
}

// BatchResponse is returned from POST /quotes/batch.
type BatchResponse struct {
	Total        int        `json:"total"`
	Succeeded    int        `json:"succeeded"`
	Failed       int        `json:"failed"`
	ProcessingMS int64      `json:"processing_ms"`
	Rows         []BatchRow `json:"rows"`
}

// --- HTTP Handlers ---

// ListProducts handles GET /api/v1/products
func (s *Service) ListProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Catalog().Products())
}

// GetProduct handles GET /api/v1/products/{code}
func (s *Service) GetProduct(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	p, ok := s.engine.Catalog().Info(code)
	if !ok {
		writeError(w, "product not found: "+code, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SuggestRate handles POST /api/v1/pricing/suggest
func (s *Service) SuggestRate(w http.ResponseWriter, r *http.Request) {
	var req model.PricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := s.engine.Suggest(req)
	label := s.productLabel(req.ProductCode)
	metrics.SuggestedRate.WithLabelValues(label).Observe(result.SuggestedRate)
	if result.FloorApplied {
		metrics.FloorDominated.WithLabelValues(label).Inc()
	}
	writeJSON(w, http.StatusOK, result)
}

// GetRange handles GET /api/v1/pricing/range?product={code}&score={score}
func (s *Service) GetRange(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("product")
	if code == "" {
		writeError(w, "product is required", http.StatusBadRequest)
		return
	}
	score, err := strconv.Atoi(r.URL.Query().Get("score"))
	if err != nil || score < 0 || score > model.MaxCreditScore {
		writeError(w, "score must be an integer between 0 and 1000", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Range(code, score))
}

// Profitability handles POST /api/v1/profitability
func (s *Service) Profitability(w http.ResponseWriter, r *http.Request) {
	var req ProfitabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	switch {
	case !req.Principal.IsPositive():
		writeError(w, model.ErrInvalidPrincipal.Error(), http.StatusBadRequest)
		return
	case req.TermMonths < 1:
		writeError(w, model.ErrInvalidTerm.Error(), http.StatusBadRequest)
		return
	case req.AnnualRate < 0 || req.AnnualRate > MaxChosenRate:
		writeError(w, ErrInvalidChosenRate.Error(), http.StatusBadRequest)
		return
	case req.PD < 0 || req.PD > 1:
		writeError(w, model.ErrInvalidPD.Error(), http.StatusBadRequest)
		return
	}

	breakdown := s.engine.Calculator().Calculate(req.Principal, req.TermMonths, req.AnnualRate, req.PD)
	writeJSON(w, http.StatusOK, breakdown)
}

// GetRiskGrade handles GET /api/v1/risk-grade?pd={pd}
func (s *Service) GetRiskGrade(w http.ResponseWriter, r *http.Request) {
	pd, err := strconv.ParseFloat(r.URL.Query().Get("pd"), 64)
	if err != nil || pd < 0 || pd > 1 {
		writeError(w, model.ErrInvalidPD.Error(), http.StatusBadRequest)
		return
	}
	grade := riskgrade.Classify(pd)
	writeJSON(w, http.StatusOK, RiskGradeResponse{
		PD:            pd,
		Grade:         grade,
		Decision:      Decide(grade),
		DashboardBand: riskgrade.DashboardBand(pd),
	})
}

// ListRiskGrades handles GET /api/v1/risk-grades
func (s *Service) ListRiskGrades(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, riskgrade.Grades())
}

// ValidateRate handles POST /api/v1/rates/validate
// Out-of-band rates are reported, never rejected: the response is 200 with
// the verdict unless the body itself is malformed.
func (s *Service) ValidateRate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.validator.Validate(req.ProductCode, req.Rate))
}

// CreateQuote handles POST /api/v1/quotes
func (s *Service) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	q, err := s.BuildQuote(r.Context(), req)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("quote computed",
		"quote_id", q.ID,
		"product", q.Request.ProductCode,
		"suggested_rate", q.Pricing.SuggestedRate,
		"chosen_rate", q.ChosenRate,
		"grade", q.RiskGrade.Grade,
		"decision", q.Decision,
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:          EventQuoteComputed,
			QuoteID:       q.ID,
			ProductCode:   q.Request.ProductCode,
			SuggestedRate: q.Pricing.SuggestedRate,
			ChosenRate:    q.ChosenRate,
			Grade:         q.RiskGrade.Grade,
			Decision:      string(q.Decision),
			Approvable:    q.Profitability.Approvable,
		})
	}

	writeJSON(w, http.StatusCreated, q)
}

// CreateBatch handles POST /api/v1/quotes/batch
// Rows are priced concurrently; an invalid row fails alone.
func (s *Service) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := s.BuildBatch(r.Context(), req.Requests)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("batch completed",
		"total", resp.Total,
		"failed", resp.Failed,
		"processing_ms", resp.ProcessingMS,
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:   EventBatchCompleted,
			Total:  resp.Total,
			Failed: resp.Failed,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// BuildBatch prices every request with bounded parallelism. Row order in the
// response matches the input.
func (s *Service) BuildBatch(ctx context.Context, reqs []QuoteRequest) (*BatchResponse, error) {
	switch {
	case len(reqs) == 0:
		return nil, ErrBatchEmpty
	case len(reqs) > s.opts.BatchMaxSize:
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(reqs), s.opts.BatchMaxSize)
	}
	metrics.BatchSize.Observe(float64(len(reqs)))

	start := s.now()
	rows := make([]BatchRow, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BatchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			rows[i].Index = i
			if err := gctx.Err(); err != nil {
				return err
			}
			q, err := s.BuildQuote(gctx, req)
			if err != nil {
				rows[i].Error = err.Error()
				return nil
			}
			rows[i].Quote = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &BatchResponse{
		Total:        len(rows),
		ProcessingMS: s.now().Sub(start).Milliseconds(),
		Rows:         rows,
	}
	for _, row := range rows {
		if row.Error != "" {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	return resp, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
