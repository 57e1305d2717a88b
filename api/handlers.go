/*
handlers.go - HTTP API handlers for the reinsurance engine

PURPOSE:
  Exposes netting and commission rating over REST. Handles HTTP
  request/response and JSON, and delegates to the engine packages.

ENDPOINTS:
  Netting:
    POST   /api/netting                 Gross / ceded / net for one period
    POST   /api/netting/elementwise     Per-record net matched by lineage

  Commission:
    GET    /api/commission/bands        Default band table
    POST   /api/commission/rate         Rate one loss ratio
    POST   /api/commission/apply        Rate claims over ceded records and set commission

  Batch:
    POST   /api/periods/batch           Independent periods evaluated in parallel

  Scenarios:
    GET    /api/scenarios               List demo simulations
    POST   /api/scenarios/run           Run a demo simulation

  Health:
    GET    /healthz

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Calculator: netting with the configured policy count mode
  - Tables: band / risk band / portion parsing
  - Default schedule: compiled once at startup, shared by every request

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input, invalid band table, no bands available
  - 422: Data that cannot be netted or rated (ceded without gross, policy
         count mismatch, zero premium)
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The server is meant to run next to the simulation.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo simulations
  - server.go: Router setup and middleware
*/
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/actuarial/reinsurance-engine/commission"
	"github.com/actuarial/reinsurance-engine/contract"
	"github.com/actuarial/reinsurance-engine/factory"
	"github.com/actuarial/reinsurance-engine/netting"
	"github.com/actuarial/reinsurance-engine/underwriting"
)

// errNoBands is returned when a request brings no bands and the server has none.
var errNoBands = errors.New("no commission bands in request and none configured")

// errTooManyPeriods is returned for batches above the configured size.
var errTooManyPeriods = errors.New("too many periods in batch")

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Config carries the handler's settings.
type Config struct {
	Calculator *netting.Calculator

	// DefaultSchedule rates requests that bring no bands. May be nil.
	DefaultSchedule *commission.Schedule
	Additive        bool

	MaxParallel int
	MaxPeriods  int

	// RiskBands backs the configured-quota-share scenario. May be nil.
	RiskBands *factory.RiskBandTable

	AllowedOrigins []string
	Logger         *zap.Logger
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Calculator *netting.Calculator
	Tables     *factory.TableFactory
	Logger     *zap.Logger

	defaultSchedule *commission.Schedule
	additive        bool
	maxParallel     int
	maxPeriods      int
	riskBands       *factory.RiskBandTable
	allowedOrigins  []string
}

// NewHandler creates a new handler.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		Calculator:      cfg.Calculator,
		Tables:          factory.NewTableFactory(),
		Logger:          cfg.Logger,
		defaultSchedule: cfg.DefaultSchedule,
		additive:        cfg.Additive,
		maxParallel:     cfg.MaxParallel,
		maxPeriods:      cfg.MaxPeriods,
		riskBands:       cfg.RiskBands,
		allowedOrigins:  cfg.AllowedOrigins,
	}
	if h.Calculator == nil {
		h.Calculator = netting.NewCalculator(netting.WithLogger(cfg.Logger))
	}
	if h.Logger == nil {
		h.Logger = zap.NewNop()
	}
	if h.maxParallel < 1 {
		h.maxParallel = 1
	}
	return h
}

// =============================================================================
// NETTING ENDPOINTS
// =============================================================================

// Net returns the demanded gross, ceded and net views of one period.
func (h *Handler) Net(w http.ResponseWriter, r *http.Request) {
	var req NettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	gross, err := toRecords(req.Gross)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid gross record", err)
		return
	}
	ceded, err := toRecords(req.Ceded)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ceded record", err)
		return
	}

	result, err := h.Calculator.Calculate(gross, ceded, wantOrAll(req.Want))
	if err != nil {
		h.writeCalculationError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, NettingResponse{
		CalculationID: uuid.NewString(),
		Gross:         toRecordDTOPtr(result.Gross),
		Ceded:         toRecordDTOs(result.Ceded),
		Net:           toRecordDTOPtr(result.Net),
	})
}

// ElementwiseNet nets every gross record against its ceded share.
func (h *Handler) ElementwiseNet(w http.ResponseWriter, r *http.Request) {
	var req ElementwiseNetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	gross, err := toRecords(req.Gross)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid gross record", err)
		return
	}
	ceded, err := toRecords(req.Ceded)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ceded record", err)
		return
	}

	net, err := h.Calculator.ElementwiseNet(gross, ceded)
	if err != nil {
		h.writeCalculationError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ElementwiseNetResponse{
		CalculationID: uuid.NewString(),
		Net:           toRecordDTOs(net),
	})
}

// =============================================================================
// COMMISSION ENDPOINTS
// =============================================================================

// Rate looks up the commission rate for a loss ratio.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	schedule, err := h.schedule(req.Bands)
	if err != nil {
		h.writeCalculationError(w, r, err)
		return
	}
	rate, err := schedule.Rate(req.LossRatio)
	if err != nil {
		h.writeCalculationError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RateResponse{LossRatio: req.LossRatio, Rate: rate})
}

// DefaultBands returns the server's band table in the positional JSON shape.
func (h *Handler) DefaultBands(w http.ResponseWriter, r *http.Request) {
	if h.defaultSchedule == nil {
		writeError(w, http.StatusNotFound, "No default bands", errNoBands)
		return
	}
	data, err := h.Tables.BandsJSON(h.defaultSchedule.Bands())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render bands", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ApplyCommission rates the claims over the records and returns the records
// with their new commission.
func (h *Handler) ApplyCommission(w http.ResponseWriter, r *http.Request) {
	var req ApplyCommissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	schedule, err := h.schedule(req.Bands)
	if err != nil {
		h.writeCalculationError(w, r, err)
		return
	}
	records, err := toRecords(req.Records)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid record", err)
		return
	}
	cs := toClaims(req.Claims)

	lossRatio, err := commission.LossRatio(cs, records)
	if err != nil {
		h.writeCalculationError(w, r, err)
		return
	}
	rate, err := schedule.Rate(lossRatio)
	if err != nil {
		h.writeCalculationError(w, r, err)
		return
	}
	commission.ApplyCommission(rate, records, h.additiveOr(req.Additive))

	writeJSON(w, http.StatusOK, ApplyCommissionResponse{
		CalculationID: uuid.NewString(),
		LossRatio:     round(lossRatio),
		Rate:          rate,
		Records:       toRecordDTOs(records),
	})
}

// =============================================================================
// BATCH ENDPOINT
// =============================================================================

// Batch evaluates independent periods in parallel. Every period decodes its
// own records; the compiled schedule is shared. The first failing period
// fails the batch.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if h.maxPeriods > 0 && len(req.Periods) > h.maxPeriods {
		writeError(w, http.StatusBadRequest, "Too many periods",
			fmt.Errorf("%w: %d > %d", errTooManyPeriods, len(req.Periods), h.maxPeriods))
		return
	}

	var schedule *commission.Schedule
	if len(req.Bands) > 0 || h.defaultSchedule != nil {
		var err error
		if schedule, err = h.schedule(req.Bands); err != nil {
			h.writeCalculationError(w, r, err)
			return
		}
	}
	additive := h.additiveOr(req.Additive)

	results := make([]PeriodResultDTO, len(req.Periods))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(h.maxParallel)
	for i := range req.Periods {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := h.evaluatePeriod(req.Periods[i], schedule, additive)
			if err != nil {
				return fmt.Errorf("period %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.writeCalculationError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, BatchResponse{
		CalculationID: uuid.NewString(),
		Periods:       results,
	})
}

// evaluatePeriod rates commission on the period's ceded records when a
// schedule is given and there is something ceded, then nets.
func (h *Handler) evaluatePeriod(p PeriodDTO, schedule *commission.Schedule, additive bool) (PeriodResultDTO, error) {
	gross, err := toRecords(p.Gross)
	if err != nil {
		return PeriodResultDTO{}, err
	}
	ceded, err := toRecords(p.Ceded)
	if err != nil {
		return PeriodResultDTO{}, err
	}

	var res PeriodResultDTO
	if schedule != nil && len(ceded) > 0 {
		strategy := commission.NewSlidingCommissionFromSchedule(schedule)
		lossRatio, err := commission.LossRatio(toClaims(p.Claims), ceded)
		if err != nil {
			return PeriodResultDTO{}, err
		}
		rate, err := strategy.Rate(lossRatio)
		if err != nil {
			return PeriodResultDTO{}, err
		}
		commission.ApplyCommission(rate, ceded, additive)
		res.Rate = &rate
	}

	result, err := h.Calculator.Calculate(gross, ceded, wantOrAll(p.Want))
	if err != nil {
		return PeriodResultDTO{}, err
	}
	res.Gross = toRecordDTOPtr(result.Gross)
	res.Ceded = toRecordDTOs(result.Ceded)
	res.Net = toRecordDTOPtr(result.Net)
	return res, nil
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness and whether a default band table is loaded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"default_bands": h.defaultSchedule != nil,
		"policy_counts": h.Calculator.Mode().String(),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// schedule compiles request bands, or falls back to the server's table.
func (h *Handler) schedule(bands []commission.Band) (*commission.Schedule, error) {
	if len(bands) > 0 {
		return commission.Compile(bands)
	}
	if h.defaultSchedule == nil {
		return nil, errNoBands
	}
	return h.defaultSchedule, nil
}

func (h *Handler) additiveOr(requested *bool) bool {
	if requested != nil {
		return *requested
	}
	return h.additive
}

// classify maps engine errors to a status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errNoBands):
		return http.StatusBadRequest, "no_bands"
	case commission.IsConfiguration(err):
		return http.StatusBadRequest, "invalid_bands"
	case contract.IsConfiguration(err):
		return http.StatusBadRequest, "invalid_contract"
	case errors.Is(err, underwriting.ErrCededWithoutGross):
		return http.StatusUnprocessableEntity, "ceded_without_gross"
	case errors.Is(err, underwriting.ErrPolicyCountMismatch):
		return http.StatusUnprocessableEntity, "policy_count_mismatch"
	case errors.Is(err, underwriting.ErrLengthMismatch):
		return http.StatusUnprocessableEntity, "length_mismatch"
	case commission.IsUnrateable(err):
		if errors.Is(err, commission.ErrZeroPremium) {
			return http.StatusUnprocessableEntity, "zero_premium"
		}
		return http.StatusUnprocessableEntity, "undefined_loss_ratio"
	}
	return http.StatusInternalServerError, "internal"
}

func (h *Handler) writeCalculationError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("calculation failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		h.Logger.Debug("calculation rejected", zap.String("path", r.URL.Path), zap.String("code", code), zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: "Calculation failed", Code: code, Details: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
