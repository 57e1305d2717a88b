/*
scenarios.go - Demo simulations for testing and demonstrations

PURPOSE:

	Provides pre-built simulations that run the whole engine end to end:
	risk band tables generate a gross portfolio, composers slice it into
	lines of business, a quota share contract cedes a share and rates its
	sliding commission, and the period is netted.

AVAILABLE SCENARIOS:

	motor-quota-share:  One motor table, 40% quota share on everything
	composed-lines:     Property and motor composed into two lines, 25% on private lines
	lines-from-claims:  Lines-of-business cover that takes its lines from the claims
	configured-quota-share:
	                    40% quota share on the risk band file named by
	                    scenarios.risk_bands_file; listed only when it is set

HOW SCENARIOS WORK:
 1. Parse the scenario's tables via factory
 2. Create a fresh RecordStore for the run
 3. For every iteration: generate, compose, process the contract, net
 4. Losses are listed per iteration and cycled when the run is longer

USAGE VIA API:

	POST /api/scenarios/run
	{"scenario_id": "motor-quota-share", "iterations": 3}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description and tables
 2. Tables are plain JSON or YAML documents in the factory shapes

SEE ALSO:
  - handlers.go: Netting and commission handlers
  - factory/tables.go: Table documents
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/actuarial/reinsurance-engine/claims"
	"github.com/actuarial/reinsurance-engine/commission"
	"github.com/actuarial/reinsurance-engine/contract"
	"github.com/actuarial/reinsurance-engine/factory"
	"github.com/actuarial/reinsurance-engine/netting"
	"github.com/actuarial/reinsurance-engine/portfolio"
	"github.com/actuarial/reinsurance-engine/underwriting"
	"github.com/actuarial/reinsurance-engine/underwriting/store"
)

// maxIterations bounds a single demo run.
const maxIterations = 1000

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type document struct {
	body   string
	format factory.Format
}

type loss struct {
	line     underwriting.Marker
	ultimate float64
}

type scenario struct {
	ScenarioDTO

	riskBands []document
	composers []document

	// configured adds the server's risk band table to riskBands
	configured bool

	bands     document

	share float64
	cover contract.Cover

	// losses[i] are the gross claims of iteration i, cycled
	losses [][]loss
}

var motorRiskBands = document{format: factory.FormatYAML, body: `
name: motor
bands:
  - [100000, 40000, 600, 20]
  - [500000, 150000, 400, 5]
`}

var propertyRiskBands = document{format: factory.FormatJSON, body: `
{"name": "property", "bands": [
  {"max_sum_insured": 1000000, "average_sum_insured": 250000, "premium": 2000, "number_of_policies": 8}
]}`}

var privateLines = document{format: factory.FormatJSON, body: `
{"line_of_business": "private lines", "portions": [["property", 0.6], ["motor", 0.3]]}`}

var commercialLines = document{format: factory.FormatYAML, body: `
line_of_business: commercial lines
portions:
  - {origin: property, portion: 0.4}
  - {origin: motor, portion: "0.7"}
`}

var slidingBands = document{format: factory.FormatYAML, body: `
bands:
  - [0, 0]
  - [0.25, 0.1]
  - [0.5, 0.2]
  - [1.0, 0.3]
`}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "motor-quota-share",
			Name:        "Motor Quota Share",
			Description: "One motor risk band table, 40% quota share on everything, losses rising through the bands",
		},
		riskBands: []document{motorRiskBands},
		bands:     slidingBands,
		share:     0.4,
		cover:     contract.Cover{Kind: contract.CoverAll},
		losses: [][]loss{
			{{ultimate: 300}},
			{{ultimate: 600}},
			{{ultimate: 1200}},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "composed-lines",
			Name:        "Composed Lines",
			Description: "Property and motor composed into private and commercial lines, 25% quota share on private lines",
		},
		riskBands: []document{propertyRiskBands, motorRiskBands},
		composers: []document{privateLines, commercialLines},
		bands:     slidingBands,
		share:     0.25,
		cover:     contract.Cover{Kind: contract.CoverLinesOfBusiness, Lines: []underwriting.Marker{"private lines"}},
		losses: [][]loss{
			{{line: "private lines", ultimate: 450}, {line: "commercial lines", ultimate: 900}},
			{{line: "private lines", ultimate: 150}},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "lines-from-claims",
			Name:        "Lines From Claims",
			Description: "Lines-of-business cover without lines: only lines with claims are covered, 50% quota share",
		},
		riskBands: []document{propertyRiskBands, motorRiskBands},
		composers: []document{privateLines, commercialLines},
		bands:     slidingBands,
		share:     0.5,
		cover:     contract.Cover{Kind: contract.CoverLinesOfBusiness},
		losses: [][]loss{
			{{line: "commercial lines", ultimate: 1000}},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "configured-quota-share",
			Name:        "Configured Quota Share",
			Description: "The configured risk band table, 40% quota share on everything",
		},
		configured: true,
		bands:      slidingBands,
		share:      0.4,
		cover:      contract.Cover{Kind: contract.CoverAll},
		losses: [][]loss{
			{{ultimate: 300}},
			{{ultimate: 600}},
		},
	},
}

// available lists the scenarios this server can run.
func (h *Handler) available() []*scenario {
	out := make([]*scenario, 0, len(scenarios))
	for i := range scenarios {
		if scenarios[i].configured && h.riskBands == nil {
			continue
		}
		out = append(out, &scenarios[i])
	}
	return out
}

func (h *Handler) findScenario(id string) *scenario {
	for _, sc := range h.available() {
		if sc.ID == id {
			return sc
		}
	}
	return nil
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available demo simulations.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	available := h.available()
	out := make([]ScenarioDTO, 0, len(available))
	for _, sc := range available {
		out = append(out, sc.ScenarioDTO)
	}
	writeJSON(w, http.StatusOK, out)
}

// RunScenario runs a demo simulation and returns every iteration.
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	var req RunScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sc := h.findScenario(req.ScenarioID)
	if sc == nil {
		writeError(w, http.StatusNotFound, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}
	iterations := req.Iterations
	if iterations <= 0 {
		iterations = 1
	}
	if iterations > maxIterations {
		writeError(w, http.StatusBadRequest, "Too many iterations", fmt.Errorf("%d > %d", iterations, maxIterations))
		return
	}

	results, err := h.runScenario(r.Context(), sc, iterations)
	if err != nil {
		h.writeCalculationError(w, r, err)
		return
	}

	h.Logger.Info("scenario run",
		zap.String("scenario", sc.ID),
		zap.Int("iterations", iterations))
	writeJSON(w, http.StatusOK, RunScenarioResponse{
		CalculationID: uuid.NewString(),
		ScenarioID:    sc.ID,
		Iterations:    results,
	})
}

// =============================================================================
// SIMULATION
// =============================================================================

func (h *Handler) runScenario(ctx context.Context, sc *scenario, iterations int) ([]IterationDTO, error) {
	records := store.NewMemory()

	generators := make([]*portfolio.RiskBands, 0, len(sc.riskBands))
	for _, doc := range sc.riskBands {
		t, err := h.Tables.ParseRiskBands([]byte(doc.body), doc.format)
		if err != nil {
			return nil, fmt.Errorf("scenario %s risk bands: %w", sc.ID, err)
		}
		generators = append(generators, portfolio.NewRiskBands(t.Name, t.Bands, records))
	}
	if sc.configured && h.riskBands != nil {
		name := h.riskBands.Name
		if name == "" {
			name = "configured"
		}
		generators = append(generators, portfolio.NewRiskBands(name, h.riskBands.Bands, records))
	}

	composers := make([]*portfolio.Composer, 0, len(sc.composers))
	for _, doc := range sc.composers {
		c, err := h.Tables.ParsePortions([]byte(doc.body), doc.format)
		if err != nil {
			return nil, fmt.Errorf("scenario %s portions: %w", sc.ID, err)
		}
		composers = append(composers, c)
	}

	bands, err := h.Tables.ParseBands([]byte(sc.bands.body), sc.bands.format)
	if err != nil {
		return nil, fmt.Errorf("scenario %s bands: %w", sc.ID, err)
	}

	cover := sc.cover
	qs := &contract.Contract{
		Name:       underwriting.Marker(sc.ID),
		Cover:      &cover,
		Ceding:     contract.QuotaShare{Share: sc.share},
		Commission: commission.NewSlidingCommission(bands),
		Additive:   h.additive,
		Mode:       h.Calculator.Mode(),
		Logger:     h.Logger,
	}

	out := make([]IterationDTO, 0, iterations)
	for it := 0; it < iterations; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var gross []*underwriting.Record
		for _, g := range generators {
			generated, err := g.Generate(ctx, it == 0)
			if err != nil {
				return nil, err
			}
			gross = append(gross, generated...)
		}
		if len(composers) > 0 {
			var composed []*underwriting.Record
			for _, c := range composers {
				composed = append(composed, c.Compose(gross)...)
			}
			gross = composed
		}

		processed, err := qs.Process(contract.Input{
			Claims:        sc.claims(it),
			Records:       gross,
			IsFirstPeriod: it == 0,
			Want:          contract.Outputs{NetAfterCover: true, Financials: true},
		})
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", it, err)
		}

		result, err := h.Calculator.Calculate(processed.CoveredRecords, processed.CededRecords, netting.AllChannels)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", it, err)
		}

		out = append(out, IterationDTO{
			Iteration:     it,
			Portfolio:     toRecordDTOPtr(underwriting.Aggregate(gross)),
			Gross:         toRecordDTOPtr(result.Gross),
			Ceded:         toRecordDTOPtr(result.CededTotal),
			Net:           toRecordDTOPtr(result.Net),
			NetAfterCover: toRecordDTOs(processed.NetAfterCover),
			Financials:    processed.Financials,
		})
	}
	return out, nil
}

func (sc *scenario) claims(iteration int) []*claims.Claim {
	if len(sc.losses) == 0 {
		return nil
	}
	losses := sc.losses[iteration%len(sc.losses)]
	out := make([]*claims.Claim, 0, len(losses))
	for _, l := range losses {
		out = append(out, &claims.Claim{
			Ultimate:       l.ultimate,
			LineOfBusiness: l.line,
			Origin:         string(l.line),
		})
	}
	return out
}
