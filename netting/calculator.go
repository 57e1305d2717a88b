/*
Package netting sums gross and ceded underwriting records for a period and
derives the net view, computing only what a consumer asked for.

PURPOSE:
  A period hands the calculator every gross record and every ceded record
  produced by the contracts. Three outputs may be read downstream:
    - gross: one aggregate record
    - ceded: the ceded records themselves, for drill-down
    - net:   gross aggregate minus ceded aggregate
  Aggregation is linear in the number of records and runs once per period
  per iteration, so outputs nobody reads are skipped.

DEMAND:
  The caller states up front which outputs it consumes through Demand. The
  calculator never guesses.

RULES:
  1. Ceded records without gross records is a configuration error
  2. Gross is aggregated when gross or net is wanted
  3. Ceded is aggregated when ceded or net is wanted and there is any
  4. Net is produced when wanted and there is anything to net

SEE ALSO:
  - underwriting/aggregate.go: Aggregate, Net
*/
package netting

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/actuarial/reinsurance-engine/underwriting"
)

// =============================================================================
// DEMAND
// =============================================================================

// Demand tells which outputs have a consumer.
type Demand interface {
	WantsGross() bool
	WantsCeded() bool
	WantsNet() bool
}

// Channels is a plain Demand.
type Channels struct {
	Gross bool `json:"gross"`
	Ceded bool `json:"ceded"`
	Net   bool `json:"net"`
}

// AllChannels demands every output.
var AllChannels = Channels{Gross: true, Ceded: true, Net: true}

func (c Channels) WantsGross() bool { return c.Gross }
func (c Channels) WantsCeded() bool { return c.Ceded }
func (c Channels) WantsNet() bool   { return c.Net }

// =============================================================================
// RESULT
// =============================================================================

// Result holds the outputs of one period. Outputs that were not demanded,
// or had nothing to work on, are nil.
type Result struct {
	Gross *underwriting.Record

	// Ceded is the ceded input list, not an aggregate.
	Ceded []*underwriting.Record

	// CededTotal is the ceded aggregate used for the net.
	CededTotal *underwriting.Record

	Net *underwriting.Record
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator is safe for concurrent use; it holds no per-period state.
type Calculator struct {
	mode   underwriting.NetMode
	logger *zap.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithMode sets how policy count disagreements are handled. Default NetStrict.
func WithMode(mode underwriting.NetMode) Option {
	return func(c *Calculator) { c.mode = mode }
}

// WithLogger sets the logger used for soft mismatches and gating decisions.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Calculator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{mode: underwriting.NetStrict, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the configured net mode.
func (c *Calculator) Mode() underwriting.NetMode {
	return c.mode
}

// Calculate produces the demanded outputs for one period.
func (c *Calculator) Calculate(gross, ceded []*underwriting.Record, demand Demand) (*Result, error) {
	if len(gross) == 0 && len(ceded) > 0 {
		return nil, fmt.Errorf("netting %d ceded records: %w", len(ceded), underwriting.ErrCededWithoutGross)
	}

	wantGross, wantCeded, wantNet := demand.WantsGross(), demand.WantsCeded(), demand.WantsNet()
	result := &Result{}

	if len(gross) > 0 && (wantGross || wantNet) {
		result.Gross = underwriting.Aggregate(gross)
	} else {
		c.logger.Debug("gross aggregate skipped",
			zap.Int("gross_records", len(gross)),
			zap.Bool("want_gross", wantGross),
			zap.Bool("want_net", wantNet))
	}

	if (wantCeded || wantNet) && len(ceded) > 0 {
		result.CededTotal = underwriting.Aggregate(ceded)
		result.Ceded = ceded
	}

	if wantNet && (len(gross) > 0 || len(ceded) > 0) {
		net, err := c.net(result.Gross, result.CededTotal)
		if err != nil {
			return nil, err
		}
		result.Net = net
	}

	// gross was computed for the net only
	if !wantGross {
		result.Gross = nil
	}
	if !wantCeded {
		result.Ceded = nil
	}
	return result, nil
}

func (c *Calculator) net(gross, ceded *underwriting.Record) (*underwriting.Record, error) {
	if ceded != nil && c.mode == underwriting.NetLenient {
		if err := underwriting.CheckPolicyCounts(gross, ceded); err != nil {
			c.logger.Warn("net keeps gross policy count",
				zap.Float64("gross_policies", gross.NumberOfPolicies),
				zap.Float64("ceded_policies", ceded.NumberOfPolicies),
				zap.Error(err))
		}
	}
	net, err := underwriting.Net(gross, ceded, c.mode)
	if err != nil {
		return nil, fmt.Errorf("netting period: %w", err)
	}
	return net, nil
}

// ElementwiseNet nets each gross record against its lineage match in ceded
// under the calculator's mode.
func (c *Calculator) ElementwiseNet(gross, ceded []*underwriting.Record) ([]*underwriting.Record, error) {
	net, err := underwriting.ElementwiseNet(gross, ceded, c.mode)
	if err != nil {
		return nil, fmt.Errorf("elementwise net: %w", err)
	}
	return net, nil
}
