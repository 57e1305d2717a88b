/*
Package contract runs one reinsurance contract for a period: it filters the
gross inputs by cover, lets a ceding strategy slice out the ceded share, rates
commission on the ceded records and derives the outputs that were asked for.

PIPELINE:
  1. Cover:      which claims and records the contract sees
     Inuring:    covered records are netted of what listed earlier contracts
                 already ceded from them, matched by lineage
  2. Ceding:     ceded claims and records, each ceded record derived from its
                 gross record so lineage survives
  3. Commission: the configured strategy sets commission on ceded records
  4. Outputs:    net after cover (lineage matched), financials

Limits, layers and attachment points are the ceding strategy's business.
QuotaShare is the only strategy shipped here.

SEE ALSO:
  - commission/: commission strategies
  - underwriting/aggregate.go: ElementwiseNet
*/
package contract

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/actuarial/reinsurance-engine/claims"
	"github.com/actuarial/reinsurance-engine/commission"
	"github.com/actuarial/reinsurance-engine/underwriting"
)

// =============================================================================
// CEDING
// =============================================================================

// Ceding slices the ceded share out of covered claims and records.
// Every ceded record must be derived from its gross record.
type Ceding interface {
	Cede(contract underwriting.Marker, cs []*claims.Claim, records []*underwriting.Record) ([]*claims.Claim, []*underwriting.Record, error)
}

// QuotaShare cedes a fixed share of every claim and record.
type QuotaShare struct {
	Share float64
}

func (q QuotaShare) Cede(contract underwriting.Marker, cs []*claims.Claim, records []*underwriting.Record) ([]*claims.Claim, []*underwriting.Record, error) {
	if q.Share < 0 || q.Share > 1 {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidShare, q.Share)
	}
	cededClaims := make([]*claims.Claim, 0, len(cs))
	for _, c := range cs {
		if c == nil {
			continue
		}
		ceded := *c
		ceded.Ultimate *= q.Share
		ceded.ReinsuranceContract = contract
		cededClaims = append(cededClaims, &ceded)
	}
	cededRecords := make([]*underwriting.Record, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		// policies stay: the ceded share covers the same policies
		ceded := r.Derive()
		ceded.SumInsured *= q.Share
		ceded.MaxSumInsured *= q.Share
		ceded.PremiumWritten *= q.Share
		ceded.FixedPremium *= q.Share
		ceded.VariablePremium *= q.Share
		ceded.Commission *= q.Share
		ceded.FixedCommission *= q.Share
		ceded.VariableCommission *= q.Share
		ceded.ReinsuranceContract = contract
		ceded.Origin = string(contract)
		cededRecords = append(cededRecords, ceded)
	}
	return cededClaims, cededRecords, nil
}

// =============================================================================
// CONTRACT
// =============================================================================

// Outputs selects what Process derives beyond the ceded records.
type Outputs struct {
	NetAfterCover bool
	Financials    bool
}

// Input is one period's gross view.
type Input struct {
	Claims  []*claims.Claim
	Records []*underwriting.Record

	// Ceded holds records ceded earlier in the period by other contracts.
	// Only those of the contract's InuringOn list are used.
	Ceded []*underwriting.Record

	IsFirstPeriod bool
	Want          Outputs
}

// Financials summarises what the contract ceded.
type Financials struct {
	CededPremium    float64 `json:"ceded_premium"`
	CededCommission float64 `json:"ceded_commission"`
	CededClaim      float64 `json:"ceded_claim"`
}

// Output is one period's result. NetAfterCover and Financials are nil unless wanted.
type Output struct {
	CoveredClaims  []*claims.Claim
	CoveredRecords []*underwriting.Record
	CededClaims    []*claims.Claim
	CededRecords   []*underwriting.Record
	NetAfterCover  []*underwriting.Record
	Financials     *Financials
}

// Contract is a configured reinsurance contract.
type Contract struct {
	Name       underwriting.Marker
	Cover      *Cover
	Ceding     Ceding
	Commission commission.Strategy

	// Additive adds rated commission to commission already on the ceded
	// records instead of replacing it.
	Additive bool
	Mode     underwriting.NetMode

	// InuringOn lists contracts whose cessions are taken off the covered
	// records before this contract cedes. Empty means none. Claims are
	// not netted.
	InuringOn []underwriting.Marker

	Logger *zap.Logger
}

func (c *Contract) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Process runs the contract for one period.
func (c *Contract) Process(in Input) (*Output, error) {
	if c.Commission == nil {
		return nil, fmt.Errorf("contract %s: %w", c.Name, ErrNoCommissionStrategy)
	}
	if c.Cover == nil {
		return nil, fmt.Errorf("contract %s: %w", c.Name, ErrNoCover)
	}
	if c.Ceding == nil {
		return nil, fmt.Errorf("contract %s: %w", c.Name, ErrNoCeding)
	}

	out := &Output{}
	out.CoveredClaims, out.CoveredRecords = c.Cover.Filter(in.Claims, in.Records)

	if len(c.InuringOn) > 0 {
		inuring, _ := underwriting.SegregateByContract(in.Ceded, c.InuringOn)
		covered, err := netOfInuring(out.CoveredRecords, inuring, c.Mode)
		if err != nil {
			return nil, fmt.Errorf("contract %s inuring: %w", c.Name, err)
		}
		out.CoveredRecords = covered
	}

	cededClaims, cededRecords, err := c.Ceding.Cede(c.Name, out.CoveredClaims, out.CoveredRecords)
	if err != nil {
		return nil, fmt.Errorf("contract %s: %w", c.Name, err)
	}
	out.CededClaims, out.CededRecords = cededClaims, cededRecords

	if err := c.Commission.CalculateCommission(cededClaims, cededRecords, in.IsFirstPeriod, c.Additive); err != nil {
		return nil, fmt.Errorf("contract %s commission: %w", c.Name, err)
	}

	if in.Want.NetAfterCover {
		net, err := underwriting.ElementwiseNet(out.CoveredRecords, cededRecords, c.Mode)
		if err != nil {
			return nil, fmt.Errorf("contract %s net after cover: %w", c.Name, err)
		}
		out.NetAfterCover = net
	}

	if in.Want.Financials {
		out.Financials = financials(cededClaims, cededRecords)
	}

	c.logger().Debug("contract processed",
		zap.String("contract", string(c.Name)),
		zap.String("cover", c.Cover.Kind.String()),
		zap.Int("covered_records", len(out.CoveredRecords)),
		zap.Int("covered_claims", len(out.CoveredClaims)))
	return out, nil
}

// netOfInuring nets every record against the inuring cession derived from
// it. Records without one are kept as they are.
func netOfInuring(records, inuring []*underwriting.Record, mode underwriting.NetMode) ([]*underwriting.Record, error) {
	if len(inuring) == 0 {
		return records, nil
	}
	out := make([]*underwriting.Record, 0, len(records))
	for _, r := range records {
		ceded := underwriting.Find(inuring, r)
		if ceded == nil {
			out = append(out, r)
			continue
		}
		net, err := underwriting.Net(r, ceded, mode)
		if err != nil {
			return nil, err
		}
		out = append(out, net)
	}
	return out, nil
}

func financials(cs []*claims.Claim, records []*underwriting.Record) *Financials {
	f := &Financials{CededClaim: claims.TotalUltimate(cs)}
	if total := underwriting.Aggregate(records); total != nil {
		f.CededPremium = -total.PremiumWritten
		f.CededCommission = total.Commission
	}
	return f
}
