/*
Package portfolio produces gross underwriting records for a simulation:
risk band tables that describe a portfolio, and composers that slice those
records into lines of business.

RISK BANDS:
  Each table row (max sum insured, average sum insured, premium, number of
  policies) becomes one root record. The table does not change during a
  simulation, so the records are built in the first iteration, parked in a
  RecordStore and handed out as fresh copies in every iteration after that.

COMPOSER:
  A composer takes records from named origins and emits, for each configured
  origin, a new root record scaled by that origin's portion and tagged with
  the composer's line of business.

SEE ALSO:
  - underwriting/store.go: RecordStore
  - factory/: building tables from JSON and YAML
*/
package portfolio

import (
	"context"
	"fmt"

	"github.com/actuarial/reinsurance-engine/underwriting"
)

// RiskBand is one row of a risk band table.
type RiskBand struct {
	MaxSumInsured     float64 `json:"max_sum_insured" yaml:"max_sum_insured"`
	AverageSumInsured float64 `json:"average_sum_insured" yaml:"average_sum_insured"`
	Premium           float64 `json:"premium" yaml:"premium"`
	NumberOfPolicies  float64 `json:"number_of_policies" yaml:"number_of_policies"`
}

// RiskBands emits one record per band for every iteration.
type RiskBands struct {
	name  string
	bands []RiskBand
	store underwriting.RecordStore
}

func NewRiskBands(name string, bands []RiskBand, store underwriting.RecordStore) *RiskBands {
	return &RiskBands{
		name:  name,
		bands: append([]RiskBand(nil), bands...),
		store: store,
	}
}

// Name is the origin set on every emitted record.
func (rb *RiskBands) Name() string {
	return rb.name
}

func (rb *RiskBands) storeKey() string {
	return "risk-bands/" + rb.name
}

// Generate returns this iteration's records. The first iteration builds and
// stores them; later iterations read copies back. A store that lost the
// records is refilled.
func (rb *RiskBands) Generate(ctx context.Context, firstIteration bool) ([]*underwriting.Record, error) {
	if !firstIteration {
		records, ok, err := rb.store.Get(ctx, rb.storeKey())
		if err != nil {
			return nil, fmt.Errorf("risk bands %s: %w", rb.name, err)
		}
		if ok {
			return records, nil
		}
	}

	if err := rb.store.Put(ctx, rb.storeKey(), rb.build()); err != nil {
		return nil, fmt.Errorf("risk bands %s: %w", rb.name, err)
	}
	records, _, err := rb.store.Get(ctx, rb.storeKey())
	if err != nil {
		return nil, fmt.Errorf("risk bands %s: %w", rb.name, err)
	}
	return records, nil
}

func (rb *RiskBands) build() []*underwriting.Record {
	records := make([]*underwriting.Record, 0, len(rb.bands))
	for _, band := range rb.bands {
		r := underwriting.NewRecord()
		r.PremiumWritten = band.Premium
		r.MaxSumInsured = band.MaxSumInsured
		r.SumInsured = band.AverageSumInsured
		r.NumberOfPolicies = band.NumberOfPolicies
		r.Origin = rb.name
		records = append(records, r)
	}
	return records
}
