/*
algebra.go - Value-level operations on a single record

PURPOSE:
  Plus, Minus and Scale are closed over Record and mutate the receiver,
  returning it for chaining. NetOf builds a fresh net record from a gross and
  a ceded record without touching either.

SUM INSURED:
  SumInsured is a weighted average. Combining two records recombines the
  totals (policies * average) and divides by the new policy count. When the
  new count is not positive the raw total is kept, so a record that drops to
  zero policies carries a total instead of an average.

EXPOSURE BASE:
  Plus clears the base on any disagreement. Minus only clears it when the
  minuend had one and the subtrahend differs.

NET POLICY COUNT:
  A net record keeps the gross policy count: the net view describes the gross
  contract population, not an arithmetic difference of counts. The single
  exception is a fully cancelled net (premium, commission and sum insured all
  zero), which carries no policies.

SEE ALSO:
  - aggregate.go: list-level operations built on these
  - errors.go: PolicyCountMismatchError
*/
package underwriting

import "math"

// =============================================================================
// COMBINE / SUBTRACT / SCALE
// =============================================================================

// Plus adds other into r. A nil other leaves r unchanged.
func (r *Record) Plus(other *Record) *Record {
	if other == nil {
		return r
	}
	total := r.NumberOfPolicies*r.SumInsured + other.NumberOfPolicies*other.SumInsured
	r.NumberOfPolicies += other.NumberOfPolicies
	r.SumInsured = average(total, r.NumberOfPolicies)
	r.MaxSumInsured = math.Max(r.MaxSumInsured, other.MaxSumInsured)
	if r.ExposureBase != other.ExposureBase {
		r.ExposureBase = ExposureUndefined
	}

	r.PremiumWritten += other.PremiumWritten
	r.FixedPremium += other.FixedPremium
	r.VariablePremium += other.VariablePremium
	r.Commission += other.Commission
	r.FixedCommission += other.FixedCommission
	r.VariableCommission += other.VariableCommission
	return r
}

// Minus subtracts other from r. A nil other leaves r unchanged.
func (r *Record) Minus(other *Record) *Record {
	if other == nil {
		return r
	}
	total := r.NumberOfPolicies*r.SumInsured - other.NumberOfPolicies*other.SumInsured
	r.NumberOfPolicies -= other.NumberOfPolicies
	r.SumInsured = average(total, r.NumberOfPolicies)
	if r.ExposureBase != ExposureUndefined && r.ExposureBase != other.ExposureBase {
		r.ExposureBase = ExposureUndefined
	}

	r.PremiumWritten -= other.PremiumWritten
	r.FixedPremium -= other.FixedPremium
	r.VariablePremium -= other.VariablePremium
	r.Commission -= other.Commission
	r.FixedCommission -= other.FixedCommission
	r.VariableCommission -= other.VariableCommission
	r.dropCancelledPolicies()
	return r
}

// Scale multiplies every monetary and size field by factor.
// A zero factor also removes all policies.
func (r *Record) Scale(factor float64) *Record {
	r.MaxSumInsured *= factor
	r.SumInsured *= factor
	if factor == 0 {
		r.NumberOfPolicies = 0
	}

	r.PremiumWritten *= factor
	r.FixedPremium *= factor
	r.VariablePremium *= factor
	r.Commission *= factor
	r.FixedCommission *= factor
	r.VariableCommission *= factor
	return r
}

// SetZero clears premium, commission and exposure figures. Lineage and tags stay.
func (r *Record) SetZero() {
	r.NumberOfPolicies = 0
	r.SumInsured = 0
	r.MaxSumInsured = 0
	r.PremiumWritten = 0
	r.Commission = 0
}

// ScaleValue returns the quantity a figure expressed against base is multiplied by.
func (r *Record) ScaleValue(base ExposureBase) float64 {
	switch base {
	case ExposureAbsolute:
		return 1
	case ExposurePremiumWritten:
		return r.PremiumWritten
	case ExposureNumberOfPolicies:
		return r.NumberOfPolicies
	}
	return 0
}

// SameContent compares exposure figures, premium and commission.
func SameContent(a, b *Record) bool {
	return a.NumberOfPolicies == b.NumberOfPolicies &&
		a.SumInsured == b.SumInsured &&
		a.MaxSumInsured == b.MaxSumInsured &&
		a.ExposureBase == b.ExposureBase &&
		a.PremiumWritten == b.PremiumWritten &&
		a.Commission == b.Commission
}

// =============================================================================
// NET
// =============================================================================

// CheckPolicyCounts returns a *PolicyCountMismatchError when gross and ceded
// disagree on the number of policies.
func CheckPolicyCounts(gross, ceded *Record) error {
	if gross.NumberOfPolicies != ceded.NumberOfPolicies {
		return &PolicyCountMismatchError{
			Gross:  gross.NumberOfPolicies,
			Ceded:  ceded.NumberOfPolicies,
			Origin: ceded.Origin,
		}
	}
	return nil
}

// NetOf returns gross minus ceded as a new record after checking that both
// describe the same policy population.
func NetOf(gross, ceded *Record) (*Record, error) {
	if gross == nil {
		gross = Zero()
	}
	if ceded == nil {
		ceded = Zero()
	}
	if err := CheckPolicyCounts(gross, ceded); err != nil {
		return nil, err
	}
	return NetOfUnchecked(gross, ceded), nil
}

// NetOfUnchecked is NetOf without the policy count check.
// The net record inherits the ceded record's lineage.
func NetOfUnchecked(gross, ceded *Record) *Record {
	if gross == nil {
		gross = Zero()
	}
	if ceded == nil {
		ceded = Zero()
	}
	net := gross.Copy()
	net.Key = NewLineageKey()
	net.Original = ceded.Original
	net.Minus(ceded)

	net.NumberOfPolicies = gross.NumberOfPolicies
	net.SumInsured = average(
		gross.SumInsured*gross.NumberOfPolicies-ceded.SumInsured*ceded.NumberOfPolicies,
		net.NumberOfPolicies)
	net.dropCancelledPolicies()
	return net
}

// =============================================================================
// HELPERS
// =============================================================================

func average(total, policies float64) float64 {
	if policies > 0 {
		return total / policies
	}
	return total
}

func (r *Record) dropCancelledPolicies() {
	if r.PremiumWritten == 0 && r.Commission == 0 && r.SumInsured == 0 {
		r.NumberOfPolicies = 0
	}
}
