/*
Package underwriting provides the record algebra for premium, commission and
exposure figures flowing gross -> ceded -> net through reinsurance contracts.

PURPOSE:
  Every simulation period, upstream generators emit underwriting records.
  Contracts slice them into ceded shares, and aggregators recombine them into
  gross, ceded and net views. This package holds the arithmetic that makes
  those views consistent: combining, differencing, scaling and netting single
  records, matching records across lists, and aggregating lists.

KEY CONCEPTS IN THIS FILE (types.go):
  - Record: one slice of premium/commission/exposure information
  - LineageKey: opaque identity used to re-associate derived records
  - ExposureBase: what a record's figures are measured against
  - Marker: opaque line-of-business / contract tag

NUMERIC POLICIES:
  1. SumInsured is a policy-count weighted average, never a raw sum
  2. MaxSumInsured combines via max
  3. ExposureBase becomes undefined once combined records disagree
  4. A fully cancelled record carries no policies

LINEAGE:
  Records do not point at each other. Each record carries its own Key and the
  Key of the record it was derived from (Original). Roots point at themselves.
  Matching compares keys, so equality holds across copies.

SEE ALSO:
  - algebra.go: Plus, Minus, Scale, NetOf
  - matcher.go: Find
  - aggregate.go: Aggregate, NetAggregate, Difference, ElementwiseNet
*/
package underwriting

import (
	"fmt"

	"github.com/google/uuid"
)

// =============================================================================
// LINEAGE
// =============================================================================

// LineageKey identifies a record for matching purposes only.
// The zero key means "no lineage" and never matches anything.
type LineageKey uuid.UUID

// NoLineage is the zero key.
var NoLineage LineageKey

// NewLineageKey returns a fresh random key.
func NewLineageKey() LineageKey {
	return LineageKey(uuid.New())
}

func (k LineageKey) IsZero() bool   { return k == NoLineage }
func (k LineageKey) String() string { return uuid.UUID(k).String() }

// =============================================================================
// EXPOSURE BASE
// =============================================================================

// ExposureBase tells what a record's figures are measured against.
// The empty value is "undefined".
type ExposureBase string

const (
	ExposureUndefined        ExposureBase = ""
	ExposureAbsolute         ExposureBase = "absolute"
	ExposurePremiumWritten   ExposureBase = "premium_written"
	ExposureNumberOfPolicies ExposureBase = "number_of_policies"
)

// ParseExposureBase accepts the names above; "" and "undefined" map to ExposureUndefined.
func ParseExposureBase(s string) (ExposureBase, error) {
	switch ExposureBase(s) {
	case ExposureUndefined, "undefined":
		return ExposureUndefined, nil
	case ExposureAbsolute, ExposurePremiumWritten, ExposureNumberOfPolicies:
		return ExposureBase(s), nil
	}
	return ExposureUndefined, fmt.Errorf("unknown exposure base %q", s)
}

// =============================================================================
// MARKERS
// =============================================================================

// Marker is an opaque tag for a line of business or reinsurance contract.
// The engine never interprets it.
type Marker string

// =============================================================================
// RECORD
// =============================================================================

// Record is one slice of underwriting information for a period.
//
// Records are mutated in place by Plus, Minus and Scale. Callers that need
// to keep an operand intact take a Copy first.
type Record struct {
	PremiumWritten     float64
	FixedPremium       float64
	VariablePremium    float64
	Commission         float64
	FixedCommission    float64
	VariableCommission float64

	NumberOfPolicies float64
	SumInsured       float64 // policy-count weighted average
	MaxSumInsured    float64
	ExposureBase     ExposureBase

	LineOfBusiness      Marker
	ReinsuranceContract Marker

	// Origin names the producing component; diagnostics only.
	Origin string

	// Key is this record's identity, Original the identity of the record
	// it is ultimately derived from. Neither takes part in any arithmetic.
	Key      LineageKey
	Original LineageKey
}

// NewRecord returns an empty root record: fresh key, self lineage.
func NewRecord() *Record {
	key := NewLineageKey()
	return &Record{Key: key, Original: key}
}

// Zero returns the identity record used in place of missing aggregates.
// It carries no lineage.
func Zero() *Record {
	return &Record{}
}

// Copy returns an identical record, identity included.
func (r *Record) Copy() *Record {
	c := *r
	return &c
}

// Derive returns a copy with a fresh key that keeps r's lineage root.
// Contracts use it when slicing a ceded share out of a gross record.
func (r *Record) Derive() *Record {
	c := *r
	c.Key = NewLineageKey()
	if c.Original.IsZero() {
		c.Original = r.Key
	}
	return &c
}

// AsRoot returns a copy that starts a new lineage (fresh key, self reference).
func (r *Record) AsRoot() *Record {
	c := *r
	c.Key = NewLineageKey()
	c.Original = c.Key
	return &c
}

// IsRoot reports whether the record references itself.
func (r *Record) IsRoot() bool {
	return !r.Key.IsZero() && r.Key == r.Original
}

func (r *Record) String() string {
	origin := r.Origin
	if origin == "" {
		origin = "unnamed"
	}
	return fmt.Sprintf("premium: %v, commission: %v, origin: %s, original: %s",
		r.PremiumWritten, r.Commission, origin, r.Original)
}
