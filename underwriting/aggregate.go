/*
aggregate.go - List-level reductions and netting

PURPOSE:
  Reduces a list of records to one combined record and nets two lists
  against each other, either positionally or by lineage.

EMPTY INPUT:
  Aggregate of an empty list is nil. Callers treat nil as the zero record.

EXPOSURE BASE OF AN AGGREGATE:
  Aggregate sets the result's base to the LAST record's base, not to a
  consensus. Plus alone would clear it on the first disagreement; Aggregate
  overrides that after every step.

NET MODES:
  NetStrict fails with a *PolicyCountMismatchError when a present ceded
  record disagrees with its gross record on policy count. NetLenient keeps
  the gross count without complaint. A missing ceded record (nothing ceded)
  is never a mismatch.
*/
package underwriting

// =============================================================================
// NET MODE
// =============================================================================

// NetMode selects how policy count disagreements are treated when netting.
type NetMode int

const (
	NetStrict NetMode = iota
	NetLenient
)

func (m NetMode) String() string {
	if m == NetLenient {
		return "lenient"
	}
	return "strict"
}

// Net computes gross minus ceded under mode. A nil ceded means nothing was
// ceded and is never checked.
func Net(gross, ceded *Record, mode NetMode) (*Record, error) {
	if ceded == nil || mode == NetLenient {
		return NetOfUnchecked(gross, ceded), nil
	}
	return NetOf(gross, ceded)
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Aggregate folds records left to right with Plus. It returns nil for an
// empty list. Nil entries are skipped.
func Aggregate(records []*Record) *Record {
	var sum *Record
	for _, r := range records {
		if r == nil {
			continue
		}
		if sum == nil {
			sum = Zero()
		}
		sum.Plus(r)
		sum.ExposureBase = r.ExposureBase
	}
	return sum
}

// NetAggregate aggregates both lists and nets the results.
// Two empty lists give a zero record.
func NetAggregate(gross, ceded []*Record, mode NetMode) (*Record, error) {
	return Net(Aggregate(gross), Aggregate(ceded), mode)
}

// =============================================================================
// PAIRWISE LIST OPERATIONS
// =============================================================================

// Difference returns a copy of gross minus ceded without any policy override.
func Difference(gross, ceded *Record) *Record {
	return gross.Copy().Minus(ceded)
}

// ElementwiseDifference subtracts subtrahend[i] from minuend[i] IN PLACE and
// returns the minuend records in order. Use it only when the caller guarantees
// positional correspondence.
func ElementwiseDifference(minuend, subtrahend []*Record) ([]*Record, error) {
	if len(minuend) != len(subtrahend) {
		return nil, &LengthMismatchError{Minuend: len(minuend), Subtrahend: len(subtrahend)}
	}
	out := make([]*Record, len(minuend))
	for i, m := range minuend {
		out[i] = m.Minus(subtrahend[i])
	}
	return out, nil
}

// ElementwiseNet nets every minuend record against its lineage match in
// subtrahend. An unmatched minuend record is emitted as a copy whose lineage
// points at the minuend record itself: fully net, nothing ceded.
// The result keeps minuend's order and size.
func ElementwiseNet(minuend, subtrahend []*Record, mode NetMode) ([]*Record, error) {
	if len(minuend) != len(subtrahend) {
		return nil, &LengthMismatchError{Minuend: len(minuend), Subtrahend: len(subtrahend)}
	}
	out := make([]*Record, 0, len(minuend))
	for _, gross := range minuend {
		ceded := Find(subtrahend, gross)
		if ceded == nil {
			net := gross.Copy()
			net.Original = gross.Key
			out = append(out, net)
			continue
		}
		net, err := Net(gross, ceded, mode)
		if err != nil {
			return nil, err
		}
		out = append(out, net)
	}
	return out, nil
}

// =============================================================================
// FILTERS AND COPIES
// =============================================================================

// WithZeroCommission returns copies of records with commission cleared.
func WithZeroCommission(records []*Record) []*Record {
	out := make([]*Record, len(records))
	for i, r := range records {
		c := r.Copy()
		c.Commission = 0
		out[i] = c
	}
	return out
}

// SegregateByContract splits records by whether their contract is listed.
// An empty contract list accepts everything.
func SegregateByContract(records []*Record, contracts []Marker) (accepted, rejected []*Record) {
	if len(contracts) == 0 {
		return append([]*Record(nil), records...), nil
	}
	listed := markerSet(contracts)
	for _, r := range records {
		if listed[r.ReinsuranceContract] {
			accepted = append(accepted, r)
		} else {
			rejected = append(rejected, r)
		}
	}
	return accepted, rejected
}

// FilterByLineOfBusiness keeps records whose line is listed.
// An empty list keeps everything.
func FilterByLineOfBusiness(records []*Record, lines []Marker) []*Record {
	if len(lines) == 0 {
		return append([]*Record(nil), records...)
	}
	listed := markerSet(lines)
	var out []*Record
	for _, r := range records {
		if listed[r.LineOfBusiness] {
			out = append(out, r)
		}
	}
	return out
}

func markerSet(markers []Marker) map[Marker]bool {
	set := make(map[Marker]bool, len(markers))
	for _, m := range markers {
		set[m] = true
	}
	return set
}
