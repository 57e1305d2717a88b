/*
Package commission rates ceded commission from the loss ratio of a period.

PURPOSE:
  A sliding commission is a left-continuous step function of the loss ratio.
  Each band row gives the lower loss ratio from which its rate applies; the
  band ends where the next one starts and the last band runs to +Inf. A band
  (-Inf, 0) is always prepended, so loss ratios below the first configured
  band earn no commission.

KEY CONCEPTS:
  - Band: one (lower loss ratio, rate) row
  - Schedule: the compiled step function, read-only after Compile
  - Strategy: how a contract turns claims and ceded records into commission

LOSS RATIO EDGE CASES:
  - zero total premium: ErrZeroPremium, never a silent +Inf
  - NaN: ErrUndefinedLossRatio
  - +Inf (reachable only through Rate directly): highest band
  - -Inf: the implicit zero band

SHARING:
  A Schedule never changes after Compile. Parallel iterations may share one
  Schedule; they must not share record lists.

SEE ALSO:
  - strategy.go: SlidingCommission, FixedCommission, NoCommission
  - apply.go: LossRatio, ApplyCommission
*/
package commission

import (
	"math"
	"sort"
)

// Band is one row of a sliding commission table.
type Band struct {
	LowerLossRatio float64 `json:"loss_ratio" yaml:"loss_ratio"`
	Rate           float64 `json:"commission" yaml:"commission"`
}

// Schedule is a compiled band table.
// The zero value is not compiled and rejects every evaluation.
type Schedule struct {
	lowers []float64
	rates  []float64
}

// Compile validates bands and builds the step function.
// Lower bounds must be finite and strictly ascending; rates must be finite.
func Compile(bands []Band) (*Schedule, error) {
	s := &Schedule{
		lowers: make([]float64, 0, len(bands)+1),
		rates:  make([]float64, 0, len(bands)+1),
	}
	s.lowers = append(s.lowers, math.Inf(-1))
	s.rates = append(s.rates, 0)

	for i, b := range bands {
		if math.IsNaN(b.LowerLossRatio) || math.IsInf(b.LowerLossRatio, 0) {
			return nil, &BandValueError{Row: i, Field: "loss ratio", Value: b.LowerLossRatio}
		}
		if math.IsNaN(b.Rate) || math.IsInf(b.Rate, 0) {
			return nil, &BandValueError{Row: i, Field: "commission", Value: b.Rate}
		}
		prev := s.lowers[len(s.lowers)-1]
		if b.LowerLossRatio <= prev {
			return nil, &BandOrderError{Row: i, Previous: prev, Lower: b.LowerLossRatio}
		}
		s.lowers = append(s.lowers, b.LowerLossRatio)
		s.rates = append(s.rates, b.Rate)
	}
	return s, nil
}

// MustCompile is Compile for tables known to be valid. It panics on error.
func MustCompile(bands []Band) *Schedule {
	s, err := Compile(bands)
	if err != nil {
		panic(err)
	}
	return s
}

// Rate returns the rate of the band with the greatest lower bound <= lossRatio.
func (s *Schedule) Rate(lossRatio float64) (float64, error) {
	if s == nil || len(s.lowers) == 0 {
		return 0, ErrNotCompiled
	}
	if math.IsNaN(lossRatio) {
		return 0, ErrUndefinedLossRatio
	}
	// first index whose lower bound exceeds lossRatio; index 0 is -Inf so i >= 1
	i := sort.Search(len(s.lowers), func(i int) bool { return s.lowers[i] > lossRatio })
	return s.rates[i-1], nil
}

// Bands returns the configured rows, without the implicit first band.
func (s *Schedule) Bands() []Band {
	if s == nil || len(s.lowers) == 0 {
		return nil
	}
	out := make([]Band, 0, len(s.lowers)-1)
	for i := 1; i < len(s.lowers); i++ {
		out = append(out, Band{LowerLossRatio: s.lowers[i], Rate: s.rates[i]})
	}
	return out
}
