package commission

import (
	"sync"

	"github.com/actuarial/reinsurance-engine/claims"
	"github.com/actuarial/reinsurance-engine/underwriting"
)

// =============================================================================
// STRATEGY
// =============================================================================

// Strategy sets the commission of a contract's ceded records for one period.
// Records are modified in place.
type Strategy interface {
	CalculateCommission(cs []*claims.Claim, records []*underwriting.Record, isFirstPeriod, isAdditive bool) error
}

var (
	_ Strategy = (*SlidingCommission)(nil)
	_ Strategy = FixedCommission{}
	_ Strategy = NoCommission{}
)

// =============================================================================
// SLIDING COMMISSION
// =============================================================================

// SlidingCommission rates commission from the period's loss ratio.
//
// It starts unconfigured and compiles its bands once, either explicitly via
// Compile or on the first CalculateCommission. A failed compilation is
// remembered and returned on every later call.
type SlidingCommission struct {
	bands []Band

	once     sync.Once
	schedule *Schedule
	err      error
}

// NewSlidingCommission returns an uncompiled strategy over bands.
func NewSlidingCommission(bands []Band) *SlidingCommission {
	return &SlidingCommission{bands: append([]Band(nil), bands...)}
}

// NewSlidingCommissionFromSchedule wraps an already compiled schedule, e.g.
// one shared by parallel iterations.
func NewSlidingCommissionFromSchedule(s *Schedule) *SlidingCommission {
	sc := &SlidingCommission{bands: s.Bands(), schedule: s}
	sc.once.Do(func() {})
	return sc
}

// Compile builds the schedule if that has not happened yet.
func (s *SlidingCommission) Compile() error {
	s.once.Do(func() {
		s.schedule, s.err = Compile(s.bands)
	})
	return s.err
}

// Compiled reports whether a schedule is available.
func (s *SlidingCommission) Compiled() bool {
	return s.Compile() == nil && s.schedule != nil
}

// Schedule compiles if needed and returns the shared schedule.
func (s *SlidingCommission) Schedule() (*Schedule, error) {
	if err := s.Compile(); err != nil {
		return nil, err
	}
	return s.schedule, nil
}

// Rate is the commission rate for a loss ratio.
func (s *SlidingCommission) Rate(lossRatio float64) (float64, error) {
	schedule, err := s.Schedule()
	if err != nil {
		return 0, err
	}
	return schedule.Rate(lossRatio)
}

// CalculateCommission rates the loss ratio of cs over records and applies it.
// A period without records has nothing to rate. isFirstPeriod does not
// affect a sliding commission.
func (s *SlidingCommission) CalculateCommission(cs []*claims.Claim, records []*underwriting.Record, _ bool, isAdditive bool) error {
	schedule, err := s.Schedule()
	if err != nil {
		return err
	}
	if !hasRecords(records) {
		return nil
	}
	lossRatio, err := LossRatio(cs, records)
	if err != nil {
		return err
	}
	rate, err := schedule.Rate(lossRatio)
	if err != nil {
		return err
	}
	ApplyCommission(rate, records, isAdditive)
	return nil
}

func hasRecords(records []*underwriting.Record) bool {
	for _, r := range records {
		if r != nil {
			return true
		}
	}
	return false
}

// =============================================================================
// FIXED AND NO COMMISSION
// =============================================================================

// FixedCommission applies one rate regardless of losses.
type FixedCommission struct {
	Rate float64
}

func (f FixedCommission) CalculateCommission(_ []*claims.Claim, records []*underwriting.Record, _ bool, isAdditive bool) error {
	ApplyCommission(f.Rate, records, isAdditive)
	return nil
}

// NoCommission leaves records untouched.
type NoCommission struct{}

func (NoCommission) CalculateCommission([]*claims.Claim, []*underwriting.Record, bool, bool) error {
	return nil
}
