/*
errors.go - Error types for commission rating

ERROR CATEGORIES:
  1. Configuration errors - band tables that cannot be compiled
  2. Evaluation errors - loss ratios that cannot be rated

USAGE:
  rate, err := schedule.Rate(lossRatio)
  if errors.Is(err, commission.ErrUndefinedLossRatio) { ... }

  if commission.IsConfiguration(err) {
      // reject the band table, do not retry
  }
*/
package commission

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnsortedBands is returned when lower loss ratios are not strictly ascending.
	ErrUnsortedBands = errors.New("commission bands must be given in strictly ascending loss ratio order")

	// ErrInvalidBand is returned for NaN or infinite band values.
	ErrInvalidBand = errors.New("invalid commission band")

	// ErrZeroPremium is returned when a loss ratio is requested over no premium.
	ErrZeroPremium = errors.New("loss ratio undefined: total premium is zero")

	// ErrUndefinedLossRatio is returned when a loss ratio is NaN.
	ErrUndefinedLossRatio = errors.New("loss ratio is undefined")

	// ErrNotCompiled is returned when an empty Schedule is evaluated.
	ErrNotCompiled = errors.New("commission schedule not compiled")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// BandOrderError points at the first row that breaks ascending order.
type BandOrderError struct {
	Row      int
	Previous float64
	Lower    float64
}

func (e *BandOrderError) Error() string {
	return fmt.Sprintf("commission band %d: lower loss ratio %v does not exceed previous %v", e.Row, e.Lower, e.Previous)
}

func (e *BandOrderError) Unwrap() error {
	return ErrUnsortedBands
}

// BandValueError points at a row holding a non-finite value.
type BandValueError struct {
	Row   int
	Field string
	Value float64
}

func (e *BandValueError) Error() string {
	return fmt.Sprintf("commission band %d: %s is %v", e.Row, e.Field, e.Value)
}

func (e *BandValueError) Unwrap() error {
	return ErrInvalidBand
}

// LossRatioError carries the totals a loss ratio was computed from.
type LossRatioError struct {
	Claims  float64
	Premium float64
	Err     error
}

func (e *LossRatioError) Error() string {
	return fmt.Sprintf("%v (claims %v, premium %v)", e.Err, e.Claims, e.Premium)
}

func (e *LossRatioError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfiguration reports whether err comes from a band table.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrUnsortedBands) || errors.Is(err, ErrInvalidBand)
}

// IsUnrateable reports whether err means a period's loss ratio could not be rated.
func IsUnrateable(err error) bool {
	return errors.Is(err, ErrZeroPremium) || errors.Is(err, ErrUndefinedLossRatio)
}
