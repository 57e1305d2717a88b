/*
errors.go - Error types for the underwriting algebra

ERROR CATEGORIES:
  1. Configuration errors - ceded information without gross information
  2. Data integrity errors - inconsistent slices produced upstream
     (policy count mismatch, list length mismatch)

USAGE:
  net, err := underwriting.NetOf(gross, ceded)
  if errors.Is(err, underwriting.ErrPolicyCountMismatch) {
      var mismatch *underwriting.PolicyCountMismatchError
      errors.As(err, &mismatch)
  }
*/
package underwriting

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCededWithoutGross is returned when ceded records arrive for a period
	// that has no gross records.
	ErrCededWithoutGross = errors.New("ceded underwriting information without gross underwriting information")

	// ErrPolicyCountMismatch is returned when a gross and a ceded record
	// describe different policy populations.
	ErrPolicyCountMismatch = errors.New("policy count mismatch between gross and ceded")

	// ErrLengthMismatch is returned by positional list operations when the
	// lists differ in length.
	ErrLengthMismatch = errors.New("record lists differ in length")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// PolicyCountMismatchError carries both counts.
type PolicyCountMismatchError struct {
	Gross  float64
	Ceded  float64
	Origin string // origin of the ceded record, if known
}

func (e *PolicyCountMismatchError) Error() string {
	if e.Origin != "" {
		return fmt.Sprintf("policy count mismatch: gross %v, ceded %v (from %s)", e.Gross, e.Ceded, e.Origin)
	}
	return fmt.Sprintf("policy count mismatch: gross %v, ceded %v", e.Gross, e.Ceded)
}

func (e *PolicyCountMismatchError) Unwrap() error {
	return ErrPolicyCountMismatch
}

// LengthMismatchError carries both list lengths.
type LengthMismatchError struct {
	Minuend    int
	Subtrahend int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("record lists differ in length: minuend %d, subtrahend %d", e.Minuend, e.Subtrahend)
}

func (e *LengthMismatchError) Unwrap() error {
	return ErrLengthMismatch
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsDataIntegrity reports whether err signals inconsistent upstream slices.
func IsDataIntegrity(err error) bool {
	return errors.Is(err, ErrPolicyCountMismatch) || errors.Is(err, ErrLengthMismatch)
}

// IsConfiguration reports whether err signals a wiring or data-setup problem.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrCededWithoutGross)
}
