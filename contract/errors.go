package contract

import "errors"

var (
	// ErrNoCommissionStrategy is returned by Process when no commission strategy is set.
	ErrNoCommissionStrategy = errors.New("a commission strategy must be set")

	// ErrNoCover is returned by Process when no cover is set.
	ErrNoCover = errors.New("a cover must be set")

	// ErrNoCeding is returned by Process when no ceding strategy is set.
	ErrNoCeding = errors.New("a ceding strategy must be set")

	// ErrInvalidShare is returned for quota shares outside [0, 1].
	ErrInvalidShare = errors.New("quota share must be between 0 and 1")
)

// IsConfiguration reports whether err means the contract is not set up.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrNoCommissionStrategy) ||
		errors.Is(err, ErrNoCover) ||
		errors.Is(err, ErrNoCeding) ||
		errors.Is(err, ErrInvalidShare)
}
