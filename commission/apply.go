package commission

import (
	"math"

	"github.com/actuarial/reinsurance-engine/claims"
	"github.com/actuarial/reinsurance-engine/underwriting"
)

// LossRatio is total ultimate claims over total written premium.
// A zero premium total returns ErrZeroPremium instead of an infinite ratio.
func LossRatio(cs []*claims.Claim, records []*underwriting.Record) (float64, error) {
	totalClaims := claims.TotalUltimate(cs)
	var totalPremium float64
	for _, r := range records {
		if r != nil {
			totalPremium += r.PremiumWritten
		}
	}
	if totalPremium == 0 {
		return 0, &LossRatioError{Claims: totalClaims, Premium: totalPremium, Err: ErrZeroPremium}
	}
	lr := totalClaims / totalPremium
	if math.IsNaN(lr) {
		return 0, &LossRatioError{Claims: totalClaims, Premium: totalPremium, Err: ErrUndefinedLossRatio}
	}
	return lr, nil
}

// ApplyCommission sets commission from rate on every record, in place.
//
//	additive: commission -= premiumWritten * rate
//	replace:  commission  = -premiumWritten * rate
func ApplyCommission(rate float64, records []*underwriting.Record, additive bool) {
	for _, r := range records {
		if r == nil {
			continue
		}
		if additive {
			r.Commission -= r.PremiumWritten * rate
		} else {
			r.Commission = -r.PremiumWritten * rate
		}
	}
}
