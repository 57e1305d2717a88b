package claims_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/actuarial/reinsurance-engine/claims"
	"github.com/actuarial/reinsurance-engine/underwriting"
)

func TestTotalUltimate(t *testing.T) {
	cs := []*claims.Claim{{Ultimate: 10}, nil, {Ultimate: 32.5}}

	assert.InDelta(t, 42.5, claims.TotalUltimate(cs), 1e-9)
	assert.Equal(t, 0.0, claims.TotalUltimate(nil))
}

func TestFilterByLineOfBusiness(t *testing.T) {
	motor := &claims.Claim{Ultimate: 1, LineOfBusiness: "motor"}
	fire := &claims.Claim{Ultimate: 2, LineOfBusiness: "fire"}
	all := []*claims.Claim{motor, fire}

	assert.Equal(t, []*claims.Claim{fire}, claims.FilterByLineOfBusiness(all, []underwriting.Marker{"fire"}))
	assert.Len(t, claims.FilterByLineOfBusiness(all, nil), 2)
	assert.Empty(t, claims.FilterByLineOfBusiness(all, []underwriting.Marker{"marine"}))
}

func TestLinesOfBusiness(t *testing.T) {
	cs := []*claims.Claim{
		{LineOfBusiness: "fire"},
		{LineOfBusiness: "motor"},
		{LineOfBusiness: "fire"},
		{},
	}

	assert.Equal(t, []underwriting.Marker{"fire", "motor"}, claims.LinesOfBusiness(cs))
}
