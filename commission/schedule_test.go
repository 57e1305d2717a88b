package commission_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuarial/reinsurance-engine/commission"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func standardBands() []commission.Band {
	return []commission.Band{
		{LowerLossRatio: 0.0, Rate: 0.0},
		{LowerLossRatio: 0.5, Rate: 0.2},
		{LowerLossRatio: 1.0, Rate: 0.5},
	}
}

// =============================================================================
// STEP FUNCTION TESTS
// =============================================================================

func TestSchedule_LeftContinuousSteps(t *testing.T) {
	// GIVEN: bands (0, 0), (0.5, 0.2), (1.0, 0.5)
	// WHEN: rating loss ratios around every boundary
	// THEN: each bound belongs to the band it starts, the last band is open ended

	s, err := commission.Compile(standardBands())
	require.NoError(t, err)

	cases := []struct {
		lossRatio float64
		want      float64
	}{
		{-1.0, 0.0},
		{0.0, 0.0},
		{0.3, 0.0},
		{0.4999999, 0.0},
		{0.5, 0.2},
		{0.99, 0.2},
		{1.0, 0.5},
		{5.0, 0.5},
	}
	for _, tc := range cases {
		got, err := s.Rate(tc.lossRatio)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "loss ratio %v", tc.lossRatio)
	}
}

func TestSchedule_ImplicitFirstBand(t *testing.T) {
	// GIVEN: a table whose first band starts above zero
	s, err := commission.Compile([]commission.Band{{LowerLossRatio: 0.2, Rate: 0.3}})
	require.NoError(t, err)

	// THEN: everything below it earns nothing
	rate, err := s.Rate(0.1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rate)

	rate, err = s.Rate(math.Inf(-1))
	require.NoError(t, err)
	assert.Equal(t, 0.0, rate)
}

func TestSchedule_EmptyTableRatesZero(t *testing.T) {
	s, err := commission.Compile(nil)
	require.NoError(t, err)

	rate, err := s.Rate(3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rate)
	assert.Empty(t, s.Bands())
}

func TestSchedule_InfiniteLossRatioIsHighestBand(t *testing.T) {
	s := commission.MustCompile(standardBands())

	rate, err := s.Rate(math.Inf(1))

	require.NoError(t, err)
	assert.Equal(t, 0.5, rate)
}

func TestSchedule_NaNLossRatioIsAnError(t *testing.T) {
	s := commission.MustCompile(standardBands())

	_, err := s.Rate(math.NaN())

	assert.ErrorIs(t, err, commission.ErrUndefinedLossRatio)
	assert.True(t, commission.IsUnrateable(err))
}

func TestSchedule_ZeroValueIsNotCompiled(t *testing.T) {
	var s commission.Schedule

	_, err := s.Rate(0.5)
	assert.ErrorIs(t, err, commission.ErrNotCompiled)

	var nilSchedule *commission.Schedule
	_, err = nilSchedule.Rate(0.5)
	assert.ErrorIs(t, err, commission.ErrNotCompiled)
}

func TestSchedule_BandsRoundTrip(t *testing.T) {
	s := commission.MustCompile(standardBands())

	assert.Equal(t, standardBands(), s.Bands())
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestCompile_RejectsUnsortedBands(t *testing.T) {
	// GIVEN: rows out of order
	// THEN: compilation fails and names the offending row

	_, err := commission.Compile([]commission.Band{
		{LowerLossRatio: 0.5, Rate: 0.2},
		{LowerLossRatio: 0.1, Rate: 0.1},
	})

	require.ErrorIs(t, err, commission.ErrUnsortedBands)
	var orderErr *commission.BandOrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, 1, orderErr.Row)
	assert.Equal(t, 0.5, orderErr.Previous)
	assert.Equal(t, 0.1, orderErr.Lower)
	assert.True(t, commission.IsConfiguration(err))
}

func TestCompile_RejectsDuplicateBounds(t *testing.T) {
	_, err := commission.Compile([]commission.Band{
		{LowerLossRatio: 0.5, Rate: 0.2},
		{LowerLossRatio: 0.5, Rate: 0.3},
	})

	assert.ErrorIs(t, err, commission.ErrUnsortedBands)
}

func TestCompile_RejectsNonFiniteValues(t *testing.T) {
	cases := map[string]commission.Band{
		"nan bound":  {LowerLossRatio: math.NaN(), Rate: 0.1},
		"inf bound":  {LowerLossRatio: math.Inf(1), Rate: 0.1},
		"-inf bound": {LowerLossRatio: math.Inf(-1), Rate: 0.1},
		"nan rate":   {LowerLossRatio: 0.1, Rate: math.NaN()},
		"inf rate":   {LowerLossRatio: 0.1, Rate: math.Inf(1)},
	}
	for name, band := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := commission.Compile([]commission.Band{band})

			assert.ErrorIs(t, err, commission.ErrInvalidBand)
			var valueErr *commission.BandValueError
			assert.ErrorAs(t, err, &valueErr)
		})
	}
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() {
		commission.MustCompile([]commission.Band{{LowerLossRatio: 1}, {LowerLossRatio: 0}})
	})
}
