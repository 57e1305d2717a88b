package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuarial/reinsurance-engine/claims"
	"github.com/actuarial/reinsurance-engine/commission"
	"github.com/actuarial/reinsurance-engine/contract"
	"github.com/actuarial/reinsurance-engine/underwriting"
)

const eps = 1e-9

// =============================================================================
// TEST SETUP
// =============================================================================

type book struct {
	motor, fire           *underwriting.Record
	motorClaim, fireClaim *claims.Claim
}

func newBook() book {
	motor := underwriting.NewRecord()
	motor.LineOfBusiness = "motor"
	motor.PremiumWritten = 1000
	motor.NumberOfPolicies = 10
	motor.SumInsured = 100
	motor.MaxSumInsured = 300

	fire := underwriting.NewRecord()
	fire.LineOfBusiness = "fire"
	fire.PremiumWritten = 500
	fire.NumberOfPolicies = 5
	fire.SumInsured = 1000

	return book{
		motor:      motor,
		fire:       fire,
		motorClaim: &claims.Claim{Ultimate: 600, LineOfBusiness: "motor"},
		fireClaim:  &claims.Claim{Ultimate: 1000, LineOfBusiness: "fire"},
	}
}

func (b book) input(want contract.Outputs) contract.Input {
	return contract.Input{
		Claims:  []*claims.Claim{b.motorClaim, b.fireClaim},
		Records: []*underwriting.Record{b.motor, b.fire},
		Want:    want,
	}
}

func slidingQuotaShare(cover *contract.Cover) *contract.Contract {
	return &contract.Contract{
		Name:   "qs-motor",
		Cover:  cover,
		Ceding: contract.QuotaShare{Share: 0.4},
		Commission: commission.NewSlidingCommission([]commission.Band{
			{LowerLossRatio: 0, Rate: 0},
			{LowerLossRatio: 0.5, Rate: 0.2},
			{LowerLossRatio: 1, Rate: 0.5},
		}),
	}
}

// =============================================================================
// PROCESS
// =============================================================================

func TestProcess_LineOfBusinessQuotaShare(t *testing.T) {
	// GIVEN: a 40% quota share on motor with a sliding commission
	// WHEN: motor has a loss ratio of 0.6
	// THEN: the 0.2 band applies to the ceded premium of 400

	b := newBook()
	c := slidingQuotaShare(&contract.Cover{Kind: contract.CoverLinesOfBusiness, Lines: []underwriting.Marker{"motor"}})

	out, err := c.Process(b.input(contract.Outputs{NetAfterCover: true, Financials: true}))
	require.NoError(t, err)

	require.Len(t, out.CoveredRecords, 1)
	require.Len(t, out.CededRecords, 1)
	ceded := out.CededRecords[0]
	assert.InDelta(t, 400.0, ceded.PremiumWritten, eps)
	assert.InDelta(t, -80.0, ceded.Commission, eps)
	assert.Equal(t, 10.0, ceded.NumberOfPolicies)
	assert.Equal(t, b.motor.Key, ceded.Original)
	assert.Equal(t, underwriting.Marker("qs-motor"), ceded.ReinsuranceContract)

	require.Len(t, out.NetAfterCover, 1)
	net := out.NetAfterCover[0]
	assert.InDelta(t, 600.0, net.PremiumWritten, eps)
	assert.InDelta(t, 80.0, net.Commission, eps)
	assert.Equal(t, 10.0, net.NumberOfPolicies)
	assert.InDelta(t, 60.0, net.SumInsured, eps)

	require.NotNil(t, out.Financials)
	assert.InDelta(t, -400.0, out.Financials.CededPremium, eps)
	assert.InDelta(t, -80.0, out.Financials.CededCommission, eps)
	assert.InDelta(t, 240.0, out.Financials.CededClaim, eps)

	assert.Equal(t, 1000.0, b.motor.PremiumWritten, "gross untouched")
}

func TestProcess_OutputsOnlyWhenWanted(t *testing.T) {
	b := newBook()
	c := slidingQuotaShare(&contract.Cover{Kind: contract.CoverAll})

	out, err := c.Process(b.input(contract.Outputs{}))

	require.NoError(t, err)
	assert.Len(t, out.CededRecords, 2)
	assert.Nil(t, out.NetAfterCover)
	assert.Nil(t, out.Financials)
}

func TestProcess_NoneCoverCedesNothing(t *testing.T) {
	// GIVEN: a sliding commission contract that covers nothing
	// THEN: the quiet period passes with empty outputs

	b := newBook()
	c := slidingQuotaShare(&contract.Cover{Kind: contract.CoverNone})

	out, err := c.Process(b.input(contract.Outputs{NetAfterCover: true, Financials: true}))

	require.NoError(t, err)
	assert.Empty(t, out.CededRecords)
	assert.Empty(t, out.NetAfterCover)
	assert.Equal(t, &contract.Financials{}, out.Financials)
}

func TestProcess_QuietLineOfBusinessPeriod(t *testing.T) {
	// GIVEN: a marine cover in a period without marine claims or records
	c := slidingQuotaShare(&contract.Cover{Kind: contract.CoverLinesOfBusiness, Lines: []underwriting.Marker{"marine"}})

	out, err := c.Process(contract.Input{Want: contract.Outputs{Financials: true}})

	require.NoError(t, err)
	assert.Empty(t, out.CededRecords)
	assert.Equal(t, &contract.Financials{}, out.Financials)

	// AND: a book without marine records is just as quiet
	out, err = c.Process(newBook().input(contract.Outputs{}))
	require.NoError(t, err)
	assert.Empty(t, out.CededRecords)
}

func TestProcess_NilRecordsAreSkipped(t *testing.T) {
	b := newBook()
	c := slidingQuotaShare(&contract.Cover{Kind: contract.CoverAll})

	out, err := c.Process(contract.Input{
		Claims:  []*claims.Claim{b.motorClaim, nil},
		Records: []*underwriting.Record{b.motor, nil, b.fire},
		Want:    contract.Outputs{NetAfterCover: true},
	})

	require.NoError(t, err)
	assert.Len(t, out.CoveredRecords, 2)
	assert.Len(t, out.CededRecords, 2)
	require.Len(t, out.NetAfterCover, 2)
	assert.Equal(t, b.motor.Key, out.NetAfterCover[0].Original)
	assert.Equal(t, b.fire.Key, out.NetAfterCover[1].Original)
}

func TestProcess_InuringCessionsComeOffFirst(t *testing.T) {
	// GIVEN: a 40% quota share on motor, then a 50% quota share on motor
	//        that inures to its benefit, and an unrelated cession from "xl-1"
	// WHEN: the second contract runs with the ceded records of the period
	// THEN: it cedes half of what the first one retained

	b := newBook()
	first := slidingQuotaShare(&contract.Cover{Kind: contract.CoverLinesOfBusiness, Lines: []underwriting.Marker{"motor"}})
	firstOut, err := first.Process(b.input(contract.Outputs{}))
	require.NoError(t, err)

	unrelated := b.motor.Derive()
	unrelated.PremiumWritten = 999
	unrelated.ReinsuranceContract = "xl-1"

	second := &contract.Contract{
		Name:       "qs-retention",
		Cover:      &contract.Cover{Kind: contract.CoverLinesOfBusiness, Lines: []underwriting.Marker{"motor"}},
		Ceding:     contract.QuotaShare{Share: 0.5},
		Commission: commission.FixedCommission{Rate: 0.1},
		InuringOn:  []underwriting.Marker{"qs-motor"},
	}
	in := b.input(contract.Outputs{NetAfterCover: true, Financials: true})
	in.Ceded = append([]*underwriting.Record{unrelated}, firstOut.CededRecords...)

	out, err := second.Process(in)

	require.NoError(t, err)
	require.Len(t, out.CoveredRecords, 1)
	assert.InDelta(t, 600.0, out.CoveredRecords[0].PremiumWritten, eps)
	assert.Equal(t, 10.0, out.CoveredRecords[0].NumberOfPolicies)
	assert.InDelta(t, -300.0, out.Financials.CededPremium, eps)
	assert.InDelta(t, -30.0, out.Financials.CededCommission, eps)

	require.Len(t, out.NetAfterCover, 1)
	assert.InDelta(t, 300.0, out.NetAfterCover[0].PremiumWritten, eps)
	assert.Equal(t, b.motor.Key, out.NetAfterCover[0].Original, "lineage reaches the gross record")
	assert.Equal(t, 1000.0, b.motor.PremiumWritten, "gross untouched")
}

func TestProcess_InuringWithoutCessionsKeepsRecords(t *testing.T) {
	b := newBook()
	c := slidingQuotaShare(&contract.Cover{Kind: contract.CoverAll})
	c.InuringOn = []underwriting.Marker{"qs-other"}

	out, err := c.Process(b.input(contract.Outputs{}))

	require.NoError(t, err)
	assert.Equal(t, []*underwriting.Record{b.motor, b.fire}, out.CoveredRecords)
}

func TestProcess_MissingConfiguration(t *testing.T) {
	b := newBook()

	cases := map[string]struct {
		mutate func(*contract.Contract)
		want   error
	}{
		"commission": {func(c *contract.Contract) { c.Commission = nil }, contract.ErrNoCommissionStrategy},
		"cover":      {func(c *contract.Contract) { c.Cover = nil }, contract.ErrNoCover},
		"ceding":     {func(c *contract.Contract) { c.Ceding = nil }, contract.ErrNoCeding},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := slidingQuotaShare(&contract.Cover{})
			tc.mutate(c)

			_, err := c.Process(b.input(contract.Outputs{}))

			assert.ErrorIs(t, err, tc.want)
			assert.True(t, contract.IsConfiguration(err))
		})
	}
}

func TestProcess_SlidingCommissionWithoutPremium(t *testing.T) {
	// GIVEN: a covered marine record with no premium and a marine claim
	// THEN: the undefined loss ratio surfaces as an error

	c := slidingQuotaShare(&contract.Cover{Kind: contract.CoverLinesOfBusiness, Lines: []underwriting.Marker{"marine"}})
	marine := underwriting.NewRecord()
	marine.LineOfBusiness = "marine"
	marine.NumberOfPolicies = 3

	_, err := c.Process(contract.Input{
		Claims:  []*claims.Claim{{Ultimate: 10, LineOfBusiness: "marine"}},
		Records: []*underwriting.Record{marine},
	})

	assert.ErrorIs(t, err, commission.ErrZeroPremium)
}

func TestProcess_InvalidShare(t *testing.T) {
	b := newBook()
	c := slidingQuotaShare(&contract.Cover{})
	c.Ceding = contract.QuotaShare{Share: 1.5}

	_, err := c.Process(b.input(contract.Outputs{}))

	assert.ErrorIs(t, err, contract.ErrInvalidShare)
}

// =============================================================================
// COVER
// =============================================================================

func TestCover_LinesFromClaimsWhenNoneListed(t *testing.T) {
	// GIVEN: a lines cover with no lines and only fire claims
	b := newBook()
	cover := &contract.Cover{Kind: contract.CoverLinesOfBusiness}

	cs, records := cover.Filter([]*claims.Claim{b.fireClaim}, []*underwriting.Record{b.motor, b.fire})

	// THEN: records follow the claims' lines
	assert.Equal(t, []*claims.Claim{b.fireClaim}, cs)
	assert.Equal(t, []*underwriting.Record{b.fire}, records)
}

func TestCover_AllCopiesLists(t *testing.T) {
	b := newBook()
	in := []*underwriting.Record{b.motor}

	_, records := (&contract.Cover{}).Filter(nil, in)
	records[0] = b.fire

	assert.Same(t, b.motor, in[0])
}

func TestParseCoverKind(t *testing.T) {
	for _, kind := range []contract.CoverKind{contract.CoverAll, contract.CoverNone, contract.CoverLinesOfBusiness} {
		parsed, err := contract.ParseCoverKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := contract.ParseCoverKind("perils")
	assert.Error(t, err)
}
