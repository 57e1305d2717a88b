package factory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuarial/reinsurance-engine/commission"
	"github.com/actuarial/reinsurance-engine/factory"
	"github.com/actuarial/reinsurance-engine/portfolio"
	"github.com/actuarial/reinsurance-engine/underwriting"
)

func wantBands() []commission.Band {
	return []commission.Band{
		{LowerLossRatio: 0, Rate: 0},
		{LowerLossRatio: 0.5, Rate: 0.2},
		{LowerLossRatio: 1, Rate: 0.5},
	}
}

// =============================================================================
// COMMISSION BANDS
// =============================================================================

func TestParseBands_PositionalJSON(t *testing.T) {
	f := factory.NewTableFactory()

	bands, err := f.ParseBands([]byte(`{"bands": [[0, 0], [0.5, "0.2"], ["1.0", 0.5]]}`), factory.FormatJSON)

	require.NoError(t, err)
	assert.Equal(t, wantBands(), bands)
}

func TestParseBands_NamedYAML(t *testing.T) {
	doc := `
bands:
  - {loss_ratio: 0, commission: 0}
  - {loss_ratio: 0.5, commission: "0.2"}
  - loss_ratio: 1
    commission: 0.5
`
	bands, err := factory.NewTableFactory().ParseBands([]byte(doc), factory.FormatYAML)

	require.NoError(t, err)
	assert.Equal(t, wantBands(), bands)
}

func TestParseBands_Errors(t *testing.T) {
	f := factory.NewTableFactory()

	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"missing table", `{"rows": []}`, factory.ErrMissingTable},
		{"not a list", `{"bands": 3}`, factory.ErrMalformedRow},
		{"short row", `{"bands": [[0.5]]}`, factory.ErrMalformedRow},
		{"scalar row", `{"bands": [0.5]}`, factory.ErrMalformedRow},
		{"missing cell", `{"bands": [{"loss_ratio": 0.5}]}`, factory.ErrMissingCell},
		{"text cell", `{"bands": [[0.5, "twenty"]]}`, factory.ErrNotANumber},
		{"null cell", `{"bands": [[null, 0.2]]}`, factory.ErrNotANumber},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ParseBands([]byte(tc.doc), factory.FormatJSON)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseBands_CellErrorNamesTheCell(t *testing.T) {
	_, err := factory.NewTableFactory().ParseBands([]byte(`{"bands": [[0, 0], [0.5, "x"]]}`), factory.FormatJSON)

	var cellErr *factory.CellError
	require.ErrorAs(t, err, &cellErr)
	assert.Equal(t, 1, cellErr.Row)
	assert.Equal(t, "commission", cellErr.Column)
	assert.Equal(t, "x", cellErr.Value)
}

func TestParseSchedule_ChecksOrder(t *testing.T) {
	f := factory.NewTableFactory()

	_, err := f.ParseSchedule([]byte(`{"bands": [[1, 0.5], [0.5, 0.2]]}`), factory.FormatJSON)
	assert.ErrorIs(t, err, commission.ErrUnsortedBands)

	s, err := f.ParseSchedule([]byte(`{"bands": [[0, 0], [0.5, 0.2]]}`), factory.FormatJSON)
	require.NoError(t, err)
	rate, err := s.Rate(0.7)
	require.NoError(t, err)
	assert.Equal(t, 0.2, rate)
}

func TestBandsJSON_ParsesBack(t *testing.T) {
	f := factory.NewTableFactory()

	data, err := f.BandsJSON(wantBands())
	require.NoError(t, err)

	bands, err := f.ParseBands(data, factory.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, wantBands(), bands)
}

func TestLoadBandsFile_PicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sliding.yml")
	require.NoError(t, os.WriteFile(path, []byte("bands:\n  - [0, 0]\n  - [0.5, 0.2]\n  - [1, 0.5]\n"), 0o600))

	bands, err := factory.NewTableFactory().LoadBandsFile(path)

	require.NoError(t, err)
	assert.Equal(t, wantBands(), bands)

	_, err = factory.NewTableFactory().LoadBandsFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, factory.FormatYAML, factory.FormatFromPath("a/b.YAML"))
	assert.Equal(t, factory.FormatYAML, factory.FormatFromPath("b.yml"))
	assert.Equal(t, factory.FormatJSON, factory.FormatFromPath("b.json"))
	assert.Equal(t, factory.FormatJSON, factory.FormatFromPath("bands"))
}

// =============================================================================
// RISK BANDS AND PORTIONS
// =============================================================================

func TestParseRiskBands(t *testing.T) {
	doc := `{
	  "name": "motor hull",
	  "bands": [
	    [1000, 400, 5000, 100],
	    {"max_sum_insured": "5000", "average_sum_insured": 2500, "premium": 8000, "number_of_policies": 20}
	  ]
	}`

	table, err := factory.NewTableFactory().ParseRiskBands([]byte(doc), factory.FormatJSON)

	require.NoError(t, err)
	assert.Equal(t, "motor hull", table.Name)
	assert.Equal(t, []portfolio.RiskBand{
		{MaxSumInsured: 1000, AverageSumInsured: 400, Premium: 5000, NumberOfPolicies: 100},
		{MaxSumInsured: 5000, AverageSumInsured: 2500, Premium: 8000, NumberOfPolicies: 20},
	}, table.Bands)
}

func TestLoadRiskBandsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fire.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: fire\nbands:\n  - [10, 5, 100, 3]\n"), 0o600))

	table, err := factory.NewTableFactory().LoadRiskBandsFile(path)

	require.NoError(t, err)
	assert.Equal(t, "fire", table.Name)
	require.Len(t, table.Bands, 1)
	assert.Equal(t, 3.0, table.Bands[0].NumberOfPolicies)
}

func TestParsePortions(t *testing.T) {
	doc := `
line_of_business: private lines
portions:
  - [motor bands, 0.6]
  - {origin: fire bands, portion: "0.25"}
`
	composer, err := factory.NewTableFactory().ParsePortions([]byte(doc), factory.FormatYAML)

	require.NoError(t, err)
	assert.Equal(t, underwriting.Marker("private lines"), composer.LineOfBusiness)
	assert.Equal(t, []portfolio.Portion{
		{Origin: "motor bands", Share: 0.6},
		{Origin: "fire bands", Share: 0.25},
	}, composer.Portions)
}

func TestParsePortions_OriginMustBeText(t *testing.T) {
	_, err := factory.NewTableFactory().ParsePortions([]byte(`{"portions": [[3, 0.5]]}`), factory.FormatJSON)

	assert.ErrorIs(t, err, factory.ErrNotAString)
}
