/*
Package factory turns JSON and YAML parameter tables into engine types.

PURPOSE:
  Commission bands, risk band tables and line-of-business portions are
  maintained as small tables outside the code. The factory reads them, checks
  every cell and builds commission.Band, portfolio.RiskBand and
  portfolio.Composer values.

TABLE SHAPE:
  A table is a list of rows. A row is either positional or named:

    {"bands": [[0, 0], [0.5, "0.2"], [1.0, 0.5]]}

    bands:
      - {loss_ratio: 0, commission: 0}
      - {loss_ratio: 0.5, commission: 0.2}

  Numeric cells may be numbers or numeric strings. Strings are parsed with
  decimal so "0.1" means exactly 0.1 before conversion to float64.

DOCUMENTS:
  Commission bands:
    {"bands": [[loss_ratio, commission], ...]}
  Risk bands:
    {"name": "motor hull",
     "bands": [[max_sum_insured, average_sum_insured, premium, number_of_policies], ...]}
  Portions:
    {"line_of_business": "private lines", "portions": [[origin, portion], ...]}

VALIDATION:
  The factory checks shape and cell types only. Band ordering is checked by
  commission.Compile.

SEE ALSO:
  - commission/schedule.go: Band, Compile
  - portfolio/: RiskBand, Composer
*/
package factory

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/actuarial/reinsurance-engine/commission"
	"github.com/actuarial/reinsurance-engine/portfolio"
	"github.com/actuarial/reinsurance-engine/underwriting"
)

// =============================================================================
// FORMATS
// =============================================================================

// Format is the encoding of a table document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Unknown extensions are JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// =============================================================================
// COLUMNS
// =============================================================================

var (
	bandColumns     = []string{"loss_ratio", "commission"}
	riskBandColumns = []string{"max_sum_insured", "average_sum_insured", "premium", "number_of_policies"}
	portionColumns  = []string{"origin", "portion"}
)

// =============================================================================
// TABLE FACTORY
// =============================================================================

// TableFactory parses parameter tables.
type TableFactory struct{}

// NewTableFactory creates a new table factory.
func NewTableFactory() *TableFactory {
	return &TableFactory{}
}

// RiskBandTable is a parsed risk band document.
type RiskBandTable struct {
	Name  string
	Bands []portfolio.RiskBand
}

// ParseBands parses a commission band document.
func (f *TableFactory) ParseBands(data []byte, format Format) ([]commission.Band, error) {
	doc, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	rows, err := table(doc, "bands", bandColumns)
	if err != nil {
		return nil, err
	}
	bands := make([]commission.Band, 0, len(rows))
	for i, row := range rows {
		lossRatio, err := numberCell("bands", i, bandColumns[0], row[0])
		if err != nil {
			return nil, err
		}
		rate, err := numberCell("bands", i, bandColumns[1], row[1])
		if err != nil {
			return nil, err
		}
		bands = append(bands, commission.Band{LowerLossRatio: lossRatio, Rate: rate})
	}
	return bands, nil
}

// ParseSchedule parses and compiles a commission band document.
func (f *TableFactory) ParseSchedule(data []byte, format Format) (*commission.Schedule, error) {
	bands, err := f.ParseBands(data, format)
	if err != nil {
		return nil, err
	}
	schedule, err := commission.Compile(bands)
	if err != nil {
		return nil, fmt.Errorf("compiling commission bands: %w", err)
	}
	return schedule, nil
}

// ParseRiskBands parses a risk band document.
func (f *TableFactory) ParseRiskBands(data []byte, format Format) (*RiskBandTable, error) {
	doc, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	rows, err := table(doc, "bands", riskBandColumns)
	if err != nil {
		return nil, err
	}
	out := &RiskBandTable{Name: stringField(doc, "name")}
	for i, row := range rows {
		var values [4]float64
		for c := range riskBandColumns {
			v, err := numberCell("bands", i, riskBandColumns[c], row[c])
			if err != nil {
				return nil, err
			}
			values[c] = v
		}
		out.Bands = append(out.Bands, portfolio.RiskBand{
			MaxSumInsured:     values[0],
			AverageSumInsured: values[1],
			Premium:           values[2],
			NumberOfPolicies:  values[3],
		})
	}
	return out, nil
}

// ParsePortions parses a portion document into a composer.
func (f *TableFactory) ParsePortions(data []byte, format Format) (*portfolio.Composer, error) {
	doc, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	rows, err := table(doc, "portions", portionColumns)
	if err != nil {
		return nil, err
	}
	composer := &portfolio.Composer{
		LineOfBusiness: underwriting.Marker(stringField(doc, "line_of_business")),
	}
	for i, row := range rows {
		origin, ok := row[0].(string)
		if !ok || origin == "" {
			return nil, &CellError{Table: "portions", Row: i, Column: "origin", Value: row[0], Err: ErrNotAString}
		}
		share, err := numberCell("portions", i, "portion", row[1])
		if err != nil {
			return nil, err
		}
		composer.Portions = append(composer.Portions, portfolio.Portion{Origin: origin, Share: share})
	}
	return composer, nil
}

// LoadBandsFile reads a commission band document from disk.
func (f *TableFactory) LoadBandsFile(path string) ([]commission.Band, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading commission bands: %w", err)
	}
	bands, err := f.ParseBands(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bands, nil
}

// LoadRiskBandsFile reads a risk band document from disk.
func (f *TableFactory) LoadRiskBandsFile(path string) (*RiskBandTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading risk bands: %w", err)
	}
	t, err := f.ParseRiskBands(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// BandsJSON renders bands in the positional JSON shape ParseBands accepts.
func (f *TableFactory) BandsJSON(bands []commission.Band) ([]byte, error) {
	rows := make([][2]float64, len(bands))
	for i, b := range bands {
		rows[i] = [2]float64{b.LowerLossRatio, b.Rate}
	}
	return json.Marshal(map[string]interface{}{"bands": rows})
}

// =============================================================================
// DECODING
// =============================================================================

func decode(data []byte, format Format) (map[string]interface{}, error) {
	doc := make(map[string]interface{})
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse table YAML: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse table JSON: %w", err)
		}
	}
	return doc, nil
}

// table returns the rows under key as positional cells in column order.
func table(doc map[string]interface{}, key string, columns []string) ([][]interface{}, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingTable, key)
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a list", ErrMalformedRow, key)
	}

	rows := make([][]interface{}, 0, len(list))
	for i, item := range list {
		switch row := item.(type) {
		case []interface{}:
			if len(row) != len(columns) {
				return nil, &RowError{Table: key, Row: i, Want: len(columns), Got: len(row)}
			}
			rows = append(rows, row)
		case map[string]interface{}:
			cells := make([]interface{}, len(columns))
			for c, name := range columns {
				v, ok := row[name]
				if !ok {
					return nil, &CellError{Table: key, Row: i, Column: name, Err: ErrMissingCell}
				}
				cells[c] = v
			}
			rows = append(rows, cells)
		default:
			return nil, &RowError{Table: key, Row: i, Want: len(columns), Got: -1}
		}
	}
	return rows, nil
}

// numberCell converts a decoded cell to float64 through decimal.
func numberCell(tableName string, row int, column string, v interface{}) (float64, error) {
	d, err := toDecimal(v)
	if err != nil {
		return 0, &CellError{Table: tableName, Row: row, Column: column, Value: v, Err: err}
	}
	return d.InexactFloat64(), nil
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, ErrNotANumber
		}
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Zero, ErrNotANumber
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, ErrNotANumber
		}
		return d, nil
	}
	return decimal.Zero, ErrNotANumber
}

func stringField(doc map[string]interface{}, key string) string {
	s, _ := doc[key].(string)
	return s
}
