/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication and the conversions to
  and from engine types.

NAMING CONVENTION:
  - *DTO: record-like types in both directions
  - *Request: request body types from clients
  - *Response: response wrappers

LINEAGE ON THE WIRE:
  Records carry "key" and "original" strings. A UUID is used as is; any other
  non-empty string is mapped to a name-based UUID, so clients may write
  {"key": "g1"} for a gross record and {"original": "g1"} for its ceded share.
  A missing key gets a fresh one; a missing original makes the record a root.

ROUNDING:
  Figures in responses are rounded to ResponsePlaces decimals with decimal.
  Requests are taken as sent.

SEE ALSO:
  - handlers.go, scenarios.go: Use these types
*/
package api

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/actuarial/reinsurance-engine/claims"
	"github.com/actuarial/reinsurance-engine/commission"
	"github.com/actuarial/reinsurance-engine/contract"
	"github.com/actuarial/reinsurance-engine/netting"
	"github.com/actuarial/reinsurance-engine/underwriting"
)

// ResponsePlaces is the number of decimals kept in response figures.
const ResponsePlaces = 6

// lineageNamespace scopes name-based lineage keys.
var lineageNamespace = uuid.MustParse("6f1d3c0e-7a58-4c55-9a53-3b3a1a7f9e21")

// =============================================================================
// RECORDS AND CLAIMS
// =============================================================================

// RecordDTO is an underwriting record on the wire.
type RecordDTO struct {
	PremiumWritten      float64 `json:"premium_written"`
	FixedPremium        float64 `json:"fixed_premium,omitempty"`
	VariablePremium     float64 `json:"variable_premium,omitempty"`
	Commission          float64 `json:"commission"`
	FixedCommission     float64 `json:"fixed_commission,omitempty"`
	VariableCommission  float64 `json:"variable_commission,omitempty"`
	NumberOfPolicies    float64 `json:"number_of_policies"`
	SumInsured          float64 `json:"sum_insured"`
	MaxSumInsured       float64 `json:"max_sum_insured"`
	ExposureBase        string  `json:"exposure_base,omitempty"`
	LineOfBusiness      string  `json:"line_of_business,omitempty"`
	ReinsuranceContract string  `json:"reinsurance_contract,omitempty"`
	Origin              string  `json:"origin,omitempty"`
	Key                 string  `json:"key,omitempty"`
	Original            string  `json:"original,omitempty"`
}

// ClaimDTO is a claim on the wire.
type ClaimDTO struct {
	Ultimate       float64 `json:"ultimate"`
	LineOfBusiness string  `json:"line_of_business,omitempty"`
}

// =============================================================================
// NETTING
// =============================================================================

// NettingRequest asks for one period's gross, ceded and net views.
// Want defaults to every output when omitted.
type NettingRequest struct {
	Gross []RecordDTO       `json:"gross"`
	Ceded []RecordDTO       `json:"ceded"`
	Want  *netting.Channels `json:"want,omitempty"`
}

// NettingResponse carries the demanded outputs.
type NettingResponse struct {
	CalculationID string      `json:"calculation_id"`
	Gross         *RecordDTO  `json:"gross,omitempty"`
	Ceded         []RecordDTO `json:"ceded,omitempty"`
	Net           *RecordDTO  `json:"net,omitempty"`
}

// ElementwiseNetRequest pairs gross and ceded records by lineage.
type ElementwiseNetRequest struct {
	Gross []RecordDTO `json:"gross"`
	Ceded []RecordDTO `json:"ceded"`
}

// ElementwiseNetResponse lists one net record per gross record, in order.
type ElementwiseNetResponse struct {
	CalculationID string      `json:"calculation_id"`
	Net           []RecordDTO `json:"net"`
}

// =============================================================================
// COMMISSION
// =============================================================================

// RateRequest rates a single loss ratio. Bands default to the server's table.
type RateRequest struct {
	Bands     []commission.Band `json:"bands,omitempty"`
	LossRatio float64           `json:"loss_ratio"`
}

type RateResponse struct {
	LossRatio float64 `json:"loss_ratio"`
	Rate      float64 `json:"rate"`
}

// ApplyCommissionRequest rates the claims over the ceded records and sets
// their commission. Additive defaults to the server setting.
type ApplyCommissionRequest struct {
	Bands    []commission.Band `json:"bands,omitempty"`
	Claims   []ClaimDTO        `json:"claims"`
	Records  []RecordDTO       `json:"records"`
	Additive *bool             `json:"additive,omitempty"`
}

type ApplyCommissionResponse struct {
	CalculationID string      `json:"calculation_id"`
	LossRatio     float64     `json:"loss_ratio"`
	Rate          float64     `json:"rate"`
	Records       []RecordDTO `json:"records"`
}

// =============================================================================
// BATCH
// =============================================================================

// PeriodDTO is one independent period in a batch. When the batch has bands,
// commission is rated from Claims and set on Ceded before netting.
type PeriodDTO struct {
	Gross  []RecordDTO       `json:"gross"`
	Ceded  []RecordDTO       `json:"ceded"`
	Claims []ClaimDTO        `json:"claims,omitempty"`
	Want   *netting.Channels `json:"want,omitempty"`
}

type BatchRequest struct {
	Bands    []commission.Band `json:"bands,omitempty"`
	Additive *bool             `json:"additive,omitempty"`
	Periods  []PeriodDTO       `json:"periods"`
}

// PeriodResultDTO mirrors NettingResponse without the id, plus the rate used.
type PeriodResultDTO struct {
	Rate  *float64    `json:"rate,omitempty"`
	Gross *RecordDTO  `json:"gross,omitempty"`
	Ceded []RecordDTO `json:"ceded,omitempty"`
	Net   *RecordDTO  `json:"net,omitempty"`
}

type BatchResponse struct {
	CalculationID string            `json:"calculation_id"`
	Periods       []PeriodResultDTO `json:"periods"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func lineageFromString(s string) underwriting.LineageKey {
	if s == "" {
		return underwriting.NoLineage
	}
	if id, err := uuid.Parse(s); err == nil {
		return underwriting.LineageKey(id)
	}
	return underwriting.LineageKey(uuid.NewSHA1(lineageNamespace, []byte(s)))
}

func (d RecordDTO) toRecord() (*underwriting.Record, error) {
	base, err := underwriting.ParseExposureBase(d.ExposureBase)
	if err != nil {
		return nil, err
	}
	key := lineageFromString(d.Key)
	original := lineageFromString(d.Original)
	if key.IsZero() {
		key = underwriting.NewLineageKey()
	}
	if original.IsZero() {
		original = key
	}
	return &underwriting.Record{
		PremiumWritten:      d.PremiumWritten,
		FixedPremium:        d.FixedPremium,
		VariablePremium:     d.VariablePremium,
		Commission:          d.Commission,
		FixedCommission:     d.FixedCommission,
		VariableCommission:  d.VariableCommission,
		NumberOfPolicies:    d.NumberOfPolicies,
		SumInsured:          d.SumInsured,
		MaxSumInsured:       d.MaxSumInsured,
		ExposureBase:        base,
		LineOfBusiness:      underwriting.Marker(d.LineOfBusiness),
		ReinsuranceContract: underwriting.Marker(d.ReinsuranceContract),
		Origin:              d.Origin,
		Key:                 key,
		Original:            original,
	}, nil
}

func toRecords(dtos []RecordDTO) ([]*underwriting.Record, error) {
	records := make([]*underwriting.Record, 0, len(dtos))
	for _, d := range dtos {
		r, err := d.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func toClaims(dtos []ClaimDTO) []*claims.Claim {
	out := make([]*claims.Claim, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, &claims.Claim{
			Ultimate:       d.Ultimate,
			LineOfBusiness: underwriting.Marker(d.LineOfBusiness),
		})
	}
	return out
}

func round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(ResponsePlaces).InexactFloat64()
}

func keyString(k underwriting.LineageKey) string {
	if k.IsZero() {
		return ""
	}
	return k.String()
}

func toRecordDTO(r *underwriting.Record) RecordDTO {
	return RecordDTO{
		PremiumWritten:      round(r.PremiumWritten),
		FixedPremium:        round(r.FixedPremium),
		VariablePremium:     round(r.VariablePremium),
		Commission:          round(r.Commission),
		FixedCommission:     round(r.FixedCommission),
		VariableCommission:  round(r.VariableCommission),
		NumberOfPolicies:    round(r.NumberOfPolicies),
		SumInsured:          round(r.SumInsured),
		MaxSumInsured:       round(r.MaxSumInsured),
		ExposureBase:        string(r.ExposureBase),
		LineOfBusiness:      string(r.LineOfBusiness),
		ReinsuranceContract: string(r.ReinsuranceContract),
		Origin:              r.Origin,
		Key:                 keyString(r.Key),
		Original:            keyString(r.Original),
	}
}

func toRecordDTOPtr(r *underwriting.Record) *RecordDTO {
	if r == nil {
		return nil
	}
	d := toRecordDTO(r)
	return &d
}

func toRecordDTOs(records []*underwriting.Record) []RecordDTO {
	if records == nil {
		return nil
	}
	out := make([]RecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordDTO(r))
	}
	return out
}

func wantOrAll(want *netting.Channels) netting.Channels {
	if want == nil {
		return netting.AllChannels
	}
	return *want
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo simulation.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RunScenarioRequest runs a demo simulation. Iterations defaults to 1.
type RunScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
	Iterations int    `json:"iterations,omitempty"`
}

// IterationDTO is one iteration of a demo simulation.
type IterationDTO struct {
	Iteration     int                  `json:"iteration"`
	Portfolio     *RecordDTO           `json:"portfolio"`
	Gross         *RecordDTO           `json:"gross,omitempty"`
	Ceded         *RecordDTO           `json:"ceded,omitempty"`
	Net           *RecordDTO           `json:"net,omitempty"`
	NetAfterCover []RecordDTO          `json:"net_after_cover,omitempty"`
	Financials    *contract.Financials `json:"financials,omitempty"`
}

type RunScenarioResponse struct {
	CalculationID string         `json:"calculation_id"`
	ScenarioID    string         `json:"scenario_id"`
	Iterations    []IterationDTO `json:"iterations"`
}
