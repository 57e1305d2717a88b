// Package claims holds the minimal claim view the commission and contract
// paths need: an ultimate loss amount and the tags used for cover filtering.
// Claim generation and development live upstream.
package claims

import "github.com/actuarial/reinsurance-engine/underwriting"

// Claim is one loss for a simulation period.
type Claim struct {
	Ultimate            float64             `json:"ultimate"`
	LineOfBusiness      underwriting.Marker `json:"line_of_business,omitempty"`
	ReinsuranceContract underwriting.Marker `json:"reinsurance_contract,omitempty"`
	Origin              string              `json:"origin,omitempty"`
}

// TotalUltimate sums the ultimate of every claim. Nil entries are skipped.
func TotalUltimate(claims []*Claim) float64 {
	var total float64
	for _, c := range claims {
		if c == nil {
			continue
		}
		total += c.Ultimate
	}
	return total
}

// FilterByLineOfBusiness keeps claims whose line is listed.
// An empty list keeps everything.
func FilterByLineOfBusiness(claims []*Claim, lines []underwriting.Marker) []*Claim {
	if len(lines) == 0 {
		return append([]*Claim(nil), claims...)
	}
	listed := make(map[underwriting.Marker]bool, len(lines))
	for _, l := range lines {
		listed[l] = true
	}
	var out []*Claim
	for _, c := range claims {
		if c != nil && listed[c.LineOfBusiness] {
			out = append(out, c)
		}
	}
	return out
}

// LinesOfBusiness returns the distinct lines of the claims in first-seen order.
// Claims without a line are ignored.
func LinesOfBusiness(claims []*Claim) []underwriting.Marker {
	seen := make(map[underwriting.Marker]bool)
	var lines []underwriting.Marker
	for _, c := range claims {
		if c == nil || c.LineOfBusiness == "" || seen[c.LineOfBusiness] {
			continue
		}
		seen[c.LineOfBusiness] = true
		lines = append(lines, c.LineOfBusiness)
	}
	return lines
}
