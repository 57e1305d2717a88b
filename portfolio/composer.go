package portfolio

import "github.com/actuarial/reinsurance-engine/underwriting"

// Portion is the share of one origin's records a composer takes.
type Portion struct {
	Origin string  `json:"origin" yaml:"origin"`
	Share  float64 `json:"portion" yaml:"portion"`
}

// Composer assembles a line of business from portions of other origins.
type Composer struct {
	LineOfBusiness underwriting.Marker
	Portions       []Portion
}

// Compose emits a new root record for every input record whose origin has a
// portion. Premium, sum insured, max sum insured and commission are scaled by
// the portion; origin and line of business become the composer's. Records
// from other origins are dropped. Inputs are not modified.
func (c *Composer) Compose(records []*underwriting.Record) []*underwriting.Record {
	if len(c.Portions) == 0 {
		return nil
	}
	shares := make(map[string]float64, len(c.Portions))
	for _, p := range c.Portions {
		if _, dup := shares[p.Origin]; !dup {
			shares[p.Origin] = p.Share
		}
	}

	var out []*underwriting.Record
	for _, r := range records {
		if r == nil {
			continue
		}
		share, ok := shares[r.Origin]
		if !ok {
			continue
		}
		lob := r.AsRoot()
		lob.PremiumWritten *= share
		lob.SumInsured *= share
		lob.MaxSumInsured *= share
		lob.Commission *= share
		lob.Origin = string(c.LineOfBusiness)
		lob.LineOfBusiness = c.LineOfBusiness
		out = append(out, lob)
	}
	return out
}
