package contract

import (
	"fmt"
	"strings"

	"github.com/actuarial/reinsurance-engine/claims"
	"github.com/actuarial/reinsurance-engine/underwriting"
)

// CoverKind selects which claims and records a contract sees.
type CoverKind int

const (
	CoverAll CoverKind = iota
	CoverNone
	CoverLinesOfBusiness
)

func (k CoverKind) String() string {
	switch k {
	case CoverAll:
		return "all"
	case CoverNone:
		return "none"
	case CoverLinesOfBusiness:
		return "lines_of_business"
	}
	return fmt.Sprintf("cover(%d)", int(k))
}

// ParseCoverKind accepts the names returned by String, case-insensitively.
func ParseCoverKind(s string) (CoverKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return CoverAll, nil
	case "none":
		return CoverNone, nil
	case "lines_of_business", "lob":
		return CoverLinesOfBusiness, nil
	}
	return CoverAll, fmt.Errorf("unknown cover %q", s)
}

// Cover filters a contract's inputs. Packets are never modified.
type Cover struct {
	Kind  CoverKind
	Lines []underwriting.Marker
}

// Filter returns the covered claims and records. Nil entries are dropped.
//
// A lines-of-business cover without lines keeps every claim and then keeps
// the records of the lines those claims belong to.
func (c *Cover) Filter(cs []*claims.Claim, records []*underwriting.Record) ([]*claims.Claim, []*underwriting.Record) {
	cs, records = compactClaims(cs), compactRecords(records)
	switch c.Kind {
	case CoverNone:
		return nil, nil
	case CoverLinesOfBusiness:
		covered := claims.FilterByLineOfBusiness(cs, c.Lines)
		lines := c.Lines
		if len(lines) == 0 {
			lines = claims.LinesOfBusiness(covered)
		}
		return covered, underwriting.FilterByLineOfBusiness(records, lines)
	}
	return cs, records
}

func compactClaims(cs []*claims.Claim) []*claims.Claim {
	out := make([]*claims.Claim, 0, len(cs))
	for _, c := range cs {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func compactRecords(records []*underwriting.Record) []*underwriting.Record {
	out := make([]*underwriting.Record, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
