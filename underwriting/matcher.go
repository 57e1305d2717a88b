package underwriting

// Find returns the first candidate whose Original is the reference's Key or
// the reference's own Original, or nil. Business fields are never compared,
// so lists assembled by unrelated components in different orders still pair
// up as long as lineage was threaded through.
//
// Zero keys never match.
func Find(candidates []*Record, reference *Record) *Record {
	if reference == nil {
		return nil
	}
	for _, c := range candidates {
		if c == nil || c.Original.IsZero() {
			continue
		}
		if c.Original == reference.Key || c.Original == reference.Original {
			return c
		}
	}
	return nil
}
