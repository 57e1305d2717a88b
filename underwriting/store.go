/*
store.go - Simulation-scoped record storage

PURPOSE:
  Generators that build their records once per simulation (e.g. risk band
  tables) park them here during the first iteration and read them back in
  every later one. The store is owned by the surrounding simulation; the
  engine only sees this interface.

SHARING CONTRACT:
  Records read from a store must never be shared between periods or
  iterations. Implementations hand out copies on Get, and take copies on Put.

IMPLEMENTATIONS:
  - underwriting/store/memory.go: in-memory, safe for concurrent iterations
*/
package underwriting

import "context"

// RecordStore keeps record lists under string keys for the lifetime of a simulation.
type RecordStore interface {
	// Put stores copies of records under key, replacing any previous list.
	Put(ctx context.Context, key string, records []*Record) error

	// Get returns copies of the records under key; ok is false if none were stored.
	Get(ctx context.Context, key string) (records []*Record, ok bool, err error)
}

// CopyAll returns a copy of every record, identities preserved.
func CopyAll(records []*Record) []*Record {
	if records == nil {
		return nil
	}
	out := make([]*Record, len(records))
	for i, r := range records {
		out[i] = r.Copy()
	}
	return out
}
