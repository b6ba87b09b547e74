// Package metrics tracks counts of the operations that matter for an
// agent pool watching its own throughput and contention: todos
// created, auto-merges applied, conflicts raised, conflicts resolved,
// claims taken, and cycles rejected. Counters are persisted in the
// store itself (there is no daemon process to hold them in memory
// across invocations) and are cheap enough to bump inside the same
// transaction as the operation they describe.
package metrics

import "github.com/cuemby/warren/pkg/storage"

const (
	TodosCreated      = "todos_created"
	MergesApplied     = "merges_applied"
	ConflictsRaised   = "conflicts_raised"
	ConflictsResolved = "conflicts_resolved"
	ClaimsTaken       = "claims_taken"
	CyclesRejected    = "cycles_rejected"
)

// Incr bumps a named counter by one within txn.
func Incr(txn storage.Txn, name string) error {
	return storage.IncrMetric(txn, name, 1)
}

// Snapshot is the full set of counters at one point in time.
type Snapshot map[string]int64

// Read returns every counter currently recorded.
func Read(txn storage.Txn) (Snapshot, error) {
	raw, err := storage.ListMetrics(txn)
	if err != nil {
		return nil, err
	}
	return Snapshot(raw), nil
}
