package storage

// Store exposes named sub-stores over an embedded memory-mapped
// key-value engine with ACID multi-key transactions.
// BoltStore is the only implementation; the interface exists so the
// concurrency engine and todo service can be exercised against an
// in-memory fake in tests without dragging in a real database file.
type Store interface {
	// Begin opens a transaction. Write transactions serialize globally;
	// read transactions never block and never block a writer.
	Begin(write bool) (Txn, error)

	// Close releases the underlying database file.
	Close() error
}

// Txn is one transaction across every sub-store. All reads within a
// Txn observe one consistent snapshot; all writes within a Txn commit
// or abort atomically together.
type Txn interface {
	// Get returns the value for key in sub, or nil if absent.
	Get(sub, key []byte) ([]byte, error)

	// Put writes key=value in sub. Only valid on a write Txn.
	Put(sub, key, value []byte) error

	// Delete removes key from sub. Only valid on a write Txn.
	Delete(sub, key []byte) error

	// Range calls fn for every key in sub with the given prefix, in
	// ascending key order, until fn returns false or an error. The
	// value slice is only valid for the duration of the fn call.
	Range(sub, prefix []byte, fn func(key, value []byte) (bool, error)) error

	// Commit applies all writes atomically. A no-op on a read Txn.
	Commit() error

	// Rollback discards the transaction. Safe to call after Commit.
	Rollback() error
}
