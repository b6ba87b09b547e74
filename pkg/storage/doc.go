/*
Package storage provides BoltDB-backed persistence for Jari's todo
store: named sub-stores (buckets) over go.etcd.io/bbolt with ACID
transactions, exposed through the Store/Txn interfaces in store.go.

# Architecture

	┌──────────────────────── BOLTDB STORE ─────────────────────┐
	│                                                              │
	│   BoltStore                                                 │
	│     File: <dbDir>/jari.db                                   │
	│     Buckets: todos, history, pending, meta                  │
	│                                                              │
	│   Begin(write) ──▶ boltTxn                                  │
	│     Get/Put/Delete/Range scoped to one bucket per call       │
	│     Commit: single fsync, atomic across all four buckets     │
	│     Rollback: discard, idempotent                            │
	└──────────────────────────────────────────────────────────────┘

Write transactions serialize through bbolt's own single-writer lock;
read transactions run against a consistent MVCC snapshot and never
block or are blocked by a writer. This gives §5's single-writer,
multi-reader model without any additional locking in this package.

Every higher-level component (graph, concurrency, todo, query) reads
and writes exclusively through a Txn obtained from Store.Begin — no
component holds a *bolt.DB directly, so a fake in-memory Store can be
substituted in tests without touching their logic.
*/
package storage
