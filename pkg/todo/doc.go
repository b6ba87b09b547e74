/*
Package todo implements the one
transaction-per-operation layer that CLI commands call directly. Each
exported function opens nothing itself — callers pass an open
storage.Txn — so a command that needs several operations atomically
(bulk import, for instance) can wrap them in one transaction.

Create, Close and Reopen each append exactly one HistorySnapshot and
leave Version one higher (Create starts it at 1). Update (and the
label/link edits routed through it) folds every auto-merged field into
a single version bump and snapshot, and makes none when nothing merged.
Resolve and Claim live in pkg/concurrency, which this package delegates
to rather than duplicating; each bumps Version once with one snapshot.
DepAdd and DepRemove rewrite blocked_by and the reverse index in place
without bumping Version or appending a snapshot, and Delete removes the
todo's history along with its record.
*/
package todo
