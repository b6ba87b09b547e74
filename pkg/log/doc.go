/*
Package log provides structured logging for Jari using zerolog.

The mutating operations Create, Close, Reopen and Delete (pkg/todo) and
Update, Claim and Resolve (pkg/concurrency) each emit exactly one
structured log line per call via LogOperation: operation name, todo id,
agent, resulting version, a per-operation correlation id (txn_id, a
google/uuid v4 minted by NewTxnID when the operation starts), and an
outcome (committed, failed, error). Label and link edits go through
Update and log as "update"; Show and the dependency edits do not log.
Several operations sharing one Store transaction (a bulk import) each
get their own txn_id. committed logs at Info; failed (a recoverable
domain error such as ConflictPending, AlreadyClaimed, or NotClaimable)
logs at Warn; error (a storage-fatal failure) logs at Error.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stdout})

	// inside an operation such as Close:
	txnID := log.NewTxnID()
	defer func() { log.LogOperation("close", id, agent, versionOf(result), txnID, err) }()

Component loggers (WithComponent, WithAgent, WithTodoID, WithTxnID) are
cheap zerolog child loggers for ad-hoc context beyond LogOperation's
fixed field set; they share the global logger's level and writer.
*/
package log
