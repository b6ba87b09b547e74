// Package jarierr defines Jari's closed sum of domain and storage
// errors. Each kind is a distinct Go type carrying the
// context a caller needs to render a one-line message, plus the exit
// code the CLI adapter should use.
package jarierr

import "fmt"

// Exit codes returned by the CLI process.
const (
	ExitOK              = 0
	ExitUserError       = 1
	ExitConflictPending = 2
	ExitStorageError    = 3
	ExitCycleDetected   = 4
)

// NotFoundError is returned when a todo or edge is missing.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("not found: %s", e.ID) }
func (e *NotFoundError) ExitCode() int { return ExitUserError }

// InvalidInputError covers bad priority, empty title, unknown
// resolution strategy, and similar caller mistakes.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Field, e.Reason)
}
func (e *InvalidInputError) ExitCode() int { return ExitUserError }

// CycleDetectedError is returned when a dependency addition would
// create a cycle in the blocked_by graph.
type CycleDetectedError struct {
	Path []string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("dependency addition would create a cycle: %v", e.Path)
}
func (e *CycleDetectedError) ExitCode() int { return ExitCycleDetected }

// ConflictPendingError is returned by update() when fields could not
// be auto-merged; it is non-fatal and actionable via resolve().
type ConflictPendingError struct {
	Fields []string
}

func (e *ConflictPendingError) Error() string {
	return fmt.Sprintf("conflict pending on fields: %v", e.Fields)
}
func (e *ConflictPendingError) ExitCode() int { return ExitConflictPending }

// AlreadyClaimedError is returned when a claim lost the race.
type AlreadyClaimedError struct {
	By string
}

func (e *AlreadyClaimedError) Error() string { return fmt.Sprintf("already claimed by %s", e.By) }
func (e *AlreadyClaimedError) ExitCode() int { return ExitUserError }

// NotClaimableError is returned when a todo has active blockers or is
// in a terminal status.
type NotClaimableError struct {
	Reason string
}

func (e *NotClaimableError) Error() string { return fmt.Sprintf("not claimable: %s", e.Reason) }
func (e *NotClaimableError) ExitCode() int { return ExitUserError }

// NotClosedError is returned when reopen() is called on a todo that
// is not currently closed.
type NotClosedError struct {
	ID string
}

func (e *NotClosedError) Error() string { return fmt.Sprintf("%s is not closed", e.ID) }
func (e *NotClosedError) ExitCode() int { return ExitUserError }

// NoConflictsError is returned when resolve() is invoked with nothing
// pending for the agent on that todo.
type NoConflictsError struct {
	ID string
}

func (e *NoConflictsError) Error() string { return fmt.Sprintf("no pending conflicts on %s", e.ID) }
func (e *NoConflictsError) ExitCode() int { return ExitUserError }

// InvalidOverrideError is returned when a MANUAL_MERGE override fails
// to validate against its field's domain.
type InvalidOverrideError struct {
	Field  string
	Reason string
}

func (e *InvalidOverrideError) Error() string {
	return fmt.Sprintf("invalid override for %s: %s", e.Field, e.Reason)
}
func (e *InvalidOverrideError) ExitCode() int { return ExitUserError }

// SelfEdgeError is returned when a dependency would make a todo block
// on itself.
type SelfEdgeError struct {
	ID string
}

func (e *SelfEdgeError) Error() string { return fmt.Sprintf("%s cannot depend on itself", e.ID) }
func (e *SelfEdgeError) ExitCode() int { return ExitUserError }

// StorageFullError is a fatal error: the memory-mapped file has
// exceeded its configured size.
type StorageFullError struct {
	Err error
}

func (e *StorageFullError) Error() string { return fmt.Sprintf("storage full: %v", e.Err) }
func (e *StorageFullError) Unwrap() error { return e.Err }
func (e *StorageFullError) ExitCode() int { return ExitStorageError }

// StorageCorruptError is a fatal error: the underlying database file
// failed an integrity check on open or during a transaction.
type StorageCorruptError struct {
	Err error
}

func (e *StorageCorruptError) Error() string { return fmt.Sprintf("storage corrupt: %v", e.Err) }
func (e *StorageCorruptError) Unwrap() error { return e.Err }
func (e *StorageCorruptError) ExitCode() int { return ExitStorageError }

// ExitCoder is implemented by every error kind above; the CLI adapter
// uses it to pick a process exit code without a type switch.
type ExitCoder interface {
	error
	ExitCode() int
}
