// Package constants collects the fixed values the execution core agrees on
// with its callers: deadlines, tolerances, fault tags, and queue message
// types.
package constants

import "time"

// Deadline bounds, milliseconds. The core clamps any caller-supplied
// deadline into this range before running a test case.
const (
	MinDeadlineMs     = 1
	MaxDeadlineMs     = 60000
	DefaultDeadlineMs = 5000
)

// DefaultMemoryHintMB is the advisory memory ceiling used when a caller
// does not supply one. Never enforced by the core itself.
const DefaultMemoryHintMB = 256

// ComparatorFloatTolerance is the maximum absolute difference between two
// floating-point DynamicValues that still counts as equal.
const ComparatorFloatTolerance = 1e-9

// DefaultEntryPoint is returned by the entry-point resolver when a
// signature string contains no "def name(" signature.
const DefaultEntryPoint = "solution"

// EntryPointKeyword is the function-definition keyword the resolver looks
// for in a signature string.
const EntryPointKeyword = "def"

// TerminationGrace is how long the supervisor waits for a child to exit on
// its own after a termination request before force-killing it.
const TerminationGrace = 150 * time.Millisecond

// ChildModeFlag is the hidden first argument that tells the executable to
// run as a Child Worker instead of its normal CLI entry point.
const ChildModeFlag = "--raptor-child-worker"

// FaultKind tags which ExecutionFault variant a fault value carries.
type FaultKind string

// Fault tags, one per ExecutionFault variant. These travel across the
// supervisor<->child boundary and appear in ExecutionFault.Kind.
const (
	FaultSyntax        FaultKind = "syntax"
	FaultRuntime       FaultKind = "runtime"
	FaultTimeout       FaultKind = "timeout"
	FaultMissingEntry  FaultKind = "missing_entry"
	FaultWorkerCrashed FaultKind = "worker_crashed"
)

func (k FaultKind) String() string { return string(k) }

// Queue message types, used by the ambient queue consumer only; the
// Execution Core itself has no notion of a queue.
const (
	QueueMessageTypeSubmission = "submission"
	QueueMessageTypeResult     = "result"
)

// CacheTTL is how long a cached syntax-validation outcome stays valid.
const CacheTTL = 24 * time.Hour
