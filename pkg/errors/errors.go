// Package errors holds sentinel errors for conditions that are
// configuration or programmer mistakes rather than ExecutionFault outcomes.
// ExecutionFault (pkg/fault) carries submission-level failures; these
// sentinels are for everything around that boundary.
package errors

import "errors"

var (
	ErrExecutableNotFound = errors.New("could not resolve path to own executable for child re-exec")
	ErrNoOutcomeFromChild = errors.New("child exited without delivering an outcome")
	ErrUnknownMessageType = errors.New("unknown queue message type")
	ErrMaxWorkersReached  = errors.New("maximum number of workers reached")
)
