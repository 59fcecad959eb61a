// Package fault defines ExecutionFault, the tagged variant the execution
// core uses to report failures that happen before or instead of a normal
// pass/fail verdict.
package fault

import (
	"fmt"

	"github.com/practiceraptor/execcore/pkg/constants"
)

// Fault is an ExecutionFault: exactly one of the five variants below is
// populated, selected by Kind. It implements error so it can travel
// through ordinary Go error-handling while still carrying structured
// fields for callers that want them.
type Fault struct {
	Kind constants.FaultKind `json:"kind"`

	// Syntax
	Line    int    `json:"line,omitempty"`
	Message string `json:"message,omitempty"`

	// Runtime
	Exception string `json:"exception,omitempty"`

	// Timeout
	DeadlineMs int `json:"deadline_ms,omitempty"`

	// MissingEntry
	Name string `json:"name,omitempty"`

	// WorkerCrashed
	Detail string `json:"detail,omitempty"`
}

func Syntax(line int, message string) *Fault {
	return &Fault{Kind: constants.FaultSyntax, Line: line, Message: message}
}

func Runtime(exception, message string) *Fault {
	return &Fault{Kind: constants.FaultRuntime, Exception: exception, Message: message}
}

func Timeout(deadlineMs int) *Fault {
	return &Fault{Kind: constants.FaultTimeout, DeadlineMs: deadlineMs}
}

func MissingEntry(name string) *Fault {
	return &Fault{Kind: constants.FaultMissingEntry, Name: name}
}

func WorkerCrashed(detail string) *Fault {
	return &Fault{Kind: constants.FaultWorkerCrashed, Detail: detail}
}

func (f *Fault) Error() string {
	switch f.Kind {
	case constants.FaultSyntax:
		return fmt.Sprintf("Line %d: %s", f.Line, f.Message)
	case constants.FaultRuntime:
		return fmt.Sprintf("%s: %s", f.Exception, f.Message)
	case constants.FaultTimeout:
		return fmt.Sprintf("Timeout: exceeded %d seconds", f.DeadlineMs/1000)
	case constants.FaultMissingEntry:
		return fmt.Sprintf("Function '%s' not found in code", f.Name)
	case constants.FaultWorkerCrashed:
		return fmt.Sprintf("worker crashed: %s", f.Detail)
	default:
		return "unknown execution fault"
	}
}
