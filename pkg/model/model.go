// Package model defines the entities that cross the execution core's
// public boundary: the test cases callers supply and the verdicts the
// core produces from them. All are immutable once constructed.
package model

import (
	"encoding/json"

	"github.com/practiceraptor/execcore/pkg/value"
)

// TestCase is one case in a submission's suite, built by an external
// loader and read-only inside the core.
type TestCase struct {
	Input       value.Inputs `json:"input"`
	Expected    value.Value  `json:"expected"`
	Description string       `json:"description,omitempty"`
	// Hidden is advisory; the core does not change behavior based on it.
	Hidden bool `json:"hidden,omitempty"`
}

// TestVerdict is the per-test-case outcome the Test Runner produces.
// Actual is only meaningful when Passed is true or the entry point
// returned a value before the comparator ran; on a timeout it is the zero
// Value and must not be read.
type TestVerdict struct {
	TestCase     TestCase    `json:"test_case"`
	Passed       bool        `json:"passed"`
	Actual       value.Value `json:"actual"`
	HasActual    bool        `json:"has_actual"`
	ElapsedMs    int         `json:"elapsed_ms"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// SuiteVerdict is produced by the Test Runner exactly once per submission.
// Error is set only when the suite could not be evaluated at all (a
// suite-level fatal: Syntax or WorkerCrashed); in that case Results is
// empty and Success is false.
type SuiteVerdict struct {
	Success        bool          `json:"success"`
	Results        []TestVerdict `json:"results"`
	TotalElapsedMs int           `json:"total_elapsed_ms"`
	Error          error         `json:"-"`
}

// suiteVerdictWire mirrors SuiteVerdict for JSON purposes, surfacing
// Error's message since the error interface itself does not marshal.
type suiteVerdictWire struct {
	Success        bool          `json:"success"`
	Results        []TestVerdict `json:"results"`
	TotalElapsedMs int           `json:"total_elapsed_ms"`
	Error          string        `json:"error,omitempty"`
}

func (s SuiteVerdict) MarshalJSON() ([]byte, error) {
	wire := suiteVerdictWire{Success: s.Success, Results: s.Results, TotalElapsedMs: s.TotalElapsedMs}
	if s.Error != nil {
		wire.Error = s.Error.Error()
	}
	return json.Marshal(wire)
}
