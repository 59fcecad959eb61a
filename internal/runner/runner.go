// Package runner implements C6, the Test Runner: the per-submission
// orchestrator that validates syntax once, resolves the entry point once,
// then drives the Supervisor one test case at a time, stopping at the
// first test that does not pass.
package runner

import (
	"context"
	"regexp"
	"strings"

	"github.com/practiceraptor/execcore/internal/cache"
	"github.com/practiceraptor/execcore/internal/entrypoint"
	"github.com/practiceraptor/execcore/internal/supervisor"
	"github.com/practiceraptor/execcore/pkg/model"
)

var bareIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Runner drives a full suite for one submission.
type Runner interface {
	RunSuite(ctx context.Context, source string, testCases []model.TestCase, entryPointSignature string, deadlineMs int) *model.SuiteVerdict
}

type runner struct {
	supervisor supervisor.Supervisor
	syntax     cache.SyntaxCache
}

// New builds a Runner backed by the given Supervisor and syntax cache.
// Validation is memoized by source text so repeated runs of the same
// submission (a resubmission, a retried call) only pay the parse cost
// once, shared across every process pointed at the same cache.
func New(sup supervisor.Supervisor, syntax cache.SyntaxCache) Runner {
	return &runner{supervisor: sup, syntax: syntax}
}

func (r *runner) RunSuite(ctx context.Context, source string, testCases []model.TestCase, entryPointSignature string, deadlineMs int) *model.SuiteVerdict {
	if f := r.syntax.ValidateSyntax(ctx, source); f != nil {
		return &model.SuiteVerdict{Success: false, Error: f}
	}

	// A bare identifier is taken as the entry-point name itself; anything
	// else is treated as a signature and resolved by C7.
	entryPoint := strings.TrimSpace(entryPointSignature)
	if !bareIdentifier.MatchString(entryPoint) {
		entryPoint = entrypoint.Resolve(entryPointSignature)
	}

	results := make([]model.TestVerdict, 0, len(testCases))
	total := 0
	for _, tc := range testCases {
		verdict, wf := r.supervisor.RunOne(ctx, tc, source, entryPoint, deadlineMs)
		if wf != nil {
			return &model.SuiteVerdict{Success: false, TotalElapsedMs: total, Error: wf}
		}

		total += verdict.ElapsedMs
		results = append(results, *verdict)
		if !verdict.Passed {
			break
		}
	}

	return &model.SuiteVerdict{
		Success:        allPassed(results),
		Results:        results,
		TotalElapsedMs: total,
	}
}

func allPassed(results []model.TestVerdict) bool {
	for _, v := range results {
		if !v.Passed {
			return false
		}
	}
	return true
}
