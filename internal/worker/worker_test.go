package worker_test

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/practiceraptor/execcore/internal/comparator"
	"github.com/practiceraptor/execcore/internal/worker"
	"github.com/practiceraptor/execcore/pkg/value"
)

func TestRunCorrectSolution(t *testing.T) {
	resp := worker.Run(worker.Request{
		Source:     "def solution(x):\n    return x * 2\n",
		Input:      value.Inputs{"x": value.Int(5)},
		EntryPoint: "solution",
	})
	assert.Assert(t, resp.Success)
	assert.Equal(t, resp.Actual.Kind, value.KindInt)
	assert.Equal(t, resp.Actual.I, int64(10))
	assert.Assert(t, resp.ElapsedMs >= 0)
}

func TestRunWrongAnswerStillSucceedsAtWorkerLevel(t *testing.T) {
	resp := worker.Run(worker.Request{
		Source:     "def solution(x):\n    return x + 1\n",
		Input:      value.Inputs{"x": value.Int(5)},
		EntryPoint: "solution",
	})
	assert.Assert(t, resp.Success)
	assert.Equal(t, resp.Actual.I, int64(6))
}

func TestRunZeroDivisionSurfacesAsRuntimeFault(t *testing.T) {
	resp := worker.Run(worker.Request{
		Source:     "def solution(x):\n    return 1 / 0\n",
		Input:      value.Inputs{"x": value.Int(1)},
		EntryPoint: "solution",
	})
	assert.Assert(t, !resp.Success)
	assert.Assert(t, resp.Fault != nil)
	assert.Assert(t, strings.Contains(strings.ToLower(resp.Fault.Exception), "zerodivision"))
}

func TestRunMissingEntryPoint(t *testing.T) {
	resp := worker.Run(worker.Request{
		Source:     "def other(x):\n    return x\n",
		Input:      value.Inputs{"x": value.Int(1)},
		EntryPoint: "solution",
	})
	assert.Assert(t, !resp.Success)
	assert.Assert(t, resp.Fault != nil)
	assert.Assert(t, strings.Contains(resp.Fault.Error(), "'solution' not found"))
}

func TestRunFloatTolerance(t *testing.T) {
	resp := worker.Run(worker.Request{
		Source:     "def solution():\n    return 0.1 + 0.2\n",
		Input:      value.Inputs{},
		EntryPoint: "solution",
	})
	assert.Assert(t, resp.Success)
	assert.Equal(t, resp.Actual.Kind, value.KindFloat)
	assert.Assert(t, comparator.Equal(resp.Actual, value.Float(0.3)))
}

func TestRunSandboxRejectionOnUnresolvedGlobal(t *testing.T) {
	resp := worker.Run(worker.Request{
		Source:     "def solution():\n    return requests.get('http://x')\n",
		Input:      value.Inputs{},
		EntryPoint: "solution",
	})
	assert.Assert(t, !resp.Success)
	assert.Assert(t, resp.Fault != nil)
}

func TestRunCollectionRoundTrip(t *testing.T) {
	resp := worker.Run(worker.Request{
		Source: "def solution(items):\n    return {\"doubled\": [x * 2 for x in items]}\n",
		Input: value.Inputs{
			"items": value.List(value.Int(1), value.Int(2), value.Int(3)),
		},
		EntryPoint: "solution",
	})
	assert.Assert(t, resp.Success)
	assert.Equal(t, resp.Actual.Kind, value.KindMap)
	doubled, ok := resp.Actual.Map["doubled"]
	assert.Assert(t, ok)
	assert.Equal(t, len(doubled.List), 3)
	assert.Equal(t, doubled.List[0].I, int64(2))
}
