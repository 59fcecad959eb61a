package runner_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"gotest.tools/v3/assert"

	"github.com/practiceraptor/execcore/internal/cache"
	"github.com/practiceraptor/execcore/internal/runner"
	"github.com/practiceraptor/execcore/pkg/fault"
	"github.com/practiceraptor/execcore/pkg/model"
	"github.com/practiceraptor/execcore/pkg/value"
)

// newTestCache gives each test its own in-memory Redis server, so syntax
// cache hits from one test never leak into another.
func newTestCache(t *testing.T) cache.SyntaxCache {
	t.Helper()
	srv, err := miniredis.Run()
	assert.NilError(t, err)
	t.Cleanup(srv.Close)

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	return cache.New(client)
}

// fakeSupervisor returns one canned outcome per call, in order, letting
// tests drive the Runner through a scripted sequence of test cases
// without any real subprocess.
type fakeSupervisor struct {
	verdicts []*model.TestVerdict
	faults   []*fault.Fault
	calls    int
}

func (f *fakeSupervisor) RunOne(_ context.Context, tc model.TestCase, _ string, _ string, _ int) (*model.TestVerdict, *fault.Fault) {
	i := f.calls
	f.calls++
	return f.verdicts[i], f.faults[i]
}

const validSource = "def solution(x):\n    return x\n"

func TestRunSuiteAllPass(t *testing.T) {
	sup := &fakeSupervisor{
		verdicts: []*model.TestVerdict{
			{Passed: true, Actual: value.Int(1), ElapsedMs: 2},
			{Passed: true, Actual: value.Int(2), ElapsedMs: 3},
		},
		faults: []*fault.Fault{nil, nil},
	}
	r := runner.New(sup, newTestCache(t))
	testCases := []model.TestCase{
		{Input: value.Inputs{"x": value.Int(1)}, Expected: value.Int(1)},
		{Input: value.Inputs{"x": value.Int(2)}, Expected: value.Int(2)},
	}

	verdict := r.RunSuite(context.Background(), validSource, testCases, "solution", 1000)
	assert.Assert(t, verdict.Success)
	assert.Equal(t, len(verdict.Results), 2)
	assert.Equal(t, verdict.TotalElapsedMs, 5)
}

func TestRunSuiteStopsAtFirstFailure(t *testing.T) {
	sup := &fakeSupervisor{
		verdicts: []*model.TestVerdict{
			{Passed: false, ElapsedMs: 1, ErrorMessage: "wrong answer"},
			{Passed: true, ElapsedMs: 1},
		},
		faults: []*fault.Fault{nil, nil},
	}
	r := runner.New(sup, newTestCache(t))
	testCases := []model.TestCase{
		{Input: value.Inputs{}, Expected: value.Int(1)},
		{Input: value.Inputs{}, Expected: value.Int(2)},
	}

	verdict := r.RunSuite(context.Background(), validSource, testCases, "solution", 1000)
	assert.Assert(t, !verdict.Success)
	assert.Equal(t, len(verdict.Results), 1)
}

func TestRunSuiteRejectsUnparsableSource(t *testing.T) {
	sup := &fakeSupervisor{}
	r := runner.New(sup, newTestCache(t))
	testCases := []model.TestCase{{Input: value.Inputs{}, Expected: value.Int(1)}}

	verdict := r.RunSuite(context.Background(), "def broken(:\n", testCases, "solution", 1000)
	assert.Assert(t, !verdict.Success)
	assert.Assert(t, verdict.Error != nil)
	assert.Equal(t, len(verdict.Results), 0)
}

func TestRunSuiteAbortsOnWorkerCrashed(t *testing.T) {
	sup := &fakeSupervisor{
		verdicts: []*model.TestVerdict{nil},
		faults:   []*fault.Fault{fault.WorkerCrashed("no outcome")},
	}
	r := runner.New(sup, newTestCache(t))
	testCases := []model.TestCase{{Input: value.Inputs{}, Expected: value.Int(1)}}

	verdict := r.RunSuite(context.Background(), validSource, testCases, "solution", 1000)
	assert.Assert(t, !verdict.Success)
	assert.Assert(t, verdict.Error != nil)
	assert.Equal(t, len(verdict.Results), 0)
}

func TestRunSuiteAbortsOnWorkerCrashedAfterPassingVerdict(t *testing.T) {
	sup := &fakeSupervisor{
		verdicts: []*model.TestVerdict{
			{Passed: true, Actual: value.Int(1), ElapsedMs: 2},
			nil,
		},
		faults: []*fault.Fault{nil, fault.WorkerCrashed("no outcome")},
	}
	r := runner.New(sup, newTestCache(t))
	testCases := []model.TestCase{
		{Input: value.Inputs{"x": value.Int(1)}, Expected: value.Int(1)},
		{Input: value.Inputs{"x": value.Int(2)}, Expected: value.Int(2)},
	}

	verdict := r.RunSuite(context.Background(), validSource, testCases, "solution", 1000)
	assert.Assert(t, !verdict.Success)
	assert.Assert(t, verdict.Error != nil)
	assert.Equal(t, len(verdict.Results), 0)
}

func TestRunSuiteWithNoTestCasesSucceedsVacuously(t *testing.T) {
	sup := &fakeSupervisor{}
	r := runner.New(sup, newTestCache(t))

	verdict := r.RunSuite(context.Background(), validSource, nil, "solution", 1000)
	assert.Assert(t, verdict.Success)
	assert.Equal(t, len(verdict.Results), 0)
}
