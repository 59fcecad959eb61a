package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/practiceraptor/execcore/internal/worker"
	"github.com/practiceraptor/execcore/pkg/constants"
	"github.com/practiceraptor/execcore/pkg/model"
	"github.com/practiceraptor/execcore/pkg/value"
)

// buildExecCoreBinary compiles this package into a temporary directory so
// the self re-exec mechanism (internal/supervisor's processSpawner calling
// os.Executable()) has a real binary to re-exec itself from; the `go test`
// binary that runs everything else in this tree is not that binary.
func buildExecCoreBinary(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	assert.NilError(t, err)

	dir := t.TempDir()
	binPath := filepath.Join(dir, "execcore-under-test")

	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = wd
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("build execcore binary failed: %v: %s", err, string(output))
	}
	return binPath
}

func TestChildModeRunsRequestAndRespondsWithVerdict(t *testing.T) {
	bin := buildExecCoreBinary(t)

	req := worker.Request{
		Source:     "def solution(x):\n    return x + 1\n",
		Input:      value.Inputs{"x": value.Int(41)},
		EntryPoint: "solution",
	}
	body, err := json.Marshal(req)
	assert.NilError(t, err)
	body = append(body, '\n')

	cmd := exec.Command(bin, constants.ChildModeFlag)
	cmd.Stdin = bytes.NewReader(body)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	assert.NilError(t, cmd.Run())

	var resp worker.Response
	assert.NilError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Assert(t, resp.Success)
	assert.Equal(t, resp.Actual.Kind, value.KindInt)
	assert.Equal(t, resp.Actual.I, int64(42))
}

func TestCLIModeRunsSuiteOverRealChildProcesses(t *testing.T) {
	bin := buildExecCoreBinary(t)

	j := job{
		Source: "def solution(x):\n    return x * 2\n",
		TestCases: []model.TestCase{
			{Input: value.Inputs{"x": value.Int(1)}, Expected: value.Int(2)},
			{Input: value.Inputs{"x": value.Int(2)}, Expected: value.Int(4)},
		},
		EntryPoint: "def solution(x):",
		DeadlineMs: 5000,
	}
	body, err := json.Marshal(j)
	assert.NilError(t, err)

	cmd := exec.Command(bin)
	cmd.Stdin = bytes.NewReader(body)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		t.Fatalf("cli run failed: %v: %s", err, stdout.String())
	}

	var verdict model.SuiteVerdict
	assert.NilError(t, json.Unmarshal(stdout.Bytes(), &verdict))
	assert.Assert(t, verdict.Success)
	assert.Equal(t, len(verdict.Results), 2)
}
