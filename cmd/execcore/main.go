// Command execcore is the execution core's CLI entry point. Run without
// arguments, it reads one job (source, test cases, entry point, deadline)
// as JSON on stdin and writes the resulting suite verdict as JSON on
// stdout. Run with the hidden constants.ChildModeFlag argument, it instead
// becomes a Child Worker: this is how the Supervisor gets an isolated
// process of the same executable to run one test case in, by re-executing
// itself rather than forking a separate binary.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"

	"github.com/practiceraptor/execcore/internal/obslog"
	"github.com/practiceraptor/execcore/internal/worker"
	"github.com/practiceraptor/execcore/pkg/constants"
	"github.com/practiceraptor/execcore/pkg/execcore"
	"github.com/practiceraptor/execcore/pkg/model"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == constants.ChildModeFlag {
		runChild()
		return
	}
	runCLI()
}

// runChild is the Child Worker side of the Supervisor's self re-exec
// protocol: exactly one request in, exactly one response out.
func runChild() {
	reader := bufio.NewReaderSize(os.Stdin, 64*1024)
	line, err := reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		os.Exit(1)
	}

	var req worker.Request
	if err := json.Unmarshal(line, &req); err != nil {
		os.Exit(1)
	}

	resp := worker.Run(req)

	out, err := json.Marshal(resp)
	if err != nil {
		os.Exit(1)
	}
	out = append(out, '\n')
	if _, err := os.Stdout.Write(out); err != nil {
		os.Exit(1)
	}
}

// job is the CLI-mode request envelope: one submission and its suite.
type job struct {
	Source     string           `json:"source"`
	TestCases  []model.TestCase `json:"test_cases"`
	EntryPoint string           `json:"entry_point"`
	DeadlineMs int              `json:"deadline_ms"`
}

func runCLI() {
	log := obslog.NewNamedLogger("cli")

	var j job
	if err := json.NewDecoder(os.Stdin).Decode(&j); err != nil {
		log.Fatalf("failed to decode job from stdin: %v", err)
	}

	core := execcore.New()
	verdict := core.RunSuite(context.Background(), j.Source, j.TestCases, j.EntryPoint, j.DeadlineMs)

	if err := json.NewEncoder(os.Stdout).Encode(verdict); err != nil {
		log.Fatalf("failed to encode suite verdict: %v", err)
	}
}
