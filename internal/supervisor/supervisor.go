// Package supervisor implements C4: owning the lifetime of one Child
// Worker process for one test case. It spawns the child, hands it a
// worker.Request over stdin, waits at most deadline_ms for a
// worker.Response on stdout, and guarantees the child is gone by the time
// RunOne returns, win or lose.
package supervisor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/practiceraptor/execcore/internal/comparator"
	"github.com/practiceraptor/execcore/internal/obslog"
	"github.com/practiceraptor/execcore/internal/worker"
	"github.com/practiceraptor/execcore/pkg/constants"
	"github.com/practiceraptor/execcore/pkg/fault"
	"github.com/practiceraptor/execcore/pkg/model"
)

// Supervisor runs one test case in an isolated child process.
type Supervisor interface {
	// RunOne returns a TestVerdict for every outcome a test case can have
	// on its own: pass, wrong answer, runtime fault, timeout, missing
	// entry point. It returns a non-nil Fault only when the child itself
	// is unaccounted for (WorkerCrashed) — the one outcome the caller
	// cannot turn into a meaningful per-test verdict.
	RunOne(ctx context.Context, tc model.TestCase, source, entryPoint string, deadlineMs int) (*model.TestVerdict, *fault.Fault)
}

type supervisor struct {
	spawner      ChildSpawner
	memoryHintMB int
	log          *zap.SugaredLogger
}

// New builds a Supervisor backed by the given ChildSpawner. memoryHintMB
// is not enforced (see SPEC_FULL.md's Non-goals); it is only logged per
// run so an operator can see what was requested.
func New(spawner ChildSpawner, memoryHintMB int) Supervisor {
	return &supervisor{spawner: spawner, memoryHintMB: memoryHintMB, log: obslog.NewNamedLogger("supervisor")}
}

func (s *supervisor) RunOne(ctx context.Context, tc model.TestCase, source, entryPoint string, deadlineMs int) (*model.TestVerdict, *fault.Fault) {
	s.log.Debugw("running test case", "deadline_ms", deadlineMs, "memory_hint_mb", s.memoryHintMB)

	child, err := s.spawner.Spawn()
	if err != nil {
		return nil, fault.WorkerCrashed(fmt.Sprintf("failed to spawn child worker: %v", err))
	}

	req := worker.Request{Source: source, Input: tc.Input.Clone(), EntryPoint: entryPoint}
	reqBytes, err := json.Marshal(req)
	if err != nil {
		_ = child.Kill()
		return nil, fault.WorkerCrashed(fmt.Sprintf("failed to encode request: %v", err))
	}

	exitCh := make(chan error, 1)
	go func() { exitCh <- child.Wait() }()

	respCh := make(chan worker.Response, 1)
	ioErrCh := make(chan error, 1)
	go s.pipe(child, reqBytes, respCh, ioErrCh)

	timer := time.NewTimer(time.Duration(deadlineMs) * time.Millisecond)
	defer timer.Stop()

	select {
	case resp := <-respCh:
		<-exitCh
		return s.verdictFromResponse(tc, resp), nil

	case err := <-ioErrCh:
		<-exitCh
		if err != nil {
			s.log.Warnw("child worker produced no parseable outcome", "error", err)
			return nil, fault.WorkerCrashed(err.Error())
		}
		return nil, fault.WorkerCrashed("child worker exited without delivering an outcome")

	case <-timer.C:
		s.terminate(child)
		<-exitCh
		return &model.TestVerdict{
			TestCase:     tc,
			Passed:       false,
			ElapsedMs:    deadlineMs,
			ErrorMessage: fault.Timeout(deadlineMs).Error(),
		}, nil

	case <-ctx.Done():
		s.terminate(child)
		<-exitCh
		return nil, fault.WorkerCrashed(ctx.Err().Error())
	}
}

// pipe writes the request and reads back exactly one response line. It
// runs on its own goroutine so RunOne's select can race it against the
// deadline timer without blocking on either stdin or stdout.
func (s *supervisor) pipe(child Child, reqBytes []byte, respCh chan<- worker.Response, ioErrCh chan<- error) {
	if _, err := child.Stdin().Write(append(reqBytes, '\n')); err != nil {
		ioErrCh <- err
		return
	}
	_ = child.Stdin().Close()

	scanner := bufio.NewScanner(child.Stdout())
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		ioErrCh <- scanner.Err()
		return
	}

	var resp worker.Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		ioErrCh <- err
		return
	}
	respCh <- resp
}

// terminate asks the child to exit, gives it constants.TerminationGrace
// to do so on its own, then kills it unconditionally. Safe to call even
// if the child has already exited.
func (s *supervisor) terminate(child Child) {
	_ = child.Signal()
	time.Sleep(constants.TerminationGrace)
	_ = child.Kill()
}

// verdictFromResponse turns a worker outcome into a TestVerdict, invoking
// the comparator when the child produced an actual value to judge.
func (s *supervisor) verdictFromResponse(tc model.TestCase, resp worker.Response) *model.TestVerdict {
	if !resp.Success {
		msg := "child worker reported failure"
		if resp.Fault != nil {
			msg = resp.Fault.Error()
		}
		return &model.TestVerdict{
			TestCase:     tc,
			Passed:       false,
			ElapsedMs:    resp.ElapsedMs,
			ErrorMessage: msg,
		}
	}

	passed := comparator.Equal(resp.Actual, tc.Expected)
	verdict := &model.TestVerdict{
		TestCase:  tc,
		Passed:    passed,
		Actual:    resp.Actual,
		HasActual: true,
		ElapsedMs: resp.ElapsedMs,
	}
	if !passed {
		verdict.ErrorMessage = fmt.Sprintf("Expected %s, got %s", tc.Expected.String(), resp.Actual.String())
	}
	return verdict
}
