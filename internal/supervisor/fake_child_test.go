package supervisor_test

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/practiceraptor/execcore/internal/worker"
)

// fakeChild simulates a Child Worker process entirely in memory: no real
// fork, no real executable. Lets RunOne's timeout and crash-detection
// paths be exercised deterministically.
type fakeChild struct {
	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter
	waitCh  chan error

	mu       sync.Mutex
	killed   bool
	signaled bool
}

func newFakeChild() *fakeChild {
	r, w := io.Pipe()
	return &fakeChild{stdoutR: r, stdoutW: w, waitCh: make(chan error, 1)}
}

func (f *fakeChild) Stdin() io.WriteCloser { return nopWriteCloser{io.Discard} }
func (f *fakeChild) Stdout() io.Reader     { return f.stdoutR }
func (f *fakeChild) Wait() error           { return <-f.waitCh }

func (f *fakeChild) Signal() error {
	f.mu.Lock()
	f.signaled = true
	f.mu.Unlock()
	return nil
}

func (f *fakeChild) Kill() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.killed {
		f.killed = true
		f.stdoutW.Close()
		f.waitCh <- nil
	}
	return nil
}

func (f *fakeChild) wasKilled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.killed
}

func (f *fakeChild) wasSignaled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled
}

// respond simulates the child writing one response line then exiting
// cleanly on its own, without needing to be killed.
func (f *fakeChild) respond(resp worker.Response) {
	data, _ := json.Marshal(resp)
	go func() {
		f.stdoutW.Write(append(data, '\n'))
		f.stdoutW.Close()
		f.waitCh <- nil
	}()
}

// crash simulates the child exiting immediately without writing anything,
// as if it panicked or was killed by the OS before it could respond.
func (f *fakeChild) crash() {
	go func() {
		f.stdoutW.Close()
		f.waitCh <- nil
	}()
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
