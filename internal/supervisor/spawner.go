package supervisor

import (
	"io"
	"os"
	"os/exec"

	customErr "github.com/practiceraptor/execcore/pkg/errors"

	"github.com/practiceraptor/execcore/pkg/constants"
)

// Child is a running Child Worker process: exactly one pipe in, one pipe
// out, and the ability to wait for or force its exit. Abstracted so
// tests can substitute an in-process fake instead of forking a real
// process, the way the teacher's DockerClient seam lets executor tests
// avoid real containers.
type Child interface {
	Stdin() io.WriteCloser
	Stdout() io.Reader
	Wait() error
	Signal() error
	Kill() error
}

// ChildSpawner creates a new Child on demand.
type ChildSpawner interface {
	Spawn() (Child, error)
}

// processSpawner spawns a child by re-executing the current binary with
// a hidden flag (constants.ChildModeFlag) that cmd/execcore recognizes
// and branches on to run as a Child Worker instead of its normal CLI.
type processSpawner struct{}

// NewProcessSpawner returns the production ChildSpawner.
func NewProcessSpawner() ChildSpawner { return &processSpawner{} }

func (processSpawner) Spawn() (Child, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, customErr.ErrExecutableNotFound
	}

	cmd := exec.Command(exe, constants.ChildModeFlag)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &processChild{cmd: cmd, stdin: stdin, stdout: stdout}, nil
}

type processChild struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.Reader
}

func (c *processChild) Stdin() io.WriteCloser { return c.stdin }
func (c *processChild) Stdout() io.Reader     { return c.stdout }
func (c *processChild) Wait() error           { return c.cmd.Wait() }

func (c *processChild) Signal() error {
	if c.cmd.Process == nil {
		return nil
	}
	return c.cmd.Process.Signal(os.Interrupt)
}

func (c *processChild) Kill() error {
	if c.cmd.Process == nil {
		return nil
	}
	return c.cmd.Process.Kill()
}
