// Package execcore is the execution core's public surface: validate a
// submission's syntax on its own, or run it against a full test suite.
// Everything underneath (sandboxing, process isolation, comparison) is
// an implementation detail callers never need to import directly.
package execcore

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/practiceraptor/execcore/internal/cache"
	"github.com/practiceraptor/execcore/internal/config"
	"github.com/practiceraptor/execcore/internal/runner"
	"github.com/practiceraptor/execcore/internal/supervisor"
	"github.com/practiceraptor/execcore/internal/validator"
	"github.com/practiceraptor/execcore/pkg/fault"
	"github.com/practiceraptor/execcore/pkg/model"
)

// ValidateSyntax runs C1 alone, without spending a subprocess on it.
func ValidateSyntax(source string) *fault.Fault {
	return validator.ValidateSyntax(source)
}

// Core evaluates submissions against test suites. The zero value is not
// usable; build one with New.
type Core struct {
	runner            runner.Runner
	defaultDeadlineMs int
}

// New builds a Core backed by real child-worker subprocesses and a Redis-
// backed syntax cache, configured the same way the rest of this codebase
// reads its configuration (see internal/config).
func New() *Core {
	cfg := config.Load()
	sup := supervisor.New(supervisor.NewProcessSpawner(), cfg.MemoryHintMB)
	syntax := cache.New(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	return &Core{runner: runner.New(sup, syntax), defaultDeadlineMs: cfg.DeadlineMs}
}

// RunSuite evaluates source against testCases, stopping at the first
// test that does not pass. entryPoint may be a bare function name or a
// full "def name(...)" signature. deadlineMs of 0 takes the configured
// default (internal/config's DeadlineMs: DEADLINE_MS if set, otherwise
// constants.DefaultDeadlineMs); any other value is clamped to
// [constants.MinDeadlineMs, constants.MaxDeadlineMs].
func (c *Core) RunSuite(ctx context.Context, source string, testCases []model.TestCase, entryPoint string, deadlineMs int) *model.SuiteVerdict {
	if deadlineMs == 0 {
		deadlineMs = c.defaultDeadlineMs
	} else {
		deadlineMs = config.ClampDeadlineMs(deadlineMs)
	}
	return c.runner.RunSuite(ctx, source, testCases, entryPoint, deadlineMs)
}
