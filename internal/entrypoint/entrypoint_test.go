package entrypoint_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/practiceraptor/execcore/internal/entrypoint"
)

func TestResolveFromSignature(t *testing.T) {
	assert.Equal(t, entrypoint.Resolve("def solution(x):"), "solution")
	assert.Equal(t, entrypoint.Resolve("   def   two_sum(nums, target) -> list:"), "two_sum")
}

func TestResolveDefaultsOnNoMatch(t *testing.T) {
	assert.Equal(t, entrypoint.Resolve(""), "solution")
	assert.Equal(t, entrypoint.Resolve("   "), "solution")
	// A bare identifier, with no "def" keyword, is not a signature match
	// either, so it falls back to the fixed default just like any other
	// non-matching input.
	assert.Equal(t, entrypoint.Resolve("two_sum"), "solution")
}
