package validator_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/practiceraptor/execcore/internal/validator"
	"github.com/practiceraptor/execcore/pkg/constants"
)

func TestValidateSyntaxAcceptsValidSource(t *testing.T) {
	f := validator.ValidateSyntax("def solution(x):\n    return x * 2\n")
	assert.Assert(t, f == nil)
}

func TestValidateSyntaxRejectsEmptySource(t *testing.T) {
	f := validator.ValidateSyntax("   \n\t  ")
	assert.Assert(t, f != nil)
	assert.Equal(t, f.Kind, constants.FaultSyntax)
	assert.Equal(t, f.Message, "code is empty")
}

func TestValidateSyntaxRejectsUnparsableSource(t *testing.T) {
	f := validator.ValidateSyntax("def solution(x:\n    return x\n")
	assert.Assert(t, f != nil)
	assert.Equal(t, f.Kind, constants.FaultSyntax)
}

func TestValidateSyntaxRejectsImportKeyword(t *testing.T) {
	f := validator.ValidateSyntax("import os\ndef solution():\n    return 0\n")
	assert.Assert(t, f != nil)
	assert.Equal(t, f.Kind, constants.FaultSyntax)
}
