// Package validator implements C1: rejecting submissions that cannot
// parse, before any execution is attempted. It uses the same parsing
// front-end (go.starlark.net/syntax) the Child Worker uses to evaluate
// the source, so a parse-time rejection here always matches a parse-time
// rejection at execution time.
package validator

import (
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/syntax"

	"github.com/practiceraptor/execcore/pkg/fault"
)

// ValidateSyntax returns nil on success, or a Syntax fault describing the
// first parse error. Empty or whitespace-only source is rejected without
// invoking the parser.
func ValidateSyntax(source string) *fault.Fault {
	if strings.TrimSpace(source) == "" {
		return fault.Syntax(0, "code is empty")
	}
	if _, err := syntax.Parse("submission.star", source, 0); err != nil {
		line, msg := classify(err)
		return fault.Syntax(line, msg)
	}
	return nil
}

func classify(err error) (int, string) {
	switch e := err.(type) {
	case syntax.Error:
		return int(e.Pos.Line), e.Msg
	case resolve.ErrorList:
		if len(e) > 0 {
			return int(e[0].Pos.Line), e[0].Msg
		}
	}
	return 0, err.Error()
}
