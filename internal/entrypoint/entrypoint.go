// Package entrypoint implements C7: extracting the name of the function a
// submission must define from a caller-supplied signature string.
package entrypoint

import (
	"regexp"

	"github.com/practiceraptor/execcore/pkg/constants"
)

var signaturePattern = regexp.MustCompile(`\bdef\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// Resolve extracts the entry-point name from a signature string of the
// form "def identifier(...)", tolerating whitespace and a trailing type
// annotation. On no match it returns the fixed default, regardless of
// what signatureOrName otherwise contains.
func Resolve(signatureOrName string) string {
	if m := signaturePattern.FindStringSubmatch(signatureOrName); m != nil {
		return m[1]
	}
	return constants.DefaultEntryPoint
}
