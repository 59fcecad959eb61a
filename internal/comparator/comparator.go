// Package comparator implements C5: deciding whether an actual
// DynamicValue equals an expected one under type-aware rules. Pure
// function, no allocation that outlives the call.
package comparator

import (
	"math"

	"github.com/practiceraptor/execcore/pkg/constants"
	"github.com/practiceraptor/execcore/pkg/value"
)

// Equal applies the comparator rules in order: float tolerance, then
// recursive sequence comparison, then recursive mapping comparison by
// key-set equality, then native equality as the fallback.
func Equal(actual, expected value.Value) bool {
	if actual.Kind == value.KindFloat && expected.Kind == value.KindFloat {
		if math.IsNaN(actual.F) || math.IsNaN(expected.F) {
			return false
		}
		return math.Abs(actual.F-expected.F) < constants.ComparatorFloatTolerance
	}

	if actual.Kind == value.KindList && expected.Kind == value.KindList {
		if len(actual.List) != len(expected.List) {
			return false
		}
		for i := range actual.List {
			if !Equal(actual.List[i], expected.List[i]) {
				return false
			}
		}
		return true
	}

	if actual.Kind == value.KindMap && expected.Kind == value.KindMap {
		if len(actual.Map) != len(expected.Map) {
			return false
		}
		for k, av := range actual.Map {
			ev, ok := expected.Map[k]
			if !ok || !Equal(av, ev) {
				return false
			}
		}
		return true
	}

	return nativeEqual(actual, expected)
}

func nativeEqual(a, b value.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case value.KindNone:
		return true
	case value.KindBool:
		return a.B == b.B
	case value.KindInt:
		return a.I == b.I
	case value.KindFloat:
		return a.F == b.F
	case value.KindString:
		return a.S == b.S
	default:
		return false
	}
}
