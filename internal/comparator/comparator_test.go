package comparator_test

import (
	"math"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/practiceraptor/execcore/internal/comparator"
	"github.com/practiceraptor/execcore/pkg/value"
)

func TestFloatTolerance(t *testing.T) {
	assert.Assert(t, comparator.Equal(value.Float(0.1+0.2), value.Float(0.3)))
}

func TestFloatNaNNeverEqual(t *testing.T) {
	nan := value.Float(math.NaN())
	assert.Assert(t, !comparator.Equal(nan, nan))
}

func TestReflexiveOnFiniteValues(t *testing.T) {
	cases := []value.Value{
		value.None(),
		value.Bool(true),
		value.Int(42),
		value.Float(3.5),
		value.String("hi"),
		value.List(value.Int(1), value.Int(2)),
		value.Map(map[string]value.Value{"a": value.Int(1)}),
	}
	for _, v := range cases {
		assert.Assert(t, comparator.Equal(v, v))
	}
}

func TestSequenceLengthMismatch(t *testing.T) {
	a := value.List(value.Int(1), value.Int(2))
	b := value.List(value.Int(1))
	assert.Assert(t, !comparator.Equal(a, b))
}

func TestSequenceRecursive(t *testing.T) {
	a := value.List(value.List(value.Int(1)), value.Int(2))
	b := value.List(value.List(value.Int(1)), value.Int(2))
	assert.Assert(t, comparator.Equal(a, b))
}

func TestMapKeySetEquality(t *testing.T) {
	a := value.Map(map[string]value.Value{"x": value.Int(1), "y": value.Int(2)})
	b := value.Map(map[string]value.Value{"x": value.Int(1)})
	assert.Assert(t, !comparator.Equal(a, b))
}

func TestCrossTypeFallsThroughToFalse(t *testing.T) {
	assert.Assert(t, !comparator.Equal(value.Int(1), value.Float(1)))
}
