package value_test

import (
	"encoding/json"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/practiceraptor/execcore/pkg/value"
)

func TestRoundTripThroughJSON(t *testing.T) {
	original := value.Map(map[string]value.Value{
		"n":     value.Int(7),
		"name":  value.String("raptor"),
		"items": value.List(value.Int(1), value.Bool(true), value.None()),
	})

	data, err := json.Marshal(original)
	assert.NilError(t, err)

	var decoded value.Value
	assert.NilError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, decoded.Kind, value.KindMap)
	assert.Equal(t, decoded.Map["n"].I, int64(7))
	assert.Equal(t, decoded.Map["name"].S, "raptor")
	assert.Equal(t, len(decoded.Map["items"].List), 3)
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	original := value.Inputs{"xs": value.List(value.Int(1), value.Int(2))}
	clone := original.Clone()

	clone["xs"].List[0] = value.Int(99)

	assert.Equal(t, original["xs"].List[0].I, int64(1))
}

func TestStringRendersPythonLike(t *testing.T) {
	assert.Equal(t, value.None().String(), "None")
	assert.Equal(t, value.Bool(true).String(), "True")
	assert.Equal(t, value.Bool(false).String(), "False")
	assert.Equal(t, value.String("hi").String(), `"hi"`)
}
