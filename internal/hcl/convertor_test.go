package hcl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/bemgo/internal/bemjson"
)

func TestToCty_FromCty(t *testing.T) {
	in := map[string]any{
		"name":   "x",
		"count":  3,
		"ratio":  0.5,
		"on":     true,
		"none":   nil,
		"list":   []any{"a", 1, false},
		"nested": map[string]any{"k": "v"},
		"empty":  []any{},
	}

	val, err := ToCty(in)
	require.NoError(t, err)
	assert.True(t, val.Type().IsObjectType())
	assert.Equal(t, cty.StringVal("x"), val.GetAttr("name"))

	out, err := FromCty(val)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestToCty_Node(t *testing.T) {
	val, err := ToCty(&bemjson.Node{
		Block: "b",
		Mods:  bemjson.Mods{"size": "l"},
		Tag:   bemjson.TagName(""),
	})
	require.NoError(t, err)

	assert.Equal(t, cty.StringVal("b"), val.GetAttr("block"))
	assert.Equal(t, cty.StringVal("l"), val.GetAttr("mods").GetAttr("size"))
	assert.Equal(t, cty.False, val.GetAttr("tag"))
}

func TestToCty_TypedFallback(t *testing.T) {
	val, err := ToCty([]string{"a", "b"})
	require.NoError(t, err)
	want := cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})
	assert.True(t, want.RawEquals(val), "got %#v", val)

	_, err = ToCty(make(chan int))
	require.Error(t, err)
}

func TestFromCty_Collections(t *testing.T) {
	set := cty.SetVal([]cty.Value{cty.StringVal("a")})
	out, err := FromCty(set)
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, out)

	m := cty.MapVal(map[string]cty.Value{"k": cty.NumberFloatVal(1.5)})
	out, err = FromCty(m)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": 1.5}, out)

	_, err = FromCty(cty.UnknownVal(cty.String))
	require.Error(t, err)
}
