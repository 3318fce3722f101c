package attr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	obj := Object{
		"zebra": String("z"),
		"apple": String("a"),
		"mango": Int(3),
	}

	data, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"apple":"a","mango":3,"zebra":"z"}`, string(data))
}

func TestMarshalCanonical_FloatsKeepFraction(t *testing.T) {
	tests := []struct {
		name string
		in   Float
		want string
	}{
		{"whole", 30, "30.0"},
		{"fraction", 240.5, "240.5"},
		{"negative", -1, "-1.0"},
		{"large", 1e21, "1e+21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestMarshalCanonical_RejectsNonFinite(t *testing.T) {
	_, err := MarshalCanonical(Float(math.NaN()))
	assert.Error(t, err)

	_, err = MarshalCanonical(Object{"x": Float(math.Inf(1))})
	assert.Error(t, err)
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	data, err := MarshalCanonical(String("<a&b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(data))
}

func TestMarshalCanonical_LineSeparatorsLiteral(t *testing.T) {
	data, err := MarshalCanonical(String("a\u2028b"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(data))

	data, err = MarshalCanonical(String(`a\u2028b`))
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(data))
}

func TestMarshalCanonical_KeepsDecomposedStrings(t *testing.T) {
	// "e" + combining acute accent must not be folded into U+00E9.
	decomposed := String("cafe\u0301.upf")
	data, err := MarshalCanonical(Object{"filename": decomposed})
	require.NoError(t, err)
	assert.Equal(t, "{\"filename\":\"cafe\u0301.upf\"}", string(data))

	out, err := UnmarshalObject(data)
	require.NoError(t, err)
	assert.Equal(t, decomposed, out["filename"])
}

func TestUnmarshalObject_KindsSurviveRoundTrip(t *testing.T) {
	in := Object{
		"He": Object{
			"filename":   String("He.upf"),
			"md5":        String("abc"),
			"cutoff_wfc": Float(50),
			"cutoff_rho": Float(200),
		},
		"family_label": String("SSSP/1.1/PBE/efficiency"),
		"count":        Int(3),
		"flags":        Array{Bool(true), Null{}},
	}

	data, err := MarshalCanonical(in)
	require.NoError(t, err)

	out, err := UnmarshalObject(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestUnmarshalObject_Empty(t *testing.T) {
	out, err := UnmarshalObject(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFromGo(t *testing.T) {
	v, err := FromGo(map[string]any{
		"cutoff": 30.0,
		"count":  2,
		"name":   "He",
		"list":   []any{true, nil},
	})
	require.NoError(t, err)
	assert.Equal(t, Object{
		"cutoff": Float(30),
		"count":  Int(2),
		"name":   String("He"),
		"list":   Array{Bool(true), Null{}},
	}, v)

	_, err = FromGo(struct{}{})
	assert.Error(t, err)

	_, err = FromGo(math.Inf(-1))
	assert.Error(t, err)
}

func TestObjectClone(t *testing.T) {
	orig := Object{"nested": Object{"k": String("v")}}
	clone := orig.Clone()
	clone["nested"].(Object)["k"] = String("changed")

	assert.Equal(t, String("v"), orig["nested"].(Object)["k"])
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+1F600 is a surrogate pair in UTF-16 (0xD83D...), which sorts before U+FF5E.
	obj := Object{"\uFF5E": Int(1), "\U0001F600": Int(2)}
	assert.Equal(t, []string{"\U0001F600", "\uFF5E"}, obj.SortedKeys())
}
