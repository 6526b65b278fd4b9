package shape

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueAccessors(t *testing.T) {
	t.Run("Kinds", func(t *testing.T) {
		assert.Equal(t, KindNull, Value{}.Kind())
		assert.True(t, Null().IsNull())
		assert.Equal(t, KindBool, Bool(false).Kind())
		assert.Equal(t, KindNumber, Number(1).Kind())
		assert.Equal(t, KindString, String("").Kind())
		assert.Equal(t, KindArray, Array().Kind())
		assert.Equal(t, KindMap, Map(nil).Kind())
		assert.Equal(t, "map", KindMap.String())
	})

	t.Run("Int", func(t *testing.T) {
		i, err := NumberText("42").Int()
		require.NoError(t, err)
		assert.Equal(t, int64(42), i)

		i, err = NumberText("-3.9").Int()
		require.NoError(t, err)
		assert.Equal(t, int64(-3), i)

		i, err = NumberText("9007199254740993").Int()
		require.NoError(t, err)
		assert.Equal(t, int64(9007199254740993), i)

		_, err = NumberText("1e30").Int()
		assert.Error(t, err)

		_, err = String("1").Int()
		assert.Error(t, err)
	})

	t.Run("Get", func(t *testing.T) {
		doc := Map(map[string]Value{"a": Null()})
		v, ok := doc.Get("a")
		assert.True(t, ok)
		assert.True(t, v.IsNull())

		_, ok = doc.Get("b")
		assert.False(t, ok)

		_, ok = String("a").Get("a")
		assert.False(t, ok)
	})

	t.Run("LenAndKeys", func(t *testing.T) {
		doc := MustFromAny(map[string]any{"b": 1, "a": 2, "c": 3})
		assert.Equal(t, 3, doc.Len())
		assert.Equal(t, []string{"a", "b", "c"}, doc.Keys())
		assert.Equal(t, 2, Array(Null(), Null()).Len())
		assert.Equal(t, 0, String("abc").Len())
		assert.Nil(t, String("abc").Keys())
	})
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"Nulls", Null(), Null(), true},
		{"NumberText", NumberText("1.0"), Number(1), true},
		{"Numbers", Number(1), Number(2), false},
		{"KindMismatch", String("1"), Number(1), false},
		{"Arrays", Array(Bool(true), String("x")), Array(Bool(true), String("x")), true},
		{"ArrayOrder", Array(Number(1), Number(2)), Array(Number(2), Number(1)), false},
		{
			"Maps",
			Map(map[string]Value{"a": Number(1), "b": Array()}),
			Map(map[string]Value{"b": Array(), "a": Number(1)}),
			true,
		},
		{
			"MapExtraKey",
			Map(map[string]Value{"a": Number(1)}),
			Map(map[string]Value{"a": Number(1), "b": Null()}),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}
}

func TestFromAny(t *testing.T) {
	t.Run("NativeTree", func(t *testing.T) {
		v, err := FromAny(map[string]any{
			"s":   "x",
			"n":   3,
			"f":   1.5,
			"b":   true,
			"nil": nil,
			"arr": []any{1, "two"},
		})
		require.NoError(t, err)

		expected := Map(map[string]Value{
			"s":   String("x"),
			"n":   Number(3),
			"f":   Number(1.5),
			"b":   Bool(true),
			"nil": Null(),
			"arr": Array(Number(1), String("two")),
		})
		assert.True(t, expected.Equal(v), "got %s", v)
	})

	t.Run("TypedContainers", func(t *testing.T) {
		v, err := FromAny(map[string][]int32{"xs": {1, 2}})
		require.NoError(t, err)
		assert.Equal(t, `{"xs":[1,2]}`, v.String())
	})

	t.Run("JSONNumber", func(t *testing.T) {
		v, err := FromAny(json.Number("12345678901234567890"))
		require.NoError(t, err)
		text, ok := v.Text()
		assert.True(t, ok)
		assert.Equal(t, "12345678901234567890", text)
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := FromAny(map[int]string{1: "a"})
		assert.ErrorIs(t, err, ErrInvalidDocument)

		_, err = FromAny(make(chan int))
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("NonFinite", func(t *testing.T) {
		for _, x := range []any{math.Inf(1), math.NaN(), float32(math.Inf(-1)), []any{1.0, math.NaN()}, ptr(math.Inf(1))} {
			_, err := FromAny(x)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		}
		assert.Panics(t, func() { Number(math.Inf(1)) })
	})

	t.Run("MustFromAnyPanics", func(t *testing.T) {
		assert.Panics(t, func() { MustFromAny(struct{}{}) })
	})
}

func TestValueInterfaceAndJSON(t *testing.T) {
	v := MustFromAny(map[string]any{
		"z": []any{1, "a", nil},
		"a": map[string]any{"q": false},
	})

	assert.Equal(t, map[string]any{
		"z": []any{float64(1), "a", nil},
		"a": map[string]any{"q": false},
	}, v.Interface())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"q":false},"z":[1,"a",null]}`, string(out))
	assert.Equal(t, `{"a":{"q":false},"z":[1,"a",null]}`, v.String())
	assert.Equal(t, `"quote\"d"`, String(`quote"d`).String())
}
