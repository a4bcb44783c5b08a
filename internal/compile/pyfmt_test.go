package compile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPyString(t *testing.T) {
	require.Equal(t, "'data.csv'", PyString("data.csv"))
	require.Equal(t, `'it\'s'`, PyString("it's"))
	require.Equal(t, `'a\\b'`, PyString(`a\b`))
	require.Equal(t, `'line\nbreak'`, PyString("line\nbreak"))
	require.Equal(t, `'tab\there'`, PyString("tab\there"))
	require.Equal(t, "''", PyString(""))
}

func TestPyValue(t *testing.T) {
	require.Equal(t, "None", PyValue(nil))
	require.Equal(t, "True", PyValue(true))
	require.Equal(t, "False", PyValue(false))
	require.Equal(t, "'x'", PyValue("x"))
	require.Equal(t, "42", PyValue(42))
	require.Equal(t, "42", PyValue(42.0))
	require.Equal(t, "0.25", PyValue(0.25))
	require.Equal(t, "['a', 'b']", PyValue([]string{"a", "b"}))
	require.Equal(t, "['a', 1]", PyValue([]any{"a", 1}))
}

func TestPyStringList(t *testing.T) {
	require.Equal(t, "[]", PyStringList(nil))
	require.Equal(t, "['age', 'income']", PyStringList([]string{"age", "income"}))
	require.Equal(t, `['it\'s']`, PyStringList([]string{"it's"}))
}

func TestSafeName(t *testing.T) {
	require.Equal(t, "node_1", SafeName("node-1"))
	require.Equal(t, "abc", SafeName("ABC"))
	require.Equal(t, "_42", SafeName("42"))
	require.Equal(t, "_", SafeName(""))
	require.Equal(t, "a_b_c", SafeName("a b?c"))
}
