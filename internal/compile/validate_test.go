package compile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeDefaults(t *testing.T) {
	def := NodeDefinition{
		Defaults: map[string]any{"separator": ",", "header": true},
		Properties: []PropertySpec{
			{Name: "encoding", Default: "utf-8"},
		},
	}

	merged := MergeDefaults(def, map[string]any{"separator": ";", "path": "data.csv"})

	require.Equal(t, ";", merged["separator"])
	require.Equal(t, true, merged["header"])
	require.Equal(t, "utf-8", merged["encoding"])
	require.Equal(t, "data.csv", merged["path"])
}

func TestMergeDefaultsSkipsNilValues(t *testing.T) {
	def := NodeDefinition{Defaults: map[string]any{"how": "any"}}

	merged := MergeDefaults(def, map[string]any{"how": nil})
	require.Equal(t, "any", merged["how"])
}

func TestMergeDefaultsDoesNotMutateInputs(t *testing.T) {
	defaults := map[string]any{"n": 1}
	data := map[string]any{"n": 2}

	MergeDefaults(NodeDefinition{Defaults: defaults}, data)
	require.Equal(t, 1, defaults["n"])
	require.Equal(t, 2, data["n"])
}

func TestValidatePropertiesRequired(t *testing.T) {
	def := NodeDefinition{Properties: []PropertySpec{
		{Name: "path", Kind: PropertyString, Required: true},
	}}

	require.Equal(t, []string{"path is required"}, ValidateProperties(def, map[string]any{}))
	require.Equal(t, []string{"path is required"}, ValidateProperties(def, map[string]any{"path": ""}))
	require.Empty(t, ValidateProperties(def, map[string]any{"path": "data.csv"}))
}

func TestValidatePropertiesNumberRange(t *testing.T) {
	def := NodeDefinition{Properties: []PropertySpec{
		{Name: "test_size", Kind: PropertyNumber, Min: floatPtr(0.01), Max: floatPtr(0.99)},
	}}

	require.Empty(t, ValidateProperties(def, map[string]any{"test_size": 0.25}))
	require.Empty(t, ValidateProperties(def, map[string]any{})) // optional

	low := ValidateProperties(def, map[string]any{"test_size": 0.001})
	require.Len(t, low, 1)
	require.Contains(t, low[0], "test_size must be >=")

	high := ValidateProperties(def, map[string]any{"test_size": 1.5})
	require.Len(t, high, 1)
	require.Contains(t, high[0], "test_size must be <=")

	bad := ValidateProperties(def, map[string]any{"test_size": "a lot"})
	require.Len(t, bad, 1)
	require.Contains(t, bad[0], "must be a number")
}

func TestValidatePropertiesNumberAcceptsInts(t *testing.T) {
	def := NodeDefinition{Properties: []PropertySpec{
		{Name: "n_clusters", Kind: PropertyNumber, Min: floatPtr(1)},
	}}

	// json decoding yields float64, direct construction yields int.
	require.Empty(t, ValidateProperties(def, map[string]any{"n_clusters": 8}))
	require.Empty(t, ValidateProperties(def, map[string]any{"n_clusters": 8.0}))
}

func TestValidatePropertiesSelect(t *testing.T) {
	def := NodeDefinition{Properties: []PropertySpec{
		{Name: "how", Kind: PropertySelect, Options: []string{"any", "all"}},
	}}

	require.Empty(t, ValidateProperties(def, map[string]any{"how": "any"}))

	violations := ValidateProperties(def, map[string]any{"how": "some"})
	require.Len(t, violations, 1)
	require.Contains(t, violations[0], "how must be one of")
}

func TestValidatePropertiesBool(t *testing.T) {
	def := NodeDefinition{Properties: []PropertySpec{
		{Name: "header", Kind: PropertyBool},
	}}

	require.Empty(t, ValidateProperties(def, map[string]any{"header": false}))

	violations := ValidateProperties(def, map[string]any{"header": "yes"})
	require.Len(t, violations, 1)
	require.Contains(t, violations[0], "header must be a boolean")
}

func TestValidatePropertiesCollectsAllViolations(t *testing.T) {
	def := NodeDefinition{Properties: []PropertySpec{
		{Name: "path", Kind: PropertyString, Required: true},
		{Name: "ratio", Kind: PropertyNumber, Max: floatPtr(1)},
		{Name: "how", Kind: PropertySelect, Options: []string{"any", "all"}},
	}}

	violations := ValidateProperties(def, map[string]any{"ratio": 2.0, "how": "never"})
	require.Len(t, violations, 3)
}
