package compile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContextInputVariableFallback(t *testing.T) {
	g := &Graph{Nodes: []Node{{ID: "lonely", Type: "op"}}}
	ctx := NewContext(g)

	require.Equal(t, DefaultInputVariable, ctx.InputVariable(&g.Nodes[0]))
}

func TestContextVariableThreading(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "a", Type: "op"},
			{ID: "b", Type: "op"},
		},
		Edges: []Edge{{Source: "a", Target: "b"}},
	}
	ctx := NewContext(g)

	require.NoError(t, ctx.SetVariable("a", "X_scaled"))
	require.Equal(t, "X_scaled", ctx.InputVariable(&g.Nodes[1]))
}

func TestContextUnboundUpstreamFallsBack(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "a", Type: "op"},
			{ID: "b", Type: "op"},
		},
		Edges: []Edge{{Source: "a", Target: "b"}},
	}
	ctx := NewContext(g)

	// Upstream exists but never bound an output.
	require.Equal(t, DefaultInputVariable, ctx.InputVariable(&g.Nodes[1]))
}

func TestContextRebindGuard(t *testing.T) {
	ctx := NewContext(&Graph{Nodes: []Node{{ID: "a", Type: "op"}}})

	require.NoError(t, ctx.SetVariable("a", "df_clean"))
	require.NoError(t, ctx.SetVariable("a", "df_clean"))

	err := ctx.SetVariable("a", "df_other")
	var rebind *RebindError
	require.ErrorAs(t, err, &rebind)
	require.Equal(t, "a", rebind.NodeID)
	require.Equal(t, "df_clean", rebind.Existing)
	require.Equal(t, "df_other", rebind.Proposed)

	name, ok := ctx.OutputVariable("a")
	require.True(t, ok)
	require.Equal(t, "df_clean", name)
}

func TestContextUniqueName(t *testing.T) {
	ctx := NewContext(&Graph{})

	require.Equal(t, "df_scaled", ctx.UniqueName("df_scaled"))
	require.Equal(t, "df_scaled_2", ctx.UniqueName("df_scaled"))
	require.Equal(t, "df_scaled_3", ctx.UniqueName("df_scaled"))
}

func TestContextImportsSortedAndDeduped(t *testing.T) {
	ctx := NewContext(&Graph{})

	ctx.AddImport("import pandas as pd")
	ctx.AddImport("from sklearn.cluster import KMeans")
	ctx.AddImport("import pandas as pd")

	require.Equal(t, []string{
		"from sklearn.cluster import KMeans",
		"import pandas as pd",
	}, ctx.Imports())
}
