package compile

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// transformDef is a minimal definition whose generator threads variables the
// way the catalog nodes do: read input, derive an output name, bind it.
func transformDef(nodeType string) NodeDefinition {
	return NodeDefinition{
		Type:     nodeType,
		Category: "test",
		Name:     nodeType,
		GenerateCode: func(n *Node, ctx *Context) (string, error) {
			in := ctx.InputVariable(n)
			out := ctx.UniqueName(in + "_" + SafeName(n.ID))
			if err := ctx.SetVariable(n.ID, out); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s = transform(%s)\n", out, in), nil
		},
	}
}

func testCompiler(t *testing.T, defs ...NodeDefinition) *Compiler {
	t.Helper()
	reg := NewRegistry()
	for _, def := range defs {
		require.NoError(t, reg.Register(def))
	}
	return NewCompiler(reg, zerolog.Nop())
}

func TestCompileDeterminism(t *testing.T) {
	c := testCompiler(t, transformDef("op"))
	graph := &Graph{
		Nodes: []Node{
			{ID: "a", Type: "op"},
			{ID: "b", Type: "op"},
			{ID: "c", Type: "op"},
		},
		Edges: []Edge{
			{Source: "a", Target: "b"},
			{Source: "a", Target: "c"},
		},
	}

	first, err := c.Compile(graph)
	require.NoError(t, err)
	second, err := c.Compile(graph)
	require.NoError(t, err)

	require.Equal(t, first.Script, second.Script)
	require.Equal(t, first.OrderedNodeIDs, second.OrderedNodeIDs)
}

func TestCompileTopologicalOrder(t *testing.T) {
	c := testCompiler(t, transformDef("op"))
	// Insertion order deliberately reversed relative to the dependencies.
	graph := &Graph{
		Nodes: []Node{
			{ID: "sink", Type: "op"},
			{ID: "mid", Type: "op"},
			{ID: "source", Type: "op"},
		},
		Edges: []Edge{
			{Source: "mid", Target: "sink"},
			{Source: "source", Target: "mid"},
		},
	}

	result, err := c.Compile(graph)
	require.NoError(t, err)
	require.Equal(t, []string{"source", "mid", "sink"}, result.OrderedNodeIDs)

	for _, e := range graph.Edges {
		srcMarker := strings.Index(result.Script, fmt.Sprintf("# === node %s", e.Source))
		dstMarker := strings.Index(result.Script, fmt.Sprintf("# === node %s", e.Target))
		require.GreaterOrEqual(t, srcMarker, 0)
		require.GreaterOrEqual(t, dstMarker, 0)
		require.Less(t, srcMarker, dstMarker, "edge %s -> %s out of order", e.Source, e.Target)
	}
}

func TestCompileInsertionOrderTieBreak(t *testing.T) {
	c := testCompiler(t, transformDef("op"))
	// No edges at all: the output must follow graph insertion order.
	graph := &Graph{
		Nodes: []Node{
			{ID: "z", Type: "op"},
			{ID: "a", Type: "op"},
			{ID: "m", Type: "op"},
		},
	}

	result, err := c.Compile(graph)
	require.NoError(t, err)
	require.Equal(t, []string{"z", "a", "m"}, result.OrderedNodeIDs)
}

func TestCompileCycleRejection(t *testing.T) {
	c := testCompiler(t, transformDef("op"))
	graph := &Graph{
		Nodes: []Node{
			{ID: "w", Type: "op"},
			{ID: "x", Type: "op"},
			{ID: "y", Type: "op"},
			{ID: "z", Type: "op"},
		},
		Edges: []Edge{
			{Source: "w", Target: "x"},
			{Source: "x", Target: "y"},
			{Source: "y", Target: "z"},
			{Source: "z", Target: "x"},
		},
	}

	result, err := c.Compile(graph)
	require.Nil(t, result)

	var cyclic *CyclicGraphError
	require.ErrorAs(t, err, &cyclic)
	require.ElementsMatch(t, []string{"x", "y", "z"}, cyclic.NodeIDs)
}

func TestCompileFaultIsolation(t *testing.T) {
	boom := NodeDefinition{
		Type: "boom",
		GenerateCode: func(n *Node, ctx *Context) (string, error) {
			return "", fmt.Errorf("deliberate failure")
		},
	}
	c := testCompiler(t, transformDef("op"), boom)

	graph := &Graph{
		Nodes: []Node{
			{ID: "n1", Type: "op"},
			{ID: "n2", Type: "boom"},
			{ID: "n3", Type: "op"},
		},
	}

	result, err := c.Compile(graph)
	require.NoError(t, err)

	require.Len(t, result.NodeErrors, 1)
	require.Equal(t, "n2", result.NodeErrors[0].NodeID)
	require.Contains(t, result.NodeErrors[0].Message, "deliberate failure")

	require.Contains(t, result.Script, "df_n1 = transform(df)")
	require.Contains(t, result.Script, "# node n2 (boom) skipped:")
	require.Contains(t, result.Script, "transform(df)")
	require.Equal(t, []string{"n1", "n2", "n3"}, result.OrderedNodeIDs)
}

func TestCompilePanickingGeneratorIsContained(t *testing.T) {
	panicking := NodeDefinition{
		Type: "panics",
		GenerateCode: func(n *Node, ctx *Context) (string, error) {
			panic("generator bug")
		},
	}
	c := testCompiler(t, transformDef("op"), panicking)

	graph := &Graph{
		Nodes: []Node{
			{ID: "a", Type: "panics"},
			{ID: "b", Type: "op"},
		},
	}

	result, err := c.Compile(graph)
	require.NoError(t, err)
	require.Len(t, result.NodeErrors, 1)
	require.Equal(t, "a", result.NodeErrors[0].NodeID)
	require.Contains(t, result.NodeErrors[0].Message, "generator bug")
	require.Contains(t, result.Script, "transform(df)")
}

func TestCompileUnknownNodeTypeDegrades(t *testing.T) {
	c := testCompiler(t, transformDef("op"))
	graph := &Graph{
		Nodes: []Node{
			{ID: "a", Type: "op"},
			{ID: "b", Type: "no_such_type"},
		},
	}

	result, err := c.Compile(graph)
	require.NoError(t, err)
	require.Len(t, result.NodeErrors, 1)
	require.Equal(t, "b", result.NodeErrors[0].NodeID)
	require.Contains(t, result.NodeErrors[0].Message, "no_such_type")
	require.Contains(t, result.Script, "# node b (no_such_type) skipped:")
}

func TestCompileValidationFailureDegrades(t *testing.T) {
	def := transformDef("strict")
	def.Properties = []PropertySpec{
		{Name: "path", Kind: PropertyString, Required: true},
		{Name: "ratio", Kind: PropertyNumber, Min: floatPtr(0), Max: floatPtr(1)},
	}
	c := testCompiler(t, def, transformDef("op"))

	graph := &Graph{
		Nodes: []Node{
			{ID: "bad", Type: "strict", Data: map[string]any{"ratio": 4.0}},
			{ID: "ok", Type: "op"},
		},
	}

	result, err := c.Compile(graph)
	require.NoError(t, err)
	require.Len(t, result.NodeErrors, 1)
	require.Equal(t, "bad", result.NodeErrors[0].NodeID)
	require.Contains(t, result.NodeErrors[0].Message, "path is required")
	require.Contains(t, result.NodeErrors[0].Message, "ratio must be <= 1")
	require.Contains(t, result.Script, "transform(df)")
}

func TestCompileDefaultsMerge(t *testing.T) {
	var observed int
	def := NodeDefinition{
		Type:     "clusterer",
		Defaults: map[string]any{"n_clusters": 5},
		Properties: []PropertySpec{
			{Name: "n_clusters", Kind: PropertyNumber, Required: true},
		},
		GenerateCode: func(n *Node, ctx *Context) (string, error) {
			observed, _ = n.IntProp("n_clusters")
			if err := ctx.SetVariable(n.ID, "clusters"); err != nil {
				return "", err
			}
			return "clusters = fit()\n", nil
		},
	}
	c := testCompiler(t, def)

	graph := &Graph{Nodes: []Node{{ID: "k", Type: "clusterer", Data: map[string]any{}}}}
	result, err := c.Compile(graph)
	require.NoError(t, err)
	require.Empty(t, result.NodeErrors)
	require.Equal(t, 5, observed)
}

func TestCompileDuplicateNodeID(t *testing.T) {
	c := testCompiler(t, transformDef("op"))
	graph := &Graph{
		Nodes: []Node{
			{ID: "a", Type: "op"},
			{ID: "a", Type: "op"},
		},
	}

	result, err := c.Compile(graph)
	require.NoError(t, err)
	require.Len(t, result.NodeErrors, 1)
	require.Contains(t, result.NodeErrors[0].Message, "duplicate node id")
	require.Equal(t, []string{"a"}, result.OrderedNodeIDs)
}

func TestCompileEmptyGraph(t *testing.T) {
	c := testCompiler(t)
	_, err := c.Compile(&Graph{})
	require.Error(t, err)
}

func floatPtr(f float64) *float64 {
	return &f
}
