package nodes

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"mlstudio/internal/compile"
)

func TestCatalogRegistersCleanly(t *testing.T) {
	reg := compile.NewRegistry()

	failed := reg.RegisterAll(All())
	require.Empty(t, failed)
	require.Equal(t, len(All()), reg.Len())
}

func TestCatalogTypesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range All() {
		require.False(t, seen[def.Type], "duplicate type %q", def.Type)
		seen[def.Type] = true
		require.NotEmpty(t, def.Category, "%s has no category", def.Type)
		require.NotEmpty(t, def.Name, "%s has no display name", def.Type)
	}
}

func compileGraph(t *testing.T, g *compile.Graph) *compile.Result {
	t.Helper()
	reg := compile.NewRegistry()
	require.Empty(t, reg.RegisterAll(All()))

	result, err := compile.NewCompiler(reg, zerolog.Nop()).Compile(g)
	require.NoError(t, err)
	return result
}

func TestPipelineLoadScaleCluster(t *testing.T) {
	g := &compile.Graph{
		Nodes: []compile.Node{
			{ID: "load", Type: "load_csv", Data: map[string]any{"path": "sales.csv"}},
			{ID: "scale", Type: "standard_scaler", Data: map[string]any{"columns": []string{"amount", "qty"}}},
			{ID: "cluster", Type: "kmeans_cluster", Data: map[string]any{"n_clusters": 3}},
		},
		Edges: []compile.Edge{
			{Source: "load", Target: "scale"},
			{Source: "scale", Target: "cluster"},
		},
	}

	result := compileGraph(t, g)
	require.Empty(t, result.NodeErrors)
	require.Equal(t, []string{"load", "scale", "cluster"}, result.OrderedNodeIDs)

	require.Contains(t, result.Script, "import pandas as pd")
	require.Contains(t, result.Script, "from sklearn.preprocessing import StandardScaler")
	require.Contains(t, result.Script, "from sklearn.cluster import KMeans")

	require.Contains(t, result.Script, "df = pd.read_csv('sales.csv')")
	require.Contains(t, result.Script, "df_scaled = df.copy()")
	require.Contains(t, result.Script, "scaler_scale.fit_transform(df_scaled[['amount', 'qty']])")
	require.Contains(t, result.Script, "KMeans(n_clusters=3, random_state=42, n_init='auto')")
	require.Contains(t, result.Script, "df_scaled_clustered = df_scaled.copy()")
}

func TestPipelineTrainAndEvaluate(t *testing.T) {
	g := &compile.Graph{
		Nodes: []compile.Node{
			{ID: "load", Type: "load_csv", Data: map[string]any{"path": "churn.csv"}},
			{ID: "clean", Type: "drop_na", Data: map[string]any{}},
			{ID: "model", Type: "random_forest", Data: map[string]any{"target": "churned"}},
			{ID: "report", Type: "evaluate_classification", Data: map[string]any{}},
		},
		Edges: []compile.Edge{
			{Source: "load", Target: "clean"},
			{Source: "clean", Target: "model"},
			{Source: "model", Target: "report"},
		},
	}

	result := compileGraph(t, g)
	require.Empty(t, result.NodeErrors)

	// The model binds df_clean_model; the evaluation node reconstructs the
	// held-out partition names from that binding alone.
	require.Contains(t, result.Script, "y_df_clean_model = df_clean['churned']")
	require.Contains(t, result.Script, "RandomForestClassifier(n_estimators=100, random_state=42)")
	require.Contains(t, result.Script, "df_clean_model.fit(X_train_df_clean_model, y_train_df_clean_model)")
	require.Contains(t, result.Script, "pred_df_clean_model = df_clean_model.predict(X_test_df_clean_model)")
	require.Contains(t, result.Script, "accuracy_score(y_test_df_clean_model, pred_df_clean_model)")
}

func TestSiblingBranchesGetDistinctNames(t *testing.T) {
	g := &compile.Graph{
		Nodes: []compile.Node{
			{ID: "load", Type: "load_csv", Data: map[string]any{"path": "data.csv"}},
			{ID: "scale_a", Type: "standard_scaler", Data: map[string]any{}},
			{ID: "scale_b", Type: "minmax_scaler", Data: map[string]any{}},
		},
		Edges: []compile.Edge{
			{Source: "load", Target: "scale_a"},
			{Source: "load", Target: "scale_b"},
		},
	}

	result := compileGraph(t, g)
	require.Empty(t, result.NodeErrors)
	require.Contains(t, result.Script, "df_scaled = ")
	require.Contains(t, result.Script, "df_scaled_2 = ")
}

func TestLoadCSVEscapesPath(t *testing.T) {
	g := &compile.Graph{
		Nodes: []compile.Node{
			{ID: "load", Type: "load_csv", Data: map[string]any{"path": "it's ok.csv"}},
		},
	}

	result := compileGraph(t, g)
	require.Empty(t, result.NodeErrors)
	require.Contains(t, result.Script, `pd.read_csv('it\'s ok.csv')`)
}

func TestLoadCSVHeaderAndSeparator(t *testing.T) {
	g := &compile.Graph{
		Nodes: []compile.Node{
			{ID: "load", Type: "load_csv", Data: map[string]any{
				"path": "raw.tsv", "separator": "\t", "header": false,
			}},
		},
	}

	result := compileGraph(t, g)
	require.Empty(t, result.NodeErrors)
	require.Contains(t, result.Script, `pd.read_csv('raw.tsv', sep='\t', header=None)`)
}

func TestSaveCSVPassesFrameThrough(t *testing.T) {
	g := &compile.Graph{
		Nodes: []compile.Node{
			{ID: "load", Type: "load_csv", Data: map[string]any{"path": "in.csv"}},
			{ID: "save", Type: "save_csv", Data: map[string]any{"path": "out.csv"}},
			{ID: "dedup", Type: "drop_duplicates", Data: map[string]any{}},
		},
		Edges: []compile.Edge{
			{Source: "load", Target: "save"},
			{Source: "save", Target: "dedup"},
		},
	}

	result := compileGraph(t, g)
	require.Empty(t, result.NodeErrors)
	require.Contains(t, result.Script, "df.to_csv('out.csv', index=False)")
	require.Contains(t, result.Script, "df_dedup = df.drop_duplicates()")
}

func TestMissingRequiredPropertyIsPerNode(t *testing.T) {
	g := &compile.Graph{
		Nodes: []compile.Node{
			{ID: "load", Type: "load_csv", Data: map[string]any{}}, // no path
			{ID: "clean", Type: "drop_na", Data: map[string]any{}},
		},
		Edges: []compile.Edge{{Source: "load", Target: "clean"}},
	}

	result := compileGraph(t, g)
	require.Len(t, result.NodeErrors, 1)
	require.Equal(t, "load", result.NodeErrors[0].NodeID)
	require.Contains(t, result.NodeErrors[0].Message, "path is required")

	// The downstream node still compiles against the fallback frame.
	require.Contains(t, result.Script, "df_clean = df.dropna(how='any')")
}

func TestFilterRowsQuotesExpression(t *testing.T) {
	g := &compile.Graph{
		Nodes: []compile.Node{
			{ID: "load", Type: "load_csv", Data: map[string]any{"path": "p.csv"}},
			{ID: "filter", Type: "filter_rows", Data: map[string]any{
				"expression": "age > 30 and country == 'FR'",
			}},
		},
		Edges: []compile.Edge{{Source: "load", Target: "filter"}},
	}

	result := compileGraph(t, g)
	require.Empty(t, result.NodeErrors)
	require.Contains(t, result.Script, `df_filtered = df.query('age > 30 and country == \'FR\'')`)
}

func TestTrainTestSplitBindsTrainPartition(t *testing.T) {
	g := &compile.Graph{
		Nodes: []compile.Node{
			{ID: "load", Type: "load_csv", Data: map[string]any{"path": "p.csv"}},
			{ID: "split", Type: "train_test_split", Data: map[string]any{"test_size": 0.2}},
			{ID: "dedup", Type: "drop_duplicates", Data: map[string]any{}},
		},
		Edges: []compile.Edge{
			{Source: "load", Target: "split"},
			{Source: "split", Target: "dedup"},
		},
	}

	result := compileGraph(t, g)
	require.Empty(t, result.NodeErrors)
	require.Contains(t, result.Script,
		"df_train, df_test = train_test_split(df, test_size=0.2, random_state=42)")
	require.Contains(t, result.Script, "df_train_dedup = df_train.drop_duplicates()")
}

func TestFillNAStrategies(t *testing.T) {
	for strategy, want := range map[string]string{
		"mean":   "df_filled['age'] = df_filled['age'].fillna(df['age'].mean())",
		"median": "df_filled['age'] = df_filled['age'].fillna(df['age'].median())",
		"mode":   "df_filled['age'] = df_filled['age'].fillna(df['age'].mode().iloc[0])",
	} {
		g := &compile.Graph{
			Nodes: []compile.Node{
				{ID: "load", Type: "load_csv", Data: map[string]any{"path": "p.csv"}},
				{ID: "fill", Type: "fill_na", Data: map[string]any{"column": "age", "strategy": strategy}},
			},
			Edges: []compile.Edge{{Source: "load", Target: "fill"}},
		}

		result := compileGraph(t, g)
		require.Empty(t, result.NodeErrors, "strategy %s", strategy)
		require.True(t, strings.Contains(result.Script, want),
			"strategy %s: script missing %q:\n%s", strategy, want, result.Script)
	}
}
