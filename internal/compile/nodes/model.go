package nodes

import (
	"fmt"
	"strings"

	"mlstudio/internal/compile"
)

func modelDefinitions() []compile.NodeDefinition {
	return []compile.NodeDefinition{
		{
			Type:        "linear_regression",
			Category:    CategoryModel,
			Name:        "Linear Regression",
			Icon:        "trending-up",
			Color:       "#c0392b",
			Description: "Fit an ordinary least squares regression",
			Defaults:    supervisedDefaults(),
			Properties:  supervisedProperties(),
			GenerateCode: generateSupervised("LinearRegression",
				"from sklearn.linear_model import LinearRegression", nil),
		},
		{
			Type:        "logistic_regression",
			Category:    CategoryModel,
			Name:        "Logistic Regression",
			Icon:        "git-branch",
			Color:       "#c0392b",
			Description: "Fit a logistic regression classifier",
			Defaults:    mergeDefaults(supervisedDefaults(), map[string]any{"max_iter": 1000}),
			Properties: append(supervisedProperties(),
				compile.PropertySpec{Name: "max_iter", Label: "Max iterations", Kind: compile.PropertyNumber, Min: floatPtr(1)},
			),
			GenerateCode: generateSupervised("LogisticRegression",
				"from sklearn.linear_model import LogisticRegression",
				func(n *compile.Node) string {
					iters, _ := n.IntProp("max_iter")
					return fmt.Sprintf("max_iter=%d", iters)
				}),
		},
		{
			Type:        "decision_tree",
			Category:    CategoryModel,
			Name:        "Decision Tree",
			Icon:        "git-merge",
			Color:       "#c0392b",
			Description: "Fit a decision tree classifier",
			Defaults:    mergeDefaults(supervisedDefaults(), map[string]any{"max_depth": 5}),
			Properties: append(supervisedProperties(),
				compile.PropertySpec{Name: "max_depth", Label: "Max depth", Kind: compile.PropertyNumber, Min: floatPtr(1)},
			),
			GenerateCode: generateSupervised("DecisionTreeClassifier",
				"from sklearn.tree import DecisionTreeClassifier",
				func(n *compile.Node) string {
					depth, _ := n.IntProp("max_depth")
					seed, _ := n.IntProp("random_state")
					return fmt.Sprintf("max_depth=%d, random_state=%d", depth, seed)
				}),
		},
		{
			Type:        "random_forest",
			Category:    CategoryModel,
			Name:        "Random Forest",
			Icon:        "trees",
			Color:       "#c0392b",
			Description: "Fit a random forest classifier",
			Defaults:    mergeDefaults(supervisedDefaults(), map[string]any{"n_estimators": 100}),
			Properties: append(supervisedProperties(),
				compile.PropertySpec{Name: "n_estimators", Label: "Trees", Kind: compile.PropertyNumber, Min: floatPtr(1)},
			),
			GenerateCode: generateSupervised("RandomForestClassifier",
				"from sklearn.ensemble import RandomForestClassifier",
				func(n *compile.Node) string {
					trees, _ := n.IntProp("n_estimators")
					seed, _ := n.IntProp("random_state")
					return fmt.Sprintf("n_estimators=%d, random_state=%d", trees, seed)
				}),
		},
		{
			Type:        "kmeans_cluster",
			Category:    CategoryModel,
			Name:        "K-Means Clustering",
			Icon:        "circle-dot",
			Color:       "#c0392b",
			Description: "Assign each row to one of k clusters",
			Defaults:    map[string]any{"n_clusters": 8, "random_state": 42},
			Properties: []compile.PropertySpec{
				{Name: "n_clusters", Label: "Clusters", Kind: compile.PropertyNumber, Required: true, Min: floatPtr(1)},
				{Name: "columns", Label: "Columns", Kind: compile.PropertyList,
					Help: "Columns to cluster on; empty uses every numeric column"},
				{Name: "random_state", Label: "Random seed", Kind: compile.PropertyNumber},
			},
			GenerateCode: generateKMeans,
		},
	}
}

func supervisedDefaults() map[string]any {
	return map[string]any{"test_size": 0.25, "random_state": 42}
}

func supervisedProperties() []compile.PropertySpec {
	return []compile.PropertySpec{
		{Name: "target", Label: "Target column", Kind: compile.PropertyColumn, Required: true},
		{Name: "features", Label: "Feature columns", Kind: compile.PropertyList,
			Help: "Empty uses every column except the target"},
		{Name: "test_size", Label: "Test fraction", Kind: compile.PropertyNumber,
			Min: floatPtr(0.01), Max: floatPtr(0.99)},
		{Name: "random_state", Label: "Random seed", Kind: compile.PropertyNumber},
	}
}

func mergeDefaults(base, extra map[string]any) map[string]any {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// generateSupervised emits the shared fit template for estimators trained
// against a target column. The fragment splits features off the incoming
// frame and fits on the training partition; the held-out partition stays
// addressable as X_test_<modelVar> / y_test_<modelVar> so evaluation nodes
// downstream can reconstruct the names from their input variable alone.
func generateSupervised(class, importStmt string, args func(*compile.Node) string) compile.GenerateFunc {
	return func(n *compile.Node, ctx *compile.Context) (string, error) {
		ctx.AddImport(importStmt)
		ctx.AddImport("from sklearn.model_selection import train_test_split")

		in := ctx.InputVariable(n)
		out := ctx.UniqueName(in + "_model")
		target := compile.PyString(n.StringProp("target"))
		testSize, _ := n.FloatProp("test_size")
		seed, _ := n.IntProp("random_state")

		var b strings.Builder
		if features := n.StringsProp("features"); len(features) > 0 {
			fmt.Fprintf(&b, "X_%s = %s[%s]\n", out, in, compile.PyStringList(features))
		} else {
			fmt.Fprintf(&b, "X_%s = %s.drop(columns=[%s])\n", out, in, target)
		}
		fmt.Fprintf(&b, "y_%s = %s[%s]\n", out, in, target)
		fmt.Fprintf(&b, "X_train_%s, X_test_%s, y_train_%s, y_test_%s = train_test_split(\n", out, out, out, out)
		fmt.Fprintf(&b, "    X_%s, y_%s, test_size=%s, random_state=%d)\n", out, out, compile.PyValue(testSize), seed)

		extra := ""
		if args != nil {
			extra = args(n)
		}
		fmt.Fprintf(&b, "%s = %s(%s)\n", out, class, extra)
		fmt.Fprintf(&b, "%s.fit(X_train_%s, y_train_%s)\n", out, out, out)

		if err := ctx.SetVariable(n.ID, out); err != nil {
			return "", err
		}
		return b.String(), nil
	}
}

func generateKMeans(n *compile.Node, ctx *compile.Context) (string, error) {
	ctx.AddImport("from sklearn.cluster import KMeans")

	in := ctx.InputVariable(n)
	out := ctx.UniqueName(in + "_clustered")
	safe := compile.SafeName(n.ID)
	clusters, _ := n.IntProp("n_clusters")
	seed, _ := n.IntProp("random_state")

	var b strings.Builder
	fmt.Fprintf(&b, "kmeans_%s = KMeans(n_clusters=%d, random_state=%d, n_init='auto')\n", safe, clusters, seed)
	fmt.Fprintf(&b, "%s = %s.copy()\n", out, in)
	if cols := n.StringsProp("columns"); len(cols) > 0 {
		fmt.Fprintf(&b, "%s['cluster'] = kmeans_%s.fit_predict(%s[%s])\n", out, safe, out, compile.PyStringList(cols))
	} else {
		fmt.Fprintf(&b, "%s['cluster'] = kmeans_%s.fit_predict(%s.select_dtypes(include='number'))\n", out, safe, out)
	}

	if err := ctx.SetVariable(n.ID, out); err != nil {
		return "", err
	}
	return b.String(), nil
}
