package nodes

import (
	"fmt"
	"strings"

	"mlstudio/internal/compile"
)

func evalDefinitions() []compile.NodeDefinition {
	return []compile.NodeDefinition{
		{
			Type:        "predict",
			Category:    CategoryEval,
			Name:        "Predict",
			Icon:        "play",
			Color:       "#2b8a8a",
			Description: "Run the fitted model on its held-out partition",
			GenerateCode: generatePredict,
		},
		{
			Type:        "evaluate_classification",
			Category:    CategoryEval,
			Name:        "Classification Report",
			Icon:        "check-square",
			Color:       "#2b8a8a",
			Description: "Print accuracy and per-class metrics on the held-out partition",
			GenerateCode: generateEvalClassification,
		},
		{
			Type:        "evaluate_regression",
			Category:    CategoryEval,
			Name:        "Regression Metrics",
			Icon:        "bar-chart",
			Color:       "#2b8a8a",
			Description: "Print R2 and error metrics on the held-out partition",
			GenerateCode: generateEvalRegression,
		},
		{
			Type:        "cluster_summary",
			Category:    CategoryEval,
			Name:        "Cluster Summary",
			Icon:        "pie-chart",
			Color:       "#2b8a8a",
			Description: "Print cluster sizes and per-cluster means",
			GenerateCode: generateClusterSummary,
		},
	}
}

func generatePredict(n *compile.Node, ctx *compile.Context) (string, error) {
	in := ctx.InputVariable(n)
	out := ctx.UniqueName(in + "_pred")

	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s.predict(X_test_%s)\n", out, in, in)

	if err := ctx.SetVariable(n.ID, out); err != nil {
		return "", err
	}
	return b.String(), nil
}

func generateEvalClassification(n *compile.Node, ctx *compile.Context) (string, error) {
	ctx.AddImport("from sklearn.metrics import accuracy_score, classification_report")

	in := ctx.InputVariable(n)

	var b strings.Builder
	fmt.Fprintf(&b, "pred_%s = %s.predict(X_test_%s)\n", in, in, in)
	fmt.Fprintf(&b, "print('accuracy:', accuracy_score(y_test_%s, pred_%s))\n", in, in)
	fmt.Fprintf(&b, "print(classification_report(y_test_%s, pred_%s))\n", in, in)

	if err := ctx.SetVariable(n.ID, in); err != nil {
		return "", err
	}
	return b.String(), nil
}

func generateEvalRegression(n *compile.Node, ctx *compile.Context) (string, error) {
	ctx.AddImport("from sklearn.metrics import mean_absolute_error, mean_squared_error, r2_score")

	in := ctx.InputVariable(n)

	var b strings.Builder
	fmt.Fprintf(&b, "pred_%s = %s.predict(X_test_%s)\n", in, in, in)
	fmt.Fprintf(&b, "print('r2:', r2_score(y_test_%s, pred_%s))\n", in, in)
	fmt.Fprintf(&b, "print('mae:', mean_absolute_error(y_test_%s, pred_%s))\n", in, in)
	fmt.Fprintf(&b, "print('mse:', mean_squared_error(y_test_%s, pred_%s))\n", in, in)

	if err := ctx.SetVariable(n.ID, in); err != nil {
		return "", err
	}
	return b.String(), nil
}

func generateClusterSummary(n *compile.Node, ctx *compile.Context) (string, error) {
	in := ctx.InputVariable(n)

	var b strings.Builder
	fmt.Fprintf(&b, "print(%s['cluster'].value_counts().sort_index())\n", in)
	fmt.Fprintf(&b, "print(%s.groupby('cluster').mean(numeric_only=True))\n", in)

	if err := ctx.SetVariable(n.ID, in); err != nil {
		return "", err
	}
	return b.String(), nil
}
