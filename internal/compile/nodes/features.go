package nodes

import (
	"fmt"
	"strings"

	"mlstudio/internal/compile"
)

func featureDefinitions() []compile.NodeDefinition {
	return []compile.NodeDefinition{
		{
			Type:        "select_columns",
			Category:    CategoryFeatures,
			Name:        "Select Columns",
			Icon:        "list",
			Color:       "#3178c6",
			Description: "Keep only the listed columns",
			Properties: []compile.PropertySpec{
				{Name: "columns", Label: "Columns", Kind: compile.PropertyList, Required: true},
			},
			GenerateCode: generateSelectColumns,
		},
		{
			Type:        "standard_scaler",
			Category:    CategoryFeatures,
			Name:        "Standard Scaler",
			Icon:        "sliders",
			Color:       "#3178c6",
			Description: "Standardize columns to zero mean and unit variance",
			Properties: []compile.PropertySpec{
				{Name: "columns", Label: "Columns", Kind: compile.PropertyList,
					Help: "Columns to scale; empty scales every numeric column"},
			},
			GenerateCode: generateScaler("StandardScaler", "_scaled"),
		},
		{
			Type:        "minmax_scaler",
			Category:    CategoryFeatures,
			Name:        "Min-Max Scaler",
			Icon:        "sliders",
			Color:       "#3178c6",
			Description: "Scale columns into the [0, 1] range",
			Properties: []compile.PropertySpec{
				{Name: "columns", Label: "Columns", Kind: compile.PropertyList,
					Help: "Columns to scale; empty scales every numeric column"},
			},
			GenerateCode: generateScaler("MinMaxScaler", "_scaled"),
		},
		{
			Type:        "one_hot_encode",
			Category:    CategoryFeatures,
			Name:        "One-Hot Encode",
			Icon:        "binary",
			Color:       "#3178c6",
			Description: "Expand categorical columns into indicator columns",
			Properties: []compile.PropertySpec{
				{Name: "columns", Label: "Columns", Kind: compile.PropertyList, Required: true},
			},
			GenerateCode: generateOneHot,
		},
		{
			Type:        "pca",
			Category:    CategoryFeatures,
			Name:        "PCA",
			Icon:        "compress",
			Color:       "#3178c6",
			Description: "Project numeric columns onto principal components",
			Defaults:    map[string]any{"n_components": 2},
			Properties: []compile.PropertySpec{
				{Name: "n_components", Label: "Components", Kind: compile.PropertyNumber,
					Required: true, Min: floatPtr(1)},
			},
			GenerateCode: generatePCA,
		},
		{
			Type:        "train_test_split",
			Category:    CategoryFeatures,
			Name:        "Train/Test Split",
			Icon:        "scissors",
			Color:       "#3178c6",
			Description: "Split the dataframe into train and test partitions",
			Defaults:    map[string]any{"test_size": 0.25, "random_state": 42},
			Properties: []compile.PropertySpec{
				{Name: "test_size", Label: "Test fraction", Kind: compile.PropertyNumber,
					Min: floatPtr(0.01), Max: floatPtr(0.99)},
				{Name: "random_state", Label: "Random seed", Kind: compile.PropertyNumber},
			},
			GenerateCode: generateTrainTestSplit,
		},
	}
}

func generateSelectColumns(n *compile.Node, ctx *compile.Context) (string, error) {
	in := ctx.InputVariable(n)
	out := ctx.UniqueName(in + "_selected")

	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s[%s]\n", out, in, compile.PyStringList(n.StringsProp("columns")))

	if err := ctx.SetVariable(n.ID, out); err != nil {
		return "", err
	}
	return b.String(), nil
}

// generateScaler covers both sklearn scalers; they differ only in class name.
func generateScaler(class, suffix string) compile.GenerateFunc {
	return func(n *compile.Node, ctx *compile.Context) (string, error) {
		ctx.AddImport("from sklearn.preprocessing import " + class)

		in := ctx.InputVariable(n)
		out := ctx.UniqueName(in + suffix)
		safe := compile.SafeName(n.ID)

		var b strings.Builder
		fmt.Fprintf(&b, "scaler_%s = %s()\n", safe, class)
		fmt.Fprintf(&b, "%s = %s.copy()\n", out, in)
		if cols := n.StringsProp("columns"); len(cols) > 0 {
			list := compile.PyStringList(cols)
			fmt.Fprintf(&b, "%s[%s] = scaler_%s.fit_transform(%s[%s])\n", out, list, safe, out, list)
		} else {
			fmt.Fprintf(&b, "numeric_%s = %s.select_dtypes(include='number').columns\n", safe, out)
			fmt.Fprintf(&b, "%s[numeric_%s] = scaler_%s.fit_transform(%s[numeric_%s])\n", out, safe, safe, out, safe)
		}

		if err := ctx.SetVariable(n.ID, out); err != nil {
			return "", err
		}
		return b.String(), nil
	}
}

func generateOneHot(n *compile.Node, ctx *compile.Context) (string, error) {
	ctx.AddImport("import pandas as pd")

	in := ctx.InputVariable(n)
	out := ctx.UniqueName(in + "_encoded")

	var b strings.Builder
	fmt.Fprintf(&b, "%s = pd.get_dummies(%s, columns=%s)\n", out, in, compile.PyStringList(n.StringsProp("columns")))

	if err := ctx.SetVariable(n.ID, out); err != nil {
		return "", err
	}
	return b.String(), nil
}

func generatePCA(n *compile.Node, ctx *compile.Context) (string, error) {
	ctx.AddImport("import pandas as pd")
	ctx.AddImport("from sklearn.decomposition import PCA")

	in := ctx.InputVariable(n)
	out := ctx.UniqueName(in + "_pca")
	safe := compile.SafeName(n.ID)
	components, _ := n.IntProp("n_components")

	var b strings.Builder
	fmt.Fprintf(&b, "pca_%s = PCA(n_components=%d)\n", safe, components)
	fmt.Fprintf(&b, "%s = pd.DataFrame(\n", out)
	fmt.Fprintf(&b, "    pca_%s.fit_transform(%s.select_dtypes(include='number')),\n", safe, in)
	fmt.Fprintf(&b, "    columns=['pc%%d' %% (i + 1) for i in range(%d)],\n", components)
	fmt.Fprintf(&b, ")\n")

	if err := ctx.SetVariable(n.ID, out); err != nil {
		return "", err
	}
	return b.String(), nil
}

func generateTrainTestSplit(n *compile.Node, ctx *compile.Context) (string, error) {
	ctx.AddImport("from sklearn.model_selection import train_test_split")

	in := ctx.InputVariable(n)
	out := ctx.UniqueName(in + "_train")
	testOut := ctx.UniqueName(in + "_test")
	testSize, _ := n.FloatProp("test_size")
	seed, _ := n.IntProp("random_state")

	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s = train_test_split(%s, test_size=%s, random_state=%d)\n",
		out, testOut, in, compile.PyValue(testSize), seed)

	// Downstream nodes consume the training partition; the test partition
	// stays addressable under the _test name.
	if err := ctx.SetVariable(n.ID, out); err != nil {
		return "", err
	}
	return b.String(), nil
}
