package nodes

import (
	"fmt"
	"strings"

	"mlstudio/internal/compile"
)

func cleaningDefinitions() []compile.NodeDefinition {
	return []compile.NodeDefinition{
		{
			Type:        "drop_na",
			Category:    CategoryCleaning,
			Name:        "Drop Missing",
			Icon:        "eraser",
			Color:       "#d98e32",
			Description: "Drop rows containing missing values",
			Defaults:    map[string]any{"how": "any"},
			Properties: []compile.PropertySpec{
				{Name: "columns", Label: "Columns", Kind: compile.PropertyList,
					Help: "Restrict to these columns; empty means all"},
				{Name: "how", Label: "How", Kind: compile.PropertySelect, Options: []string{"any", "all"}},
			},
			GenerateCode: generateDropNA,
		},
		{
			Type:        "fill_na",
			Category:    CategoryCleaning,
			Name:        "Fill Missing",
			Icon:        "droplet",
			Color:       "#d98e32",
			Description: "Replace missing values with a constant or a statistic",
			Defaults:    map[string]any{"strategy": "constant"},
			Properties: []compile.PropertySpec{
				{Name: "column", Label: "Column", Kind: compile.PropertyColumn, Required: true},
				{Name: "strategy", Label: "Strategy", Kind: compile.PropertySelect,
					Options: []string{"constant", "mean", "median", "mode"}},
				{Name: "value", Label: "Constant value", Kind: compile.PropertyString,
					Help: "Used when strategy is constant"},
			},
			GenerateCode: generateFillNA,
		},
		{
			Type:        "drop_duplicates",
			Category:    CategoryCleaning,
			Name:        "Drop Duplicates",
			Icon:        "copy",
			Color:       "#d98e32",
			Description: "Drop duplicated rows",
			Properties: []compile.PropertySpec{
				{Name: "columns", Label: "Columns", Kind: compile.PropertyList,
					Help: "Consider only these columns; empty means all"},
			},
			GenerateCode: generateDropDuplicates,
		},
		{
			Type:        "drop_columns",
			Category:    CategoryCleaning,
			Name:        "Drop Columns",
			Icon:        "columns",
			Color:       "#d98e32",
			Description: "Remove columns from the dataframe",
			Properties: []compile.PropertySpec{
				{Name: "columns", Label: "Columns", Kind: compile.PropertyList, Required: true},
			},
			GenerateCode: generateDropColumns,
		},
		{
			Type:        "rename_column",
			Category:    CategoryCleaning,
			Name:        "Rename Column",
			Icon:        "edit",
			Color:       "#d98e32",
			Description: "Rename a single column",
			Properties: []compile.PropertySpec{
				{Name: "from", Label: "Current name", Kind: compile.PropertyColumn, Required: true},
				{Name: "to", Label: "New name", Kind: compile.PropertyString, Required: true},
			},
			GenerateCode: generateRenameColumn,
		},
		{
			Type:        "filter_rows",
			Category:    CategoryCleaning,
			Name:        "Filter Rows",
			Icon:        "filter",
			Color:       "#d98e32",
			Description: "Keep rows matching a pandas query expression",
			Properties: []compile.PropertySpec{
				{Name: "expression", Label: "Query expression", Kind: compile.PropertyString, Required: true,
					Help: "pandas query syntax, e.g. age > 30 and country == 'FR'"},
			},
			GenerateCode: generateFilterRows,
		},
	}
}

func generateDropNA(n *compile.Node, ctx *compile.Context) (string, error) {
	in := ctx.InputVariable(n)
	out := ctx.UniqueName(in + "_clean")

	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s.dropna(how=%s", out, in, compile.PyString(n.StringProp("how")))
	if cols := n.StringsProp("columns"); len(cols) > 0 {
		fmt.Fprintf(&b, ", subset=%s", compile.PyStringList(cols))
	}
	b.WriteString(")\n")

	if err := ctx.SetVariable(n.ID, out); err != nil {
		return "", err
	}
	return b.String(), nil
}

func generateFillNA(n *compile.Node, ctx *compile.Context) (string, error) {
	in := ctx.InputVariable(n)
	out := ctx.UniqueName(in + "_filled")
	col := compile.PyString(n.StringProp("column"))

	var fill string
	switch n.StringProp("strategy") {
	case "mean":
		fill = fmt.Sprintf("%s[%s].mean()", in, col)
	case "median":
		fill = fmt.Sprintf("%s[%s].median()", in, col)
	case "mode":
		fill = fmt.Sprintf("%s[%s].mode().iloc[0]", in, col)
	default:
		fill = compile.PyValue(n.Data["value"])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s.copy()\n", out, in)
	fmt.Fprintf(&b, "%s[%s] = %s[%s].fillna(%s)\n", out, col, out, col, fill)

	if err := ctx.SetVariable(n.ID, out); err != nil {
		return "", err
	}
	return b.String(), nil
}

func generateDropDuplicates(n *compile.Node, ctx *compile.Context) (string, error) {
	in := ctx.InputVariable(n)
	out := ctx.UniqueName(in + "_dedup")

	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s.drop_duplicates(", out, in)
	if cols := n.StringsProp("columns"); len(cols) > 0 {
		fmt.Fprintf(&b, "subset=%s", compile.PyStringList(cols))
	}
	b.WriteString(")\n")

	if err := ctx.SetVariable(n.ID, out); err != nil {
		return "", err
	}
	return b.String(), nil
}

func generateDropColumns(n *compile.Node, ctx *compile.Context) (string, error) {
	in := ctx.InputVariable(n)
	out := ctx.UniqueName(in + "_dropped")

	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s.drop(columns=%s)\n", out, in, compile.PyStringList(n.StringsProp("columns")))

	if err := ctx.SetVariable(n.ID, out); err != nil {
		return "", err
	}
	return b.String(), nil
}

func generateRenameColumn(n *compile.Node, ctx *compile.Context) (string, error) {
	in := ctx.InputVariable(n)
	out := ctx.UniqueName(in + "_renamed")

	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s.rename(columns={%s: %s})\n", out, in,
		compile.PyString(n.StringProp("from")), compile.PyString(n.StringProp("to")))

	if err := ctx.SetVariable(n.ID, out); err != nil {
		return "", err
	}
	return b.String(), nil
}

func generateFilterRows(n *compile.Node, ctx *compile.Context) (string, error) {
	in := ctx.InputVariable(n)
	out := ctx.UniqueName(in + "_filtered")

	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s.query(%s)\n", out, in, compile.PyString(n.StringProp("expression")))

	if err := ctx.SetVariable(n.ID, out); err != nil {
		return "", err
	}
	return b.String(), nil
}
