// Package nodes holds the built-in node catalog: one NodeDefinition per
// operation the visual editor offers, each emitting a pandas/scikit-learn
// fragment. The definitions are data plus a generator function; all
// ordering, validation and error isolation lives in the compile package.
package nodes

import "mlstudio/internal/compile"

const (
	CategoryInput    = "input"
	CategoryCleaning = "cleaning"
	CategoryFeatures = "features"
	CategoryModel    = "model"
	CategoryEval     = "evaluation"
	CategoryOutput   = "output"
)

// All returns the complete built-in catalog in palette order. Main ingests
// it with RegisterAll once at startup.
func All() []compile.NodeDefinition {
	var defs []compile.NodeDefinition
	defs = append(defs, inputDefinitions()...)
	defs = append(defs, cleaningDefinitions()...)
	defs = append(defs, featureDefinitions()...)
	defs = append(defs, modelDefinitions()...)
	defs = append(defs, evalDefinitions()...)
	return defs
}

func floatPtr(f float64) *float64 {
	return &f
}
