package compile

import "fmt"

type PropertyKind string

const (
	PropertyString PropertyKind = "string"
	PropertyNumber PropertyKind = "number"
	PropertyBool   PropertyKind = "bool"
	PropertySelect PropertyKind = "select"
	PropertyColumn PropertyKind = "column"
	PropertyList   PropertyKind = "list"
)

// PropertySpec describes one configurable field of a node type. The editor
// renders its form from this; the compiler validates node data against it.
type PropertySpec struct {
	Name     string       `json:"name"`
	Label    string       `json:"label"`
	Kind     PropertyKind `json:"kind"`
	Required bool         `json:"required"`
	Min      *float64     `json:"min,omitempty"`
	Max      *float64     `json:"max,omitempty"`
	Options  []string     `json:"options,omitempty"`
	Default  any          `json:"default,omitempty"`
	Help     string       `json:"help,omitempty"`
}

// GenerateFunc produces the Python fragment for one node. It reads the
// upstream variable from the context and must register its own output
// variable there. It must not touch any state outside the context.
type GenerateFunc func(node *Node, ctx *Context) (string, error)

// NodeDefinition is the immutable descriptor for a node type. Instances are
// built at startup, registered once, and shared read-only for the process
// lifetime.
type NodeDefinition struct {
	Type        string         `json:"type"`
	Category    string         `json:"category"`
	Name        string         `json:"name"`
	Icon        string         `json:"icon,omitempty"`
	Color       string         `json:"color,omitempty"`
	Description string         `json:"description,omitempty"`
	Defaults    map[string]any `json:"defaults,omitempty"`
	Properties  []PropertySpec `json:"properties"`
	GenerateCode GenerateFunc  `json:"-"`
}

// ValidateDefinition is the pure pre-registration check. The registry runs it
// on Register; callers loading node packs can run it earlier to fail at load
// time instead of at first compile.
func ValidateDefinition(def NodeDefinition) error {
	if def.Type == "" {
		return &DefinitionInvalidError{Reason: "type must not be empty"}
	}
	if def.GenerateCode == nil {
		return &DefinitionInvalidError{Type: def.Type, Reason: "missing GenerateCode function"}
	}

	seen := make(map[string]bool, len(def.Properties))
	for _, p := range def.Properties {
		if p.Name == "" {
			return &DefinitionInvalidError{Type: def.Type, Reason: "property with empty name"}
		}
		if seen[p.Name] {
			return &DefinitionInvalidError{Type: def.Type, Reason: fmt.Sprintf("duplicate property %q", p.Name)}
		}
		seen[p.Name] = true

		if p.Kind == PropertySelect && len(p.Options) == 0 {
			return &DefinitionInvalidError{Type: def.Type, Reason: fmt.Sprintf("select property %q has no options", p.Name)}
		}
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			return &DefinitionInvalidError{Type: def.Type, Reason: fmt.Sprintf("property %q has min > max", p.Name)}
		}
	}

	return nil
}
