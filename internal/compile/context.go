package compile

import (
	"fmt"
	"sort"
)

// DefaultInputVariable is what InputVariable falls back to when a node has no
// upstream or its upstream is unbound. The fallback lets a single node's
// generator be exercised standalone, without a full graph.
const DefaultInputVariable = "df"

// Context is the variable-naming contract between nodes for one compilation
// run. It maps each compiled node to the Python variable holding its output,
// and collects the import statements the generators need. One context per
// run; never reused.
type Context struct {
	graph    *Graph
	bindings map[string]string
	used     map[string]int
	imports  map[string]bool
}

// NewContext creates a fresh context over a graph.
func NewContext(g *Graph) *Context {
	return &Context{
		graph:    g,
		bindings: make(map[string]string),
		used:     make(map[string]int),
		imports:  make(map[string]bool),
	}
}

// InputVariable resolves the variable holding the output of the node's
// upstream dependency by walking the edge set. Deterministic, no side
// effects.
func (c *Context) InputVariable(n *Node) string {
	for _, sourceID := range c.graph.Upstream(n.ID) {
		if name, ok := c.bindings[sourceID]; ok {
			return name
		}
	}
	return DefaultInputVariable
}

// SetVariable records the variable a node's generator chose for its output.
// A binding is immutable for the rest of the run: rebinding to a different
// name is an error, rebinding to the same name is a no-op so generators stay
// idempotent.
func (c *Context) SetVariable(nodeID, name string) error {
	if existing, ok := c.bindings[nodeID]; ok {
		if existing == name {
			return nil
		}
		return &RebindError{NodeID: nodeID, Existing: existing, Proposed: name}
	}
	c.bindings[nodeID] = name
	return nil
}

// OutputVariable returns the bound output variable of a node. ok == false
// means the node has not been compiled yet; when the caller is a downstream
// generator that is an ordering bug, not a user error.
func (c *Context) OutputVariable(nodeID string) (string, bool) {
	name, ok := c.bindings[nodeID]
	return name, ok
}

// UniqueName returns base, or base_2, base_3, ... if base was already handed
// out during this run. Keeps sibling nodes that derive the same name from a
// shared upstream from colliding in the generated script.
func (c *Context) UniqueName(base string) string {
	c.used[base]++
	if c.used[base] == 1 {
		return base
	}
	name := fmt.Sprintf("%s_%d", base, c.used[base])
	c.used[name]++
	return name
}

// AddImport records an import statement for the script prologue. Duplicates
// collapse.
func (c *Context) AddImport(stmt string) {
	c.imports[stmt] = true
}

// Imports returns the collected import statements, sorted for deterministic
// output.
func (c *Context) Imports() []string {
	stmts := make([]string, 0, len(c.imports))
	for stmt := range c.imports {
		stmts = append(stmts, stmt)
	}
	sort.Strings(stmts)
	return stmts
}
