package compile

// Node is one placed operation inside a graph, with its concrete
// configuration. Data holds the property values as edited; during compilation
// the compiler hands generators a copy whose Data has been merged over the
// definition's defaults.
type Node struct {
	ID   string         `json:"id"`
	Type string         `json:"type"`
	Name string         `json:"name"`
	Data map[string]any `json:"data"`
}

// Edge connects the output of Source to the input of Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the compiler input: nodes plus directed edges. Node order is the
// editor's insertion order and is used as the tie-break for nodes with no
// dependency between them, so repeated compilations of the same graph emit
// identical scripts.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Upstream returns the source ids of all edges pointing at the given node,
// in edge order.
func (g *Graph) Upstream(id string) []string {
	var sources []string
	for _, e := range g.Edges {
		if e.Target == id {
			sources = append(sources, e.Source)
		}
	}
	return sources
}

// Downstream returns the target ids of all edges leaving the given node.
func (g *Graph) Downstream(id string) []string {
	var targets []string
	for _, e := range g.Edges {
		if e.Source == id {
			targets = append(targets, e.Target)
		}
	}
	return targets
}

// StringProp returns a string property, or the empty string.
func (n *Node) StringProp(key string) string {
	if v, ok := n.Data[key].(string); ok {
		return v
	}
	return ""
}

// FloatProp returns a numeric property. JSON numbers arrive as float64;
// values set programmatically may be ints.
func (n *Node) FloatProp(key string) (float64, bool) {
	switch v := n.Data[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// IntProp returns a numeric property truncated to int.
func (n *Node) IntProp(key string) (int, bool) {
	f, ok := n.FloatProp(key)
	return int(f), ok
}

// BoolProp returns a boolean property, or false.
func (n *Node) BoolProp(key string) bool {
	v, _ := n.Data[key].(bool)
	return v
}

// StringsProp returns a list-of-strings property. Both []string and the
// []any produced by JSON decoding are accepted.
func (n *Node) StringsProp(key string) []string {
	switch v := n.Data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
