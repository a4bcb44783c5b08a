package compile

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Result is the outcome of compiling one graph. NodeErrors lists the nodes
// whose fragments could not be generated; their place in the script is held
// by a commented placeholder so the rest of the graph still compiles.
type Result struct {
	Script         string      `json:"script"`
	OrderedNodeIDs []string    `json:"orderedNodeIds"`
	NodeErrors     []NodeError `json:"nodeErrors"`
}

// HasErrors reports whether any node failed to generate.
func (r *Result) HasErrors() bool {
	return len(r.NodeErrors) > 0
}

// Compiler turns a node graph into a single Python script. It is stateless
// across runs; all per-run state lives in the Context it creates.
type Compiler struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewCompiler creates a compiler over an explicit registry.
func NewCompiler(registry *Registry, logger zerolog.Logger) *Compiler {
	return &Compiler{
		registry: registry,
		logger:   logger,
	}
}

// Compile orders the graph, generates each node's fragment in dependency
// order and assembles the final script. A cycle is the only fatal case:
// every other failure is recorded per node and compilation continues.
func (c *Compiler) Compile(g *Graph) (*Result, error) {
	if g == nil || len(g.Nodes) == 0 {
		return nil, fmt.Errorf("graph has no nodes")
	}

	result := &Result{}
	nodes, edges := c.sanitize(g, result)

	if cycle := findCycle(nodes, edges); cycle != nil {
		return nil, &CyclicGraphError{NodeIDs: cycle}
	}

	ordered := topoOrder(nodes, edges)
	ctx := NewContext(g)

	var body strings.Builder
	for _, node := range ordered {
		result.OrderedNodeIDs = append(result.OrderedNodeIDs, node.ID)
		body.WriteString(c.marker(node))

		fragment, err := c.generateNode(node, ctx)
		if err != nil {
			c.logger.Warn().Str("nodeId", node.ID).Str("type", node.Type).Err(err).
				Msg("Node failed to generate, emitting placeholder")
			result.NodeErrors = append(result.NodeErrors, NodeError{NodeID: node.ID, Message: err.Error()})
			body.WriteString(fmt.Sprintf("# node %s (%s) skipped: %s\n\n", node.ID, node.Type, commentSafe(err.Error())))
			continue
		}

		body.WriteString(fragment)
		if !strings.HasSuffix(fragment, "\n") {
			body.WriteString("\n")
		}
		body.WriteString("\n")
	}

	var script strings.Builder
	script.WriteString("# generated pipeline script\n")
	if imports := ctx.Imports(); len(imports) > 0 {
		for _, stmt := range imports {
			script.WriteString(stmt)
			script.WriteString("\n")
		}
	}
	script.WriteString("\n")
	script.WriteString(body.String())

	result.Script = script.String()
	return result, nil
}

// sanitize drops duplicate node ids and dangling edges before ordering,
// recording a per-node error for each duplicate.
func (c *Compiler) sanitize(g *Graph, result *Result) ([]*Node, []Edge) {
	seen := make(map[string]bool, len(g.Nodes))
	nodes := make([]*Node, 0, len(g.Nodes))
	for i := range g.Nodes {
		node := &g.Nodes[i]
		if seen[node.ID] {
			result.NodeErrors = append(result.NodeErrors, NodeError{
				NodeID:  node.ID,
				Message: "duplicate node id, instance ignored",
			})
			continue
		}
		seen[node.ID] = true
		nodes = append(nodes, node)
	}

	edges := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			c.logger.Warn().Str("source", e.Source).Str("target", e.Target).
				Msg("Edge references a missing node, ignoring")
			continue
		}
		edges = append(edges, e)
	}

	return nodes, edges
}

// generateNode resolves the definition, merges defaults, validates the
// property bag and invokes the generator. A panicking generator is contained
// here.
func (c *Compiler) generateNode(node *Node, ctx *Context) (fragment string, err error) {
	def, err := c.registry.Resolve(node.Type)
	if err != nil {
		return "", err
	}

	merged := *node
	merged.Data = MergeDefaults(def, node.Data)

	if violations := ValidateProperties(def, merged.Data); len(violations) > 0 {
		return "", &ValidationError{NodeID: node.ID, Violations: violations}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panicked: %v", r)
		}
	}()

	fragment, err = def.GenerateCode(&merged, ctx)
	if err != nil {
		return "", err
	}
	if _, bound := ctx.OutputVariable(node.ID); !bound {
		c.logger.Debug().Str("nodeId", node.ID).Str("type", node.Type).
			Msg("Generator did not bind an output variable")
	}
	return fragment, nil
}

func (c *Compiler) marker(node *Node) string {
	if node.Name != "" {
		return fmt.Sprintf("# === node %s (%s): %s ===\n", node.ID, node.Type, commentSafe(node.Name))
	}
	return fmt.Sprintf("# === node %s (%s) ===\n", node.ID, node.Type)
}

// commentSafe keeps an arbitrary message on one comment line.
func commentSafe(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// findCycle runs a DFS over the edge set and returns the ids of the nodes on
// the first cycle found, in cycle order. nil means the graph is a DAG.
func findCycle(nodes []*Node, edges []Edge) []string {
	next := make(map[string][]string)
	for _, e := range edges {
		next[e.Source] = append(next[e.Source], e.Target)
	}

	const (
		white = 0
		grey  = 1
		black = 2
	)
	state := make(map[string]int, len(nodes))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		state[id] = grey
		stack = append(stack, id)

		for _, target := range next[id] {
			switch state[target] {
			case grey:
				// Back edge: the cycle is the stack segment from target on.
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == target {
						cycle = append([]string(nil), stack[i:]...)
						return true
					}
				}
			case white:
				if visit(target) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = black
		return false
	}

	for _, node := range nodes {
		if state[node.ID] == white {
			if visit(node.ID) {
				return cycle
			}
		}
	}
	return nil
}

// topoOrder is Kahn's algorithm with a stable tie-break: among nodes whose
// dependencies are all satisfied, graph insertion order wins. Same graph in,
// same order out. Must be called on an acyclic edge set.
func topoOrder(nodes []*Node, edges []Edge) []*Node {
	indegree := make(map[string]int, len(nodes))
	for _, node := range nodes {
		indegree[node.ID] = 0
	}
	for _, e := range edges {
		indegree[e.Target]++
	}

	done := make(map[string]bool, len(nodes))
	ordered := make([]*Node, 0, len(nodes))

	for len(ordered) < len(nodes) {
		progressed := false
		for _, node := range nodes {
			if done[node.ID] || indegree[node.ID] != 0 {
				continue
			}
			done[node.ID] = true
			ordered = append(ordered, node)
			for _, e := range edges {
				if e.Source == node.ID {
					indegree[e.Target]--
				}
			}
			progressed = true
			break
		}
		if !progressed {
			break
		}
	}

	return ordered
}
