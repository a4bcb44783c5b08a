package compile

import (
	"fmt"
	"strings"
)

// DefinitionInvalidError is returned when a node definition fails validation
// at registration time.
type DefinitionInvalidError struct {
	Type   string
	Reason string
}

func (e *DefinitionInvalidError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("invalid node definition: %s", e.Reason)
	}
	return fmt.Sprintf("invalid node definition %q: %s", e.Type, e.Reason)
}

// DuplicateTypeError is returned when a definition type is already registered.
type DuplicateTypeError struct {
	Type string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("node type %q is already registered", e.Type)
}

// UnknownNodeTypeError is returned when a graph references a node type that
// is not present in the registry.
type UnknownNodeTypeError struct {
	Type string
}

func (e *UnknownNodeTypeError) Error() string {
	return fmt.Sprintf("unknown node type %q", e.Type)
}

// CyclicGraphError aborts the whole compilation: with a cycle in the edge set
// there is no valid ordering, so no script can be produced.
type CyclicGraphError struct {
	NodeIDs []string
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("graph contains a cycle through nodes [%s]", strings.Join(e.NodeIDs, ", "))
}

// RebindError is returned when a generator tries to change a node's output
// variable after it has been bound. Bindings are immutable for the run.
type RebindError struct {
	NodeID   string
	Existing string
	Proposed string
}

func (e *RebindError) Error() string {
	return fmt.Sprintf("node %q output variable already bound to %q, cannot rebind to %q",
		e.NodeID, e.Existing, e.Proposed)
}

// ValidationError reports the properties of a single node that failed
// validation after the defaults merge.
type ValidationError struct {
	NodeID     string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("node %q has invalid properties: %s", e.NodeID, strings.Join(e.Violations, "; "))
}

// NodeError is a per-node compilation failure surfaced in the Result. A
// failed node never aborts the compilation of the rest of the graph.
type NodeError struct {
	NodeID  string `json:"nodeId"`
	Message string `json:"message"`
}
