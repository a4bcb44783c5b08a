package compile

import "sync"

// Registry is the catalog mapping node type -> definition. Resolve is safe
// for concurrent use; Register is single-writer and a definition only becomes
// visible after it has fully passed validation.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]NodeDefinition
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]NodeDefinition),
	}
}

// Register validates and adds a single definition.
func (r *Registry) Register(def NodeDefinition) error {
	if err := ValidateDefinition(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Type]; exists {
		return &DuplicateTypeError{Type: def.Type}
	}
	r.defs[def.Type] = def
	r.order = append(r.order, def.Type)
	return nil
}

// Resolve returns the definition for a node type.
func (r *Registry) Resolve(nodeType string) (NodeDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[nodeType]
	if !ok {
		return NodeDefinition{}, &UnknownNodeTypeError{Type: nodeType}
	}
	return def, nil
}

// Definitions returns all registered definitions in registration order.
func (r *Registry) Definitions() []NodeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]NodeDefinition, 0, len(r.order))
	for _, t := range r.order {
		defs = append(defs, r.defs[t])
	}
	return defs
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// RegistrationError records one definition that failed to register during a
// batch ingestion.
type RegistrationError struct {
	Type string `json:"type"`
	Err  error  `json:"error"`
}

// RegisterAll ingests a node pack in one pass. It keeps going past individual
// failures so one malformed definition never blocks the rest of the pack, and
// returns the list of failures.
func (r *Registry) RegisterAll(defs []NodeDefinition) []RegistrationError {
	var failed []RegistrationError
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			failed = append(failed, RegistrationError{Type: def.Type, Err: err})
		}
	}
	return failed
}

// DefaultRegistry holds the built-in node catalog. The compiler never reaches
// for it implicitly; main wires it in explicitly.
var DefaultRegistry = NewRegistry()
