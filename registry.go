package nestable

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Registry is an in-memory Resolver that indexes nodes by id.
// It holds the strong references to its nodes; the hierarchy itself only
// links them weakly. A Registry is safe for concurrent use.
type Registry struct {
	// nodes holds all registered nodes
	nodes   map[uuid.UUID]Node
	nodesMu sync.RWMutex

	// maxDepth bounds Walk
	maxDepth int

	// metrics is shared with registered nodes that have none of their own
	metrics *Metrics
}

// NewRegistry creates an empty registry. WithMaxDepth and WithMetrics are
// honoured; other options are ignored.
func NewRegistry(opts ...Option) *Registry {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{
		nodes:    make(map[uuid.UUID]Node),
		maxDepth: o.MaxDepth,
		metrics:  o.Metrics,
	}
}

// Add registers a node under its id and makes the registry its resolver.
func (r *Registry) Add(node Node) error {
	if node == nil || node.Spatial() == nil {
		return ErrNilNode
	}
	n := node.Spatial()
	if n.destroyed {
		return fmt.Errorf("%w: %s", ErrDestroyed, n.id)
	}

	r.nodesMu.Lock()
	if _, ok := r.nodes[n.id]; ok {
		r.nodesMu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.id)
	}
	r.nodes[n.id] = node
	count := len(r.nodes)
	r.nodesMu.Unlock()

	n.owner = node
	n.SetResolver(r)
	if n.metrics == nil {
		n.metrics = r.metrics
	}
	r.metrics.setNodes(count)
	return nil
}

// Remove unregisters the node with the given id and destroys it.
// Returns false if no such node was registered.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.nodesMu.Lock()
	node, ok := r.nodes[id]
	if ok {
		delete(r.nodes, id)
	}
	count := len(r.nodes)
	r.nodesMu.Unlock()

	if !ok {
		return false
	}
	node.Spatial().Destroy()
	r.metrics.setNodes(count)
	return true
}

// Resolve implements Resolver.
func (r *Registry) Resolve(id uuid.UUID) (Node, bool) {
	r.nodesMu.RLock()
	defer r.nodesMu.RUnlock()
	node, ok := r.nodes[id]
	return node, ok
}

// Get retrieves a node by id. Returns nil if not registered.
func (r *Registry) Get(id uuid.UUID) Node {
	node, _ := r.Resolve(id)
	return node
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	r.nodesMu.RLock()
	defer r.nodesMu.RUnlock()
	return len(r.nodes)
}

// All returns a slice of all registered nodes.
func (r *Registry) All() []Node {
	r.nodesMu.RLock()
	defer r.nodesMu.RUnlock()

	nodes := make([]Node, 0, len(r.nodes))
	for _, node := range r.nodes {
		nodes = append(nodes, node)
	}
	return nodes
}

// Roots returns all registered nodes that have no resolvable parent.
// Resolving parents links children to them, so Walk from the roots afterwards
// reaches every node whose chain is intact.
func (r *Registry) Roots() []Node {
	var roots []Node
	for _, node := range r.All() {
		if _, ok := node.Spatial().Parent(); !ok {
			roots = append(roots, node)
		}
	}
	return roots
}

// Walk visits the node with the given id and its resolved descendants depth
// first. fn receives each node and its depth below the start node; returning
// false skips that node's subtree. Walk stops descending at the depth guard.
// Returns false if id is not registered.
func (r *Registry) Walk(id uuid.UUID, fn func(node Node, depth int) bool) bool {
	start, ok := r.Resolve(id)
	if !ok {
		return false
	}
	r.walk(start, 0, fn)
	return true
}

func (r *Registry) walk(node Node, depth int, fn func(Node, int) bool) {
	if !fn(node, depth) || depth >= r.maxDepth {
		return
	}
	for _, child := range node.Spatial().Children() {
		r.walk(child, depth+1, fn)
	}
}

// rekey moves a node to a new id. Called by Nestable.SetID.
func (r *Registry) rekey(n *Nestable, old, id uuid.UUID) error {
	r.nodesMu.Lock()
	defer r.nodesMu.Unlock()

	node, ok := r.nodes[old]
	if !ok || node.Spatial() != n {
		return nil
	}
	if _, taken := r.nodes[id]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	delete(r.nodes, old)
	r.nodes[id] = node
	return nil
}
