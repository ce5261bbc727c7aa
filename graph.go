package gridcalc

// depNode is one vertex of the dependency graph. Both adjacency directions
// are maintained for O(1) neighborhood queries.
type depNode struct {
	in  map[CellKey]struct{} // producers this node reads
	out map[CellKey]struct{} // consumers reading this node
}

// DepGraph is the directed graph of producer->consumer edges. The edge A->B
// means B's value depends on A, so invalidating A schedules B.
type DepGraph struct {
	nodes map[CellKey]*depNode
}

// NewDepGraph creates an empty dependency graph
func NewDepGraph() *DepGraph {
	return &DepGraph{nodes: make(map[CellKey]*depNode)}
}

// getOrCreate returns the node for key, creating it on first use
func (g *DepGraph) getOrCreate(key CellKey) *depNode {
	if n, ok := g.nodes[key]; ok {
		return n
	}
	n := &depNode{
		in:  make(map[CellKey]struct{}),
		out: make(map[CellKey]struct{}),
	}
	g.nodes[key] = n
	return n
}

// cleanup removes a node once nothing touches it
func (g *DepGraph) cleanup(key CellKey) {
	n, ok := g.nodes[key]
	if !ok {
		return
	}
	if len(n.in) == 0 && len(n.out) == 0 {
		delete(g.nodes, key)
	}
}

// AddEdge installs the producer->consumer edge from->to
func (g *DepGraph) AddEdge(from, to CellKey) {
	g.getOrCreate(from).out[to] = struct{}{}
	g.getOrCreate(to).in[from] = struct{}{}
}

// RemoveEdge retracts the edge from->to if present
func (g *DepGraph) RemoveEdge(from, to CellKey) {
	if n, ok := g.nodes[from]; ok {
		delete(n.out, to)
	}
	if n, ok := g.nodes[to]; ok {
		delete(n.in, from)
	}
	g.cleanup(from)
	g.cleanup(to)
}

// ReplaceAllInbound atomically retracts every edge *->node and installs
// p->node for each producer. No intermediate state is observable because
// the graph is only read between public operations.
func (g *DepGraph) ReplaceAllInbound(node CellKey, producers []CellKey) {
	if n, ok := g.nodes[node]; ok {
		for p := range n.in {
			if pn, ok := g.nodes[p]; ok {
				delete(pn.out, node)
				g.cleanup(p)
			}
		}
		n.in = make(map[CellKey]struct{})
		g.cleanup(node)
	}
	for _, p := range producers {
		g.AddEdge(p, node)
	}
}

// RemoveAll retracts every edge touching node, in both directions
func (g *DepGraph) RemoveAll(node CellKey) {
	n, ok := g.nodes[node]
	if !ok {
		return
	}
	for p := range n.in {
		if pn, ok := g.nodes[p]; ok {
			delete(pn.out, node)
			g.cleanup(p)
		}
	}
	for c := range n.out {
		if cn, ok := g.nodes[c]; ok {
			delete(cn.in, node)
			g.cleanup(c)
		}
	}
	delete(g.nodes, node)
}

// Dependencies returns the producers node reads
func (g *DepGraph) Dependencies(node CellKey) []CellKey {
	n, ok := g.nodes[node]
	if !ok {
		return nil
	}
	result := make([]CellKey, 0, len(n.in))
	for p := range n.in {
		result = append(result, p)
	}
	return result
}

// Dependents returns the consumers reading node
func (g *DepGraph) Dependents(node CellKey) []CellKey {
	n, ok := g.nodes[node]
	if !ok {
		return nil
	}
	result := make([]CellKey, 0, len(n.out))
	for c := range n.out {
		result = append(result, c)
	}
	return result
}

// AffectedFrom computes the forward transitive closure of changed over
// outgoing edges, including the input keys themselves. BFS, O(V+E) over the
// closure.
func (g *DepGraph) AffectedFrom(changed map[CellKey]struct{}) map[CellKey]struct{} {
	affected := make(map[CellKey]struct{}, len(changed))
	queue := make([]CellKey, 0, len(changed))
	for key := range changed {
		affected[key] = struct{}{}
		queue = append(queue, key)
	}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		n, ok := g.nodes[key]
		if !ok {
			continue
		}
		for c := range n.out {
			if _, seen := affected[c]; seen {
				continue
			}
			affected[c] = struct{}{}
			queue = append(queue, c)
		}
	}
	return affected
}

// WouldCreateCycle reports whether installing the edge from->to would close
// a loop, i.e. whether a path to =>* from already exists in the forward
// graph. A self-edge always cycles.
func (g *DepGraph) WouldCreateCycle(from, to CellKey) bool {
	if from == to {
		return true
	}
	visited := map[CellKey]struct{}{to: {}}
	queue := []CellKey{to}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		n, ok := g.nodes[key]
		if !ok {
			continue
		}
		for c := range n.out {
			if c == from {
				return true
			}
			if _, seen := visited[c]; seen {
				continue
			}
			visited[c] = struct{}{}
			queue = append(queue, c)
		}
	}
	return false
}

// TopoOrder computes an evaluation order over the subset: producers before
// consumers, edges escaping the subset treated as absent. Post-order DFS;
// nodes already on the visitation stack are skipped, so no ordering is
// guaranteed among members of a cycle.
func (g *DepGraph) TopoOrder(subset map[CellKey]struct{}) []CellKey {
	const (
		unvisited = 0
		onStack   = 1
		done      = 2
	)
	state := make(map[CellKey]int, len(subset))
	order := make([]CellKey, 0, len(subset))

	var visit func(key CellKey)
	visit = func(key CellKey) {
		state[key] = onStack
		if n, ok := g.nodes[key]; ok {
			for p := range n.in {
				if _, in := subset[p]; !in {
					continue
				}
				if state[p] == unvisited {
					visit(p)
				}
			}
		}
		state[key] = done
		order = append(order, key)
	}

	for key := range subset {
		if state[key] == unvisited {
			visit(key)
		}
	}
	return order
}

// NodeCount returns the number of vertices currently tracked
func (g *DepGraph) NodeCount() int {
	return len(g.nodes)
}

// HasEdge reports whether the producer->consumer edge from->to exists
func (g *DepGraph) HasEdge(from, to CellKey) bool {
	n, ok := g.nodes[from]
	if !ok {
		return false
	}
	_, ok = n.out[to]
	return ok
}
