package holographic

// EntanglementGraph is the undirected adjacency relation between words that
// appeared next to each other. Neighbour lists keep edge insertion order,
// which is also the tie-break order for the response walk.
type EntanglementGraph struct {
	adj   map[string][]string
	edges map[string]map[string]struct{}
	count int
}

func newEntanglementGraph() *EntanglementGraph {
	return &EntanglementGraph{
		adj:   make(map[string][]string),
		edges: make(map[string]map[string]struct{}),
	}
}

// link adds the edge a–b. It returns false if the edge already existed.
// A word repeated back to back links to itself; the self-edge appears once
// in its neighbour list.
func (g *EntanglementGraph) link(a, b string) bool {
	if g.has(a, b) {
		return false
	}
	g.add(a, b)
	if a != b {
		g.add(b, a)
	}
	g.count++
	return true
}

func (g *EntanglementGraph) add(from, to string) {
	set, ok := g.edges[from]
	if !ok {
		set = make(map[string]struct{})
		g.edges[from] = set
	}
	set[to] = struct{}{}
	g.adj[from] = append(g.adj[from], to)
}

func (g *EntanglementGraph) has(a, b string) bool {
	_, ok := g.edges[a][b]
	return ok
}

// neighbors returns the internal slice; callers must not modify it.
func (g *EntanglementGraph) neighbors(word string) []string {
	return g.adj[word]
}

// EdgeCount returns the number of undirected edges.
func (g *EntanglementGraph) EdgeCount() int {
	return g.count
}
