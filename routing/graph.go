// Package routing builds multi-hop routes across a network model's
// capacity-filtered routing view, including routes forced through a set of
// target hops (used by the jamming attacker to reach a victim channel).
package routing

import "sort"

// Graph is a mutable directed adjacency list used for one Router's
// lifetime. It owns its own copy of the edges so RemoveHop never mutates
// the network model it was built from.
type Graph struct {
	adj map[string]map[string]bool
}

// NewGraph copies adj (node -> neighbor list) into a fresh Graph.
func NewGraph(adj map[string][]string) *Graph {
	g := &Graph{adj: make(map[string]map[string]bool, len(adj))}
	for u, neighbors := range adj {
		set := make(map[string]bool, len(neighbors))
		for _, d := range neighbors {
			set[d] = true
		}
		g.adj[u] = set
	}
	return g
}

// HasEdge reports whether a directed edge u -> d exists.
func (g *Graph) HasEdge(u, d string) bool {
	return g.adj[u][d]
}

// HasNode reports whether u appears anywhere in the graph, as a source or
// as some edge's destination.
func (g *Graph) HasNode(u string) bool {
	if _, ok := g.adj[u]; ok {
		return true
	}
	for _, neighbors := range g.adj {
		if neighbors[u] {
			return true
		}
	}
	return false
}

// Neighbors returns u's out-neighbors, sorted for determinism.
func (g *Graph) Neighbors(u string) []string {
	set := g.adj[u]
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// RemoveHop deletes the directed edge u -> d, if present.
func (g *Graph) RemoveHop(u, d string) {
	if set, ok := g.adj[u]; ok {
		delete(set, d)
	}
}

// ShortestPath runs BFS from src to dst and returns the shortest path
// (inclusive of both endpoints), or (nil, false) if unreachable.
func (g *Graph) ShortestPath(src, dst string) ([]string, bool) {
	if src == dst {
		return []string{src}, true
	}
	if !g.HasNode(src) || !g.HasNode(dst) {
		return nil, false
	}

	prev := map[string]string{src: ""}
	queue := []string{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, d := range g.Neighbors(u) {
			if _, seen := prev[d]; seen {
				continue
			}
			prev[d] = u
			if d == dst {
				return reconstruct(prev, src, dst), true
			}
			queue = append(queue, d)
		}
	}
	return nil, false
}

// ShortestPathsFrom runs a single BFS from src and returns the shortest
// path to every node reachable from src, keyed by destination.
func (g *Graph) ShortestPathsFrom(src string) map[string][]string {
	paths := map[string][]string{src: {src}}
	queue := []string{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, d := range g.Neighbors(u) {
			if _, seen := paths[d]; seen {
				continue
			}
			path := make([]string, len(paths[u])+1)
			copy(path, paths[u])
			path[len(path)-1] = d
			paths[d] = path
			queue = append(queue, d)
		}
	}
	return paths
}

// ShortestPathsTo is ShortestPathsFrom on the reverse graph, returning the
// shortest path from every node that can reach dst, keyed by that origin.
func (g *Graph) ShortestPathsTo(dst string) map[string][]string {
	reverse := make(map[string][]string)
	for u, neighbors := range g.adj {
		for d := range neighbors {
			reverse[d] = append(reverse[d], u)
		}
	}
	rg := NewGraph(reverse)
	fromDst := rg.ShortestPathsFrom(dst)

	paths := make(map[string][]string, len(fromDst))
	for origin, reversedPath := range fromDst {
		path := make([]string, len(reversedPath))
		for i, node := range reversedPath {
			path[len(path)-1-i] = node
		}
		paths[origin] = path
	}
	return paths
}

// AllShortestPaths returns every distinct minimal-length path from src to
// dst (inclusive of both endpoints), mirroring the reference
// implementation's use of networkx's all_shortest_paths for honest
// routing: when no target hops force the route, every sender/receiver path
// of the shortest length is a candidate, not just one of them. Returns nil
// if dst is unreachable from src.
func (g *Graph) AllShortestPaths(src, dst string) [][]string {
	if src == dst {
		return [][]string{{src}}
	}
	if !g.HasNode(src) || !g.HasNode(dst) {
		return nil
	}

	dist := map[string]int{src: 0}
	queue := []string{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, d := range g.Neighbors(u) {
			if _, seen := dist[d]; seen {
				continue
			}
			dist[d] = dist[u] + 1
			queue = append(queue, d)
		}
	}
	if _, ok := dist[dst]; !ok {
		return nil
	}

	var out [][]string
	var walk func(u string, path []string)
	walk = func(u string, path []string) {
		if u == dst {
			route := make([]string, len(path))
			copy(route, path)
			out = append(out, route)
			return
		}
		for _, d := range g.Neighbors(u) {
			if nd, ok := dist[d]; ok && nd == dist[u]+1 {
				walk(d, append(path, d))
			}
		}
	}
	walk(src, []string{src})
	return out
}

func reconstruct(prev map[string]string, src, dst string) []string {
	var rev []string
	for n := dst; n != src; n = prev[n] {
		rev = append(rev, n)
	}
	rev = append(rev, src)
	path := make([]string, len(rev))
	for i, n := range rev {
		path[len(path)-1-i] = n
	}
	return path
}
