package routing

import "strings"

// TargetHop is one directed hop (u -> d) a route must pass through, e.g.
// the victim hop in a jamming attack.
type TargetHop [2]string

// Router finds routes from sender to receiver through a capacity-filtered
// routing graph, optionally forced through a subset of target hops. It
// mirrors the reference implementation's Router: combinations of target
// hops are tried from the largest subset down to a single hop, and every
// permutation of each subset is tried in turn, the first suitable route
// for each permutation being kept.
type Router struct {
	graph    *Graph
	sender   string
	receiver string

	maxRouteLength        int
	maxTargetHopsPerRoute int
	allowRepeatedHops     bool

	targetHops []TargetHop

	pathsFromSender map[string][]string
	pathsToReceiver map[string][]string
}

// NewRouter builds a Router over a copy of adj. maxRouteLength bounds the
// number of nodes (inclusive of sender/receiver) any returned route may
// contain.
func NewRouter(adj map[string][]string, sender, receiver string, maxRouteLength int) *Router {
	r := &Router{
		graph:             NewGraph(adj),
		sender:            sender,
		receiver:          receiver,
		maxRouteLength:    maxRouteLength,
		allowRepeatedHops: true,
	}
	r.maxTargetHopsPerRoute = max(1, maxRouteLength-2)
	r.recalculatePaths()
	return r
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RemoveHop deletes a directed edge from the underlying graph and
// recomputes the cached shortest-path tables, matching the reference
// implementation's remove_hop (used by the jamming simulator once a
// target hop is confirmed jammed, so routes stop being offered through it).
func (r *Router) RemoveHop(u, d string) {
	r.graph.RemoveHop(u, d)
	r.recalculatePaths()
}

// SetMaxTargetHopsPerRoute overrides the default (derived from
// maxRouteLength) cap on how many target hops a single route must cover.
func (r *Router) SetMaxTargetHopsPerRoute(n int) {
	if n > 0 {
		r.maxTargetHopsPerRoute = n
	}
}

// SetTargetHops configures the hops returned routes are forced through
// (each route covers at least one of them, in some order) and lowers the
// per-route cap on covered target hops to len(targetHops) if it was
// larger. allowRepeatedHops controls whether a route may traverse the
// same directed hop twice.
func (r *Router) SetTargetHops(targetHops []TargetHop, allowRepeatedHops bool) {
	r.targetHops = targetHops
	r.allowRepeatedHops = allowRepeatedHops
	if len(targetHops) > 0 {
		r.maxTargetHopsPerRoute = min(r.maxTargetHopsPerRoute, len(targetHops))
	}
	r.recalculatePaths()
}

func (r *Router) recalculatePaths() {
	r.pathsFromSender = r.graph.ShortestPathsFrom(r.sender)
	r.pathsToReceiver = r.graph.ShortestPathsTo(r.receiver)
}

// Routes returns every distinct suitable route from sender to receiver,
// forced through some combination (largest first) and permutation of the
// configured target hops. With no target hops configured, it returns every
// distinct shortest route (mirroring the reference implementation's use of
// all_shortest_paths for honest payments), so a caller retrying on a
// route-level failure has genuine alternatives to fall back to.
func (r *Router) Routes() [][]string {
	if len(r.targetHops) == 0 {
		var out [][]string
		for _, route := range r.graph.AllShortestPaths(r.sender, r.receiver) {
			if r.isSuitable(route) {
				out = append(out, route)
			}
		}
		return out
	}

	seen := make(map[string]bool)
	var out [][]string
	for n := r.maxTargetHopsPerRoute; n >= 1; n-- {
		for _, combo := range combinations(r.targetHops, n) {
			for _, perm := range permutations(combo) {
				route := r.shortestRouteViaHops(perm)
				if route == nil {
					continue
				}
				key := strings.Join(route, ">")
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, route)
			}
		}
	}
	return out
}

func (r *Router) isSuitable(route []string) bool {
	if len(route) > r.maxRouteLength {
		return false
	}
	if !r.allowRepeatedHops && hasRepeatedHop(route) {
		return false
	}
	return true
}

// shortestRouteViaHops stitches together: sender -> hops[0].U (shortest
// path), each hops[i].U -> hops[i].D edge, shortest paths between
// consecutive hops, and hops[last].D -> receiver (shortest path).
func (r *Router) shortestRouteViaHops(hops []TargetHop) []string {
	var route []string
	var prevD string
	hasPrev := false

	for _, hop := range hops {
		u, d := hop[0], hop[1]
		if !r.graph.HasEdge(u, d) {
			return nil
		}
		if !hasPrev {
			path, ok := r.pathsFromSender[u]
			if !ok {
				return nil
			}
			route = append(route, path...)
		} else if prevD != u {
			path, ok := r.graph.ShortestPath(prevD, u)
			if !ok {
				return nil
			}
			route = append(route, path[1:]...)
		}
		route = append(route, d)
		if !r.isSuitable(route) {
			return nil
		}
		prevD = d
		hasPrev = true
	}

	tail, ok := r.pathsToReceiver[prevD]
	if !ok {
		return nil
	}
	route = append(route, tail[1:]...)
	if !r.isSuitable(route) {
		return nil
	}
	return route
}

func hasRepeatedHop(route []string) bool {
	seen := make(map[string]bool, len(route))
	for i := 0; i+1 < len(route); i++ {
		key := route[i] + ">" + route[i+1]
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}

// combinations returns every n-element subset of items, preserving
// relative order, mirroring itertools.combinations.
func combinations[T any](items []T, n int) [][]T {
	if n <= 0 || n > len(items) {
		return nil
	}
	var out [][]T
	var pick func(start int, chosen []T)
	pick = func(start int, chosen []T) {
		if len(chosen) == n {
			combo := make([]T, n)
			copy(combo, chosen)
			out = append(out, combo)
			return
		}
		for i := start; i < len(items); i++ {
			pick(i+1, append(chosen, items[i]))
		}
	}
	pick(0, nil)
	return out
}

// permutations returns every ordering of items, mirroring
// itertools.permutations.
func permutations[T any](items []T) [][]T {
	if len(items) == 0 {
		return [][]T{{}}
	}
	var out [][]T
	for i := range items {
		rest := make([]T, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		for _, p := range permutations(rest) {
			perm := append([]T{items[i]}, p...)
			out = append(out, perm)
		}
	}
	return out
}
