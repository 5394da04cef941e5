package routing

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

// requireRoutesEqual mirrors require.Equal but dumps both sides with spew
// on mismatch, since a [][]string diff from testify's default formatter
// is hard to read once routes get more than a couple of hops long.
func requireRoutesEqual(t *testing.T, expected, got [][]string) {
	t.Helper()
	if !require.ObjectsAreEqual(expected, got) {
		t.Fatalf("route mismatch\nexpected:\n%s\ngot:\n%s", spew.Sdump(expected), spew.Sdump(got))
	}
}

// TestRouterWheelTopology is scenario S4 (router wheel): a wheel topology
// with Hub at the center, forced through target hops (Alice,Hub),
// (Hub,Bob), (Charlie,Hub), (Hub,Dave), max route length 8, repeated hops
// disallowed. The router must yield exactly two routes: the long detour
// through Bob and Charlie, and the short direct route through Hub alone.
func TestRouterWheelTopology(t *testing.T) {
	adj := map[string][]string{
		"JammerSender":   {"Alice"},
		"Alice":          {"Hub"},
		"Hub":            {"Bob", "Dave"},
		"Bob":            {"Charlie"},
		"Charlie":        {"Hub"},
		"Dave":           {"JammerReceiver"},
		"JammerReceiver": {},
	}

	r := NewRouter(adj, "JammerSender", "JammerReceiver", 8)
	r.SetTargetHops([]TargetHop{
		{"Alice", "Hub"},
		{"Hub", "Bob"},
		{"Charlie", "Hub"},
		{"Hub", "Dave"},
	}, false)

	routes := r.Routes()

	requireRoutesEqual(t, [][]string{
		{"JammerSender", "Alice", "Hub", "Bob", "Charlie", "Hub", "Dave", "JammerReceiver"},
		{"JammerSender", "Alice", "Hub", "Dave", "JammerReceiver"},
	}, routes)
}

func TestShortestPathBasic(t *testing.T) {
	g := NewGraph(map[string][]string{
		"A": {"B"},
		"B": {"C"},
	})
	path, ok := g.ShortestPath("A", "C")
	require.True(t, ok)
	require.Equal(t, []string{"A", "B", "C"}, path)

	_, ok = g.ShortestPath("C", "A")
	require.False(t, ok)
}

func TestRemoveHopDisconnects(t *testing.T) {
	g := NewGraph(map[string][]string{
		"A": {"B"},
		"B": {"C"},
	})
	g.RemoveHop("A", "B")
	_, ok := g.ShortestPath("A", "C")
	require.False(t, ok)
}

// TestRouterPlainShortestPath exercises the no-target-hops fallback: A-B-D
// and A-C-D are both minimal-length paths, so the honest case must surface
// both as candidates rather than picking just one.
func TestRouterPlainShortestPath(t *testing.T) {
	adj := map[string][]string{
		"A": {"B", "C"},
		"B": {"D"},
		"C": {"D"},
	}
	r := NewRouter(adj, "A", "D", 8)
	routes := r.Routes()
	requireRoutesEqual(t, [][]string{
		{"A", "B", "D"},
		{"A", "C", "D"},
	}, routes)
}

// TestRouterPlainShortestPathSingleCandidate covers the case where only
// one shortest path exists.
func TestRouterPlainShortestPathSingleCandidate(t *testing.T) {
	adj := map[string][]string{
		"A": {"B"},
		"B": {"C"},
	}
	r := NewRouter(adj, "A", "C", 8)
	routes := r.Routes()
	requireRoutesEqual(t, [][]string{{"A", "B", "C"}}, routes)
}

func TestCombinationsAndPermutations(t *testing.T) {
	items := []int{1, 2, 3}
	require.Len(t, combinations(items, 2), 3)
	require.Len(t, permutations([]int{1, 2}), 2)
	require.Len(t, permutations([]int{}), 1)
}
