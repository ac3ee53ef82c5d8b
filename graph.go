package dolly

import (
	"fmt"
	"slices"
	"strings"

	"cogentcore.org/core/math32"
)

// angleScale rescales degrees of orientation difference into a magnitude
// comparable with typical distances between captures.
const angleScale = 45

// Weights balance the two terms of the neighbour score.
type Weights struct {
	Distance float32
	Angle    float32
}

// GraphOptions configure BuildGraph.
type GraphOptions struct {
	K          int
	Weights    Weights
	Symmetrize bool
}

// DefaultGraphOptions returns k=3, weights 0.7/0.3, symmetrized.
func DefaultGraphOptions() GraphOptions {
	return DefaultConfig().GraphOptions()
}

// PoseGraph maps each pose index to its neighbour indices. It never contains
// self-loops and is read-only once built.
type PoseGraph struct {
	adj [][]int
}

// BuildGraph connects every pose to its k lowest-scoring peers and, when
// opts.Symmetrize is set, adds the missing reverse edges.
//
// Cost is O(n² log n) over the pose count, which is small for a captured room.
func BuildGraph(poses []Pose, opts GraphOptions) *PoseGraph {
	n := len(poses)
	g := &PoseGraph{adj: make([][]int, n)}
	if opts.K < 1 {
		return g
	}

	type candidate struct {
		index int
		score float32
	}
	candidates := make([]candidate, 0, n)

	for i := range poses {
		candidates = candidates[:0]
		for j := range poses {
			if j == i {
				continue
			}
			candidates = append(candidates, candidate{index: j, score: Score(poses[i], poses[j], opts.Weights)})
		}
		slices.SortStableFunc(candidates, func(a, b candidate) int {
			switch {
			case a.score < b.score:
				return -1
			case a.score > b.score:
				return 1
			default:
				return a.index - b.index
			}
		})

		k := min(opts.K, len(candidates))
		g.adj[i] = make([]int, k)
		for c := 0; c < k; c++ {
			g.adj[i][c] = candidates[c].index
		}
	}

	if opts.Symmetrize {
		g.symmetrize()
	}
	return g
}

// symmetrize inserts j→i for every i→j that lacks it. Edges are only added.
func (g *PoseGraph) symmetrize() {
	directed := make([][]int, len(g.adj))
	for i, nbrs := range g.adj {
		directed[i] = slices.Clone(nbrs)
	}
	for i, nbrs := range directed {
		for _, j := range nbrs {
			if !slices.Contains(g.adj[j], i) {
				g.adj[j] = append(g.adj[j], i)
			}
		}
	}
}

// Score is the neighbour cost between two poses; lower is closer.
func Score(a, b Pose, w Weights) float32 {
	dist := a.Position.DistanceTo(b.Position)
	return w.Distance*dist + w.Angle*(AngleDegrees(a, b)/angleScale)
}

// AngleDegrees is the angle between the two poses' forward directions, in [0, 180].
func AngleDegrees(a, b Pose) float32 {
	return math32.RadToDeg(angleBetween(a.Forward(), b.Forward()))
}

// angleBetween returns the unsigned angle in radians between two vectors.
// A zero-length vector has no direction; it is treated as perpendicular.
func angleBetween(a, b math32.Vector3) float32 {
	denom := a.Length() * b.Length()
	if denom == 0 {
		return math32.Pi / 2
	}
	return math32.Acos(math32.Clamp(a.Dot(b)/denom, -1, 1))
}

// Len returns the number of nodes.
func (g *PoseGraph) Len() int {
	return len(g.adj)
}

// Neighbors returns a copy of i's neighbour list, or nil if i is unknown.
func (g *PoseGraph) Neighbors(i int) []int {
	if i < 0 || i >= len(g.adj) {
		return nil
	}
	return slices.Clone(g.adj[i])
}

// HasEdge reports whether j is a neighbour of i.
func (g *PoseGraph) HasEdge(i, j int) bool {
	if i < 0 || i >= len(g.adj) {
		return false
	}
	return slices.Contains(g.adj[i], j)
}

// Degree returns the number of neighbours of i.
func (g *PoseGraph) Degree(i int) int {
	if i < 0 || i >= len(g.adj) {
		return 0
	}
	return len(g.adj[i])
}

// Edges returns every directed edge as an [i, j] pair in node order.
func (g *PoseGraph) Edges() [][2]int {
	var edges [][2]int
	for i, nbrs := range g.adj {
		for _, j := range nbrs {
			edges = append(edges, [2]int{i, j})
		}
	}
	return edges
}

// String renders the adjacency list one node per line, e.g. "0: 1 2".
func (g *PoseGraph) String() string {
	var b strings.Builder
	for i, nbrs := range g.adj {
		fmt.Fprintf(&b, "%d:", i)
		for _, j := range nbrs {
			fmt.Fprintf(&b, " %d", j)
		}
		b.WriteString("\n")
	}
	return b.String()
}
