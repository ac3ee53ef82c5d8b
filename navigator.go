package dolly

import (
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/teranos/dolly/trip"
)

// Mode selects how the navigator picks among candidate neighbours.
type Mode string

const (
	// ModeRandom picks uniformly at random.
	ModeRandom Mode = "random"
	// ModeDirectional picks the neighbour best aligned with the click ray.
	ModeDirectional Mode = "directional"
)

// Navigator chooses the next pose from the graph, the session's visited set,
// and an optional directional intent.
type Navigator struct {
	store  *PoseStore
	graph  *PoseGraph
	cfg    NavigationConfig
	rng    *rand.Rand
	logger *log.Logger
	trips  *trip.Handler
}

// NewNavigator creates a navigator over a built graph.
func NewNavigator(store *PoseStore, graph *PoseGraph, cfg NavigationConfig) *Navigator {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Navigator{
		store:  store,
		graph:  graph,
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(seed, seed>>1|1)),
		logger: discardLogger(),
		trips:  trip.NewHandler("navigator", nil),
	}
}

// SelectNext picks the next pose for the session and records it as the
// session's next index. It returns false, leaving the session untouched, when
// the current pose has no neighbours.
//
// The current pose is marked visited before candidates are filtered. When
// every neighbour has been visited the whole visited set is cleared and all
// neighbours become candidates again.
func (n *Navigator) SelectNext(s *Session, intent *Intent) (int, bool) {
	neighbors := n.graph.Neighbors(s.current)
	if len(neighbors) == 0 {
		n.trips.Record(trip.NewStumble(trip.Navigation, "current pose has no neighbours",
			trip.Context{"current": s.current}))
		n.logger.Debug("navigation skipped, no neighbours", "current", s.current)
		return noIndex, false
	}

	s.markVisited(s.current)

	candidates := make([]int, 0, len(neighbors))
	for _, nb := range neighbors {
		if !s.Visited(nb) {
			candidates = append(candidates, nb)
		}
	}
	if len(candidates) == 0 {
		n.logger.Debug("exploration exhausted, resetting visited", "current", s.current)
		s.resetVisited()
		candidates = neighbors
	}

	next := n.pick(s.current, candidates, intent)
	s.next = next
	return next, true
}

func (n *Navigator) pick(current int, candidates []int, intent *Intent) int {
	if n.cfg.Mode == ModeDirectional {
		if next, ok := n.pickDirectional(current, candidates, intent); ok {
			return next
		}
	}
	return candidates[n.rng.IntN(len(candidates))]
}

// pickDirectional scores each candidate by how far its offset from the current
// pose strays from the intent ray, with distance as the secondary term.
func (n *Navigator) pickDirectional(current int, candidates []int, intent *Intent) (int, bool) {
	if intent == nil {
		n.degenerate("directional mode without an intent point", trip.Context{"current": current})
		return noIndex, false
	}
	ray, ok := intent.Ray()
	if !ok {
		n.degenerate("intent ray cannot be formed", trip.Context{
			"current": current, "x": intent.Point.X, "y": intent.Point.Y,
			"width": intent.View.Width, "height": intent.View.Height,
		})
		return noIndex, false
	}

	from, _ := n.store.At(current)
	best, bestScore := noIndex, float32(0)
	for _, idx := range candidates {
		to, _ := n.store.At(idx)
		offset := to.Position.Sub(from.Position)
		angle := angleBetween(ray, offset)
		score := n.cfg.AngleWeight*angle + n.cfg.DistanceWeight*offset.Length()
		if best == noIndex || score < bestScore {
			best, bestScore = idx, score
		}
	}
	return best, true
}

func (n *Navigator) degenerate(msg string, ctx trip.Context) {
	n.trips.Record(trip.NewStumble(trip.Intent, msg, ctx))
	n.logger.Debug("falling back to random pick", "reason", msg)
}
