package dolly

import "slices"

// noIndex marks an unset pose index.
const noIndex = -1

// Session is the mutable state of one walk through the pose graph.
//
// The navigator writes next and visited; the controller owns current and
// transitioning. Both run on the render loop's goroutine, and the
// transitioning guard keeps them from ever writing at the same time.
type Session struct {
	current       int
	next          int
	visited       map[int]struct{}
	transitioning bool
}

// NewSession starts a walk at the given pose index.
func NewSession(start int) *Session {
	return &Session{
		current: start,
		next:    noIndex,
		visited: make(map[int]struct{}),
	}
}

// Current returns the index of the pose on display.
func (s *Session) Current() int { return s.current }

// Next returns the index chosen by the last navigation, or -1.
func (s *Session) Next() int { return s.next }

// Transitioning reports whether a transition is in flight.
func (s *Session) Transitioning() bool { return s.transitioning }

// Visited reports whether i was reached during the current exploration streak.
func (s *Session) Visited(i int) bool {
	_, ok := s.visited[i]
	return ok
}

// VisitedIndices returns the visited set in ascending order.
func (s *Session) VisitedIndices() []int {
	out := make([]int, 0, len(s.visited))
	for i := range s.visited {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

func (s *Session) markVisited(i int) {
	s.visited[i] = struct{}{}
}

func (s *Session) resetVisited() {
	clear(s.visited)
}
