// Package dolly is a pose-graph navigation and transition engine for walking
// through a captured 3D space one photograph at a time.
//
// A dolly runs on a track: the track here is a graph built over the capture's
// camera poses, and the dolly carries the viewer's camera smoothly from one
// pose to the next while the photographs cross-fade.
//
// Basic usage:
//
//	store, err := dolly.LoadPoseStore("all_cameras.json", cfg.Manifest)
//	if err != nil {
//		return err
//	}
//
//	director, err := dolly.NewDirector(store, rig, cfg)
//	if err != nil {
//		return err
//	}
//	director.WithLogger(logger).Start()
//
//	// on click
//	director.Navigate(dolly.NewIntent(x, y, view), time.Now())
//
//	// once per frame, before drawing
//	director.Tick(time.Now())
//
// The director is driven from a single render loop and is not safe for
// concurrent use.
package dolly

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/teranos/dolly/trip"
)

// Director wires the pose store, graph, navigator and transition controller
// into one walk.
type Director struct {
	cfg        Config
	store      *PoseStore
	graph      *PoseGraph
	session    *Session
	navigator  *Navigator
	controller *Controller
	logger     *log.Logger
	trips      *trip.Handler

	hops    []HopRecord
	started bool
}

// HopRecord is one committed or dropped navigation request.
type HopRecord struct {
	Timestamp time.Time
	Type      string // "hop", "arrive", "dropped", "noop"
	From      int
	To        int
	Image     string
}

// NewDirector builds the pose graph and prepares a session at pose 0.
func NewDirector(store *PoseStore, rig Rig, cfg Config) (*Director, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil || store.Len() == 0 {
		return nil, trip.NewFall(trip.Ingestion, "pose store is empty", nil)
	}
	if rig.Camera == nil || rig.Primary == nil || rig.Secondary == nil {
		return nil, trip.NewFall(trip.Config, "rig needs a camera and two layers", nil)
	}

	graph := BuildGraph(store.poses, cfg.GraphOptions())
	session := NewSession(0)
	trips := trip.NewHandler("director", nil)

	d := &Director{
		cfg:        cfg,
		store:      store,
		graph:      graph,
		session:    session,
		navigator:  NewNavigator(store, graph, cfg.Navigation),
		controller: NewController(store, session, rig, cfg.Transition.Duration()),
		trips:      trips,
		hops:       make([]HopRecord, 0),
	}
	d.navigator.trips = trips
	d.controller.trips = trips
	d.controller.OnComplete(d.arrived)
	d.WithLogger(discardLogger())

	return d, nil
}

// WithLogger sets the logger used by the director and its components.
func (d *Director) WithLogger(logger *log.Logger) *Director {
	d.logger = logger
	d.navigator.logger = logger
	d.controller.logger = logger
	return d
}

// Start displays pose 0. Calling it again is a no-op.
func (d *Director) Start() *Director {
	if d.started {
		return d
	}
	d.started = true
	d.controller.Show(d.session.current)

	edges := len(d.graph.Edges())
	d.logger.Info("walk started",
		"poses", d.store.Len(),
		"edges", edges,
		"mode", d.cfg.Navigation.Mode,
		"image", d.currentImage())
	return d
}

// Navigate handles one navigate trigger. intent may be nil. It returns true
// when a transition was started; dropped and empty requests return false and
// leave the session unchanged.
func (d *Director) Navigate(intent *Intent, now time.Time) bool {
	if !d.started {
		d.Start()
	}
	if d.session.transitioning {
		d.logger.Debug("navigate ignored while transitioning", "current", d.session.current, "next", d.session.next)
		d.record("dropped", d.session.current, d.session.next, now)
		return false
	}

	from := d.session.current
	next, ok := d.navigator.SelectNext(d.session, intent)
	if !ok {
		d.record("noop", from, noIndex, now)
		return false
	}
	if !d.controller.Begin(now) {
		return false
	}

	to, _ := d.store.At(next)
	d.logger.Info("hop",
		"from", from,
		"from_image", d.imageAt(from),
		"to", next,
		"to_image", to.ImageRef,
		"position", fmt.Sprintf("(%.3f, %.3f, %.3f)", to.Position.X, to.Position.Y, to.Position.Z))
	d.record("hop", from, next, now)
	return true
}

// Tick advances the in-flight transition, if any. Call it once per frame
// before rendering. It returns true on the frame a transition completes.
func (d *Director) Tick(now time.Time) bool {
	return d.controller.Tick(now)
}

func (d *Director) arrived(from, to int, at time.Time) {
	d.logger.Debug("arrived", "from", from, "to", to, "image", d.imageAt(to))
	d.record("arrive", from, to, at)
}

// record appends to the history, stamped with the caller's clock so virtual
// clocks replay identically.
func (d *Director) record(kind string, from, to int, at time.Time) {
	d.hops = append(d.hops, HopRecord{
		Timestamp: at,
		Type:      kind,
		From:      from,
		To:        to,
		Image:     d.imageAt(to),
	})
}

func (d *Director) imageAt(i int) string {
	pose, ok := d.store.At(i)
	if !ok {
		return ""
	}
	return pose.ImageRef
}

func (d *Director) currentImage() string {
	return d.imageAt(d.session.current)
}

// Session returns the live session. Callers must treat it as read-only.
func (d *Director) Session() *Session { return d.session }

// Graph returns the pose graph.
func (d *Director) Graph() *PoseGraph { return d.graph }

// Store returns the pose store.
func (d *Director) Store() *PoseStore { return d.store }

// Phase returns the transition controller's state.
func (d *Director) Phase() Phase { return d.controller.Phase() }

// Active returns the in-flight transition, or nil.
func (d *Director) Active() *Transition { return d.controller.Active() }

// Hops returns the navigation history.
func (d *Director) Hops() []HopRecord { return d.hops }

// Trips returns the director's diagnostics.
func (d *Director) Trips() *trip.Handler { return d.trips }

// Config returns the configuration the director was built with.
func (d *Director) Config() Config { return d.cfg }
