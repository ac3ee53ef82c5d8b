package film

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/teranos/dolly"
	"github.com/teranos/dolly/trip"
)

// Frame is one captured tracking shot.
type Frame struct {
	Index     int
	Label     string
	At        time.Duration // Virtual time since the operator started
	Phase     dolly.Phase
	Current   int
	Next      int
	Progress  float32 // Transition progress, 1 when idle
	Primary   float32 // Primary layer opacity
	Secondary float32 // Secondary layer opacity
	Motion    float64 // Fraction of pixels changed since the previous frame
	Path      string  // Empty unless frames are written to disk
}

// Operator drives a director on a virtual clock and films every frame.
//
// Example usage:
//
//	op := film.NewOperator(director, rig, 30).WithOutputDir("frames").Start()
//	op.Walk(5)
//	op.Click(400, 300)
//	for _, f := range op.Reel() {
//	    fmt.Println(f.Index, f.Phase, f.Motion)
//	}
type Operator struct {
	director *dolly.Director
	rig      *Rig
	interval time.Duration
	start    time.Time
	clock    time.Time
	frames   []Frame
	last     *image.RGBA
	filmDir  string
	logger   *log.Logger
	trips    *trip.Handler
	halted   bool
}

// MinFrameInterval is the shortest frame interval. Higher frame rates are
// filmed at 1000 fps.
const MinFrameInterval = time.Millisecond

// FrameInterval returns the time between frames at fps frames per second.
// A non-positive fps means 30.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 30
	}
	return max(time.Second/time.Duration(fps), MinFrameInterval)
}

// NewOperator films director through rig at fps frames per second. The
// director must have been built with rig.Surfaces().
func NewOperator(director *dolly.Director, rig *Rig, fps int) *Operator {
	start := time.Unix(0, 0).UTC()
	return &Operator{
		director: director,
		rig:      rig,
		interval: FrameInterval(fps),
		start:    start,
		clock:    start,
		frames:   make([]Frame, 0),
		logger:   log.New(os.Stderr).WithPrefix("film"),
		trips:    trip.NewHandler("operator", nil),
	}
}

// WithOutputDir writes every captured frame as a PNG under dir.
func (op *Operator) WithOutputDir(dir string) *Operator {
	op.filmDir = dir
	return op
}

// WithLogger sets the operator's logger.
func (op *Operator) WithLogger(logger *log.Logger) *Operator {
	op.logger = logger
	return op
}

// Start shows the first pose and films it.
func (op *Operator) Start() *Operator {
	if op.filmDir != "" {
		if err := os.MkdirAll(op.filmDir, 0755); err != nil {
			op.trips.Record(trip.NewFall(trip.Visual, "failed to create film directory",
				trip.Context{"dir": op.filmDir, "error": err.Error()}))
			op.filmDir = ""
		}
	}
	op.director.Start()
	return op.CaptureTrackingShot("start")
}

// Hop asks the director to navigate and films the transition until the rig
// settles on the destination. A dropped or empty request films one frame.
// Once the operator has stopped, Hop films nothing.
func (op *Operator) Hop(intent *dolly.Intent) *Operator {
	if op.Stopped() {
		return op
	}
	if !op.director.Navigate(intent, op.clock) {
		return op.CaptureTrackingShot("stay")
	}
	op.CaptureTrackingShot("depart")

	// one frame past the nominal duration covers rounding in the interval
	limit := int(op.director.Config().Transition.Duration()/op.interval) + 2
	for i := 0; i < limit && op.director.Phase() != dolly.Idle; i++ {
		op.clock = op.clock.Add(op.interval)
		if op.director.Tick(op.clock) {
			return op.CaptureTrackingShot("arrive")
		}
		op.CaptureTrackingShot("dolly")
	}
	return op
}

// Click hops towards the pixel (x, y) of the current frame.
func (op *Operator) Click(x, y float32) *Operator {
	return op.Hop(dolly.NewIntent(x, y, op.rig.View()))
}

// Walk performs n hops without a directional intent, or fewer if the
// operator stops on the way.
func (op *Operator) Walk(n int) *Operator {
	for i := 0; i < n && !op.Stopped(); i++ {
		op.Hop(nil)
	}
	return op
}

// Stopped reports whether the director's or the operator's trip policy has
// ended the walk: a fall was recorded, or more stumbles than allowed.
func (op *Operator) Stopped() bool {
	if op.trips.ShouldContinue() && op.director.Trips().ShouldContinue() {
		return false
	}
	if !op.halted {
		op.halted = true
		op.logger.Warn("walk stopped",
			"director", op.director.Trips().Summary(),
			"operator", op.trips.Summary())
	}
	return true
}

// Hold advances the clock by d without navigating, filming each frame.
func (op *Operator) Hold(d time.Duration) *Operator {
	for end := op.clock.Add(d); op.clock.Before(end); {
		op.clock = op.clock.Add(op.interval)
		op.director.Tick(op.clock)
		op.CaptureTrackingShot("hold")
	}
	return op
}

// CaptureTrackingShot renders the rig and records the frame.
func (op *Operator) CaptureTrackingShot(label string) *Operator {
	img := op.rig.Render()

	frame := Frame{
		Index:     len(op.frames),
		Label:     label,
		At:        op.clock.Sub(op.start),
		Phase:     op.director.Phase(),
		Current:   op.director.Session().Current(),
		Next:      op.director.Session().Next(),
		Progress:  1,
		Primary:   op.rig.Primary().Opacity(),
		Secondary: op.rig.Secondary().Opacity(),
	}
	if tr := op.director.Active(); tr != nil {
		frame.Progress = tr.Progress(op.clock)
	}
	if op.last != nil {
		frame.Motion = Difference(op.last, img)
	}
	op.last = img

	if op.filmDir != "" {
		path := filepath.Join(op.filmDir, fmt.Sprintf("frame_%04d_%s.png", frame.Index, label))
		if err := writePNG(path, img); err != nil {
			op.trips.Record(trip.NewStumble(trip.Visual, "failed to capture frame",
				trip.Context{"path": path, "error": err.Error()}))
			op.logger.Warn("failed to capture frame", "path", path, "err", err)
		} else {
			frame.Path = path
		}
	}

	op.frames = append(op.frames, frame)
	return op
}

// Reel returns every frame filmed so far.
func (op *Operator) Reel() []Frame {
	return op.frames
}

// Now returns the operator's virtual clock.
func (op *Operator) Now() time.Time {
	return op.clock
}

// Trips returns the operator's diagnostics.
func (op *Operator) Trips() *trip.Handler {
	return op.trips
}
