package dolly

import (
	"time"

	"cogentcore.org/core/math32"
	"github.com/charmbracelet/log"
	"github.com/teranos/dolly/trip"
)

// Camera is the externally owned camera the engine moves. The render loop
// reads it when drawing the frame.
type Camera interface {
	SetPose(position math32.Vector3, orientation math32.Quat)
}

// Layer is one of the two stacked image surfaces used for the cross-fade.
type Layer interface {
	SetImage(ref string)
	SetOpacity(alpha float32)
}

// Rig groups the external surfaces the engine writes to.
type Rig struct {
	Camera    Camera
	Primary   Layer
	Secondary Layer
}

// Phase is the transition controller's state.
type Phase int

const (
	// Idle: nothing in flight, navigation accepted.
	Idle Phase = iota
	// Armed: next index latched; lasts only inside Begin.
	Armed
	// Animating: the camera is easing towards the destination pose.
	Animating
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Animating:
		return "animating"
	default:
		return "unknown"
	}
}

// Transition is the task-local state of one hop. Its pose at any instant
// depends only on the elapsed time.
type Transition struct {
	From, To int
	Start    time.Time
	Duration time.Duration
	StartPos math32.Vector3
	EndPos   math32.Vector3
	StartRot math32.Quat
	EndRot   math32.Quat
	EndImage string
}

// Progress returns t = (now - start) / duration clamped to [0, 1].
func (tr *Transition) Progress(now time.Time) float32 {
	if tr.Duration <= 0 {
		return 1
	}
	t := float32(now.Sub(tr.Start)) / float32(tr.Duration)
	return math32.Clamp(t, 0, 1)
}

// PoseAt interpolates position linearly and orientation spherically at t.
// At t = 1 it returns the end pose exactly.
func (tr *Transition) PoseAt(t float32) (math32.Vector3, math32.Quat) {
	if t >= 1 {
		return tr.EndPos, tr.EndRot
	}
	if t <= 0 {
		return tr.StartPos, tr.StartRot
	}
	pos := tr.StartPos.Lerp(tr.EndPos, t)
	rot := tr.StartRot
	rot.Slerp(tr.EndRot, t)
	return pos, rot
}

// Controller runs the Idle → Armed → Animating → Idle state machine and is
// the only writer of the session's current index.
type Controller struct {
	store    *PoseStore
	session  *Session
	rig      Rig
	duration time.Duration
	phase    Phase
	active   *Transition
	logger   *log.Logger
	trips    *trip.Handler

	onComplete func(from, to int, at time.Time)
}

// NewController creates an idle controller.
func NewController(store *PoseStore, session *Session, rig Rig, duration time.Duration) *Controller {
	return &Controller{
		store:    store,
		session:  session,
		rig:      rig,
		duration: duration,
		phase:    Idle,
		logger:   discardLogger(),
		trips:    trip.NewHandler("controller", nil),
	}
}

// OnComplete registers a callback run after each committed transition. at is
// the tick time that completed it.
func (c *Controller) OnComplete(fn func(from, to int, at time.Time)) {
	c.onComplete = fn
}

// Phase returns the current state.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Active returns the in-flight transition, or nil when idle.
func (c *Controller) Active() *Transition {
	return c.active
}

// Show puts pose i on display without animating: camera at the pose, primary
// layer showing its image, secondary hidden.
func (c *Controller) Show(i int) bool {
	pose, ok := c.store.At(i)
	if !ok {
		return false
	}
	c.rig.Camera.SetPose(pose.Position, pose.Orientation)
	c.rig.Primary.SetImage(pose.ImageRef)
	c.rig.Primary.SetOpacity(1)
	c.rig.Secondary.SetOpacity(0)
	return true
}

// Begin arms a transition to the session's next index. It is a no-op while a
// transition is already in flight, or when the next index is not a pose.
//
// The cross-fade swaps content at the start of motion: the secondary layer
// shows the destination image fully while the primary layer goes dark, so the
// picture already matches the destination while the camera is still easing.
func (c *Controller) Begin(now time.Time) bool {
	if c.session.transitioning {
		c.logger.Debug("transition already in flight, request dropped")
		return false
	}

	start, okStart := c.store.At(c.session.current)
	end, okEnd := c.store.At(c.session.next)
	if !okStart || !okEnd {
		c.trips.Record(trip.NewStumble(trip.Transition, "transition endpoints are not poses", trip.Context{
			"current": c.session.current, "next": c.session.next,
		}))
		return false
	}

	c.phase = Armed
	c.session.transitioning = true
	c.active = &Transition{
		From:     c.session.current,
		To:       c.session.next,
		Start:    now,
		Duration: c.duration,
		StartPos: start.Position,
		EndPos:   end.Position,
		StartRot: start.Orientation,
		EndRot:   end.Orientation,
		EndImage: end.ImageRef,
	}

	c.rig.Secondary.SetImage(end.ImageRef)
	c.rig.Secondary.SetOpacity(1)
	c.rig.Primary.SetOpacity(0)

	c.phase = Animating
	return true
}

// Tick advances an in-flight transition to now and pushes the interpolated
// pose to the camera. It returns true on the tick that completes the
// transition; idle ticks do nothing.
func (c *Controller) Tick(now time.Time) bool {
	if c.phase != Animating || c.active == nil {
		return false
	}

	t := c.active.Progress(now)
	pos, rot := c.active.PoseAt(t)
	c.rig.Camera.SetPose(pos, rot)

	if t < 1 {
		return false
	}
	c.complete(now)
	return true
}

func (c *Controller) complete(now time.Time) {
	tr := c.active

	c.rig.Primary.SetImage(tr.EndImage)
	c.rig.Primary.SetOpacity(1)
	c.rig.Secondary.SetOpacity(0)

	c.session.current = tr.To
	c.session.transitioning = false
	c.active = nil
	c.phase = Idle

	if c.onComplete != nil {
		c.onComplete(tr.From, tr.To, now)
	}
}
