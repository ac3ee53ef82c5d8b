package dolly

import "cogentcore.org/core/math32"

// ViewState is the part of the external camera needed to turn a screen point
// into a world ray: where it is, how it is turned, and its perspective lens.
type ViewState struct {
	Position    math32.Vector3
	Orientation math32.Quat
	// FOV is the vertical field of view in degrees.
	FOV    float32
	Width  float32
	Height float32
}

// Intent is a navigate trigger carrying a point in viewport coordinates
// (origin top-left, y down) and the view it was made in.
type Intent struct {
	Point math32.Vector2
	View  ViewState
}

// NewIntent builds an intent for a click at (x, y).
func NewIntent(x, y float32, view ViewState) *Intent {
	return &Intent{Point: math32.Vec2(x, y), View: view}
}

// Ray unprojects the intent's point into a unit world-space direction from the
// camera. It reports false when no ray can be formed: an empty viewport, a
// degenerate lens, or a point that is not finite.
func (in *Intent) Ray() (math32.Vector3, bool) {
	v := in.View
	if v.Width <= 0 || v.Height <= 0 || v.FOV <= 0 || v.FOV >= 180 {
		return math32.Vector3{}, false
	}
	if !finite(in.Point.X) || !finite(in.Point.Y) {
		return math32.Vector3{}, false
	}

	ndcX := in.Point.X/v.Width*2 - 1
	ndcY := -(in.Point.Y/v.Height)*2 + 1
	tanHalf := math32.Tan(math32.DegToRad(v.FOV) / 2)
	aspect := v.Width / v.Height

	local := math32.Vec3(ndcX*tanHalf*aspect, ndcY*tanHalf, -1)
	dir := local.MulQuat(v.Orientation)

	length := dir.Length()
	if length == 0 || !finite(length) {
		return math32.Vector3{}, false
	}
	return dir.MulScalar(1 / length), true
}

func finite(x float32) bool {
	return !math32.IsNaN(x) && !math32.IsInf(x, 0)
}
