package dolly

import (
	"fmt"
	"math"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/require"
)

func identityRotation() [][]float64 {
	return [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// yawRotation turns the camera by deg degrees about +Y, row-major.
func yawRotation(deg float64) [][]float64 {
	s, c := math.Sincos(deg * math.Pi / 180)
	return [][]float64{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}
}

// recordsAt builds identity-oriented records at the given positions.
func recordsAt(positions ...[3]float64) []PoseRecord {
	records := make([]PoseRecord, len(positions))
	for i, p := range positions {
		records[i] = PoseRecord{
			ID:          PoseID(fmt.Sprintf("cam_%02d", i)),
			Image:       fmt.Sprintf("images/cam_%02d.jpg", i),
			Rotation:    identityRotation(),
			Translation: []float64{p[0], p[1], p[2]},
		}
	}
	return records
}

func storeAt(t *testing.T, positions ...[3]float64) *PoseStore {
	t.Helper()
	store, err := NewPoseStore(recordsAt(positions...), RotationRows)
	require.NoError(t, err)
	return store
}

type cameraWrite struct {
	pos math32.Vector3
	rot math32.Quat
}

// recordingCamera keeps every pose pushed to it.
type recordingCamera struct {
	writes []cameraWrite
}

func (c *recordingCamera) SetPose(position math32.Vector3, orientation math32.Quat) {
	c.writes = append(c.writes, cameraWrite{pos: position, rot: orientation})
}

func (c *recordingCamera) last() cameraWrite {
	return c.writes[len(c.writes)-1]
}

// recordingLayer keeps the latest image and opacity, plus the call order.
type recordingLayer struct {
	image   string
	opacity float32
	calls   []string
}

func (l *recordingLayer) SetImage(ref string) {
	l.image = ref
	l.calls = append(l.calls, "image:"+ref)
}

func (l *recordingLayer) SetOpacity(alpha float32) {
	l.opacity = alpha
	l.calls = append(l.calls, fmt.Sprintf("opacity:%g", alpha))
}

type testRig struct {
	camera    *recordingCamera
	primary   *recordingLayer
	secondary *recordingLayer
}

func newTestRig() *testRig {
	return &testRig{
		camera:    &recordingCamera{},
		primary:   &recordingLayer{},
		secondary: &recordingLayer{},
	}
}

func (r *testRig) Rig() Rig {
	return Rig{Camera: r.camera, Primary: r.primary, Secondary: r.secondary}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Navigation.Seed = 7
	return cfg
}

func assertVecInDelta(t *testing.T, want, got math32.Vector3, delta float64) {
	t.Helper()
	require.InDelta(t, want.X, got.X, delta, "x")
	require.InDelta(t, want.Y, got.Y, delta, "y")
	require.InDelta(t, want.Z, got.Z, delta, "z")
}

// assertSameRotation compares quaternions up to sign.
func assertSameRotation(t *testing.T, want, got math32.Quat, delta float64) {
	t.Helper()
	dot := want.X*got.X + want.Y*got.Y + want.Z*got.Z + want.W*got.W
	require.InDelta(t, 1, math.Abs(float64(dot)), delta)
}

// yawForward is where a camera yawed by deg degrees about +Y looks.
func yawForward(deg float64) math32.Vector3 {
	s, c := math.Sincos(deg * math.Pi / 180)
	return math32.Vec3(float32(-s), 0, float32(-c))
}
