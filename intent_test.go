package dolly

import (
	"math"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntent_RayThroughCentreIsForward(t *testing.T) {
	records := recordsAt([3]float64{3, 1, -2})
	records[0].Rotation = yawRotation(90)
	store, err := NewPoseStore(records, RotationRows)
	require.NoError(t, err)

	intent := centerIntent(store, 0)
	ray, ok := intent.Ray()

	require.True(t, ok)
	assertVecInDelta(t, yawForward(90), ray, 1e-5)
}

func TestIntent_RayCorners(t *testing.T) {
	view := ViewState{Orientation: math32.Quat{W: 1}, FOV: 90, Width: 200, Height: 100}

	ray, ok := NewIntent(200, 0, view).Ray()
	require.True(t, ok)

	// top-right corner: x = tan(45°)*aspect, y = tan(45°), z = -1
	want := math32.Vec3(2, 1, -1)
	want = want.MulScalar(1 / want.Length())
	assertVecInDelta(t, want, ray, 1e-5)
	assert.InDelta(t, 1, ray.Length(), 1e-6)
}

func TestIntent_DegenerateRays(t *testing.T) {
	good := ViewState{Orientation: math32.Quat{W: 1}, FOV: 75, Width: 800, Height: 600}
	nan := float32(math.NaN())

	tests := []struct {
		name   string
		intent *Intent
	}{
		{"zero width", NewIntent(1, 1, ViewState{Orientation: good.Orientation, FOV: 75, Height: 600})},
		{"zero height", NewIntent(1, 1, ViewState{Orientation: good.Orientation, FOV: 75, Width: 800})},
		{"zero fov", NewIntent(1, 1, ViewState{Orientation: good.Orientation, Width: 800, Height: 600})},
		{"flat fov", NewIntent(1, 1, ViewState{Orientation: good.Orientation, FOV: 180, Width: 800, Height: 600})},
		{"nan point", NewIntent(nan, 1, good)},
		{"zero quaternion", NewIntent(1, 1, ViewState{FOV: 75, Width: 800, Height: 600})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.intent.Ray()
			assert.False(t, ok)
		})
	}
}
