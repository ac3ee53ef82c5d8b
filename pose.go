package dolly

import (
	"fmt"
	"math"

	"cogentcore.org/core/math32"
	"github.com/teranos/dolly/trip"
)

// orthonormalTolerance bounds how far a rotation's rows may drift from unit
// length and mutual orthogonality, and its determinant from +1.
const orthonormalTolerance = 1e-3

// lookAxis is the camera's canonical forward axis in its own frame.
var lookAxis = math32.Vec3(0, 0, -1)

// PoseRecord is one camera as delivered by the pose source, before validation.
//
// Rotation is a 3×3 camera-to-world rotation and Translation the camera
// position in world space. How the nested rotation arrays map onto rows or
// columns is decided by the RotationOrder passed to NewPoseStore.
type PoseRecord struct {
	ID          PoseID      `yaml:"id"`
	Image       string      `yaml:"image"`
	Rotation    [][]float64 `yaml:"rotation"`
	Translation []float64   `yaml:"translation"`
}

// Pose is one captured viewpoint: a 6-DOF camera placement plus its image.
type Pose struct {
	ID          PoseID
	ImageRef    string
	Orientation math32.Quat    // camera-to-world rotation
	Position    math32.Vector3 // camera-to-world translation
}

// Forward returns the world-space direction the camera looks along.
func (p Pose) Forward() math32.Vector3 {
	return lookAxis.MulQuat(p.Orientation).Normal()
}

// PoseStore is the immutable, indexed collection of poses loaded at startup.
type PoseStore struct {
	poses []Pose
	byID  map[PoseID]int
}

// NewPoseStore validates records and builds the store.
//
// Any malformed record fails the whole load with a trip.Fall: a bad pose
// discovered mid-walk would leave the session in a state it cannot explain.
func NewPoseStore(records []PoseRecord, order RotationOrder) (*PoseStore, error) {
	store := &PoseStore{
		poses: make([]Pose, 0, len(records)),
		byID:  make(map[PoseID]int, len(records)),
	}

	for i, rec := range records {
		pose, err := rec.pose(order)
		if err != nil {
			err.Context["index"] = i
			return nil, err
		}
		if prev, dup := store.byID[pose.ID]; dup {
			return nil, trip.NewFall(trip.Ingestion, "duplicate pose id", trip.Context{
				"id": pose.ID, "index": i, "first_index": prev,
			})
		}
		store.byID[pose.ID] = len(store.poses)
		store.poses = append(store.poses, pose)
	}

	return store, nil
}

// Len returns the number of poses.
func (s *PoseStore) Len() int {
	return len(s.poses)
}

// At returns the pose at index i.
func (s *PoseStore) At(i int) (Pose, bool) {
	if i < 0 || i >= len(s.poses) {
		return Pose{}, false
	}
	return s.poses[i], true
}

// Index looks a pose up by id.
func (s *PoseStore) Index(id PoseID) (int, bool) {
	i, ok := s.byID[id]
	return i, ok
}

// Poses returns a copy of all poses in load order.
func (s *PoseStore) Poses() []Pose {
	out := make([]Pose, len(s.poses))
	copy(out, s.poses)
	return out
}

func (rec PoseRecord) pose(order RotationOrder) (Pose, *trip.Trip) {
	ctx := trip.Context{"id": rec.ID}

	if rec.ID == "" {
		return Pose{}, trip.NewFall(trip.Ingestion, "pose id is empty", ctx)
	}
	if rec.Image == "" {
		return Pose{}, trip.NewFall(trip.Ingestion, "image reference is empty", ctx)
	}
	if len(rec.Translation) != 3 {
		ctx["len"] = len(rec.Translation)
		return Pose{}, trip.NewFall(trip.Ingestion, "translation must have 3 components", ctx)
	}
	for _, v := range rec.Translation {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			ctx["translation"] = rec.Translation
			return Pose{}, trip.NewFall(trip.Ingestion, "translation is not finite", ctx)
		}
	}

	rot, err := rotationRows(rec.Rotation, order)
	if err != nil {
		return Pose{}, trip.NewFall(trip.Ingestion, err.Error(), ctx)
	}
	if dev := orthonormalDeviation(rot); dev > orthonormalTolerance {
		ctx["deviation"] = dev
		return Pose{}, trip.NewFall(trip.Ingestion, "rotation is not orthonormal", ctx)
	}

	return Pose{
		ID:          rec.ID,
		ImageRef:    rec.Image,
		Orientation: quatFromRows(rot),
		Position:    math32.Vec3(float32(rec.Translation[0]), float32(rec.Translation[1]), float32(rec.Translation[2])),
	}, nil
}

// rotationRows returns the rotation in row-major form.
func rotationRows(m [][]float64, order RotationOrder) ([3][3]float64, error) {
	var rows [3][3]float64
	if len(m) != 3 {
		return rows, fmt.Errorf("rotation must be 3x3, got %d rows", len(m))
	}
	for i, line := range m {
		if len(line) != 3 {
			return rows, fmt.Errorf("rotation must be 3x3, row %d has %d values", i, len(line))
		}
		for j, v := range line {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return rows, fmt.Errorf("rotation is not finite")
			}
			if order == RotationColumns {
				rows[j][i] = v
			} else {
				rows[i][j] = v
			}
		}
	}
	return rows, nil
}

// orthonormalDeviation is the largest error among R·Rᵀ = I and det(R) = 1.
func orthonormalDeviation(r [3][3]float64) float64 {
	worst := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dot := r[i][0]*r[j][0] + r[i][1]*r[j][1] + r[i][2]*r[j][2]
			want := 0.0
			if i == j {
				want = 1
			}
			worst = math.Max(worst, math.Abs(dot-want))
		}
	}
	det := r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
	return math.Max(worst, math.Abs(det-1))
}

// quatFromRows converts a row-major rotation to a unit quaternion by way of
// math32's column-major Matrix4.
func quatFromRows(r [3][3]float64) math32.Quat {
	var m math32.Matrix4
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			m[col*4+row] = float32(r[row][col])
		}
	}
	m[15] = 1

	var q math32.Quat
	q.SetFromRotationMatrix(&m)
	q.Normalize()
	return q
}
