package tui

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/dolly"
	"github.com/teranos/dolly/film"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// newViewer builds a viewer over three poses: the start at the origin, one
// four units straight ahead and one three units to the right.
func newViewer(t *testing.T) (Model, *dolly.Director) {
	t.Helper()
	positions := [][3]float64{{0, 0, 0}, {0, 0, -4}, {3, 0, 0}}
	records := make([]dolly.PoseRecord, len(positions))
	for i, p := range positions {
		records[i] = dolly.PoseRecord{
			ID:          dolly.PoseID(fmt.Sprintf("cam_%02d", i)),
			Image:       fmt.Sprintf("cam_%02d.jpg", i),
			Rotation:    [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
			Translation: []float64{p[0], p[1], p[2]},
		}
	}
	store, err := dolly.NewPoseStore(records, dolly.RotationRows)
	require.NoError(t, err)

	cfg := dolly.DefaultConfig()
	cfg.Navigation.Seed = 5
	cfg.Transition.DurationMs = 1000

	rig := film.NewRig(film.DefaultConfig())
	director, err := dolly.NewDirector(store, rig.Surfaces(), cfg)
	require.NoError(t, err)

	m := New(director, rig).WithClock(func() time.Time { return epoch })
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24}), director
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func TestModel_StartsOnFirstPose(t *testing.T) {
	m, director := newViewer(t)

	view := m.View()

	assert.Equal(t, 0, director.Session().Current())
	assert.Contains(t, view, "pose 1/3")
	assert.Contains(t, view, "primary cam_00.jpg 100%")
	assert.Contains(t, view, "secondary - ")
	assert.Contains(t, view, "·", "the pose ahead is on the canvas")
}

func TestModel_SpaceHopsAndFramesArrive(t *testing.T) {
	m, director := newViewer(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	require.Equal(t, dolly.Animating, director.Phase())
	target := director.Active().To
	assert.Contains(t, m.View(), fmt.Sprintf("hop 0 → %d", target))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.View(), "still moving")

	m = update(t, m, FrameMsg(epoch.Add(500*time.Millisecond)))
	assert.Equal(t, dolly.Animating, director.Phase())

	m = update(t, m, FrameMsg(epoch.Add(time.Second)))
	assert.Equal(t, dolly.Idle, director.Phase())
	assert.Equal(t, target, director.Session().Current())
	assert.Contains(t, m.View(), fmt.Sprintf("arrived at cam_%02d.jpg", target))
}

func TestModel_FrameSchedulesNextFrame(t *testing.T) {
	m, _ := newViewer(t)

	_, cmd := m.Update(FrameMsg(epoch))
	assert.NotNil(t, cmd)
	assert.NotNil(t, m.Init())
}

func TestModel_WithFPS(t *testing.T) {
	m, _ := newViewer(t)

	assert.Equal(t, time.Second/30, m.interval)
	assert.Equal(t, 50*time.Millisecond, m.WithFPS(20).interval)
	assert.Equal(t, time.Second/30, m.WithFPS(0).interval)
	assert.Equal(t, film.MinFrameInterval, m.WithFPS(2_000_000_000).interval, "the loop never ticks at zero")
}

func TestModel_ClickCentreHopsAhead(t *testing.T) {
	m, director := newViewer(t)

	// canvas row 9 of 19 is the vertical middle of the 38-pixel rig
	m = update(t, m, tea.MouseMsg{X: 40, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	require.NotNil(t, director.Active())
	assert.Equal(t, 1, director.Active().To)
	assert.Contains(t, m.View(), "◉", "the target is marked on the canvas")
}

func TestModel_IgnoresOtherMouseEvents(t *testing.T) {
	m, director := newViewer(t)

	m = update(t, m, tea.MouseMsg{X: 40, Y: 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: 40, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	update(t, m, tea.MouseMsg{X: 40, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	assert.Equal(t, dolly.Idle, director.Phase())
	assert.Empty(t, director.Hops())
}

func TestModel_Quit(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		m, _ := newViewer(t)

		next, cmd := m.Update(key)

		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
		assert.Empty(t, next.View())
	}
}

func TestModel_ResizeKeepsCanvasUsable(t *testing.T) {
	m, _ := newViewer(t)

	m = update(t, m, tea.WindowSizeMsg{Width: 10, Height: 3})

	assert.Equal(t, 1, m.canvasRows())
	assert.NotPanics(t, func() { _ = m.View() })
}

func TestStyles_PaneStyleByOpacity(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.PaneShown, s.paneStyle(1))
	assert.Equal(t, s.PaneFading, s.paneStyle(0.5))
	assert.Equal(t, s.PaneHidden, s.paneStyle(0))
}
