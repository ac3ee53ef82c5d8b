// Package tui walks a pose graph in the terminal. The film rig stands in for
// the renderer: its pinhole projection is drawn as a character grid, and the
// two cross-fade layers are shown as panes.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/teranos/dolly"
	"github.com/teranos/dolly/film"
)

// chromeRows is the number of terminal rows not used by the canvas: the
// title, the three-row layer panes and the help line.
const chromeRows = 5

// cellAspect is how many rig pixels tall one terminal cell is, per pixel of
// width. Terminal cells are roughly twice as tall as they are wide.
const cellAspect = 2

// FrameMsg drives one render-loop frame.
type FrameMsg time.Time

// Model is the bubbletea model for the viewer.
type Model struct {
	director *dolly.Director
	rig      *film.Rig
	styles   Styles
	logger   *log.Logger

	width, height int
	interval      time.Duration
	now           func() time.Time

	status   string
	quitting bool
}

// New creates a viewer. The director must have been built with
// rig.Surfaces().
func New(director *dolly.Director, rig *film.Rig) Model {
	m := Model{
		director: director,
		rig:      rig,
		styles:   DefaultStyles(),
		logger:   log.New(io.Discard),
		width:    80,
		height:   24,
		interval: film.FrameInterval(30),
		now:      time.Now,
	}
	m.resizeRig()
	director.Start()
	return m
}

// WithStyles sets the style set, for example one built for an SSH renderer.
func (m Model) WithStyles(styles Styles) Model {
	m.styles = styles
	return m
}

// WithLogger sets the logger.
func (m Model) WithLogger(logger *log.Logger) Model {
	m.logger = logger
	return m
}

// WithFPS sets the frame rate of the render loop. Non-positive rates are
// ignored; rates above 1000 are capped.
func (m Model) WithFPS(fps int) Model {
	if fps > 0 {
		m.interval = film.FrameInterval(fps)
	}
	return m
}

// WithClock replaces the wall clock used for navigation requests.
func (m Model) WithClock(now func() time.Time) Model {
	m.now = now
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.frame()
}

func (m Model) frame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeRig()

	case FrameMsg:
		if m.director.Tick(time.Time(msg)) {
			m.status = "arrived at " + m.currentImage()
		}
		return m, m.frame()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case " ", "enter":
			m.navigate(nil)
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			break
		}
		row := msg.Y - 1
		if row < 0 || row >= m.canvasRows() {
			m.logger.Debug("click outside canvas", "x", msg.X, "y", msg.Y)
			break
		}
		x := float32(msg.X) + 0.5
		y := float32(row*cellAspect) + cellAspect/2.0
		m.navigate(dolly.NewIntent(x, y, m.rig.View()))
	}

	return m, nil
}

func (m *Model) navigate(intent *dolly.Intent) {
	if m.director.Navigate(intent, m.now()) {
		tr := m.director.Active()
		m.status = fmt.Sprintf("hop %d → %d", tr.From, tr.To)
		return
	}
	if m.director.Session().Transitioning() {
		m.status = "still moving"
	} else {
		m.status = "nowhere to go"
	}
}

func (m Model) canvasRows() int {
	return max(m.height-chromeRows, 1)
}

func (m *Model) resizeRig() {
	m.rig.Resize(max(m.width, 1), m.canvasRows()*cellAspect)
}

func (m Model) currentImage() string {
	pose, _ := m.director.Store().At(m.director.Session().Current())
	return pose.ImageRef
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.styles.Canvas.Render(m.canvas()))
	b.WriteString("\n")
	b.WriteString(m.panes())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("space: hop · click: hop towards · q: quit"))
	return b.String()
}

func (m Model) header() string {
	session := m.director.Session()
	title := m.styles.Title.Render("dolly")
	info := fmt.Sprintf(" pose %d/%d  %s", session.Current()+1, m.director.Store().Len(),
		m.styles.Phase.Render(m.director.Phase().String()))
	if m.status != "" {
		info += "  " + m.status
	}
	return title + info
}

// canvas projects every pose into a character grid. The pose being
// approached is marked separately.
func (m Model) canvas() string {
	rows, cols := m.canvasRows(), max(m.width, 1)
	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}

	target := -1
	if tr := m.director.Active(); tr != nil {
		target = tr.To
	}

	for i, p := range m.director.Store().Poses() {
		x, y, ok := m.rig.Project(p.Position)
		if !ok {
			continue
		}
		col, row := int(x), int(y)/cellAspect
		if col < 0 || col >= cols || row < 0 || row >= rows {
			continue
		}
		if i == target {
			grid[row][col] = m.styles.Target.Render("◉")
		} else if grid[row][col] == " " {
			grid[row][col] = m.styles.Pose.Render("·")
		}
	}

	lines := make([]string, rows)
	for r, cells := range grid {
		lines[r] = strings.Join(cells, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) panes() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.pane("primary", m.rig.Primary()),
		" ",
		m.pane("secondary", m.rig.Secondary()))
}

func (m Model) pane(name string, l *film.Layer) string {
	image := l.Image()
	if image == "" {
		image = "-"
	}
	return m.styles.paneStyle(l.Opacity()).
		Render(fmt.Sprintf("%s %s %3.0f%%", name, image, l.Opacity()*100))
}
