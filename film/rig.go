// Package film is a headless rig for dolly: a pinhole camera and two caption
// layers rasterized to images, plus an operator that drives a director on a
// virtual clock and captures every frame of a hop.
package film

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"cogentcore.org/core/math32"
	"github.com/teranos/dolly"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// nearPlane is the closest camera-space depth that still projects.
const nearPlane = 0.01

// Config defines the frame geometry and palette.
type Config struct {
	Width      int        // Frame width in pixels
	Height     int        // Frame height in pixels
	FOV        float32    // Vertical field of view in degrees
	PointSize  int        // Side of the square drawn per scene point
	Background color.RGBA // Frame background
	Foreground color.RGBA // Caption text
	Points     color.RGBA // Scene points
}

// DefaultConfig returns an 800x600 frame with the viewer's 75° lens.
func DefaultConfig() Config {
	return Config{
		Width:      800,
		Height:     600,
		FOV:        75,
		PointSize:  3,
		Background: color.RGBA{0, 0, 0, 255},
		Foreground: color.RGBA{255, 255, 255, 255},
		Points:     color.RGBA{255, 196, 0, 255},
	}
}

// Layer is an in-memory image surface. It remembers which image it shows
// and how opaque it is; the rig draws it as a caption.
type Layer struct {
	name    string
	image   string
	opacity float32
}

// SetImage implements dolly.Layer.
func (l *Layer) SetImage(ref string) { l.image = ref }

// SetOpacity implements dolly.Layer.
func (l *Layer) SetOpacity(alpha float32) { l.opacity = math32.Clamp(alpha, 0, 1) }

// Image returns the image reference on display.
func (l *Layer) Image() string { return l.image }

// Opacity returns the layer's opacity in [0, 1].
func (l *Layer) Opacity() float32 { return l.opacity }

// Rig renders what the engine's camera sees: scene points through a pinhole
// lens, with the two layers captioned on top.
type Rig struct {
	config      Config
	position    math32.Vector3
	orientation math32.Quat
	primary     *Layer
	secondary   *Layer
	scene       []math32.Vector3
	font        font.Face
}

// NewRig creates a rig at the origin looking down -Z.
func NewRig(config Config) *Rig {
	return &Rig{
		config:      config,
		orientation: math32.Quat{W: 1},
		primary:     &Layer{name: "primary", opacity: 1},
		secondary:   &Layer{name: "secondary"},
		font:        basicfont.Face7x13,
	}
}

// SetPose implements dolly.Camera.
func (r *Rig) SetPose(position math32.Vector3, orientation math32.Quat) {
	r.position = position
	r.orientation = orientation
}

// Pose returns the camera's current placement.
func (r *Rig) Pose() (math32.Vector3, math32.Quat) {
	return r.position, r.orientation
}

// Primary returns the bottom layer.
func (r *Rig) Primary() *Layer { return r.primary }

// Secondary returns the top layer.
func (r *Rig) Secondary() *Layer { return r.secondary }

// Surfaces returns the rig as the engine's collaborators.
func (r *Rig) Surfaces() dolly.Rig {
	return dolly.Rig{Camera: r, Primary: r.primary, Secondary: r.secondary}
}

// Resize changes the frame size. The lens keeps its vertical field of view.
func (r *Rig) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
}

// SetScene replaces the world points drawn behind the captions.
func (r *Rig) SetScene(points []math32.Vector3) {
	r.scene = append(r.scene[:0], points...)
}

// SceneFromStore uses every pose position as a scene point.
func (r *Rig) SceneFromStore(store *dolly.PoseStore) {
	points := make([]math32.Vector3, 0, store.Len())
	for _, p := range store.Poses() {
		points = append(points, p.Position)
	}
	r.SetScene(points)
}

// Scene returns the world points the rig draws.
func (r *Rig) Scene() []math32.Vector3 { return r.scene }

// View returns the lens and placement needed to build a directional intent.
func (r *Rig) View() dolly.ViewState {
	return dolly.ViewState{
		Position:    r.position,
		Orientation: r.orientation,
		FOV:         r.config.FOV,
		Width:       float32(r.config.Width),
		Height:      float32(r.config.Height),
	}
}

// Project maps a world point to pixel coordinates. It reports false for
// points behind the near plane.
func (r *Rig) Project(p math32.Vector3) (x, y float32, ok bool) {
	inverse := r.orientation.Conjugate()
	local := p.Sub(r.position).MulQuat(inverse)
	if -local.Z < nearPlane {
		return 0, 0, false
	}

	w, h := float32(r.config.Width), float32(r.config.Height)
	tanHalf := math32.Tan(math32.DegToRad(r.config.FOV) / 2)
	ndcX := local.X / -local.Z / (tanHalf * w / h)
	ndcY := local.Y / -local.Z / tanHalf

	return (ndcX + 1) / 2 * w, (1 - ndcY) / 2 * h, true
}

// Render draws the current frame.
func (r *Rig) Render() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.config.Background), image.Point{}, draw.Src)

	half := r.config.PointSize / 2
	dot := image.NewUniform(r.config.Points)
	for _, p := range r.scene {
		x, y, ok := r.Project(p)
		if !ok {
			continue
		}
		px, py := int(x), int(y)
		rect := image.Rect(px-half, py-half, px-half+r.config.PointSize, py-half+r.config.PointSize)
		draw.Draw(img, rect.Intersect(img.Bounds()), dot, image.Point{}, draw.Over)
	}

	lineHeight := r.font.Metrics().Height.Ceil()
	r.caption(img, r.primary, lineHeight)
	r.caption(img, r.secondary, 2*lineHeight)
	return img
}

// caption writes the layer's image reference with the layer's opacity.
func (r *Rig) caption(img *image.RGBA, l *Layer, baseline int) {
	if l.image == "" || l.opacity == 0 {
		return
	}
	fg := r.config.Foreground
	ink := color.NRGBA{R: fg.R, G: fg.G, B: fg.B, A: uint8(float32(fg.A) * l.opacity)}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ink),
		Face: r.font,
		Dot:  fixed.P(4, baseline),
	}
	drawer.DrawString(fmt.Sprintf("%s: %s", l.name, l.image))
}

// CaptureFrame renders the current frame to a PNG file.
func (r *Rig) CaptureFrame(filename string) error {
	return writePNG(filename, r.Render())
}

func writePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
