package film

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
)

// Difference returns the fraction of pixels that differ between two frames.
// Frames of different sizes are entirely different.
func Difference(a, b image.Image) float64 {
	bounds := a.Bounds()
	if bounds != b.Bounds() {
		return 1.0
	}

	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}

	changed := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if !sameColor(a.At(x, y), b.At(x, y)) {
				changed++
			}
		}
	}

	return float64(changed) / float64(total)
}

// DiffImage highlights changed pixels in red over a dimmed copy of a.
func DiffImage(a, b image.Image) *image.RGBA {
	bounds := a.Bounds()
	diff := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			base := a.At(x, y)
			if !image.Pt(x, y).In(b.Bounds()) || !sameColor(base, b.At(x, y)) {
				diff.Set(x, y, color.RGBA{255, 0, 0, 255})
				continue
			}
			r, g, bl, al := base.RGBA()
			diff.Set(x, y, color.RGBA{
				uint8(r >> 9), // halve brightness
				uint8(g >> 9),
				uint8(bl >> 9),
				uint8(al >> 8),
			})
		}
	}

	return diff
}

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

// Supervisor compares captured frames against a directory of baselines.
type Supervisor struct {
	baselineDir string
	currentDir  string
	tolerance   float64 // Fraction of pixels allowed to differ
}

// NewSupervisor creates a supervisor with a 5% tolerance.
func NewSupervisor(baselineDir, currentDir string) *Supervisor {
	return &Supervisor{
		baselineDir: baselineDir,
		currentDir:  currentDir,
		tolerance:   0.05,
	}
}

// WithTolerance sets the allowed fraction of differing pixels.
func (s *Supervisor) WithTolerance(tolerance float64) *Supervisor {
	s.tolerance = tolerance
	return s
}

// Validate compares name.png in the current directory against its baseline.
// When they differ beyond tolerance a name_diff.png is written next to the
// current frame.
func (s *Supervisor) Validate(name string) error {
	baseline, err := loadImage(filepath.Join(s.baselineDir, name+".png"))
	if err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	}
	current, err := loadImage(filepath.Join(s.currentDir, name+".png"))
	if err != nil {
		return fmt.Errorf("failed to load current: %w", err)
	}

	difference := Difference(baseline, current)
	if difference <= s.tolerance {
		return nil
	}

	diffPath := filepath.Join(s.currentDir, name+"_diff.png")
	if err := writePNG(diffPath, DiffImage(baseline, current)); err != nil {
		return fmt.Errorf("frame %s differs by %.2f%% and the diff could not be written: %w",
			name, difference*100, err)
	}
	return fmt.Errorf("frame %s differs by %.2f%% (tolerance: %.2f%%), see %s",
		name, difference*100, s.tolerance*100, diffPath)
}

// SetBaseline copies a captured frame into the baseline directory as name.png.
func (s *Supervisor) SetBaseline(name, framePath string) error {
	if err := os.MkdirAll(s.baselineDir, 0755); err != nil {
		return fmt.Errorf("failed to create baseline directory: %w", err)
	}

	input, err := os.Open(framePath)
	if err != nil {
		return err
	}
	defer input.Close()

	output, err := os.Create(filepath.Join(s.baselineDir, name+".png"))
	if err != nil {
		return err
	}

	if _, err := output.ReadFrom(input); err != nil {
		output.Close()
		return err
	}
	return output.Close()
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	return img, err
}
