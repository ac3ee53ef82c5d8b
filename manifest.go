package dolly

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/teranos/dolly/trip"
	"gopkg.in/yaml.v3"
)

// PoseID identifies a pose within the store. Exporters write it as either a
// number or a string; both decode to the same text.
type PoseID string

// UnmarshalYAML accepts any scalar as an id.
func (id *PoseID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: pose id must be a scalar", node.Line)
	}
	*id = PoseID(node.Value)
	return nil
}

// RotationOrder says how the nested arrays of a record's rotation are laid out.
type RotationOrder string

const (
	// RotationColumns reads each inner array as a column. This is how the
	// capture exporter's files have always been consumed.
	RotationColumns RotationOrder = "columns"
	// RotationRows reads each inner array as a row.
	RotationRows RotationOrder = "rows"
)

// Manifest is the on-disk camera list. JSON files decode as YAML.
type Manifest struct {
	Cameras []PoseRecord `yaml:"cameras"`
}

// LoadManifest reads a camera manifest and resolves image references.
func LoadManifest(filename string, mc ManifestConfig) ([]PoseRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	return DecodeManifest(file, mc)
}

// DecodeManifest decodes a camera manifest from r. Each record's image is
// joined onto the configured asset root.
func DecodeManifest(r io.Reader, mc ManifestConfig) ([]PoseRecord, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if err == io.EOF {
			return nil, trip.NewFall(trip.Ingestion, "manifest is empty", nil)
		}
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if len(m.Cameras) == 0 {
		return nil, trip.NewFall(trip.Ingestion, "manifest lists no cameras", nil)
	}

	for i := range m.Cameras {
		if m.Cameras[i].Image != "" && mc.AssetRoot != "" {
			m.Cameras[i].Image = path.Join(mc.AssetRoot, m.Cameras[i].Image)
		}
	}
	return m.Cameras, nil
}

// LoadPoseStore loads a manifest and builds the validated store in one step.
func LoadPoseStore(filename string, mc ManifestConfig) (*PoseStore, error) {
	records, err := LoadManifest(filename, mc)
	if err != nil {
		return nil, err
	}
	store, err := NewPoseStore(records, mc.RotationOrder)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return store, nil
}
