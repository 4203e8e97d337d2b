package convert

import (
	"encoding/json"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"

	"vmaxtui/internal/scene"
)

// Document is the finished-scene file handed to the render engine: the
// canonical models expanded into per-(material,color) instancer nodes plus
// the group/object hierarchy that places them.
type Document struct {
	Name    string       `json:"name"`
	Groups  []GroupNode  `json:"groups,omitempty"`
	Models  []ModelNode  `json:"models"`
	Objects []ObjectNode `json:"objects"`
}

type GroupNode struct {
	ID       string    `json:"id"`
	ParentID string    `json:"pid,omitempty"`
	Position []float64 `json:"pos,omitempty"`
	Rotation []float64 `json:"rot,omitempty"`
	Scale    []float64 `json:"scale,omitempty"`
}

// ModelNode is one canonical model; objects instance it by name.
type ModelNode struct {
	Name       string          `json:"name"`
	VoxelCount int             `json:"voxel_count"`
	Instancers []InstancerNode `json:"instancers"`
}

// InstancerNode carries every voxel of one (material, color) bucket as world
// positions under a single shared material.
type InstancerNode struct {
	Material  int        `json:"material"`
	Color     int        `json:"color"`
	Kind      string     `json:"kind"`
	RGBA      [4]float64 `json:"rgba"` // linear
	Roughness float64    `json:"roughness,omitempty"`
	Emission  float64    `json:"emission,omitempty"`
	Shadows   bool       `json:"shadows"`
	Positions [][3]int   `json:"positions"`
}

type ObjectNode struct {
	ID       string    `json:"id"`
	ParentID string    `json:"pid,omitempty"`
	Model    string    `json:"model"`
	Position []float64 `json:"pos,omitempty"`
	Rotation []float64 `json:"rot,omitempty"`
	Scale    []float64 `json:"scale,omitempty"`
}

// materialKind picks the render material family for a slot. Slot 7 is
// always liquid and slot 6 always glass, as is any color with a translucent
// palette entry; the rest derive from the settings file.
func materialKind(slot uint8, m scene.Material, alpha uint8) string {
	switch {
	case slot == 7:
		return "liquid"
	case slot == 6 || alpha < 255:
		return "glass"
	case m.Metalness > 0.1:
		return "metal"
	case m.Transmission > 0:
		return "dielectric"
	case m.Emission > 0:
		return "emitter"
	default:
		return "plastic"
	}
}

// srgbToLinear converts one 8-bit sRGB channel to linear light.
func srgbToLinear(c uint8) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func linearRGBA(c scene.RGBA) [4]float64 {
	// Alpha is already linear.
	return [4]float64{srgbToLinear(c.R), srgbToLinear(c.G), srgbToLinear(c.B), float64(c.A) / 255.0}
}

// WriteDocument writes a zstd-framed JSON finished-scene file.
func WriteDocument(path string, doc Document) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	return json.NewEncoder(enc).Encode(doc)
}

// ReadDocument reads a finished-scene file back; the render engine and tests
// are the consumers.
func ReadDocument(path string) (Document, error) {
	var doc Document
	f, err := os.Open(path)
	if err != nil {
		return doc, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return doc, err
	}
	defer dec.Close()

	err = json.NewDecoder(dec).Decode(&doc)
	return doc, err
}
