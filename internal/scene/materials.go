package scene

import (
	"vmaxtui/internal/vmax/container"
)

// Material is one of a model's 8 surface-property slots, read from
// paletteN.settings.vmaxpsb.
type Material struct {
	Name          string
	Transmission  float64
	Roughness     float64
	Metalness     float64
	Emission      float64
	EnableShadows bool
}

// Materials is the per-model material table; slots the settings file does
// not fill stay zero-valued.
type Materials [8]Material

// LoadMaterials reads the material-settings plist (stored uncompressed).
// Missing per-material keys default rather than fail; the settings file
// omits values the editor never changed.
func LoadMaterials(path string) (Materials, error) {
	var mats Materials
	tree, err := container.ReadTree(path, nil)
	if err != nil {
		return mats, err
	}
	arr, ok := container.NestedNode(tree, "materials").([]interface{})
	if !ok {
		return mats, nil
	}
	for i, node := range arr {
		if i >= len(mats) {
			break
		}
		m := Material{Name: "unnamed", EnableShadows: true}
		if name, ok := container.String(container.NestedNode(node, "mi")); ok {
			m.Name = name
		}
		if v, ok := container.Float(container.NestedNode(node, "tc")); ok {
			m.Transmission = v
		}
		if v, ok := container.Float(container.NestedNode(node, "sic")); ok {
			m.Emission = v
		}
		if v, ok := container.Float(container.NestedNode(node, "rc")); ok {
			m.Roughness = v
		}
		if v, ok := container.Float(container.NestedNode(node, "mc")); ok {
			m.Metalness = v
		}
		if v, ok := container.Bool(container.NestedNode(node, "sh")); ok {
			m.EnableShadows = v
		}
		mats[i] = m
	}
	return mats, nil
}
