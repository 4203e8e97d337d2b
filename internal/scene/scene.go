// Package scene loads a VoxelMax document's scene.json plus its per-model
// palette and material-settings resources.
package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// GroupInfo is one nestable container node of the scene hierarchy.
type GroupInfo struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	ParentID string    `json:"pid,omitempty"`
	Position []float64 `json:"t_p,omitempty"`
	Rotation []float64 `json:"t_r,omitempty"` // axis x,y,z + angle
	Scale    []float64 `json:"t_s,omitempty"`
	ExtentC  []float64 `json:"e_c,omitempty"`
	ExtentMi []float64 `json:"e_mi,omitempty"`
	ExtentMa []float64 `json:"e_ma,omitempty"`
	Selected bool      `json:"s,omitempty"`
}

// ObjectInfo is one placed instance; several objects may reference the same
// data file, which makes them instances of one canonical model.
type ObjectInfo struct {
	ID          string    `json:"id"`
	ParentID    string    `json:"pid,omitempty"`
	Name        string    `json:"n,omitempty"`
	DataFile    string    `json:"data"`
	PaletteFile string    `json:"pal"`
	HistoryFile string    `json:"hist,omitempty"`
	Position    []float64 `json:"t_p,omitempty"`
	Rotation    []float64 `json:"t_r,omitempty"`
	Scale       []float64 `json:"t_s,omitempty"`
	ExtentC     []float64 `json:"e_c,omitempty"`
	ExtentMi    []float64 `json:"e_mi,omitempty"`
	ExtentMa    []float64 `json:"e_ma,omitempty"`
}

type Scene struct {
	Groups  []GroupInfo  `json:"groups"`
	Objects []ObjectInfo `json:"objects"`
}

// Load parses and validates scene.json.
func Load(path string) (Scene, error) {
	var s Scene
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := validate(raw); err != nil {
		return s, fmt.Errorf("scene.json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&s); err != nil {
		return s, fmt.Errorf("scene.json: %w", err)
	}
	return s, nil
}

// ModelsByDataFile groups objects by their contentsN.vmaxb so each canonical
// model is decoded once; the remaining objects are instances of it. Keys are
// returned sorted for deterministic traversal.
func (s Scene) ModelsByDataFile() (keys []string, byFile map[string][]ObjectInfo) {
	byFile = make(map[string][]ObjectInfo)
	for _, obj := range s.Objects {
		byFile[obj.DataFile] = append(byFile[obj.DataFile], obj)
	}
	keys = make([]string, 0, len(byFile))
	for k := range byFile {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, byFile
}

// Hierarchy resolves group parenting in two passes, since a child may appear
// before its parent in the file. Groups naming an unknown parent are treated
// as roots. Returns root group ids and a parent->children map (object
// parenting resolves the same way against this group set).
func (s Scene) Hierarchy() (roots []string, children map[string][]string) {
	known := make(map[string]struct{}, len(s.Groups))
	for _, g := range s.Groups {
		known[g.ID] = struct{}{}
	}
	children = make(map[string][]string)
	for _, g := range s.Groups {
		if g.ParentID == "" {
			roots = append(roots, g.ID)
			continue
		}
		if _, ok := known[g.ParentID]; !ok {
			roots = append(roots, g.ID)
			continue
		}
		children[g.ParentID] = append(children[g.ParentID], g.ID)
	}
	return roots, children
}
