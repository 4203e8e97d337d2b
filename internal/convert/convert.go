// Package convert turns a VoxelMax document directory into a finished-scene
// file: scene.json picks the resources, each distinct data file decodes into
// one canonical model, and objects instance those models.
package convert

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"vmaxtui/internal/scene"
	"vmaxtui/internal/vmax"
	"vmaxtui/internal/vmax/container"
)

type Converter struct {
	Log *log.Logger
	// Dec decompresses model containers; nil reads them as raw plists.
	Dec container.BufferDecoder
}

// Result summarizes one conversion for callers that index runs.
type Result struct {
	OutPath string
	Models  int
	Voxels  int
}

// OutputPath maps a source directory to its finished-scene sibling.
func OutputPath(dir string) string {
	return strings.TrimSuffix(strings.TrimSuffix(dir, "/"), ".vmax") + ".bsz"
}

// Convert reads dir and writes the finished-scene file. Per-snapshot
// problems are logged and skipped; a missing palette is fatal for the whole
// conversion since every voxel's color resolves through it.
func (c *Converter) Convert(dir string) (Result, error) {
	return c.ConvertTo(dir, OutputPath(dir))
}

func (c *Converter) ConvertTo(dir, outPath string) (Result, error) {
	var res Result

	sc, err := scene.Load(filepath.Join(dir, "scene.json"))
	if err != nil {
		return res, err
	}

	doc := Document{Name: filepath.Base(outPath)}
	for _, g := range sc.Groups {
		doc.Groups = append(doc.Groups, GroupNode{
			ID:       g.ID,
			ParentID: g.ParentID,
			Position: g.Position,
			Rotation: g.Rotation,
			Scale:    g.Scale,
		})
	}

	keys, byFile := sc.ModelsByDataFile()
	for _, dataFile := range keys {
		objs := byFile[dataFile]
		canonical := objs[0]

		palPath := filepath.Join(dir, canonical.PaletteFile)
		pal, err := scene.LoadPalette(palPath)
		if err != nil {
			return res, fmt.Errorf("model %s: %w", dataFile, err)
		}

		matsPath := strings.TrimSuffix(palPath, ".png") + ".settings.vmaxpsb"
		mats, err := scene.LoadMaterials(matsPath)
		if err != nil {
			c.Log.Printf("materials %s: %v (using defaults)", matsPath, err)
		}

		model, err := c.decodeModel(filepath.Join(dir, dataFile), dataFile)
		if err != nil {
			c.Log.Printf("model %s: %v (skipped)", dataFile, err)
			continue
		}

		doc.Models = append(doc.Models, buildModelNode(model, pal, mats))
		for _, obj := range objs {
			doc.Objects = append(doc.Objects, ObjectNode{
				ID:       obj.ID,
				ParentID: obj.ParentID,
				Model:    model.Name,
				Position: obj.Position,
				Rotation: obj.Rotation,
				Scale:    obj.Scale,
			})
		}
		res.Models++
		res.Voxels += model.TotalVoxelCount()
	}

	if err := WriteDocument(outPath, doc); err != nil {
		return res, err
	}
	res.OutPath = outPath
	return res, nil
}

// decodeModel replays a container's snapshot stream into one model. A later
// snapshot for a chunk fully replaces earlier ones, so only the last
// snapshot per chunk id is decoded.
func (c *Converter) decodeModel(path, name string) (*vmax.Model, error) {
	tree, err := container.ReadTree(path, c.Dec)
	if err != nil {
		return nil, err
	}
	snaps, err := container.Snapshots(tree)
	if err != nil {
		return nil, err
	}

	lastByChunk := make(map[int64]int)
	infos := make([]vmax.ChunkInfo, len(snaps))
	for i, snap := range snaps {
		info := vmax.SnapshotChunkInfo(snap)
		infos[i] = info
		if !info.Valid() {
			c.Log.Printf("%s: snapshot %d: missing chunk fields, skipped", name, i)
			continue
		}
		lastByChunk[info.ID] = i
	}

	model := vmax.NewModel(name)
	for i, snap := range snaps {
		info := infos[i]
		if !info.Valid() || lastByChunk[info.ID] != i {
			continue
		}
		ds := vmax.SnapshotDataStream(snap)
		for _, v := range vmax.DecodeVoxels(ds, info.MinMorton, uint16(info.ID)) {
			model.AddVoxel(v.X, v.Y, v.Z, v.Material, v.Color, v.ChunkID, v.Offset)
		}
	}
	return model, nil
}

func buildModelNode(model *vmax.Model, pal scene.Palette, mats scene.Materials) ModelNode {
	node := ModelNode{Name: model.Name, VoxelCount: model.TotalVoxelCount()}
	used := model.UsedMaterialsAndColors()
	for mat := uint8(0); mat < 8; mat++ {
		for _, col := range used[mat] {
			entry := pal.ByColorID(col)
			inst := InstancerNode{
				Material:  int(mat),
				Color:     int(col),
				Kind:      materialKind(mat, mats[mat], entry.A),
				RGBA:      linearRGBA(entry),
				Roughness: mats[mat].Roughness,
				Emission:  mats[mat].Emission,
				Shadows:   mats[mat].EnableShadows,
			}
			for _, v := range model.Voxels(mat, col) {
				wx, wy, wz := vmax.WorldOrigin(v.ChunkID)
				inst.Positions = append(inst.Positions, [3]int{
					wx + int(v.X), wy + int(v.Y), wz + int(v.Z),
				})
			}
			node.Instancers = append(node.Instancers, inst)
		}
	}
	return node
}
