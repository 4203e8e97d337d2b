package vmax

// Voxel is one occupied cell of a model. Coordinates are chunk-local
// (0..31 per axis); world placement is derived from the chunk id.
type Voxel struct {
	X, Y, Z  uint8
	Material uint8  // material slot 0-7
	Color    uint8  // palette index 1-255; 0 means "no voxel" and is never stored
	ChunkID  uint16 // Morton code over the 8x8x8 chunk grid
	Offset   uint16 // snapshot base Morton offset within the chunk
}

// Model accumulates the voxels of one source data file, bucketed by
// (material, color) for retrieval. Replacement of a chunk's voxels across
// snapshots is the caller's job: decode only the last snapshot per chunk id
// before adding. The accumulator itself never deduplicates.
type Model struct {
	// Name is the data file this model came from (contentsN.vmaxb); it acts
	// as the model's key at the scene level.
	Name string

	// Color 0 buckets stay empty: color 0 is the empty sentinel.
	voxels [8][256][]Voxel
}

func NewModel(name string) *Model {
	return &Model{Name: name}
}

// AddVoxel appends into the (material, color) bucket. Out-of-range material
// or the color-0 sentinel are dropped silently, matching the container
// format's guarantees rather than treating them as errors.
func (m *Model) AddVoxel(x, y, z, material, color uint8, chunkID, offset uint16) {
	if material >= 8 || color == 0 {
		return
	}
	m.voxels[material][color] = append(m.voxels[material][color], Voxel{
		X: x, Y: y, Z: z,
		Material: material,
		Color:    color,
		ChunkID:  chunkID,
		Offset:   offset,
	})
}

// Voxels returns the bucket for (material, color) in insertion order. The
// returned slice is shared; callers must not mutate it.
func (m *Model) Voxels(material, color uint8) []Voxel {
	if material >= 8 || color == 0 {
		return nil
	}
	return m.voxels[material][color]
}

// UsedMaterialsAndColors reports, for each material with at least one voxel,
// the set of colors present.
func (m *Model) UsedMaterialsAndColors() map[uint8][]uint8 {
	used := make(map[uint8][]uint8)
	for mat := 0; mat < 8; mat++ {
		for col := 1; col < 256; col++ {
			if len(m.voxels[mat][col]) > 0 {
				used[uint8(mat)] = append(used[uint8(mat)], uint8(col))
			}
		}
	}
	return used
}

// TotalVoxelCount sums all buckets.
func (m *Model) TotalVoxelCount() int {
	n := 0
	for mat := 0; mat < 8; mat++ {
		for col := 1; col < 256; col++ {
			n += len(m.voxels[mat][col])
		}
	}
	return n
}
