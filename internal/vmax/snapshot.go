package vmax

import (
	"vmaxtui/internal/vmax/container"
)

// chunkWorldScale converts decoded chunk-grid coordinates to world space.
// Empirically 24, not the 32 the chunk size implies; files produced by
// VoxelMax place chunks on a 24-voxel stride.
const chunkWorldScale = 24

// ChunkInfo is the per-snapshot header needed before voxels can be decoded.
// ID is -1 when the snapshot's required fields could not be located; such
// snapshots are skipped and the rest of the stream still decodes.
type ChunkInfo struct {
	ID        int64
	Type      uint64
	MinMorton uint32
}

func (c ChunkInfo) Valid() bool { return c.ID >= 0 }

// SnapshotChunkInfo locates s.id.c, s.id.t and s.st.min in one snapshot node
// of the parsed container tree. The min array carries the minimum-corner
// Morton offset in its fourth element.
func SnapshotChunkInfo(snap interface{}) ChunkInfo {
	bad := ChunkInfo{ID: -1}

	id, ok := container.Uint(container.NestedNode(snap, "s", "id", "c"))
	if !ok {
		return bad
	}
	typ, ok := container.Uint(container.NestedNode(snap, "s", "id", "t"))
	if !ok {
		return bad
	}
	min, ok := container.NestedNode(snap, "s", "st", "min").([]interface{})
	if !ok || len(min) < 4 {
		return bad
	}
	morton, ok := container.Uint(min[3])
	if !ok {
		return bad
	}
	return ChunkInfo{ID: int64(id), Type: typ, MinMorton: uint32(morton)}
}

// SnapshotDataStream returns the snapshot's raw (material, color) byte
// stream, which may be empty.
func SnapshotDataStream(snap interface{}) []byte {
	ds, _ := container.Data(container.NestedNode(snap, "s", "ds"))
	return ds
}

// DecodeVoxels expands a snapshot's byte stream into chunk-local voxels.
// Pair k addresses local Morton index k+mortonOffset (5-bit axes). A color
// byte of 0 is an empty cell. The stream may stop short of the full 32,768
// pairs; a trailing odd byte is ignored.
func DecodeVoxels(ds []byte, mortonOffset uint32, chunkID uint16) []Voxel {
	var voxels []Voxel
	for i := 0; i+1 < len(ds); i += 2 {
		material := ds[i]
		color := ds[i+1]
		if color == 0 {
			continue
		}
		lx, ly, lz := Decode3(uint32(i/2) + mortonOffset)
		voxels = append(voxels, Voxel{
			X: uint8(lx), Y: uint8(ly), Z: uint8(lz),
			Material: material,
			Color:    color,
			ChunkID:  chunkID,
			Offset:   uint16(mortonOffset),
		})
	}
	return voxels
}

// WorldOrigin returns the world-space position of a chunk's minimum corner.
func WorldOrigin(chunkID uint16) (x, y, z int) {
	cx, cy, cz := Decode3(uint32(chunkID))
	return int(cx) * chunkWorldScale, int(cy) * chunkWorldScale, int(cz) * chunkWorldScale
}
