package vmax

// Morton codes interleave coordinate bits in (z,y,x) order with x in the
// least significant position. Chunk ids use 3 bits per axis (the 8x8x8 chunk
// grid); intra-chunk indices use 5 bits per axis (32x32x32 voxels). Bits
// outside the addressed width are undefined.

// Encode3 packs three coordinates into a single Morton index.
func Encode3(x, y, z uint32) uint32 {
	return spreadBits(x) | spreadBits(y)<<1 | spreadBits(z)<<2
}

// Decode3 is the exact inverse of Encode3 over the addressed bit width.
func Decode3(m uint32) (x, y, z uint32) {
	return compactBits(m), compactBits(m >> 1), compactBits(m >> 2)
}

// spreadBits spaces the low 10 bits of n two apart (abc -> a00b00c).
func spreadBits(n uint32) uint32 {
	n &= 0x3ff
	n = (n | n<<16) & 0x030000ff
	n = (n | n<<8) & 0x0300f00f
	n = (n | n<<4) & 0x030c30c3
	n = (n | n<<2) & 0x09249249
	return n
}

// compactBits keeps every third bit of n and packs them together.
func compactBits(n uint32) uint32 {
	n &= 0x49249249
	n = (n ^ (n >> 2)) & 0xc30c30c3
	n = (n ^ (n >> 4)) & 0x0f00f00f
	n = (n ^ (n >> 8)) & 0x00ff00ff
	n = (n ^ (n >> 16)) & 0x0000ffff
	return n
}
