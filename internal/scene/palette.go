package scene

import (
	"fmt"
	"image/png"
	"os"
)

// RGBA is one palette entry, straight from the PNG (sRGB).
type RGBA struct {
	R, G, B, A uint8
}

// Palette maps color ids to RGBA: a voxel's color id c looks up entry c-1.
type Palette [256]RGBA

// LoadPalette reads a 256x1 palette PNG. Pixel i encodes color id i+1.
// A palette that cannot be read is fatal for the model that needs it.
func LoadPalette(path string) (Palette, error) {
	var pal Palette
	f, err := os.Open(path)
	if err != nil {
		return pal, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return pal, fmt.Errorf("palette %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Dx() != 256 || b.Dy() != 1 {
		return pal, fmt.Errorf("palette %s: expected 256x1 image, got %dx%d", path, b.Dx(), b.Dy())
	}
	for i := 0; i < 256; i++ {
		r, g, bl, a := img.At(b.Min.X+i, b.Min.Y).RGBA()
		pal[i] = RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), uint8(a >> 8)}
	}
	return pal, nil
}

// ByColorID looks up an entry by color id (1-255).
func (p Palette) ByColorID(id uint8) RGBA {
	if id == 0 {
		return RGBA{}
	}
	return p[id-1]
}
