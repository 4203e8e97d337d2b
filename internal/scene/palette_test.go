package scene

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w; i++ {
		img.Set(i, 0, color.NRGBA{R: uint8(i), G: uint8(255 - i), B: 7, A: 255})
	}
	path := filepath.Join(t.TempDir(), "palette.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestLoadPalette(t *testing.T) {
	pal, err := LoadPalette(writePNG(t, 256, 1))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pal[0] != (RGBA{0, 255, 7, 255}) {
		t.Fatalf("entry 0 = %+v", pal[0])
	}
	if pal[200] != (RGBA{200, 55, 7, 255}) {
		t.Fatalf("entry 200 = %+v", pal[200])
	}
	// Color id c maps to pixel c-1.
	if got := pal.ByColorID(1); got != pal[0] {
		t.Fatalf("ByColorID(1) = %+v", got)
	}
	if got := pal.ByColorID(0); got != (RGBA{}) {
		t.Fatalf("ByColorID(0) = %+v, want zero", got)
	}
}

func TestLoadPaletteWrongSize(t *testing.T) {
	if _, err := LoadPalette(writePNG(t, 16, 16)); err == nil {
		t.Fatalf("expected error for non-256x1 palette")
	}
}

func TestLoadPaletteMissingFile(t *testing.T) {
	if _, err := LoadPalette(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatalf("expected error for missing palette")
	}
}
