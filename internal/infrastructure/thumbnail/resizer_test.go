package thumbnail

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestResizerProducesSquareJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thumb.jpg")
	writePNG(t, path, 640, 360)

	if err := NewResizer(0).Process(context.Background(), path); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatalf("result is not a JPEG: %v", err)
	}
	if cfg.Width != DefaultSize || cfg.Height != DefaultSize {
		t.Errorf("size = %dx%d, want %dx%d", cfg.Width, cfg.Height, DefaultSize, DefaultSize)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestResizerRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thumb.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := NewResizer(100).Process(context.Background(), path); err == nil {
		t.Fatal("expected decode error")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "not an image" {
		t.Error("original file should be left untouched on failure")
	}
}

func TestResizerMissingFile(t *testing.T) {
	if err := NewResizer(100).Process(context.Background(), filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
