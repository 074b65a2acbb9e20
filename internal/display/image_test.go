package display

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/bmp"
)

func writeBMP(t *testing.T, root string, a Asset, c color.Color) {
	t.Helper()
	dir := filepath.Join(root, a.Set)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(filepath.Join(dir, a.Name+".bmp"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := bmp.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestAssetResolver(t *testing.T) {
	root := t.TempDir()
	present := Asset{Set: SetWeather, Name: "clear-day"}
	writeBMP(t, root, present, color.White)

	r := NewAssetResolver(root)
	if path, ok := r.Resolve(present); !ok || path != filepath.Join(root, "weather", "clear-day.bmp") {
		t.Fatalf("Resolve(%s) = %s, %v", present, path, ok)
	}
	if _, ok := r.Resolve(Asset{Set: SetWeather, Name: "unknown"}); ok {
		t.Fatal("expected missing asset to be reported")
	}
}

func TestDrawBitmap(t *testing.T) {
	root := t.TempDir()
	red := color.RGBA{R: 0xff, A: 0xff}
	asset := Asset{Set: SetWind, Name: "N"}
	writeBMP(t, root, asset, red)

	s := NewImageSurface(40, 40, NewAssetResolver(root), "", nil)
	s.DrawBitmap(asset, 10, 10)

	if got := s.img.RGBAAt(11, 11); got != red {
		t.Fatalf("expected bitmap pixel %v, got %v", red, got)
	}
	if got := s.img.RGBAAt(5, 5); got != colorBackground {
		t.Fatalf("expected background outside bitmap, got %v", got)
	}
}

func TestMissingBitmapWarnsOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewImageSurface(80, 80, NewAssetResolver(t.TempDir()), "", zap.New(core).Sugar())

	asset := Asset{Set: SetWeather, Name: "unknown"}
	s.DrawBitmap(asset, 0, 0)
	s.DrawBitmap(asset, 0, 0)

	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
	if got := s.img.RGBAAt(0, 0); got != colorSeparator {
		t.Fatalf("expected placeholder outline, got %v", got)
	}
}

func TestFlushWritesFrame(t *testing.T) {
	framePath := filepath.Join(t.TempDir(), "frame.png")
	s := NewImageSurface(240, 320, nil, framePath, nil)

	if _, ok := s.Frame(); ok {
		t.Fatal("expected no frame before the first flush")
	}

	s.DrawText(120, 10, 12, "Ready")
	s.DrawText(120, 235, 64, "14:55")
	s.DrawProgressBar(50, 260, 140, 15, 100)
	s.DrawHLine(10, 120, 210)
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	frame, ok := s.Frame()
	if !ok {
		t.Fatal("expected a frame after flush")
	}
	onDisk, err := os.ReadFile(framePath)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !bytes.Equal(frame, onDisk) {
		t.Fatal("frame on disk differs from the in-memory frame")
	}

	img, err := png.Decode(bytes.NewReader(onDisk))
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 240 || b.Dy() != 320 {
		t.Fatalf("unexpected frame size %v", b)
	}
}

func TestProgressBarClampsPercent(t *testing.T) {
	s := NewImageSurface(100, 40, nil, "", nil)
	s.DrawProgressBar(0, 0, 100, 10, 250)

	if got := s.img.RGBAAt(97, 5); got != colorAccent {
		t.Fatalf("expected full bar, got %v", got)
	}

	s.DrawProgressBar(0, 20, 100, 10, -5)
	if got := s.img.RGBAAt(3, 25); got != colorBackground {
		t.Fatalf("expected empty bar, got %v", got)
	}
}
