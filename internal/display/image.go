package display

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	colorBackground = color.RGBA{A: 0xff}
	colorForeground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	// Medium blue of the ThingPulse logo.
	colorAccent    = color.RGBA{R: 0x00, G: 0x67, B: 0xb0, A: 0xff}
	colorSeparator = color.RGBA{R: 0x40, G: 0x44, B: 0x40, A: 0xff}
)

// basicfont is used below this size, scaled Go Regular above it.
const minScaledFontSize = 14

// ImageSurface renders onto an in-memory RGBA image and writes each flushed
// frame as PNG.
type ImageSurface struct {
	img       *image.RGBA
	assets    *AssetResolver
	framePath string
	logger    *zap.SugaredLogger

	faces   map[int]font.Face
	bitmaps map[string]image.Image
	missing map[string]bool

	frameMu sync.RWMutex
	frame   []byte
}

var _ Surface = (*ImageSurface)(nil)

// NewImageSurface creates a w x h surface. framePath may be empty to keep
// frames in memory only.
func NewImageSurface(w, h int, assets *AssetResolver, framePath string, logger *zap.SugaredLogger) *ImageSurface {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &ImageSurface{
		img:       image.NewRGBA(image.Rect(0, 0, w, h)),
		assets:    assets,
		framePath: framePath,
		logger:    logger.With("component", "display"),
		faces:     make(map[int]font.Face),
		bitmaps:   make(map[string]image.Image),
		missing:   make(map[string]bool),
	}
	s.Clear()
	return s
}

func (s *ImageSurface) Width() int  { return s.img.Bounds().Dx() }
func (s *ImageSurface) Height() int { return s.img.Bounds().Dy() }

func (s *ImageSurface) Clear() {
	xdraw.Draw(s.img, s.img.Bounds(), image.NewUniform(colorBackground), image.Point{}, xdraw.Src)
}

func (s *ImageSurface) FillRect(x, y, w, h int) {
	s.fill(image.Rect(x, y, x+w, y+h), colorBackground)
}

func (s *ImageSurface) fill(r image.Rectangle, c color.Color) {
	xdraw.Draw(s.img, r.Intersect(s.img.Bounds()), image.NewUniform(c), image.Point{}, xdraw.Src)
}

func (s *ImageSurface) DrawText(x, y, size int, text string) {
	face := s.face(size)
	width := font.MeasureString(face, text).Ceil()
	d := font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(colorForeground),
		Face: face,
		Dot:  fixed.P(x-width/2, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

func (s *ImageSurface) face(size int) font.Face {
	if size < minScaledFontSize {
		return basicfont.Face7x13
	}
	if f, ok := s.faces[size]; ok {
		return f
	}

	f, err := newGoRegularFace(size)
	if err != nil {
		s.logger.Warnw("font face unavailable, using basic font", "size", size, "error", err)
		return basicfont.Face7x13
	}
	s.faces[size] = f
	return f
}

func newGoRegularFace(size int) (font.Face, error) {
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// DrawBitmap draws a BMP asset with its top-left corner at x, y. Missing or
// undecodable assets are replaced by an outlined placeholder.
func (s *ImageSurface) DrawBitmap(asset Asset, x, y int) {
	src, err := s.bitmap(asset)
	if err != nil {
		if !s.missing[asset.String()] {
			s.logger.Warnw("bitmap unavailable, drawing placeholder", "asset", asset.String(), "error", err)
			s.missing[asset.String()] = true
		}
		s.outline(image.Rect(x, y, x+50, y+50), colorSeparator)
		return
	}

	b := src.Bounds()
	xdraw.Copy(s.img, image.Pt(x, y), src, b, xdraw.Over, nil)
}

func (s *ImageSurface) bitmap(asset Asset) (image.Image, error) {
	if s.assets == nil {
		return nil, fmt.Errorf("no asset resolver")
	}
	path, ok := s.assets.Resolve(asset)
	if !ok {
		return nil, fmt.Errorf("asset file %s not found", path)
	}
	if img, ok := s.bitmaps[path]; ok {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := bmp.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	s.bitmaps[path] = img
	return img, nil
}

func (s *ImageSurface) DrawProgressBar(x, y, w, h, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	s.fill(image.Rect(x, y, x+w, y+h), colorBackground)
	s.outline(image.Rect(x, y, x+w, y+h), colorForeground)

	inner := (w - 4) * percent / 100
	s.fill(image.Rect(x+2, y+2, x+2+inner, y+h-2), colorAccent)
}

func (s *ImageSurface) DrawHLine(x, y, w int) {
	s.fill(image.Rect(x, y, x+w, y+1), colorSeparator)
}

func (s *ImageSurface) outline(r image.Rectangle, c color.Color) {
	s.fill(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	s.fill(image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	s.fill(image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	s.fill(image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// Flush encodes the current image as PNG, keeps it for Frame and writes it
// to the frame path if one is configured.
func (s *ImageSurface) Flush() error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	s.frameMu.Lock()
	s.frame = buf.Bytes()
	s.frameMu.Unlock()

	if s.framePath == "" {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.framePath), ".frame-*.png")
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write frame file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close frame file: %w", err)
	}
	return os.Rename(tmp.Name(), s.framePath)
}

// Frame returns the last flushed PNG frame.
func (s *ImageSurface) Frame() ([]byte, bool) {
	s.frameMu.RLock()
	defer s.frameMu.RUnlock()

	if s.frame == nil {
		return nil, false
	}
	return s.frame, true
}
