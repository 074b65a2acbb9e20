// Package display holds the render target abstraction and an image-backed
// implementation of it.
package display

import (
	"os"
	"path/filepath"
)

// Surface is the render target. Calls are synchronous and must only be made
// by the current holder of the render lock.
type Surface interface {
	Width() int
	Height() int
	Clear()
	FillRect(x, y, w, h int)
	// DrawText draws text horizontally centred on x with its top at y.
	DrawText(x, y, size int, text string)
	DrawBitmap(asset Asset, x, y int)
	DrawProgressBar(x, y, w, h, percent int)
	DrawHLine(x, y, w int)
	// Flush pushes the composed frame to the output.
	Flush() error
}

// Asset identifies a bitmap within an asset set, e.g. weather/clear-day.
type Asset struct {
	Set  string
	Name string
}

const (
	SetWeather      = "weather"
	SetWeatherSmall = "weather-small"
	SetWind         = "wind"
)

func (a Asset) String() string {
	return a.Set + "/" + a.Name
}

// AssetResolver maps assets to bitmap files under a root directory.
type AssetResolver struct {
	root string
}

// NewAssetResolver creates a resolver for bitmaps under root.
func NewAssetResolver(root string) *AssetResolver {
	return &AssetResolver{root: root}
}

// Resolve returns the bitmap path for a and whether the file exists.
func (r *AssetResolver) Resolve(a Asset) (string, bool) {
	path := filepath.Join(r.root, a.Set, a.Name+".bmp")
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return path, false
	}
	return path, true
}
