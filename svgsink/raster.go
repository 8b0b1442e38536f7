package svgsink

import (
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"sync"

	"github.com/benoitkugler/svgscene/svgnode"
	"github.com/benoitkugler/svgscene/svgraster"
)

var errNoImage = errors.New("svgsink: nothing rasterized yet")

// Raster rasterizes each markup and keeps the last image.
type Raster struct {
	mu  sync.Mutex
	img *image.RGBA

	// Width and Height of the images, 0 meaning the size of the scene.
	Width, Height int
	Mode          svgraster.ErrorMode
}

// Attach implements svgnode.Sink
func (r *Raster) Attach(*svgnode.Node) error { return nil }

// Notify implements svgnode.Sink
func (r *Raster) Notify(markup string) error {
	scene, err := svgraster.ReadScene(strings.NewReader(markup), r.Mode)
	if err != nil {
		return err
	}
	w, h := r.Width, r.Height
	if w <= 0 {
		w = int(scene.Width)
	}
	if h <= 0 {
		h = int(scene.Height)
	}
	if w <= 0 || h <= 0 {
		return errors.New("svgsink: empty raster size")
	}
	img := svgraster.Rasterize(scene, w, h)
	r.mu.Lock()
	r.img = img
	r.mu.Unlock()
	return nil
}

// Image returns the last rendered image, or nil.
func (r *Raster) Image() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.img
}

// WritePNG encodes the last rendered image.
func (r *Raster) WritePNG(w io.Writer) error {
	img := r.Image()
	if img == nil {
		return errNoImage
	}
	return png.Encode(w, img)
}
