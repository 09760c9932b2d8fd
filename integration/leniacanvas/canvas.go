// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package leniacanvas

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/lenia"
)

// Common errors returned by Canvas operations.
var (
	// ErrCanvasClosed is returned when operations are attempted on a closed canvas.
	ErrCanvasClosed = errors.New("leniacanvas: canvas is closed")

	// ErrNilSource is returned when New is called without a simulation.
	ErrNilSource = errors.New("leniacanvas: nil source")

	// ErrInvalidFactor is returned for a display factor below 1.
	ErrInvalidFactor = errors.New("leniacanvas: display factor must be at least 1")
)

// Source is the part of a simulation the canvas reads from.
// *lenia.Simulation implements it.
type Source interface {
	Displayed() lenia.Surface
	Snapshot(surface lenia.Surface) (*image.RGBA, error)
}

// textureDestroyer matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// textureUpdater matches gpucontext.TextureUpdater.
type textureUpdater interface {
	UpdateData(data []byte) error
}

// Canvas uploads the displayed simulation surface to a window texture.
type Canvas struct {
	src     Source
	factor  int
	texture any // lazily created window texture
	pixels  *image.RGBA
	uploads uint64
	closed  bool
}

// New creates a canvas for src, enlarging each grid cell to factor×factor
// window pixels.
func New(src Source, factor int) (*Canvas, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if factor < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFactor, factor)
	}
	return &Canvas{src: src, factor: factor}, nil
}

// Factor returns the display factor.
func (c *Canvas) Factor() int {
	return c.factor
}

// Size returns the window-space size of the last flushed frame, or zero
// before the first Flush.
func (c *Canvas) Size() (width, height int) {
	if c.pixels == nil {
		return 0, 0
	}
	b := c.pixels.Bounds()
	return b.Dx(), b.Dy()
}

// Uploads returns how many frames were sent to the window texture.
func (c *Canvas) Uploads() uint64 {
	return c.uploads
}

// Flush reads the displayed surface and returns it at window resolution.
func (c *Canvas) Flush() (*image.RGBA, error) {
	if c.closed {
		return nil, ErrCanvasClosed
	}
	surface := c.src.Displayed()
	img, err := c.src.Snapshot(surface)
	if err != nil {
		return nil, fmt.Errorf("leniacanvas: read surface %s: %w", surface, err)
	}
	c.pixels = lenia.Upscale(img, c.factor)
	return c.pixels, nil
}

// Texture returns the current window texture without flushing.
func (c *Canvas) Texture() any {
	return c.texture
}

// render flushes and hands the frame to sink, creating the window texture
// on first use and updating it in place afterwards.
func (c *Canvas) render(sink textureSink, opts RenderOptions) error {
	img, err := c.Flush()
	if err != nil {
		return err
	}
	b := img.Bounds()

	if c.texture == nil {
		tex, err := sink.NewTexture(b.Dx(), b.Dy(), img.Pix)
		if err != nil {
			return fmt.Errorf("leniacanvas: create texture: %w", err)
		}
		c.texture = tex
	} else if updater, ok := c.texture.(textureUpdater); ok {
		if err := updater.UpdateData(img.Pix); err != nil {
			return fmt.Errorf("leniacanvas: texture update failed: %w", err)
		}
	}
	c.uploads++

	return sink.Draw(c.texture, opts.X, opts.Y)
}

// Close releases the window texture. Close is idempotent.
func (c *Canvas) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.texture != nil {
		if destroyer, ok := c.texture.(textureDestroyer); ok {
			destroyer.Destroy()
		}
		c.texture = nil
	}
	c.pixels = nil
	c.src = nil
	return nil
}
