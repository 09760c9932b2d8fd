// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package leniacanvas

import (
	"errors"

	"github.com/gogpu/gpucontext"
)

// Rendering errors.
var (
	// ErrInvalidDrawContext is returned when the window texture does not
	// implement gpucontext.Texture.
	ErrInvalidDrawContext = errors.New("leniacanvas: texture must implement gpucontext.Texture")

	// ErrInvalidRenderer is returned when the draw context has no
	// texture creator.
	ErrInvalidRenderer = errors.New("leniacanvas: renderer must implement gpucontext.TextureCreator")
)

// RenderOptions controls where the frame is drawn.
type RenderOptions struct {
	// X, Y is the position to draw the texture (default: 0, 0)
	X, Y float32
}

// textureSink creates and draws window textures.
type textureSink interface {
	NewTexture(width, height int, data []byte) (any, error)
	Draw(tex any, x, y float32) error
}

// RenderTo draws the displayed surface at the window origin.
//
// The dc parameter should be obtained from gogpu.Context.AsTextureDrawer().
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    canvas.RenderTo(dc.AsTextureDrawer())
//	})
func (c *Canvas) RenderTo(dc gpucontext.TextureDrawer) error {
	return c.RenderToEx(dc, RenderOptions{})
}

// RenderToEx draws the displayed surface with options.
func (c *Canvas) RenderToEx(dc gpucontext.TextureDrawer, opts RenderOptions) error {
	if c.closed {
		return ErrCanvasClosed
	}
	return c.render(drawerSink{dc: dc}, opts)
}

// drawerSink adapts a gpucontext.TextureDrawer to textureSink.
type drawerSink struct {
	dc gpucontext.TextureDrawer
}

func (s drawerSink) NewTexture(width, height int, data []byte) (any, error) {
	creator := s.dc.TextureCreator()
	if creator == nil {
		return nil, ErrInvalidRenderer
	}
	return creator.NewTextureFromRGBA(width, height, data)
}

func (s drawerSink) Draw(tex any, x, y float32) error {
	gpuTex, ok := tex.(gpucontext.Texture)
	if !ok {
		return ErrInvalidDrawContext
	}
	return s.dc.DrawTexture(gpuTex, x, y)
}
