// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package leniacanvas

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/lenia"
)

// mockSource alternates surfaces the way the simulation presenter does.
type mockSource struct {
	displayed lenia.Surface
	reads     []lenia.Surface
	err       error
}

func (m *mockSource) Displayed() lenia.Surface {
	return m.displayed
}

func (m *mockSource) Snapshot(s lenia.Surface) (*image.RGBA, error) {
	m.reads = append(m.reads, s)
	if m.err != nil {
		return nil, m.err
	}
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	shade := uint8(0x40)
	if s == lenia.SurfaceB {
		shade = 0xc0
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, color.RGBA{R: shade, A: 0xff})
		}
	}
	return img, nil
}

// mockTexture implements the texture interfaces for testing.
type mockTexture struct {
	width, height int
	data          []byte
	updates       int
	updateErr     error
	destroyed     bool
}

func (m *mockTexture) UpdateData(data []byte) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.data = data
	m.updates++
	return nil
}

func (m *mockTexture) Destroy() {
	m.destroyed = true
}

func (m *mockTexture) Width() int  { return m.width }
func (m *mockTexture) Height() int { return m.height }

// mockDrawer implements gpucontext.TextureDrawer and TextureCreator.
type mockDrawer struct {
	noCreator bool
	created   []*mockTexture
	drawn     []gpucontext.Texture
}

func (m *mockDrawer) NewTextureFromRGBA(width, height int, data []byte) (gpucontext.Texture, error) {
	tex := &mockTexture{width: width, height: height, data: data}
	m.created = append(m.created, tex)
	return tex, nil
}

func (m *mockDrawer) TextureCreator() gpucontext.TextureCreator {
	if m.noCreator {
		return nil
	}
	return m
}

func (m *mockDrawer) DrawTexture(tex gpucontext.Texture, _, _ float32) error {
	m.drawn = append(m.drawn, tex)
	return nil
}

// mockSink records texture creation and draws.
type mockSink struct {
	textures  []*mockTexture
	draws     int
	createErr error
	lastX     float32
	lastY     float32
}

func (m *mockSink) NewTexture(width, height int, data []byte) (any, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	tex := &mockTexture{width: width, height: height, data: data}
	m.textures = append(m.textures, tex)
	return tex, nil
}

func (m *mockSink) Draw(_ any, x, y float32) error {
	m.draws++
	m.lastX, m.lastY = x, y
	return nil
}

func TestNew(t *testing.T) {
	if _, err := New(nil, 4); !errors.Is(err, ErrNilSource) {
		t.Errorf("New(nil) error = %v, want ErrNilSource", err)
	}
	if _, err := New(&mockSource{}, 0); !errors.Is(err, ErrInvalidFactor) {
		t.Errorf("New(factor 0) error = %v, want ErrInvalidFactor", err)
	}
	c, err := New(&mockSource{}, 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.Factor() != 3 {
		t.Errorf("Factor() = %d, want 3", c.Factor())
	}
	if w, h := c.Size(); w != 0 || h != 0 {
		t.Errorf("Size() before Flush = (%d, %d), want (0, 0)", w, h)
	}
}

func TestCanvasFlushUpscales(t *testing.T) {
	src := &mockSource{displayed: lenia.SurfaceB}
	c, _ := New(src, 4)

	img, err := c.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if w, h := c.Size(); w != 8 || h != 8 {
		t.Errorf("Size() = (%d, %d), want (8, 8)", w, h)
	}
	if got := img.RGBAAt(7, 7).R; got != 0xc0 {
		t.Errorf("pixel (7,7) R = %#x, want 0xc0", got)
	}
	if len(src.reads) != 1 || src.reads[0] != lenia.SurfaceB {
		t.Errorf("reads = %v, want [B]", src.reads)
	}
}

func TestCanvasRenderFollowsDisplayedSurface(t *testing.T) {
	src := &mockSource{displayed: lenia.SurfaceA}
	sink := &mockSink{}
	c, _ := New(src, 2)

	for i := 0; i < 4; i++ {
		if err := c.render(sink, RenderOptions{X: 5, Y: 6}); err != nil {
			t.Fatalf("render %d failed: %v", i, err)
		}
		src.displayed = src.displayed.Other()
	}

	if len(sink.textures) != 1 {
		t.Fatalf("created %d textures, want 1", len(sink.textures))
	}
	tex := sink.textures[0]
	if tex.width != 4 || tex.height != 4 {
		t.Errorf("texture size = %dx%d, want 4x4", tex.width, tex.height)
	}
	if tex.updates != 3 {
		t.Errorf("texture updates = %d, want 3", tex.updates)
	}
	if sink.draws != 4 || c.Uploads() != 4 {
		t.Errorf("draws = %d uploads = %d, want 4 each", sink.draws, c.Uploads())
	}
	if sink.lastX != 5 || sink.lastY != 6 {
		t.Errorf("drawn at (%v, %v), want (5, 6)", sink.lastX, sink.lastY)
	}
	want := []lenia.Surface{lenia.SurfaceA, lenia.SurfaceB, lenia.SurfaceA, lenia.SurfaceB}
	for i, s := range want {
		if src.reads[i] != s {
			t.Errorf("read %d = %s, want %s", i, src.reads[i], s)
		}
	}
}

func TestCanvasRenderToDrawer(t *testing.T) {
	src := &mockSource{displayed: lenia.SurfaceA}
	c, _ := New(src, 2)
	dc := &mockDrawer{}

	if err := c.RenderTo(dc); err != nil {
		t.Fatalf("RenderTo failed: %v", err)
	}
	if len(dc.created) != 1 || len(dc.drawn) != 1 {
		t.Fatalf("created %d drawn %d, want 1 each", len(dc.created), len(dc.drawn))
	}
	if dc.drawn[0] != gpucontext.Texture(dc.created[0]) {
		t.Error("drawn texture is not the created one")
	}
	if w, h := dc.drawn[0].Width(), dc.drawn[0].Height(); w != 4 || h != 4 {
		t.Errorf("drawn texture = %dx%d, want 4x4", w, h)
	}

	c2, _ := New(src, 2)
	if err := c2.RenderTo(&mockDrawer{noCreator: true}); !errors.Is(err, ErrInvalidRenderer) {
		t.Errorf("RenderTo without creator = %v, want ErrInvalidRenderer", err)
	}
}

func TestCanvasRenderErrors(t *testing.T) {
	readErr := errors.New("readback failed")
	c, _ := New(&mockSource{err: readErr}, 1)
	if err := c.render(&mockSink{}, RenderOptions{}); !errors.Is(err, readErr) {
		t.Errorf("render with failing source = %v, want %v", err, readErr)
	}

	createErr := errors.New("no texture")
	c, _ = New(&mockSource{}, 1)
	if err := c.render(&mockSink{createErr: createErr}, RenderOptions{}); !errors.Is(err, createErr) {
		t.Errorf("render with failing sink = %v, want %v", err, createErr)
	}
	if c.Texture() != nil {
		t.Error("Texture() should stay nil after a failed create")
	}

	updateErr := errors.New("update failed")
	sink := &mockSink{}
	c, _ = New(&mockSource{}, 1)
	if err := c.render(sink, RenderOptions{}); err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	sink.textures[0].updateErr = updateErr
	if err := c.render(sink, RenderOptions{}); !errors.Is(err, updateErr) {
		t.Errorf("render with failing update = %v, want %v", err, updateErr)
	}
}

func TestCanvasClose(t *testing.T) {
	sink := &mockSink{}
	c, _ := New(&mockSource{}, 1)
	if err := c.render(sink, RenderOptions{}); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !sink.textures[0].destroyed {
		t.Error("Close should destroy the window texture")
	}
	if _, err := c.Flush(); !errors.Is(err, ErrCanvasClosed) {
		t.Errorf("Flush after Close = %v, want ErrCanvasClosed", err)
	}
	if err := c.RenderTo(nil); !errors.Is(err, ErrCanvasClosed) {
		t.Errorf("RenderTo after Close = %v, want ErrCanvasClosed", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}
