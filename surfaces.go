// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import (
	"fmt"
	"image"

	"github.com/gogpu/lenia/gpucore"
)

// SurfaceFormat is the texel format of both storage surfaces.
const SurfaceFormat = gpucore.TextureFormatRGBA8Unorm

// Surface names one of the two storage surfaces.
type Surface int

const (
	// SurfaceA is read by binding set 0 and written by binding set 1.
	SurfaceA Surface = iota

	// SurfaceB is written by binding set 0 and read by binding set 1.
	SurfaceB
)

// Other returns the opposite surface.
func (s Surface) Other() Surface {
	if s == SurfaceA {
		return SurfaceB
	}
	return SurfaceA
}

// String returns "A" or "B".
func (s Surface) String() string {
	switch s {
	case SurfaceA:
		return "A"
	case SurfaceB:
		return "B"
	default:
		return fmt.Sprintf("Surface(%d)", int(s))
	}
}

// SurfacePair owns the two equal-size storage textures the simulation
// ping-pongs between. They are allocated once and live until Destroy.
type SurfacePair struct {
	adapter  gpucore.GPUAdapter
	extent   Extent
	textures [2]gpucore.TextureID
	views    [2]gpucore.TextureViewID
}

// NewSurfacePair allocates both surfaces and clears them to opaque black.
func NewSurfacePair(adapter gpucore.GPUAdapter, extent Extent) (*SurfacePair, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	if extent.Width == 0 || extent.Height == 0 {
		return nil, fmt.Errorf("%w: surface extent %s", ErrInvalidSettings, extent)
	}

	p := &SurfacePair{adapter: adapter, extent: extent}
	black := opaqueBlack(extent)
	for _, s := range []Surface{SurfaceA, SurfaceB} {
		id, err := adapter.CreateTexture(&gpucore.TextureDesc{
			Label:  "lenia_surface_" + s.String(),
			Width:  extent.Width,
			Height: extent.Height,
			Format: SurfaceFormat,
			Usage: gpucore.TextureUsageStorageBinding | gpucore.TextureUsageTextureBinding |
				gpucore.TextureUsageCopySrc | gpucore.TextureUsageCopyDst,
		})
		if err != nil {
			p.Destroy()
			return nil, fmt.Errorf("lenia: create surface %s: %w", s, err)
		}
		p.textures[s] = id
		if err := adapter.WriteTexture(id, black); err != nil {
			p.Destroy()
			return nil, fmt.Errorf("lenia: clear surface %s: %w", s, err)
		}
	}
	return p, nil
}

// opaqueBlack returns RGBA8 texels of (0, 0, 0, 255).
func opaqueBlack(extent Extent) []byte {
	data := make([]byte, int(extent.Width)*int(extent.Height)*4)
	for i := 3; i < len(data); i += 4 {
		data[i] = 0xff
	}
	return data
}

// Extent returns the size of each surface.
func (p *SurfacePair) Extent() Extent {
	return p.extent
}

// Texture returns the texture backing s.
func (p *SurfacePair) Texture(s Surface) gpucore.TextureID {
	return p.textures[s&1]
}

// Resolve returns bindable views of A and B, creating them on first use.
// A failure wraps ErrSurfaceNotResolved; views created so far are kept and
// the next call retries the rest.
func (p *SurfacePair) Resolve() (viewA, viewB gpucore.TextureViewID, err error) {
	for _, s := range []Surface{SurfaceA, SurfaceB} {
		if p.views[s] != gpucore.InvalidID {
			continue
		}
		if p.textures[s] == gpucore.InvalidID {
			return gpucore.InvalidID, gpucore.InvalidID, fmt.Errorf("%w: surface %s released", ErrSurfaceNotResolved, s)
		}
		view, verr := p.adapter.CreateTextureView(p.textures[s], "lenia_surface_"+s.String()+"_view")
		if verr != nil {
			return gpucore.InvalidID, gpucore.InvalidID, fmt.Errorf("%w: surface %s: %w", ErrSurfaceNotResolved, s, verr)
		}
		p.views[s] = view
	}
	return p.views[SurfaceA], p.views[SurfaceB], nil
}

// Read copies surface s back to the CPU.
func (p *SurfacePair) Read(s Surface) (*image.RGBA, error) {
	data, err := p.adapter.ReadTexture(p.Texture(s))
	if err != nil {
		return nil, fmt.Errorf("lenia: read surface %s: %w", s, err)
	}
	w, h := int(p.extent.Width), int(p.extent.Height)
	if len(data) < w*h*4 {
		return nil, fmt.Errorf("lenia: read surface %s: got %d bytes, want %d", s, len(data), w*h*4)
	}
	return &image.RGBA{
		Pix:    data[:w*h*4],
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}, nil
}

// Destroy releases views and textures.
func (p *SurfacePair) Destroy() {
	for i := range p.views {
		if p.views[i] != gpucore.InvalidID {
			p.adapter.DestroyTextureView(p.views[i])
			p.views[i] = gpucore.InvalidID
		}
	}
	for i := range p.textures {
		if p.textures[i] != gpucore.InvalidID {
			p.adapter.DestroyTexture(p.textures[i])
			p.textures[i] = gpucore.InvalidID
		}
	}
}
