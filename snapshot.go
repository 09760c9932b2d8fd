// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Upscale enlarges img by an integer factor with nearest-neighbour
// sampling, so each cell becomes a factor x factor block of pixels.
// A factor of 1 or less returns img unchanged.
func Upscale(img *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// EncodePNG writes img upscaled by factor as PNG.
func EncodePNG(w io.Writer, img *image.RGBA, factor int) error {
	if err := png.Encode(w, Upscale(img, factor)); err != nil {
		return fmt.Errorf("lenia: encode png: %w", err)
	}
	return nil
}

// WritePNG writes surface s of sim to path, upscaled by the display factor.
func WritePNG(path string, sim *Simulation, s Surface) (err error) {
	img, err := sim.Snapshot(s)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lenia: create snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("lenia: close snapshot: %w", cerr)
		}
	}()
	return EncodePNG(f, img, sim.Settings().DisplayFactor)
}
