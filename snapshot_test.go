// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func checkerboard(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

func TestUpscaleNearestNeighbour(t *testing.T) {
	src := checkerboard(2, 2)
	dst := Upscale(src, 4)
	if dst.Bounds().Dx() != 8 || dst.Bounds().Dy() != 8 {
		t.Fatalf("Upscale() bounds = %v, want 8x8", dst.Bounds())
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := src.RGBAAt(x/4, y/4)
			if got := dst.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestUpscaleFactorOne(t *testing.T) {
	src := checkerboard(3, 3)
	if Upscale(src, 1) != src {
		t.Error("Upscale(img, 1) should return img unchanged")
	}
	if Upscale(src, 0) != src {
		t.Error("Upscale(img, 0) should return img unchanged")
	}
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, checkerboard(4, 2), 2); err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Errorf("decoded bounds = %v, want 8x4", img.Bounds())
	}
}

func TestWritePNG(t *testing.T) {
	s := testSettings()
	s.DisplayFactor = 2
	sim := newTestSimulation(t, newFakeAdapter(), s)
	defer sim.Close()

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := WritePNG(path, sim, SurfaceA); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("png.DecodeConfig() error = %v", err)
	}
	if cfg.Width != 128 || cfg.Height != 128 {
		t.Errorf("snapshot size = %dx%d, want 128x128", cfg.Width, cfg.Height)
	}
}
