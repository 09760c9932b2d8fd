// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

// Presenter picks the surface shown each render frame.
//
// It alternates A and B on every frame regardless of phase or buffer
// index, starting from A as the surface shown before the first frame.
// Because the simulation steps only when the clock fires, the shown
// surface is not always the one most recently written.
type Presenter struct {
	displayed Surface
	frames    uint64
}

// NewPresenter returns a presenter showing surface A.
func NewPresenter() *Presenter {
	return &Presenter{displayed: SurfaceA}
}

// Select switches to the other surface and returns it.
func (p *Presenter) Select() Surface {
	p.displayed = p.displayed.Other()
	p.frames++
	return p.displayed
}

// Displayed returns the surface chosen by the last Select.
func (p *Presenter) Displayed() Surface {
	return p.displayed
}

// Frames returns the number of Select calls.
func (p *Presenter) Frames() uint64 {
	return p.frames
}
