// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package leniacanvas shows a running Lenia simulation in a gogpu window.
//
// Each frame the canvas reads back the surface the simulation marked for
// display, enlarges it by the configured display factor and uploads it to
// a window texture. The data flow is:
//
//	storage texture (GPU) -> readback (CPU) -> upscale -> window texture
//
// # Usage
//
//	canvas, err := leniacanvas.New(sim, settings.DisplayFactor)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer canvas.Close()
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    if _, err := sim.Frame(delta); err != nil {
//	        app.Quit()
//	    }
//	    _ = canvas.RenderTo(dc.AsTextureDrawer())
//	})
//
// Canvas is NOT safe for concurrent use; call it from the draw callback.
package leniacanvas
