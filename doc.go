// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package lenia schedules a GPU-resident Lenia cellular automaton.
//
// The automaton state lives in two equal-size RGBA8 storage surfaces, A and
// B. Each step reads one surface and writes the other; the next step swaps
// their roles. Three timelines meet once per rendered frame:
//
//   - kernel programs compile in the background ([PipelineRegistry])
//   - a fixed-period [Clock] decides when the simulation steps
//   - the host render loop calls [Simulation.Frame] at its own cadence
//
// # Lifecycle
//
//	Loading -> Init -> Update(1) <-> Update(0)
//
// Loading waits for the Init program and the binding sets. Init seeds the
// surfaces once and waits for the Update program. Update(i) dispatches the
// Update program with binding set i on every frame and flips i when the
// clock fires. A compile failure halts the simulation.
//
// # Quick Start
//
//	adapter, err := native.OpenDevice()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer adapter.Close()
//
//	sim, err := lenia.New(adapter, lenia.DefaultSettings())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sim.Close()
//
//	for {
//	    res, err := sim.Frame(delta)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    present(sim.Surfaces().Texture(res.Displayed))
//	}
//
// # Logging
//
// lenia is silent by default. Call [SetLogger] to route diagnostics to a
// [log/slog] handler.
package lenia
