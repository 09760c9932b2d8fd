// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command lenia runs a Lenia cellular automaton on the GPU.
//
// By default it opens a window sized to the grid times the display factor
// and steps the simulation on every redraw. Escape quits. With -headless it
// runs a fixed number of frames on a standalone device, optionally writes a
// PNG of the presented surface, and prints a short report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	"golang.org/x/text/language"

	"github.com/gogpu/lenia"
	"github.com/gogpu/lenia/backend/native"
	"github.com/gogpu/lenia/integration/leniacanvas"
)

// compileTimeout bounds the wait for kernel compilation in headless mode.
const compileTimeout = time.Minute

func main() {
	flags, settings, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	lenia.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flags.headless {
		err = runHeadless(settings, flags)
	} else {
		err = runWindow(settings)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// runHeadless steps the simulation at a fixed delta without presenting.
func runHeadless(settings lenia.Settings, flags *cliFlags) error {
	adapter, err := native.OpenDevice()
	if err != nil {
		return err
	}
	defer adapter.Close()

	sim, err := lenia.New(adapter, settings)
	if err != nil {
		return err
	}
	defer sim.Close()

	ctx, cancel := context.WithTimeout(context.Background(), compileTimeout)
	defer cancel()
	if err := sim.WaitCompiled(ctx); err != nil {
		return fmt.Errorf("lenia: waiting for kernels: %w", err)
	}

	start := time.Now()
	for i := 0; i < flags.frames; i++ {
		if _, err := sim.Frame(flags.delta); err != nil {
			return err
		}
	}
	adapter.WaitIdle()
	elapsed := time.Since(start)

	if flags.snapshot != "" {
		if err := lenia.WritePNG(flags.snapshot, sim, sim.Displayed()); err != nil {
			return err
		}
	}
	return writeReport(os.Stdout, language.English, newRunReport(adapter.Name(), sim, elapsed, flags.snapshot))
}

// windowRun is the state owned by the draw callback.
type windowRun struct {
	settings lenia.Settings
	adapter  *native.HALAdapter
	sim      *lenia.Simulation
	canvas   *leniacanvas.Canvas
	last     time.Time
	err      error
}

// start builds the simulation on the window's device, falling back to a
// standalone device when the host does not share its HAL types.
func (r *windowRun) start(provider gpucontext.DeviceProvider) error {
	adapter, err := native.FromProvider(provider)
	if err != nil {
		lenia.Logger().Info("lenia: window device not shared, opening a standalone device", "err", err)
		adapter, err = native.OpenDevice()
		if err != nil {
			return err
		}
	}
	sim, err := lenia.New(adapter, r.settings)
	if err != nil {
		adapter.Close()
		return err
	}
	canvas, err := leniacanvas.New(sim, r.settings.DisplayFactor)
	if err != nil {
		sim.Close()
		adapter.Close()
		return err
	}
	r.adapter, r.sim, r.canvas = adapter, sim, canvas
	r.last = time.Now()
	return nil
}

func (r *windowRun) close() {
	if r.canvas != nil {
		_ = r.canvas.Close()
	}
	if r.sim != nil {
		r.sim.Close()
	}
	if r.adapter != nil {
		r.adapter.Close()
	}
}

func runWindow(settings lenia.Settings) error {
	w, h := settings.DisplaySize()
	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(fmt.Sprintf("Lenia %s", settings.Grid)).
		WithSize(w, h).
		WithContinuousRender(true))

	run := &windowRun{settings: settings}

	app.OnDraw(func(dc *gogpu.Context) {
		if run.err != nil {
			return
		}
		if run.sim == nil {
			provider := app.GPUContextProvider()
			if provider == nil {
				return
			}
			if err := run.start(provider); err != nil {
				run.err = err
				app.Quit()
				return
			}
		}

		now := time.Now()
		delta := now.Sub(run.last)
		run.last = now

		if _, err := run.sim.Frame(delta); err != nil {
			run.err = err
			app.Quit()
			return
		}
		if err := run.canvas.RenderTo(dc.AsTextureDrawer()); err != nil {
			lenia.Logger().Warn("lenia: present failed", "frame", run.sim.Frames(), "err", err)
		}
	})

	app.EventSource().OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		if key == gpucontext.KeyEscape {
			app.Quit()
		}
	})

	app.OnClose(run.close)

	if err := app.Run(); err != nil {
		return err
	}
	return run.err
}
