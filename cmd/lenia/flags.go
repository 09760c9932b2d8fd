// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/lenia"
)

// cliFlags holds the command line. Settings flags override the config
// file only when given explicitly.
type cliFlags struct {
	config  string
	width   uint
	height  uint
	period  time.Duration
	scale   float64
	pause   bool
	factor  int
	shader  string
	verbose bool

	headless bool
	frames   int
	delta    time.Duration
	snapshot string
}

func newFlagSet(f *cliFlags) *flag.FlagSet {
	d := lenia.DefaultSettings()
	fs := flag.NewFlagSet("lenia", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "YAML settings file")
	fs.UintVar(&f.width, "width", uint(d.Grid.Width), "grid width in cells")
	fs.UintVar(&f.height, "height", uint(d.Grid.Height), "grid height in cells")
	fs.DurationVar(&f.period, "period", d.StepPeriod, "time between simulation steps")
	fs.Float64Var(&f.scale, "scale", d.TimeScale, "time scale applied to frame deltas")
	fs.BoolVar(&f.pause, "pause", false, "start with the clock paused")
	fs.IntVar(&f.factor, "factor", d.DisplayFactor, "screen pixels per cell")
	fs.StringVar(&f.shader, "shader", "", "WGSL kernel to use instead of the bundled one")
	fs.BoolVar(&f.verbose, "v", false, "debug logging")
	fs.BoolVar(&f.headless, "headless", false, "run without a window")
	fs.IntVar(&f.frames, "frames", 600, "frames to run in headless mode")
	fs.DurationVar(&f.delta, "delta", 16*time.Millisecond, "frame delta in headless mode")
	fs.StringVar(&f.snapshot, "snapshot", "", "PNG written after a headless run")
	return fs
}

// parseFlags parses args and resolves the run settings: defaults, then the
// config file, then explicitly set flags.
func parseFlags(args []string) (*cliFlags, lenia.Settings, error) {
	f := &cliFlags{}
	fs := newFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, lenia.Settings{}, err
	}

	settings := lenia.DefaultSettings()
	if f.config != "" {
		loaded, err := lenia.LoadSettings(f.config)
		if err != nil {
			return nil, lenia.Settings{}, err
		}
		settings = loaded
	}

	var flagErr error
	fs.Visit(func(fl *flag.Flag) {
		var err error
		switch fl.Name {
		case "width":
			settings.Grid.Width, err = cellCount(fl.Name, f.width)
		case "height":
			settings.Grid.Height, err = cellCount(fl.Name, f.height)
		case "period":
			settings.StepPeriod = f.period
		case "scale":
			settings.TimeScale = f.scale
		case "pause":
			settings.Pause = f.pause
		case "factor":
			settings.DisplayFactor = f.factor
		case "shader":
			settings.KernelPath = f.shader
		}
		if err != nil && flagErr == nil {
			flagErr = err
		}
	})
	if flagErr != nil {
		return nil, lenia.Settings{}, flagErr
	}
	if err := settings.Validate(); err != nil {
		return nil, lenia.Settings{}, err
	}
	if f.headless && f.frames < 1 {
		return nil, lenia.Settings{}, fmt.Errorf("lenia: -frames must be positive, got %d", f.frames)
	}
	return f, settings, nil
}

// cellCount narrows a grid dimension flag to the settings type.
func cellCount(name string, v uint) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("lenia: -%s %d exceeds %d", name, v, uint64(math.MaxUint32))
	}
	return uint32(v), nil //nolint:gosec // bounded above
}
