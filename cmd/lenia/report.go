// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/lenia"
)

// runReport summarizes a headless run.
type runReport struct {
	Adapter  string
	Grid     lenia.Extent
	Frames   uint64
	Steps    uint64
	Elapsed  time.Duration
	Phase    lenia.Phase
	Snapshot string
}

func newRunReport(adapter string, sim *lenia.Simulation, elapsed time.Duration, snapshot string) runReport {
	return runReport{
		Adapter:  adapter,
		Grid:     sim.Settings().Grid,
		Frames:   sim.Frames(),
		Steps:    sim.Steps(),
		Elapsed:  elapsed,
		Phase:    sim.Phase(),
		Snapshot: snapshot,
	}
}

// cells returns the number of cell updates performed.
func (r runReport) cells() uint64 {
	return uint64(r.Grid.Width) * uint64(r.Grid.Height) * r.Steps
}

// writeReport prints r with locale-aware number formatting.
func writeReport(w io.Writer, tag language.Tag, r runReport) error {
	p := message.NewPrinter(tag)
	fps := 0.0
	if s := r.Elapsed.Seconds(); s > 0 {
		fps = float64(r.Frames) / s
	}
	lines := []string{
		p.Sprintf("adapter:  %s", r.Adapter),
		p.Sprintf("grid:     %s", r.Grid),
		p.Sprintf("frames:   %d (%.1f/s)", r.Frames, fps),
		p.Sprintf("steps:    %d", r.Steps),
		p.Sprintf("cells:    %d", r.cells()),
		p.Sprintf("phase:    %s", r.Phase),
		p.Sprintf("elapsed:  %s", r.Elapsed.Round(time.Millisecond)),
	}
	if r.Snapshot != "" {
		lines = append(lines, p.Sprintf("snapshot: %s", r.Snapshot))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
