// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import "time"

// Clock is a repeating timer advanced by frame deltas.
//
// Elapsed time accumulates until it reaches the period; the clock then
// reports completion for exactly that tick and keeps the overflow, so
// firing does not drift with the render cadence. Durations are integer
// nanoseconds, which keeps periodic firing exact.
type Clock struct {
	period    time.Duration
	elapsed   time.Duration
	completed int
	ticks     uint64
}

// NewClock creates a clock with the given period. A non-positive period
// falls back to DefaultStepPeriod.
func NewClock(period time.Duration) *Clock {
	if period <= 0 {
		period = DefaultStepPeriod
	}
	return &Clock{period: period}
}

// Tick advances the clock by delta. Negative deltas count as zero.
func (c *Clock) Tick(delta time.Duration) {
	c.ticks++
	c.completed = 0
	if delta <= 0 {
		return
	}
	c.elapsed += delta
	if c.elapsed >= c.period {
		c.completed = int(c.elapsed / c.period)
		c.elapsed %= c.period
	}
}

// JustCompleted reports whether the most recent Tick crossed the period.
func (c *Clock) JustCompleted() bool {
	return c.completed > 0
}

// TimesCompleted returns how many whole periods the most recent Tick
// crossed. A single long frame can cross more than one.
func (c *Clock) TimesCompleted() int {
	return c.completed
}

// Elapsed returns the time accumulated toward the next completion.
func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

// Period returns the clock period.
func (c *Clock) Period() time.Duration {
	return c.period
}

// Ticks returns the number of Tick calls so far.
func (c *Clock) Ticks() uint64 {
	return c.ticks
}

// Reset clears the accumulated time and the completion flag.
func (c *Clock) Reset() {
	c.elapsed = 0
	c.completed = 0
}
