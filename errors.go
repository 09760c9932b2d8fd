// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the scheduler.
var (
	// ErrCompileFailed is wrapped by every *CompileError.
	ErrCompileFailed = errors.New("lenia: kernel compile failed")

	// ErrGridNotAligned is returned when a grid edge is not a multiple of
	// the workgroup edge.
	ErrGridNotAligned = errors.New("lenia: grid extent not divisible by workgroup size")

	// ErrInvalidSettings is returned for settings that cannot drive a run.
	ErrInvalidSettings = errors.New("lenia: invalid settings")

	// ErrSurfaceNotResolved is returned while the storage surfaces are not
	// yet bindable. It is not fatal; the caller retries on the next frame.
	ErrSurfaceNotResolved = errors.New("lenia: surface not resolved")

	// ErrBindingsNotReady is returned when work is requested before the
	// binding sets exist.
	ErrBindingsNotReady = errors.New("lenia: binding sets not ready")

	// ErrHalted is returned by every Frame call after a fatal error.
	ErrHalted = errors.New("lenia: simulation halted")

	// ErrNilAdapter is returned when no GPU adapter is supplied.
	ErrNilAdapter = errors.New("lenia: nil GPU adapter")

	// ErrUnknownPipeline is returned for handles the registry never issued.
	ErrUnknownPipeline = errors.New("lenia: unknown pipeline handle")
)

// CompileError reports a kernel program that failed to build.
// It names the kernel asset and entry point so that the host can report
// which program failed.
type CompileError struct {
	Asset      string
	EntryPoint string
	Message    string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("lenia: initializing %s (entry point %q):\n%s", e.Asset, e.EntryPoint, e.Message)
}

// Unwrap returns ErrCompileFailed so errors.Is matches every compile failure.
func (e *CompileError) Unwrap() error {
	return ErrCompileFailed
}
