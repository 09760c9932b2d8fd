// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/lenia/gpucore"
)

// FrameResult reports what one Frame call decided.
type FrameResult struct {
	// Frame is the 1-based render frame number.
	Frame uint64

	// Phase is the phase after this frame's transition.
	Phase Phase

	// Dispatch is the work issued this frame, valid when Dispatched.
	Dispatch   Dispatch
	Dispatched bool

	// Displayed is the surface to present this frame.
	Displayed Surface

	// ClockFired reports whether the simulation clock completed this frame.
	ClockFired bool
}

// Simulation drives the double-buffered Lenia automaton. Call Frame once
// per rendered frame from a single goroutine.
type Simulation struct {
	settings Settings
	adapter  gpucore.GPUAdapter
	kernel   KernelSource

	bindLayout gpucore.BindGroupLayoutID
	pipeLayout gpucore.PipelineLayoutID

	clock      *Clock
	registry   *PipelineRegistry
	surfaces   *SurfacePair
	bindings   *BindGroupCache
	machine    *StateMachine
	dispatcher *Dispatcher
	presenter  *Presenter

	initProgram   PipelineHandle
	updateProgram PipelineHandle

	frames uint64
	halted error
	closed bool
}

// New validates settings, allocates both surfaces and starts compiling the
// Init and Update programs in the background. It does not wait for them.
func New(adapter gpucore.GPUAdapter, settings Settings, opts ...Option) (*Simulation, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if limit := adapter.MaxWorkgroupSize(); settings.WorkgroupSize > limit[0] || settings.WorkgroupSize > limit[1] {
		return nil, fmt.Errorf("%w: workgroup %d exceeds device limit %v", ErrInvalidSettings, settings.WorkgroupSize, limit)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	kernel, err := resolveKernel(settings, o.kernel)
	if err != nil {
		return nil, err
	}
	if err := checkWorkgroupSize(kernel, settings); err != nil {
		return nil, err
	}

	s := &Simulation{
		settings:  settings,
		adapter:   adapter,
		kernel:    kernel,
		clock:     NewClock(settings.StepPeriod),
		machine:   NewStateMachine(),
		presenter: NewPresenter(),
	}

	s.bindLayout, err = adapter.CreateBindGroupLayout(StorageLayoutDesc())
	if err != nil {
		return nil, fmt.Errorf("lenia: create bind group layout: %w", err)
	}
	s.pipeLayout, err = adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{s.bindLayout})
	if err != nil {
		s.destroyLayouts()
		return nil, fmt.Errorf("lenia: create pipeline layout: %w", err)
	}

	s.surfaces, err = NewSurfacePair(adapter, settings.Grid)
	if err != nil {
		s.destroyLayouts()
		return nil, err
	}

	s.registry, err = NewPipelineRegistry(adapter, s.pipeLayout, o.registryOpts...)
	if err != nil {
		s.surfaces.Destroy()
		s.destroyLayouts()
		return nil, err
	}
	s.initProgram = s.registry.RequestCompile(kernel, settings.InitEntryPoint)
	s.updateProgram = s.registry.RequestCompile(kernel, settings.UpdateEntryPoint)

	s.bindings = NewBindGroupCache(adapter, s.bindLayout)
	s.dispatcher = NewDispatcher(adapter, s.registry, s.bindings, s.initProgram, s.updateProgram, settings.DispatchSize())

	Logger().Info("lenia: simulation created",
		"grid", settings.Grid.String(),
		"workgroup", settings.WorkgroupSize,
		"period", settings.StepPeriod,
		"kernel", kernel.Asset)
	return s, nil
}

func resolveKernel(settings Settings, override *KernelSource) (KernelSource, error) {
	switch {
	case override != nil:
		return *override, nil
	case settings.KernelPath != "":
		return LoadKernel(settings.KernelPath)
	default:
		return DefaultKernel(), nil
	}
}

// Frame advances the simulation by one render frame that took delta.
//
// The clock is ticked first, then the phase is decided, then compute work
// is submitted, and finally the surface to present is chosen. A returned
// error is fatal: the simulation halts and later calls return ErrHalted.
func (s *Simulation) Frame(delta time.Duration) (FrameResult, error) {
	if s.halted != nil {
		return FrameResult{}, fmt.Errorf("%w: %w", ErrHalted, s.halted)
	}
	if s.closed {
		return FrameResult{}, fmt.Errorf("%w: closed", ErrHalted)
	}
	s.frames++
	res := FrameResult{Frame: s.frames}

	if s.settings.Pause {
		s.clock.Tick(0)
	} else {
		s.clock.Tick(s.scale(delta))
	}
	res.ClockFired = s.clock.JustCompleted()

	s.resolveBindings()

	phase, err := s.machine.Advance(Readiness{
		Init:          s.registry.State(s.initProgram),
		Update:        s.registry.State(s.updateProgram),
		BindingsReady: s.bindings.Ready(),
		ClockFired:    res.ClockFired,
	})
	if err != nil {
		s.halt(err)
		return res, err
	}
	res.Phase = phase

	res.Dispatch, res.Dispatched, err = s.dispatcher.RunFrame(phase)
	if err != nil {
		s.halt(err)
		return res, err
	}

	res.Displayed = s.presenter.Select()
	return res, nil
}

func (s *Simulation) scale(delta time.Duration) time.Duration {
	if s.settings.TimeScale == 1 {
		return delta
	}
	return time.Duration(float64(delta) * s.settings.TimeScale)
}

// resolveBindings supplies the surfaces to the binding cache. Failures are
// retried on the next frame.
func (s *Simulation) resolveBindings() {
	viewA, viewB, err := s.surfaces.Resolve()
	if err != nil {
		Logger().Debug("lenia: surfaces not resolved, retrying next frame", "err", err)
		return
	}
	if err := s.bindings.Rebuild(viewA, viewB); err != nil {
		Logger().Debug("lenia: binding sets not built, retrying next frame", "err", err)
	}
}

func (s *Simulation) halt(err error) {
	s.halted = err
	Logger().Error("lenia: simulation halted", "frame", s.frames, "phase", s.machine.Phase().String(), "err", err)
}

// Err returns the fatal error that halted the simulation, if any.
func (s *Simulation) Err() error {
	return s.halted
}

// Phase returns the current phase.
func (s *Simulation) Phase() Phase {
	return s.machine.Phase()
}

// Settings returns the settings the simulation was created with.
func (s *Simulation) Settings() Settings {
	return s.settings
}

// Kernel returns the kernel source being compiled.
func (s *Simulation) Kernel() KernelSource {
	return s.kernel
}

// Frames returns the number of Frame calls that ran.
func (s *Simulation) Frames() uint64 {
	return s.frames
}

// Steps returns the number of compute dispatches submitted.
func (s *Simulation) Steps() uint64 {
	return s.dispatcher.Issued()
}

// Displayed returns the surface chosen by the last Frame.
func (s *Simulation) Displayed() Surface {
	return s.presenter.Displayed()
}

// Surfaces returns the storage surfaces.
func (s *Simulation) Surfaces() *SurfacePair {
	return s.surfaces
}

// ProgramStatus returns the status of the Init and Update programs.
func (s *Simulation) ProgramStatus() (initStatus, updateStatus PipelineStatus) {
	initStatus, _ = s.registry.Status(s.initProgram)
	updateStatus, _ = s.registry.Status(s.updateProgram)
	return initStatus, updateStatus
}

// WaitCompiled blocks until neither program is pending. The frame loop
// never needs it; hosts without a render loop use it to avoid spinning.
func (s *Simulation) WaitCompiled(ctx context.Context) error {
	return s.registry.Wait(ctx)
}

// Snapshot reads surface back to the CPU.
func (s *Simulation) Snapshot(surface Surface) (*image.RGBA, error) {
	return s.surfaces.Read(surface)
}

// Close waits for the GPU and releases every resource. Close is
// idempotent.
func (s *Simulation) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.adapter.WaitIdle()
	s.registry.Close()
	s.bindings.Destroy()
	s.surfaces.Destroy()
	s.destroyLayouts()
}

func (s *Simulation) destroyLayouts() {
	if s.pipeLayout != gpucore.InvalidID {
		s.adapter.DestroyPipelineLayout(s.pipeLayout)
		s.pipeLayout = gpucore.InvalidID
	}
	if s.bindLayout != gpucore.InvalidID {
		s.adapter.DestroyBindGroupLayout(s.bindLayout)
		s.bindLayout = gpucore.InvalidID
	}
}
