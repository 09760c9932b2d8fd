// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/gogpu/lenia/gpucore"
	"github.com/gogpu/lenia/internal/shader"
)

// PipelineStatus is the build state of a kernel program.
// It only ever moves from StatusPending to StatusReady or StatusFailed.
type PipelineStatus int

const (
	// StatusPending means the program is still being compiled.
	StatusPending PipelineStatus = iota

	// StatusReady means the program can be dispatched.
	StatusReady

	// StatusFailed means compilation failed. This is terminal.
	StatusFailed
)

// String returns the string representation of PipelineStatus.
func (s PipelineStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusReady:
		return "Ready"
	case StatusFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// PipelineHandle refers to a program requested from a PipelineRegistry.
// The zero value is never issued.
type PipelineHandle uint32

// KernelSource is WGSL code plus the asset name used in diagnostics.
type KernelSource struct {
	Asset string
	Code  string
}

// CompileFunc translates WGSL source into SPIR-V words.
type CompileFunc func(source string) ([]uint32, error)

// Executor runs a compile task, normally on another goroutine.
type Executor func(task func())

// RegistryOption configures a PipelineRegistry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	compile CompileFunc
	exec    Executor
}

// WithCompiler replaces the naga WGSL compiler.
func WithCompiler(fn CompileFunc) RegistryOption {
	return func(o *registryOptions) {
		if fn != nil {
			o.compile = fn
		}
	}
}

// WithExecutor replaces the goroutine-per-request executor.
func WithExecutor(exec Executor) RegistryOption {
	return func(o *registryOptions) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// PipelineRegistry compiles kernel programs in the background and reports
// their status without blocking.
//
// Thread Safety:
// PipelineRegistry is safe for concurrent use. Compile tasks publish their
// result under mu; Status takes a read lock only.
type PipelineRegistry struct {
	adapter gpucore.GPUAdapter
	layout  gpucore.PipelineLayoutID
	compile CompileFunc
	exec    Executor

	mu      sync.RWMutex
	entries []*pipelineEntry
	modules map[uint64]*moduleEntry
	pending int
	changed chan struct{}
	closed  bool

	wg sync.WaitGroup
}

type pipelineEntry struct {
	source     KernelSource
	entryPoint string

	status   PipelineStatus
	err      error
	pipeline gpucore.ComputePipelineID
}

// moduleEntry shares one shader module between every entry point of the
// same source.
type moduleEntry struct {
	once sync.Once
	id   gpucore.ShaderModuleID
	err  error
}

// NewPipelineRegistry creates a registry that builds pipelines against the
// given pipeline layout.
func NewPipelineRegistry(adapter gpucore.GPUAdapter, layout gpucore.PipelineLayoutID, opts ...RegistryOption) (*PipelineRegistry, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	o := registryOptions{
		compile: shader.CompileWGSL,
		exec:    func(task func()) { go task() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &PipelineRegistry{
		adapter: adapter,
		layout:  layout,
		compile: o.compile,
		exec:    o.exec,
		modules: make(map[uint64]*moduleEntry),
		changed: make(chan struct{}),
	}, nil
}

// RequestCompile queues a program build and returns immediately with a
// handle whose status is StatusPending.
func (r *PipelineRegistry) RequestCompile(src KernelSource, entryPoint string) PipelineHandle {
	r.mu.Lock()
	r.entries = append(r.entries, &pipelineEntry{source: src, entryPoint: entryPoint})
	h := PipelineHandle(len(r.entries))
	key := sourceHash(src.Code)
	mod, ok := r.modules[key]
	if !ok {
		mod = &moduleEntry{}
		r.modules[key] = mod
	}
	r.pending++
	r.mu.Unlock()

	Logger().Debug("lenia: compile requested", "asset", src.Asset, "entry", entryPoint, "handle", h)

	r.wg.Add(1)
	r.exec(func() {
		defer r.wg.Done()
		r.build(h, src, entryPoint, mod)
	})
	return h
}

func (r *PipelineRegistry) build(h PipelineHandle, src KernelSource, entryPoint string, mod *moduleEntry) {
	mod.once.Do(func() {
		spirv, err := r.compile(src.Code)
		if err != nil {
			mod.err = err
			return
		}
		mod.id, mod.err = r.adapter.CreateShaderModule(spirv, src.Asset)
	})
	if mod.err != nil {
		r.finish(h, gpucore.InvalidID, &CompileError{Asset: src.Asset, EntryPoint: entryPoint, Message: mod.err.Error()})
		return
	}

	pipeline, err := r.adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{
		Label:        "lenia_" + entryPoint,
		Layout:       r.layout,
		ShaderModule: mod.id,
		EntryPoint:   entryPoint,
	})
	if err != nil {
		r.finish(h, gpucore.InvalidID, &CompileError{Asset: src.Asset, EntryPoint: entryPoint, Message: err.Error()})
		return
	}
	r.finish(h, pipeline, nil)
}

// finish publishes a build result. Only a Pending entry is updated.
func (r *PipelineRegistry) finish(h PipelineHandle, pipeline gpucore.ComputePipelineID, err error) {
	r.mu.Lock()
	e := r.entries[h-1]
	if e.status != StatusPending || r.closed {
		r.mu.Unlock()
		if pipeline != gpucore.InvalidID {
			r.adapter.DestroyComputePipeline(pipeline)
		}
		return
	}
	if err != nil {
		e.status = StatusFailed
		e.err = err
	} else {
		e.status = StatusReady
		e.pipeline = pipeline
	}
	r.pending--
	close(r.changed)
	r.changed = make(chan struct{})
	r.mu.Unlock()

	if err != nil {
		Logger().Error("lenia: kernel compile failed", "asset", e.source.Asset, "entry", e.entryPoint, "err", err)
		return
	}
	Logger().Info("lenia: pipeline ready", "asset", e.source.Asset, "entry", e.entryPoint)
}

// Status returns the build state of h. For StatusFailed the error is a
// *CompileError. Unknown handles report StatusFailed with ErrUnknownPipeline.
func (r *PipelineRegistry) Status(h PipelineHandle) (PipelineStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entry(h)
	if !ok {
		return StatusFailed, ErrUnknownPipeline
	}
	return e.status, e.err
}

// State returns the status of h as a PipelineState.
func (r *PipelineRegistry) State(h PipelineHandle) PipelineState {
	status, err := r.Status(h)
	return PipelineState{Status: status, Err: err}
}

// Pipeline returns the compute pipeline for a Ready handle.
func (r *PipelineRegistry) Pipeline(h PipelineHandle) (gpucore.ComputePipelineID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entry(h)
	if !ok || e.status != StatusReady {
		return gpucore.InvalidID, false
	}
	return e.pipeline, true
}

// entry must be called with mu held.
func (r *PipelineRegistry) entry(h PipelineHandle) (*pipelineEntry, bool) {
	if h == 0 || int(h) > len(r.entries) {
		return nil, false
	}
	return r.entries[h-1], true
}

// Wait blocks until no program is pending or ctx is done.
// The frame loop never calls Wait; it polls Status instead.
func (r *PipelineRegistry) Wait(ctx context.Context) error {
	for {
		r.mu.RLock()
		pending := r.pending
		changed := r.changed
		r.mu.RUnlock()
		if pending == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

// Close waits for in-flight builds and releases all pipelines and shader
// modules. Handles report their last status after Close.
func (r *PipelineRegistry) Close() {
	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, e := range r.entries {
		if e.pipeline != gpucore.InvalidID {
			r.adapter.DestroyComputePipeline(e.pipeline)
			e.pipeline = gpucore.InvalidID
		}
	}
	for _, m := range r.modules {
		if m.err == nil && m.id != gpucore.InvalidID {
			r.adapter.DestroyShaderModule(m.id)
		}
	}
	r.modules = make(map[uint64]*moduleEntry)
}

func sourceHash(code string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(code))
	return h.Sum64()
}
