// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import (
	"fmt"

	"github.com/gogpu/lenia/gpucore"
)

// Dispatch describes compute work issued for one frame.
type Dispatch struct {
	// Program is PhaseInit or PhaseUpdate.
	Program PhaseKind

	// Set is the binding set index.
	Set int

	// Groups is the workgroup count in x, y and z.
	Groups [3]uint32
}

// String returns a short description such as "Update set=1 32x32x1".
func (d Dispatch) String() string {
	return fmt.Sprintf("%s set=%d %dx%dx%d", d.Program, d.Set, d.Groups[0], d.Groups[1], d.Groups[2])
}

// Dispatcher turns the current phase into at most one compute dispatch.
//
//	Loading   -> nothing
//	Init      -> Init program with set 0, once per run
//	Update(i) -> Update program with set i, every frame
type Dispatcher struct {
	adapter  gpucore.GPUAdapter
	registry *PipelineRegistry
	bindings *BindGroupCache

	initProgram   PipelineHandle
	updateProgram PipelineHandle
	groups        [3]uint32

	initIssued bool
	issued     uint64
}

// NewDispatcher creates a dispatcher covering the grid with groups
// workgroups per dispatch.
func NewDispatcher(
	adapter gpucore.GPUAdapter,
	registry *PipelineRegistry,
	bindings *BindGroupCache,
	initProgram, updateProgram PipelineHandle,
	groups [3]uint32,
) *Dispatcher {
	return &Dispatcher{
		adapter:       adapter,
		registry:      registry,
		bindings:      bindings,
		initProgram:   initProgram,
		updateProgram: updateProgram,
		groups:        groups,
	}
}

// RunFrame records and submits the work for phase. ok is false when the
// phase issues no work this frame.
func (d *Dispatcher) RunFrame(phase Phase) (dispatch Dispatch, ok bool, err error) {
	switch phase.Kind() {
	case PhaseInit:
		if d.initIssued {
			return Dispatch{}, false, nil
		}
		dispatch = Dispatch{Program: PhaseInit, Set: 0, Groups: d.groups}
		if err := d.issue(dispatch, d.initProgram); err != nil {
			return Dispatch{}, false, err
		}
		d.initIssued = true
		return dispatch, true, nil

	case PhaseUpdate:
		dispatch = Dispatch{Program: PhaseUpdate, Set: phase.BufferIndex(), Groups: d.groups}
		if err := d.issue(dispatch, d.updateProgram); err != nil {
			return Dispatch{}, false, err
		}
		return dispatch, true, nil

	default:
		return Dispatch{}, false, nil
	}
}

func (d *Dispatcher) issue(dispatch Dispatch, program PipelineHandle) error {
	set, ok := d.bindings.Set(dispatch.Set)
	if !ok {
		return ErrBindingsNotReady
	}
	pipeline, ok := d.registry.Pipeline(program)
	if !ok {
		return fmt.Errorf("%w: %s program is not ready", ErrUnknownPipeline, dispatch.Program)
	}

	pass := d.adapter.BeginComputePass("lenia_" + dispatch.Program.String())
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, set.Group)
	pass.Dispatch(dispatch.Groups[0], dispatch.Groups[1], dispatch.Groups[2])
	pass.End()

	if err := d.adapter.Submit(); err != nil {
		return fmt.Errorf("lenia: submit %s: %w", dispatch, err)
	}
	d.issued++
	Logger().Debug("lenia: dispatch", "work", dispatch.String())
	return nil
}

// Issued returns the number of dispatches submitted so far.
func (d *Dispatcher) Issued() uint64 {
	return d.issued
}

// InitIssued reports whether the Init program has run.
func (d *Dispatcher) InitIssued() bool {
	return d.initIssued
}
