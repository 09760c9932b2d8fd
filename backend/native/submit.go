// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/lenia"
	"github.com/gogpu/lenia/gpucore"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the required BytesPerRow alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// === Command Recording ===

// BeginComputePass starts a compute pass in the pending command buffer,
// opening one if needed. Recording errors are reported by Submit.
func (a *HALAdapter) BeginComputePass(label string) gpucore.ComputePassEncoder {
	a.encMu.Lock()
	defer a.encMu.Unlock()

	if err := a.ensureEncoderLocked(); err != nil {
		a.recordErr = err
		return &halComputePassEncoder{adapter: a}
	}
	pass := a.encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: label})
	return &halComputePassEncoder{adapter: a, pass: pass}
}

// ensureEncoderLocked must be called with encMu held.
func (a *HALAdapter) ensureEncoderLocked() error {
	if a.closed {
		return ErrClosed
	}
	if a.encoder != nil {
		return nil
	}
	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "lenia_frame_encoder"})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("lenia_frame"); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}
	a.encoder = encoder
	return nil
}

// Submit ends the pending command buffer and queues it. It does not wait;
// command buffers whose submission index the queue reports as completed
// are reclaimed on later calls.
func (a *HALAdapter) Submit() error {
	a.encMu.Lock()
	defer a.encMu.Unlock()
	return a.submitLocked()
}

func (a *HALAdapter) submitLocked() error {
	if err := a.recordErr; err != nil {
		a.recordErr = nil
		if a.encoder != nil {
			a.encoder.DiscardEncoding()
			a.encoder = nil
		}
		return err
	}
	if a.encoder == nil {
		return nil
	}

	encoder := a.encoder
	a.encoder = nil
	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	if err := a.queueLocked(cmd); err != nil {
		return err
	}
	a.reclaimLocked()
	return nil
}

// queueLocked submits cmd and tracks it under the returned submission
// index until the queue reports it completed.
func (a *HALAdapter) queueLocked(cmd hal.CommandBuffer) error {
	index, err := a.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		a.device.FreeCommandBuffer(cmd)
		return fmt.Errorf("native: submit: %w", err)
	}
	a.inFlight = append(a.inFlight, submission{cmd: cmd, index: index})
	return nil
}

// reclaimLocked frees finished submissions in order without blocking.
func (a *HALAdapter) reclaimLocked() {
	completed := a.queue.PollCompleted()
	done := 0
	for _, s := range a.inFlight {
		if s.index > completed {
			break
		}
		a.device.FreeCommandBuffer(s.cmd)
		done++
	}
	a.inFlight = a.inFlight[done:]
}

// WaitIdle submits pending work and blocks until every submission finishes.
func (a *HALAdapter) WaitIdle() {
	a.encMu.Lock()
	defer a.encMu.Unlock()
	if err := a.submitLocked(); err != nil {
		lenia.Logger().Warn("native: submit before wait failed", "err", err)
	}
	if err := a.drainLocked(); err != nil {
		lenia.Logger().Warn("native: wait idle", "err", err)
	}
}

// drainLocked blocks until the device is idle and frees every in-flight
// command buffer. Buffers are freed even when the wait fails.
func (a *HALAdapter) drainLocked() error {
	if len(a.inFlight) == 0 {
		return nil
	}
	err := a.device.WaitIdle()
	for _, s := range a.inFlight {
		a.device.FreeCommandBuffer(s.cmd)
	}
	a.inFlight = nil
	if err != nil {
		return fmt.Errorf("native: device wait idle: %w", err)
	}
	return nil
}

// ReadTexture copies a texture into a staging buffer and returns tightly
// packed rows. Previously submitted work completes first.
func (a *HALAdapter) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	a.mu.RLock()
	entry, ok := a.textures[id]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("native: texture %d not found", id)
	}

	a.encMu.Lock()
	defer a.encMu.Unlock()
	if a.closed {
		return nil, ErrClosed
	}
	if err := a.submitLocked(); err != nil {
		return nil, err
	}

	d := entry.desc
	rowBytes := d.Width * uint32(d.Format.BytesPerPixel()) //nolint:gosec // bytes per pixel is at most 4
	paddedRow := alignedBytesPerRow(rowBytes)
	size := uint64(paddedRow) * uint64(d.Height)

	staging, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "lenia_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(staging)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "lenia_readback_encoder"})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("lenia_readback"); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}

	// Storage images must be in TRANSFER_SRC layout for the copy and are
	// returned to storage layout for the next dispatch.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: entry.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageStorageBinding,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(entry.texture, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: paddedRow, RowsPerImage: d.Height},
		TextureBase:  hal.ImageCopyTexture{Texture: entry.texture, MipLevel: 0},
		Size:         hal.Extent3D{Width: d.Width, Height: d.Height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: entry.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageStorageBinding,
		},
	}})

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("native: end encoding: %w", err)
	}
	if err := a.queueLocked(cmd); err != nil {
		return nil, err
	}
	if err := a.drainLocked(); err != nil {
		return nil, fmt.Errorf("native: wait for readback: %w", err)
	}

	mapping, err := a.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("native: map staging buffer: %w", err)
	}
	if mapping.Ptr == nil {
		_ = a.device.UnmapBuffer(staging)
		return nil, fmt.Errorf("native: map staging buffer: nil mapping")
	}
	// Copy out before unmapping; the mapped range is invalid afterwards.
	padded := make([]byte, size)
	copy(padded, unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := a.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("native: unmap staging buffer: %w", err)
	}
	return stripRowPadding(padded, int(rowBytes), int(paddedRow), int(d.Height)), nil
}

// === Compute Pass Encoder ===

// halComputePassEncoder implements gpucore.ComputePassEncoder.
type halComputePassEncoder struct {
	adapter *HALAdapter
	pass    hal.ComputePassEncoder
}

// SetPipeline sets the active compute pipeline.
func (e *halComputePassEncoder) SetPipeline(pipeline gpucore.ComputePipelineID) {
	if e.pass == nil {
		return
	}
	e.adapter.mu.RLock()
	halPipeline, ok := e.adapter.computePipelines[pipeline]
	e.adapter.mu.RUnlock()
	if ok {
		e.pass.SetPipeline(halPipeline)
	}
}

// SetBindGroup sets a bind group at the specified index.
func (e *halComputePassEncoder) SetBindGroup(index uint32, group gpucore.BindGroupID) {
	if e.pass == nil {
		return
	}
	e.adapter.mu.RLock()
	halGroup, ok := e.adapter.bindGroups[group]
	e.adapter.mu.RUnlock()
	if ok {
		e.pass.SetBindGroup(index, halGroup, nil)
	}
}

// Dispatch dispatches compute workgroups.
func (e *halComputePassEncoder) Dispatch(x, y, z uint32) {
	if e.pass == nil {
		return
	}
	e.pass.Dispatch(x, y, z)
}

// End finishes the compute pass.
func (e *halComputePassEncoder) End() {
	if e.pass == nil {
		return
	}
	e.pass.End()
}
