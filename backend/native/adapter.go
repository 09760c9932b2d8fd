// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/lenia"
	"github.com/gogpu/lenia/gpucore"
	"github.com/gogpu/wgpu/hal"
)

// Adapter errors.
var (
	// ErrNilDevice is returned when an adapter is built without a device or queue.
	ErrNilDevice = errors.New("native: device or queue is nil")

	// ErrClosed is returned by operations on a closed adapter.
	ErrClosed = errors.New("native: adapter closed")
)

// HALAdapter implements gpucore.GPUAdapter on top of gogpu/wgpu/hal.
//
// Thread Safety: HALAdapter is safe for concurrent use. Resource maps are
// guarded by mu; command recording and submission are guarded by encMu.
type HALAdapter struct {
	mu       sync.RWMutex
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	owned    bool
	name     string
	limits   gputypes.Limits

	nextID atomic.Uint64

	textures         map[gpucore.TextureID]*textureEntry
	views            map[gpucore.TextureViewID]hal.TextureView
	shaderModules    map[gpucore.ShaderModuleID]hal.ShaderModule
	computePipelines map[gpucore.ComputePipelineID]hal.ComputePipeline
	bindGroupLayouts map[gpucore.BindGroupLayoutID]hal.BindGroupLayout
	pipelineLayouts  map[gpucore.PipelineLayoutID]hal.PipelineLayout
	bindGroups       map[gpucore.BindGroupID]hal.BindGroup

	encMu     sync.Mutex
	encoder   hal.CommandEncoder
	recordErr error
	inFlight  []submission
	closed    bool
}

type textureEntry struct {
	texture hal.Texture
	desc    gpucore.TextureDesc
}

// submission is a command buffer the GPU may still be executing, keyed by
// the queue's submission index.
type submission struct {
	cmd   hal.CommandBuffer
	index uint64
}

// NewHALAdapter wraps an existing device and queue. The adapter does not
// take ownership: Close releases adapter resources but not the device.
// If limits is nil, default limits are used.
func NewHALAdapter(device hal.Device, queue hal.Queue, limits *gputypes.Limits) (*HALAdapter, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	lim := gputypes.DefaultLimits()
	if limits != nil {
		lim = *limits
	}
	a := &HALAdapter{
		device:           device,
		queue:            queue,
		limits:           lim,
		textures:         make(map[gpucore.TextureID]*textureEntry),
		views:            make(map[gpucore.TextureViewID]hal.TextureView),
		shaderModules:    make(map[gpucore.ShaderModuleID]hal.ShaderModule),
		computePipelines: make(map[gpucore.ComputePipelineID]hal.ComputePipeline),
		bindGroupLayouts: make(map[gpucore.BindGroupLayoutID]hal.BindGroupLayout),
		pipelineLayouts:  make(map[gpucore.PipelineLayoutID]hal.PipelineLayout),
		bindGroups:       make(map[gpucore.BindGroupID]hal.BindGroup),
	}
	// Start ID generation at 1 (0 is invalid)
	a.nextID.Store(1)
	return a, nil
}

func (a *HALAdapter) newID() uint64 {
	return a.nextID.Add(1) - 1
}

// Name returns the GPU adapter name when the device was opened by this
// package, or "shared" for provider devices.
func (a *HALAdapter) Name() string {
	if a.name == "" {
		return "shared"
	}
	return a.name
}

// === Capabilities ===

// MaxWorkgroupSize returns the maximum workgroup size in each dimension.
func (a *HALAdapter) MaxWorkgroupSize() [3]uint32 {
	return [3]uint32{
		a.limits.MaxComputeWorkgroupSizeX,
		a.limits.MaxComputeWorkgroupSizeY,
		a.limits.MaxComputeWorkgroupSizeZ,
	}
}

// === Shader Compilation ===

// CreateShaderModule creates a shader module from SPIR-V bytecode.
func (a *HALAdapter) CreateShaderModule(spirv []uint32, label string) (gpucore.ShaderModuleID, error) {
	if len(spirv) == 0 {
		return gpucore.InvalidID, fmt.Errorf("native: empty SPIR-V bytecode")
	}
	module, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create shader module: %w", err)
	}

	id := gpucore.ShaderModuleID(a.newID())
	a.mu.Lock()
	a.shaderModules[id] = module
	a.mu.Unlock()
	return id, nil
}

// DestroyShaderModule releases a shader module.
func (a *HALAdapter) DestroyShaderModule(id gpucore.ShaderModuleID) {
	a.mu.Lock()
	module, ok := a.shaderModules[id]
	delete(a.shaderModules, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroyShaderModule(module)
	}
}

// === Texture Management ===

// CreateTexture allocates a single-mip 2D texture.
func (a *HALAdapter) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return gpucore.InvalidID, fmt.Errorf("native: texture %q has empty extent", desc.Label)
	}
	tex, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        convertTextureFormat(desc.Format),
		Usage:         convertTextureUsage(desc.Usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create texture %q: %w", desc.Label, err)
	}

	id := gpucore.TextureID(a.newID())
	a.mu.Lock()
	a.textures[id] = &textureEntry{texture: tex, desc: *desc}
	a.mu.Unlock()
	return id, nil
}

// DestroyTexture releases a texture.
func (a *HALAdapter) DestroyTexture(id gpucore.TextureID) {
	a.mu.Lock()
	entry, ok := a.textures[id]
	delete(a.textures, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroyTexture(entry.texture)
	}
}

// CreateTextureView creates a full 2D view of a texture.
func (a *HALAdapter) CreateTextureView(texture gpucore.TextureID, label string) (gpucore.TextureViewID, error) {
	a.mu.RLock()
	entry, ok := a.textures[texture]
	a.mu.RUnlock()
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("native: texture %d not found", texture)
	}

	view, err := a.device.CreateTextureView(entry.texture, &hal.TextureViewDescriptor{
		Label:         label,
		Format:        convertTextureFormat(entry.desc.Format),
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create view of texture %d: %w", texture, err)
	}

	id := gpucore.TextureViewID(a.newID())
	a.mu.Lock()
	a.views[id] = view
	a.mu.Unlock()
	return id, nil
}

// DestroyTextureView releases a texture view.
func (a *HALAdapter) DestroyTextureView(id gpucore.TextureViewID) {
	a.mu.Lock()
	view, ok := a.views[id]
	delete(a.views, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroyTextureView(view)
	}
}

// WriteTexture uploads tightly packed rows covering the whole texture.
func (a *HALAdapter) WriteTexture(id gpucore.TextureID, data []byte) error {
	a.mu.RLock()
	entry, ok := a.textures[id]
	a.mu.RUnlock()
	if !ok {
		return fmt.Errorf("native: texture %d not found", id)
	}

	d := entry.desc
	rowBytes := d.Width * uint32(d.Format.BytesPerPixel()) //nolint:gosec // bytes per pixel is at most 4
	if want := int(rowBytes) * int(d.Height); len(data) != want {
		return fmt.Errorf("native: write texture %d: got %d bytes, want %d", id, len(data), want)
	}

	err := a.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: entry.texture, MipLevel: 0},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: rowBytes, RowsPerImage: d.Height},
		&hal.Extent3D{Width: d.Width, Height: d.Height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("native: write texture %d: %w", id, err)
	}
	return nil
}

// === Pipeline Management ===

// CreateBindGroupLayout creates a compute-visible bind group layout.
func (a *HALAdapter) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	entries := make([]gputypes.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entries[i] = convertBindGroupLayoutEntry(e)
	}
	layout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create bind group layout: %w", err)
	}

	id := gpucore.BindGroupLayoutID(a.newID())
	a.mu.Lock()
	a.bindGroupLayouts[id] = layout
	a.mu.Unlock()
	return id, nil
}

// DestroyBindGroupLayout releases a bind group layout.
func (a *HALAdapter) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	a.mu.Lock()
	layout, ok := a.bindGroupLayouts[id]
	delete(a.bindGroupLayouts, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroyBindGroupLayout(layout)
	}
}

// CreatePipelineLayout creates a pipeline layout from bind group layouts.
func (a *HALAdapter) CreatePipelineLayout(layouts []gpucore.BindGroupLayoutID) (gpucore.PipelineLayoutID, error) {
	a.mu.RLock()
	halLayouts := make([]hal.BindGroupLayout, len(layouts))
	for i, id := range layouts {
		layout, ok := a.bindGroupLayouts[id]
		if !ok {
			a.mu.RUnlock()
			return gpucore.InvalidID, fmt.Errorf("native: bind group layout %d not found", id)
		}
		halLayouts[i] = layout
	}
	a.mu.RUnlock()

	pipelineLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "lenia_pipeline_layout",
		BindGroupLayouts: halLayouts,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create pipeline layout: %w", err)
	}

	id := gpucore.PipelineLayoutID(a.newID())
	a.mu.Lock()
	a.pipelineLayouts[id] = pipelineLayout
	a.mu.Unlock()
	return id, nil
}

// DestroyPipelineLayout releases a pipeline layout.
func (a *HALAdapter) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {
	a.mu.Lock()
	layout, ok := a.pipelineLayouts[id]
	delete(a.pipelineLayouts, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroyPipelineLayout(layout)
	}
}

// CreateComputePipeline creates a compute pipeline. It is called from the
// background compile goroutine.
func (a *HALAdapter) CreateComputePipeline(desc *gpucore.ComputePipelineDesc) (gpucore.ComputePipelineID, error) {
	a.mu.RLock()
	layout, layoutOK := a.pipelineLayouts[desc.Layout]
	module, moduleOK := a.shaderModules[desc.ShaderModule]
	a.mu.RUnlock()
	if !layoutOK {
		return gpucore.InvalidID, fmt.Errorf("native: pipeline layout %d not found", desc.Layout)
	}
	if !moduleOK {
		return gpucore.InvalidID, fmt.Errorf("native: shader module %d not found", desc.ShaderModule)
	}

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: desc.EntryPoint,
		},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create compute pipeline %q: %w", desc.EntryPoint, err)
	}

	id := gpucore.ComputePipelineID(a.newID())
	a.mu.Lock()
	a.computePipelines[id] = pipeline
	a.mu.Unlock()
	return id, nil
}

// DestroyComputePipeline releases a compute pipeline.
func (a *HALAdapter) DestroyComputePipeline(id gpucore.ComputePipelineID) {
	a.mu.Lock()
	pipeline, ok := a.computePipelines[id]
	delete(a.computePipelines, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroyComputePipeline(pipeline)
	}
}

// CreateBindGroup creates a bind group of texture views.
func (a *HALAdapter) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	a.mu.RLock()
	layout, ok := a.bindGroupLayouts[desc.Layout]
	if !ok {
		a.mu.RUnlock()
		return gpucore.InvalidID, fmt.Errorf("native: bind group layout %d not found", desc.Layout)
	}
	entries := make([]gputypes.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		view, ok := a.views[e.View]
		if !ok {
			a.mu.RUnlock()
			return gpucore.InvalidID, fmt.Errorf("native: texture view %d not found", e.View)
		}
		entries[i] = gputypes.BindGroupEntry{
			Binding:  e.Binding,
			Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()},
		}
	}
	a.mu.RUnlock()

	group, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create bind group %q: %w", desc.Label, err)
	}

	id := gpucore.BindGroupID(a.newID())
	a.mu.Lock()
	a.bindGroups[id] = group
	a.mu.Unlock()
	return id, nil
}

// DestroyBindGroup releases a bind group.
func (a *HALAdapter) DestroyBindGroup(id gpucore.BindGroupID) {
	a.mu.Lock()
	group, ok := a.bindGroups[id]
	delete(a.bindGroups, id)
	a.mu.Unlock()
	if ok {
		a.device.DestroyBindGroup(group)
	}
}

// Close waits for the GPU, releases every tracked resource and, for
// devices opened by OpenDevice, the device and instance.
func (a *HALAdapter) Close() {
	a.WaitIdle()

	a.encMu.Lock()
	if a.closed {
		a.encMu.Unlock()
		return
	}
	a.closed = true
	if a.encoder != nil {
		a.encoder.DiscardEncoding()
		a.encoder = nil
	}
	a.encMu.Unlock()

	a.mu.Lock()
	for id, g := range a.bindGroups {
		a.device.DestroyBindGroup(g)
		delete(a.bindGroups, id)
	}
	for id, p := range a.computePipelines {
		a.device.DestroyComputePipeline(p)
		delete(a.computePipelines, id)
	}
	for id, l := range a.pipelineLayouts {
		a.device.DestroyPipelineLayout(l)
		delete(a.pipelineLayouts, id)
	}
	for id, l := range a.bindGroupLayouts {
		a.device.DestroyBindGroupLayout(l)
		delete(a.bindGroupLayouts, id)
	}
	for id, m := range a.shaderModules {
		a.device.DestroyShaderModule(m)
		delete(a.shaderModules, id)
	}
	for id, v := range a.views {
		a.device.DestroyTextureView(v)
		delete(a.views, id)
	}
	for id, t := range a.textures {
		a.device.DestroyTexture(t.texture)
		delete(a.textures, id)
	}
	a.mu.Unlock()

	if a.owned {
		a.device.Destroy()
		if a.instance != nil {
			a.instance.Destroy()
		}
		lenia.Logger().Info("native: device closed", "adapter", a.name)
	}
}
