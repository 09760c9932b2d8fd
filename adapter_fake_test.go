// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/lenia/gpucore"
)

// fakeAdapter is an in-memory gpucore.GPUAdapter that records every call.
type fakeAdapter struct {
	mu     sync.Mutex
	nextID uint64

	textures   map[gpucore.TextureID]*fakeTexture
	views      map[gpucore.TextureViewID]gpucore.TextureID
	bindGroups map[gpucore.BindGroupID]gpucore.BindGroupDesc
	pipelines  map[gpucore.ComputePipelineID]string
	modules    map[gpucore.ShaderModuleID]bool
	layouts    map[gpucore.BindGroupLayoutID]gpucore.BindGroupLayoutDesc
	pipeLayout map[gpucore.PipelineLayoutID]bool

	dispatches []fakeDispatch
	submits    int
	waits      int

	// Failure injection.
	moduleErr     error
	pipelineErrs  map[string]error
	viewFailures  int
	textureErr    error
	bindGroupErrs int
}

type fakeTexture struct {
	desc gpucore.TextureDesc
	data []byte
}

type fakeDispatch struct {
	pipeline  gpucore.ComputePipelineID
	bindGroup gpucore.BindGroupID
	groups    [3]uint32
	label     string
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		textures:     make(map[gpucore.TextureID]*fakeTexture),
		views:        make(map[gpucore.TextureViewID]gpucore.TextureID),
		bindGroups:   make(map[gpucore.BindGroupID]gpucore.BindGroupDesc),
		pipelines:    make(map[gpucore.ComputePipelineID]string),
		modules:      make(map[gpucore.ShaderModuleID]bool),
		layouts:      make(map[gpucore.BindGroupLayoutID]gpucore.BindGroupLayoutDesc),
		pipeLayout:   make(map[gpucore.PipelineLayoutID]bool),
		pipelineErrs: make(map[string]error),
	}
}

func (f *fakeAdapter) id() uint64 {
	f.nextID++
	return f.nextID
}

func (f *fakeAdapter) MaxWorkgroupSize() [3]uint32 { return [3]uint32{256, 256, 64} }

func (f *fakeAdapter) CreateShaderModule(spirv []uint32, _ string) (gpucore.ShaderModuleID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moduleErr != nil {
		return gpucore.InvalidID, f.moduleErr
	}
	if len(spirv) == 0 {
		return gpucore.InvalidID, errors.New("empty SPIR-V bytecode")
	}
	id := gpucore.ShaderModuleID(f.id())
	f.modules[id] = true
	return id, nil
}

func (f *fakeAdapter) DestroyShaderModule(id gpucore.ShaderModuleID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.modules, id)
}

func (f *fakeAdapter) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.textureErr != nil {
		return gpucore.InvalidID, f.textureErr
	}
	id := gpucore.TextureID(f.id())
	f.textures[id] = &fakeTexture{desc: *desc, data: make([]byte, int(desc.Width*desc.Height)*desc.Format.BytesPerPixel())}
	return id, nil
}

func (f *fakeAdapter) DestroyTexture(id gpucore.TextureID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.textures, id)
}

func (f *fakeAdapter) CreateTextureView(texture gpucore.TextureID, _ string) (gpucore.TextureViewID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.viewFailures > 0 {
		f.viewFailures--
		return gpucore.InvalidID, errors.New("view not available yet")
	}
	if _, ok := f.textures[texture]; !ok {
		return gpucore.InvalidID, fmt.Errorf("texture %d not found", texture)
	}
	id := gpucore.TextureViewID(f.id())
	f.views[id] = texture
	return id, nil
}

func (f *fakeAdapter) DestroyTextureView(id gpucore.TextureViewID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.views, id)
}

func (f *fakeAdapter) WriteTexture(id gpucore.TextureID, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tex, ok := f.textures[id]
	if !ok {
		return fmt.Errorf("texture %d not found", id)
	}
	if len(data) != len(tex.data) {
		return fmt.Errorf("write %d bytes into %d byte texture", len(data), len(tex.data))
	}
	copy(tex.data, data)
	return nil
}

func (f *fakeAdapter) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tex, ok := f.textures[id]
	if !ok {
		return nil, fmt.Errorf("texture %d not found", id)
	}
	out := make([]byte, len(tex.data))
	copy(out, tex.data)
	return out, nil
}

func (f *fakeAdapter) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := gpucore.BindGroupLayoutID(f.id())
	f.layouts[id] = *desc
	return id, nil
}

func (f *fakeAdapter) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.layouts, id)
}

func (f *fakeAdapter) CreatePipelineLayout([]gpucore.BindGroupLayoutID) (gpucore.PipelineLayoutID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := gpucore.PipelineLayoutID(f.id())
	f.pipeLayout[id] = true
	return id, nil
}

func (f *fakeAdapter) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pipeLayout, id)
}

func (f *fakeAdapter) CreateComputePipeline(desc *gpucore.ComputePipelineDesc) (gpucore.ComputePipelineID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.pipelineErrs[desc.EntryPoint]; err != nil {
		return gpucore.InvalidID, err
	}
	if !f.modules[desc.ShaderModule] {
		return gpucore.InvalidID, fmt.Errorf("shader module %d not found", desc.ShaderModule)
	}
	id := gpucore.ComputePipelineID(f.id())
	f.pipelines[id] = desc.EntryPoint
	return id, nil
}

func (f *fakeAdapter) DestroyComputePipeline(id gpucore.ComputePipelineID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pipelines, id)
}

func (f *fakeAdapter) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bindGroupErrs > 0 {
		f.bindGroupErrs--
		return gpucore.InvalidID, errors.New("bind group rejected")
	}
	for _, e := range desc.Entries {
		if _, ok := f.views[e.View]; !ok {
			return gpucore.InvalidID, fmt.Errorf("texture view %d not found", e.View)
		}
	}
	id := gpucore.BindGroupID(f.id())
	f.bindGroups[id] = *desc
	return id, nil
}

func (f *fakeAdapter) DestroyBindGroup(id gpucore.BindGroupID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bindGroups, id)
}

func (f *fakeAdapter) BeginComputePass(label string) gpucore.ComputePassEncoder {
	return &fakePass{adapter: f, label: label}
}

func (f *fakeAdapter) Submit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	return nil
}

func (f *fakeAdapter) WaitIdle() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits++
}

// entryOf returns the entry point a pipeline was built for.
func (f *fakeAdapter) entryOf(id gpucore.ComputePipelineID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pipelines[id]
}

// bindGroupTextures returns the textures behind binding 0 and binding 1.
func (f *fakeAdapter) bindGroupTextures(id gpucore.BindGroupID) (read, write gpucore.TextureID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	desc := f.bindGroups[id]
	for _, e := range desc.Entries {
		switch e.Binding {
		case 0:
			read = f.views[e.View]
		case 1:
			write = f.views[e.View]
		}
	}
	return read, write
}

func (f *fakeAdapter) dispatchLog() []fakeDispatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeDispatch(nil), f.dispatches...)
}

type fakePass struct {
	adapter   *fakeAdapter
	label     string
	pipeline  gpucore.ComputePipelineID
	bindGroup gpucore.BindGroupID
	ended     bool
}

func (p *fakePass) SetPipeline(id gpucore.ComputePipelineID) { p.pipeline = id }

func (p *fakePass) SetBindGroup(index uint32, group gpucore.BindGroupID) {
	if index == 0 {
		p.bindGroup = group
	}
}

func (p *fakePass) Dispatch(x, y, z uint32) {
	p.adapter.mu.Lock()
	defer p.adapter.mu.Unlock()
	p.adapter.dispatches = append(p.adapter.dispatches, fakeDispatch{
		pipeline:  p.pipeline,
		bindGroup: p.bindGroup,
		groups:    [3]uint32{x, y, z},
		label:     p.label,
	})
}

func (p *fakePass) End() { p.ended = true }

// fakeSPIRV stands in for naga so tests do not depend on the WGSL frontend.
func fakeSPIRV(source string) ([]uint32, error) {
	if source == "" {
		return nil, errors.New("empty source")
	}
	return []uint32{0x07230203, uint32(len(source))}, nil
}

// syncExec runs compile tasks inline.
func syncExec(task func()) { task() }

// queueExec holds compile tasks until run is called.
type queueExec struct {
	mu    sync.Mutex
	tasks []func()
}

func (q *queueExec) exec(task func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
}

// run executes the i-th queued task.
func (q *queueExec) run(i int) {
	q.mu.Lock()
	task := q.tasks[i]
	q.mu.Unlock()
	task()
}

func (q *queueExec) runAll() {
	q.mu.Lock()
	tasks := q.tasks
	q.mu.Unlock()
	for _, task := range tasks {
		task()
	}
}
