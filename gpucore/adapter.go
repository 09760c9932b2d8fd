// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucore

// GPUAdapter abstracts over the GPU device that runs the simulation.
//
// Implementations must be safe for concurrent use: shader modules and
// pipelines are created from a background compile goroutine while the frame
// loop records and submits compute passes.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - Destroying a resource while in use is undefined behavior
//   - IDs become invalid after destruction and must not be reused
type GPUAdapter interface {
	// === Capabilities ===

	// MaxWorkgroupSize returns the maximum workgroup size in each dimension.
	MaxWorkgroupSize() [3]uint32

	// === Shader Compilation ===

	// CreateShaderModule creates a shader module from SPIR-V bytecode.
	// The SPIR-V is produced by naga before being passed here.
	CreateShaderModule(spirv []uint32, label string) (ShaderModuleID, error)

	// DestroyShaderModule releases a shader module.
	DestroyShaderModule(id ShaderModuleID)

	// === Texture Management ===

	// CreateTexture allocates a 2D texture.
	CreateTexture(desc *TextureDesc) (TextureID, error)

	// DestroyTexture releases a texture. Views created from it must be
	// destroyed first.
	DestroyTexture(id TextureID)

	// CreateTextureView creates a full 2D view of a texture.
	CreateTextureView(texture TextureID, label string) (TextureViewID, error)

	// DestroyTextureView releases a texture view.
	DestroyTextureView(id TextureViewID)

	// WriteTexture uploads tightly packed texel rows covering the whole
	// texture.
	WriteTexture(id TextureID, data []byte) error

	// ReadTexture copies the whole texture back to the CPU as tightly packed
	// rows. It waits for all previously submitted work.
	ReadTexture(id TextureID) ([]byte, error)

	// === Pipeline Management ===

	// CreateBindGroupLayout creates a bind group layout.
	CreateBindGroupLayout(desc *BindGroupLayoutDesc) (BindGroupLayoutID, error)

	// DestroyBindGroupLayout releases a bind group layout.
	DestroyBindGroupLayout(id BindGroupLayoutID)

	// CreatePipelineLayout creates a pipeline layout from bind group layouts.
	CreatePipelineLayout(layouts []BindGroupLayoutID) (PipelineLayoutID, error)

	// DestroyPipelineLayout releases a pipeline layout.
	DestroyPipelineLayout(id PipelineLayoutID)

	// CreateComputePipeline creates a compute pipeline.
	CreateComputePipeline(desc *ComputePipelineDesc) (ComputePipelineID, error)

	// DestroyComputePipeline releases a compute pipeline.
	DestroyComputePipeline(id ComputePipelineID)

	// CreateBindGroup creates a bind group with resource bindings.
	CreateBindGroup(desc *BindGroupDesc) (BindGroupID, error)

	// DestroyBindGroup releases a bind group.
	DestroyBindGroup(id BindGroupID)

	// === Command Recording ===

	// BeginComputePass starts recording a compute pass into the pending
	// command buffer. Returns an encoder for recording commands.
	BeginComputePass(label string) ComputePassEncoder

	// Submit hands all recorded work to the GPU queue without waiting for
	// it to finish.
	Submit() error

	// WaitIdle blocks until all submitted GPU work completes.
	WaitIdle()
}

// ComputePassEncoder records compute commands.
//
// Usage pattern:
//  1. Obtain encoder from GPUAdapter.BeginComputePass()
//  2. Set pipeline and bind groups
//  3. Dispatch compute workgroups
//  4. Call End() to finish recording
//  5. Call GPUAdapter.Submit() to execute
//
// The encoder is single-use and cannot be reused after End().
type ComputePassEncoder interface {
	// SetPipeline sets the active compute pipeline.
	SetPipeline(pipeline ComputePipelineID)

	// SetBindGroup sets a bind group at the specified index.
	SetBindGroup(index uint32, group BindGroupID)

	// Dispatch dispatches compute workgroups.
	// x, y, z are the number of workgroups in each dimension.
	Dispatch(x, y, z uint32)

	// End finishes the compute pass.
	End()
}
