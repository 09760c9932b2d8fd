// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpucore provides the GPU abstraction used by the lenia scheduler.
//
// This package defines the [GPUAdapter] interface, which hides the concrete
// GPU API behind opaque resource IDs so that the scheduling logic can be
// driven by:
//   - gogpu/wgpu HAL devices (see backend/native)
//   - in-memory fakes in tests
//
// # Architecture
//
//	               +------------------+
//	               |      lenia       |
//	               | (Simulation etc.)|
//	               +--------+---------+
//	                        |
//	               +--------v---------+
//	               |     gpucore      |
//	               |   (GPUAdapter)   |
//	               +--------+---------+
//	                        |
//	               +--------v---------+
//	               |  backend/native  |
//	               |   (hal.Device)   |
//	               +------------------+
//
// # Resource Management
//
// GPU resources are managed via opaque IDs ([TextureID], [TextureViewID],
// [ComputePipelineID], etc.). The [GPUAdapter] interface provides creation
// and destruction methods for each resource type. Adapters are responsible
// for tracking the mapping between IDs and actual GPU resources. The zero
// value of every ID is [InvalidID].
//
// # Command Recording
//
// Compute work is recorded with [GPUAdapter.BeginComputePass] and handed to
// the GPU with [GPUAdapter.Submit]. Submit never blocks on GPU completion;
// work submitted earlier is ordered before work submitted later on the same
// adapter.
package gpucore
