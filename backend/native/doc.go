// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

// Package native implements gpucore.GPUAdapter on the Pure Go
// gogpu/wgpu HAL.
//
// A standalone device comes from OpenDevice. A window host that already
// owns a device (gogpu) shares it through FromProvider:
//
//	adapter, err := native.FromProvider(app.GPUContextProvider())
//	if err != nil {
//	    adapter, err = native.OpenDevice()
//	}
//	defer adapter.Close()
//
// Work is recorded into one command buffer per frame. Submit queues it
// and returns; finished command buffers are reclaimed by submission index.
// ReadTexture and WaitIdle block until the GPU has caught up.
package native
