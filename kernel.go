// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/gogpu/lenia/gpucore"
	"github.com/gogpu/lenia/internal/shader"
)

// DefaultKernelAsset is the asset name of the bundled kernel.
const DefaultKernelAsset = "shaders/compute.wgsl"

//go:embed shaders/compute.wgsl
var defaultKernelSource string

// DefaultKernel returns the bundled Lenia kernel. It declares the entry
// points "init" and "update" with an 8x8 workgroup.
func DefaultKernel() KernelSource {
	return KernelSource{Asset: DefaultKernelAsset, Code: defaultKernelSource}
}

// LoadKernel reads a WGSL kernel from disk.
func LoadKernel(path string) (KernelSource, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return KernelSource{}, fmt.Errorf("lenia: read kernel: %w", err)
	}
	return KernelSource{Asset: path, Code: string(code)}, nil
}

// checkWorkgroupSize rejects settings whose workgroup size differs from the
// @workgroup_size declared by the Init or Update entry point. Kernels that
// do not lower are left to the compile step to report.
func checkWorkgroupSize(kernel KernelSource, settings Settings) error {
	sizes, err := shader.WorkgroupSizes(kernel.Code)
	if err != nil {
		if kernel.Code != defaultKernelSource {
			return nil
		}
		bundled := [3]uint32{DefaultWorkgroupSize, DefaultWorkgroupSize, 1}
		sizes = map[string][3]uint32{DefaultInitEntryPoint: bundled, DefaultUpdateEntryPoint: bundled}
	}
	for _, entry := range []string{settings.InitEntryPoint, settings.UpdateEntryPoint} {
		size, ok := sizes[entry]
		if !ok {
			continue
		}
		if size[0] != settings.WorkgroupSize || size[1] != settings.WorkgroupSize {
			return fmt.Errorf("%w: entry point %q in %s declares workgroup %dx%d, settings use %d",
				ErrInvalidSettings, entry, kernel.Asset, size[0], size[1], settings.WorkgroupSize)
		}
	}
	return nil
}

// StorageLayoutDesc describes the kernel's only bind group: binding 0 is
// the read-only input surface, binding 1 the write-only output surface.
func StorageLayoutDesc() *gpucore.BindGroupLayoutDesc {
	return &gpucore.BindGroupLayoutDesc{
		Label: "lenia_storage_layout",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeReadOnlyStorageTexture, Format: SurfaceFormat},
			{Binding: 1, Type: gpucore.BindingTypeWriteOnlyStorageTexture, Format: SurfaceFormat},
		},
	}
}
