// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/lenia/gpucore"
)

func convertTextureFormat(f gpucore.TextureFormat) gputypes.TextureFormat {
	switch f {
	case gpucore.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	default:
		return gputypes.TextureFormatRGBA8Unorm
	}
}

func convertTextureUsage(u gpucore.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&gpucore.TextureUsageCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	if u&gpucore.TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if u&gpucore.TextureUsageTextureBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&gpucore.TextureUsageStorageBinding != 0 {
		out |= gputypes.TextureUsageStorageBinding
	}
	return out
}

func convertStorageAccess(t gpucore.BindingType) gputypes.StorageTextureAccess {
	switch t {
	case gpucore.BindingTypeReadOnlyStorageTexture:
		return gputypes.StorageTextureAccessReadOnly
	case gpucore.BindingTypeReadWriteStorageTexture:
		return gputypes.StorageTextureAccessReadWrite
	default:
		return gputypes.StorageTextureAccessWriteOnly
	}
}

// convertBindGroupLayoutEntry maps a storage texture binding to a
// compute-visible layout entry.
func convertBindGroupLayoutEntry(e gpucore.BindGroupLayoutEntry) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:        e.Binding,
		Visibility:     gputypes.ShaderStageCompute,
		StorageTexture: &gputypes.StorageTextureBindingLayout{
			Access:        convertStorageAccess(e.Type),
			Format:        convertTextureFormat(e.Format),
			ViewDimension: gputypes.TextureViewDimension2D,
		},
	}
}

// alignedBytesPerRow rounds a row pitch up to copyPitchAlignment.
func alignedBytesPerRow(rowBytes uint32) uint32 {
	return (rowBytes + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// stripRowPadding packs rows read with a padded pitch. It returns src
// unchanged when there is no padding.
func stripRowPadding(src []byte, rowBytes, paddedRow, rows int) []byte {
	if rowBytes == paddedRow {
		return src[:rowBytes*rows]
	}
	out := make([]byte, rowBytes*rows)
	for y := 0; y < rows; y++ {
		copy(out[y*rowBytes:(y+1)*rowBytes], src[y*paddedRow:y*paddedRow+rowBytes])
	}
	return out
}
