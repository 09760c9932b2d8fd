// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/lenia"
	"github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL backend.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// ErrNoAdapter is returned when no GPU adapter can be found.
var ErrNoAdapter = errors.New("native: no GPU adapters found")

// OpenDevice creates a standalone Vulkan device, preferring a discrete or
// integrated GPU. The returned adapter owns the device: Close destroys it.
func OpenDevice() (*HALAdapter, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("native: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}
	adapter, err := openOn(instance)
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	return adapter, nil
}

func openOn(instance hal.Instance) (*HALAdapter, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		return nil, fmt.Errorf("native: open device: %w", err)
	}
	a, err := NewHALAdapter(openDev.Device, openDev.Queue, &limits)
	if err != nil {
		openDev.Device.Destroy()
		return nil, err
	}
	a.instance = instance
	a.owned = true
	a.name = selected.Info.Name
	lenia.Logger().Info("native: device opened", "adapter", a.name)
	return a, nil
}

// halDeviceSource is the HAL access a shared device must offer.
type halDeviceSource interface {
	HalDevice() hal.Device
	HalQueue() hal.Queue
	Limits() gputypes.Limits
}

var _ halDeviceSource = (*wgpu.Device)(nil)

// FromProvider wraps the device shared by a windowing host. The provider's
// Device must expose its HAL device and queue, as *wgpu.Device does. The
// device stays owned by the provider.
func FromProvider(provider gpucontext.DeviceProvider) (*HALAdapter, error) {
	if provider == nil {
		return nil, ErrNilDevice
	}
	dev := provider.Device()
	src, ok := dev.(halDeviceSource)
	if !ok {
		return nil, fmt.Errorf("native: provider device %T does not expose HAL types", dev)
	}
	limits := src.Limits()
	return NewHALAdapter(src.HalDevice(), src.HalQueue(), &limits)
}
