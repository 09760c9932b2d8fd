// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import (
	"fmt"

	"github.com/gogpu/lenia/gpucore"
)

// BindingSet pairs a read surface with a write surface.
// Binding 0 is the read surface and binding 1 the write surface.
type BindingSet struct {
	Read  Surface
	Write Surface
	Group gpucore.BindGroupID
}

// bindingPlan is the fixed shape of the two binding sets.
var bindingPlan = [2]struct{ read, write Surface }{
	{SurfaceA, SurfaceB},
	{SurfaceB, SurfaceA},
}

// BindGroupCache holds exactly two binding sets: set 0 reads A and writes
// B, set 1 reads B and writes A.
type BindGroupCache struct {
	adapter gpucore.GPUAdapter
	layout  gpucore.BindGroupLayoutID

	views    [2]gpucore.TextureViewID
	sets     [2]BindingSet
	ready    bool
	rebuilds int
}

// NewBindGroupCache creates an empty cache for the given layout.
func NewBindGroupCache(adapter gpucore.GPUAdapter, layout gpucore.BindGroupLayoutID) *BindGroupCache {
	return &BindGroupCache{adapter: adapter, layout: layout}
}

// Rebuild creates both binding sets from the views of A and B.
// Calling it again with the same views is a no-op. Different views replace
// the existing sets; on error the previous sets stay in place.
func (c *BindGroupCache) Rebuild(viewA, viewB gpucore.TextureViewID) error {
	if c.ready && c.views == [2]gpucore.TextureViewID{viewA, viewB} {
		return nil
	}
	if viewA == gpucore.InvalidID || viewB == gpucore.InvalidID {
		return fmt.Errorf("%w: missing surface view", ErrSurfaceNotResolved)
	}

	views := [2]gpucore.TextureViewID{viewA, viewB}
	var next [2]BindingSet
	for i, plan := range bindingPlan {
		group, err := c.adapter.CreateBindGroup(&gpucore.BindGroupDesc{
			Label:  fmt.Sprintf("lenia_set%d", i),
			Layout: c.layout,
			Entries: []gpucore.BindGroupEntry{
				{Binding: 0, View: views[plan.read]},
				{Binding: 1, View: views[plan.write]},
			},
		})
		if err != nil {
			for _, s := range next[:i] {
				c.adapter.DestroyBindGroup(s.Group)
			}
			return fmt.Errorf("lenia: create binding set %d: %w", i, err)
		}
		next[i] = BindingSet{Read: plan.read, Write: plan.write, Group: group}
	}

	c.release()
	c.views = views
	c.sets = next
	c.ready = true
	c.rebuilds++
	Logger().Debug("lenia: binding sets built", "rebuilds", c.rebuilds)
	return nil
}

// Ready reports whether both binding sets exist.
func (c *BindGroupCache) Ready() bool {
	return c.ready
}

// Set returns binding set i (0 or 1).
func (c *BindGroupCache) Set(i int) (BindingSet, bool) {
	if !c.ready || i < 0 || i > 1 {
		return BindingSet{}, false
	}
	return c.sets[i], true
}

// Rebuilds returns how many times the sets were (re)created.
func (c *BindGroupCache) Rebuilds() int {
	return c.rebuilds
}

func (c *BindGroupCache) release() {
	if !c.ready {
		return
	}
	for _, s := range c.sets {
		c.adapter.DestroyBindGroup(s.Group)
	}
	c.sets = [2]BindingSet{}
	c.ready = false
}

// Destroy releases both binding sets.
func (c *BindGroupCache) Destroy() {
	c.release()
	c.views = [2]gpucore.TextureViewID{}
}
