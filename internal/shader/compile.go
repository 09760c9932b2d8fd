// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shader translates WGSL kernels into SPIR-V with naga.
package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// ErrTruncatedSPIRV is returned when naga output is not a whole number of words.
var ErrTruncatedSPIRV = errors.New("shader: SPIR-V length is not a multiple of 4")

// CompileWGSL compiles WGSL source to SPIR-V words.
// The returned error carries naga's diagnostic text unchanged.
func CompileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile WGSL: %w", err)
	}
	return Words(spirvBytes)
}

// WorkgroupSizes parses and lowers source and returns the declared
// @workgroup_size of each compute entry point, keyed by name.
func WorkgroupSizes(source string) (map[string][3]uint32, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse WGSL: %w", err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("lower WGSL: %w", err)
	}
	sizes := make(map[string][3]uint32, len(module.EntryPoints))
	for i := range module.EntryPoints {
		ep := &module.EntryPoints[i]
		if ep.Stage == ir.StageCompute {
			sizes[ep.Name] = ep.Workgroup
		}
	}
	return sizes, nil
}

// Words converts little-endian SPIR-V bytes to 32-bit words.
func Words(spirvBytes []byte) ([]uint32, error) {
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w (got %d bytes)", ErrTruncatedSPIRV, len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
